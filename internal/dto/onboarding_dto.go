package dto

import (
	"time"

	"github.com/google/uuid"
)

type ResolveUserRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required,min=1"`
	Picture string `json:"picture" validate:"omitempty,url"`
}

type UserDTO struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

type ResolveUserResponse struct {
	User     UserDTO           `json:"user"`
	Sessions []*ChatSessionDTO `json:"sessions"`
	Created  bool              `json:"created"`
}
