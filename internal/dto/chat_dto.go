package dto

import (
	"time"

	"github.com/google/uuid"
)

type MessageDTO struct {
	Id            uuid.UUID `json:"id"`
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Role          string    `json:"role"`
	Content       string    `json:"content,omitempty"`
	FileURL       string    `json:"file_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ChatSessionDTO struct {
	Id        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	Messages  []*MessageDTO `json:"messages"`
}

type CreateSessionRequest struct {
	Title string `json:"title" validate:"required,min=1"`
}

type CreateMessageRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Role          string    `json:"role" validate:"required,oneof=user assistant"`
	Content       string    `json:"content,omitempty"`
	FileURL       string    `json:"file_url,omitempty"`
}
