package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is created once per email during onboarding and never mutated
// afterwards by this service.
type User struct {
	Id        uuid.UUID
	Email     string
	Username  string
	AvatarURL string
	CreatedAt time.Time
}
