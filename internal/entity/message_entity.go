package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is one turn in a chat session. Assistant turns carry text
// content, a file URL pointing at a generated artifact, or both.
type Message struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	FileURL       string
	CreatedAt     time.Time
}
