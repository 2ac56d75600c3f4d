package model

import (
	"time"

	"github.com/google/uuid"
)

// Messages are immutable after creation and removed only through the
// session cascade, so rows are hard-deleted and carry no update column.
type Message struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Role          string    `gorm:"type:varchar(50);not null"`
	Content       string    `gorm:"type:text"`
	FileURL       string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
