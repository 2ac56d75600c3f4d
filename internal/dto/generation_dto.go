package dto

import "github.com/google/uuid"

// ChatTurn is one role+content pair of the conversation history handed
// to the text model.
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type GenerateTextRequest struct {
	ChatSessionId uuid.UUID  `json:"chat_session_id" validate:"required"`
	History       []ChatTurn `json:"history" validate:"required,min=1,dive"`
}

type GenerateImageRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Prompt        string    `json:"prompt" validate:"required,min=3"`
}

// SendMessageRequest is the conversation-assembler entry point: one user
// turn that is persisted and then answered in the requested mode.
type SendMessageRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Content       string    `json:"content" validate:"required"`
	ImageMode     bool      `json:"image_mode"`
}

type SendMessageResponse struct {
	Sent  *MessageDTO `json:"sent"`
	Reply *MessageDTO `json:"reply"`
}
