package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "MESSAGE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeUserOnboarded       = "USER_ONBOARDED"
	TypeMessageCreated      = "MESSAGE_CREATED"
	TypeSessionDeleted      = "SESSION_DELETED"
	TypeGenerationCompleted = "GENERATION_COMPLETED"
)

func NewUserOnboarded(userId, email string) Event {
	return BaseEvent{
		Type:       TypeUserOnboarded,
		Data:       map[string]interface{}{"user_id": userId, "email": email},
		OccurredAt: time.Now(),
	}
}

func NewMessageCreated(sessionId, messageId, role string) Event {
	return BaseEvent{
		Type:       TypeMessageCreated,
		Data:       map[string]interface{}{"session_id": sessionId, "message_id": messageId, "role": role},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeleted(sessionId string) Event {
	return BaseEvent{
		Type:       TypeSessionDeleted,
		Data:       map[string]interface{}{"session_id": sessionId},
		OccurredAt: time.Now(),
	}
}

func NewGenerationCompleted(sessionId, messageId, mode string, elapsed time.Duration) Event {
	return BaseEvent{
		Type: TypeGenerationCompleted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"message_id": messageId,
			"mode":       mode,
			"elapsed_ms": elapsed.Milliseconds(),
		},
		OccurredAt: time.Now(),
	}
}
