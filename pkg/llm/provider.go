package llm

import "context"

// Message represents a chat turn in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant"
	Content string
}

// ResponsePart is one element of an image model's heterogeneous output:
// either a text annotation or an inline binary payload.
type ResponsePart struct {
	Text     string
	Data     []byte
	MIMEType string
}

func (p ResponsePart) IsBinary() bool {
	return len(p.Data) > 0
}

// TextModel answers a full conversation history with one complete,
// non-streamed response.
type TextModel interface {
	Chat(ctx context.Context, history []Message) (string, error)
}

// ImageModel turns a prompt into a sequence of response parts.
type ImageModel interface {
	Generate(ctx context.Context, prompt string) ([]ResponsePart, error)
}
