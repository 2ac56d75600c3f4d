package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.0-flash-preview-image-generation"
)

// GeminiProvider implements TextModel and ImageModel on the Gemini API.
// Every call carries an explicit deadline; a hung provider call must not
// hang the request forever.
type GeminiProvider struct {
	client     *genai.Client
	textModel  string
	imageModel string
	timeout    time.Duration
}

func NewGeminiProvider(apiKey, textModel, imageModel string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if textModel == "" {
		textModel = DefaultTextModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiProvider{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
		timeout:    timeout,
	}, nil
}

func toGenaiRole(role string) genai.Role {
	if role == "assistant" {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func (p *GeminiProvider) Chat(ctx context.Context, history []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		contents = append(contents, genai.NewContentFromText(msg.Content, toGenaiRole(msg.Role)))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.textModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) ([]ResponsePart, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.imageModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini image generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	parts := make([]ResponsePart, 0, len(resp.Candidates[0].Content.Parts))
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil {
			parts = append(parts, ResponsePart{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			})
			continue
		}
		if part.Text != "" {
			parts = append(parts, ResponsePart{Text: part.Text})
		}
	}
	return parts, nil
}
