package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts generative-model providers for document metadata extraction.
type Client interface {
	ExtractMetadata(ctx context.Context, input ExtractInput) (json.RawMessage, error)
}

// ExtractInput captures the inputs needed for metadata extraction.
type ExtractInput struct {
	Data     []byte
	MimeType string
}

// ErrServiceUnavailable indicates the model endpoint is missing or down;
// handlers surface it as a user-facing "temporarily unavailable" message.
var ErrServiceUnavailable = errors.New("document processing service is temporarily unavailable")

// ErrNoJSON indicates the model response contained no recoverable JSON object.
var ErrNoJSON = errors.New("no JSON object in model response")

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

// ExtractMetadata returns ErrNotConfigured.
func (PlaceholderClient) ExtractMetadata(ctx context.Context, input ExtractInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}
