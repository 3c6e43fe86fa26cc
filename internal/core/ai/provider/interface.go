package provider

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyCompletion is returned when a provider answers successfully but
// the completion carries no content. Callers treat this as a garbled
// response, not as an outage.
var ErrEmptyCompletion = errors.New("empty completion from provider")

// Message is one turn of a chat-completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a request to a text-generation provider.
type Request struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// Response is a provider's reply.
type Response struct {
	Content string `json:"content"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// TextGenerator is a text-generation backend.
type TextGenerator interface {
	// Generate produces a completion for the request. The call blocks and
	// must honor ctx cancellation and the provider's own timeout.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Model returns the model name in use.
	Model() string

	// Timeout returns the per-request timeout.
	Timeout() time.Duration
}
