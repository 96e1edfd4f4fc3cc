package domain

import "errors"

// ErrEmptyCompletion is returned by providers when the response envelope
// parses but carries no completion text.
var ErrEmptyCompletion = errors.New("provider returned no completion")

// ChatMessage is the provider-agnostic chat message shape used by the usecase
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single outbound completion call. A nil Temperature
// and a zero MaxTokens leave the provider defaults in place.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature *float64
	MaxTokens   int
}
