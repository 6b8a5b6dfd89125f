// Package ai wraps the generative model used by the trainer endpoints.
package ai

import (
	"context"
	"time"

	"github.com/fitai/fitai-server/pkg/types"
)

// Token limits used by the endpoints.
const (
	ChatMaxTokens     int32 = 1000
	GenerateMaxTokens int32 = 2000
	DefaultTimeout          = 20 * time.Second
)

// Options tune a single generation call.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
	// ImageURL, when set, is attached to the first user message.
	ImageURL string
}

// ChatOptions returns the defaults for free-form chat.
func ChatOptions() Options {
	return Options{Temperature: 0.7, MaxOutputTokens: ChatMaxTokens}
}

// GenerateOptions returns the defaults for structured plan generation.
func GenerateOptions() Options {
	return Options{Temperature: 0.7, MaxOutputTokens: GenerateMaxTokens}
}

// Generator produces the assistant's reply to a conversation.
type Generator interface {
	Generate(ctx context.Context, messages []types.ChatMessage, opts Options) (types.ChatMessage, error)
}
