// Package llm wraps external chat-completion providers.
package llm

import "context"

// streamBuffer bounds how far the producer goroutine may run ahead of a
// slow consumer.
const streamBuffer = 16

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Stream sends a completion request and returns a channel of response
	// increments in generation order. The channel is closed when the
	// response is complete or after a terminal error delta. Cancelling ctx
	// aborts the upstream generation.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamDelta, error)

	// Name returns the name of this provider.
	Name() string
}
