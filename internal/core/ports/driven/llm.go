// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/jaytoday/khoj/internal/core/domain"
)

// CompletionService is the model backend boundary. Implementations wrap a
// chat-completion provider together with its retry-with-backoff policy, so
// the core can treat transient failures as the adapter's concern.
//
// Implementations may include:
//   - OpenAI (GPT family)
//   - OpenAI-compatible local inference servers
type CompletionService interface {
	// Complete runs a non-streaming chat completion and returns the full
	// response text.
	Complete(ctx context.Context, messages []domain.ChatMessage, opts CompletionOptions) (string, error)

	// ChatStream runs a streaming chat completion. The returned channel is
	// a lazy, finite, non-restartable sequence of response fragments; it is
	// closed when the response is exhausted. Production stops when ctx is
	// cancelled, even if the caller abandons the channel.
	ChatStream(ctx context.Context, messages []domain.ChatMessage, opts ChatStreamOptions) (<-chan string, error)

	// ModelName returns the model identifier requests are sent to.
	ModelName() string
}

// CompletionOptions configures a non-streaming completion.
type CompletionOptions struct {
	// MaxTokens caps the generated token count.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopSequences stop generation when encountered.
	StopSequences []string
}

// ChatStreamOptions configures a streaming chat completion.
type ChatStreamOptions struct {
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopSequences stop generation when encountered.
	StopSequences []string

	// References are the compiled note excerpts grounding the response,
	// forwarded for the backend's own citation and logging needs.
	References []string

	// OnlineResults are serialised online search results, forwarded like
	// References.
	OnlineResults []string

	// OnCompletion, when set, is invoked exactly once with the full
	// response text after the stream is exhausted.
	OnCompletion func(response string)
}
