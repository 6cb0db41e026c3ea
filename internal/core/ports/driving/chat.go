package driving

import (
	"context"

	"github.com/jaytoday/khoj/internal/core/domain"
)

// ConverseRequest carries one chat exchange through the response composer.
type ConverseRequest struct {
	// Query is the user's new message.
	Query string

	// Command selects the retrieval context and primer template.
	Command domain.ConversationCommand

	// References are compiled note excerpts retrieved for the query.
	References []string

	// OnlineResults are serialised online search results for the query.
	OnlineResults []string

	// Log is an immutable snapshot of the persisted conversation.
	Log domain.ConversationLog

	// OnCompletion, when set, is invoked exactly once with the full
	// response text, including short-circuit responses.
	OnCompletion func(response string)
}

// QueryPlanner converts a free-form user query into search queries.
type QueryPlanner interface {
	// ExtractQuestions infers the search queries needed to answer text.
	// The result is never empty: on any parse failure it contains the
	// original text verbatim. The returned error is non-nil only for
	// model backend exhaustion.
	ExtractQuestions(ctx context.Context, text string, log domain.ConversationLog) ([]string, error)
}

// ResponseComposer produces a streamed answer for a chat request.
type ResponseComposer interface {
	// Converse selects a primer for the request's command mode, assembles
	// the bounded message context and streams the model's answer. The
	// returned channel is lazy, finite and closed on exhaustion.
	Converse(ctx context.Context, req ConverseRequest) (<-chan string, error)
}
