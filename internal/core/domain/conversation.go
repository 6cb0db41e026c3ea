package domain

import "time"

// Chat message roles, matching the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation log actors.
const (
	ActorUser      = "user"
	ActorAssistant = "assistant"
)

// IntentTypeTextToImage marks turns that produced an image rather than text.
// Such turns are excluded from query-planning history.
const IntentTypeTextToImage = "text-to-image"

// ChatMessage is an ephemeral role-tagged text unit handed to the model
// backend. It is constructed in memory and never persisted.
type ChatMessage struct {
	// Role is one of RoleSystem, RoleUser or RoleAssistant.
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Intent records what a conversation turn was trying to do.
type Intent struct {
	// Query is the original user query for the turn.
	Query string `json:"query"`

	// InferredQueries are the search queries the planner derived from the
	// user query, if any.
	InferredQueries []string `json:"inferred-queries,omitempty"`

	// Type tags special turn kinds such as IntentTypeTextToImage.
	Type string `json:"type,omitempty"`
}

// LogEntry is one persisted exchange turn. Entries are appended by the
// persistence collaborator and never mutated; the core only derives bounded
// read views from them.
type LogEntry struct {
	// ID identifies the turn in the persisted log.
	ID string `json:"id,omitempty"`

	// By is the actor that produced the turn: ActorUser or ActorAssistant.
	By string `json:"by"`

	// Message is the turn text.
	Message string `json:"message"`

	// Intent carries the originating query and planner output.
	Intent Intent `json:"intent"`

	// Context lists the reference texts used to answer, for provenance.
	Context []string `json:"context,omitempty"`

	// Timestamp is when the turn was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// ConversationLog is the read view of a persisted conversation. The core
// treats it as an immutable snapshot supplied by the caller.
type ConversationLog struct {
	Chat []LogEntry `json:"chat"`
}
