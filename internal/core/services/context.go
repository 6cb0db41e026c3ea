package services

import (
	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/logger"
	"github.com/jaytoday/khoj/internal/tokenizer"
)

// ContextOptions bounds the assembled message context.
type ContextOptions struct {
	// ModelID selects a token-counting strategy and, when MaxPromptSize
	// is zero, a default prompt budget.
	ModelID string

	// TokenizerID overrides the strategy derived from ModelID.
	TokenizerID string

	// MaxPromptSize is the prompt token budget. Zero means
	// resolve from ModelID, falling back to unlimited history when the
	// model is unknown.
	MaxPromptSize int
}

// BuildContext assembles the ordered message sequence for one model
// request: the system message first, then as many of the most recent
// conversation turns as the token budget allows (oldest included turn
// first), then the new primer as the final user message.
//
// History is consumed from an immutable snapshot and only ever read.
// Each assistant log entry yields one (user, assistant) pair, the user
// side taken from the recorded intent query, so a partial pair can
// never appear. The result is deterministic for identical inputs.
func BuildContext(primer, systemMessage string, log domain.ConversationLog, opts ContextOptions) []domain.ChatMessage {
	count := tokenizer.ForModel(opts.ModelID, opts.TokenizerID)

	budget := opts.MaxPromptSize
	if budget == 0 {
		if n, ok := tokenizer.DefaultPromptSize(opts.ModelID); ok {
			budget = n
		}
	}

	// Reserve room for the fixed parts before admitting history.
	available := 0
	unlimited := budget <= 0
	if !unlimited {
		available = budget - count(systemMessage) - count(primer)
	}

	// Walk newest to oldest, admitting whole pairs until the budget is
	// spent. Pairs are collected backwards then reversed.
	var pairs []domain.ChatMessage
	used := 0
	for i := len(log.Chat) - 1; i >= 0; i-- {
		entry := log.Chat[i]
		if entry.By != domain.ActorAssistant {
			continue
		}
		userMsg := domain.ChatMessage{Role: domain.RoleUser, Content: entry.Intent.Query}
		assistantMsg := domain.ChatMessage{Role: domain.RoleAssistant, Content: entry.Message}

		pairTokens := count(userMsg.Content) + count(assistantMsg.Content)
		if !unlimited && used+pairTokens > available {
			logger.Debug("context budget reached after %d history pairs", len(pairs)/2)
			break
		}
		used += pairTokens
		pairs = append(pairs, assistantMsg, userMsg)
	}

	messages := make([]domain.ChatMessage, 0, len(pairs)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemMessage})
	for i := len(pairs) - 1; i >= 0; i-- {
		messages = append(messages, pairs[i])
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: primer})
	return messages
}
