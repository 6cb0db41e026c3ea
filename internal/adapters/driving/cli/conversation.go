package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jaytoday/khoj/internal/core/domain"
)

// conversationPath returns the conversation log location: the
// chat.conversation-logfile config key, else ~/.khoj/conversation.json.
func conversationPath() string {
	if path := configStore.GetString("chat.conversation-logfile"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "conversation.json"
	}
	return filepath.Join(home, ".khoj", "conversation.json")
}

// loadConversation reads the persisted conversation log. A missing file
// is an empty conversation, not an error.
func loadConversation(path string) (domain.ConversationLog, error) {
	var log domain.ConversationLog
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return log, nil
		}
		return log, fmt.Errorf("read conversation log: %w", err)
	}
	if err := json.Unmarshal(data, &log); err != nil {
		return log, fmt.Errorf("decode conversation log: %w", err)
	}
	return log, nil
}

// appendTurn records one completed exchange: the user's message and the
// assistant's response with the queries and references that produced
// it. The core only ever reads the log; appending is this collaborator's
// job.
func appendTurn(path string, log domain.ConversationLog, query, response string, inferredQueries, references []string) error {
	now := time.Now().UTC()
	log.Chat = append(log.Chat,
		domain.LogEntry{
			ID:        uuid.New().String(),
			By:        domain.ActorUser,
			Message:   query,
			Intent:    domain.Intent{Query: query},
			Timestamp: now,
		},
		domain.LogEntry{
			ID:      uuid.New().String(),
			By:      domain.ActorAssistant,
			Message: response,
			Intent: domain.Intent{
				Query:           query,
				InferredQueries: inferredQueries,
			},
			Context:   references,
			Timestamp: now,
		},
	)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create conversation directory: %w", err)
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation log: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write conversation log: %w", err)
	}
	return nil
}
