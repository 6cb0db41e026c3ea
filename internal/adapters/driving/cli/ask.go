package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driving"
	"github.com/jaytoday/khoj/internal/core/services"
	"github.com/jaytoday/khoj/internal/logger"
)

var (
	askMode          string
	askIndex         string
	askNumReferences int
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Chat with your notes",
	Long: `Answers a question using your indexed notes and the conversation so
far. The message is first expanded into search queries, relevant entries
are retrieved from the local index, and the model's streamed answer is
printed as it arrives. The exchange is appended to the conversation log.

Modes: default (use notes when relevant), notes (notes only), online
(online search results only), general (general knowledge only).`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askMode, "mode", "default", "conversation mode: default, notes, online or general")
	askCmd.Flags().StringVar(&askIndex, "index", "", "entries JSONL file to retrieve from (default: config content.org.compressed-jsonl)")
	askCmd.Flags().IntVarP(&askNumReferences, "num-references", "n", 3, "maximum note entries to ground the answer on")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := args[0]

	command, err := domain.ParseConversationCommand(askMode)
	if err != nil {
		return err
	}

	llm, err := completionService()
	if err != nil {
		return err
	}
	planner := services.NewPlanner(llm, promptStore)
	composer := services.NewComposer(llm, promptStore,
		services.WithMaxPromptSize(configStore.GetInt("chat.max-prompt-size")),
		services.WithTokenizer(configStore.GetString("chat.tokenizer")),
	)

	logPath := conversationPath()
	conversation, err := loadConversation(logPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var inferredQueries []string
	var references []string
	if command == domain.CommandDefault || command == domain.CommandNotes {
		inferredQueries, err = planner.ExtractQuestions(ctx, message, conversation)
		if err != nil {
			return fmt.Errorf("plan queries: %w", err)
		}
		references, err = retrieveReferences(inferredQueries)
		if err != nil {
			return err
		}
	}

	var response string
	chunks, err := composer.Converse(ctx, driving.ConverseRequest{
		Query:        message,
		Command:      command,
		References:   references,
		Log:          conversation,
		OnCompletion: func(full string) { response = full },
	})
	if err != nil {
		return err
	}

	for chunk := range chunks {
		cmd.Print(chunk)
	}
	cmd.Println()

	if err := appendTurn(logPath, conversation, message, response, inferredQueries, references); err != nil {
		return err
	}
	return nil
}

// retrieveReferences finds the indexed entries most relevant to the
// inferred queries. This is a plain word-overlap ranking over the local
// JSONL index; a semantic index is an external collaborator that can
// take its place.
func retrieveReferences(queries []string) ([]string, error) {
	indexPath := askIndex
	if indexPath == "" {
		indexPath = configStore.GetString("content.org.compressed-jsonl")
	}
	if indexPath == "" {
		logger.Debug("no entries index configured, answering without notes")
		return nil, nil
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("entries index %s not found, run `khoj index` first", indexPath)
			return nil, nil
		}
		return nil, fmt.Errorf("read entries index: %w", err)
	}
	entries, err := domain.EntriesFromJSONL(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode entries index: %w", err)
	}

	return rankEntries(entries, queries, askNumReferences), nil
}

// rankEntries scores entries by word overlap with the queries and
// returns the compiled text of the best matches.
func rankEntries(entries []domain.Entry, queries []string, limit int) []string {
	queryWords := make(map[string]struct{})
	for _, query := range queries {
		for _, word := range strings.Fields(strings.ToLower(query)) {
			queryWords[word] = struct{}{}
		}
	}

	type scored struct {
		index int
		score int
	}
	var ranked []scored
	for i, entry := range entries {
		score := 0
		for _, word := range strings.Fields(strings.ToLower(entry.Compiled)) {
			if _, ok := queryWords[word]; ok {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{index: i, score: score})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	references := make([]string, 0, len(ranked))
	for _, hit := range ranked {
		references = append(references, entries[hit.index].Compiled)
	}
	return references
}
