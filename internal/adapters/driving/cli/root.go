// Package cli provides the khoj command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configfile "github.com/jaytoday/khoj/internal/adapters/driven/config/file"
	"github.com/jaytoday/khoj/internal/adapters/driven/llm/openai"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
	"github.com/jaytoday/khoj/internal/core/ports/driving"
	"github.com/jaytoday/khoj/internal/core/services"
	"github.com/jaytoday/khoj/internal/logger"
	"github.com/jaytoday/khoj/internal/normalisers/org"
	"github.com/jaytoday/khoj/internal/postprocessors/splitter"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

// Wired services. Populated by initServices before commands run;
// replaceable in tests.
var (
	configStore   driven.ConfigStore
	promptStore   driven.PromptStore
	ingestService driving.IngestService
)

var rootCmd = &cobra.Command{
	Use:   "khoj",
	Short: "A personal knowledge assistant for your notes",
	Long: `Khoj indexes your org-mode notes for semantic retrieval and answers
conversational questions about them using a language-model backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		// A .env file is a convenient place for OPENAI_API_KEY.
		_ = godotenv.Load()
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices wires the adapters that every command needs. The model
// backend is wired lazily by the commands that talk to it, so indexing
// works without an API key.
func initServices() error {
	if configStore == nil {
		store, err := configfile.NewConfigStore("")
		if err != nil {
			return fmt.Errorf("open config store: %w", err)
		}
		configStore = store
	}
	if promptStore == nil {
		store, err := configfile.NewPromptStore("")
		if err != nil {
			return fmt.Errorf("open prompt store: %w", err)
		}
		promptStore = store
	}
	if ingestService == nil {
		var normaliserOpts []org.Option
		if configStore.GetBool("content.org.index-heading-entries") {
			normaliserOpts = append(normaliserOpts, org.WithHeadingEntries())
		}
		var splitterOpts []splitter.Option
		if maxTokens := configStore.GetInt("content.org.max-tokens"); maxTokens > 0 {
			splitterOpts = append(splitterOpts, splitter.WithMaxTokens(maxTokens))
		}
		ingestService = services.NewIngestor(
			org.NewExtractor(),
			org.New(normaliserOpts...),
			splitter.New(splitterOpts...),
		)
	}
	return nil
}

// completionService wires the OpenAI backend from config and
// environment. Commands that need the model call this on demand.
func completionService() (driven.CompletionService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = configStore.GetString("chat.openai-api-key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no OpenAI API key: set OPENAI_API_KEY or chat.openai-api-key in %s", configStore.Path())
	}
	return openai.New(openai.Config{
		APIKey:  apiKey,
		BaseURL: configStore.GetString("chat.openai-base-url"),
		Model:   configStore.GetString("chat.model"),
	})
}
