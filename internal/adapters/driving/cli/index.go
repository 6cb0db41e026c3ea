package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaytoday/khoj/internal/connectors/filesystem"
	"github.com/jaytoday/khoj/internal/logger"
)

var (
	indexInputFiles   []string
	indexInputFilters []string
	indexOutput       string
	indexWatch        bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Extract entries from org files for the search index",
	Long: `Parses the configured org files into normalised entries and renders
them as line-delimited JSON, the interchange format consumed by the
embedding and indexing collaborator.

Input locations come from --input-file and --input-filter flags, merged
with the content.org.input-files and content.org.input-filter config
keys. With --watch, khoj keeps running and re-indexes whenever a watched
org file changes.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringArrayVar(&indexInputFiles, "input-file", nil, "org file to index (repeatable)")
	indexCmd.Flags().StringArrayVar(&indexInputFilters, "input-filter", nil, "glob of org files to index (repeatable)")
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "write entries JSONL to this file (default: config content.org.compressed-jsonl, else stdout)")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "keep running and re-index on file changes")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	inputFiles := append(configStore.GetStringSlice("content.org.input-files"), indexInputFiles...)
	inputFilters := append(configStore.GetStringSlice("content.org.input-filter"), indexInputFilters...)
	if len(inputFiles) == 0 && len(inputFilters) == 0 {
		return errors.New("nothing to index: pass --input-file/--input-filter or configure content.org inputs")
	}

	output := indexOutput
	if output == "" {
		output = configStore.GetString("content.org.compressed-jsonl")
	}

	reindex := func(ctx context.Context) error {
		files, err := filesystem.Resolve(inputFiles, inputFilters)
		if err != nil {
			return err
		}
		jsonl, err := ingestService.IngestToJSONL(ctx, files)
		if err != nil {
			return err
		}
		if output == "" {
			cmd.Print(jsonl)
			return nil
		}
		if err := os.WriteFile(output, []byte(jsonl), 0600); err != nil {
			return fmt.Errorf("write index: %w", err)
		}
		logger.Info("wrote entries to %s", output)
		return nil
	}

	ctx := cmd.Context()
	if err := reindex(ctx); err != nil {
		return err
	}
	if !indexWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := filesystem.NewWatcher(func() {
		if err := reindex(ctx); err != nil {
			logger.Warn("re-index failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filesystem.WatchTargets(inputFiles, inputFilters)...); err != nil {
		return err
	}

	cmd.PrintErrln("Watching for changes. Press Ctrl+C to stop.")
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
