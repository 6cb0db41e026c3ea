// Package driving provides interfaces for inbound adapters (primary ports).
package driving

import (
	"context"

	"github.com/jaytoday/khoj/internal/core/domain"
)

// IngestService turns raw document contents into index-ready entries.
type IngestService interface {
	// Ingest extracts, normalises and splits the given documents. The map
	// keys are source file paths, the values raw file contents. Files that
	// fail to parse are skipped with a warning; the batch never aborts for
	// one bad file.
	Ingest(ctx context.Context, files map[string]string) ([]domain.Entry, error)

	// IngestToJSONL runs Ingest and renders the result as line-delimited
	// JSON for the embedding/index collaborator.
	IngestToJSONL(ctx context.Context, files map[string]string) (string, error)
}
