package services

import (
	"context"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
	"github.com/jaytoday/khoj/internal/core/ports/driving"
	"github.com/jaytoday/khoj/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor runs the extract → normalise → post-process pipeline that
// turns raw documents into index-ready entries.
type Ingestor struct {
	extractor  driven.EntryExtractor
	normaliser driven.EntryNormaliser
	processors []driven.EntryPostProcessor
}

// NewIngestor creates a new ingestion pipeline. Post-processors run in
// the given order after normalisation.
func NewIngestor(extractor driven.EntryExtractor, normaliser driven.EntryNormaliser, processors ...driven.EntryPostProcessor) *Ingestor {
	return &Ingestor{
		extractor:  extractor,
		normaliser: normaliser,
		processors: processors,
	}
}

// Ingest extracts, normalises and post-processes the given documents.
func (s *Ingestor) Ingest(ctx context.Context, files map[string]string) ([]domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Section("Ingest")
	logger.Debug("ingesting %d files", len(files))

	nodes := s.extractor.Extract(files)
	entries := s.normaliser.Normalise(nodes)
	logger.Info("normalised %d nodes into %d entries", len(nodes), len(entries))

	for _, processor := range s.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := len(entries)
		entries = processor.Process(entries)
		logger.Debug("%s: %d entries in, %d out", processor.Name(), before, len(entries))
	}
	return entries, nil
}

// IngestToJSONL runs Ingest and renders the result as line-delimited
// JSON for the embedding/index collaborator.
func (s *Ingestor) IngestToJSONL(ctx context.Context, files map[string]string) (string, error) {
	entries, err := s.Ingest(ctx, files)
	if err != nil {
		return "", err
	}
	return domain.EntriesToJSONL(entries)
}
