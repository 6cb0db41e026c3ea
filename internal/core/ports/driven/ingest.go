package driven

import "github.com/jaytoday/khoj/internal/core/domain"

// EntryExtractor parses raw document contents into structured nodes.
// Map keys are source file paths, values raw file contents.
type EntryExtractor interface {
	Extract(files map[string]string) []domain.OrgNode
}

// EntryNormaliser converts structured nodes into flat entries.
type EntryNormaliser interface {
	Normalise(nodes []domain.OrgNode) []domain.Entry
}

// EntryPostProcessor transforms entries after normalisation, e.g.
// splitting over-budget entries. Processors run in registration order.
type EntryPostProcessor interface {
	// Name returns the processor name for logging.
	Name() string

	// Process transforms the entry sequence. Raw text must be preserved;
	// only compiled text may be reshaped.
	Process(entries []domain.Entry) []domain.Entry
}
