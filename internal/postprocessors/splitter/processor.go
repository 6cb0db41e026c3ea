// Package splitter enforces token-budget constraints on entries before
// they reach the embedding boundary.
package splitter

import (
	"strings"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.EntryPostProcessor = (*Processor)(nil)

// DefaultMaxTokens is the default word-count budget per entry.
const DefaultMaxTokens = 256

// DefaultMaxWordLength is the default cap on individual word length.
// Longer words (base64 blobs, URLs) are dropped from compiled text so
// they do not pollute the embedding space.
const DefaultMaxWordLength = 200

// Processor splits over-budget entries into multiple self-describing
// fragments.
type Processor struct {
	maxTokens     int
	maxWordLength int
}

// Option configures the splitter processor.
type Option func(*Processor)

// WithMaxTokens sets the word-count budget per entry.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithMaxWordLength sets the cap on individual word length in runes.
func WithMaxWordLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxWordLength = n
		}
	}
}

// New creates a new splitter processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxTokens:     DefaultMaxTokens,
		maxWordLength: DefaultMaxWordLength,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "splitter"
}

// Process splits each entry whose compiled text exceeds the word budget
// into ⌈words/budget⌉ fragments. Every fragment is prefixed with the
// entry's heading-path header so it stays self-describing for
// retrieval. Raw text is carried unchanged on every fragment.
//
// Words are whitespace-delimited, so splitting never happens mid-word
// and line breaks inside the compiled text count as word boundaries.
// The heading prefix does not count against the budget.
func (p *Processor) Process(entries []domain.Entry) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries))
	for _, entry := range entries {
		words := strings.Fields(entry.Compiled)

		// Drop pathological words from compiled, keep them in raw.
		kept := words[:0]
		for _, word := range words {
			if len([]rune(word)) <= p.maxWordLength {
				kept = append(kept, word)
			}
		}

		for start := 0; start < len(kept); start += p.maxTokens {
			end := start + p.maxTokens
			if end > len(kept) {
				end = len(kept)
			}
			compiled := strings.Join(kept[start:end], " ")
			if entry.Heading != "" {
				compiled = entry.Heading + "\n" + compiled
			}

			fragment := entry
			fragment.Compiled = compiled
			out = append(out, fragment)
		}
	}
	return out
}
