// Package tokenizer estimates model-context consumption of chat text.
//
// Model backends each tokenize differently, and no exact tokenizer is
// shipped here. Instead a strategy table maps known model and tokenizer
// identifiers to counting functions, with a documented whitespace-word
// default for everything else. The estimates only need to be stable and
// monotonic for history truncation to behave deterministically.
package tokenizer

import "strings"

// CountFunc estimates the number of tokens in text.
type CountFunc func(text string) int

// WordCount is the default strategy: whitespace-delimited word count.
// It under-estimates subword tokenizers but is stable and model-free.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// gptCount approximates GPT-family BPE tokenizers. Words average roughly
// 4/3 tokens under cl100k-style vocabularies.
func gptCount(text string) int {
	words := len(strings.Fields(text))
	return words + words/3
}

// strategies maps model and tokenizer identifiers to counting functions.
// Lookup is exact; prefix families are handled in ForModel.
var strategies = map[string]CountFunc{
	"gpt-3.5-turbo":     gptCount,
	"gpt-3.5-turbo-16k": gptCount,
	"gpt-4":             gptCount,
	"cl100k_base":       gptCount,
	"whitespace":        WordCount,
}

// ForModel resolves a counting strategy for the given model and tokenizer
// identifiers. The tokenizer identifier wins when both resolve; unknown
// identifiers fall back to WordCount.
func ForModel(modelID, tokenizerID string) CountFunc {
	if f, ok := strategies[tokenizerID]; ok {
		return f
	}
	if f, ok := strategies[modelID]; ok {
		return f
	}
	for prefix, f := range familyPrefixes {
		if strings.HasPrefix(modelID, prefix) {
			return f
		}
	}
	return WordCount
}

// familyPrefixes catches versioned model names like "gpt-4-0613".
var familyPrefixes = map[string]CountFunc{
	"gpt-3.5-turbo": gptCount,
	"gpt-4":         gptCount,
}

// promptSizes holds the prompt budget per known model: the context
// window minus headroom for the completion. Filling the whole window
// with history would leave the model no room to answer.
var promptSizes = map[string]int{
	"gpt-3.5-turbo":     3000,
	"gpt-3.5-turbo-16k": 15000,
	"gpt-4":             7000,
}

// DefaultPromptSize returns the prompt token budget for modelID.
// The second return is false for unknown models, in which case callers
// should include full history rather than guess a ceiling.
func DefaultPromptSize(modelID string) (int, bool) {
	n, ok := promptSizes[modelID]
	return n, ok
}
