package services

import (
	"context"
	"strings"
	"time"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
	"github.com/jaytoday/khoj/internal/core/ports/driving"
	"github.com/jaytoday/khoj/internal/logger"
)

// Ensure Composer implements the interface.
var _ driving.ResponseComposer = (*Composer)(nil)

// composerTemperature keeps answers grounded without being robotic.
const composerTemperature = 0.2

// composerStopSequences prevent the model from hallucinating extra
// note references after its answer.
var composerStopSequences = []string{"Notes:\n["}

// Composer selects a conversation primer by command mode, assembles the
// bounded message context and streams the model's answer.
type Composer struct {
	llm           driven.CompletionService
	prompts       driven.PromptStore
	maxPromptSize int
	tokenizerID   string
	now           func() time.Time
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithMaxPromptSize overrides the context-window budget resolved from
// the backend's model name.
func WithMaxPromptSize(n int) ComposerOption {
	return func(c *Composer) {
		c.maxPromptSize = n
	}
}

// WithTokenizer overrides the token-counting strategy resolved from the
// backend's model name.
func WithTokenizer(id string) ComposerOption {
	return func(c *Composer) {
		c.tokenizerID = id
	}
}

// WithComposerClock overrides the time source used for the current-date
// slot of the personality prompt.
func WithComposerClock(now func() time.Time) ComposerOption {
	return func(c *Composer) {
		c.now = now
	}
}

// NewComposer creates a new response composer.
func NewComposer(llm driven.CompletionService, prompts driven.PromptStore, opts ...ComposerOption) *Composer {
	c := &Composer{
		llm:     llm,
		prompts: prompts,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Converse streams an answer for one chat exchange.
//
// Notes mode without references and online mode without results are
// defined fast paths, not errors: they yield a single fixed chunk and
// invoke the completion callback exactly once, without touching the
// model backend. Every other mode builds its primer, hands history
// truncation to BuildContext and returns the backend's chunk stream.
func (c *Composer) Converse(ctx context.Context, req driving.ConverseRequest) (<-chan string, error) {
	logger.Section("Converse")
	logger.Debug("command: %s, references: %d, online results: %d",
		req.Command, len(req.References), len(req.OnlineResults))

	references := compileReferences(req.References)
	onlineResults := strings.Join(req.OnlineResults, "\n\n")

	var primer string
	switch {
	case req.Command == domain.CommandNotes && references == "":
		return c.shortCircuit(driven.PromptNoNotesFound, req.OnCompletion)
	case req.Command == domain.CommandOnline && onlineResults == "":
		return c.shortCircuit(driven.PromptNoOnlineResultsFound, req.OnCompletion)
	case req.Command == domain.CommandOnline:
		template, err := c.prompts.Load(driven.PromptOnlineSearchConversation)
		if err != nil {
			return nil, err
		}
		primer = renderPrompt(template, map[string]string{
			"query":          req.Query,
			"online_results": onlineResults,
		})
	case req.Command == domain.CommandGeneral || references == "":
		template, err := c.prompts.Load(driven.PromptGeneralConversation)
		if err != nil {
			return nil, err
		}
		primer = renderPrompt(template, map[string]string{"query": req.Query})
	default:
		template, err := c.prompts.Load(driven.PromptNotesConversation)
		if err != nil {
			return nil, err
		}
		primer = renderPrompt(template, map[string]string{
			"query":      req.Query,
			"references": references,
		})
	}

	personality, err := c.prompts.Load(driven.PromptPersonality)
	if err != nil {
		return nil, err
	}
	system := renderPrompt(personality, map[string]string{
		"current_date": c.now().Format("Monday, 2006-01-02"),
	})

	messages := BuildContext(primer, system, req.Log, ContextOptions{
		ModelID:       c.llm.ModelName(),
		TokenizerID:   c.tokenizerID,
		MaxPromptSize: c.maxPromptSize,
	})
	logger.Debug("assembled %d context messages", len(messages))

	return c.llm.ChatStream(ctx, messages, driven.ChatStreamOptions{
		Temperature:   composerTemperature,
		StopSequences: composerStopSequences,
		References:    req.References,
		OnlineResults: req.OnlineResults,
		OnCompletion:  req.OnCompletion,
	})
}

// shortCircuit yields the named fixed response as a one-chunk stream.
func (c *Composer) shortCircuit(promptName string, onCompletion func(string)) (<-chan string, error) {
	text, err := c.prompts.Load(promptName)
	if err != nil {
		return nil, err
	}
	if onCompletion != nil {
		onCompletion(text)
	}
	ch := make(chan string, 1)
	ch <- text
	close(ch)
	return ch, nil
}

// compileReferences de-duplicates the retrieved excerpts on first-seen
// order and joins them as a markdown section list.
func compileReferences(references []string) string {
	seen := make(map[string]struct{}, len(references))
	var parts []string
	for _, ref := range references {
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		parts = append(parts, "# "+ref)
	}
	return strings.Join(parts, "\n\n")
}
