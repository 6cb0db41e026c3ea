package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
	"github.com/jaytoday/khoj/internal/core/ports/driving"
	"github.com/jaytoday/khoj/internal/logger"
)

// Ensure Planner implements the interface.
var _ driving.QueryPlanner = (*Planner)(nil)

// historyTurns is how many recent assistant turns ground the planner.
const historyTurns = 4

// plannerMaxTokens caps the planner's completion; the expected output is
// a short JSON list, not prose.
const plannerMaxTokens = 100

// Planner converts a free-form user query plus recent chat history into
// a list of search queries via the model backend.
type Planner struct {
	llm     driven.CompletionService
	prompts driven.PromptStore
	now     func() time.Time
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithPlannerClock overrides the time source. Useful for testing the
// date anchors embedded in the planner prompt.
func WithPlannerClock(now func() time.Time) PlannerOption {
	return func(p *Planner) {
		p.now = now
	}
}

// NewPlanner creates a new query planner.
func NewPlanner(llm driven.CompletionService, prompts driven.PromptStore, opts ...PlannerOption) *Planner {
	p := &Planner{
		llm:     llm,
		prompts: prompts,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractQuestions infers the search queries needed to answer text.
//
// The model is prompted with the last few assistant turns, date anchors
// for resolving relative time references, and the new text, then asked
// for a JSON list of queries. Whatever comes back, the result is never
// empty: any parse failure falls back to the original text verbatim.
// Only model backend exhaustion is returned as an error.
func (p *Planner) ExtractQuestions(ctx context.Context, text string, log domain.ConversationLog) ([]string, error) {
	logger.Section("Extract Questions")

	template, err := p.prompts.Load(driven.PromptExtractQuestions)
	if err != nil {
		return nil, err
	}

	today := p.now()
	currentNewYear := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
	lastNewYear := currentNewYear.AddDate(-1, 0, 0)

	prompt := renderPrompt(template, map[string]string{
		"current_date":          today.Format("Monday, 2006-01-02"),
		"last_new_year":         lastNewYear.Format("2006"),
		"last_new_year_date":    lastNewYear.Format("2006-01-02"),
		"current_new_year_date": currentNewYear.Format("2006-01-02"),
		"yesterday_date":        today.AddDate(0, 0, -1).Format("2006-01-02"),
		"chat_history":          plannerHistory(log),
		"text":                  text,
	})

	messages := []domain.ChatMessage{{Role: domain.RoleAssistant, Content: prompt}}
	response, err := p.llm.Complete(ctx, messages, driven.CompletionOptions{
		MaxTokens:     plannerMaxTokens,
		Temperature:   0,
		StopSequences: []string{"A: ", "\n"},
	})
	if err != nil {
		return nil, err
	}

	questions := parseQuestions(response)
	if len(questions) == 0 {
		logger.Warn("could not parse search queries from model response, falling back to user message")
		questions = []string{text}
	}
	logger.Debug("inferred queries: %v", questions)
	return questions, nil
}

// plannerHistory renders the recent relevant turns: assistant messages
// that are not image generations, newest last, each with its original
// query and the queries inferred for it.
func plannerHistory(log domain.ConversationLog) string {
	var relevant []domain.LogEntry
	for _, entry := range log.Chat {
		if entry.By != domain.ActorAssistant || entry.Intent.Type == domain.IntentTypeTextToImage {
			continue
		}
		relevant = append(relevant, entry)
	}
	if len(relevant) > historyTurns {
		relevant = relevant[len(relevant)-historyTurns:]
	}

	var sb strings.Builder
	for _, entry := range relevant {
		inferred := entry.Intent.InferredQueries
		if len(inferred) == 0 {
			inferred = []string{entry.Intent.Query}
		}
		inferredJSON, err := json.Marshal(inferred)
		if err != nil {
			continue
		}
		sb.WriteString("Q: " + entry.Intent.Query + "\n\n")
		sb.Write(inferredJSON)
		sb.WriteString("\n\n" + entry.Message + "\n\n")
	}
	return sb.String()
}

// parseQuestions turns the model's list-like response into an ordered,
// de-duplicated list of questions. Duplicates merge on first-seen,
// case-sensitive equality; responses that are not valid lists yield nil.
func parseQuestions(response string) []string {
	cleaned := strings.TrimSpace(response)
	// Models often emit Python-style single-quoted lists; coerce the
	// common quoting patterns to JSON before parsing.
	cleaned = strings.ReplaceAll(cleaned, "['", `["`)
	cleaned = strings.ReplaceAll(cleaned, "']", `"]`)
	cleaned = strings.ReplaceAll(cleaned, "', '", `", "`)

	var parsed []string
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil
	}

	seen := make(map[string]struct{}, len(parsed))
	var questions []string
	for _, q := range parsed {
		if q == "" || q == "[]" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		questions = append(questions, q)
	}
	return questions
}
