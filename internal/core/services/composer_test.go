package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driving"
)

func collect(t *testing.T, ch <-chan string) []string {
	t.Helper()
	var chunks []string
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestConverse_NotesModeWithoutReferences(t *testing.T) {
	llm := &fakeCompletion{chunks: []string{"should not be used"}}
	composer := NewComposer(llm, newFakePromptStore(), WithComposerClock(fixedClock()))

	var completions []string
	ch, err := composer.Converse(context.Background(), driving.ConverseRequest{
		Query:   "What do my notes say?",
		Command: domain.CommandNotes,
		OnCompletion: func(response string) {
			completions = append(completions, response)
		},
	})

	require.NoError(t, err)
	chunks := collect(t, ch)
	require.Len(t, chunks, 1)
	assert.Equal(t, "I could not find any relevant notes to respond to your message.", chunks[0])
	// Callback fires exactly once with the same text; the backend is
	// never touched.
	assert.Equal(t, chunks, completions)
	assert.Zero(t, llm.streamCalls)
	assert.Zero(t, llm.completeCalls)
}

func TestConverse_OnlineModeWithoutResults(t *testing.T) {
	llm := &fakeCompletion{}
	composer := NewComposer(llm, newFakePromptStore(), WithComposerClock(fixedClock()))

	ch, err := composer.Converse(context.Background(), driving.ConverseRequest{
		Query:   "What is happening today?",
		Command: domain.CommandOnline,
	})

	require.NoError(t, err)
	chunks := collect(t, ch)
	require.Len(t, chunks, 1)
	assert.Equal(t, "I could not find any relevant online results to respond to your message.", chunks[0])
	assert.Zero(t, llm.streamCalls)
}

func TestConverse_NotesModeWithReferences(t *testing.T) {
	llm := &fakeCompletion{chunks: []string{"You ", "climbed."}}
	composer := NewComposer(llm, newFakePromptStore(), WithComposerClock(fixedClock()))

	var completed string
	ch, err := composer.Converse(context.Background(), driving.ConverseRequest{
		Query:        "What did I do in May?",
		Command:      domain.CommandNotes,
		References:   []string{"climbed a mountain", "climbed a mountain", "read a book"},
		OnCompletion: func(response string) { completed = response },
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"You ", "climbed."}, collect(t, ch))
	assert.Equal(t, "You climbed.", completed)
	assert.Equal(t, 1, llm.streamCalls)

	// Primer is the last message: notes template with deduplicated,
	// marked-up references.
	primer := llm.lastMessages[len(llm.lastMessages)-1]
	assert.Equal(t, domain.RoleUser, primer.Role)
	assert.Contains(t, primer.Content, "# climbed a mountain\n\n# read a book")
	assert.Contains(t, primer.Content, "What did I do in May?")

	// System message carries the dated personality.
	assert.Equal(t, domain.RoleSystem, llm.lastMessages[0].Role)
	assert.Contains(t, llm.lastMessages[0].Content, "Wednesday, 2023-04-05")

	// Compiled references travel with the stream request.
	assert.Equal(t, []string{"climbed a mountain", "climbed a mountain", "read a book"}, llm.lastStream.References)
	assert.Equal(t, []string{"Notes:\n["}, llm.lastStream.StopSequences)
}

func TestConverse_DefaultModeWithoutReferences(t *testing.T) {
	llm := &fakeCompletion{chunks: []string{"hi"}}
	composer := NewComposer(llm, newFakePromptStore(), WithComposerClock(fixedClock()))

	ch, err := composer.Converse(context.Background(), driving.ConverseRequest{
		Query:   "Hello there",
		Command: domain.CommandDefault,
	})

	require.NoError(t, err)
	collect(t, ch)
	require.Equal(t, 1, llm.streamCalls)
	primer := llm.lastMessages[len(llm.lastMessages)-1]
	assert.Equal(t, "Question: Hello there", primer.Content)
}

func TestConverse_GeneralModeIgnoresReferences(t *testing.T) {
	llm := &fakeCompletion{chunks: []string{"hi"}}
	composer := NewComposer(llm, newFakePromptStore(), WithComposerClock(fixedClock()))

	ch, err := composer.Converse(context.Background(), driving.ConverseRequest{
		Query:      "Explain entropy",
		Command:    domain.CommandGeneral,
		References: []string{"unrelated note"},
	})

	require.NoError(t, err)
	collect(t, ch)
	primer := llm.lastMessages[len(llm.lastMessages)-1]
	assert.Equal(t, "Question: Explain entropy", primer.Content)
	assert.NotContains(t, primer.Content, "unrelated note")
}

func TestConverse_OnlineModeWithResults(t *testing.T) {
	llm := &fakeCompletion{chunks: []string{"sunny"}}
	composer := NewComposer(llm, newFakePromptStore(), WithComposerClock(fixedClock()))

	ch, err := composer.Converse(context.Background(), driving.ConverseRequest{
		Query:         "Weather in Nairobi?",
		Command:       domain.CommandOnline,
		OnlineResults: []string{"Nairobi: 24C, clear skies"},
	})

	require.NoError(t, err)
	collect(t, ch)
	primer := llm.lastMessages[len(llm.lastMessages)-1]
	assert.Contains(t, primer.Content, "Nairobi: 24C, clear skies")
	assert.Contains(t, primer.Content, "Weather in Nairobi?")
}

func TestConverse_HistoryFlowsIntoContext(t *testing.T) {
	llm := &fakeCompletion{chunks: []string{"again"}}
	composer := NewComposer(llm, newFakePromptStore(), WithComposerClock(fixedClock()))

	log := domain.ConversationLog{Chat: []domain.LogEntry{
		{
			By:      domain.ActorAssistant,
			Message: "You hiked Mount Kenya.",
			Intent:  domain.Intent{Query: "What did I do last weekend?"},
		},
	}}

	ch, err := composer.Converse(context.Background(), driving.ConverseRequest{
		Query:   "And before that?",
		Command: domain.CommandDefault,
		Log:     log,
	})

	require.NoError(t, err)
	collect(t, ch)
	require.Len(t, llm.lastMessages, 4)
	assert.Equal(t, "What did I do last weekend?", llm.lastMessages[1].Content)
	assert.Equal(t, "You hiked Mount Kenya.", llm.lastMessages[2].Content)
}
