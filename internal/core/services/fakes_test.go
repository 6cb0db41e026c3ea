package services

import (
	"context"
	"strings"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
)

// fakePromptStore serves prompts from a map.
type fakePromptStore struct {
	prompts map[string]string
}

func newFakePromptStore() *fakePromptStore {
	return &fakePromptStore{prompts: map[string]string{
		driven.PromptPersonality:              "You are Khoj. Today is {current_date}.",
		driven.PromptExtractQuestions:         "History:\n{chat_history}Today is {current_date}. Yesterday was {yesterday_date}.\nQ: {text}\nA: ",
		driven.PromptNotesConversation:        "Notes:\n{references}\nQuestion: {query}",
		driven.PromptGeneralConversation:      "Question: {query}",
		driven.PromptOnlineSearchConversation: "Results:\n{online_results}\nQuestion: {query}",
		driven.PromptNoNotesFound:             "I could not find any relevant notes to respond to your message.",
		driven.PromptNoOnlineResultsFound:     "I could not find any relevant online results to respond to your message.",
	}}
}

func (f *fakePromptStore) Load(name string) (string, error) {
	if prompt, ok := f.prompts[name]; ok {
		return prompt, nil
	}
	return "", domain.ErrPromptNotFound
}

func (f *fakePromptStore) Reload() {}

// fakeCompletion is a scriptable model backend.
type fakeCompletion struct {
	model    string
	response string
	chunks   []string
	err      error

	completeCalls int
	streamCalls   int
	lastMessages  []domain.ChatMessage
	lastOpts      driven.CompletionOptions
	lastStream    driven.ChatStreamOptions
}

// Ensure fakeCompletion implements the interface.
var _ driven.CompletionService = (*fakeCompletion)(nil)

func (f *fakeCompletion) Complete(_ context.Context, messages []domain.ChatMessage, opts driven.CompletionOptions) (string, error) {
	f.completeCalls++
	f.lastMessages = messages
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompletion) ChatStream(_ context.Context, messages []domain.ChatMessage, opts driven.ChatStreamOptions) (<-chan string, error) {
	f.streamCalls++
	f.lastMessages = messages
	f.lastStream = opts
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan string, len(f.chunks))
	for _, chunk := range f.chunks {
		ch <- chunk
	}
	close(ch)
	if opts.OnCompletion != nil {
		opts.OnCompletion(strings.Join(f.chunks, ""))
	}
	return ch, nil
}

func (f *fakeCompletion) ModelName() string {
	if f.model == "" {
		return "gpt-3.5-turbo"
	}
	return f.model
}
