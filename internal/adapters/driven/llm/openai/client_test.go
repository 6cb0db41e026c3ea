package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
)

func testService(t *testing.T, handler http.HandlerFunc) *CompletionService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := New(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL + "/v1",
		MaxRetries:        2,
		RetryDelay:        time.Millisecond,
		RequestsPerMinute: 600000,
	})
	require.NoError(t, err)
	return svc
}

func completionJSON(content string) string {
	resp := map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	body, _ := json.Marshal(resp)
	return string(body)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplete_ReturnsContent(t *testing.T) {
	var gotReq map[string]any
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON(`["inferred query"]`))
	})

	response, err := svc.Complete(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "prompt"},
	}, driven.CompletionOptions{MaxTokens: 100, StopSequences: []string{"A: ", "\n"}})

	require.NoError(t, err)
	assert.Equal(t, `["inferred query"]`, response)
	assert.Equal(t, "gpt-3.5-turbo", gotReq["model"])
	assert.EqualValues(t, 100, gotReq["max_tokens"])
	assert.Equal(t, []any{"A: ", "\n"}, gotReq["stop"])
}

func TestComplete_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error": {"message": "rate limited", "type": "rate_limit_exceeded"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("recovered"))
	})

	response, err := svc.Complete(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.CompletionOptions{})

	require.NoError(t, err)
	assert.Equal(t, "recovered", response)
	assert.Equal(t, 3, attempts)
}

func TestComplete_SurfacesExhaustion(t *testing.T) {
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "boom", "type": "server_error"}}`)
	})

	_, err := svc.Complete(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.CompletionOptions{})

	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestComplete_DoesNotRetryTerminalErrors(t *testing.T) {
	attempts := 0
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	})

	_, err := svc.Complete(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.CompletionOptions{})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestChatStream_YieldsChunksAndCompletes(t *testing.T) {
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, content := range []string{"Hello", " world"} {
			chunk := map[string]any{
				"id":     "chatcmpl-1",
				"object": "chat.completion.chunk",
				"choices": []map[string]any{
					{"index": 0, "delta": map[string]string{"content": content}},
				},
			}
			body, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", body)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var completed string
	ch, err := svc.ChatStream(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.ChatStreamOptions{OnCompletion: func(response string) { completed = response }})
	require.NoError(t, err)

	var chunks []string
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	assert.Equal(t, []string{"Hello", " world"}, chunks)
	assert.Equal(t, "Hello world", completed)
}

func TestChatStream_StopsOnCancelledContext(t *testing.T) {
	release := make(chan struct{})
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunk := `{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"x"}}]}`
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := svc.ChatStream(ctx, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.ChatStreamOptions{})
	require.NoError(t, err)

	// Abandon the stream without draining it; cancellation must still
	// end production and close the channel.
	cancel()

	select {
	case <-drained(ch):
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after context cancellation")
	}
}

// drained signals once the channel closes, consuming leftovers.
func drained(ch <-chan string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	return done
}
