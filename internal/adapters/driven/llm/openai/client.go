// Package openai provides a model backend adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	gopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
	"github.com/jaytoday/khoj/internal/logger"
	"github.com/jaytoday/khoj/internal/util"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// Default configuration values.
const (
	DefaultModel             = "gpt-3.5-turbo"
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = 2 * time.Second
	DefaultRequestsPerMinute = 60
)

// Config holds configuration for the OpenAI completion service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API base URL. Useful for Azure OpenAI,
	// compatible local inference servers and tests.
	BaseURL string

	// Model is the chat model to use (default: gpt-3.5-turbo).
	Model string

	// MaxRetries bounds retry attempts on transient failures.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// RequestsPerMinute throttles outgoing requests.
	RequestsPerMinute int
}

// CompletionService calls the OpenAI chat completion API with rate
// limiting and retry-with-backoff on transient failures.
type CompletionService struct {
	client     *gopenai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
}

// New creates a new OpenAI completion service.
func New(cfg Config) (*CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &CompletionService{
		client:     gopenai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), 1),
	}, nil
}

// ModelName returns the model identifier requests are sent to.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Complete runs a non-streaming chat completion.
func (s *CompletionService) Complete(ctx context.Context, messages []domain.ChatMessage, opts driven.CompletionOptions) (string, error) {
	req := gopenai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   opts.MaxTokens,
		Temperature: temperature(opts.Temperature),
		Stop:        opts.StopSequences,
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := s.wait(ctx, attempt); err != nil {
			return "", err
		}

		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			if !isRetryable(err) {
				return "", fmt.Errorf("openai: chat completion: %w", err)
			}
			logger.Warn("openai: transient failure on attempt %d: %v", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("no completion choices returned")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("openai: chat completion failed after %d attempts: %w (%v)",
		s.maxRetries+1, domain.ErrModelUnavailable, lastErr)
}

// ChatStream runs a streaming chat completion. The returned channel is
// closed when the response is exhausted; production stops when ctx is
// cancelled even if the caller walks away from the channel.
func (s *CompletionService) ChatStream(ctx context.Context, messages []domain.ChatMessage, opts driven.ChatStreamOptions) (<-chan string, error) {
	req := gopenai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature(opts.Temperature),
		Stop:        opts.StopSequences,
		Stream:      true,
	}

	var stream *gopenai.ChatCompletionStream
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := s.wait(ctx, attempt); err != nil {
			return nil, err
		}

		var err error
		stream, err = s.client.CreateChatCompletionStream(ctx, req)
		if err == nil {
			break
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, fmt.Errorf("openai: chat stream: %w", err)
		}
		logger.Warn("openai: transient failure on attempt %d: %v", attempt+1, err)
	}
	if stream == nil {
		return nil, fmt.Errorf("openai: chat stream failed after %d attempts: %w (%v)",
			s.maxRetries+1, domain.ErrModelUnavailable, lastErr)
	}

	chunks := make(chan string)
	go func() {
		defer close(chunks)
		defer stream.Close()

		var full string
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				if opts.OnCompletion != nil {
					opts.OnCompletion(full)
				}
				return
			}
			if err != nil {
				logger.Warn("openai: stream interrupted: %v", err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			full += delta
			select {
			case chunks <- delta:
			case <-ctx.Done():
				return
			}
		}
	}()
	return chunks, nil
}

// wait applies rate limiting and, on retries, exponential backoff.
func (s *CompletionService) wait(ctx context.Context, attempt int) error {
	if attempt > 0 {
		select {
		case <-time.After(util.CalculateBackoff(s.retryDelay, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.limiter.Wait(ctx)
}

// isRetryable reports whether an API error is transient: rate limits and
// server-side failures retry, everything else is terminal.
func isRetryable(err error) bool {
	var apiErr *gopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *gopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests ||
			reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	// Network-level failures have no HTTP status; retry those too.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// temperature converts to the client type. A true zero must be sent
// explicitly: the client omits zero values from the request and the API
// would then default to 1.0.
func temperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// toOpenAIMessages converts domain messages to the client format.
func toOpenAIMessages(messages []domain.ChatMessage) []gopenai.ChatCompletionMessage {
	out := make([]gopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = gopenai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return out
}
