package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrModelUnavailable indicates the model backend is not configured.
	// Chat features are disabled without it.
	ErrModelUnavailable = errors.New("model backend unavailable")

	// ErrRateLimited indicates the model backend rate limit was exhausted
	// after bounded retries.
	ErrRateLimited = errors.New("rate limited")

	// ErrPromptNotFound indicates a required prompt template is missing
	// from the prompt store and has no embedded default.
	ErrPromptNotFound = errors.New("prompt not found")
)
