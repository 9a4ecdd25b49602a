package inference

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNoAPIKey            = errors.New("inference: API key required")
	ErrNoModel             = errors.New("inference: model required")
	ErrProviderUnavailable = errors.New("inference: provider unavailable")
	ErrEmptyPrompt         = errors.New("inference: empty prompt")

	// ErrEmptyResponse means the API answered but no candidate carried text,
	// usually because the prompt was blocked.
	ErrEmptyResponse = errors.New("inference: empty response")
)

// APIError is a non-2xx answer from the generative API.
type APIError struct {
	StatusCode int
	Message    string
	Status     string // e.g. "RESOURCE_EXHAUSTED"
	Provider   string
}

func (e *APIError) Error() string {
	code := fmt.Sprint(e.StatusCode)
	if e.Status != "" {
		code += " " + e.Status
	}
	return fmt.Sprintf("inference [%s]: %s: %s", e.Provider, code, e.Message)
}

// IsRateLimited reports quota exhaustion (429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsUnauthorized reports a missing, invalid or unprivileged key (401/403).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRetryable reports whether another attempt, possibly against another
// model, could succeed: quota exhaustion and 5xx overloads.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.StatusCode >= 500 && e.StatusCode <= 599
}

// ProviderError tags a lower-level failure with the provider that hit it.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return "inference [" + e.Provider + "]: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// WrapError tags err with provider; nil stays nil.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}

// ChainError collects one failure per provider a Chain tried, in order.
// It unwraps to the last one, which is what the user is shown.
type ChainError struct {
	Errors []error
}

func (e *ChainError) Error() string {
	switch n := len(e.Errors); n {
	case 0:
		return "inference chain: no providers tried"
	case 1:
		return "inference chain: " + e.Errors[0].Error()
	default:
		msgs := make([]string, n)
		for i, err := range e.Errors {
			msgs[i] = err.Error()
		}
		return fmt.Sprintf("inference chain: %d providers failed: %s", n, strings.Join(msgs, "; "))
	}
}

func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Message extracts the human-readable part of err for display: the API's
// own message when there is one, otherwise the error text.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
