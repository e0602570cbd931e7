package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ProviderError is a non-2xx answer from an LLM backend.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.Status, e.Body)
}

// Transient reports whether the status is worth retrying: timeouts,
// rate limits and 5xx.
func (e *ProviderError) Transient() bool {
	switch {
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500 && e.Status < 600:
		return true
	}
	return false
}

// ErrEmptyResponse is returned when a backend answers 200 with no candidates.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// IsTransient classifies an error returned by LLMProvider.Chat. Cancellation
// of the caller's context is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Transient()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
