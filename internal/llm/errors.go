package llm

import (
	"errors"
	"fmt"
)

// ErrParseFailure indicates that model output was not in any
// extractable shape. Callers fall back to a conservative default
// verdict rather than aborting the review.
var ErrParseFailure = errors.New("model output not extractable")

// ProviderError is a transport or API failure from an LLM provider.
// Retryable errors (rate limits, transient server errors) are retried
// with backoff by the gateway before surfacing.
type ProviderError struct {
	Provider  Provider
	Status    int
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a retryable provider error.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// retryableStatus classifies HTTP status codes from provider APIs.
func retryableStatus(status int) bool {
	return status == 429 || status >= 500
}
