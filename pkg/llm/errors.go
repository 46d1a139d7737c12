package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthentication is returned when a required credential is missing or rejected.
	ErrAuthentication = errors.New("authentication error")
	// ErrConfiguration is returned when a provider cannot be built from its configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrLLM is returned when the remote model call fails or its answer cannot be read.
	ErrLLM = errors.New("llm error")
	// ErrNetwork is returned when the request never got an HTTP response.
	ErrNetwork = errors.New("network error")
)

// statusError carries the HTTP status of a failed provider call so the
// resilient layer can decide whether another attempt makes sense.
type statusError struct {
	provider string
	status   int
	body     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %s API error %d: %s", ErrLLM, e.provider, e.status, e.body)
}

func (e *statusError) Unwrap() error { return ErrLLM }

func (e *statusError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= http.StatusInternalServerError
}

// IsRetryable reports whether err is a transient failure worth another attempt.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	return false
}

func authError(provider string) error {
	return fmt.Errorf("%w: %s API key is required", ErrAuthentication, provider)
}

func endpointError(provider string) error {
	return fmt.Errorf("%w: %s provider requires an API endpoint", ErrConfiguration, provider)
}

func contentError(provider string) error {
	return fmt.Errorf("%w: failed to extract content from %s response", ErrLLM, provider)
}
