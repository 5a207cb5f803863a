package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable marks a failed upstream call (network, timeout,
	// non-2xx status, malformed body).
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrAggregationFailed is returned when every provider failed and no
	// fallback is configured.
	ErrAggregationFailed = errors.New("aggregation failed: no provider returned data")

	// ErrConfiguration marks a provider that cannot be used as configured.
	ErrConfiguration = errors.New("configuration error")
)

// ProviderError describes one failed upstream call.
type ProviderError struct {
	Provider string
	Query    string
	Status   int // HTTP status, 0 when no response was received
	Err      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s provider unavailable (query %q)", e.Provider, e.Query)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProviderUnavailable }

// ConfigError reports a missing or invalid setting for a provider.
type ConfigError struct {
	Provider string
	Setting  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s provider not configured: missing %s", e.Provider, e.Setting)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }
