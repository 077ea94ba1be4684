package xapi

import "fmt"

// ConfigError reports a missing or empty credential field. Raised at
// startup, never during a call.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %q is empty", e.Field)
}

// ValidationError reports input rejected before any network call: text too
// long, bad image file, thread too long.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AuthError reports a 401 from the X API. Not retried.
type AuthError struct {
	Operation string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: 401 unauthorized from X API, credentials may be revoked or invalid, regenerate them at https://developer.x.com/", e.Operation)
}

// RateLimitError reports a 429. ResetAt carries the x-rate-limit-reset
// header value verbatim, the format is not parsed. Never retried here,
// the caller decides.
type RateLimitError struct {
	Operation string
	ResetAt   string
}

func (e *RateLimitError) Error() string {
	if e.ResetAt != "" {
		return fmt.Sprintf("%s: rate limited (429), limit resets at timestamp %s", e.Operation, e.ResetAt)
	}
	return fmt.Sprintf("%s: rate limited (429), try again later", e.Operation)
}

// RemoteError reports any other non-2xx response, with the raw status and
// body kept for diagnostics.
type RemoteError struct {
	Operation string
	Status    int
	Body      string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: X API error (%d): %s", e.Operation, e.Status, e.Body)
}
