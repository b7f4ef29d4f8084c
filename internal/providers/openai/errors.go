package openai

import (
	"fmt"
	"strings"

	"adcraft/internal/domain"
)

// ErrorKind tags an API failure so callers never re-parse message text.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindQuota
	KindRateLimit
)

// APIError is the single error type returned for failed collaborator calls.
// Classification happens once, here at the boundary, from the HTTP status and
// the provider's free-text message.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: %s (status %d)", e.Message, e.Status)
}

// Unwrap maps the tagged kind onto the domain sentinels so errors.Is works
// across layers.
func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindQuota:
		return domain.ErrQuotaExceeded
	case KindRateLimit:
		return domain.ErrRateLimited
	default:
		return domain.ErrProviderFailure
	}
}

func classify(status int, message string) *APIError {
	kind := KindOther
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "quota"):
		kind = KindQuota
	case status == 429 || strings.Contains(lower, "rate limit"):
		kind = KindRateLimit
	}
	return &APIError{Kind: kind, Status: status, Message: message}
}
