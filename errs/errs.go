package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrVideoUnavailable indicates that a referenced video was not returned by the service.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrUnauthorized indicates missing or rejected credentials (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller may not access the resource (HTTP 403).
	ErrForbidden = errors.New("forbidden")
	// ErrQuotaExceeded indicates the API quota or rate limit was exhausted.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrNotFound indicates the requested collection does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")
	// ErrServer indicates a server-side failure (HTTP 5xx).
	ErrServer = errors.New("server error")
	// ErrPageSize indicates a list request asked for more than the allowed page size.
	ErrPageSize = errors.New("page size exceeds limit")
	// ErrUnexpectedShape indicates a response record lacks a key the archiver relies on.
	ErrUnexpectedShape = errors.New("unexpected response shape")
	// ErrInvalidCredentials indicates an unreadable or incomplete credentials file.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// APIError describes a non-2xx response from the remote listing service.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api error %d", e.StatusCode)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap exposes the sentinel the status maps to.
func (e *APIError) Unwrap() error { return e.Err }

// FromStatus maps an HTTP status and API reason to a sentinel error.
// It returns nil for statuses that have no dedicated sentinel.
func FromStatus(status int, reason string) error {
	switch {
	case status == 401:
		return ErrUnauthorized
	case status == 403 && (reason == "quotaExceeded" || reason == "rateLimitExceeded" || reason == "dailyLimitExceeded"):
		return ErrQuotaExceeded
	case status == 429:
		return ErrQuotaExceeded
	case status == 403:
		return ErrForbidden
	case status == 404:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	}
	return nil
}
