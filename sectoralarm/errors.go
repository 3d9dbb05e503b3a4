package sectoralarm

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds carried by AuthError. Match them with errors.Is.
var (
	ErrNoCookieIssued   = errors.New("no cookie issued")
	ErrTokenParseFailed = errors.New("verification token parse failed")
	ErrLoginRejected    = errors.New("login rejected")
	ErrLogoffRejected   = errors.New("logoff rejected")

	// ErrNotAuthenticated is returned by panel endpoints called without a session token.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AuthError reports a failed login or logoff.
type AuthError struct {
	Op         string
	Kind       error
	StatusCode int    // 0 when no response was involved
	Detail     string // portal-provided reason, when one could be extracted
	Err        error  // underlying cause (network, parse), may be nil
}

func (e *AuthError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	// Err may already wrap Kind; print it once.
	errCarriesKind := e.Err != nil && e.Kind != nil && errors.Is(e.Err, e.Kind)
	switch {
	case errCarriesKind:
		b.WriteString(e.Err.Error())
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	default:
		b.WriteString("authentication failed")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil && !errCarriesKind {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AuthError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NetworkError wraps a transport-level failure verbatim.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is returned when a response status is outside the endpoint's accepted set.
// Body holds whatever the portal sent back (bounded by the executor).
type StatusError struct {
	Op       string
	Expected int
	Actual   int
	Body     string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if len(msg) > kMaxErrorSnippet {
		msg = msg[:kMaxErrorSnippet] + "..."
	}
	if msg == "" {
		return fmt.Sprintf("%s: status %d (want %d)", e.Op, e.Actual, e.Expected)
	}
	return fmt.Sprintf("%s: status %d (want %d): %s", e.Op, e.Actual, e.Expected, msg)
}

// JSONError is returned when a response body is not valid JSON. Body is the raw text.
type JSONError struct {
	Op   string
	Body string
	Err  error
}

func (e *JSONError) Error() string {
	return fmt.Sprintf("%s: could not parse response: %s", e.Op, e.Body)
}

func (e *JSONError) Unwrap() error { return e.Err }
