package yahoo

import (
	"errors"
	"fmt"
)

// Session and authentication failures.
var (
	// ErrNoCookies indicates the cookie endpoint answered without a
	// Set-Cookie header.
	ErrNoCookies = errors.New("no cookies in response")

	// ErrInvisibleASCIIInCookies indicates the Set-Cookie header value
	// contains bytes outside printable ASCII.
	ErrInvisibleASCIIInCookies = errors.New("cookie header contains non-printable characters")

	// ErrInvalidCookie indicates the crumb endpoint rejected the session
	// cookie even after one refresh.
	ErrInvalidCookie = errors.New("yahoo rejected the session cookie")

	// ErrInvalidCrumb indicates the crumb was rejected (or never issued)
	// even after one refresh.
	ErrInvalidCrumb = errors.New("yahoo rejected the crumb")

	// ErrUnauthorized indicates an authenticated endpoint reported an
	// Unauthorized error code even after one crumb refresh.
	ErrUnauthorized = errors.New("unauthorized")
)

// Data-shape failures.
var (
	// ErrNoResult indicates the response carried no result list at all.
	ErrNoResult = errors.New("response contains no result")

	// ErrNoQuotes indicates a well-formed response with no usable quote
	// points (zero timestamps, or a null close at the inspected index).
	ErrNoQuotes = errors.New("no valid quotes in response")

	// ErrDataInconsistency indicates the parallel per-timestamp arrays do
	// not agree in presence or length and the series must not be indexed.
	ErrDataInconsistency = errors.New("inconsistent quote data")
)

// ErrConnection wraps transport-level failures (DNS, connect, timeout).
// These are never retried by the client.
var ErrConnection = errors.New("connection to yahoo finance failed")

// APIError is a structured {code, description} error embedded in an
// otherwise successful HTTP response. Its presence overrides HTTP success.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo api error %s: %s", e.Code, e.Description)
}

// StatusError reports a non-200 HTTP status from a Yahoo endpoint.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch failed with status %d: %s", e.StatusCode, e.URL)
}

// RateLimitError indicates an explicit throttling signal, either HTTP 429 or
// a "Too Many Requests" marker in the body. Callers should back off; the
// client never retries it.
type RateLimitError struct {
	Context string
}

func (e *RateLimitError) Error() string {
	return "yahoo rate limit exceeded: " + e.Context
}

// DeserializeError wraps a body that failed to parse as the expected schema.
type DeserializeError struct {
	Err error
}

func (e *DeserializeError) Error() string {
	return "deserializing yahoo response failed: " + e.Err.Error()
}

func (e *DeserializeError) Unwrap() error { return e.Err }

// MissingFieldError indicates a tabular payload lacked a required column
// value.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}
