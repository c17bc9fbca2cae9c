package types

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultTimeout is the default per-attempt request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of additional attempts on transport failure
	DefaultMaxRetries = 3

	// DefaultRetryWait is the backoff base delay
	DefaultRetryWait = 1 * time.Second

	// DefaultMaxRetryWait caps the backoff delay
	DefaultMaxRetryWait = 30 * time.Second

	// DefaultTokenLifetime applies when the server omits expires_in
	DefaultTokenLifetime = 3600 * time.Second

	// UserAgent is the user agent string
	UserAgent = "cmsclient-go/1.0.0"
)

// Common errors
var (
	// ErrNotAuthenticated is returned when no session exists
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNetwork is returned when no response was received
	ErrNetwork = errors.New("network failure")

	// ErrTimeout is returned when an attempt exceeded its deadline. It is a kind of ErrNetwork.
	ErrTimeout = fmt.Errorf("request timeout: %w", ErrNetwork)

	// ErrHTTP is returned for non-2xx responses
	ErrHTTP = errors.New("http error")

	// ErrParse is returned when a response body is not valid JSON
	ErrParse = errors.New("response parse error")

	// ErrAuthenticationRequired is returned when the session expired and could not be refreshed
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrAuthenticationFailed is returned when the backend rejects credentials
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrEndpointUnavailable is returned when every login endpoint shape returned 404
	ErrEndpointUnavailable = errors.New("endpoint unavailable")

	// ErrMalformedResponse is returned when a body is present but not decodable
	ErrMalformedResponse = errors.New("malformed response")
)
