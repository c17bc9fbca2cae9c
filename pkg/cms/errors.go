package cms

import (
	"net/http"

	internalTypes "github.com/eshaffer321/cmsclient-go/internal/types"
	"github.com/pkg/errors"
)

var (
	// ErrNotAuthenticated is returned when no session exists
	ErrNotAuthenticated = internalTypes.ErrNotAuthenticated

	// ErrNetwork is returned when no response was received
	ErrNetwork = internalTypes.ErrNetwork

	// ErrTimeout is returned when an attempt timed out. errors.Is(ErrTimeout, ErrNetwork) holds.
	ErrTimeout = internalTypes.ErrTimeout

	// ErrHTTP is returned for non-2xx responses
	ErrHTTP = internalTypes.ErrHTTP

	// ErrParse is returned when a response body could not be decoded
	ErrParse = internalTypes.ErrParse

	// ErrAuthenticationRequired is returned when the session expired and could not be refreshed
	ErrAuthenticationRequired = internalTypes.ErrAuthenticationRequired

	// ErrAuthenticationFailed is returned when the backend rejects credentials
	ErrAuthenticationFailed = internalTypes.ErrAuthenticationFailed

	// ErrEndpointUnavailable is returned when no login endpoint exists
	ErrEndpointUnavailable = internalTypes.ErrEndpointUnavailable

	// ErrMalformedResponse is returned when a token response carries no token
	ErrMalformedResponse = internalTypes.ErrMalformedResponse
)

// Error represents an API error
type Error = internalTypes.Error

// IsAuthError checks if error is authentication related
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrAuthenticationRequired) ||
		errors.Is(err, ErrAuthenticationFailed) {
		return true
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}

	return false
}

// IsRetryable checks if error is retryable. Only failures where no
// response arrived qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}
