package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error represents an API error
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("error: %s", e.Code)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Envelope is the uniform outcome of every request: exactly one of these
// comes back from the pipeline regardless of how the call failed.
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Status  int             `json:"status"`
	Success bool            `json:"success"`

	// Err classifies a failure for errors.Is checks. Nil on success.
	Err error `json:"-"`
}

// Failure builds an unsuccessful envelope
func Failure(status int, err error, message string) *Envelope {
	if message == "" && err != nil {
		message = err.Error()
	}
	return &Envelope{
		Status:  status,
		Error:   message,
		Success: false,
		Err:     err,
	}
}

// Is reports whether the envelope failed with target
func (e *Envelope) Is(target error) bool {
	return e != nil && e.Err != nil && errors.Is(e.Err, target)
}
