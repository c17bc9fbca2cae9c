package types

import (
	"context"
	"net/http"
	"time"
)

// AuthTokens is the token set issued on login or refresh. A refresh yields a
// new value; an issued value is never modified.
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   *int   `json:"expires_in,omitempty"`
}

// Lifetime returns the declared token lifetime or the default
func (t AuthTokens) Lifetime() time.Duration {
	if t.ExpiresIn != nil && *t.ExpiresIn > 0 {
		return time.Duration(*t.ExpiresIn) * time.Second
	}
	return DefaultTokenLifetime
}

// AuthorizationValue formats the Authorization header value
func (t AuthTokens) AuthorizationValue() string {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + t.AccessToken
}

// Session represents the current authentication state
type Session struct {
	Tokens    *AuthTokens `json:"tokens,omitempty"`
	ExpiresAt time.Time   `json:"expiryInstant"`
}

// Valid reports whether the session holds a token that has not expired at now
func (s Session) Valid(now time.Time) bool {
	return s.Tokens != nil && s.Tokens.AccessToken != "" && now.Before(s.ExpiresAt)
}

// Status is a read-only snapshot of the session for display
type Status struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	Tokens          *AuthTokens `json:"tokens,omitempty"`
	ExpiresAt       *time.Time  `json:"expiresAt,omitempty"`
	Subject         string      `json:"subject,omitempty"`
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxRetries int           `json:"maxRetries" yaml:"max_retries"`
	RetryWait  time.Duration `json:"retryWait" yaml:"retry_wait"`
	MaxWait    time.Duration `json:"maxWait" yaml:"max_wait"`
}

// Hooks provides lifecycle hooks for requests
type Hooks struct {
	OnRequest  func(ctx context.Context, req *http.Request)
	OnResponse func(ctx context.Context, resp *http.Response, duration time.Duration)
	OnError    func(ctx context.Context, err error)
}
