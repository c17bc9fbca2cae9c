package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/eshaffer321/cmsclient-go/internal/transport"
	"github.com/eshaffer321/cmsclient-go/internal/types"
)

const (
	loginEndpoint       = "/api/v1/auth/login/json"
	legacyLoginEndpoint = "/api/v1/auth/login"
	refreshEndpoint     = "/api/v1/auth/refresh"
	logoutEndpoint      = "/api/v1/auth/logout"
	meEndpoint          = "/api/v1/auth/me"

	formContentType = "application/x-www-form-urlencoded"
)

// healthEndpoints are probed in order
var healthEndpoints = []string{"/health", "/api/v1/health"}

// Requester issues requests through the pipeline
type Requester interface {
	Do(ctx context.Context, endpoint string, opts *transport.RequestOptions) *types.Envelope
}

// TokenStore is the part of the session store the auth service writes to
type TokenStore interface {
	SetTokens(tokens types.AuthTokens) types.Session
	Clear()
	Snapshot() types.Session
}

// Service handles authentication operations
type Service struct {
	requester Requester
	store     TokenStore
	logger    types.Logger
}

var _ transport.Refresher = (*Service)(nil)

// NewService creates a new auth service
func NewService(requester Requester, store TokenStore, logger types.Logger) *Service {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Service{
		requester: requester,
		store:     store,
		logger:    logger,
	}
}

// Authenticate logs in with the JSON endpoint, falling back to the legacy
// form endpoint only when the first one answers 404.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) *types.Envelope {
	s.logger.Debug("Login request", "identifier", identifier)

	env := s.requester.Do(ctx, loginEndpoint, &transport.RequestOptions{
		Method: http.MethodPost,
		Body: map[string]string{
			"email":    identifier,
			"password": password,
		},
		RequireAuth: transport.Bool(false),
	})

	if env.Status == http.StatusNotFound {
		s.logger.Info("Login endpoint unavailable, trying legacy endpoint", "endpoint", legacyLoginEndpoint)

		form := url.Values{
			"username":   {identifier},
			"password":   {password},
			"grant_type": {"password"},
		}
		env = s.requester.Do(ctx, legacyLoginEndpoint, &transport.RequestOptions{
			Method:      http.MethodPost,
			Body:        form.Encode(),
			Headers:     map[string]string{"Content-Type": formContentType},
			RequireAuth: transport.Bool(false),
		})

		if env.Status == http.StatusNotFound {
			return types.Failure(http.StatusNotFound, &types.Error{
				Code:       "ENDPOINT_UNAVAILABLE",
				Message:    "login endpoint unavailable",
				StatusCode: http.StatusNotFound,
				Err:        types.ErrEndpointUnavailable,
			}, "")
		}
	}

	if unparsable(env) {
		s.logger.Warn("Login returned an unparsable body", "status", env.Status)
		return malformed(env.Status, "unparsable login response")
	}
	if !env.Success {
		if env.Status == http.StatusUnauthorized {
			env.Err = &types.Error{
				Code:       "AUTHENTICATION_FAILED",
				Message:    env.Error,
				StatusCode: env.Status,
				Err:        types.ErrAuthenticationFailed,
			}
		}
		s.logger.Warn("Login failed", "identifier", identifier, "status", env.Status, "error", env.Error)
		return env
	}

	tokens, ok := decodeTokens(env.Data)
	if !ok {
		return malformed(env.Status, "no token in login response")
	}

	s.store.SetTokens(tokens)
	s.logger.Info("Login successful", "identifier", identifier)

	return env
}

// Refresh exchanges the current token, even a stale one, for a new one.
// Failure leaves the session untouched.
func (s *Service) Refresh(ctx context.Context) bool {
	current := s.store.Snapshot()
	if current.Tokens == nil {
		return false
	}

	// The token goes in explicitly: with auth required the pipeline would
	// run its own preflight and refresh again.
	env := s.requester.Do(ctx, refreshEndpoint, &transport.RequestOptions{
		Method:      http.MethodPost,
		Headers:     map[string]string{"Authorization": current.Tokens.AuthorizationValue()},
		RequireAuth: transport.Bool(false),
		Retries:     transport.Int(0),
	})
	if unparsable(env) {
		s.logger.Warn("Token refresh returned an unparsable body", "status", env.Status)
		return false
	}
	if !env.Success {
		s.logger.Warn("Token refresh failed", "status", env.Status, "error", env.Error)
		return false
	}

	tokens, ok := decodeTokens(env.Data)
	if !ok {
		s.logger.Warn("Token refresh returned no token", "status", env.Status)
		return false
	}

	s.store.SetTokens(tokens)
	s.logger.Debug("Token refreshed")
	return true
}

// Logout clears the local session and then tells the backend. The backend
// call cannot fail the logout.
func (s *Service) Logout(ctx context.Context) {
	current := s.store.Snapshot()
	s.store.Clear()

	if current.Tokens == nil {
		return
	}

	env := s.requester.Do(ctx, logoutEndpoint, &transport.RequestOptions{
		Method:      http.MethodPost,
		Headers:     map[string]string{"Authorization": current.Tokens.AuthorizationValue()},
		RequireAuth: transport.Bool(false),
		Retries:     transport.Int(0),
	})
	if !env.Success {
		s.logger.Warn("Logout notification failed", "status", env.Status, "error", env.Error)
		return
	}
	s.logger.Info("Logged out")
}

// CurrentUser fetches the authenticated user
func (s *Service) CurrentUser(ctx context.Context) *types.Envelope {
	return s.requester.Do(ctx, meEndpoint, nil)
}

// Health probes the liveness endpoints in order and returns the first success,
// or the last failure.
func (s *Service) Health(ctx context.Context) *types.Envelope {
	var env *types.Envelope
	for _, endpoint := range healthEndpoints {
		env = s.requester.Do(ctx, endpoint, &transport.RequestOptions{
			RequireAuth: transport.Bool(false),
			Retries:     transport.Int(0),
		})
		if env.Success {
			return env
		}
	}
	return env
}

func decodeTokens(data json.RawMessage) (types.AuthTokens, bool) {
	var tokens types.AuthTokens
	if len(data) == 0 {
		return tokens, false
	}
	if err := json.Unmarshal(data, &tokens); err != nil || tokens.AccessToken == "" {
		return tokens, false
	}
	return tokens, true
}

// unparsable reports a 2xx response whose body could not be parsed
func unparsable(env *types.Envelope) bool {
	return env.Status >= 200 && env.Status < 300 && env.Is(types.ErrParse)
}

func malformed(status int, message string) *types.Envelope {
	return types.Failure(status, &types.Error{
		Code:       "MALFORMED_RESPONSE",
		Message:    message,
		StatusCode: status,
		Err:        types.ErrMalformedResponse,
	}, "")
}
