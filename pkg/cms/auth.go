package cms

import (
	"context"
)

// authService implements the AuthService interface
type authService struct {
	client *Client
}

// Login performs authentication
func (a *authService) Login(ctx context.Context, identifier, password string) *Response[AuthTokens] {
	return decode[AuthTokens](a.client.auth.Authenticate(ctx, identifier, password))
}

// Logout clears the session and notifies the backend
func (a *authService) Logout(ctx context.Context) {
	a.client.auth.Logout(ctx)
}

// Refresh renews the current token
func (a *authService) Refresh(ctx context.Context) bool {
	return a.client.auth.Refresh(ctx)
}

// CurrentUser returns the authenticated user
func (a *authService) CurrentUser(ctx context.Context) *Response[User] {
	return decode[User](a.client.auth.CurrentUser(ctx))
}

// Status returns a snapshot of the session
func (a *authService) Status() AuthStatus {
	return a.client.session.Status()
}

// IsAuthenticated reports whether a valid token is held
func (a *authService) IsAuthenticated() bool {
	return a.client.session.IsAuthenticated()
}
