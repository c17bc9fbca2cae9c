package cms

import (
	"context"
	"net/http"
	"time"

	"github.com/eshaffer321/cmsclient-go/internal/auth"
	"github.com/eshaffer321/cmsclient-go/internal/config"
	"github.com/eshaffer321/cmsclient-go/internal/mockapi"
	"github.com/eshaffer321/cmsclient-go/internal/session"
	"github.com/eshaffer321/cmsclient-go/internal/transport"
	internalTypes "github.com/eshaffer321/cmsclient-go/internal/types"
	"github.com/getsentry/sentry-go"
)

// Client is the main CMS API client
type Client struct {
	// Service interfaces
	Auth       AuthService
	Articles   ArticleService
	Revisions  RevisionService
	Approvals  ApprovalService
	Search     SearchService
	Categories CategoryService
	Drafts     DraftService

	// Internal fields
	config    *config.Manager
	session   *session.Store
	transport Transport
	auth      *auth.Service
	options   *ClientOptions
}

// ClientOptions configures the client
type ClientOptions struct {
	// Mode selects the mock or real backend. Empty means auto.
	Mode Mode

	// Environment decides what auto mode resolves to. Empty means development.
	Environment Environment

	// BaseURL is the real backend URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout bounds each request attempt
	Timeout time.Duration

	// SessionStorage is the durable session slot. Nil keeps the session in memory only.
	SessionStorage SessionStorage

	// Logger for debug logging
	Logger Logger

	// RetryConfig configures retry behavior
	RetryConfig *RetryConfig

	// Hooks for observability
	Hooks *Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions

	// Clock overrides the session clock
	Clock func() time.Time
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// NewClient creates a new CMS client. A persisted session is restored from
// SessionStorage when it is still valid.
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = string(opts.Environment)
			if sentryOpts.Environment == "" {
				sentryOpts.Environment = string(config.EnvDevelopment)
			}
		}

		if err := sentry.Init(sentryOpts); err != nil {
			// Log error but don't fail client creation
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	var logger internalTypes.Logger = internalTypes.NopLogger{}
	if opts.Logger != nil {
		logger = opts.Logger
	}

	env := opts.Environment
	if env == "" {
		env = config.EnvDevelopment
	}
	mode := opts.Mode
	if mode == "" {
		mode = config.ModeAuto
	}
	if !mode.IsValid() {
		return nil, &internalTypes.Error{
			Code:    "INVALID_MODE",
			Message: "invalid mode " + string(mode),
		}
	}

	manager := config.NewManager(env, mode, opts.BaseURL, logger)
	update := config.ConfigUpdate{}
	if opts.Timeout > 0 {
		update.Timeout = &opts.Timeout
	}
	if rc := opts.RetryConfig; rc != nil {
		update.MaxRetries = &rc.MaxRetries
		if rc.RetryWait > 0 {
			update.RetryWaitMin = &rc.RetryWait
		}
		if rc.MaxWait > 0 {
			update.RetryWaitMax = &rc.MaxWait
		}
	}
	manager.UpdateConfig(update)

	var storeOpts []session.Option
	if opts.Clock != nil {
		storeOpts = append(storeOpts, session.WithClock(opts.Clock))
	}
	store := session.NewStore(opts.SessionStorage, logger, storeOpts...)
	if store.Restore() {
		logger.Info("Restored session")
	}

	pipeline := transport.NewPipeline(&transport.Options{
		Config:      manager,
		Session:     store,
		HTTPClient:  opts.HTTPClient,
		MockHandler: mockapi.New().Handler(),
		Logger:      logger,
		Hooks:       opts.Hooks,
	})
	authSvc := auth.NewService(pipeline, store, logger)
	pipeline.SetRefresher(authSvc)

	c := &Client{
		config:    manager,
		session:   store,
		transport: pipeline,
		auth:      authSvc,
		options:   opts,
	}
	c.initServices()

	return c, nil
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	if c.session == nil {
		c.session = session.NewStore(nil, nil)
	}
	if c.auth == nil {
		c.auth = auth.NewService(c.transport, c.session, nil)
	}

	c.Auth = &authService{client: c}
	c.Articles = &articleService{client: c}
	c.Revisions = &revisionService{client: c}
	c.Approvals = &approvalService{client: c}
	c.Search = &searchService{client: c}
	c.Categories = &categoryService{client: c}
	c.Drafts = &draftService{client: c}
}

// Login authenticates with a username or email
func (c *Client) Login(ctx context.Context, identifier, password string) *Response[AuthTokens] {
	return c.Auth.Login(ctx, identifier, password)
}

// Logout clears the session. It always succeeds locally.
func (c *Client) Logout(ctx context.Context) {
	c.Auth.Logout(ctx)
}

// RefreshToken renews the current token
func (c *Client) RefreshToken(ctx context.Context) bool {
	return c.Auth.Refresh(ctx)
}

// CurrentUser returns the authenticated user
func (c *Client) CurrentUser(ctx context.Context) *Response[User] {
	return c.Auth.CurrentUser(ctx)
}

// Health probes the backend liveness endpoints
func (c *Client) Health(ctx context.Context) *Response[HealthStatus] {
	return decode[HealthStatus](c.auth.Health(ctx))
}

// AuthStatus returns a snapshot of the session for display
func (c *Client) AuthStatus() AuthStatus {
	return c.Auth.Status()
}

// IsAuthenticated reports whether a valid token is held
func (c *Client) IsAuthenticated() bool {
	return c.Auth.IsAuthenticated()
}

// SetMode switches between the mock and real backend
func (c *Client) SetMode(mode Mode) error {
	if !mode.IsValid() {
		return &internalTypes.Error{
			Code:    "INVALID_MODE",
			Message: "invalid mode " + string(mode),
		}
	}
	c.config.SetMode(mode)
	return nil
}

// Config returns a copy of the effective configuration
func (c *Client) Config() Configuration {
	return c.config.GetConfig()
}

// UpdateConfig overrides configuration fields
func (c *Client) UpdateConfig(update ConfigUpdate) {
	c.config.UpdateConfig(update)
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	// Flush Sentry events with a 2 second timeout
	sentry.Flush(2 * time.Second)

	if closer, ok := c.options.SessionStorage.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && c.options.Logger != nil {
			c.options.Logger.Warn("Failed to close session storage", "error", err)
		}
	}
}
