package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eshaffer321/cmsclient-go/internal/config"
	"github.com/eshaffer321/cmsclient-go/internal/types"
	"github.com/getsentry/sentry-go"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const authHeaderKey = "Authorization"

// ConfigSource supplies the effective configuration per request
type ConfigSource interface {
	GetConfig() config.Configuration
}

// TokenSource supplies the session state consulted on every request
type TokenSource interface {
	Expired() bool
	ValidTokens() (types.AuthTokens, bool)
}

// Refresher renews an expired session. Implementations must not call back
// into the pipeline with auth required.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Options for the request pipeline
type Options struct {
	Config     ConfigSource
	Session    TokenSource
	HTTPClient *http.Client

	// MockHandler serves requests in-process while mocking is enabled
	MockHandler http.Handler

	Logger types.Logger
	Hooks  *types.Hooks
}

// RequestOptions describes a single call. The zero value is an authenticated GET.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Query   url.Values

	// Body is sent as-is when []byte or string, otherwise JSON encoded
	Body interface{}

	// Timeout bounds each attempt; zero uses the configured timeout
	Timeout time.Duration

	// Retries is the number of additional attempts; nil uses the configured budget
	Retries *int

	// RequireAuth defaults to true
	RequireAuth *bool
}

func (o *RequestOptions) requireAuth() bool {
	return o.RequireAuth == nil || *o.RequireAuth
}

// Bool returns a pointer to b, for RequestOptions.RequireAuth
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to i, for RequestOptions.Retries
func Int(i int) *int {
	return &i
}

// Pipeline is the single path every API call takes
type Pipeline struct {
	config      ConfigSource
	session     TokenSource
	httpClient  *http.Client
	mockHandler http.Handler
	refresher   Refresher
	logger      types.Logger
	retryLogger *retryLogger
	hooks       *types.Hooks
}

// NewPipeline creates a new request pipeline
func NewPipeline(opts *Options) *Pipeline {
	if opts == nil {
		opts = &Options{}
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	return &Pipeline{
		config:      opts.Config,
		session:     opts.Session,
		httpClient:  opts.HTTPClient,
		mockHandler: opts.MockHandler,
		logger:      logger,
		retryLogger: &retryLogger{logger: logger},
		hooks:       opts.Hooks,
	}
}

// SetRefresher installs the token refresher used by the auth preflight
func (p *Pipeline) SetRefresher(r Refresher) {
	p.refresher = r
}

// Do performs a request and always returns an envelope
func (p *Pipeline) Do(ctx context.Context, endpoint string, opts *RequestOptions) *types.Envelope {
	if opts == nil {
		opts = &RequestOptions{}
	}

	cfg := p.config.GetConfig()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cfg.Timeout
	}

	retries := cfg.MaxRetries
	if opts.Retries != nil {
		retries = *opts.Retries
	}
	if retries < 0 {
		retries = 0
	}

	// Auth preflight
	requireAuth := opts.requireAuth()
	if requireAuth && p.session.Expired() {
		if p.refresher == nil || !p.refresher.Refresh(ctx) {
			p.logger.Warn("Session expired and refresh failed", "endpoint", endpoint)
			return types.Failure(http.StatusUnauthorized, types.ErrAuthenticationRequired, "")
		}
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return types.Failure(0, &types.Error{
			Code:    "INVALID_REQUEST",
			Message: "failed to marshal request",
			Err:     err,
		}, "")
	}

	fullURL := buildURL(cfg.BaseURL, endpoint, opts.Query)

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, rawBody)
	if err != nil {
		return types.Failure(0, &types.Error{
			Code:    "INVALID_REQUEST",
			Message: "failed to create request",
			Err:     err,
		}, "")
	}

	// Header merge order: defaults, caller, then auth last so it always wins
	for k, v := range cfg.DefaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if requireAuth {
		if tokens, ok := p.session.ValidTokens(); ok {
			req.Header.Set(authHeaderKey, tokens.AuthorizationValue())
		} else {
			req.Header.Del(authHeaderKey)
		}
	}

	if p.hooks != nil && p.hooks.OnRequest != nil {
		p.hooks.OnRequest(ctx, req.Request)
	}

	p.logger.Debug("API request", "method", method, "url", fullURL, "attempts", retries+1)

	start := time.Now()
	resp, err := p.client(cfg, timeout, retries).Do(req)
	duration := time.Since(start)

	if err != nil {
		return p.fail(ctx, method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return p.fail(ctx, method, endpoint, errors.Wrap(err, "failed to read response"))
	}

	if p.hooks != nil && p.hooks.OnResponse != nil {
		p.hooks.OnResponse(ctx, resp, duration)
	}

	p.logger.Debug("API response", "status", resp.StatusCode, "duration", duration, "size", len(respBody))

	env := normalize(resp.StatusCode, respBody)
	if !env.Success {
		if p.hooks != nil && p.hooks.OnError != nil {
			p.hooks.OnError(ctx, env.Err)
		}
		if resp.StatusCode >= 500 {
			captureError(ctx, method, endpoint, env.Status, env.Err)
		}
	}
	return env
}

// client builds the retrying client for one call. The underlying transport
// is shared; only the timeout and retry budget differ per call.
func (p *Pipeline) client(cfg config.Configuration, timeout time.Duration, retries int) *retryablehttp.Client {
	hc := *p.httpClient
	hc.Timeout = timeout
	if cfg.MockingEnabled && p.mockHandler != nil {
		hc.Transport = &handlerTransport{handler: p.mockHandler}
	}

	waitMin, waitMax := cfg.RetryWaitMin, cfg.RetryWaitMax
	if waitMin <= 0 {
		waitMin = types.DefaultRetryWait
	}
	if waitMax < waitMin {
		waitMax = waitMin
	}

	return &retryablehttp.Client{
		HTTPClient:   &hc,
		Logger:       p.retryLogger,
		RetryWaitMin: waitMin,
		RetryWaitMax: waitMax,
		RetryMax:     retries,
		CheckRetry:   checkRetry,
		Backoff:      backoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
}

// fail converts a transport failure into the status 0 envelope
func (p *Pipeline) fail(ctx context.Context, method, endpoint string, err error) *types.Envelope {
	kind := types.ErrNetwork
	if isTimeout(err) {
		kind = types.ErrTimeout
	}

	p.logger.Error("API request failed", "method", method, "endpoint", endpoint, "error", err)

	classified := errors.Wrap(kind, err.Error())
	if p.hooks != nil && p.hooks.OnError != nil {
		p.hooks.OnError(ctx, classified)
	}
	captureError(ctx, method, endpoint, 0, classified)

	return types.Failure(0, classified, err.Error())
}

// checkRetry retries transport failures only. Any HTTP response, 401
// included, is final.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return err != nil, nil
}

func backoff(min, max time.Duration, attemptNum int, _ *http.Response) time.Duration {
	return BackoffDelay(min, max, attemptNum)
}

// BackoffDelay returns base*2^attempt capped at max. attempt is zero based,
// so the first retry waits base.
func BackoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		return max
	}
	d := base << uint(attempt)
	if d <= 0 || d > max {
		return max
	}
	return d
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return json.Marshal(b)
	}
}

func buildURL(baseURL, endpoint string, query url.Values) string {
	full := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) == 0 {
		return full
	}
	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + query.Encode()
}

// normalize builds the envelope for a received response
func normalize(status int, body []byte) *types.Envelope {
	env := &types.Envelope{Status: status}
	ok := status >= 200 && status < 300

	parsed := true
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		if json.Valid(trimmed) {
			env.Data = json.RawMessage(trimmed)
		} else {
			parsed = false
		}
	}

	if ok && parsed {
		env.Success = true
		return env
	}

	if ok {
		env.Err = &types.Error{
			Code:       "PARSE_ERROR",
			Message:    "failed to parse response",
			StatusCode: status,
			Err:        types.ErrParse,
		}
		env.Error = env.Err.Error()
		return env
	}

	msg := errorMessage(env.Data)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", status, statusText(status))
	}
	env.Err = &types.Error{
		Code:       httpErrorCode(status),
		Message:    msg,
		StatusCode: status,
		Err:        types.ErrHTTP,
	}
	env.Error = msg
	return env
}

// errorMessage extracts a human readable message from an error body.
// detail may be a string or a list of validation errors.
func errorMessage(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	var errResp struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err != nil {
		return ""
	}

	if len(errResp.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(errResp.Detail, &detail); err == nil && detail != "" {
			return detail
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(errResp.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	if errResp.Message != "" {
		return errResp.Message
	}
	return errResp.Error
}

func httpErrorCode(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case status == http.StatusForbidden:
		return "FORBIDDEN"
	case status == http.StatusNotFound:
		return "NOT_FOUND"
	case status == http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case status >= 500:
		return "SERVER_ERROR"
	case status >= 400:
		return "BAD_REQUEST"
	}
	return "HTTP_ERROR"
}

// statusText covers the standard codes plus the Cloudflare ones seen in front of the API
func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	descriptions := map[int]string{
		520: "Web Server Error",
		521: "Web Server Is Down",
		522: "Connection Timed Out",
		523: "Origin Is Unreachable",
		524: "A Timeout Occurred",
		525: "SSL Handshake Failed",
		526: "Invalid SSL Certificate",
		527: "Railgun Error",
		530: "Origin DNS Error",
	}
	if text, ok := descriptions[status]; ok {
		return text
	}
	return "Unknown Status"
}

func captureError(ctx context.Context, method, endpoint string, status int, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("http.method", method)
		scope.SetTag("http.endpoint", endpoint)
		scope.SetContext("request", map[string]interface{}{
			"status": status,
		})
		hub.CaptureException(err)
	})
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
