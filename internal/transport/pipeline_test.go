package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eshaffer321/cmsclient-go/internal/config"
	"github.com/eshaffer321/cmsclient-go/internal/session"
	"github.com/eshaffer321/cmsclient-go/internal/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type refresherFunc func(ctx context.Context) bool

func (f refresherFunc) Refresh(ctx context.Context) bool {
	return f(ctx)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestManager(baseURL string) *config.Manager {
	m := config.NewManager(config.EnvProduction, config.ModeReal, baseURL, nil)
	wait := time.Millisecond
	m.UpdateConfig(config.ConfigUpdate{RetryWaitMin: &wait, RetryWaitMax: &wait})
	return m
}

func newTestPipeline(t *testing.T, baseURL string, httpClient *http.Client) (*Pipeline, *session.Store, *config.Manager) {
	t.Helper()
	manager := newTestManager(baseURL)
	store := session.NewStore(nil, nil)
	p := NewPipeline(&Options{
		Config:     manager,
		Session:    store,
		HTTPClient: httpClient,
	})
	return p, store, manager
}

func TestPipeline_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/articles", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"a1"}],"total":1}`))
	}))
	defer srv.Close()

	p, _, _ := newTestPipeline(t, srv.URL, nil)

	env := p.Do(context.Background(), "/api/v1/articles", &RequestOptions{
		Query: url.Values{"page": {"2"}},
	})

	assert.True(t, env.Success)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Empty(t, env.Error)
	assert.Nil(t, env.Err)
	assert.JSONEq(t, `{"items":[{"id":"a1"}],"total":1}`, string(env.Data))
}

func TestPipeline_EmptyBodyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p, _, _ := newTestPipeline(t, srv.URL, nil)
	env := p.Do(context.Background(), "/api/v1/drafts/d1", &RequestOptions{Method: http.MethodDelete})

	assert.True(t, env.Success)
	assert.Equal(t, http.StatusNoContent, env.Status)
	assert.Nil(t, env.Data)
}

func TestPipeline_ParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	p, _, _ := newTestPipeline(t, srv.URL, nil)
	env := p.Do(context.Background(), "/api/v1/articles", nil)

	assert.False(t, env.Success)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.True(t, env.Is(types.ErrParse))
}

func TestPipeline_HTTPErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"detail string", 400, `{"detail":"Title is required"}`, "Title is required"},
		{"detail list", 422, `{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
		{"message field", 409, `{"message":"Revision already submitted"}`, "Revision already submitted"},
		{"error field", 403, `{"error":"Approver role required"}`, "Approver role required"},
		{"no body", 500, ``, "HTTP 500: Internal Server Error"},
		{"html body", 502, `<html>bad gateway</html>`, "HTTP 502: Bad Gateway"},
		{"cloudflare", 525, `error page`, "HTTP 525: SSL Handshake Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, _, _ := newTestPipeline(t, srv.URL, nil)
			env := p.Do(context.Background(), "/api/v1/articles", nil)

			assert.False(t, env.Success)
			assert.Equal(t, tt.status, env.Status)
			assert.Equal(t, tt.expected, env.Error)
			assert.True(t, env.Is(types.ErrHTTP))
		})
	}
}

func TestPipeline_HTTPErrorsAreNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		var attempts int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"detail":"nope"}`))
		}))

		p, _, _ := newTestPipeline(t, srv.URL, nil)
		env := p.Do(context.Background(), "/api/v1/articles", &RequestOptions{Retries: Int(5)})
		srv.Close()

		assert.Equal(t, status, env.Status)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "status %d", status)
	}
}

func TestPipeline_RetryBudget(t *testing.T) {
	var attempts int32
	client := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			atomic.AddInt32(&attempts, 1)
			return nil, errors.New("connection refused")
		}),
	}

	p, _, _ := newTestPipeline(t, "http://cms.invalid", client)
	env := p.Do(context.Background(), "/api/v1/articles", &RequestOptions{Retries: Int(2)})

	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.False(t, env.Success)
	assert.Equal(t, 0, env.Status)
	assert.Contains(t, env.Error, "connection refused")
	assert.True(t, env.Is(types.ErrNetwork))
	assert.False(t, env.Is(types.ErrTimeout))
}

func TestPipeline_RetryBudgetFromConfig(t *testing.T) {
	var attempts int32
	client := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			atomic.AddInt32(&attempts, 1)
			return nil, errors.New("connection reset")
		}),
	}

	p, _, manager := newTestPipeline(t, "http://cms.invalid", client)
	retries := 1
	manager.UpdateConfig(config.ConfigUpdate{MaxRetries: &retries})

	env := p.Do(context.Background(), "/api/v1/articles", nil)

	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, 0, env.Status)
}

func TestPipeline_RecoversAfterTransientFailure(t *testing.T) {
	var attempts int32
	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				return nil, errors.New("connection reset")
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
				Header:     http.Header{},
				Request:    req,
			}, nil
		}),
	}

	p, _, _ := newTestPipeline(t, "http://cms.invalid", client)
	env := p.Do(context.Background(), "/health", &RequestOptions{RequireAuth: Bool(false), Retries: Int(3)})

	assert.True(t, env.Success)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestPipeline_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p, _, _ := newTestPipeline(t, srv.URL, nil)

	start := time.Now()
	env := p.Do(context.Background(), "/x", &RequestOptions{Timeout: 50 * time.Millisecond, Retries: Int(0)})

	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.False(t, env.Success)
	assert.Equal(t, 0, env.Status)
	assert.True(t, env.Is(types.ErrTimeout))
	assert.True(t, env.Is(types.ErrNetwork))
}

func TestPipeline_AuthHeader(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p, store, _ := newTestPipeline(t, srv.URL, nil)

	// no session
	p.Do(context.Background(), "/api/v1/articles", nil)

	store.SetTokens(types.AuthTokens{AccessToken: "tok-a", TokenType: "bearer"})

	// session attached, caller cannot override it
	p.Do(context.Background(), "/api/v1/articles", &RequestOptions{
		Headers: map[string]string{"Authorization": "bearer forged"},
	})

	// requireAuth false never attaches the session token
	p.Do(context.Background(), "/api/v1/articles", &RequestOptions{RequireAuth: Bool(false)})

	require.Len(t, got, 3)
	assert.Empty(t, got[0])
	assert.Equal(t, "bearer tok-a", got[1])
	assert.Empty(t, got[2])
}

func TestPipeline_CallerHeadersOverrideDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/csv", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p, _, _ := newTestPipeline(t, srv.URL, nil)
	env := p.Do(context.Background(), "/api/v1/articles", &RequestOptions{
		Headers: map[string]string{"Accept": "text/csv"},
	})
	assert.True(t, env.Success)
}

func TestPipeline_JSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"Hello"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"a1","title":"Hello"}`))
	}))
	defer srv.Close()

	p, _, _ := newTestPipeline(t, srv.URL, nil)
	env := p.Do(context.Background(), "/api/v1/articles", &RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"title": "Hello"},
	})

	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.Status)
}

func TestPipeline_PreflightRefreshFails(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	clock := &testClock{now: time.Now()}
	store := session.NewStore(nil, nil, session.WithClock(clock.Now))
	p := NewPipeline(&Options{Config: newTestManager(srv.URL), Session: store})

	var refreshes int32
	p.SetRefresher(refresherFunc(func(context.Context) bool {
		atomic.AddInt32(&refreshes, 1)
		return false
	}))

	expiresIn := 60
	store.SetTokens(types.AuthTokens{AccessToken: "tok-a", TokenType: "bearer", ExpiresIn: &expiresIn})
	clock.now = clock.now.Add(2 * time.Minute)

	env := p.Do(context.Background(), "/api/v1/articles", nil)

	assert.False(t, env.Success)
	assert.Equal(t, http.StatusUnauthorized, env.Status)
	assert.True(t, env.Is(types.ErrAuthenticationRequired))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, int32(0), atomic.LoadInt32(&attempts))
	assert.True(t, store.HasSession(), "a failed refresh does not clear the session")

	// requireAuth false skips the preflight entirely
	env = p.Do(context.Background(), "/api/v1/articles", &RequestOptions{RequireAuth: Bool(false)})
	assert.True(t, env.Success)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
}

func TestPipeline_PreflightRefreshSucceeds(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	clock := &testClock{now: time.Now()}
	store := session.NewStore(nil, nil, session.WithClock(clock.Now))
	p := NewPipeline(&Options{Config: newTestManager(srv.URL), Session: store})
	p.SetRefresher(refresherFunc(func(context.Context) bool {
		store.SetTokens(types.AuthTokens{AccessToken: "tok-b", TokenType: "bearer"})
		return true
	}))

	expiresIn := 60
	store.SetTokens(types.AuthTokens{AccessToken: "tok-a", TokenType: "bearer", ExpiresIn: &expiresIn})
	clock.now = clock.now.Add(2 * time.Minute)

	env := p.Do(context.Background(), "/api/v1/articles", nil)

	assert.True(t, env.Success)
	assert.Equal(t, "bearer tok-b", gotAuth)
}

func TestPipeline_MockHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mock-api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	manager := config.NewManager(config.EnvDevelopment, config.ModeMock, "", nil)
	p := NewPipeline(&Options{
		Config:      manager,
		Session:     session.NewStore(nil, nil),
		MockHandler: mux,
	})

	env := p.Do(context.Background(), "/health", &RequestOptions{RequireAuth: Bool(false)})

	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestPipeline_Hooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var requested, responded, errored bool
	p := NewPipeline(&Options{
		Config:  newTestManager(srv.URL),
		Session: session.NewStore(nil, nil),
		Hooks: &types.Hooks{
			OnRequest:  func(context.Context, *http.Request) { requested = true },
			OnResponse: func(context.Context, *http.Response, time.Duration) { responded = true },
			OnError:    func(context.Context, error) { errored = true },
		},
	})

	env := p.Do(context.Background(), "/api/v1/articles/missing", nil)

	assert.Equal(t, http.StatusNotFound, env.Status)
	assert.Equal(t, "HTTP 404: Not Found", env.Error)
	assert.True(t, requested)
	assert.True(t, responded)
	assert.True(t, errored)
}

func TestBackoffDelay(t *testing.T) {
	base := time.Second
	max := 30 * time.Second

	assert.Equal(t, 1*time.Second, BackoffDelay(base, max, 0))
	assert.Equal(t, 2*time.Second, BackoffDelay(base, max, 1))
	assert.Equal(t, 4*time.Second, BackoffDelay(base, max, 2))
	assert.Equal(t, 16*time.Second, BackoffDelay(base, max, 4))
	assert.Equal(t, max, BackoffDelay(base, max, 5))
	assert.Equal(t, max, BackoffDelay(base, max, 100))
	assert.Equal(t, base, BackoffDelay(base, max, -1))
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "http://h/api/v1/articles", buildURL("http://h/", "/api/v1/articles", nil))
	assert.Equal(t, "http://h/mock-api/health", buildURL("http://h/mock-api", "health", nil))
	assert.Equal(t, "http://h/api/v1/search?q=go", buildURL("http://h", "/api/v1/search", url.Values{"q": {"go"}}))
	assert.Equal(t, "http://h/x?a=1&b=2", buildURL("http://h", "/x?a=1", url.Values{"b": {"2"}}))
}
