package cms

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransport is a mock implementation of the Transport interface
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Do(ctx context.Context, endpoint string, opts *RequestOptions) *Envelope {
	args := m.Called(ctx, endpoint, opts)
	return args.Get(0).(*Envelope)
}

func newMockClient() (*Client, *MockTransport) {
	mockTransport := new(MockTransport)
	client := &Client{
		transport: mockTransport,
		options:   &ClientOptions{},
	}
	client.initServices()
	return client, mockTransport
}

func okEnvelope(status int, body string) *Envelope {
	env := &Envelope{Status: status, Success: true}
	if body != "" {
		env.Data = json.RawMessage(body)
	}
	return env
}

// bodyJSON re-encodes a request body for assertions
func bodyJSON(t *testing.T, opts *RequestOptions) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(opts.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func method(opts *RequestOptions) string {
	if opts == nil || opts.Method == "" {
		return http.MethodGet
	}
	return opts.Method
}
