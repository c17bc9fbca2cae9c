package transport

import (
	"net/http"
	"net/http/httptest"
)

// handlerTransport serves requests from an in-process handler
type handlerTransport struct {
	handler http.Handler
}

func (t *handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	done := make(chan struct{})

	go func() {
		defer close(done)
		t.handler.ServeHTTP(rec, req)
	}()

	select {
	case <-done:
		resp := rec.Result()
		resp.Request = req
		return resp, nil
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
}
