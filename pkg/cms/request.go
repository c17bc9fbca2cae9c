package cms

import (
	"context"
	"net/url"

	internalTypes "github.com/eshaffer321/cmsclient-go/internal/types"
)

const apiPrefix = "/api/v1"

// call sends a request through the client transport and decodes the result
func call[T any](ctx context.Context, c *Client, endpoint string, opts *RequestOptions) *Response[T] {
	return decode[T](c.transport.Do(ctx, endpoint, opts))
}

// invalid fails a call before it reaches the transport
func invalid[T any](message string) *Response[T] {
	err := &internalTypes.Error{Code: "INVALID_REQUEST", Message: message}
	return &Response[T]{Error: message, Err: err}
}

// resource joins path segments under the API prefix, escaping each one
func resource(segments ...string) string {
	p := apiPrefix
	for _, s := range segments {
		p += "/" + url.PathEscape(s)
	}
	return p
}
