package cms

import (
	"context"
	"net/url"
)

// searchService implements the SearchService interface
type searchService struct {
	client *Client
}

// Query searches articles and revisions
func (s *searchService) Query(ctx context.Context, params *SearchParams) *Response[SearchResults] {
	if params == nil {
		params = &SearchParams{}
	}

	query := url.Values{}
	query.Set("q", params.Query)
	if params.Kind != "" {
		query.Set("type", params.Kind)
	}

	return call[SearchResults](ctx, s.client, resource("search"), &RequestOptions{
		Query: query,
	})
}
