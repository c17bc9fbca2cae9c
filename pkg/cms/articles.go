package cms

import (
	"context"
	"net/http"
)

// articleService implements the ArticleService interface
type articleService struct {
	client *Client
}

// List retrieves a page of articles
func (s *articleService) List(ctx context.Context, params *ListParams) *Response[Page[Article]] {
	return call[Page[Article]](ctx, s.client, resource("articles"), &RequestOptions{
		Query: params.Values(),
	})
}

// Get retrieves a single article
func (s *articleService) Get(ctx context.Context, articleID string) *Response[Article] {
	if articleID == "" {
		return invalid[Article]("article ID is required")
	}
	return call[Article](ctx, s.client, resource("articles", articleID), nil)
}

// Create creates a draft article
func (s *articleService) Create(ctx context.Context, params *ArticleParams) *Response[Article] {
	if params == nil || params.Title == nil || *params.Title == "" {
		return invalid[Article]("article title is required")
	}
	return call[Article](ctx, s.client, resource("articles"), &RequestOptions{
		Method: http.MethodPost,
		Body:   params,
	})
}

// Update changes the given fields of an article
func (s *articleService) Update(ctx context.Context, articleID string, params *ArticleParams) *Response[Article] {
	if articleID == "" {
		return invalid[Article]("article ID is required")
	}
	if params == nil {
		params = &ArticleParams{}
	}
	return call[Article](ctx, s.client, resource("articles", articleID), &RequestOptions{
		Method: http.MethodPut,
		Body:   params,
	})
}

// Delete deletes an article
func (s *articleService) Delete(ctx context.Context, articleID string) *Response[struct{}] {
	if articleID == "" {
		return invalid[struct{}]("article ID is required")
	}
	return call[struct{}](ctx, s.client, resource("articles", articleID), &RequestOptions{
		Method: http.MethodDelete,
	})
}
