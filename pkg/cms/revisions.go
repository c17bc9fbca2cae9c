package cms

import (
	"context"
	"net/http"
)

// revisionService implements the RevisionService interface
type revisionService struct {
	client *Client
}

// List retrieves a page of revisions
func (s *revisionService) List(ctx context.Context, params *ListParams) *Response[Page[Revision]] {
	return call[Page[Revision]](ctx, s.client, resource("revisions"), &RequestOptions{
		Query: params.Values(),
	})
}

// Get retrieves a single revision
func (s *revisionService) Get(ctx context.Context, revisionID string) *Response[Revision] {
	if revisionID == "" {
		return invalid[Revision]("revision ID is required")
	}
	return call[Revision](ctx, s.client, resource("revisions", revisionID), nil)
}

// Create proposes a change to an article
func (s *revisionService) Create(ctx context.Context, articleID string, params *RevisionParams) *Response[Revision] {
	if articleID == "" {
		return invalid[Revision]("article ID is required")
	}
	if params == nil {
		params = &RevisionParams{}
	}

	body := struct {
		ArticleID string `json:"article_id"`
		*RevisionParams
	}{articleID, params}

	return call[Revision](ctx, s.client, resource("revisions"), &RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	})
}

// Submit sends a revision for approval
func (s *revisionService) Submit(ctx context.Context, revisionID string) *Response[Revision] {
	if revisionID == "" {
		return invalid[Revision]("revision ID is required")
	}
	return call[Revision](ctx, s.client, resource("revisions", revisionID, "submit"), &RequestOptions{
		Method: http.MethodPost,
	})
}

// ListForArticle returns the revision history of an article, newest first
func (s *revisionService) ListForArticle(ctx context.Context, articleID string) *Response[[]Revision] {
	if articleID == "" {
		return invalid[[]Revision]("article ID is required")
	}
	return call[[]Revision](ctx, s.client, resource("articles", articleID, "revisions"), nil)
}
