package cms

import (
	"context"
	"net/http"
)

// draftService implements the DraftService interface
type draftService struct {
	client *Client
}

// List retrieves the current user's drafts
func (s *draftService) List(ctx context.Context) *Response[[]Draft] {
	return call[[]Draft](ctx, s.client, resource("drafts"), nil)
}

// Save creates or replaces a draft
func (s *draftService) Save(ctx context.Context, draft *Draft) *Response[Draft] {
	if draft == nil {
		return invalid[Draft]("draft is required")
	}
	return call[Draft](ctx, s.client, resource("drafts"), &RequestOptions{
		Method: http.MethodPost,
		Body:   draft,
	})
}

// Delete deletes a draft
func (s *draftService) Delete(ctx context.Context, draftID string) *Response[struct{}] {
	if draftID == "" {
		return invalid[struct{}]("draft ID is required")
	}
	return call[struct{}](ctx, s.client, resource("drafts", draftID), &RequestOptions{
		Method: http.MethodDelete,
	})
}
