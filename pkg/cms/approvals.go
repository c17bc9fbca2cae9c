package cms

import (
	"context"
	"net/http"
)

// approvalService implements the ApprovalService interface
type approvalService struct {
	client *Client
}

// Pending retrieves revisions awaiting review
func (s *approvalService) Pending(ctx context.Context, params *ListParams) *Response[Page[Revision]] {
	return call[Page[Revision]](ctx, s.client, resource("approvals", "pending"), &RequestOptions{
		Query: params.Values(),
	})
}

// Approve publishes a pending revision
func (s *approvalService) Approve(ctx context.Context, revisionID, comment string) *Response[Revision] {
	if revisionID == "" {
		return invalid[Revision]("revision ID is required")
	}
	return call[Revision](ctx, s.client, resource("approvals", revisionID, "approve"), &RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"comment": comment},
	})
}

// Reject sends a pending revision back to its author
func (s *approvalService) Reject(ctx context.Context, revisionID, reason string) *Response[Revision] {
	if revisionID == "" {
		return invalid[Revision]("revision ID is required")
	}
	if reason == "" {
		return invalid[Revision]("rejection reason is required")
	}
	return call[Revision](ctx, s.client, resource("approvals", revisionID, "reject"), &RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"reason": reason},
	})
}
