package cms

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRevisionService_Create(t *testing.T) {
	client, mockTransport := newMockClient()

	mockTransport.On("Do", mock.Anything, "/api/v1/revisions", mock.MatchedBy(func(opts *RequestOptions) bool {
		body := bodyJSON(t, opts)
		return method(opts) == http.MethodPost && body["article_id"] == "a-1" && body["content"] == "v2"
	})).Return(okEnvelope(http.StatusCreated, `{"id":"r-1","article_id":"a-1","status":"draft"}`))

	resp := client.Revisions.Create(context.Background(), "a-1", &RevisionParams{Content: "v2"})

	require.True(t, resp.Success)
	assert.Equal(t, "r-1", resp.Data.ID)
	mockTransport.AssertExpectations(t)
}

func TestRevisionService_Submit(t *testing.T) {
	client, mockTransport := newMockClient()

	mockTransport.On("Do", mock.Anything, "/api/v1/revisions/r-1/submit", mock.MatchedBy(func(opts *RequestOptions) bool {
		return method(opts) == http.MethodPost
	})).Return(okEnvelope(http.StatusOK, `{"id":"r-1","status":"pending","submitted_at":"2024-03-01T09:00:00Z"}`))

	resp := client.Revisions.Submit(context.Background(), "r-1")

	require.True(t, resp.Success)
	assert.Equal(t, StatusPending, resp.Data.Status)
	require.NotNil(t, resp.Data.SubmittedAt)
	mockTransport.AssertExpectations(t)
}

func TestRevisionService_ListForArticle(t *testing.T) {
	client, mockTransport := newMockClient()

	mockTransport.On("Do", mock.Anything, "/api/v1/articles/a-1/revisions", mock.Anything).
		Return(okEnvelope(http.StatusOK, `[{"id":"r-2"},{"id":"r-1"}]`))

	resp := client.Revisions.ListForArticle(context.Background(), "a-1")

	require.True(t, resp.Success)
	require.Len(t, *resp.Data, 2)
	assert.Equal(t, "r-2", (*resp.Data)[0].ID)
}

func TestRevisionService_List(t *testing.T) {
	client, mockTransport := newMockClient()

	mockTransport.On("Do", mock.Anything, "/api/v1/revisions", mock.MatchedBy(func(opts *RequestOptions) bool {
		return opts.Query.Get("limit") == "5"
	})).Return(okEnvelope(http.StatusOK, `{"items":[],"total":0,"page":1,"limit":5,"pages":0}`))

	resp := client.Revisions.List(context.Background(), &ListParams{Limit: 5})

	require.True(t, resp.Success)
	assert.Empty(t, resp.Data.Items)
}

func TestApprovalService_Approve(t *testing.T) {
	client, mockTransport := newMockClient()

	mockTransport.On("Do", mock.Anything, "/api/v1/approvals/r-1/approve", mock.MatchedBy(func(opts *RequestOptions) bool {
		return method(opts) == http.MethodPost && bodyJSON(t, opts)["comment"] == "lgtm"
	})).Return(okEnvelope(http.StatusOK, `{"id":"r-1","status":"approved","review_comment":"lgtm"}`))

	resp := client.Approvals.Approve(context.Background(), "r-1", "lgtm")

	require.True(t, resp.Success)
	assert.Equal(t, StatusApproved, resp.Data.Status)
	mockTransport.AssertExpectations(t)
}

func TestApprovalService_Reject(t *testing.T) {
	client, mockTransport := newMockClient()

	resp := client.Approvals.Reject(context.Background(), "r-1", "")
	assert.False(t, resp.Success)
	assert.Equal(t, "rejection reason is required", resp.Error)
	mockTransport.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything)

	mockTransport.On("Do", mock.Anything, "/api/v1/approvals/r-1/reject", mock.MatchedBy(func(opts *RequestOptions) bool {
		return bodyJSON(t, opts)["reason"] == "needs sources"
	})).Return(okEnvelope(http.StatusOK, `{"id":"r-1","status":"rejected","rejection_reason":"needs sources"}`))

	resp = client.Approvals.Reject(context.Background(), "r-1", "needs sources")
	require.True(t, resp.Success)
	assert.Equal(t, "needs sources", resp.Data.RejectionReason)
}

func TestApprovalService_Pending(t *testing.T) {
	client, mockTransport := newMockClient()

	mockTransport.On("Do", mock.Anything, "/api/v1/approvals/pending", mock.Anything).
		Return(okEnvelope(http.StatusOK, `{"items":[{"id":"r-1","status":"pending"}],"total":1,"page":1,"limit":20,"pages":1}`))

	resp := client.Approvals.Pending(context.Background(), nil)

	require.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, StatusPending, resp.Data.Items[0].Status)
}
