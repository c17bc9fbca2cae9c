package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eshaffer321/cmsclient-go/pkg/cms"
)

func newTestTools(t *testing.T, username string) *cmsTools {
	t.Helper()

	client, err := cms.NewClient(&cms.ClientOptions{Mode: cms.ModeMock})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(client.Close)

	if resp := client.Login(context.Background(), username, "password"); !resp.Success {
		t.Fatalf("Login failed: %s", resp.Error)
	}

	return &cmsTools{client: client}
}

func TestListArticlesTool(t *testing.T) {
	tools := newTestTools(t, "testadmin")

	_, output, err := tools.ListArticles(context.Background(), nil, ListArticlesInput{Status: cms.StatusPublished})
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}

	if output.Total == 0 || len(output.Articles) == 0 {
		t.Fatal("Expected at least one published article")
	}
	for _, a := range output.Articles {
		if a.Status != cms.StatusPublished {
			t.Errorf("Expected status %q, got %q", cms.StatusPublished, a.Status)
		}
	}
}

func TestGetArticleTool(t *testing.T) {
	tools := newTestTools(t, "testadmin")
	ctx := context.Background()

	_, list, err := tools.ListArticles(ctx, nil, ListArticlesInput{})
	if err != nil || len(list.Articles) == 0 {
		t.Fatalf("ListArticles failed: %v", err)
	}

	_, output, err := tools.GetArticle(ctx, nil, GetArticleInput{ID: list.Articles[0].ID})
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if output.Article.ID != list.Articles[0].ID {
		t.Errorf("Expected article %s, got %s", list.Articles[0].ID, output.Article.ID)
	}
	if output.Revisions == nil {
		t.Error("Expected a non-nil revision list")
	}

	if _, _, err := tools.GetArticle(ctx, nil, GetArticleInput{ID: "missing"}); err == nil {
		t.Error("Expected an error for an unknown article")
	}
}

func TestReviewTools(t *testing.T) {
	tools := newTestTools(t, "testadmin")
	ctx := context.Background()

	_, pending, err := tools.ListPendingApprovals(ctx, nil, ListPendingApprovalsInput{})
	if err != nil {
		t.Fatalf("ListPendingApprovals failed: %v", err)
	}
	if len(pending.Revisions) == 0 {
		t.Fatal("Expected a pending revision")
	}
	id := pending.Revisions[0].ID

	if _, _, err := tools.RejectRevision(ctx, nil, RejectRevisionInput{ID: id}); err == nil {
		t.Error("Expected rejection without a reason to fail")
	}

	_, rejected, err := tools.RejectRevision(ctx, nil, RejectRevisionInput{ID: id, Reason: "Needs sources"})
	if err != nil {
		t.Fatalf("RejectRevision failed: %v", err)
	}
	if rejected.Revision.Status != cms.StatusRejected || rejected.Revision.RejectionReason != "Needs sources" {
		t.Errorf("Unexpected revision after rejection: %+v", rejected.Revision)
	}

	if _, _, err := tools.ApproveRevision(ctx, nil, ApproveRevisionInput{ID: id}); err == nil {
		t.Error("Expected approving a rejected revision to fail")
	}
}

func TestApproveRevisionTool_RequiresApprover(t *testing.T) {
	tools := newTestTools(t, "author")
	ctx := context.Background()

	_, pending, err := tools.ListPendingApprovals(ctx, nil, ListPendingApprovalsInput{})
	if err != nil || len(pending.Revisions) == 0 {
		t.Fatalf("ListPendingApprovals failed: %v", err)
	}

	if _, _, err := tools.ApproveRevision(ctx, nil, ApproveRevisionInput{ID: pending.Revisions[0].ID}); err == nil {
		t.Error("Expected an author to be refused")
	}
}

func TestSearchTool(t *testing.T) {
	tools := newTestTools(t, "testadmin")

	_, output, err := tools.Search(context.Background(), nil, SearchInput{Query: "a", Type: cms.KindArticle})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if output.Total != len(output.Results) {
		t.Errorf("Expected total %d to match %d results", output.Total, len(output.Results))
	}
	for _, r := range output.Results {
		if r.Type != cms.KindArticle || r.Article == nil {
			t.Errorf("Expected only article results, got %+v", r)
		}
	}
}

func TestListArticlesTool_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := cms.NewClient(&cms.ClientOptions{Mode: cms.ModeReal, BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	tools := &cmsTools{client: client}
	_, output, err := tools.ListArticles(context.Background(), nil, ListArticlesInput{})
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}
	if output.Total != 0 || len(output.Articles) != 0 {
		t.Errorf("Expected an empty listing, got %+v", output)
	}
}
