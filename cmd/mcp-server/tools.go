package main

import (
	"context"
	"fmt"
	"time"

	"github.com/eshaffer321/cmsclient-go/pkg/cms"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// cmsTools holds the CMS client and implements all tool handlers
type cmsTools struct {
	client *cms.Client
}

// ArticleSummary is the listing view of an article
type ArticleSummary struct {
	ID         string `json:"id" jsonschema:"Article ID"`
	Title      string `json:"title" jsonschema:"Article title"`
	Status     string `json:"status" jsonschema:"One of draft, pending, approved, rejected, published"`
	CategoryID string `json:"categoryId,omitempty" jsonschema:"Category ID"`
	AuthorID   string `json:"authorId" jsonschema:"Author user ID"`
	UpdatedAt  string `json:"updatedAt" jsonschema:"Last update time (RFC 3339)"`
}

// RevisionSummary is the review queue view of a revision
type RevisionSummary struct {
	ID              string `json:"id" jsonschema:"Revision ID"`
	ArticleID       string `json:"articleId" jsonschema:"ID of the article the revision changes"`
	Title           string `json:"title" jsonschema:"Proposed title"`
	Status          string `json:"status" jsonschema:"Revision status"`
	AuthorID        string `json:"authorId" jsonschema:"Author user ID"`
	SubmittedAt     string `json:"submittedAt,omitempty" jsonschema:"Submission time (RFC 3339)"`
	ReviewComment   string `json:"reviewComment,omitempty" jsonschema:"Approver comment"`
	RejectionReason string `json:"rejectionReason,omitempty" jsonschema:"Reason given on rejection"`
}

// ListArticles tool - lists articles with optional filters
type ListArticlesInput struct {
	Status     string `json:"status,omitempty" jsonschema:"Filter by status (optional)"`
	CategoryID string `json:"categoryId,omitempty" jsonschema:"Filter by category ID (optional)"`
	AuthorID   string `json:"authorId,omitempty" jsonschema:"Filter by author ID (optional)"`
	Search     string `json:"search,omitempty" jsonschema:"Text to match in title or content (optional)"`
	Page       int    `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Page size (default 20)"`
}

type ListArticlesOutput struct {
	Articles []ArticleSummary `json:"articles" jsonschema:"Articles on this page"`
	Total    int              `json:"total" jsonschema:"Total number of matching articles"`
	Page     int              `json:"page" jsonschema:"Current page"`
	Pages    int              `json:"pages" jsonschema:"Number of pages"`
}

func (t *cmsTools) ListArticles(ctx context.Context, req *mcp.CallToolRequest, input ListArticlesInput) (*mcp.CallToolResult, ListArticlesOutput, error) {
	page, err := t.client.Articles.List(ctx, &cms.ListParams{
		Page:       input.Page,
		Limit:      input.Limit,
		Status:     input.Status,
		CategoryID: input.CategoryID,
		AuthorID:   input.AuthorID,
		Search:     input.Search,
	}).Result()
	if err != nil {
		return nil, ListArticlesOutput{}, fmt.Errorf("failed to list articles: %w", err)
	}

	articles := make([]ArticleSummary, 0, len(page.Items))
	for _, a := range page.Items {
		articles = append(articles, summarizeArticle(a))
	}

	return nil, ListArticlesOutput{
		Articles: articles,
		Total:    page.Total,
		Page:     page.Page,
		Pages:    page.Pages,
	}, nil
}

// GetArticle tool - retrieves one article with its revision history
type GetArticleInput struct {
	ID string `json:"id" jsonschema:"Article ID"`
}

type GetArticleOutput struct {
	Article   ArticleSummary    `json:"article" jsonschema:"Article metadata"`
	Content   string            `json:"content" jsonschema:"Full article content"`
	Summary   string            `json:"summary,omitempty" jsonschema:"Article summary"`
	Tags      []string          `json:"tags,omitempty" jsonschema:"Article tags"`
	Revisions []RevisionSummary `json:"revisions" jsonschema:"Revision history of the article"`
}

func (t *cmsTools) GetArticle(ctx context.Context, req *mcp.CallToolRequest, input GetArticleInput) (*mcp.CallToolResult, GetArticleOutput, error) {
	article, err := t.client.Articles.Get(ctx, input.ID).Result()
	if err != nil {
		return nil, GetArticleOutput{}, fmt.Errorf("failed to fetch article: %w", err)
	}

	history, err := t.client.Revisions.ListForArticle(ctx, input.ID).Result()
	if err != nil {
		return nil, GetArticleOutput{}, fmt.Errorf("failed to fetch revisions: %w", err)
	}

	revisions := []RevisionSummary{}
	if history != nil {
		for _, r := range *history {
			revisions = append(revisions, summarizeRevision(r))
		}
	}

	return nil, GetArticleOutput{
		Article:   summarizeArticle(*article),
		Content:   article.Content,
		Summary:   article.Summary,
		Tags:      article.Tags,
		Revisions: revisions,
	}, nil
}

// ListPendingApprovals tool - lists the review queue
type ListPendingApprovalsInput struct {
	Page  int `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	Limit int `json:"limit,omitempty" jsonschema:"Page size (default 20)"`
}

type ListPendingApprovalsOutput struct {
	Revisions []RevisionSummary `json:"revisions" jsonschema:"Revisions awaiting review"`
	Total     int               `json:"total" jsonschema:"Total number of pending revisions"`
}

func (t *cmsTools) ListPendingApprovals(ctx context.Context, req *mcp.CallToolRequest, input ListPendingApprovalsInput) (*mcp.CallToolResult, ListPendingApprovalsOutput, error) {
	page, err := t.client.Approvals.Pending(ctx, &cms.ListParams{Page: input.Page, Limit: input.Limit}).Result()
	if err != nil {
		return nil, ListPendingApprovalsOutput{}, fmt.Errorf("failed to list pending approvals: %w", err)
	}

	revisions := make([]RevisionSummary, 0, len(page.Items))
	for _, r := range page.Items {
		revisions = append(revisions, summarizeRevision(r))
	}

	return nil, ListPendingApprovalsOutput{
		Revisions: revisions,
		Total:     page.Total,
	}, nil
}

// ApproveRevision tool - approves and publishes a revision
type ApproveRevisionInput struct {
	ID      string `json:"id" jsonschema:"Revision ID"`
	Comment string `json:"comment,omitempty" jsonschema:"Optional comment for the author"`
}

type ReviewOutput struct {
	Revision RevisionSummary `json:"revision" jsonschema:"The reviewed revision"`
}

func (t *cmsTools) ApproveRevision(ctx context.Context, req *mcp.CallToolRequest, input ApproveRevisionInput) (*mcp.CallToolResult, ReviewOutput, error) {
	rev, err := t.client.Approvals.Approve(ctx, input.ID, input.Comment).Result()
	if err != nil {
		return nil, ReviewOutput{}, fmt.Errorf("failed to approve revision: %w", err)
	}
	return nil, ReviewOutput{Revision: summarizeRevision(*rev)}, nil
}

// RejectRevision tool - rejects a revision with a reason
type RejectRevisionInput struct {
	ID     string `json:"id" jsonschema:"Revision ID"`
	Reason string `json:"reason" jsonschema:"Why the revision was rejected"`
}

func (t *cmsTools) RejectRevision(ctx context.Context, req *mcp.CallToolRequest, input RejectRevisionInput) (*mcp.CallToolResult, ReviewOutput, error) {
	rev, err := t.client.Approvals.Reject(ctx, input.ID, input.Reason).Result()
	if err != nil {
		return nil, ReviewOutput{}, fmt.Errorf("failed to reject revision: %w", err)
	}
	return nil, ReviewOutput{Revision: summarizeRevision(*rev)}, nil
}

// Search tool - full-text search across articles and revisions
type SearchInput struct {
	Query string `json:"query" jsonschema:"Text to search for"`
	Type  string `json:"type,omitempty" jsonschema:"Restrict to article or revision (optional)"`
}

type SearchResult struct {
	Type     string           `json:"type" jsonschema:"article or revision"`
	Article  *ArticleSummary  `json:"article,omitempty" jsonschema:"Set when type is article"`
	Revision *RevisionSummary `json:"revision,omitempty" jsonschema:"Set when type is revision"`
}

type SearchOutput struct {
	Results []SearchResult `json:"results" jsonschema:"Matching articles and revisions"`
	Total   int            `json:"total" jsonschema:"Number of results"`
}

func (t *cmsTools) Search(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	found, err := t.client.Search.Query(ctx, &cms.SearchParams{Query: input.Query, Kind: input.Type}).Result()
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(found.Results))
	for _, hit := range found.Results {
		result := SearchResult{Type: hit.Kind}
		switch {
		case hit.Article != nil:
			a := summarizeArticle(*hit.Article)
			result.Article = &a
		case hit.Revision != nil:
			r := summarizeRevision(*hit.Revision)
			result.Revision = &r
		}
		results = append(results, result)
	}

	return nil, SearchOutput{
		Results: results,
		Total:   found.Total,
	}, nil
}

func summarizeArticle(a cms.Article) ArticleSummary {
	return ArticleSummary{
		ID:         a.ID,
		Title:      a.Title,
		Status:     a.Status,
		CategoryID: a.CategoryID,
		AuthorID:   a.AuthorID,
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
}

func summarizeRevision(r cms.Revision) RevisionSummary {
	summary := RevisionSummary{
		ID:              r.ID,
		ArticleID:       r.ArticleID,
		Title:           r.Title,
		Status:          r.Status,
		AuthorID:        r.AuthorID,
		ReviewComment:   r.ReviewComment,
		RejectionReason: r.RejectionReason,
	}
	if r.SubmittedAt != nil {
		summary.SubmittedAt = r.SubmittedAt.Format(time.RFC3339)
	}
	return summary
}
