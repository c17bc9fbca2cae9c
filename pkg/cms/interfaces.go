package cms

import (
	"context"
)

// Transport carries requests to the backend and always answers with an envelope
type Transport interface {
	Do(ctx context.Context, endpoint string, opts *RequestOptions) *Envelope
}

// AuthService handles authentication
type AuthService interface {
	// Login authenticates and stores the issued token
	Login(ctx context.Context, identifier, password string) *Response[AuthTokens]

	// Logout clears the local session and notifies the backend
	Logout(ctx context.Context)

	// Refresh renews the current token
	Refresh(ctx context.Context) bool

	// CurrentUser returns the authenticated user
	CurrentUser(ctx context.Context) *Response[User]

	// Status returns a snapshot of the session
	Status() AuthStatus

	// IsAuthenticated reports whether a valid token is held
	IsAuthenticated() bool
}

// ArticleService handles articles
type ArticleService interface {
	// List retrieves a page of articles
	List(ctx context.Context, params *ListParams) *Response[Page[Article]]

	// Get retrieves a single article
	Get(ctx context.Context, articleID string) *Response[Article]

	// Create creates a draft article
	Create(ctx context.Context, params *ArticleParams) *Response[Article]

	// Update changes the given fields of an article
	Update(ctx context.Context, articleID string, params *ArticleParams) *Response[Article]

	// Delete deletes an article
	Delete(ctx context.Context, articleID string) *Response[struct{}]
}

// RevisionService handles revisions
type RevisionService interface {
	List(ctx context.Context, params *ListParams) *Response[Page[Revision]]
	Get(ctx context.Context, revisionID string) *Response[Revision]
	Create(ctx context.Context, articleID string, params *RevisionParams) *Response[Revision]

	// Submit sends a draft revision for approval
	Submit(ctx context.Context, revisionID string) *Response[Revision]

	// ListForArticle returns the revision history of an article
	ListForArticle(ctx context.Context, articleID string) *Response[[]Revision]
}

// ApprovalService handles the review queue
type ApprovalService interface {
	Pending(ctx context.Context, params *ListParams) *Response[Page[Revision]]
	Approve(ctx context.Context, revisionID, comment string) *Response[Revision]
	Reject(ctx context.Context, revisionID, reason string) *Response[Revision]
}

// SearchService searches articles and revisions
type SearchService interface {
	Query(ctx context.Context, params *SearchParams) *Response[SearchResults]
}

// CategoryService handles categories
type CategoryService interface {
	List(ctx context.Context) *Response[[]Category]
	Get(ctx context.Context, categoryID string) *Response[Category]
}

// DraftService handles the current user's drafts
type DraftService interface {
	List(ctx context.Context) *Response[[]Draft]

	// Save creates the draft, or replaces it when ID is set
	Save(ctx context.Context, draft *Draft) *Response[Draft]

	Delete(ctx context.Context, draftID string) *Response[struct{}]
}
