package cms

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/eshaffer321/cmsclient-go/internal/config"
	"github.com/eshaffer321/cmsclient-go/internal/transport"
	internalTypes "github.com/eshaffer321/cmsclient-go/internal/types"
	"github.com/pkg/errors"
)

// Re-exported internal types
type (
	Envelope       = internalTypes.Envelope
	AuthTokens     = internalTypes.AuthTokens
	AuthStatus     = internalTypes.Status
	Hooks          = internalTypes.Hooks
	RetryConfig    = internalTypes.RetryConfig
	Mode           = config.Mode
	Environment    = config.Environment
	Configuration  = config.Configuration
	ConfigUpdate   = config.ConfigUpdate
	RequestOptions = transport.RequestOptions
)

// Modes
const (
	ModeMock = config.ModeMock
	ModeReal = config.ModeReal
	ModeAuto = config.ModeAuto
)

// Environments
const (
	EnvDevelopment = config.EnvDevelopment
	EnvProduction  = config.EnvProduction
	EnvTest        = config.EnvTest
)

// Article statuses
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusPublished = "published"
)

// Response is the typed view of an envelope
type Response[T any] struct {
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Err     error  `json:"-"`
}

// Result returns the data or the failure as an error. A success without a
// body yields the zero T, never nil.
func (r *Response[T]) Result() (*T, error) {
	if r.Success {
		if r.Data == nil {
			return new(T), nil
		}
		return r.Data, nil
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return nil, errors.New(r.Error)
}

// decode converts an envelope into a typed response. A successful envelope
// whose data does not fit T becomes a parse failure.
func decode[T any](env *Envelope) *Response[T] {
	resp := &Response[T]{
		Error:   env.Error,
		Status:  env.Status,
		Success: env.Success,
		Err:     env.Err,
	}
	if !env.Success || len(env.Data) == 0 {
		return resp
	}

	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		resp.Success = false
		resp.Err = &internalTypes.Error{
			Code:       "PARSE_ERROR",
			Message:    "failed to decode response: " + err.Error(),
			StatusCode: env.Status,
			Err:        internalTypes.ErrParse,
		}
		resp.Error = resp.Err.Error()
		return resp
	}
	resp.Data = &data
	return resp
}

// User is a CMS account
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Article is a piece of content
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Summary     string     `json:"summary,omitempty"`
	Status      string     `json:"status"`
	CategoryID  string     `json:"category_id,omitempty"`
	AuthorID    string     `json:"author_id"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Revision is a proposed change to an article awaiting review
type Revision struct {
	ID              string     `json:"id"`
	ArticleID       string     `json:"article_id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Summary         string     `json:"summary,omitempty"`
	Status          string     `json:"status"`
	AuthorID        string     `json:"author_id"`
	ReviewerID      string     `json:"reviewer_id,omitempty"`
	ReviewComment   string     `json:"review_comment,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// Category groups articles
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Draft is unsaved work owned by the current user
type Draft struct {
	ID        string    `json:"id,omitempty"`
	ArticleID string    `json:"article_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// HealthStatus is the liveness probe body
type HealthStatus struct {
	Status string `json:"status"`
	Mode   string `json:"mode,omitempty"`
}

// ArticleParams are the writable article fields. Nil fields are not sent.
type ArticleParams struct {
	Title      *string  `json:"title,omitempty"`
	Content    *string  `json:"content,omitempty"`
	Summary    *string  `json:"summary,omitempty"`
	CategoryID *string  `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// RevisionParams are the fields of a new revision
type RevisionParams struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Summary string `json:"summary,omitempty"`
}

// ListParams controls pagination, filtering and sorting of listings
type ListParams struct {
	Page       int
	Limit      int
	Status     string
	CategoryID string
	AuthorID   string
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
	SortBy     string
	SortOrder  string
}

const dateFormat = "2006-01-02"

// Values encodes the params as a query string. Zero values are omitted.
func (p *ListParams) Values() url.Values {
	v := url.Values{}
	if p == nil {
		return v
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("status", p.Status)
	set("category_id", p.CategoryID)
	set("author_id", p.AuthorID)
	set("search", p.Search)
	if p.DateFrom != nil {
		v.Set("date_from", p.DateFrom.Format(dateFormat))
	}
	if p.DateTo != nil {
		v.Set("date_to", p.DateTo.Format(dateFormat))
	}
	set("sort_by", p.SortBy)
	set("sort_order", p.SortOrder)
	return v
}

// Search hit kinds
const (
	KindArticle  = "article"
	KindRevision = "revision"
)

// SearchParams controls a search query
type SearchParams struct {
	Query string
	// Kind restricts results to KindArticle or KindRevision
	Kind string
}

// SearchHit is one search result. Exactly one of Article and Revision is
// set, matching Kind.
type SearchHit struct {
	Kind     string
	Article  *Article
	Revision *Revision
}

// UnmarshalJSON reads the type discriminant and decodes the matching payload
func (h *SearchHit) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	*h = SearchHit{Kind: head.Type}
	switch head.Type {
	case KindArticle:
		h.Article = &Article{}
		return json.Unmarshal(data, h.Article)
	case KindRevision:
		h.Revision = &Revision{}
		return json.Unmarshal(data, h.Revision)
	default:
		return errors.Errorf("unknown search result type %q", head.Type)
	}
}

// MarshalJSON writes the payload with its type discriminant
func (h SearchHit) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch h.Kind {
	case KindArticle:
		payload = h.Article
	case KindRevision:
		payload = h.Revision
	default:
		return nil, errors.Errorf("unknown search result type %q", h.Kind)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields["type"], _ = json.Marshal(h.Kind)
	return json.Marshal(fields)
}

// SearchResults holds every hit for a query
type SearchResults struct {
	Results []SearchHit `json:"results"`
	Total   int         `json:"total"`
}
