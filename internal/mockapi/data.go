package mockapi

import (
	"time"

	"github.com/google/uuid"
)

type user struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	password string
}

type article struct {
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

type revision struct {
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

type category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type draft struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type page struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int         `json:"pages"`
}

func newID() string {
	return uuid.New().String()
}

// seed fills the store with a small fixed data set
func (s *Server) seed() {
	now := s.now()

	admin := &user{ID: newID(), Username: "testadmin", Email: "admin@example.com", FullName: "Test Admin", Role: "admin", IsActive: true, password: "password"}
	author := &user{ID: newID(), Username: "author", Email: "author@example.com", FullName: "Test Author", Role: "author", IsActive: true, password: "password"}
	s.users = []*user{admin, author}

	news := &category{ID: newID(), Name: "News", Slug: "news", Description: "Current events"}
	guides := &category{ID: newID(), Name: "Guides", Slug: "guides", Description: "How-to articles"}
	s.categories = []*category{news, guides}

	published := now.Add(-48 * time.Hour)
	welcome := &article{ID: newID(), Title: "Welcome to the newsroom", Content: "First published article.", Status: "published",
		CategoryID: news.ID, AuthorID: author.ID, CreatedAt: published, UpdatedAt: published, PublishedAt: &published}
	setup := &article{ID: newID(), Title: "Setting up your editor", Content: "Draft content.", Status: "draft",
		CategoryID: guides.ID, AuthorID: author.ID, CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)}
	s.articles = []*article{welcome, setup}

	submitted := now.Add(-30 * time.Minute)
	s.revisions = []*revision{{
		ID: newID(), ArticleID: setup.ID, Title: setup.Title, Content: "Revised draft content.", Status: "pending",
		AuthorID: author.ID, CreatedAt: submitted, SubmittedAt: &submitted,
	}}
}
