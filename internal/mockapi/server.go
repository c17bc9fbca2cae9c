// Package mockapi is an in-memory stand-in for the CMS backend. It speaks
// the same HTTP contract under BasePath and is served in-process when the
// client runs in mock mode.
package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// BasePath is the path prefix the mock backend is mounted under
const BasePath = "/mock-api"

// TokenTTL is the lifetime of tokens issued by the mock backend
const TokenTTL = time.Hour

// signingKey is shared by every mock backend so a token issued by one
// process is accepted by the next
var signingKey = []byte("cmsclient-mock-backend")

const tokenIssuer = "cms-mock"

type ctxKey struct{}

// Server holds the mock backend state
type Server struct {
	mu         sync.Mutex
	users      []*user
	articles   []*article
	revisions  []*revision
	categories []*category
	drafts     []*draft
	revoked    map[string]bool
	now        func() time.Time
}

// New creates a seeded mock backend
func New() *Server {
	s := &Server{
		revoked: make(map[string]bool),
		now:     time.Now,
	}
	s.seed()
	return s
}

// Handler returns the router with every route mounted under BasePath
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/api/v1/health", s.health)

		r.Post("/api/v1/auth/login/json", s.loginJSON)
		r.Post("/api/v1/auth/login", s.loginForm)
		r.Post("/api/v1/auth/refresh", s.refresh)
		r.Post("/api/v1/auth/logout", s.logout)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticated)

			r.Get("/api/v1/auth/me", s.me)

			r.Get("/api/v1/articles", s.listArticles)
			r.Post("/api/v1/articles", s.createArticle)
			r.Get("/api/v1/articles/{id}", s.getArticle)
			r.Put("/api/v1/articles/{id}", s.updateArticle)
			r.Delete("/api/v1/articles/{id}", s.deleteArticle)
			r.Get("/api/v1/articles/{id}/revisions", s.articleRevisions)

			r.Get("/api/v1/revisions", s.listRevisions)
			r.Post("/api/v1/revisions", s.createRevision)
			r.Get("/api/v1/revisions/{id}", s.getRevision)
			r.Post("/api/v1/revisions/{id}/submit", s.submitRevision)

			r.Get("/api/v1/approvals/pending", s.pendingApprovals)
			r.Post("/api/v1/approvals/{id}/approve", s.approve)
			r.Post("/api/v1/approvals/{id}/reject", s.reject)

			r.Get("/api/v1/search", s.search)

			r.Get("/api/v1/categories", s.listCategories)
			r.Get("/api/v1/categories/{id}", s.getCategory)

			r.Get("/api/v1/drafts", s.listDrafts)
			r.Post("/api/v1/drafts", s.saveDraft)
			r.Delete("/api/v1/drafts/{id}", s.deleteDraft)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "mode": "mock"})
}

// --- auth ---

func (s *Server) issue(w http.ResponseWriter, u *user) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   u.Username,
		ID:        newID(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "could not sign token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(TokenTTL.Seconds()),
	})
}

// verify checks the signature and revocation of a bearer token. Expiry is
// only enforced when checkExpiry is set.
func (s *Server) verify(raw string, checkExpiry bool) *jwt.RegisteredClaims {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if checkExpiry {
		opts = append(opts, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return signingKey, nil
	}, opts...)
	if err != nil || claims.Issuer != tokenIssuer || s.revoked[claims.ID] {
		return nil
	}
	return claims
}

func (s *Server) checkCredentials(identifier, password string) *user {
	for _, u := range s.users {
		if (u.Username == identifier || u.Email == identifier) && u.password == password && u.IsActive {
			return u
		}
	}
	return nil
}

func (s *Server) loginJSON(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.checkCredentials(req.Email, req.Password)
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.issue(w, u)
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.checkCredentials(r.PostForm.Get("username"), r.PostForm.Get("password"))
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.issue(w, u)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if i := strings.IndexByte(header, ' '); i > 0 && strings.EqualFold(header[:i], "bearer") {
		return strings.TrimSpace(header[i+1:])
	}
	return ""
}

// refresh accepts expired tokens it issued itself
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims := s.verify(bearerToken(r), false)
	if claims == nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	u := s.userByName(claims.Subject)
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	s.revoked[claims.ID] = true
	s.issue(w, u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if claims := s.verify(bearerToken(r), false); claims != nil {
		s.revoked[claims.ID] = true
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var u *user
		if claims := s.verify(bearerToken(r), true); claims != nil {
			u = s.userByName(claims.Subject)
		}
		s.mu.Unlock()

		if u == nil || !u.IsActive {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(ctxKey{}).(*user)
	return u
}

func (s *Server) userByName(username string) *user {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

// --- listing helpers ---

type listQuery struct {
	page, limit int
	status      string
	categoryID  string
	authorID    string
	search      string
	dateFrom    time.Time
	dateTo      time.Time
	sortBy      string
	desc        bool
}

func parseList(r *http.Request) listQuery {
	q := r.URL.Query()
	lq := listQuery{
		page:       atoiDefault(q.Get("page"), 1),
		limit:      atoiDefault(q.Get("limit"), 20),
		status:     q.Get("status"),
		categoryID: q.Get("category_id"),
		authorID:   q.Get("author_id"),
		search:     strings.ToLower(q.Get("search")),
		sortBy:     q.Get("sort_by"),
		desc:       q.Get("sort_order") != "asc",
	}
	lq.dateFrom, _ = time.Parse("2006-01-02", q.Get("date_from"))
	lq.dateTo, _ = time.Parse("2006-01-02", q.Get("date_to"))
	if lq.page < 1 {
		lq.page = 1
	}
	if lq.limit < 1 || lq.limit > 100 {
		lq.limit = 20
	}
	return lq
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func paginate[T any](items []T, lq listQuery) page {
	if items == nil {
		items = []T{}
	}
	total := len(items)
	start := (lq.page - 1) * lq.limit
	if start > total {
		start = total
	}
	end := start + lq.limit
	if end > total {
		end = total
	}
	return page{
		Items: items[start:end],
		Total: total,
		Page:  lq.page,
		Limit: lq.limit,
		Pages: (total + lq.limit - 1) / lq.limit,
	}
}

func (lq listQuery) matchesDate(t time.Time) bool {
	if !lq.dateFrom.IsZero() && t.Before(lq.dateFrom) {
		return false
	}
	if !lq.dateTo.IsZero() && !t.Before(lq.dateTo.Add(24*time.Hour)) {
		return false
	}
	return true
}

// --- articles ---

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	lq := parseList(r)

	s.mu.Lock()
	var out []article
	for _, a := range s.articles {
		if lq.status != "" && a.Status != lq.status {
			continue
		}
		if lq.categoryID != "" && a.CategoryID != lq.categoryID {
			continue
		}
		if lq.authorID != "" && a.AuthorID != lq.authorID {
			continue
		}
		if lq.search != "" && !strings.Contains(strings.ToLower(a.Title+" "+a.Content), lq.search) {
			continue
		}
		if !lq.matchesDate(a.CreatedAt) {
			continue
		}
		out = append(out, *a)
	}
	s.mu.Unlock()

	less := func(a, b article) bool {
		switch lq.sortBy {
		case "title":
			return a.Title < b.Title
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if lq.desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})

	writeJSON(w, http.StatusOK, paginate(out, lq))
}

func (s *Server) findArticle(id string) *article {
	for _, a := range s.articles {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findArticle(chi.URLParam(r, "id"))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "Article not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type articleInput struct {
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	Summary    *string  `json:"summary"`
	CategoryID *string  `json:"category_id"`
	Tags       []string `json:"tags"`
}

func (s *Server) createArticle(w http.ResponseWriter, r *http.Request) {
	var in articleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == nil || *in.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	a := &article{ID: newID(), Status: "draft", AuthorID: currentUser(r).ID, CreatedAt: now, UpdatedAt: now}
	applyArticle(a, in)
	s.articles = append(s.articles, a)
	writeJSON(w, http.StatusCreated, a)
}

func applyArticle(a *article, in articleInput) {
	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Content != nil {
		a.Content = *in.Content
	}
	if in.Summary != nil {
		a.Summary = *in.Summary
	}
	if in.CategoryID != nil {
		a.CategoryID = *in.CategoryID
	}
	if in.Tags != nil {
		a.Tags = in.Tags
	}
}

func (s *Server) updateArticle(w http.ResponseWriter, r *http.Request) {
	var in articleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findArticle(chi.URLParam(r, "id"))
	if a == nil {
		writeDetail(w, http.StatusNotFound, "Article not found")
		return
	}
	applyArticle(a, in)
	a.UpdatedAt = s.now()
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i, a := range s.articles {
		if a.ID == id {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Article not found")
}

// --- revisions ---

func (s *Server) filterRevisions(articleID, status string) []revision {
	var out []revision
	for _, rev := range s.revisions {
		if articleID != "" && rev.ArticleID != articleID {
			continue
		}
		if status != "" && rev.Status != status {
			continue
		}
		out = append(out, *rev)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Server) listRevisions(w http.ResponseWriter, r *http.Request) {
	lq := parseList(r)
	s.mu.Lock()
	out := s.filterRevisions(r.URL.Query().Get("article_id"), lq.status)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(out, lq))
}

func (s *Server) articleRevisions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	if s.findArticle(id) == nil {
		writeDetail(w, http.StatusNotFound, "Article not found")
		return
	}
	out := s.filterRevisions(id, "")
	if out == nil {
		out = []revision{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) findRevision(id string) *revision {
	for _, rev := range s.revisions {
		if rev.ID == id {
			return rev
		}
	}
	return nil
}

func (s *Server) getRevision(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev := s.findRevision(chi.URLParam(r, "id"))
	if rev == nil {
		writeDetail(w, http.StatusNotFound, "Revision not found")
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (s *Server) createRevision(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ArticleID string `json:"article_id"`
		Title     string `json:"title"`
		Content   string `json:"content"`
		Summary   string `json:"summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ArticleID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "article_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findArticle(in.ArticleID)
	if a == nil {
		writeDetail(w, http.StatusNotFound, "Article not found")
		return
	}
	if in.Title == "" {
		in.Title = a.Title
	}
	rev := &revision{ID: newID(), ArticleID: a.ID, Title: in.Title, Content: in.Content, Summary: in.Summary,
		Status: "draft", AuthorID: currentUser(r).ID, CreatedAt: s.now()}
	s.revisions = append(s.revisions, rev)
	writeJSON(w, http.StatusCreated, rev)
}

func (s *Server) submitRevision(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev := s.findRevision(chi.URLParam(r, "id"))
	if rev == nil {
		writeDetail(w, http.StatusNotFound, "Revision not found")
		return
	}
	if rev.Status != "draft" && rev.Status != "rejected" {
		writeDetail(w, http.StatusConflict, "Revision already submitted")
		return
	}
	now := s.now()
	rev.Status = "pending"
	rev.SubmittedAt = &now
	if a := s.findArticle(rev.ArticleID); a != nil && a.Status != "published" {
		a.Status = "pending"
	}
	writeJSON(w, http.StatusOK, rev)
}

// --- approvals ---

func (s *Server) pendingApprovals(w http.ResponseWriter, r *http.Request) {
	lq := parseList(r)
	s.mu.Lock()
	out := s.filterRevisions("", "pending")
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(out, lq))
}

func (s *Server) review(w http.ResponseWriter, r *http.Request, approve bool) {
	var in struct {
		Comment string `json:"comment"`
		Reason  string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	reviewer := currentUser(r)
	if reviewer.Role != "admin" && reviewer.Role != "approver" {
		writeDetail(w, http.StatusForbidden, "Approver role required")
		return
	}
	if !approve && in.Reason == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "reason is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rev := s.findRevision(chi.URLParam(r, "id"))
	if rev == nil {
		writeDetail(w, http.StatusNotFound, "Revision not found")
		return
	}
	if rev.Status != "pending" {
		writeDetail(w, http.StatusConflict, "Revision is not pending approval")
		return
	}

	now := s.now()
	rev.ReviewerID = reviewer.ID
	rev.ReviewedAt = &now
	a := s.findArticle(rev.ArticleID)
	if approve {
		rev.Status = "approved"
		rev.ReviewComment = in.Comment
		if a != nil {
			a.Title, a.Content, a.Status, a.UpdatedAt, a.PublishedAt = rev.Title, rev.Content, "published", now, &now
			if rev.Summary != "" {
				a.Summary = rev.Summary
			}
		}
	} else {
		rev.Status = "rejected"
		rev.RejectionReason = in.Reason
		if a != nil && a.Status == "pending" {
			a.Status = "rejected"
		}
	}
	writeJSON(w, http.StatusOK, rev)
}

func (s *Server) approve(w http.ResponseWriter, r *http.Request) { s.review(w, r, true) }

func (s *Server) reject(w http.ResponseWriter, r *http.Request) { s.review(w, r, false) }

// --- search ---

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	kind := r.URL.Query().Get("type")

	s.mu.Lock()
	defer s.mu.Unlock()

	results := []map[string]interface{}{}
	matches := func(parts ...string) bool {
		return q == "" || strings.Contains(strings.ToLower(strings.Join(parts, " ")), q)
	}
	if kind == "" || kind == "article" {
		for _, a := range s.articles {
			if matches(a.Title, a.Content) {
				results = append(results, tagged("article", a))
			}
		}
	}
	if kind == "" || kind == "revision" {
		for _, rev := range s.revisions {
			if matches(rev.Title, rev.Content) {
				results = append(results, tagged("revision", rev))
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results, "total": len(results)})
}

// tagged flattens v and adds the type discriminant
func tagged(kind string, v interface{}) map[string]interface{} {
	data, _ := json.Marshal(v)
	out := map[string]interface{}{}
	_ = json.Unmarshal(data, &out)
	out["type"] = kind
	return out
}

// --- categories ---

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.categories)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for _, c := range s.categories {
		if c.ID == id || c.Slug == id {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Category not found")
}

// --- drafts ---

func (s *Server) listDrafts(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []draft{}
	for _, d := range s.drafts {
		if d.AuthorID == me.ID {
			out = append(out, *d)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	var in draft
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	me := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	in.AuthorID = me.ID
	in.UpdatedAt = s.now()
	if in.ID != "" {
		for i, d := range s.drafts {
			if d.ID == in.ID && d.AuthorID == me.ID {
				s.drafts[i] = &in
				writeJSON(w, http.StatusOK, in)
				return
			}
		}
		writeDetail(w, http.StatusNotFound, "Draft not found")
		return
	}
	in.ID = newID()
	s.drafts = append(s.drafts, &in)
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i, d := range s.drafts {
		if d.ID == id && d.AuthorID == me.ID {
			s.drafts = append(s.drafts[:i], s.drafts[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Draft not found")
}
