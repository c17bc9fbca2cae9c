package session

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/eshaffer321/cmsclient-go/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Store holds the current session and mirrors it into a durable slot.
// Readers get value snapshots; SetTokens and Clear replace the whole value.
// persistMu orders writers so the durable slot always ends up holding the
// same session as memory.
type Store struct {
	persistMu sync.Mutex
	mu        sync.RWMutex
	session   types.Session
	storage   Storage
	logger    types.Logger
	now       func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store persisting through storage. A nil storage keeps
// the session in memory only.
func NewStore(storage Storage, logger types.Logger, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	s := &Store{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsAuthenticated reports whether a token exists and has not expired
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().Valid(s.now())
}

// HasSession reports whether tokens are held, expired or not
func (s *Store) HasSession() bool {
	return s.Snapshot().Tokens != nil
}

// Expired reports whether tokens are held but past their expiry
func (s *Store) Expired() bool {
	snap := s.Snapshot()
	return snap.Tokens != nil && !snap.Valid(s.now())
}

// ValidTokens returns a copy of the tokens if the session is authenticated
func (s *Store) ValidTokens() (types.AuthTokens, bool) {
	snap := s.Snapshot()
	if !snap.Valid(s.now()) {
		return types.AuthTokens{}, false
	}
	return *snap.Tokens, true
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() types.Session {
	s.mu.RLock()
	snap := s.session
	s.mu.RUnlock()

	if snap.Tokens != nil {
		tokens := *snap.Tokens
		snap.Tokens = &tokens
	}
	return snap
}

// SetTokens replaces the session with tokens issued now and persists it.
// A persistence failure leaves the session in memory only.
func (s *Store) SetTokens(tokens types.AuthTokens) types.Session {
	issued := tokens
	next := types.Session{
		Tokens:    &issued,
		ExpiresAt: s.now().Add(tokens.Lifetime()),
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()

	data, err := json.Marshal(next)
	if err == nil {
		err = s.storage.Save(data)
	}
	if err != nil {
		s.logger.Warn("Failed to persist session, keeping it in memory", "error", err)
	} else {
		s.logger.Debug("Session saved", "expiresAt", next.ExpiresAt)
	}

	return next
}

// Clear drops the in-memory session and the persisted copy
func (s *Store) Clear() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.clear()
}

func (s *Store) clear() {
	s.mu.Lock()
	s.session = types.Session{}
	s.mu.Unlock()

	if err := s.storage.Delete(); err != nil {
		s.logger.Warn("Failed to remove persisted session", "error", err)
	}
}

// Restore adopts the persisted session if it parses and is still valid.
// Anything else clears both copies. Returns whether a session was restored.
func (s *Store) Restore() bool {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	data, err := s.storage.Load()
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			s.logger.Warn("Failed to read persisted session", "error", err)
			s.clear()
		}
		return false
	}

	var restored types.Session
	if err := json.Unmarshal(data, &restored); err != nil {
		s.logger.Warn("Discarding corrupt persisted session", "error", err)
		s.clear()
		return false
	}

	if !restored.Valid(s.now()) {
		s.logger.Info("Discarding expired persisted session", "expiresAt", restored.ExpiresAt)
		s.clear()
		return false
	}

	s.mu.Lock()
	s.session = restored
	s.mu.Unlock()

	s.logger.Info("Session restored", "expiresAt", restored.ExpiresAt)
	return true
}

// Status returns a display snapshot of the session
func (s *Store) Status() types.Status {
	snap := s.Snapshot()
	status := types.Status{
		IsAuthenticated: snap.Valid(s.now()),
	}
	if snap.Tokens != nil {
		tokens := *snap.Tokens
		expiresAt := snap.ExpiresAt
		status.Tokens = &tokens
		status.ExpiresAt = &expiresAt
		status.Subject = tokenSubject(tokens.AccessToken)
	}
	return status
}

// tokenSubject reads the sub claim of a JWT without verifying it. The
// backend is the only party that validates tokens; this is display only.
func tokenSubject(accessToken string) string {
	if strings.Count(accessToken, ".") != 2 {
		return ""
	}
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
