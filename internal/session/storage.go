// Package session owns the current authentication tokens and their durable copy.
package session

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrNoData is returned by Storage.Load when nothing has been persisted
var ErrNoData = errors.New("no persisted session")

// Storage is a single durable slot holding the serialized session
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Delete() error
}

// MemoryStorage is a Storage that lives only as long as the process
type MemoryStorage struct {
	mu   sync.RWMutex
	data []byte
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory slot
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, ErrNoData
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

func (s *MemoryStorage) Save(data []byte) error {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete() error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}
