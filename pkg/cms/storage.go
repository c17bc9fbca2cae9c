package cms

import (
	"time"

	"github.com/eshaffer321/cmsclient-go/internal/session"
	"go.etcd.io/bbolt"
)

// SessionStorage is a durable slot holding the serialized session
type SessionStorage = session.Storage

// NewMemoryStorage returns storage that lives as long as the process
func NewMemoryStorage() SessionStorage {
	return session.NewMemoryStorage()
}

// NewFileStorage stores the session as a JSON file readable only by the owner.
// An empty path uses DefaultSessionPath.
func NewFileStorage(path string) SessionStorage {
	if path == "" {
		path = DefaultSessionPath()
	}
	return session.NewFileStorage(path)
}

// DefaultSessionPath is the session file under the user config directory
func DefaultSessionPath() string {
	return session.DefaultFilePath()
}

// OpenBoltStorage stores the session in a bbolt database at path. The
// client closes it on Close.
func OpenBoltStorage(path string) (SessionStorage, error) {
	s, err := session.OpenBoltStorage(path, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return s, nil
}
