package session

import (
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var (
	boltBucket = []byte("session")
	boltKey    = []byte("auth")
)

// BoltStorage keeps the session under a single key in a BBolt database
type BoltStorage struct {
	db *bbolt.DB
}

var _ Storage = (*BoltStorage)(nil)

// NewBoltStorage returns a Storage backed by the given BBolt database
func NewBoltStorage(db *bbolt.DB) *BoltStorage {
	return &BoltStorage{db: db}
}

// OpenBoltStorage opens a BBolt database at path
func OpenBoltStorage(path string, options *bbolt.Options) (*BoltStorage, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, errors.Wrap(err, "opening bbolt db")
	}
	return NewBoltStorage(db), nil
}

// Close closes the underlying BBolt database
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

func (s *BoltStorage) Load() ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return ErrNoData
		}
		data := b.Get(boltKey)
		if data == nil {
			return ErrNoData
		}
		// data is only valid inside the transaction
		out = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStorage) Save(data []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return err
		}
		return b.Put(boltKey, data)
	})
}

func (s *BoltStorage) Delete() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return nil
		}
		return b.Delete(boltKey)
	})
}
