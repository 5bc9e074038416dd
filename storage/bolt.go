package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bgallie/mzenigma/catalog"
	"go.etcd.io/bbolt"
)

var (
	bucketCatalogs = []byte("catalogs")

	errNotInitialized = errors.New("storage: store is not initialized")
)

// BoltStore files catalogs in one bbolt bucket keyed by handle.
type BoltStore struct {
	path string

	mu sync.RWMutex
	db *bbolt.DB
}

func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

func (s *BoltStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("storage: bolt path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("storage: open bolt: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCatalogs)
		return err
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("storage: create bucket: %w", err)
	}
	s.db = db
	return nil
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BoltStore) getDB() (*bbolt.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func (s *BoltStore) Save(_ context.Context, c *catalog.Catalog) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}
	data, err := EncodeCatalog(c)
	if err != nil {
		return "", err
	}
	handle := c.Handle()
	err = db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCatalogs).Put([]byte(handle), data)
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", handle, err)
	}
	return handle, nil
}

func (s *BoltStore) Load(_ context.Context, handle string) (*catalog.Catalog, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	var data []byte
	err = db.View(func(tx *bbolt.Tx) error {
		// Get's slice is only valid inside the transaction.
		if v := tx.Bucket(bucketCatalogs).Get([]byte(handle)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, notFound(handle)
	}
	return DecodeCatalog(data)
}

func (s *BoltStore) List(_ context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	var handles []string
	err = db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCatalogs).ForEach(func(k, _ []byte) error {
			handles = append(handles, string(k))
			return nil
		})
	})
	return handles, err
}
