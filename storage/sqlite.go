//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/bgallie/mzenigma/catalog"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("storage: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, c *catalog.Catalog) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}
	payload, err := EncodeCatalog(c)
	if err != nil {
		return "", err
	}
	handle := c.Handle()
	_, err = db.ExecContext(ctx, `
		INSERT INTO catalogs (handle, model, entries, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, handle, c.Model, c.Len(), CurrentCodecVersion, payload)
	if err != nil {
		return "", err
	}
	return handle, nil
}

func (s *SQLiteStore) Load(ctx context.Context, handle string) (*catalog.Catalog, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM catalogs WHERE handle = ?`, handle).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(handle)
		}
		return nil, err
	}
	c, err := DecodeCatalog(payload)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", handle, err)
	}
	return c, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT handle FROM catalogs ORDER BY handle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS catalogs (
			handle TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			entries INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
