// Package storage keeps characteristic catalogs between runs. Every backend
// files a catalog under its handle, "model/fingerprint", and checks the
// fingerprint again when it hands the catalog back.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bgallie/mzenigma/catalog"
)

var ErrNotFound = errors.New("storage: catalog not found")

// Store persists sealed catalogs.
type Store interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, c *catalog.Catalog) (string, error)
	Load(ctx context.Context, handle string) (*catalog.Catalog, error)
	List(ctx context.Context) ([]string, error)
}

// NewStore opens the backend kind ("memory", "file", "bolt" or "sqlite")
// at path. The store still has to be initialized.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(path, ArmorPEM), nil
	case "file-ascii85":
		return NewFileStore(path, ArmorASCII85), nil
	case "bolt":
		return NewBoltStore(path), nil
	case "sqlite":
		return newSQLiteStore(path)
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", kind)
	}
}

// CloseIfSupported closes stores that hold a file or database open.
func CloseIfSupported(s Store) error {
	closer, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

func notFound(handle string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, handle)
}
