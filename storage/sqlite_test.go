//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "catalogs.sqlite"))
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() { _ = store.Close() })

	c := smallCatalog(t, "M3", "AAA", "KDO", "QWE")
	h, err := store.Save(ctx, c)
	require.NoError(t, err)

	got, err := store.Load(ctx, h)
	require.NoError(t, err)
	require.True(t, got.Equal(c))

	handles, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{h}, handles)

	_, err = store.Load(ctx, "M3/0")
	require.ErrorIs(t, err, ErrNotFound)
}
