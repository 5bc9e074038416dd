package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bgallie/mzenigma/catalog"
	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/registry"
	"github.com/stretchr/testify/require"
)

func smallCatalog(t *testing.T, model string, positions ...string) *catalog.Catalog {
	t.Helper()
	m, err := machine.New(registry.Historical(), model)
	require.NoError(t, err)
	c := catalog.New(m)
	for _, p := range positions {
		k, err := m.NewKey(machine.Settings{Reflector: m.Reflectors()[0], Rotors: m.RotorOrders()[0], Positions: p})
		require.NoError(t, err)
		c.Add(catalog.NewEntry(k))
	}
	c.Seal()
	return c
}

func stores(t *testing.T) map[string]Store {
	dir := t.TempDir()
	return map[string]Store{
		"memory":       NewMemoryStore(),
		"file":         NewFileStore(filepath.Join(dir, "pem"), ArmorPEM),
		"file-ascii85": NewFileStore(filepath.Join(dir, "a85"), ArmorASCII85),
		"bolt":         NewBoltStore(filepath.Join(dir, "catalogs.db")),
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	m3 := smallCatalog(t, "M3", "AAA", "KDO", "QWE", "ZZZ")
	a := smallCatalog(t, "A", "AB", "XY")

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Init(ctx))
			t.Cleanup(func() { _ = CloseIfSupported(s) })

			h1, err := s.Save(ctx, m3)
			require.NoError(t, err)
			require.Equal(t, m3.Handle(), h1)
			h2, err := s.Save(ctx, a)
			require.NoError(t, err)

			got, err := s.Load(ctx, h1)
			require.NoError(t, err)
			require.True(t, got.Equal(m3))
			require.Equal(t, m3.Lookup(m3.Entries[1].Characteristic), got.Lookup(m3.Entries[1].Characteristic))

			handles, err := s.List(ctx)
			require.NoError(t, err)
			require.ElementsMatch(t, []string{h1, h2}, handles)

			_, err = s.Load(ctx, "M3/0000000000000000")
			require.ErrorIs(t, err, ErrNotFound)

			// Saving again replaces the catalog under the same handle.
			_, err = s.Save(ctx, m3)
			require.NoError(t, err)
			handles, err = s.List(ctx)
			require.NoError(t, err)
			require.Len(t, handles, 2)
		})
	}
}

func TestDecodeDetectsTampering(t *testing.T) {
	c := smallCatalog(t, "M3", "AAA", "KDO")
	c.Entries[0].Positions = "AAB"
	data, err := EncodeCatalog(c)
	require.NoError(t, err)
	_, err = DecodeCatalog(data)
	require.ErrorIs(t, err, catalog.ErrCatalogInconsistent)

	_, err = DecodeCatalog([]byte("not a catalog"))
	require.Error(t, err)
}

func TestFileStoreChecksHandle(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir(), ArmorPEM)
	require.NoError(t, s.Init(ctx))

	c := smallCatalog(t, "M3", "AAA", "KDO")
	h, err := s.Save(ctx, c)
	require.NoError(t, err)

	raw, err := os.ReadFile(s.fileName(h))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "-----BEGIN "+pemType))

	other := "M3/00000000000000ff"
	require.NoError(t, os.WriteFile(s.fileName(other), raw, 0600))
	_, err = s.Load(ctx, other)
	require.ErrorIs(t, err, catalog.ErrCatalogInconsistent)
}

func TestASCII85Header(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir(), ArmorASCII85)
	require.NoError(t, s.Init(ctx))
	h, err := s.Save(ctx, smallCatalog(t, "M3", "AAA"))
	require.NoError(t, err)

	raw, err := os.ReadFile(s.fileName(h))
	require.NoError(t, err)
	first := strings.SplitN(string(raw), "\n", 2)[0]
	require.Equal(t, headerPrefix+"|1|"+h, first)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("memory", "")
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("bolt", filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	require.IsType(t, &BoltStore{}, s)

	_, err = NewStore("unknown", "")
	require.Error(t, err)

	require.Error(t, NewBoltStore("").Init(context.Background()))
	_, err = NewBoltStore("x").Load(context.Background(), "M3/0")
	require.Error(t, err)
}
