package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/registry"
	"github.com/bgallie/mzenigma/storage"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestGroups(t *testing.T) {
	require.Equal(t, "ABCDE FGHIJ K", groups("ABCDEFGHIJK", 5))
	require.Equal(t, "ABCDE", groups("ABCDE", 5))
	require.Equal(t, "ABCDEF", groups("ABCDEF", 0))
}

func TestRangeFlags(t *testing.T) {
	m, err := machine.New(registry.Historical(), "M3")
	require.NoError(t, err)

	f := rangeFlags{reflectors: "B C", orders: "I II III; II I III;", positions: "aaa kdo", rings: "FBC"}
	r := f.build(m)
	require.Equal(t, []string{"B", "C"}, r.Reflectors)
	require.Equal(t, [][]string{{"I", "II", "III"}, {"II", "I", "III"}}, r.Orders)
	require.Equal(t, []string{"AAA", "KDO"}, r.Positions)
	require.Equal(t, 8, r.Size())

	require.Nil(t, (&rangeFlags{}).build(m).Orders)
}

func TestKeyFlags(t *testing.T) {
	m, err := machine.New(registry.Historical(), "M3")
	require.NoError(t, err)

	f := keyFlags{rotors: "II,I,III", rings: "FBC", positions: "KDO", plugs: "BQ CW", blank: "x"}
	k := f.key(m)
	require.Equal(t, []string{"II", "I", "III"}, k.Settings().Rotors)
	require.Equal(t, m.Reflectors()[0], k.Settings().Reflector)
	require.Equal(t, "HELLOXWORLD", f.normalize(m, "Hello world!"))
}

func TestNewLogger(t *testing.T) {
	t.Cleanup(viper.Reset)

	var buf bytes.Buffer
	viper.Set("log-level", "warn")
	viper.Set("log-format", "json")
	logger, err := newLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "stage", "phase1")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"stage":"phase1"`)

	viper.Set("log-format", "xml")
	_, err = newLogger(&buf)
	require.Error(t, err)

	viper.Set("log-format", "text")
	viper.Set("log-level", "loud")
	_, err = newLogger(&buf)
	require.Error(t, err)
}

func TestWithStoreClosesOnError(t *testing.T) {
	t.Cleanup(viper.Reset)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalogs.db")
	viper.Set("store", "bolt")
	viper.Set("store-path", path)

	boom := errors.New("boom")
	err := withStore(ctx, func(s storage.Store) error {
		_, err := s.List(ctx)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The database lock is gone, so the file opens again at once.
	s := storage.NewBoltStore(path)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Close())

	viper.Set("store", "tape")
	require.Error(t, withStore(ctx, func(storage.Store) error { return nil }))
}
