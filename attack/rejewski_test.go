package attack

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/bgallie/mzenigma/catalog"
	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/registry"
	"github.com/stretchr/testify/require"
)

// dayIndicators enciphers n random doubled message keys at the ground
// setting of s.
func dayIndicators(t *testing.T, m *machine.Machine, s machine.Settings, n int, seed int64) ([]string, []string) {
	t.Helper()
	k, err := m.NewKey(s)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	a := m.Alphabet()

	var indicators, keys []string
	for i := 0; i < n; i++ {
		mk := make([]int, m.Slots())
		for j := range mk {
			mk[j] = rng.Intn(a.Size())
		}
		key := a.Text(mk)
		ind, err := k.Encode(key + key)
		require.NoError(t, err)
		indicators = append(indicators, ind)
		keys = append(keys, key)
	}
	return indicators, keys
}

type mapLoader map[string]*catalog.Catalog

func (l mapLoader) Load(_ context.Context, handle string) (*catalog.Catalog, error) {
	c, ok := l[handle]
	if !ok {
		return nil, fmt.Errorf("no catalog %q", handle)
	}
	return c, nil
}

func TestCatalogAttack(t *testing.T) {
	m := m3(t)
	day := machine.Settings{Reflector: "B", Rotors: []string{"II", "I", "III"}, Positions: "KDO", Plugs: trueSettings.Plugs}
	indicators, keys := dayIndicators(t, m, day, 400, 3)

	e := newEngine(t, nil, nil)
	r := Range{
		Machine:    m,
		Reflectors: []string{"B"},
		Orders:     [][]string{{"I", "II", "III"}, {"II", "I", "III"}},
		Positions:  []string{"AAA", "KDO", "QWE", "ZZZ", "MNO"},
		Plugs:      "AZ",
	}
	cat, err := e.CreateCatalog(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, 10, cat.Len())

	loaded, err := e.LoadCatalog(context.Background(), mapLoader{cat.Handle(): cat}, cat.Handle(), m)
	require.NoError(t, err)

	matches, err := e.CatalogAttack(loaded, m, indicators)
	require.NoError(t, err)
	found := false
	for _, match := range matches {
		if match.Entry.Positions != "KDO" || match.Entry.Rotors[0] != "II" {
			continue
		}
		found = true
		require.Len(t, match.MessageKeys, len(indicators))
		plugged := map[rune]bool{}
		for _, r := range trueSettings.Plugs {
			plugged[r] = true
		}
		for i, mk := range match.MessageKeys {
			for j, r := range keys[i] {
				enc := []rune(indicators[i])[j]
				if !plugged[r] && !plugged[enc] {
					require.Equal(t, r, []rune(mk)[j])
				}
			}
		}
	}
	require.True(t, found)
}

func TestCatalogAttackErrors(t *testing.T) {
	m := m3(t)
	e := newEngine(t, nil, nil)
	day := machine.Settings{Reflector: "B", Rotors: []string{"II", "I", "III"}, Positions: "KDO"}

	indicators, _ := dayIndicators(t, m, day, 5, 1)
	_, err := IndicatorProducts(m.Alphabet(), indicators, 3)
	require.ErrorIs(t, err, ErrInsufficientIndicators)

	bad := append([]string{}, indicators...)
	bad = append(bad, indicators[0][:3]+string(indicators[0][5])+string(indicators[0][3:5]))
	_, err = IndicatorProducts(m.Alphabet(), bad, 3)
	var ke *cryptors.KeyError
	require.ErrorAs(t, err, &ke)

	r := Range{Machine: m, Reflectors: []string{"B"}, Orders: [][]string{{"I", "II", "III"}}, Positions: []string{"AAA"}}
	cat, err := e.CreateCatalog(context.Background(), r)
	require.NoError(t, err)

	indicators, _ = dayIndicators(t, m, day, 400, 2)
	_, err = e.CatalogAttack(cat, m, indicators)
	require.ErrorIs(t, err, ErrAttackExhausted)

	a, err := machine.New(registry.Historical(), "I")
	require.NoError(t, err)
	_, err = e.CatalogAttack(cat, a, indicators)
	require.ErrorIs(t, err, catalog.ErrCatalogInconsistent)

	_, err = e.LoadCatalog(context.Background(), mapLoader{}, "M3/0", m)
	require.Error(t, err)
}
