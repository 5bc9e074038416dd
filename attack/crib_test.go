package attack

import (
	"context"
	"strings"
	"testing"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/registry"
	"github.com/stretchr/testify/require"
)

func TestValidCribPositions(t *testing.T) {
	require.Equal(t, []int{0, 2, 3}, ValidCribPositions("ABCDE", "BC"))
	require.Empty(t, ValidCribPositions("AB", "ABC"))
	require.Empty(t, ValidCribPositions("AAAA", "A"))
}

func TestBuildMenu(t *testing.T) {
	a := cryptors.MustAlphabet(cryptors.StandardLetters)

	menu, err := BuildMenu(a, "BCAXY", "ABCQ", 0)
	require.NoError(t, err)
	require.Equal(t, 1, menu.Loops)
	require.NotEmpty(t, menu.Cycles)
	require.Len(t, menu.Components, 2)
	require.Len(t, menu.Components[0], 3)
	require.ElementsMatch(t, []int{16, 23}, menu.Components[1])

	// Two edges between the same letters close a loop too.
	menu, err = BuildMenu(a, "BA", "AB", 0)
	require.NoError(t, err)
	require.Equal(t, 1, menu.Loops)

	_, err = BuildMenu(a, "ABC", "AB", 0)
	require.ErrorIs(t, err, ErrNoCribPosition)
	_, err = BuildMenu(a, "ABC", "BCA", 1)
	require.ErrorIs(t, err, ErrNoCribPosition)
	_, err = BuildMenu(a, "ABC", "B1", 0)
	require.Error(t, err)
}

func TestBestCribPosition(t *testing.T) {
	a := cryptors.MustAlphabet(cryptors.StandardLetters)

	menu, err := BestCribPosition(a, "QBCAZ", "ABC")
	require.NoError(t, err)
	require.Equal(t, 1, menu.Offset)
	require.Equal(t, 1, menu.Loops)

	_, err = BestCribPosition(a, "AAA", "A")
	require.ErrorIs(t, err, ErrNoCribPosition)
}

func TestCribAttack(t *testing.T) {
	m := m3(t)
	plain, cipher := intercept(t, m, trueSettings, 200)
	crib := plain[20:50]
	e := newEngine(t, trigramScorer(t, m), nil)

	r := Range{
		Machine:    m,
		Reflectors: []string{"B"},
		Orders:     [][]string{{"II", "I", "III"}, {"I", "II", "III"}},
		Rings:      "FBC",
		Positions:  []string{"AAA", "KDO", "QWE", "ZZZ"},
	}
	results, err := e.CribAttack(context.Background(), r, cipher, crib, 20)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	truth := map[string]bool{}
	for _, pair := range strings.Fields(trueSettings.Plugs) {
		truth[pair] = true
	}
	found := false
	for _, res := range results {
		s := res.Key.Settings()
		if s.Positions != "KDO" || s.Rotors[0] != "II" {
			continue
		}
		consistent := true
		for _, pair := range strings.Fields(s.Plugs) {
			consistent = consistent && truth[pair]
		}
		if consistent && s.Plugs != "" {
			found = true
		}
	}
	require.True(t, found, "the true setting survives with a subset of the true cables")

	_, err = e.CribAttack(context.Background(), r, cipher, crib, len(cipher))
	require.ErrorIs(t, err, ErrNoCribPosition)
}

func TestCribAttackFixedPlugboard(t *testing.T) {
	m, err := machine.New(registry.Historical(), "D")
	require.NoError(t, err)
	s := machine.Settings{Reflector: "D", Rotors: []string{"III-D", "I-D", "II-D"}, Rings: "BCD", Positions: "RTZ"}
	plain := corpus(t, m)[:120]
	k, err := m.NewKey(s)
	require.NoError(t, err)
	cipher, err := k.Encode(plain)
	require.NoError(t, err)

	e := newEngine(t, nil, nil)
	r := Range{Machine: m, Reflectors: []string{"D"}, Orders: [][]string{s.Rotors}, Rings: "BCD"}
	results, err := e.CribAttack(context.Background(), r, cipher, plain[10:40], 10)
	require.NoError(t, err)
	require.Equal(t, "RTZ", results[0].Key.Settings().Positions)
	require.Equal(t, plain, results[0].Plaintext)
}
