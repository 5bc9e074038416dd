package attack

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/registry"
	"github.com/bgallie/mzenigma/scoring"
	"github.com/stretchr/testify/require"
)

var trueSettings = machine.Settings{
	Reflector: "B",
	Rotors:    []string{"II", "I", "III"},
	Rings:     "FBC",
	Positions: "KDO",
	Plugs:     "BQ CW DI KZ MY",
}

func m3(t *testing.T) *machine.Machine {
	t.Helper()
	m, err := machine.New(registry.Historical(), "M3")
	require.NoError(t, err)
	return m
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func corpus(t *testing.T, m *machine.Machine) string {
	t.Helper()
	b, err := os.ReadFile("../scoring/testdata/english.txt")
	require.NoError(t, err)
	return m.Alphabet().Normalize(string(b), 0)
}

func trigramScorer(t *testing.T, m *machine.Machine) *scoring.Scorer {
	t.Helper()
	s, err := scoring.NewScorer(m.Alphabet(), scoring.Train(m.Alphabet(), corpus(t, m), 3))
	require.NoError(t, err)
	return s
}

func newEngine(t *testing.T, scorer *scoring.Scorer, edit func(*Options)) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Workers = 4
	if edit != nil {
		edit(&opts)
	}
	e, err := New(scorer, opts, quietLogger())
	require.NoError(t, err)
	return e
}

// intercept enciphers n letters of the test corpus under s.
func intercept(t *testing.T, m *machine.Machine, s machine.Settings, n int) (plain, cipher string) {
	t.Helper()
	plain = corpus(t, m)[:n]
	k, err := m.NewKey(s)
	require.NoError(t, err)
	cipher, err = k.Encode(plain)
	require.NoError(t, err)
	return plain, cipher
}

func TestNewEngine(t *testing.T) {
	m := m3(t)
	scorer := trigramScorer(t, m)

	e := newEngine(t, scorer, func(o *Options) { o.Workers = 0; o.Method = "" })
	require.Equal(t, 1, e.Options().Workers)
	require.Equal(t, MethodShotgun, e.Options().Method)

	_, err := New(scorer, Options{Method: "guess"}, nil)
	require.Error(t, err)

	_, err = New(scorer, Options{Ngram: 4}, nil)
	require.ErrorIs(t, err, scoring.ErrNoModel)

	noScorer := newEngine(t, nil, nil)
	_, err = noScorer.Attack(context.Background(), Range{Machine: m}, "ABCDEF")
	require.ErrorIs(t, err, scoring.ErrNoModel)
}

func TestAllPositions(t *testing.T) {
	m, err := machine.New(registry.Historical(), "A")
	require.NoError(t, err)

	var all []string
	for p := range AllPositions(m) {
		all = append(all, p)
	}
	require.Len(t, all, 26*26)
	require.Equal(t, "AA", all[0])
	require.Equal(t, "AB", all[1])
	require.Equal(t, "ZZ", all[len(all)-1])

	r := Range{Machine: m3(t), Reflectors: []string{"B"}, Orders: [][]string{{"I", "II", "III"}}}
	require.Equal(t, 26*26*26, r.Size())
	r.Positions = []string{"AAA", "QQQ"}
	require.Equal(t, 2, r.Size())
	n := 0
	for s := range r.Candidates() {
		require.Equal(t, "B", s.Reflector)
		n++
	}
	require.Equal(t, 2, n)
}

func TestPhase1FindsGroundSetting(t *testing.T) {
	m := m3(t)
	s := trueSettings
	s.Plugs = ""
	s.Rings = ""
	_, cipher := intercept(t, m, s, 300)

	e := newEngine(t, nil, func(o *Options) { o.TopK = 5 })
	r := Range{Machine: m, Reflectors: []string{"B"}, Orders: [][]string{s.Rotors}}
	cands, err := e.Phase1(context.Background(), r, cipher)
	require.NoError(t, err)
	require.Len(t, cands, 5)
	require.Equal(t, "KDO", cands[0].Settings.Positions)
	for i := 1; i < len(cands); i++ {
		require.GreaterOrEqual(t, cands[i-1].Score, cands[i].Score)
	}

	_, err = e.Phase1(context.Background(), r, "A")
	require.Error(t, err)
}

func TestPhase1Threshold(t *testing.T) {
	m := m3(t)
	s := trueSettings
	s.Plugs = ""
	_, cipher := intercept(t, m, s, 300)

	e := newEngine(t, nil, func(o *Options) { o.Threshold = 0.055; o.Workers = 1 })
	r := Range{Machine: m, Reflectors: []string{"B"}, Orders: [][]string{s.Rotors}, Rings: s.Rings,
		Positions: []string{"AAA", "KDO", "ZZZ", "QWE"}}
	cands, err := e.Phase1(context.Background(), r, cipher)
	require.NoError(t, err)
	require.Equal(t, "KDO", cands[0].Settings.Positions)
}

func TestRefineRings(t *testing.T) {
	m := m3(t)
	s := trueSettings
	s.Plugs = ""
	plain, cipher := intercept(t, m, s, 1500)

	// Same rotor cores, wrong ring and window on the right rotor.
	off := s
	off.Rings = "FBA"
	off.Positions = "KDM"
	k, err := m.NewKey(off)
	require.NoError(t, err)

	e := newEngine(t, nil, nil)
	idx, err := m.Alphabet().Indices(cipher)
	require.NoError(t, err)
	refined, _ := e.RefineRings(k, idx, e.icScore(m.Alphabet().Size()))

	got, err := refined.Decode(cipher)
	require.NoError(t, err)
	require.Equal(t, plain, got)
	require.Equal(t, 'C', []rune(refined.Settings().Rings)[2])
}

func TestHillClimbRecoversPlugboard(t *testing.T) {
	m := m3(t)
	plain, cipher := intercept(t, m, trueSettings, 700)
	e := newEngine(t, trigramScorer(t, m), nil)

	s := trueSettings
	s.Plugs = ""
	k, err := m.NewKey(s)
	require.NoError(t, err)

	res, err := e.HillClimb(k, cipher)
	require.NoError(t, err)
	require.Equal(t, plain, res.Plaintext)
	require.Equal(t, "BQ CW DI KZ MY", res.Key.Settings().Plugs)
	require.Empty(t, k.Settings().Plugs, "the input key is left alone")
}

func TestPhase2Methods(t *testing.T) {
	m := m3(t)
	plain, cipher := intercept(t, m, trueSettings, 700)
	scorer := trigramScorer(t, m)

	s := trueSettings
	s.Plugs = ""
	for _, method := range []Method{MethodHillClimb, MethodAnneal, MethodShotgun, MethodExchange, MethodMz} {
		t.Run(string(method), func(t *testing.T) {
			e := newEngine(t, scorer, func(o *Options) { o.Method = method; o.Restarts = 4 })
			k, err := m.NewKey(s)
			require.NoError(t, err)
			res, err := e.Phase2(context.Background(), k, cipher)
			require.NoError(t, err)
			require.Equal(t, plain, res.Plaintext)
		})
	}
}

func TestShotgunIsDeterministic(t *testing.T) {
	m := m3(t)
	s := trueSettings
	s.Plugs = "AF BQ CW DI EX GT HN KZ LP MY"
	_, cipher := intercept(t, m, s, 300)
	scorer := trigramScorer(t, m)
	s.Plugs = ""

	run := func(workers int) *Result {
		e := newEngine(t, scorer, func(o *Options) {
			o.Workers = workers
			o.Restarts = 40
			o.NoImprovement = 3
			o.Seed = 7
		})
		k, err := m.NewKey(s)
		require.NoError(t, err)
		res, err := e.Shotgun(context.Background(), k, cipher)
		require.NoError(t, err)
		return res
	}
	want := run(1)
	for i := 0; i < 5; i++ {
		got := run(8)
		require.Equal(t, want.Score, got.Score, "run %d", i)
		require.True(t, want.Key.Equal(got.Key), "run %d: %s vs %s", i, want.Key, got.Key)
	}
}

func TestShotgunStopScore(t *testing.T) {
	m := m3(t)
	_, cipher := intercept(t, m, trueSettings, 300)
	scorer := trigramScorer(t, m)
	s := trueSettings
	s.Plugs = ""

	run := func(edit func(*Options)) *Result {
		e := newEngine(t, scorer, func(o *Options) {
			o.Workers = 4
			o.Seed = 3
			edit(o)
		})
		k, err := m.NewKey(s)
		require.NoError(t, err)
		res, err := e.Shotgun(context.Background(), k, cipher)
		require.NoError(t, err)
		return res
	}
	// Any climbed plugboard beats -10, so only the first restart counts.
	stopped := run(func(o *Options) { o.Restarts = 20; o.StopScore = -10 })
	first := run(func(o *Options) { o.Restarts = 1 })
	require.Equal(t, first.Score, stopped.Score)
	require.True(t, first.Key.Equal(stopped.Key))
}

func TestPhase2NeedsFreePlugboard(t *testing.T) {
	m, err := machine.New(registry.Historical(), "D")
	require.NoError(t, err)
	k, err := m.NewKey(machine.Settings{Reflector: "D", Rotors: m.RotorOrders()[0]})
	require.NoError(t, err)

	scorer := trigramScorer(t, m3(t))
	e := newEngine(t, scorer, nil)
	_, err = e.HillClimb(k, "ABCDEFGHIJ")
	require.Error(t, err)
}

func TestAttackEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full attack")
	}
	m := m3(t)
	text := corpus(t, m)
	split := len(text) - 900
	plain := text[split:]
	scorer, err := scoring.NewScorer(m.Alphabet(), scoring.Train(m.Alphabet(), text[:split], 3))
	require.NoError(t, err)

	k, err := m.NewKey(trueSettings)
	require.NoError(t, err)
	cipher, err := k.Encode(plain)
	require.NoError(t, err)
	idx, err := m.Alphabet().Indices(plain)
	require.NoError(t, err)
	trueScore := scorer.MeanScore(idx, 3)

	e := newEngine(t, scorer, func(o *Options) {
		o.Method = MethodHillClimb
		o.TopK = 5
		o.MinScore = trueScore - 1
	})
	r := Range{Machine: m, Reflectors: []string{"B"}, Orders: [][]string{{"II", "I", "III"}}}
	res, err := e.Attack(context.Background(), r, cipher)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Score, trueScore)

	same := 0
	for i := range plain {
		if plain[i] == res.Plaintext[i] {
			same++
		}
	}
	require.GreaterOrEqual(t, same, len(plain)*95/100, "%s", res.Key)
}

func TestAttackBelowMinScore(t *testing.T) {
	m := m3(t)
	_, cipher := intercept(t, m, trueSettings, 200)
	e := newEngine(t, trigramScorer(t, m), func(o *Options) {
		o.Method = MethodHillClimb
		o.TopK = 1
		o.MinScore = 0
	})
	r := Range{Machine: m, Reflectors: []string{"B"}, Orders: [][]string{{"I", "II", "III"}}, Positions: []string{"AAA"}}
	_, err := e.Attack(context.Background(), r, cipher)
	require.ErrorIs(t, err, ErrAttackExhausted)

	var ex *ExhaustedError
	require.True(t, errors.As(err, &ex))
	require.NotNil(t, ex.Best)
	require.True(t, strings.Contains(ex.Error(), "attack"))
}

func TestAttackCancelled(t *testing.T) {
	m := m3(t)
	_, cipher := intercept(t, m, trueSettings, 200)
	e := newEngine(t, trigramScorer(t, m), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Phase1(ctx, Range{Machine: m}, cipher)
	require.ErrorIs(t, err, context.Canceled)
}
