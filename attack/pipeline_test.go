package attack

import (
	"context"
	"testing"

	"github.com/bgallie/mzenigma/machine"
	"github.com/stretchr/testify/require"
)

func count(n int) func(func(int) bool) {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

func TestPipeline(t *testing.T) {
	square := func(int) func(int) int { return func(i int) int { return i * i } }

	sum := 0
	err := pipeline(context.Background(), 4, count(100), square, func(v int) bool {
		sum += v
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 328350, sum)

	seen := 0
	err = pipeline(context.Background(), 4, count(1_000_000), square, func(int) bool {
		seen++
		return seen < 10
	})
	require.NoError(t, err, "stopping from collect is not an error")
	require.GreaterOrEqual(t, seen, 10)
	require.Less(t, seen, 1_000_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pipeline(ctx, 2, count(1_000_000), square, func(int) bool { return true })
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipelineWorkerState(t *testing.T) {
	var made []int
	stage := func(w int) func(int) int {
		made = append(made, w)
		return func(i int) int { return w }
	}
	err := pipeline(context.Background(), 3, count(30), stage, func(int) bool { return true })
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, made)
}

func TestTopK(t *testing.T) {
	top := &topK{k: 3}
	for i, score := range []float64{0.040, 0.066, 0.038, 0.052, 0.066, 0.061} {
		top.push(Candidate{Settings: machine.Settings{Positions: string(rune('A' + i))}, Score: score})
	}
	require.Len(t, top.items, 3)
	require.Equal(t, "B", top.items[0].Settings.Positions)
	require.Equal(t, "E", top.items[1].Settings.Positions, "ties go to the smaller settings")
	require.Equal(t, "F", top.items[2].Settings.Positions)
}

func TestBestSlot(t *testing.T) {
	m := m3(t)
	key := func(plugs string) *machine.DailyKey {
		k, err := m.NewKey(machine.Settings{Reflector: "B", Rotors: []string{"I", "II", "III"}, Plugs: plugs})
		require.NoError(t, err)
		return k
	}

	b := &bestSlot{}
	_, _, ok := b.get()
	require.False(t, ok)

	require.True(t, b.offer(-3, key("CD")))
	require.False(t, b.offer(-4, key("AB")))
	require.True(t, b.offer(-3, key("AB")), "equal score, smaller plugboard")
	require.False(t, b.offer(-3, key("EF")))

	score, k, ok := b.get()
	require.True(t, ok)
	require.Equal(t, -3.0, score)
	require.Equal(t, "AB", k.Settings().Plugs)

	require.NoError(t, k.SetPlugs("XY"))
	_, again, _ := b.get()
	require.Equal(t, "AB", again.Settings().Plugs, "get hands out copies")
}

func TestDeriveSeed(t *testing.T) {
	require.Equal(t, deriveSeed(7, 3), deriveSeed(7, 3))
	require.NotEqual(t, deriveSeed(7, 3), deriveSeed(7, 4))
	require.NotEqual(t, deriveSeed(7, 3), deriveSeed(8, 3))

	a, b := streamRNG(0, 1), streamRNG(defaultSeed, 1)
	for i := 0; i < 5; i++ {
		require.Equal(t, a.Int63(), b.Int63())
	}
}
