package permutator

import (
	"math/rand"
	"testing"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/stretchr/testify/require"
)

var std = cryptors.MustAlphabet(cryptors.StandardLetters)

func TestReflector(t *testing.T) {
	b, err := NewReflector("B", std, "YRUHQSLDPXNGOKMIEBFZCWVJAT")
	require.NoError(t, err)
	for c := 0; c < std.Size(); c++ {
		require.NotEqual(t, c, b.Forward(c))
		require.Equal(t, c, b.Backward(b.Forward(c)))
	}
	require.Contains(t, b.String(), "YRUH")
}

func TestReflectorInvalid(t *testing.T) {
	// Rotor I is a bijection but not an involution.
	_, err := NewReflector("I", std, "EKMFLGDQVZNTOWYHXUSPAIBRCJ")
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	// Involution with fixed points A and B.
	_, err = NewReflector("fixed", std, "ABDCFEHGJILKNMPORQTSVUXWZY")
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)
	require.Contains(t, err.Error(), "to itself")
}

func TestPlugboard(t *testing.T) {
	p, err := ParsePlugboard(std, "AB CZ", 10)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	require.Equal(t, 1, p.Forward(0))
	require.Equal(t, 0, p.Backward(1))
	require.Equal(t, 4, p.Forward(4))
	require.Equal(t, [][2]int{{0, 1}, {2, 25}}, p.Pairs())
	require.Equal(t, "AB CZ", p.Format(std))

	p.Disconnect(25)
	require.False(t, p.Connected(2))
	require.Equal(t, "AB", p.Format(std))
}

func TestPlugboardInvalid(t *testing.T) {
	_, err := ParsePlugboard(std, "AB BC", 10)
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = ParsePlugboard(std, "AA", 10)
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = ParsePlugboard(std, "ABC", 10)
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = ParsePlugboard(std, "AB CD", 1)
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = ParsePlugboard(std, "A1", 10)
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)
}

func TestExchange(t *testing.T) {
	p, err := ParsePlugboard(std, "AB CD", 13)
	require.NoError(t, err)
	require.NoError(t, p.Exchange(0, 2))
	require.Equal(t, "AD BC", p.Format(std))

	require.Error(t, p.Exchange(0, 5))
}

func TestLessAndEqual(t *testing.T) {
	a, _ := ParsePlugboard(std, "AB CD", 13)
	b, _ := ParsePlugboard(std, "AC BD", 13)
	c, _ := ParsePlugboard(std, "AB", 13)
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.True(t, c.Less(a))
	require.False(t, a.Less(a.Clone()))
	require.True(t, a.Equal(a.Clone()))

	d := NewPlugboard(26, 13)
	d.CopyFrom(b)
	require.True(t, d.Equal(b))
}

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := Random(26, 10, 10, rng)
	require.Equal(t, 10, p.Len())
	for c := 0; c < 26; c++ {
		require.Equal(t, c, p.Backward(p.Forward(c)))
	}

	q := Random(26, 20, 13, rng)
	require.Equal(t, 13, q.Len())
}
