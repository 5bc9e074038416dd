package bitops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBits(t *testing.T) {
	ary := make([]byte, 4)
	SetBit(ary, 0)
	SetBit(ary, 9)
	require.True(t, GetBit(ary, 0))
	require.True(t, GetBit(ary, 9))
	require.False(t, GetBit(ary, 8))
	require.Equal(t, byte(0x02), ary[1])

	ClrBit(ary, 9)
	require.False(t, GetBit(ary, 9))
}

func TestSet(t *testing.T) {
	s := NewSet(29)
	require.Equal(t, 32, s.Cap())
	require.Zero(t, s.Len())

	s.Add(16)
	s.Add(4)
	s.Add(28)
	require.Equal(t, 3, s.Len())
	require.Equal(t, []int{4, 16, 28}, s.Members())
	require.True(t, s.Has(16))
	require.False(t, s.Has(5))
	require.False(t, s.Has(-1))
	require.False(t, s.Has(64))

	c := s.Clone()
	s.Remove(16)
	require.False(t, s.Has(16))
	require.True(t, c.Has(16), "clone must not share storage")

	s.Clear()
	require.Zero(t, s.Len())
	require.Nil(t, s.Members())
}
