// Package bitops provides bit level helpers and a small bit set used for
// notch positions and plugboard bookkeeping.
package bitops

import "math/bits"

func SetBit(ary []byte, bit uint) []byte {
	ary[bit>>3] |= (1 << (bit & 7))
	return ary
}

func ClrBit(ary []byte, bit uint) []byte {
	ary[bit>>3] &= ^(1 << (bit & 7))
	return ary
}

func GetBit(ary []byte, bit uint) bool {
	return (ary[bit>>3]&(1<<(bit&7)) != 0)
}

// Set is a fixed capacity set of small non-negative integers.
type Set []byte

// NewSet returns an empty set able to hold 0..size-1.
func NewSet(size int) Set {
	return make(Set, (size+7)>>3)
}

// Cap returns the number of members the set can address.
func (s Set) Cap() int {
	return len(s) << 3
}

func (s Set) Add(i int) {
	SetBit(s, uint(i))
}

func (s Set) Remove(i int) {
	ClrBit(s, uint(i))
}

// Has reports membership. Values beyond the capacity are never members.
func (s Set) Has(i int) bool {
	if i < 0 || i >= s.Cap() {
		return false
	}
	return GetBit(s, uint(i))
}

// Len returns the number of members.
func (s Set) Len() int {
	n := 0
	for _, b := range s {
		n += bits.OnesCount8(b)
	}
	return n
}

// Members returns the members in ascending order.
func (s Set) Members() []int {
	var out []int
	for i := 0; i < s.Cap(); i++ {
		if GetBit(s, uint(i)) {
			out = append(out, i)
		}
	}
	return out
}

func (s Set) Clone() Set {
	c := make(Set, len(s))
	copy(c, s)
	return c
}

func (s Set) Clear() {
	for i := range s {
		s[i] = 0
	}
}
