package cryptors

import (
	"fmt"
	"sort"
)

// ParseWiring converts a wiring string, the letters the alphabet is sent
// to, into a permutation table. The result must be a bijection.
func ParseWiring(a *Alphabet, component, wiring string) ([]int, error) {
	table, err := a.Indices(wiring)
	if err != nil {
		return nil, &WiringError{Component: component, Reason: err.Error()}
	}
	if len(table) != a.Size() {
		return nil, &WiringError{
			Component: component,
			Reason:    fmt.Sprintf("%d symbols for an alphabet of %d", len(table), a.Size()),
		}
	}

	seen := make([]bool, a.Size())
	for _, v := range table {
		if seen[v] {
			return nil, &WiringError{
				Component: component,
				Reason:    fmt.Sprintf("%q is used twice", a.Symbol(v)),
			}
		}
		seen[v] = true
	}

	return table, nil
}

// Invert returns the inverse of the permutation p.
func Invert(p []int) []int {
	inv := make([]int, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}

// IsInvolution reports whether p applied twice is the identity.
func IsInvolution(p []int) bool {
	for i, v := range p {
		if p[v] != i {
			return false
		}
	}
	return true
}

// FixedPoints returns the symbols p maps to themselves.
func FixedPoints(p []int) []int {
	var fp []int
	for i, v := range p {
		if i == v {
			fp = append(fp, i)
		}
	}
	return fp
}

// Compose returns the permutation "first p, then q".
func Compose(p, q []int) []int {
	r := make([]int, len(p))
	for i, v := range p {
		r[i] = q[v]
	}
	return r
}

// CycleLengths returns the lengths of the cycles of p in descending order.
func CycleLengths(p []int) []int {
	seen := make([]bool, len(p))
	var lengths []int
	for i := range p {
		if seen[i] {
			continue
		}
		n := 0
		for j := i; !seen[j]; j = p[j] {
			seen[j] = true
			n++
		}
		lengths = append(lengths, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	return lengths
}
