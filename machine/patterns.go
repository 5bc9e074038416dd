package machine

import (
	"iter"
	"sort"
)

// Doublet pairs the letters found at Offset and Offset+Distance. Source
// is the indicator number for intercepted indicators, or -1 for doublets
// derived from a key, in which case Plain holds the enciphered letter.
type Doublet struct {
	Source   int
	Offset   int
	Distance int
	Plain    rune
	First    rune
	Second   rune
}

// Pattern marks a repeated letter: Symbol occurs at Offset and again
// Distance letters later.
type Pattern struct {
	Offset   int
	Distance int
	Symbol   rune
}

// FindDoublets yields, for every symbol of the alphabet, the letters it
// enciphers to at key presses first and second. This is the doublet
// table an indicator typed at the ground setting has to match. The
// sequence is computed when iterated and can be iterated again.
func (k *DailyKey) FindDoublets(first, second int) iter.Seq[Doublet] {
	return func(yield func(Doublet) bool) {
		a := k.machine.alphabet
		m1 := k.EncodeMatrix(first)
		m2 := k.EncodeMatrix(second)
		for c := 0; c < a.Size(); c++ {
			d := Doublet{
				Source:   -1,
				Offset:   first,
				Distance: second - first,
				Plain:    a.Symbol(c),
				First:    a.Symbol(m1[c]),
				Second:   a.Symbol(m2[c]),
			}
			if !yield(d) {
				return
			}
		}
	}
}

// IndicatorDoublets scans doubled indicators: for indicator s and i < k it
// yields the letters at i and i+k. Indicators shorter than 2k are skipped.
func IndicatorDoublets(indicators []string, k int) iter.Seq[Doublet] {
	return func(yield func(Doublet) bool) {
		for n, ind := range indicators {
			r := []rune(ind)
			if len(r) < 2*k {
				continue
			}
			for i := 0; i < k; i++ {
				d := Doublet{Source: n, Offset: i, Distance: k, First: r[i], Second: r[i+k]}
				if !yield(d) {
					return
				}
			}
		}
	}
}

// FindPatterns yields every position of text whose letter repeats
// distance letters later, scanning left to right. In doubled indicators
// with distance equal to the key length these are Zygalski's females.
func FindPatterns(text string, distance int) iter.Seq[Pattern] {
	return func(yield func(Pattern) bool) {
		r := []rune(text)
		if distance <= 0 {
			return
		}
		for i := 0; i+distance < len(r); i++ {
			if r[i] == r[i+distance] {
				if !yield(Pattern{Offset: i, Distance: distance, Symbol: r[i]}) {
					return
				}
			}
		}
	}
}

// FrequencyDict counts every rune of text.
func (k *DailyKey) FrequencyDict(text string) map[rune]int {
	freq := make(map[rune]int)
	for _, r := range text {
		freq[r]++
	}
	return freq
}

// Occurrence lists where a letter occurs in a text.
type Occurrence struct {
	Symbol    rune
	Positions []int
}

// Frequencies groups the letters of text by how often they occur. With
// decode set the text is deciphered with the key first.
func (k *DailyKey) Frequencies(text string, decode bool) (map[int][]Occurrence, error) {
	if decode {
		var err error
		if text, err = k.Decode(text); err != nil {
			return nil, err
		}
	}

	positions := make(map[rune][]int)
	n := 0
	for _, r := range text {
		positions[r] = append(positions[r], n)
		n++
	}

	groups := make(map[int][]Occurrence)
	for r, pos := range positions {
		groups[len(pos)] = append(groups[len(pos)], Occurrence{Symbol: r, Positions: pos})
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].Symbol < g[j].Symbol })
	}
	return groups, nil
}
