// Package cryptors holds the pieces shared by every stage of the machine: the
// alphabet the stages permute, the Stage contract and wiring helpers.
package cryptors

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// StandardLetters is the alphabet of every machine except the Swedish ones.
	StandardLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// SGSLetters is the Swedish alphabet of the SGS machines: no W, but
	// ÅÄÖ at the end.
	SGSLetters = "ABCDEFGHIJKLMNOPQRSTUVXYZÅÄÖ"
)

// Stage is a single reversible substitution of the signal path. Forward and
// Backward are total over the alphabet and inverse to each other.
type Stage interface {
	Forward(c int) int
	Backward(c int) int
}

// Alphabet is an ordered set of distinct symbols. Symbols are addressed by
// their index in 0..Size()-1 everywhere below the text interface.
type Alphabet struct {
	symbols []rune
	index   map[rune]int
}

// NewAlphabet creates an alphabet from the runes of symbols.
func NewAlphabet(symbols string) (*Alphabet, error) {
	if !utf8.ValidString(symbols) || symbols == "" {
		return nil, &WiringError{Component: "alphabet", Reason: "empty or not valid UTF-8"}
	}

	a := &Alphabet{index: make(map[rune]int)}
	for _, r := range symbols {
		if _, dup := a.index[r]; dup {
			return nil, &WiringError{Component: "alphabet", Reason: fmt.Sprintf("duplicate symbol %q", r)}
		}
		a.index[r] = len(a.symbols)
		a.symbols = append(a.symbols, r)
	}

	if len(a.symbols) < 2 {
		return nil, &WiringError{Component: "alphabet", Reason: "at least two symbols required"}
	}

	return a, nil
}

// MustAlphabet is like NewAlphabet but panics on error. It is meant for
// the package level constants above.
func MustAlphabet(symbols string) *Alphabet {
	a, err := NewAlphabet(symbols)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Alphabet) Size() int {
	return len(a.symbols)
}

// Index returns the position of r in the alphabet.
func (a *Alphabet) Index(r rune) (int, bool) {
	i, ok := a.index[r]
	return i, ok
}

func (a *Alphabet) Symbol(i int) rune {
	return a.symbols[i]
}

// Mod reduces i into 0..Size()-1, negative values included.
func (a *Alphabet) Mod(i int) int {
	return Mod(i, len(a.symbols))
}

// Indices converts text into symbol indices. The first rune outside the
// alphabet stops the conversion with a *CharacterError.
func (a *Alphabet) Indices(text string) ([]int, error) {
	out := make([]int, 0, len(text))
	pos := 0
	for _, r := range text {
		i, ok := a.index[r]
		if !ok {
			return nil, &CharacterError{Char: r, Pos: pos}
		}
		out = append(out, i)
		pos++
	}
	return out, nil
}

// Text converts symbol indices back into a string.
func (a *Alphabet) Text(idx []int) string {
	var sb strings.Builder
	sb.Grow(len(idx))
	for _, i := range idx {
		sb.WriteRune(a.symbols[i])
	}
	return sb.String()
}

// Normalize upper-cases text, replaces white space with blank (when blank
// is part of the alphabet) and drops every other rune the alphabet lacks.
func (a *Alphabet) Normalize(text string, blank rune) string {
	_, keepBlank := a.index[blank]

	var sb strings.Builder
	for _, r := range text {
		r = unicode.ToUpper(r)
		if _, ok := a.index[r]; ok {
			sb.WriteRune(r)
		} else if unicode.IsSpace(r) && keepBlank {
			sb.WriteRune(blank)
		}
	}
	return sb.String()
}

// Equal reports whether both alphabets hold the same symbols in the same order.
func (a *Alphabet) Equal(b *Alphabet) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.symbols) != len(b.symbols) {
		return false
	}
	for i, r := range a.symbols {
		if b.symbols[i] != r {
			return false
		}
	}
	return true
}

func (a *Alphabet) String() string {
	return string(a.symbols)
}

// Mod returns i modulo n in the range 0..n-1.
func Mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// FormatTable renders a mapping as the letters it sends each symbol to.
func FormatTable(a *Alphabet, table []int) string {
	var output bytes.Buffer
	for _, v := range table {
		output.WriteRune(a.Symbol(v))
	}
	return output.String()
}
