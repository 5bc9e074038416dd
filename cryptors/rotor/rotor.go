// rotor
package rotor

import (
	"bytes"
	"fmt"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/cryptors/bitops"
)

// Rotor is a stepping wheel. offset is the letter shown in the window, ring
// the ring setting; the signal is shifted by offset-ring around the wiring.
type Rotor struct {
	name       string
	alphabet   *cryptors.Alphabet
	size       int
	wiring     []int // shared between clones, never written
	inverse    []int
	notches    bitops.Set
	stationary bool
	ring       int
	offset     int
}

// New creates a stepping rotor. notches lists the window letters at which
// the rotor carries its left neighbour.
func New(name string, alphabet *cryptors.Alphabet, wiring, notches string) (*Rotor, error) {
	r, err := build(name, alphabet, wiring)
	if err != nil {
		return nil, err
	}

	idx, err := alphabet.Indices(notches)
	if err != nil {
		return nil, &cryptors.WiringError{Component: name, Reason: "notches: " + err.Error()}
	}
	for _, n := range idx {
		r.notches.Add(n)
	}

	return r, nil
}

// NewStationary creates a wheel that takes a ring and a position but never
// steps, like the Beta and Gamma wheels of the naval machine.
func NewStationary(name string, alphabet *cryptors.Alphabet, wiring string) (*Rotor, error) {
	r, err := build(name, alphabet, wiring)
	if err != nil {
		return nil, err
	}
	r.stationary = true
	return r, nil
}

func build(name string, alphabet *cryptors.Alphabet, wiring string) (*Rotor, error) {
	table, err := cryptors.ParseWiring(alphabet, name, wiring)
	if err != nil {
		return nil, err
	}

	return &Rotor{
		name:     name,
		alphabet: alphabet,
		size:     alphabet.Size(),
		wiring:   table,
		inverse:  cryptors.Invert(table),
		notches:  bitops.NewSet(alphabet.Size()),
	}, nil
}

func (r *Rotor) Name() string {
	return r.name
}

func (r *Rotor) Size() int {
	return r.size
}

func (r *Rotor) Alphabet() *cryptors.Alphabet {
	return r.alphabet
}

func (r *Rotor) Stationary() bool {
	return r.stationary
}

// Forward maps a contact on the right side to a contact on the left side.
func (r *Rotor) Forward(c int) int {
	shift := r.offset - r.ring
	return cryptors.Mod(r.wiring[cryptors.Mod(c+shift, r.size)]-shift, r.size)
}

// Backward is the inverse of Forward.
func (r *Rotor) Backward(c int) int {
	shift := r.offset - r.ring
	return cryptors.Mod(r.inverse[cryptors.Mod(c+shift, r.size)]-shift, r.size)
}

// AtNotch reports whether the rotor's current position engages the pawl
// of its left neighbour.
func (r *Rotor) AtNotch() bool {
	return r.notches.Has(r.offset)
}

// Step advances the rotor by one position and reports whether it was at a
// notch before moving. A stationary wheel never moves and returns false.
func (r *Rotor) Step() bool {
	if r.stationary {
		return false
	}
	carry := r.AtNotch()
	r.offset = (r.offset + 1) % r.size
	return carry
}

func (r *Rotor) Offset() int {
	return r.offset
}

// SetOffset moves the rotor to the window position o.
func (r *Rotor) SetOffset(o int) error {
	if o < 0 || o >= r.size {
		return &cryptors.KeyError{Field: "position", Reason: fmt.Sprintf("%d out of range for rotor %s", o, r.name)}
	}
	r.offset = o
	return nil
}

func (r *Rotor) Ring() int {
	return r.ring
}

// SetRing changes the ring setting (Ringstellung).
func (r *Rotor) SetRing(g int) error {
	if g < 0 || g >= r.size {
		return &cryptors.KeyError{Field: "ring", Reason: fmt.Sprintf("%d out of range for rotor %s", g, r.name)}
	}
	r.ring = g
	return nil
}

// Notches returns the notch positions in ascending order.
func (r *Rotor) Notches() []int {
	return r.notches.Members()
}

// Clone returns an independent rotor with the same wiring, ring and offset.
func (r *Rotor) Clone() *Rotor {
	c := *r
	c.notches = r.notches.Clone()
	return &c
}

func (r *Rotor) String() string {
	var output bytes.Buffer
	output.WriteString(fmt.Sprintf("rotor %s: wiring %s", r.name, cryptors.FormatTable(r.alphabet, r.wiring)))
	if r.stationary {
		output.WriteString(", stationary")
	} else {
		output.WriteString(", notches ")
		for _, n := range r.Notches() {
			output.WriteRune(r.alphabet.Symbol(n))
		}
	}
	output.WriteString(fmt.Sprintf(", ring %c, position %c",
		r.alphabet.Symbol(r.ring), r.alphabet.Symbol(r.offset)))

	return output.String()
}
