// Package permutator implements the two fixed substitutions of the signal
// path: the reflector and the plugboard.
package permutator

import (
	"bytes"
	"fmt"

	"github.com/bgallie/mzenigma/cryptors"
)

// Reflector (Umkehrwalze) is an involution without fixed points.
type Reflector struct {
	name     string
	alphabet *cryptors.Alphabet
	wiring   []int
}

// NewReflector validates wiring and creates the reflector.
func NewReflector(name string, alphabet *cryptors.Alphabet, wiring string) (*Reflector, error) {
	table, err := cryptors.ParseWiring(alphabet, name, wiring)
	if err != nil {
		return nil, err
	}
	if !cryptors.IsInvolution(table) {
		return nil, &cryptors.WiringError{Component: name, Reason: "reflector is not an involution"}
	}
	if fp := cryptors.FixedPoints(table); len(fp) > 0 {
		return nil, &cryptors.WiringError{
			Component: name,
			Reason:    fmt.Sprintf("reflector maps %q to itself", alphabet.Symbol(fp[0])),
		}
	}

	return &Reflector{name: name, alphabet: alphabet, wiring: table}, nil
}

func (r *Reflector) Name() string {
	return r.name
}

func (r *Reflector) Forward(c int) int {
	return r.wiring[c]
}

func (r *Reflector) Backward(c int) int {
	return r.wiring[c]
}

// Wiring returns a copy of the reflector table.
func (r *Reflector) Wiring() []int {
	return append([]int(nil), r.wiring...)
}

func (r *Reflector) String() string {
	var output bytes.Buffer
	output.WriteString(fmt.Sprintf("reflector %s: wiring %s", r.name, cryptors.FormatTable(r.alphabet, r.wiring)))
	return output.String()
}
