// Package machine assembles registry components into working Enigma
// machines and daily keys.
package machine

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/cryptors/permutator"
	"github.com/bgallie/mzenigma/cryptors/rotor"
	"github.com/bgallie/mzenigma/registry"
)

// PlugboardMode tells how a model's plugboard may be configured.
type PlugboardMode int

const (
	PlugboardNone PlugboardMode = iota
	PlugboardFixed
	PlugboardFree
)

func (m PlugboardMode) String() string {
	switch m {
	case PlugboardFixed:
		return registry.PlugboardFixed
	case PlugboardFree:
		return registry.PlugboardFree
	default:
		return registry.PlugboardNone
	}
}

// Machine is a model: the alphabet, the components that fit and the
// plugboard rules. It is immutable and safe to share.
type Machine struct {
	name        string
	reg         *registry.Registry
	alphabet    *cryptors.Alphabet
	rotors      []string
	extraWheels []string
	reflectors  []string
	slots       int
	plugboard   PlugboardMode
	maxPairs    int
	fixedPairs  string
}

// New looks model up in reg and returns the machine.
func New(reg *registry.Registry, model string) (*Machine, error) {
	spec, err := reg.Model(model)
	if err != nil {
		return nil, err
	}
	a, err := reg.Alphabet(spec.Alphabet)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		name:        spec.Name,
		reg:         reg,
		alphabet:    a,
		rotors:      spec.Rotors,
		extraWheels: spec.ExtraWheels,
		reflectors:  spec.Reflectors,
		slots:       spec.Slots,
		maxPairs:    spec.MaxPairs,
		fixedPairs:  spec.FixedPairs,
	}
	switch spec.Plugboard {
	case registry.PlugboardFixed:
		m.plugboard = PlugboardFixed
	case registry.PlugboardFree:
		m.plugboard = PlugboardFree
	}
	return m, nil
}

func (m *Machine) Name() string                  { return m.name }
func (m *Machine) Alphabet() *cryptors.Alphabet  { return m.alphabet }
func (m *Machine) Registry() *registry.Registry  { return m.reg }
func (m *Machine) Slots() int                    { return m.slots }
func (m *Machine) Plugboard() PlugboardMode      { return m.plugboard }
func (m *Machine) MaxPairs() int                 { return m.maxPairs }
func (m *Machine) Rotors() []string              { return append([]string(nil), m.rotors...) }
func (m *Machine) ExtraWheels() []string         { return append([]string(nil), m.extraWheels...) }
func (m *Machine) Reflectors() []string          { return append([]string(nil), m.reflectors...) }
func (m *Machine) HasReflector(name string) bool { return contains(m.reflectors, name) }

// RotorOrders enumerates every admissible rotor order, left to right.
func (m *Machine) RotorOrders() [][]string {
	stepping := m.slots
	if len(m.extraWheels) > 0 {
		stepping--
	}

	var orders [][]string
	var rec func(prefix []string, used map[string]bool)
	rec = func(prefix []string, used map[string]bool) {
		if len(prefix) == stepping {
			orders = append(orders, append([]string(nil), prefix...))
			return
		}
		for _, r := range m.rotors {
			if used[r] {
				continue
			}
			used[r] = true
			rec(append(prefix, r), used)
			used[r] = false
		}
	}
	rec(nil, make(map[string]bool))

	if len(m.extraWheels) == 0 {
		return orders
	}
	var full [][]string
	for _, w := range m.extraWheels {
		for _, o := range orders {
			full = append(full, append([]string{w}, o...))
		}
	}
	return full
}

// NewKey validates s against the model and builds the daily key.
func (m *Machine) NewKey(s Settings) (*DailyKey, error) {
	k := &DailyKey{machine: m}
	if err := k.apply(s); err != nil {
		return nil, err
	}
	return k, nil
}

// RandomKey draws a reflector, rotor order, rings, ground setting and, on
// machines with a free plugboard, the given number of cables.
func (m *Machine) RandomKey(rng *rand.Rand, pairs int) (*DailyKey, error) {
	orders := m.RotorOrders()
	s := Settings{
		Reflector: m.reflectors[rng.Intn(len(m.reflectors))],
		Rotors:    orders[rng.Intn(len(orders))],
	}
	var rings, pos strings.Builder
	for range s.Rotors {
		rings.WriteRune(m.alphabet.Symbol(rng.Intn(m.alphabet.Size())))
		pos.WriteRune(m.alphabet.Symbol(rng.Intn(m.alphabet.Size())))
	}
	s.Rings, s.Positions = rings.String(), pos.String()
	if m.plugboard == PlugboardFree && pairs > 0 {
		s.Plugs = permutator.Random(m.alphabet.Size(), pairs, m.maxPairs, rng).Format(m.alphabet)
	}
	return m.NewKey(s)
}

// buildRotors fetches fresh rotors for order after checking the model
// admits them.
func (m *Machine) buildRotors(order []string) ([]*rotor.Rotor, error) {
	if len(order) != m.slots {
		return nil, &cryptors.KeyError{Field: "rotors", Reason: fmt.Sprintf("%d rotors for %d slots", len(order), m.slots)}
	}

	rotors := make([]*rotor.Rotor, len(order))
	seen := make(map[string]bool, len(order))
	for i, name := range order {
		allowed := m.rotors
		if len(m.extraWheels) > 0 && i == 0 {
			allowed = m.extraWheels
		}
		if !contains(allowed, name) {
			return nil, &cryptors.KeyError{Field: "rotors", Reason: fmt.Sprintf("%q not admitted in slot %d of model %s", name, i+1, m.name)}
		}
		if seen[name] {
			return nil, &cryptors.KeyError{Field: "rotors", Reason: fmt.Sprintf("%q used twice", name)}
		}
		seen[name] = true

		r, err := m.reg.Rotor(name)
		if err != nil {
			return nil, &cryptors.KeyError{Field: "rotors", Reason: err.Error(), Err: err}
		}
		rotors[i] = r
	}
	return rotors, nil
}

// buildPlugboard returns the plugboard for pairs under the model's rules.
func (m *Machine) buildPlugboard(pairs string) (*permutator.Plugboard, error) {
	switch m.plugboard {
	case PlugboardFree:
		pb, err := permutator.ParsePlugboard(m.alphabet, pairs, m.maxPairs)
		if err != nil {
			return nil, &cryptors.KeyError{Field: "plugs", Reason: err.Error(), Err: err}
		}
		return pb, nil
	case PlugboardFixed:
		fixed, err := permutator.ParsePlugboard(m.alphabet, m.fixedPairs, m.alphabet.Size()/2)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(pairs) != "" {
			given, err := permutator.ParsePlugboard(m.alphabet, pairs, m.alphabet.Size()/2)
			if err != nil || !given.Equal(fixed) {
				return nil, &cryptors.KeyError{Field: "plugs", Reason: "model " + m.name + " has a fixed plugboard"}
			}
		}
		return fixed, nil
	default:
		if strings.TrimSpace(pairs) != "" {
			return nil, &cryptors.KeyError{Field: "plugs", Reason: "model " + m.name + " has no plugboard"}
		}
		return permutator.NewPlugboard(m.alphabet.Size(), 0), nil
	}
}

// letters converts a ring or position string of one letter per slot.
func (m *Machine) letters(field, s string) ([]int, error) {
	if s == "" {
		return make([]int, m.slots), nil
	}
	idx, err := m.alphabet.Indices(s)
	if err != nil {
		return nil, &cryptors.KeyError{Field: field, Reason: err.Error(), Err: err}
	}
	if len(idx) != m.slots {
		return nil, &cryptors.KeyError{Field: field, Reason: fmt.Sprintf("%d letters for %d slots", len(idx), m.slots)}
	}
	return idx, nil
}

func contains(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}
