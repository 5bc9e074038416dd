// Package registry is the read-only catalog of machine components. A
// Registry is built once, validated completely and then only handed out
// copies, so one instance can be shared by any number of machines and
// attack workers.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/cryptors/permutator"
	"github.com/bgallie/mzenigma/cryptors/rotor"
)

// ErrUnknownComponent is returned by the lookups for a name that is not
// registered.
var ErrUnknownComponent = errors.New("registry: unknown component")

// Plugboard capabilities of a model.
const (
	PlugboardNone  = "none"
	PlugboardFixed = "fixed"
	PlugboardFree  = "free"
)

// RotorSpec describes a rotor. An empty Alphabet means the standard
// alphabet. Stationary wheels have no notches and never step.
type RotorSpec struct {
	Name       string `mapstructure:"name"`
	Alphabet   string `mapstructure:"alphabet"`
	Wiring     string `mapstructure:"wiring"`
	Notches    string `mapstructure:"notches"`
	Stationary bool   `mapstructure:"stationary"`
}

// ReflectorSpec describes a reflector.
type ReflectorSpec struct {
	Name     string `mapstructure:"name"`
	Alphabet string `mapstructure:"alphabet"`
	Wiring   string `mapstructure:"wiring"`
}

// ModelSpec describes a machine model: which components fit into it and
// how its plugboard behaves. Slots counts the rotor positions including a
// stationary extra wheel; when ExtraWheels is set the leftmost slot takes
// one of them.
type ModelSpec struct {
	Name        string   `mapstructure:"name"`
	Alphabet    string   `mapstructure:"alphabet"`
	Rotors      []string `mapstructure:"rotors"`
	ExtraWheels []string `mapstructure:"extra_wheels"`
	Reflectors  []string `mapstructure:"reflectors"`
	Slots       int      `mapstructure:"slots"`
	Plugboard   string   `mapstructure:"plugboard"`
	MaxPairs    int      `mapstructure:"max_pairs"`
	FixedPairs  string   `mapstructure:"fixed_pairs"`
}

// Registry holds validated prototypes of every component.
type Registry struct {
	alphabets  map[string]*cryptors.Alphabet
	rotors     map[string]*rotor.Rotor
	reflectors map[string]*permutator.Reflector
	models     map[string]ModelSpec
}

// New validates all specs and returns the registry. Every rotor and
// reflector is constructed once, so a wiring error surfaces here and not
// when a key is set up.
func New(rotors []RotorSpec, reflectors []ReflectorSpec, models []ModelSpec) (*Registry, error) {
	reg := &Registry{
		alphabets:  make(map[string]*cryptors.Alphabet),
		rotors:     make(map[string]*rotor.Rotor),
		reflectors: make(map[string]*permutator.Reflector),
		models:     make(map[string]ModelSpec),
	}
	for _, rs := range rotors {
		if err := reg.addRotor(rs); err != nil {
			return nil, err
		}
	}
	for _, fs := range reflectors {
		if err := reg.addReflector(fs); err != nil {
			return nil, err
		}
	}
	for _, ms := range models {
		if err := reg.addModel(ms); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (reg *Registry) alphabet(letters string) (*cryptors.Alphabet, error) {
	if letters == "" {
		letters = cryptors.StandardLetters
	}
	if a, ok := reg.alphabets[letters]; ok {
		return a, nil
	}
	a, err := cryptors.NewAlphabet(letters)
	if err != nil {
		return nil, err
	}
	reg.alphabets[letters] = a
	return a, nil
}

func (reg *Registry) addRotor(rs RotorSpec) error {
	if rs.Name == "" {
		return &cryptors.WiringError{Component: "rotor", Reason: "missing name"}
	}
	if _, dup := reg.rotors[rs.Name]; dup {
		return &cryptors.WiringError{Component: rs.Name, Reason: "rotor registered twice"}
	}
	a, err := reg.alphabet(rs.Alphabet)
	if err != nil {
		return err
	}

	var r *rotor.Rotor
	if rs.Stationary {
		r, err = rotor.NewStationary(rs.Name, a, rs.Wiring)
	} else {
		r, err = rotor.New(rs.Name, a, rs.Wiring, rs.Notches)
	}
	if err != nil {
		return err
	}
	reg.rotors[rs.Name] = r
	return nil
}

func (reg *Registry) addReflector(fs ReflectorSpec) error {
	if fs.Name == "" {
		return &cryptors.WiringError{Component: "reflector", Reason: "missing name"}
	}
	if _, dup := reg.reflectors[fs.Name]; dup {
		return &cryptors.WiringError{Component: fs.Name, Reason: "reflector registered twice"}
	}
	a, err := reg.alphabet(fs.Alphabet)
	if err != nil {
		return err
	}
	f, err := permutator.NewReflector(fs.Name, a, fs.Wiring)
	if err != nil {
		return err
	}
	reg.reflectors[fs.Name] = f
	return nil
}

func (reg *Registry) addModel(ms ModelSpec) error {
	bad := func(format string, args ...any) error {
		return &cryptors.WiringError{Component: "model " + ms.Name, Reason: fmt.Sprintf(format, args...)}
	}

	if ms.Name == "" {
		return bad("missing name")
	}
	if _, dup := reg.models[ms.Name]; dup {
		return bad("registered twice")
	}
	a, err := reg.alphabet(ms.Alphabet)
	if err != nil {
		return err
	}

	stepping := ms.Slots
	if len(ms.ExtraWheels) > 0 {
		stepping--
	}
	if stepping < 1 || stepping > len(ms.Rotors) {
		return bad("%d slots cannot be filled from %d rotors", ms.Slots, len(ms.Rotors))
	}
	if len(ms.Reflectors) == 0 {
		return bad("no reflector")
	}

	for _, name := range ms.Rotors {
		r, ok := reg.rotors[name]
		if !ok {
			return bad("unknown rotor %q", name)
		}
		if r.Stationary() {
			return bad("rotor %q is stationary", name)
		}
		if !r.Alphabet().Equal(a) {
			return bad("rotor %q uses another alphabet", name)
		}
	}
	for _, name := range ms.ExtraWheels {
		r, ok := reg.rotors[name]
		if !ok {
			return bad("unknown extra wheel %q", name)
		}
		if !r.Stationary() {
			return bad("extra wheel %q is not stationary", name)
		}
		if !r.Alphabet().Equal(a) {
			return bad("extra wheel %q uses another alphabet", name)
		}
	}
	for _, name := range ms.Reflectors {
		f, ok := reg.reflectors[name]
		if !ok {
			return bad("unknown reflector %q", name)
		}
		if len(f.Wiring()) != a.Size() {
			return bad("reflector %q uses another alphabet", name)
		}
	}

	switch ms.Plugboard {
	case "", PlugboardNone:
		ms.Plugboard = PlugboardNone
		ms.MaxPairs = 0
	case PlugboardFixed:
		if _, err := permutator.ParsePlugboard(a, ms.FixedPairs, a.Size()/2); err != nil {
			return err
		}
	case PlugboardFree:
		if ms.MaxPairs <= 0 || ms.MaxPairs > a.Size()/2 {
			ms.MaxPairs = a.Size() / 2
		}
	default:
		return bad("unknown plugboard kind %q", ms.Plugboard)
	}

	ms.Rotors = append([]string(nil), ms.Rotors...)
	ms.ExtraWheels = append([]string(nil), ms.ExtraWheels...)
	ms.Reflectors = append([]string(nil), ms.Reflectors...)
	reg.models[ms.Name] = ms
	return nil
}

// Rotor returns a fresh copy of the named rotor at ring and position zero.
func (reg *Registry) Rotor(name string) (*rotor.Rotor, error) {
	r, ok := reg.rotors[name]
	if !ok {
		return nil, fmt.Errorf("%w: rotor %q", ErrUnknownComponent, name)
	}
	return r.Clone(), nil
}

// Reflector returns the named reflector. Reflectors are immutable and
// shared.
func (reg *Registry) Reflector(name string) (*permutator.Reflector, error) {
	f, ok := reg.reflectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: reflector %q", ErrUnknownComponent, name)
	}
	return f, nil
}

// Model returns a copy of the named model description.
func (reg *Registry) Model(name string) (ModelSpec, error) {
	ms, ok := reg.models[name]
	if !ok {
		return ModelSpec{}, fmt.Errorf("%w: model %q", ErrUnknownComponent, name)
	}
	ms.Rotors = append([]string(nil), ms.Rotors...)
	ms.ExtraWheels = append([]string(nil), ms.ExtraWheels...)
	ms.Reflectors = append([]string(nil), ms.Reflectors...)
	return ms, nil
}

// Alphabet returns the shared alphabet instance for letters.
func (reg *Registry) Alphabet(letters string) (*cryptors.Alphabet, error) {
	if letters == "" {
		letters = cryptors.StandardLetters
	}
	if a, ok := reg.alphabets[letters]; ok {
		return a, nil
	}
	return cryptors.NewAlphabet(letters)
}

// Models returns the sorted model names.
func (reg *Registry) Models() []string {
	return sortedKeys(reg.models)
}

// Rotors returns the sorted rotor names, stationary wheels included.
func (reg *Registry) Rotors() []string {
	return sortedKeys(reg.rotors)
}

// Reflectors returns the sorted reflector names.
func (reg *Registry) Reflectors() []string {
	return sortedKeys(reg.reflectors)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
