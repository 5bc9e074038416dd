package machine

import (
	"fmt"
	"strings"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/cryptors/permutator"
)

// Settings is the written form of a daily key. Rotors are listed left to
// right; on four slot machines the extra wheel comes first. Rings and
// Positions hold one letter per rotor, empty meaning all first letter.
// Plugs are letter pairs separated by blanks.
type Settings struct {
	Reflector string
	Rotors    []string
	Rings     string
	Positions string
	Plugs     string
}

// DailyKey (Tagesschlüssel) is a fully set up machine. Every Encode or
// Decode starts from the ground setting. A DailyKey must not be used from
// two goroutines at once; Clone it instead.
type DailyKey struct {
	machine  *Machine
	settings Settings
	chain    *Chain
	ground   []int
	rings    []int
}

// apply builds a new chain for s and only installs it when every part is
// valid, so a failed reconfiguration leaves the key untouched.
func (k *DailyKey) apply(s Settings) error {
	m := k.machine
	if !m.HasReflector(s.Reflector) {
		return &cryptors.KeyError{Field: "reflector", Reason: fmt.Sprintf("%q not admitted by model %s", s.Reflector, m.name)}
	}
	reflector, err := m.reg.Reflector(s.Reflector)
	if err != nil {
		return &cryptors.KeyError{Field: "reflector", Reason: err.Error(), Err: err}
	}
	rotors, err := m.buildRotors(s.Rotors)
	if err != nil {
		return err
	}
	rings, err := m.letters("rings", s.Rings)
	if err != nil {
		return err
	}
	ground, err := m.letters("positions", s.Positions)
	if err != nil {
		return err
	}
	pb, err := m.buildPlugboard(s.Plugs)
	if err != nil {
		return err
	}

	for i, r := range rotors {
		if err := r.SetRing(rings[i]); err != nil {
			return err
		}
		if err := r.SetOffset(ground[i]); err != nil {
			return err
		}
	}

	s.Rotors = append([]string(nil), s.Rotors...)
	s.Rings = m.alphabet.Text(rings)
	s.Positions = m.alphabet.Text(ground)
	s.Plugs = pb.Format(m.alphabet)

	k.settings = s
	k.chain = NewChain(pb, rotors, reflector)
	k.ground = ground
	k.rings = rings
	return nil
}

func (k *DailyKey) Machine() *Machine {
	return k.machine
}

// Settings returns the current key in written form.
func (k *DailyKey) Settings() Settings {
	s := k.settings
	s.Rotors = append([]string(nil), s.Rotors...)
	s.Rings = k.machine.alphabet.Text(k.rings)
	s.Positions = k.machine.alphabet.Text(k.ground)
	s.Plugs = k.chain.plugboard.Format(k.machine.alphabet)
	return s
}

// Reset moves the rotors back to the ground setting.
func (k *DailyKey) Reset() {
	k.restore(k.ground)
}

// restore turns the rotors to offsets that were validated when they were
// set, so a failure means the key is corrupt.
func (k *DailyKey) restore(offsets []int) {
	if err := k.chain.SetOffsets(offsets); err != nil {
		panic(fmt.Sprintf("machine: restoring rotor offsets of a %s key: %v", k.machine.name, err))
	}
}

// Encode enciphers text from the ground setting. Every rune must belong
// to the alphabet; see Alphabet.Normalize for cleaning up free text.
func (k *DailyKey) Encode(text string) (string, error) {
	idx, err := k.machine.alphabet.Indices(text)
	if err != nil {
		return "", err
	}
	k.EncodeIndices(idx, idx)
	return k.machine.alphabet.Text(idx), nil
}

// Decode deciphers text from the ground setting. The machine is self
// reciprocal, so this is the same operation as Encode.
func (k *DailyKey) Decode(text string) (string, error) {
	return k.Encode(text)
}

// EncodeIndices enciphers src into dst from the ground setting. dst may
// be src and must be at least as long.
func (k *DailyKey) EncodeIndices(src, dst []int) {
	k.Reset()
	for i, c := range src {
		dst[i] = k.chain.Press(c)
	}
}

// EncodeMatrix returns the substitution applied at key press position
// (0 is the first letter of a message), plugboard included. The rotors
// are left where they were.
func (k *DailyKey) EncodeMatrix(position int) []int {
	saved := k.chain.Offsets()
	defer k.restore(saved)

	k.Reset()
	for p := 0; p <= position; p++ {
		k.chain.Step()
	}
	table := make([]int, k.machine.alphabet.Size())
	for c := range table {
		table[c] = k.chain.Resolve(c)
	}
	return table
}

// Trace records the substitutions of the rotors and reflector, without the
// plugboard, for the first length key presses.
func (k *DailyKey) Trace(length int) *Trace {
	saved := k.chain.Offsets()
	defer k.restore(saved)

	size := k.machine.alphabet.Size()
	t := &Trace{length: length, size: size, table: make([]uint8, length*size)}
	k.Reset()
	for p := 0; p < length; p++ {
		k.chain.Step()
		row := t.table[p*size : (p+1)*size]
		for c := range row {
			row[c] = uint8(k.chain.resolveCore(c))
		}
	}
	return t
}

// Path reports the letter after every stage for symbol at the first key
// press: plugboard, rotors right to left, reflector, rotors left to right,
// plugboard.
func (k *DailyKey) Path(symbol rune) (string, error) {
	c, ok := k.machine.alphabet.Index(symbol)
	if !ok {
		return "", &cryptors.CharacterError{Char: symbol}
	}
	saved := k.chain.Offsets()
	defer k.restore(saved)

	k.Reset()
	k.chain.Step()
	return k.machine.alphabet.Text(k.chain.Path(c)), nil
}

// ChangeWalzen replaces rotor order, rings and ground setting at once. On
// error the key keeps its previous configuration.
func (k *DailyKey) ChangeWalzen(order []string, rings, positions string) error {
	s := k.Settings()
	s.Rotors, s.Rings, s.Positions = order, rings, positions
	return k.apply(s)
}

// SetReflector swaps the reflector.
func (k *DailyKey) SetReflector(name string) error {
	s := k.Settings()
	s.Reflector = name
	return k.apply(s)
}

// SetPositions changes the ground setting.
func (k *DailyKey) SetPositions(positions string) error {
	ground, err := k.machine.letters("positions", positions)
	if err != nil {
		return err
	}
	return k.SetGround(ground)
}

// SetGround changes the ground setting given as symbol indices.
func (k *DailyKey) SetGround(ground []int) error {
	if len(ground) != len(k.ground) {
		return &cryptors.KeyError{Field: "positions", Reason: fmt.Sprintf("%d positions for %d slots", len(ground), len(k.ground))}
	}
	for i, r := range k.chain.rotors {
		if err := r.SetOffset(ground[i]); err != nil {
			return err
		}
	}
	copy(k.ground, ground)
	return nil
}

// Ground returns the ground setting as symbol indices.
func (k *DailyKey) Ground() []int {
	return append([]int(nil), k.ground...)
}

// SetRings changes the ring settings given as symbol indices.
func (k *DailyKey) SetRings(rings []int) error {
	if len(rings) != len(k.rings) {
		return &cryptors.KeyError{Field: "rings", Reason: fmt.Sprintf("%d rings for %d slots", len(rings), len(k.rings))}
	}
	for i, r := range k.chain.rotors {
		if err := r.SetRing(rings[i]); err != nil {
			return err
		}
	}
	copy(k.rings, rings)
	return nil
}

// Rings returns the ring settings as symbol indices.
func (k *DailyKey) Rings() []int {
	return append([]int(nil), k.rings...)
}

// SetPlugs replaces the plugboard cables.
func (k *DailyKey) SetPlugs(pairs string) error {
	pb, err := k.machine.buildPlugboard(pairs)
	if err != nil {
		return err
	}
	k.chain.plugboard.CopyFrom(pb)
	return nil
}

// SetPlugboard copies the cables of pb into the key.
func (k *DailyKey) SetPlugboard(pb *permutator.Plugboard) error {
	if k.machine.plugboard != PlugboardFree {
		return &cryptors.KeyError{Field: "plugs", Reason: "model " + k.machine.name + " has no free plugboard"}
	}
	if pb.Size() != k.machine.alphabet.Size() || pb.Len() > k.machine.maxPairs {
		return &cryptors.KeyError{Field: "plugs", Reason: "plugboard does not fit the model"}
	}
	k.chain.plugboard.CopyFrom(pb)
	return nil
}

// Plugboard returns a copy of the current plugboard.
func (k *DailyKey) Plugboard() *permutator.Plugboard {
	return k.chain.plugboard.Clone()
}

// Clone returns an independent key with the same configuration.
func (k *DailyKey) Clone() *DailyKey {
	c := &DailyKey{
		machine:  k.machine,
		settings: k.settings,
		chain:    k.chain.Clone(),
		ground:   append([]int(nil), k.ground...),
		rings:    append([]int(nil), k.rings...),
	}
	c.settings.Rotors = append([]string(nil), k.settings.Rotors...)
	return c
}

// Equal reports whether both keys have the same configuration.
func (k *DailyKey) Equal(o *DailyKey) bool {
	a, b := k.Settings(), o.Settings()
	return k.machine.name == o.machine.name &&
		a.Reflector == b.Reflector &&
		strings.Join(a.Rotors, " ") == strings.Join(b.Rotors, " ") &&
		a.Rings == b.Rings && a.Positions == b.Positions && a.Plugs == b.Plugs
}

func (k *DailyKey) String() string {
	s := k.Settings()
	plugs := s.Plugs
	if plugs == "" {
		plugs = "-"
	}
	return fmt.Sprintf("%s %s %s rings %s ground %s plugs %s",
		k.machine.name, s.Reflector, strings.Join(s.Rotors, " "), s.Rings, s.Positions, plugs)
}

// Trace holds the per position substitution of rotors and reflector.
type Trace struct {
	length int
	size   int
	table  []uint8
}

func (t *Trace) Len() int {
	return t.length
}

// At returns the image of c at key press p.
func (t *Trace) At(p, c int) int {
	return int(t.table[p*t.size+c])
}

// Permutation returns the substitution of key press p.
func (t *Trace) Permutation(p int) []int {
	perm := make([]int, t.size)
	for c := range perm {
		perm[c] = t.At(p, c)
	}
	return perm
}

// Decode deciphers src through pb and the recorded rotor substitutions.
// src must not be longer than the trace.
func (t *Trace) Decode(src []int, pb *permutator.Plugboard, dst []int) {
	for i, c := range src {
		dst[i] = pb.Forward(int(t.table[i*t.size+pb.Forward(c)]))
	}
}
