// Package catalog keeps Rejewski's card catalog: for every ground setting
// of a rotor order the cycle structure of the products of the indicator
// permutations. The structure does not depend on the plugboard, so a day's
// doubled indicators point straight at the few ground settings that can
// have produced them.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/machine"
	"github.com/spaolacci/murmur3"
)

var ErrCatalogInconsistent = errors.New("catalog: inconsistent")

// InconsistencyError tells why a catalog does not match a machine or its
// own contents.
type InconsistencyError struct {
	Reason string
}

func (e *InconsistencyError) Error() string {
	return "catalog: inconsistent: " + e.Reason
}

func (e *InconsistencyError) Unwrap() error { return ErrCatalogInconsistent }

func inconsistent(format string, a ...any) error {
	return &InconsistencyError{Reason: fmt.Sprintf(format, a...)}
}

// Entry is one card: a key without plugs and its characteristic.
type Entry struct {
	Reflector      string
	Rotors         []string
	Rings          string
	Positions      string
	Characteristic string
}

// Settings returns the entry as a machine key without plugs.
func (e Entry) Settings() machine.Settings {
	return machine.Settings{
		Reflector: e.Reflector,
		Rotors:    append([]string(nil), e.Rotors...),
		Rings:     e.Rings,
		Positions: e.Positions,
	}
}

func (e Entry) key() string {
	return e.Reflector + "|" + strings.Join(e.Rotors, " ") + "|" + e.Rings + "|" + e.Positions
}

func (e Entry) less(o Entry) bool {
	if e.Reflector != o.Reflector {
		return e.Reflector < o.Reflector
	}
	if a, b := strings.Join(e.Rotors, " "), strings.Join(o.Rotors, " "); a != b {
		return a < b
	}
	if e.Rings != o.Rings {
		return e.Rings < o.Rings
	}
	return e.Positions < o.Positions
}

// Catalog is built once, sealed and only read afterwards. The exported
// fields are what gets persisted; the index is rebuilt on load.
type Catalog struct {
	Model       string
	Alphabet    string
	Slots       int
	Entries     []Entry
	Fingerprint uint64

	index map[string][]int
}

// New returns an empty catalog for m.
func New(m *machine.Machine) *Catalog {
	return &Catalog{
		Model:    m.Name(),
		Alphabet: m.Alphabet().String(),
		Slots:    m.Slots(),
	}
}

// Add appends entries. The catalog must be sealed again afterwards.
func (c *Catalog) Add(e ...Entry) {
	c.Entries = append(c.Entries, e...)
	c.index = nil
}

// Seal sorts the entries, computes the fingerprint and builds the index.
func (c *Catalog) Seal() {
	sort.Slice(c.Entries, func(i, j int) bool { return c.Entries[i].less(c.Entries[j]) })
	c.Fingerprint = c.fingerprint()
	c.rebuildIndex()
}

func (c *Catalog) rebuildIndex() {
	c.index = make(map[string][]int)
	for i, e := range c.Entries {
		c.index[e.Characteristic] = append(c.index[e.Characteristic], i)
	}
}

func (c *Catalog) fingerprint() uint64 {
	var sb strings.Builder
	sb.WriteString(c.Model)
	sb.WriteByte(0)
	sb.WriteString(c.Alphabet)
	sb.WriteByte(0)
	sb.WriteString(strconv.Itoa(c.Slots))
	for _, e := range c.Entries {
		sb.WriteByte('\n')
		sb.WriteString(e.key())
		sb.WriteByte('|')
		sb.WriteString(e.Characteristic)
	}
	return murmur3.Sum64([]byte(sb.String()))
}

// Verify checks the stored fingerprint against the contents.
func (c *Catalog) Verify() error {
	if fp := c.fingerprint(); fp != c.Fingerprint {
		return inconsistent("fingerprint %016x, contents hash to %016x", c.Fingerprint, fp)
	}
	return nil
}

// Handle names the catalog in a store: model/fingerprint.
func (c *Catalog) Handle() string {
	return fmt.Sprintf("%s/%016x", c.Model, c.Fingerprint)
}

func (c *Catalog) Len() int {
	return len(c.Entries)
}

// Characteristics returns the number of distinct characteristics.
func (c *Catalog) Characteristics() int {
	if c.index == nil {
		c.rebuildIndex()
	}
	return len(c.index)
}

// Lookup returns the entries filed under characteristic.
func (c *Catalog) Lookup(characteristic string) []Entry {
	if c.index == nil {
		c.rebuildIndex()
	}
	idx := c.index[characteristic]
	out := make([]Entry, len(idx))
	for i, j := range idx {
		out[i] = c.Entries[j]
	}
	return out
}

// Equal compares header and entries.
func (c *Catalog) Equal(o *Catalog) bool {
	if c.Model != o.Model || c.Alphabet != o.Alphabet || c.Slots != o.Slots ||
		c.Fingerprint != o.Fingerprint || len(c.Entries) != len(o.Entries) {
		return false
	}
	for i, e := range c.Entries {
		if e.key() != o.Entries[i].key() || e.Characteristic != o.Entries[i].Characteristic {
			return false
		}
	}
	return true
}

// Characteristic renders the cycle lengths of every product, longest
// first, e.g. "13.13|10.10.3.3|...".
func Characteristic(products [][]int) string {
	parts := make([]string, len(products))
	for i, p := range products {
		lengths := cryptors.CycleLengths(p)
		s := make([]string, len(lengths))
		for j, l := range lengths {
			s[j] = strconv.Itoa(l)
		}
		parts[i] = strings.Join(s, ".")
	}
	return strings.Join(parts, "|")
}

// Products returns P_i = M_{i+n} after M_i for i < n, where M_j is the
// substitution at key press j. These are the permutations that take the
// i-th letter of a doubled indicator to the (i+n)-th.
func Products(k *machine.DailyKey, n int) [][]int {
	products := make([][]int, n)
	for i := 0; i < n; i++ {
		products[i] = cryptors.Compose(k.EncodeMatrix(i), k.EncodeMatrix(i+n))
	}
	return products
}

// ForKey is the characteristic of k's ground setting for indicators of
// one letter per slot.
func ForKey(k *machine.DailyKey) string {
	return Characteristic(Products(k, k.Machine().Slots()))
}

// NewEntry files the key's ground setting.
func NewEntry(k *machine.DailyKey) Entry {
	s := k.Settings()
	return Entry{
		Reflector:      s.Reflector,
		Rotors:         s.Rotors,
		Rings:          s.Rings,
		Positions:      s.Positions,
		Characteristic: ForKey(k),
	}
}

// Check validates c against m: header, admissible components, duplicate
// cards, the fingerprint and, for every stride-th entry, the stored
// characteristic. A stride below 1 recomputes every entry.
func Check(c *Catalog, m *machine.Machine, stride int) error {
	switch {
	case c.Model != m.Name():
		return inconsistent("built for model %s, not %s", c.Model, m.Name())
	case c.Alphabet != m.Alphabet().String():
		return inconsistent("alphabet %q does not match %q", c.Alphabet, m.Alphabet())
	case c.Slots != m.Slots():
		return inconsistent("%d slots, model has %d", c.Slots, m.Slots())
	}
	if err := c.Verify(); err != nil {
		return err
	}
	if stride < 1 {
		stride = 1
	}

	seen := make(map[string]bool, len(c.Entries))
	for i, e := range c.Entries {
		if seen[e.key()] {
			return inconsistent("entry %d duplicates %s", i, e.key())
		}
		seen[e.key()] = true

		k, err := m.NewKey(e.Settings())
		if err != nil {
			return inconsistent("entry %d: %v", i, err)
		}
		if i%stride == 0 {
			if ch := ForKey(k); ch != e.Characteristic {
				return inconsistent("entry %d: characteristic %s, recomputed %s", i, e.Characteristic, ch)
			}
		}
	}
	c.rebuildIndex()
	return nil
}
