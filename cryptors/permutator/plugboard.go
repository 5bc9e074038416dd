package permutator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/cryptors/bitops"
)

// Plugboard (Steckerbrett) swaps disjoint pairs of symbols. Unplugged
// symbols pass through unchanged.
type Plugboard struct {
	partner  []int
	wired    bitops.Set
	maxPairs int
}

// NewPlugboard returns an empty plugboard for an alphabet of size symbols
// that accepts at most maxPairs cables. A maxPairs outside 0..size/2 is
// clamped to size/2.
func NewPlugboard(size, maxPairs int) *Plugboard {
	if maxPairs < 0 || maxPairs > size/2 {
		maxPairs = size / 2
	}
	p := &Plugboard{
		partner:  make([]int, size),
		wired:    bitops.NewSet(size),
		maxPairs: maxPairs,
	}
	for i := range p.partner {
		p.partner[i] = i
	}
	return p
}

// ParsePlugboard reads pairs written as letter pairs separated by blanks,
// e.g. "AB CD EF".
func ParsePlugboard(alphabet *cryptors.Alphabet, pairs string, maxPairs int) (*Plugboard, error) {
	p := NewPlugboard(alphabet.Size(), maxPairs)
	for _, f := range strings.Fields(pairs) {
		idx, err := alphabet.Indices(f)
		if err != nil {
			return nil, &cryptors.WiringError{Component: "plugboard", Reason: err.Error()}
		}
		if len(idx) != 2 {
			return nil, &cryptors.WiringError{Component: "plugboard", Reason: fmt.Sprintf("%q is not a pair", f)}
		}
		if err := p.Connect(idx[0], idx[1]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Connect plugs a cable between a and b.
func (p *Plugboard) Connect(a, b int) error {
	switch {
	case a == b:
		return &cryptors.WiringError{Component: "plugboard", Reason: fmt.Sprintf("cannot connect %d to itself", a)}
	case p.wired.Has(a) || p.wired.Has(b):
		return &cryptors.WiringError{Component: "plugboard", Reason: fmt.Sprintf("pair %d-%d overlaps an existing cable", a, b)}
	case p.Len() >= p.maxPairs:
		return &cryptors.WiringError{Component: "plugboard", Reason: fmt.Sprintf("more than %d pairs", p.maxPairs)}
	}
	p.partner[a], p.partner[b] = b, a
	p.wired.Add(a)
	p.wired.Add(b)
	return nil
}

// Disconnect removes the cable plugged into a, if any.
func (p *Plugboard) Disconnect(a int) {
	b := p.partner[a]
	if b == a {
		return
	}
	p.partner[a], p.partner[b] = a, b
	p.wired.Remove(a)
	p.wired.Remove(b)
}

// Exchange swaps the partners of two connected symbols: a-x and b-y
// become a-y and b-x.
func (p *Plugboard) Exchange(a, b int) error {
	x, y := p.partner[a], p.partner[b]
	if x == a || y == b {
		return &cryptors.WiringError{Component: "plugboard", Reason: "exchange needs two connected symbols"}
	}
	if x == b {
		return nil
	}
	p.partner[a], p.partner[y] = y, a
	p.partner[b], p.partner[x] = x, b
	return nil
}

// Reset removes all cables.
func (p *Plugboard) Reset() {
	for i := range p.partner {
		p.partner[i] = i
	}
	p.wired.Clear()
}

func (p *Plugboard) Forward(c int) int {
	return p.partner[c]
}

func (p *Plugboard) Backward(c int) int {
	return p.partner[c]
}

func (p *Plugboard) Partner(c int) int {
	return p.partner[c]
}

func (p *Plugboard) Connected(c int) bool {
	return p.wired.Has(c)
}

// Len returns the number of cables.
func (p *Plugboard) Len() int {
	return p.wired.Len() / 2
}

func (p *Plugboard) MaxPairs() int {
	return p.maxPairs
}

func (p *Plugboard) Size() int {
	return len(p.partner)
}

// Table returns the plugboard as a full substitution table.
func (p *Plugboard) Table() []int {
	return append([]int(nil), p.partner...)
}

// Pairs returns the cables with the smaller symbol first, ordered by it.
func (p *Plugboard) Pairs() [][2]int {
	var pairs [][2]int
	for _, a := range p.wired.Members() {
		if b := p.partner[a]; a < b {
			pairs = append(pairs, [2]int{a, b})
		}
	}
	return pairs
}

// Less orders plugboards by their pairing, compared pair by pair; a
// pairing that is a prefix of the other sorts first.
func (p *Plugboard) Less(q *Plugboard) bool {
	pp, qp := p.Pairs(), q.Pairs()
	for i := 0; i < len(pp) && i < len(qp); i++ {
		if pp[i] != qp[i] {
			if pp[i][0] != qp[i][0] {
				return pp[i][0] < qp[i][0]
			}
			return pp[i][1] < qp[i][1]
		}
	}
	return len(pp) < len(qp)
}

// Equal reports whether both plugboards hold the same cables.
func (p *Plugboard) Equal(q *Plugboard) bool {
	if len(p.partner) != len(q.partner) {
		return false
	}
	for i, v := range p.partner {
		if q.partner[i] != v {
			return false
		}
	}
	return true
}

func (p *Plugboard) Clone() *Plugboard {
	return &Plugboard{
		partner:  append([]int(nil), p.partner...),
		wired:    p.wired.Clone(),
		maxPairs: p.maxPairs,
	}
}

// CopyFrom overwrites the cables of p with those of q without allocating.
// Both must cover the same alphabet; p keeps its own cable limit.
func (p *Plugboard) CopyFrom(q *Plugboard) {
	copy(p.partner, q.partner)
	copy(p.wired, q.wired)
}

// Format writes the pairs as letters, e.g. "AB CD".
func (p *Plugboard) Format(alphabet *cryptors.Alphabet) string {
	var parts []string
	for _, pr := range p.Pairs() {
		parts = append(parts, string([]rune{alphabet.Symbol(pr[0]), alphabet.Symbol(pr[1])}))
	}
	return strings.Join(parts, " ")
}

// Random returns a plugboard with the given number of random cables.
func Random(size, pairs, maxPairs int, rng *rand.Rand) *Plugboard {
	p := NewPlugboard(size, maxPairs)
	if pairs > p.maxPairs {
		pairs = p.maxPairs
	}
	perm := rng.Perm(size)
	for i := 0; i < pairs; i++ {
		p.partner[perm[2*i]], p.partner[perm[2*i+1]] = perm[2*i+1], perm[2*i]
		p.wired.Add(perm[2*i])
		p.wired.Add(perm[2*i+1])
	}
	return p
}
