package attack

import (
	"context"
	"fmt"
	"sort"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/cryptors/permutator"
	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/scoring"
	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

const (
	// maxHypotheses is the most test register hypotheses a menu component
	// may keep and still take part in the plugboard deduction.
	maxHypotheses = 4

	// maxCombinations caps the plugboards tried per setting.
	maxCombinations = 64
)

// ValidCribPositions returns every offset at which crib can lie under
// ciphertext: the machine never enciphers a letter to itself, so any
// offset that puts a letter over itself is impossible.
func ValidCribPositions(ciphertext, crib string) []int {
	c, p := []rune(ciphertext), []rune(crib)
	var offsets []int
	for o := 0; o+len(p) <= len(c); o++ {
		ok := true
		for i, r := range p {
			if c[o+i] == r {
				ok = false
				break
			}
		}
		if ok {
			offsets = append(offsets, o)
		}
	}
	return offsets
}

type menuEdge struct {
	to  int
	pos int
}

// Menu is the graph of a crib placed at Offset: one vertex per letter, one
// edge per crib position joining the plain and the cipher letter.
type Menu struct {
	Offset     int
	Length     int
	Loops      int
	Cycles     [][]string
	Components [][]int

	alphabet *cryptors.Alphabet
	adj      [][]menuEdge
}

// BuildMenu draws the menu of crib placed at offset in ciphertext.
func BuildMenu(a *cryptors.Alphabet, ciphertext, crib string, offset int) (*Menu, error) {
	c, err := a.Indices(ciphertext)
	if err != nil {
		return nil, err
	}
	p, err := a.Indices(crib)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset+len(p) > len(c) || len(p) == 0 {
		return nil, fmt.Errorf("%w: offset %d", ErrNoCribPosition, offset)
	}

	g := core.NewGraph(core.WithMultiEdges())
	menu := &Menu{Offset: offset, Length: len(p), alphabet: a, adj: make([][]menuEdge, a.Size())}
	id := func(x int) string { return string(a.Symbol(x)) }
	for i, x := range p {
		y := c[offset+i]
		if x == y {
			return nil, fmt.Errorf("%w: %c enciphers to itself at %d", ErrNoCribPosition, a.Symbol(x), offset+i)
		}
		if _, err := g.AddEdge(id(x), id(y), 0); err != nil {
			return nil, err
		}
		menu.adj[x] = append(menu.adj[x], menuEdge{to: y, pos: offset + i})
		menu.adj[y] = append(menu.adj[y], menuEdge{to: x, pos: offset + i})
	}

	seen := make(map[string]bool)
	for _, v := range g.Vertices() {
		if seen[v] {
			continue
		}
		res, err := bfs.BFS(g, v)
		if err != nil {
			return nil, err
		}
		var comp []int
		for _, u := range res.Order {
			seen[u] = true
			x, _ := a.Index([]rune(u)[0])
			comp = append(comp, x)
		}
		menu.Components = append(menu.Components, comp)
	}
	sort.SliceStable(menu.Components, func(i, j int) bool { return len(menu.Components[i]) > len(menu.Components[j]) })

	menu.Loops = g.EdgeCount() - g.VertexCount() + len(menu.Components)
	if _, menu.Cycles, err = dfs.DetectCycles(g); err != nil {
		return nil, err
	}
	return menu, nil
}

// register returns the letter with the most edges in comp, the one the
// test register is attached to.
func (m *Menu) register(comp []int) int {
	best := comp[0]
	for _, x := range comp[1:] {
		if len(m.adj[x]) > len(m.adj[best]) {
			best = x
		}
	}
	return best
}

// stecker is a partial plugboard, -1 for unknown.
type stecker []int

func (s stecker) assign(x, y int) bool {
	switch {
	case s[x] == y:
		return true
	case s[x] != -1 || s[y] != -1:
		return false
	}
	s[x], s[y] = y, x
	return true
}

// propagate spreads the hypothesis S(reg) = h through the component: a
// menu edge x-y at position p gives S(y) = E_p(S(x)), E_p being the
// unplugged substitution at p. It fails on the first contradiction.
func (m *Menu) propagate(tr *machine.Trace, s stecker, reg, h int) bool {
	if !s.assign(reg, h) {
		return false
	}
	queue := []int{reg}
	done := make([]bool, len(s))
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		if done[x] {
			continue
		}
		done[x] = true
		for _, e := range m.adj[x] {
			want := tr.At(e.pos, s[x])
			if s[e.to] == -1 {
				if !s.assign(e.to, want) {
					return false
				}
			} else if s[e.to] != want {
				return false
			}
			queue = append(queue, e.to)
		}
	}
	return true
}

// deduce returns every partial plugboard consistent with the menu under
// the rotor substitutions of tr, or nil when some component admits no
// hypothesis at all. Components that keep more than maxHypotheses
// hypotheses on their own say little about the plugboard and are left
// unwired.
func (m *Menu) deduce(tr *machine.Trace, maxPairs int) []stecker {
	size := m.alphabet.Size()
	blank := make(stecker, size)
	for i := range blank {
		blank[i] = -1
	}

	var informative [][]int
	for _, comp := range m.Components {
		reg, n := m.register(comp), 0
		for h := 0; h < size; h++ {
			s := append(stecker(nil), blank...)
			if m.propagate(tr, s, reg, h) && s.pairs() <= maxPairs {
				n++
			}
		}
		if n == 0 {
			return nil
		}
		if n <= maxHypotheses {
			informative = append(informative, comp)
		}
	}

	combos := []stecker{blank}
	for _, comp := range informative {
		reg := m.register(comp)
		var next []stecker
	combine:
		for _, base := range combos {
			for h := 0; h < size; h++ {
				s := append(stecker(nil), base...)
				if m.propagate(tr, s, reg, h) && s.pairs() <= maxPairs {
					next = append(next, s)
					if len(next) >= maxCombinations {
						break combine
					}
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		combos = next
	}
	return combos
}

func (s stecker) pairs() int {
	n := 0
	for x, y := range s {
		if y > x {
			n++
		}
	}
	return n
}

func (s stecker) plugboard(size, maxPairs int) *permutator.Plugboard {
	pb := permutator.NewPlugboard(size, maxPairs)
	for x, y := range s {
		if y > x {
			if pb.Connect(x, y) != nil {
				return nil
			}
		}
	}
	return pb
}

// check tests a fixed plugboard against the menu.
func (m *Menu) check(tr *machine.Trace, pb *permutator.Plugboard) bool {
	for x, edges := range m.adj {
		for _, e := range edges {
			if tr.At(e.pos, pb.Forward(x)) != pb.Forward(e.to) {
				return false
			}
		}
	}
	return true
}

// BestCribPosition picks the valid placement whose menu has the most
// loops, the earliest one on ties.
func BestCribPosition(a *cryptors.Alphabet, ciphertext, crib string) (*Menu, error) {
	var best *Menu
	for _, o := range ValidCribPositions(ciphertext, crib) {
		m, err := BuildMenu(a, ciphertext, crib, o)
		if err != nil {
			return nil, err
		}
		if best == nil || m.Loops > best.Loops {
			best = m
		}
	}
	if best == nil {
		return nil, ErrNoCribPosition
	}
	return best, nil
}

// CribAttack tests every setting of r against the menu of crib at offset.
// On a free plugboard each menu component is tried with every hypothesis
// for its most connected letter; settings where all components keep a
// consistent hypothesis are deciphered with the deduced cables and scored.
// Results come best first.
func (e *Engine) CribAttack(ctx context.Context, r Range, ciphertext, crib string, offset int) ([]*Result, error) {
	m := r.Machine
	cipher, err := e.indices(m, ciphertext)
	if err != nil {
		return nil, err
	}
	menu, err := BuildMenu(m.Alphabet(), ciphertext, crib, offset)
	if err != nil {
		return nil, err
	}
	defer e.metrics.timed(ctx, "crib")()
	e.log.Info("crib attack started", "offset", offset, "loops", menu.Loops, "components", len(menu.Components), "settings", r.Size())

	free := m.Plugboard() == machine.PlugboardFree
	if free {
		r.Plugs = ""
	}
	size := m.Alphabet().Size()
	span := offset + menu.Length

	type survivors struct {
		results []*Result
		err     error
	}
	stage := func(int) func(machine.Settings) survivors {
		cache := &keyCache{m: m}
		return func(s machine.Settings) survivors {
			k, err := cache.get(s)
			if err != nil {
				return survivors{err: err}
			}
			tr := k.Trace(span)
			if !free {
				if !menu.check(tr, k.Plugboard()) {
					return survivors{}
				}
				return survivors{results: []*Result{e.rate(k, cipher)}}
			}
			var out []*Result
			for _, st := range menu.deduce(tr, m.MaxPairs()) {
				pb := st.plugboard(size, m.MaxPairs())
				if pb == nil {
					continue
				}
				cand := k.Clone()
				if cand.SetPlugboard(pb) != nil {
					continue
				}
				out = append(out, e.rate(cand, cipher))
			}
			return survivors{results: out}
		}
	}

	var results []*Result
	var n int64
	var firstErr error
	err = pipeline(ctx, e.opts.Workers, r.Candidates(), stage, func(s survivors) bool {
		if s.err != nil {
			firstErr = s.err
			return false
		}
		n++
		results = append(results, s.results...)
		return true
	})
	e.metrics.candidates(ctx, "crib", n)
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, &ExhaustedError{Stage: "crib"}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key.String() < results[j].Key.String()
	})
	e.log.Info("crib attack done", "settings", n, "survivors", len(results), "best", results[0].Score)
	return results, nil
}

// rate deciphers with k and scores by n-grams, or by index of coincidence
// when the engine has no scorer.
func (e *Engine) rate(k *machine.DailyKey, cipher []int) *Result {
	if e.scorer != nil {
		return e.score(k, cipher)
	}
	plain := make([]int, len(cipher))
	k.EncodeIndices(cipher, plain)
	a := k.Machine().Alphabet()
	return &Result{Key: k.Clone(), Score: scoring.IC(plain, a.Size()), Plaintext: a.Text(plain)}
}
