package attack

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/bgallie/mzenigma/cryptors/permutator"
	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/scoring"
)

// climber searches the plugboard of one fixed rotor setting. The rotor
// substitutions are traced once, so every trial plugboard costs one pass
// over the text.
type climber struct {
	e      *Engine
	trace  *machine.Trace
	cipher []int
	plain  []int
	size   int
	saved  *permutator.Plugboard
	best   *permutator.Plugboard
	scored int64
}

func (e *Engine) newClimber(k *machine.DailyKey, cipher []int) *climber {
	pb := k.Plugboard()
	return &climber{
		e:      e,
		trace:  k.Trace(len(cipher)),
		cipher: cipher,
		plain:  make([]int, len(cipher)),
		size:   k.Machine().Alphabet().Size(),
		saved:  pb.Clone(),
		best:   pb.Clone(),
	}
}

// fork shares the trace but not the scratch space.
func (c *climber) fork() *climber {
	return &climber{
		e:      c.e,
		trace:  c.trace,
		cipher: c.cipher,
		plain:  make([]int, len(c.cipher)),
		size:   c.size,
		saved:  c.saved.Clone(),
		best:   c.best.Clone(),
	}
}

func (c *climber) score(pb *permutator.Plugboard) float64 {
	c.scored++
	c.trace.Decode(c.cipher, pb, c.plain)
	return c.e.scorer.MeanScore(c.plain, c.e.opts.Ngram)
}

func (c *climber) ic(pb *permutator.Plugboard) float64 {
	c.scored++
	c.trace.Decode(c.cipher, pb, c.plain)
	return scoring.IC(c.plain, c.size)
}

// move applies variant v of the rewirings for the letters a and b:
//
//	a, b free:          a-b
//	a-b:                both free
//	a-x, b free:        a-b (v 0) or x-b (v 1)
//	a free, b-y:        a-b (v 0) or a-y (v 1)
//	a-x, b-y:           a-b x-y (v 0) or a-y b-x (v 1)
//
// It reports false when the variant does not exist or breaks the cable
// limit; pb may then be half changed.
func move(pb *permutator.Plugboard, a, b, v int) bool {
	x, y := pb.Partner(a), pb.Partner(b)
	switch {
	case x == b:
		if v != 0 {
			return false
		}
		pb.Disconnect(a)
		return true
	case x == a && y == b:
		return v == 0 && pb.Connect(a, b) == nil
	case y == b:
		pb.Disconnect(a)
		if v == 0 {
			return pb.Connect(a, b) == nil
		}
		return pb.Connect(x, b) == nil
	case x == a:
		pb.Disconnect(b)
		if v == 0 {
			return pb.Connect(a, b) == nil
		}
		return pb.Connect(a, y) == nil
	default:
		if v != 0 {
			return pb.Exchange(a, b) == nil
		}
		pb.Disconnect(a)
		pb.Disconnect(b)
		return pb.Connect(a, b) == nil && pb.Connect(x, y) == nil
	}
}

// improvePair tries every rewiring of a and b and keeps the best one if it
// beats cur.
func (c *climber) improvePair(pb *permutator.Plugboard, a, b int, cur float64, score func(*permutator.Plugboard) float64) (float64, bool) {
	c.saved.CopyFrom(pb)
	best, improved := cur, false
	for v := 0; v < 2; v++ {
		if move(pb, a, b, v) {
			if s := score(pb); s > best || (s == best && improved && pb.Less(c.best)) {
				best, improved = s, true
				c.best.CopyFrom(pb)
			}
		}
		pb.CopyFrom(c.saved)
	}
	if improved {
		pb.CopyFrom(c.best)
	}
	return best, improved
}

// climb visits the letter pairs in order until a full round brings no
// improvement. Every improvement is taken at once.
func (c *climber) climb(pb *permutator.Plugboard, order []int, score func(*permutator.Plugboard) float64) float64 {
	cur := score(pb)
	for {
		improved := false
		for i, a := range order {
			for _, b := range order[i+1:] {
				if s, ok := c.improvePair(pb, a, b, cur, score); ok {
					cur, improved = s, true
				}
			}
		}
		if !improved {
			return cur
		}
	}
}

func (c *climber) letters() []int {
	order := make([]int, c.size)
	for i := range order {
		order[i] = i
	}
	return order
}

// anneal walks random rewirings under the Metropolis rule, cooling by the
// configured factor after every step, and returns the best plugboard seen.
func (c *climber) anneal(pb *permutator.Plugboard, rng *rand.Rand) (*permutator.Plugboard, float64) {
	t := c.e.scorer.Temperature()
	if t <= 0 {
		t = scoring.TemperatureFor(len(c.cipher))
	}
	cur := c.score(pb)
	best, bestScore := pb.Clone(), cur
	for i := 0; i < c.e.opts.Iterations; i++ {
		a, b := rng.Intn(c.size), rng.Intn(c.size)
		if a == b {
			continue
		}
		c.saved.CopyFrom(pb)
		if !move(pb, a, b, rng.Intn(2)) {
			pb.CopyFrom(c.saved)
			continue
		}
		s := c.score(pb)
		if scoring.Metropolis(s-cur, t, rng) {
			cur = s
			if s > bestScore {
				best.CopyFrom(pb)
				bestScore = s
			}
		} else {
			pb.CopyFrom(c.saved)
		}
		t *= c.e.opts.Cooling
	}
	return best, bestScore
}

// byFrequency orders the letters by how often they occur in the text
// deciphered through pb, most frequent first.
func (c *climber) byFrequency(pb *permutator.Plugboard) []int {
	c.trace.Decode(c.cipher, pb, c.plain)
	counts := make([]int, c.size)
	for _, p := range c.plain {
		counts[p]++
	}
	order := c.letters()
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return order
}

// phase2 prepares a climber for k or reports why there is nothing to
// search.
func (e *Engine) phase2(k *machine.DailyKey, ciphertext string) (*climber, []int, error) {
	if err := e.needScorer(); err != nil {
		return nil, nil, err
	}
	if k.Machine().Plugboard() != machine.PlugboardFree {
		return nil, nil, fmt.Errorf("attack: model %s has no free plugboard to search", k.Machine().Name())
	}
	cipher, err := e.indices(k.Machine(), ciphertext)
	if err != nil {
		return nil, nil, err
	}
	return e.newClimber(k, cipher), cipher, nil
}

func (e *Engine) result(k *machine.DailyKey, pb *permutator.Plugboard, cipher []int, score float64) (*Result, error) {
	out := k.Clone()
	if err := out.SetPlugboard(pb); err != nil {
		return nil, err
	}
	plain := make([]int, len(cipher))
	out.EncodeIndices(cipher, plain)
	return &Result{Key: out, Score: score, Plaintext: k.Machine().Alphabet().Text(plain)}, nil
}

// HillClimb improves the plugboard of k by exhaustive pair moves: add,
// remove, rewire and exchange cables, keeping every improvement, until no
// move helps.
func (e *Engine) HillClimb(k *machine.DailyKey, ciphertext string) (*Result, error) {
	c, cipher, err := e.phase2(k, ciphertext)
	if err != nil {
		return nil, err
	}
	pb := k.Plugboard()
	score := c.climb(pb, c.letters(), c.score)
	return e.result(k, pb, cipher, score)
}

// Anneal runs simulated annealing on the plugboard of k, then a hill climb
// from the best plugboard it saw.
func (e *Engine) Anneal(k *machine.DailyKey, ciphertext string) (*Result, error) {
	c, cipher, err := e.phase2(k, ciphertext)
	if err != nil {
		return nil, err
	}
	pb, _ := c.anneal(k.Plugboard(), rngFromSeed(e.opts.Seed))
	score := c.climb(pb, c.letters(), c.score)
	return e.result(k, pb, cipher, score)
}

// Exchange climbs with the letters taken in order of their frequency in
// the current decipherment, recomputing the order after each round.
func (e *Engine) Exchange(k *machine.DailyKey, ciphertext string) (*Result, error) {
	c, cipher, err := e.phase2(k, ciphertext)
	if err != nil {
		return nil, err
	}
	pb := k.Plugboard()
	cur := c.score(pb)
	for round := 0; round < e.opts.NoImprovement; round++ {
		s := c.climb(pb, c.byFrequency(pb), c.score)
		if s <= cur && round > 0 {
			break
		}
		cur = s
	}
	return e.result(k, pb, cipher, cur)
}

// MzPhase2 builds the plugboard one cable at a time, each time adding the
// cable that raises the index of coincidence most, and finishes with an
// n-gram hill climb.
func (e *Engine) MzPhase2(k *machine.DailyKey, ciphertext string) (*Result, error) {
	c, cipher, err := e.phase2(k, ciphertext)
	if err != nil {
		return nil, err
	}
	pb := k.Plugboard()
	cur := c.ic(pb)
	for pb.Len() < k.Machine().MaxPairs() {
		ba, bb, best := -1, -1, cur
		for a := 0; a < c.size; a++ {
			if pb.Connected(a) {
				continue
			}
			for b := a + 1; b < c.size; b++ {
				if pb.Connected(b) || pb.Connect(a, b) != nil {
					continue
				}
				if s := c.ic(pb); s > best {
					ba, bb, best = a, b, s
				}
				pb.Disconnect(a)
			}
		}
		if ba < 0 {
			break
		}
		if err := pb.Connect(ba, bb); err != nil {
			return nil, err
		}
		cur = best
	}
	score := c.climb(pb, c.letters(), c.score)
	return e.result(k, pb, cipher, score)
}

type restart struct {
	index int
	pb    *permutator.Plugboard
	score float64
	n     int64
}

// Shotgun runs Restarts independent climbs in parallel, each from a random
// plugboard drawn from its own RNG (the first from the plugboard of k),
// with annealing first when Options.Anneal is set. Restarts are judged in
// index order whatever worker finishes first: the search stops after
// NoImprovement restarts in a row fail to beat the best, or once the best
// reaches a nonzero StopScore.
func (e *Engine) Shotgun(ctx context.Context, k *machine.DailyKey, ciphertext string) (*Result, error) {
	c, cipher, err := e.phase2(k, ciphertext)
	if err != nil {
		return nil, err
	}
	defer e.metrics.timed(ctx, "shotgun")()

	m := k.Machine()
	start := k.Plugboard()
	restarts := func(yield func(int) bool) {
		for i := 0; i < e.opts.Restarts; i++ {
			if !yield(i) {
				return
			}
		}
	}
	stage := func(int) func(int) restart {
		w := c.fork()
		return func(i int) restart {
			rng := streamRNG(e.opts.Seed, uint64(i))
			pb := start.Clone()
			if i > 0 {
				pb = permutator.Random(m.Alphabet().Size(), rng.Intn(m.MaxPairs()+1), m.MaxPairs(), rng)
			}
			if e.opts.Anneal {
				pb, _ = w.anneal(pb, rng)
			}
			before := w.scored
			s := w.climb(pb, w.letters(), w.score)
			return restart{index: i, pb: pb, score: s, n: w.scored - before}
		}
	}

	best := &bestSlot{}
	var scoredTotal int64
	var firstErr error
	misses := 0
	judge := func(r restart) bool {
		cand := k.Clone()
		if err := cand.SetPlugboard(r.pb); err != nil {
			firstErr = fmt.Errorf("attack: shotgun restart %d: %w", r.index, err)
			return false
		}
		if best.offer(r.score, cand) {
			misses = 0
			e.metrics.improved(ctx, "shotgun")
			e.log.Debug("shotgun improved", "restart", r.index, "score", r.score, "plugs", r.pb.Format(m.Alphabet()))
			return !e.reached(r.score)
		}
		misses++
		return misses < e.opts.NoImprovement
	}

	pending := make(map[int]restart)
	next := 0
	err = pipeline(ctx, e.opts.Workers, restarts, stage, func(r restart) bool {
		scoredTotal += r.n
		pending[r.index] = r
		for {
			r, ok := pending[next]
			if !ok {
				return true
			}
			delete(pending, next)
			next++
			if !judge(r) {
				return false
			}
		}
	})
	e.metrics.candidates(ctx, "shotgun", scoredTotal)
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, err
	}
	score, key, ok := best.get()
	if !ok {
		return nil, &ExhaustedError{Stage: "shotgun"}
	}
	return e.result(key, key.Plugboard(), cipher, score)
}

// reached reports whether a mean n-gram score ends the search early.
func (e *Engine) reached(score float64) bool {
	return e.opts.StopScore != 0 && score >= e.opts.StopScore
}

// Phase2 runs the plugboard search selected by Options.Method.
func (e *Engine) Phase2(ctx context.Context, k *machine.DailyKey, ciphertext string) (*Result, error) {
	switch e.opts.Method {
	case MethodHillClimb:
		return e.HillClimb(k, ciphertext)
	case MethodAnneal:
		return e.Anneal(k, ciphertext)
	case MethodExchange:
		return e.Exchange(k, ciphertext)
	case MethodMz:
		return e.MzPhase2(k, ciphertext)
	default:
		return e.Shotgun(ctx, k, ciphertext)
	}
}
