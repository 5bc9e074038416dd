// Package scoring rates candidate plaintexts: index of coincidence for the
// rotor search and n-gram log probabilities for the plugboard search.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/bgallie/mzenigma/cryptors"
)

// MaxOrder is the longest n-gram a Scorer keeps a table for.
const MaxOrder = 4

var ErrNoModel = errors.New("scoring: no n-gram table for this order")

// Scorer holds dense log10 probability tables for n = 1..MaxOrder. The
// tables never change after NewScorer; only the annealing temperature
// does, and it is read and written atomically.
type Scorer struct {
	alphabet    *cryptors.Alphabet
	size        int
	tables      [MaxOrder + 1][]float64
	floors      [MaxOrder + 1]float64
	totals      [MaxOrder + 1]int
	temperature atomic.Uint64
}

// NewScorer builds the tables from n-gram counts keyed by the n-gram
// itself. Orders without any count are left out.
func NewScorer(a *cryptors.Alphabet, counts map[string]int) (*Scorer, error) {
	s := &Scorer{alphabet: a, size: a.Size()}

	type gram struct {
		code  int
		count int
	}
	var grams [MaxOrder + 1][]gram
	for ng, count := range counts {
		idx, err := a.Indices(ng)
		if err != nil {
			return nil, fmt.Errorf("scoring: n-gram %q: %w", ng, err)
		}
		n := len(idx)
		if n == 0 || n > MaxOrder {
			return nil, fmt.Errorf("scoring: n-gram %q: length %d not in 1..%d", ng, n, MaxOrder)
		}
		if count <= 0 {
			continue
		}
		grams[n] = append(grams[n], gram{code: s.code(idx), count: count})
		s.totals[n] += count
	}

	for n := 1; n <= MaxOrder; n++ {
		if s.totals[n] == 0 {
			continue
		}
		total := float64(s.totals[n])
		s.floors[n] = math.Log10(0.01 / total)
		table := make([]float64, pow(s.size, n))
		for i := range table {
			table[i] = s.floors[n]
		}
		for _, g := range grams[n] {
			table[g.code] = math.Log10(float64(g.count) / total)
		}
		s.tables[n] = table
	}
	return s, nil
}

func (s *Scorer) code(idx []int) int {
	c := 0
	for _, i := range idx {
		c = c*s.size + i
	}
	return c
}

func (s *Scorer) Alphabet() *cryptors.Alphabet {
	return s.alphabet
}

// Has reports whether a table for order n is loaded.
func (s *Scorer) Has(n int) bool {
	return n >= 1 && n <= MaxOrder && s.tables[n] != nil
}

// Orders lists the loaded n-gram orders.
func (s *Scorer) Orders() []int {
	var out []int
	for n := 1; n <= MaxOrder; n++ {
		if s.tables[n] != nil {
			out = append(out, n)
		}
	}
	return out
}

// Floor is the score of an n-gram never seen in training.
func (s *Scorer) Floor(n int) float64 {
	return s.floors[n]
}

// NgramScore sums the log10 probabilities of the overlapping n-grams of
// text. Higher is more plausible.
func (s *Scorer) NgramScore(text string, n int) (float64, error) {
	if !s.Has(n) {
		return 0, fmt.Errorf("%w: %d", ErrNoModel, n)
	}
	idx, err := s.alphabet.Indices(text)
	if err != nil {
		return 0, err
	}
	return s.ScoreIndices(idx, n), nil
}

// ScoreIndices is NgramScore on symbol indices. n must be loaded.
func (s *Scorer) ScoreIndices(idx []int, n int) float64 {
	table := s.tables[n]
	if len(idx) < n {
		return 0
	}
	mod := pow(s.size, n)
	code := 0
	for _, c := range idx[:n-1] {
		code = code*s.size + c
	}
	var score float64
	for _, c := range idx[n-1:] {
		code = (code*s.size + c) % mod
		score += table[code]
	}
	return score
}

// MeanScore is ScoreIndices divided by the number of n-grams, which makes
// scores of texts of different lengths comparable.
func (s *Scorer) MeanScore(idx []int, n int) float64 {
	count := len(idx) - n + 1
	if count <= 0 {
		return s.floors[n]
	}
	return s.ScoreIndices(idx, n) / float64(count)
}

// SetSATemperature sets the annealing temperature used by Accept; zero
// turns annealing off.
func (s *Scorer) SetSATemperature(t float64) {
	s.temperature.Store(math.Float64bits(t))
}

func (s *Scorer) Temperature() float64 {
	return math.Float64frombits(s.temperature.Load())
}

// Accept applies the Metropolis rule to a score change: improvements are
// always taken, a loss of delta with probability exp(delta/T).
func (s *Scorer) Accept(delta float64, rng *rand.Rand) bool {
	return Metropolis(delta, s.Temperature(), rng)
}

// Metropolis is the acceptance rule of Accept at temperature t, for
// searches that cool a temperature of their own.
func Metropolis(delta, t float64, rng *rand.Rand) bool {
	if delta >= 0 {
		return true
	}
	if t <= 0 {
		return false
	}
	return rng.Float64() < math.Exp(delta/t)
}

// TemperatureFor returns the starting temperature for a message of length
// letters, in units of MeanScore. Short messages get a hotter start.
func TemperatureFor(length int) float64 {
	var t float64
	switch l := float64(length); {
	case length <= 0:
		return 0
	case length <= 30:
		t = 400
	case length <= 50:
		t = 400 - (400-315)*(l-30)/(50-30)
	case length <= 75:
		t = 315 - (315-240)*(l-50)/(75-50)
	case length <= 100:
		t = 240 - (240-220)*(l-75)/(100-75)
	case length <= 150:
		t = 220 - (220-200)*(l-100)/(150-100)
	default:
		t = 200
	}
	return t / 10000
}

func pow(b, e int) int {
	r := 1
	for i := 0; i < e; i++ {
		r *= b
	}
	return r
}
