// Package attack recovers daily keys from intercepted traffic: Rejewski's
// characteristic catalog, Turing style crib menus and Gillogly's
// ciphertext-only search followed by a plugboard search.
package attack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/scoring"
)

// Engine runs attacks with one scorer and one set of options. It holds no
// per-attack state and may run several attacks at once.
type Engine struct {
	scorer  *scoring.Scorer
	opts    Options
	log     *slog.Logger
	metrics *metrics
}

// New returns an engine. scorer may be nil for the catalog attacks, which
// never score text; a nil logger logs to slog.Default().
func New(scorer *scoring.Scorer, opts Options, logger *slog.Logger) (*Engine, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	if scorer != nil && !scorer.Has(opts.Ngram) {
		return nil, fmt.Errorf("attack: %w: %d", scoring.ErrNoModel, opts.Ngram)
	}
	if logger == nil {
		logger = slog.Default()
	}
	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("attack: metrics: %w", err)
	}
	return &Engine{scorer: scorer, opts: opts, log: logger.With("component", "attack"), metrics: m}, nil
}

func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) needScorer() error {
	if e.scorer == nil {
		return fmt.Errorf("attack: %w", scoring.ErrNoModel)
	}
	return nil
}

// Result is a recovered key with its mean n-gram score and the decoded
// text.
type Result struct {
	Key       *machine.DailyKey
	Score     float64
	Plaintext string
}

// keyCache hands a worker the key for a setting, reusing the last one
// when only the ground setting changed.
type keyCache struct {
	m      *machine.Machine
	key    *machine.DailyKey
	walzen string
}

func (c *keyCache) get(s machine.Settings) (*machine.DailyKey, error) {
	w := s.Reflector + "|" + strings.Join(s.Rotors, " ") + "|" + s.Rings + "|" + s.Plugs
	if c.key != nil && w == c.walzen {
		return c.key, c.key.SetPositions(s.Positions)
	}
	k, err := c.m.NewKey(s)
	if err != nil {
		c.key = nil
		return nil, err
	}
	c.key, c.walzen = k, w
	return k, nil
}

func (e *Engine) indices(m *machine.Machine, ciphertext string) ([]int, error) {
	idx, err := m.Alphabet().Indices(ciphertext)
	if err != nil {
		return nil, err
	}
	if len(idx) < 2 {
		return nil, fmt.Errorf("attack: ciphertext of %d letters is too short", len(idx))
	}
	return idx, nil
}

type scored struct {
	cand Candidate
	err  error
}

// Phase1 deciphers the text under every setting of r, plugboard and rings
// as given in r, and keeps the TopK settings by index of coincidence. A
// positive Threshold stops the search as soon as one setting reaches it.
func (e *Engine) Phase1(ctx context.Context, r Range, ciphertext string) ([]Candidate, error) {
	cipher, err := e.indices(r.Machine, ciphertext)
	if err != nil {
		return nil, err
	}
	defer e.metrics.timed(ctx, "phase1")()
	e.log.Info("phase 1 started", "model", r.Machine.Name(), "settings", r.Size(), "workers", e.opts.Workers)

	size := r.Machine.Alphabet().Size()
	stage := func(int) func(machine.Settings) scored {
		cache := &keyCache{m: r.Machine}
		buf := make([]int, len(cipher))
		return func(s machine.Settings) scored {
			k, err := cache.get(s)
			if err != nil {
				return scored{err: err}
			}
			k.EncodeIndices(cipher, buf)
			return scored{cand: Candidate{Settings: s, Score: scoring.IC(buf, size)}}
		}
	}

	top := &topK{k: e.opts.TopK}
	var n int64
	var firstErr error
	err = pipeline(ctx, e.opts.Workers, r.Candidates(), stage, func(res scored) bool {
		if res.err != nil {
			firstErr = res.err
			return false
		}
		n++
		if len(top.items) == 0 || better(res.cand, top.items[0]) {
			e.log.Debug("phase 1 improved", "ic", res.cand.Score, "settings", settingsKey(res.cand.Settings))
			e.metrics.improved(ctx, "phase1")
		}
		top.push(res.cand)
		return e.opts.Threshold <= 0 || res.cand.Score < e.opts.Threshold
	})
	e.metrics.candidates(ctx, "phase1", n)
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, err
	}
	if len(top.items) == 0 {
		return nil, &ExhaustedError{Stage: "phase 1"}
	}
	e.log.Info("phase 1 done", "scored", n, "best_ic", top.items[0].Score)
	return top.items, nil
}

// RefineRings moves the ring settings of the rightmost and then the middle
// rotor, turning its window by the same amount so that the rotor core keeps
// its position, and keeps the ring that scores best. Only the turnover
// points move. It returns the improved key and its score.
func (e *Engine) RefineRings(k *machine.DailyKey, ciphertext []int, score func([]int) float64) (*machine.DailyKey, float64) {
	best := k.Clone()
	buf := make([]int, len(ciphertext))
	best.EncodeIndices(ciphertext, buf)
	bestScore := score(buf)

	size := k.Machine().Alphabet().Size()
	slots := k.Machine().Slots()
	for _, slot := range []int{slots - 1, slots - 2} {
		if slot < 0 {
			continue
		}
		base := best.Clone()
		rings, ground := base.Rings(), base.Ground()
		for d := 1; d < size; d++ {
			rr := append([]int(nil), rings...)
			gg := append([]int(nil), ground...)
			rr[slot] = (rings[slot] + d) % size
			gg[slot] = (ground[slot] + d) % size
			cand := base.Clone()
			if cand.SetRings(rr) != nil || cand.SetGround(gg) != nil {
				continue
			}
			cand.EncodeIndices(ciphertext, buf)
			if s := score(buf); s > bestScore {
				best, bestScore = cand, s
			}
		}
	}
	return best, bestScore
}

// icScore and ngramScore are the two score functions RefineRings runs with.
func (e *Engine) icScore(size int) func([]int) float64 {
	return func(text []int) float64 { return scoring.IC(text, size) }
}

func (e *Engine) ngramScore() func([]int) float64 {
	return func(text []int) float64 { return e.scorer.MeanScore(text, e.opts.Ngram) }
}
