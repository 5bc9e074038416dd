package attack

import (
	"context"

	"github.com/bgallie/mzenigma/machine"
)

// Attack runs the whole ciphertext-only attack over r: phase 1 by index of
// coincidence, ring refinement on each survivor, the plugboard search of
// Options.Method, ring refinement by n-grams on the winner and a last hill
// climb. A best mean score below MinScore ends in *ExhaustedError.
func (e *Engine) Attack(ctx context.Context, r Range, ciphertext string) (*Result, error) {
	if err := e.needScorer(); err != nil {
		return nil, err
	}
	cipher, err := e.indices(r.Machine, ciphertext)
	if err != nil {
		return nil, err
	}
	defer e.metrics.timed(ctx, "attack")()

	candidates, err := e.Phase1(ctx, r, ciphertext)
	if err != nil {
		return nil, err
	}

	best := &bestSlot{}
	ic := e.icScore(r.Machine.Alphabet().Size())
	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k, err := r.Machine.NewKey(cand.Settings)
		if err != nil {
			return nil, err
		}
		k, refined := e.RefineRings(k, cipher, ic)
		e.log.Info("phase 2 started", "candidate", i, "ic", cand.Score, "refined_ic", refined, "key", k.String())

		var res *Result
		if r.Machine.Plugboard() == machine.PlugboardFree {
			res, err = e.Phase2(ctx, k, ciphertext)
			if err != nil {
				return nil, err
			}
		} else {
			res = e.score(k, cipher)
		}
		if best.offer(res.Score, res.Key) {
			e.log.Info("phase 2 improved", "candidate", i, "score", res.Score, "key", res.Key.String())
		}
		if e.reached(res.Score) {
			e.log.Info("stop score reached", "candidate", i, "score", res.Score)
			break
		}
	}

	_, k, _ := best.get()
	k, _ = e.RefineRings(k, cipher, e.ngramScore())
	res := e.score(k, cipher)
	if r.Machine.Plugboard() == machine.PlugboardFree {
		if res, err = e.HillClimb(k, ciphertext); err != nil {
			return nil, err
		}
	}

	e.log.Info("attack done", "score", res.Score, "key", res.Key.String())
	if res.Score < e.opts.MinScore {
		return nil, &ExhaustedError{Stage: "attack", BestScore: res.Score, Best: res.Key}
	}
	return res, nil
}

// score deciphers with k as it is.
func (e *Engine) score(k *machine.DailyKey, cipher []int) *Result {
	plain := make([]int, len(cipher))
	k.EncodeIndices(cipher, plain)
	return &Result{
		Key:       k.Clone(),
		Score:     e.scorer.MeanScore(plain, e.opts.Ngram),
		Plaintext: k.Machine().Alphabet().Text(plain),
	}
}
