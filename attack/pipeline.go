package attack

import (
	"context"
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/bgallie/mzenigma/machine"
)

// pipeline feeds items into a left channel, runs workers scoring stages
// that each read left and write right, and hands every result to collect
// in the calling goroutine. collect returning false cancels the feeder and
// the stages. stage is called once per worker before any item flows, so it
// can set up per-worker state such as a cloned key or an RNG.
func pipeline[T, R any](ctx context.Context, workers int, items iter.Seq[T], stage func(worker int) func(T) R, collect func(R) bool) error {
	run, cancel := context.WithCancel(ctx)
	defer cancel()

	left := make(chan T)
	go func() {
		defer close(left)
		for it := range items {
			select {
			case left <- it:
			case <-run.Done():
				return
			}
		}
	}()

	right := make(chan R)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(apply func(T) R) {
			defer wg.Done()
			for it := range left {
				out := apply(it)
				select {
				case right <- out:
				case <-run.Done():
					return
				}
			}
		}(stage(w))
	}
	go func() {
		wg.Wait()
		close(right)
	}()

	stopped := false
	for out := range right {
		if !stopped && !collect(out) {
			stopped = true
			cancel()
		}
	}
	return ctx.Err()
}

// Candidate is a scored key setting.
type Candidate struct {
	Settings machine.Settings
	Score    float64
}

func settingsKey(s machine.Settings) string {
	return s.Reflector + "|" + strings.Join(s.Rotors, " ") + "|" + s.Rings + "|" + s.Positions + "|" + s.Plugs
}

// better orders candidates by score, then by their written settings so
// that equal scores resolve the same way on every run.
func better(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return settingsKey(a.Settings) < settingsKey(b.Settings)
}

// topK keeps the k best candidates seen, best first.
type topK struct {
	k     int
	items []Candidate
}

func (t *topK) push(c Candidate) {
	if len(t.items) == t.k && !better(c, t.items[len(t.items)-1]) {
		return
	}
	i := sort.Search(len(t.items), func(i int) bool { return better(c, t.items[i]) })
	t.items = append(t.items, Candidate{})
	copy(t.items[i+1:], t.items[i:])
	t.items[i] = c
	if len(t.items) > t.k {
		t.items = t.items[:t.k]
	}
}

// bestSlot is the best key found so far, shared between workers.
type bestSlot struct {
	mu    sync.Mutex
	set   bool
	score float64
	key   *machine.DailyKey
}

// offer installs a copy of k when score beats the current best. Equal
// scores go to the lexicographically smaller plugboard.
func (b *bestSlot) offer(score float64, k *machine.DailyKey) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case !b.set, score > b.score:
	case score == b.score && k.Plugboard().Less(b.key.Plugboard()):
	default:
		return false
	}
	b.set, b.score, b.key = true, score, k.Clone()
	return true
}

func (b *bestSlot) get() (float64, *machine.DailyKey, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.set {
		return 0, nil, false
	}
	return b.score, b.key.Clone(), true
}
