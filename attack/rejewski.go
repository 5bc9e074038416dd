package attack

import (
	"context"
	"fmt"

	"github.com/bgallie/mzenigma/catalog"
	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/machine"
)

// checkSample is roughly how many entries LoadCatalog recomputes.
const checkSample = 64

// Loader is the read side of a catalog store.
type Loader interface {
	Load(ctx context.Context, handle string) (*catalog.Catalog, error)
}

// CreateCatalog files the characteristic of every setting of r. The
// plugboard plays no part in a characteristic, so r.Plugs is ignored.
func (e *Engine) CreateCatalog(ctx context.Context, r Range) (*catalog.Catalog, error) {
	defer e.metrics.timed(ctx, "catalog")()
	r.Plugs = ""
	e.log.Info("catalog build started", "model", r.Machine.Name(), "settings", r.Size(), "workers", e.opts.Workers)

	type filed struct {
		entry catalog.Entry
		err   error
	}
	stage := func(int) func(machine.Settings) filed {
		cache := &keyCache{m: r.Machine}
		return func(s machine.Settings) filed {
			k, err := cache.get(s)
			if err != nil {
				return filed{err: err}
			}
			return filed{entry: catalog.NewEntry(k)}
		}
	}

	c := catalog.New(r.Machine)
	var firstErr error
	err := pipeline(ctx, e.opts.Workers, r.Candidates(), stage, func(f filed) bool {
		if f.err != nil {
			firstErr = f.err
			return false
		}
		c.Add(f.entry)
		return true
	})
	e.metrics.candidates(ctx, "catalog", int64(c.Len()))
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, err
	}
	c.Seal()
	e.log.Info("catalog built", "entries", c.Len(), "characteristics", c.Characteristics(), "handle", c.Handle())
	return c, nil
}

// LoadCatalog reads a catalog and checks it against m, recomputing a
// sample of the characteristics.
func (e *Engine) LoadCatalog(ctx context.Context, l Loader, handle string, m *machine.Machine) (*catalog.Catalog, error) {
	c, err := l.Load(ctx, handle)
	if err != nil {
		return nil, err
	}
	if err := catalog.Check(c, m, c.Len()/checkSample+1); err != nil {
		return nil, err
	}
	e.log.Info("catalog loaded", "handle", handle, "entries", c.Len())
	return c, nil
}

// CatalogMatch is a ground setting whose characteristic matches the day's
// indicators. MessageKeys are the indicators deciphered at that setting
// without a plugboard; they are right only for unplugged letters.
type CatalogMatch struct {
	Entry       catalog.Entry
	Key         *machine.DailyKey
	MessageKeys []string
}

// IndicatorProducts rebuilds the permutations that take letter i of a
// doubled indicator to letter i+n, for n letter message keys. Every letter
// must occur at every position i.
func IndicatorProducts(a *cryptors.Alphabet, indicators []string, n int) ([][]int, error) {
	size := a.Size()
	products := make([][]int, n)
	inverse := make([][]int, n)
	for i := range products {
		products[i] = make([]int, size)
		inverse[i] = make([]int, size)
		for c := range products[i] {
			products[i][c], inverse[i][c] = -1, -1
		}
	}

	for d := range machine.IndicatorDoublets(indicators, n) {
		f, ok1 := a.Index(d.First)
		s, ok2 := a.Index(d.Second)
		if !ok1 || !ok2 {
			return nil, &cryptors.CharacterError{Char: d.First, Pos: d.Offset}
		}
		p, inv := products[d.Offset], inverse[d.Offset]
		if (p[f] != -1 && p[f] != s) || (inv[s] != -1 && inv[s] != f) {
			return nil, &cryptors.KeyError{
				Field:  "indicator",
				Reason: fmt.Sprintf("indicator %d contradicts earlier ones at position %d", d.Source, d.Offset),
			}
		}
		p[f], inv[s] = s, f
	}

	for i, p := range products {
		missing := 0
		for _, v := range p {
			if v == -1 {
				missing++
			}
		}
		if missing > 0 {
			return nil, fmt.Errorf("%w: position %d lacks %d of %d letters", ErrInsufficientIndicators, i, missing, size)
		}
	}
	return products, nil
}

// CatalogAttack looks the day's doubled indicators up in cat. The
// characteristic survives any plugboard, so the matches give rotor order
// and ground setting and leave the plugboard to phase 2.
func (e *Engine) CatalogAttack(cat *catalog.Catalog, m *machine.Machine, indicators []string) ([]CatalogMatch, error) {
	if cat.Model != m.Name() {
		return nil, &catalog.InconsistencyError{Reason: fmt.Sprintf("catalog for %s used on %s", cat.Model, m.Name())}
	}
	n := m.Slots()
	products, err := IndicatorProducts(m.Alphabet(), indicators, n)
	if err != nil {
		return nil, err
	}
	ch := catalog.Characteristic(products)
	e.log.Info("catalog lookup", "characteristic", ch, "indicators", len(indicators))

	entries := cat.Lookup(ch)
	if len(entries) == 0 {
		return nil, &ExhaustedError{Stage: "catalog"}
	}

	a := m.Alphabet()
	matches := make([]CatalogMatch, 0, len(entries))
	for _, entry := range entries {
		k, err := m.NewKey(entry.Settings())
		if err != nil {
			return nil, err
		}
		matrices := make([][]int, n)
		for i := range matrices {
			matrices[i] = k.EncodeMatrix(i)
		}
		var keys []string
		for _, ind := range indicators {
			idx, err := a.Indices(ind)
			if err != nil || len(idx) < 2*n {
				continue
			}
			mk := make([]int, n)
			for i := range mk {
				mk[i] = matrices[i][idx[i]]
			}
			keys = append(keys, a.Text(mk))
		}
		matches = append(matches, CatalogMatch{Entry: entry, Key: k, MessageKeys: keys})
	}
	return matches, nil
}
