package attack

import (
	"fmt"
	"iter"
	"runtime"

	"github.com/bgallie/mzenigma/machine"
)

// Method selects the plugboard search run on the phase 1 survivors.
type Method string

const (
	MethodHillClimb Method = "hillclimb"
	MethodAnneal    Method = "anneal"
	MethodShotgun   Method = "shotgun"
	MethodExchange  Method = "exchange"
	MethodMz        Method = "mz"
)

// Options tunes the engine. Scores compared against MinScore and StopScore
// are mean log10 probabilities per n-gram. Threshold is an index of
// coincidence and only ends phase 1; StopScore ends the shotgun search
// and the candidate loop of Attack. Zero disables either.
type Options struct {
	Workers       int     `mapstructure:"workers"`
	Seed          int64   `mapstructure:"seed"`
	Threshold     float64 `mapstructure:"threshold"`
	StopScore     float64 `mapstructure:"stop_score"`
	MinScore      float64 `mapstructure:"min_score"`
	Restarts      int     `mapstructure:"restarts"`
	Iterations    int     `mapstructure:"iterations"`
	NoImprovement int     `mapstructure:"no_improvement"`
	Anneal        bool    `mapstructure:"anneal"`
	Cooling       float64 `mapstructure:"cooling"`
	Ngram         int     `mapstructure:"ngram"`
	TopK          int     `mapstructure:"top_k"`
	Method        Method  `mapstructure:"method"`
}

func DefaultOptions() Options {
	return Options{
		Workers:       runtime.NumCPU(),
		Seed:          1,
		MinScore:      -3.5,
		Restarts:      16,
		Iterations:    2000,
		NoImprovement: 6,
		Cooling:       0.998,
		Ngram:         3,
		TopK:          10,
		Method:        MethodShotgun,
	}
}

func (o *Options) normalize() error {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.TopK < 1 {
		o.TopK = 1
	}
	if o.Restarts < 1 {
		o.Restarts = 1
	}
	if o.NoImprovement < 1 {
		o.NoImprovement = 1
	}
	if o.Cooling <= 0 || o.Cooling >= 1 {
		o.Cooling = DefaultOptions().Cooling
	}
	switch o.Method {
	case "":
		o.Method = MethodShotgun
	case MethodHillClimb, MethodAnneal, MethodShotgun, MethodExchange, MethodMz:
	default:
		return fmt.Errorf("attack: unknown method %q", o.Method)
	}
	return nil
}

// Range is the part of the key space a search covers. Nil slices mean
// everything the machine admits. Rings and Plugs are held fixed.
type Range struct {
	Machine    *machine.Machine
	Reflectors []string
	Orders     [][]string
	Positions  []string
	Rings      string
	Plugs      string
}

func (r Range) reflectors() []string {
	if r.Reflectors != nil {
		return r.Reflectors
	}
	return r.Machine.Reflectors()
}

func (r Range) orders() [][]string {
	if r.Orders != nil {
		return r.Orders
	}
	return r.Machine.RotorOrders()
}

// Size is the number of settings Candidates yields.
func (r Range) Size() int {
	positions := len(r.Positions)
	if r.Positions == nil {
		positions = 1
		for i := 0; i < r.Machine.Slots(); i++ {
			positions *= r.Machine.Alphabet().Size()
		}
	}
	return len(r.reflectors()) * len(r.orders()) * positions
}

// Candidates enumerates reflector, rotor order and ground setting, the
// ground setting varying fastest.
func (r Range) Candidates() iter.Seq[machine.Settings] {
	return func(yield func(machine.Settings) bool) {
		for _, refl := range r.reflectors() {
			for _, order := range r.orders() {
				for pos := range r.positions() {
					s := machine.Settings{
						Reflector: refl,
						Rotors:    order,
						Rings:     r.Rings,
						Positions: pos,
						Plugs:     r.Plugs,
					}
					if !yield(s) {
						return
					}
				}
			}
		}
	}
}

func (r Range) positions() iter.Seq[string] {
	if r.Positions != nil {
		return func(yield func(string) bool) {
			for _, p := range r.Positions {
				if !yield(p) {
					return
				}
			}
		}
	}
	return AllPositions(r.Machine)
}

// AllPositions counts through every window setting of m, the rightmost
// rotor fastest.
func AllPositions(m *machine.Machine) iter.Seq[string] {
	return func(yield func(string) bool) {
		a := m.Alphabet()
		idx := make([]int, m.Slots())
		for {
			if !yield(a.Text(idx)) {
				return
			}
			i := len(idx) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < a.Size() {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}
