package machine

import (
	"github.com/bgallie/mzenigma/cryptors"
	"github.com/bgallie/mzenigma/cryptors/permutator"
	"github.com/bgallie/mzenigma/cryptors/rotor"
)

// Chain is one electrical pass through the machine. The stages live in a
// flat arena ordered the way the signal first meets them:
//
//	[plugboard, rightmost rotor, ..., leftmost rotor, reflector]
//
// so the neighbour of stage i is i-1 or i+1 and no stage points at another.
type Chain struct {
	stages    []cryptors.Stage
	rotors    []*rotor.Rotor // left to right, extra wheel first
	stepping  []*rotor.Rotor // rotors that move, left to right
	plugboard *permutator.Plugboard
	reflector *permutator.Reflector
}

// NewChain assembles the arena. rotors are given left to right as they
// sit in the machine.
func NewChain(pb *permutator.Plugboard, rotors []*rotor.Rotor, reflector *permutator.Reflector) *Chain {
	c := &Chain{
		rotors:    rotors,
		plugboard: pb,
		reflector: reflector,
	}
	c.stages = append(c.stages, pb)
	for i := len(rotors) - 1; i >= 0; i-- {
		c.stages = append(c.stages, rotors[i])
	}
	c.stages = append(c.stages, reflector)

	for _, r := range rotors {
		if !r.Stationary() {
			c.stepping = append(c.stepping, r)
		}
	}
	return c
}

// Step advances the rotors for one key press. Working right to left, a
// rotor moves when its right neighbour carried on its own step, the
// rightmost one always; a rotor that is neither rightmost nor leftmost also
// moves when it sits at its own notch, which makes the middle rotor of a
// three rotor machine step twice in a row (ADU, ADV, AEW, BFX).
func (c *Chain) Step() {
	n := len(c.stepping)
	carry := true
	for j := n - 1; j >= 0; j-- {
		r := c.stepping[j]
		advance := carry || (j > 0 && j < n-1 && r.AtNotch())
		carry = false
		if advance {
			carry = r.Step()
		}
	}
}

// Resolve sends c through the frozen chain: forward up to the reflector
// and back through the same stages.
func (c *Chain) Resolve(x int) int {
	last := len(c.stages) - 1
	for i := 0; i < last; i++ {
		x = c.stages[i].Forward(x)
	}
	x = c.stages[last].Forward(x)
	for i := last - 1; i >= 0; i-- {
		x = c.stages[i].Backward(x)
	}
	return x
}

// resolveCore is Resolve without the plugboard.
func (c *Chain) resolveCore(x int) int {
	last := len(c.stages) - 1
	for i := 1; i < last; i++ {
		x = c.stages[i].Forward(x)
	}
	x = c.stages[last].Forward(x)
	for i := last - 1; i >= 1; i-- {
		x = c.stages[i].Backward(x)
	}
	return x
}

// Press is one key press: step, then resolve.
func (c *Chain) Press(x int) int {
	c.Step()
	return c.Resolve(x)
}

// Path returns the signal after every stage, forward and backward.
func (c *Chain) Path(x int) []int {
	last := len(c.stages) - 1
	path := make([]int, 0, 2*last+1)
	for i := 0; i <= last; i++ {
		x = c.stages[i].Forward(x)
		path = append(path, x)
	}
	for i := last - 1; i >= 0; i-- {
		x = c.stages[i].Backward(x)
		path = append(path, x)
	}
	return path
}

// Offsets returns the window positions, left to right.
func (c *Chain) Offsets() []int {
	off := make([]int, len(c.rotors))
	for i, r := range c.rotors {
		off[i] = r.Offset()
	}
	return off
}

// SetOffsets moves all rotors, left to right.
func (c *Chain) SetOffsets(off []int) error {
	for i, r := range c.rotors {
		if err := r.SetOffset(off[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) Rotors() []*rotor.Rotor {
	return c.rotors
}

func (c *Chain) Plugboard() *permutator.Plugboard {
	return c.plugboard
}

func (c *Chain) Reflector() *permutator.Reflector {
	return c.reflector
}

// Clone returns a chain with its own rotors and plugboard. The reflector is
// immutable and shared.
func (c *Chain) Clone() *Chain {
	rotors := make([]*rotor.Rotor, len(c.rotors))
	for i, r := range c.rotors {
		rotors[i] = r.Clone()
	}
	return NewChain(c.plugboard.Clone(), rotors, c.reflector)
}
