package attack

import (
	"errors"
	"fmt"

	"github.com/bgallie/mzenigma/machine"
)

var (
	// ErrAttackExhausted is returned when the search space was covered
	// without a candidate reaching the required score.
	ErrAttackExhausted = errors.New("attack: search exhausted")

	// ErrInsufficientIndicators is returned when the doubled indicators do
	// not determine the indicator permutations completely.
	ErrInsufficientIndicators = errors.New("attack: insufficient indicators")

	ErrNoCribPosition = errors.New("attack: crib fits nowhere")
)

// ExhaustedError carries the best candidate seen before giving up, if any.
type ExhaustedError struct {
	Stage     string
	BestScore float64
	Best      *machine.DailyKey
}

func (e *ExhaustedError) Error() string {
	if e.Best == nil {
		return fmt.Sprintf("attack: %s exhausted without a candidate", e.Stage)
	}
	return fmt.Sprintf("attack: %s exhausted, best %.4f for %s", e.Stage, e.BestScore, e.Best)
}

func (e *ExhaustedError) Unwrap() error { return ErrAttackExhausted }
