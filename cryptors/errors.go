package cryptors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWiring is returned for a permutation that cannot be built:
	// not a bijection, a reflector with a fixed point or overlapping plugs.
	ErrInvalidWiring = errors.New("cryptors: invalid wiring")

	// ErrInvalidKey is returned for rotor, ring or position values outside
	// of what the machine admits.
	ErrInvalidKey = errors.New("cryptors: invalid key")

	// ErrInvalidCharacter is returned for a symbol outside the alphabet.
	ErrInvalidCharacter = errors.New("cryptors: invalid character")
)

// WiringError describes why a component could not be constructed.
type WiringError struct {
	Component string
	Reason    string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("cryptors: invalid wiring of %s: %s", e.Component, e.Reason)
}

func (e *WiringError) Unwrap() error { return ErrInvalidWiring }

// KeyError describes a rejected key setting. Err, when set, is the error
// of the component that refused the setting.
type KeyError struct {
	Field  string
	Reason string
	Err    error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("cryptors: invalid key: %s: %s", e.Field, e.Reason)
}

func (e *KeyError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidKey, e.Err}
	}
	return []error{ErrInvalidKey}
}

// CharacterError reports the first rune outside the alphabet and its
// position in the input counted in runes.
type CharacterError struct {
	Char rune
	Pos  int
}

func (e *CharacterError) Error() string {
	return fmt.Sprintf("cryptors: invalid character %q at position %d", e.Char, e.Pos)
}

func (e *CharacterError) Unwrap() error { return ErrInvalidCharacter }
