package machine

import (
	"fmt"

	"github.com/bgallie/mzenigma/cryptors"
)

// EncodeMessage enciphers text the way operators did before May 1940: the
// message key (one letter per rotor) is typed twice at the ground
// setting, the rotors are turned to the message key and the text
// follows. The result is the six (or eight) letter indicator followed by
// the ciphertext.
func (k *DailyKey) EncodeMessage(messageKey, text string) (string, error) {
	a := k.machine.alphabet
	mk, err := a.Indices(messageKey)
	if err != nil {
		return "", err
	}
	if len(mk) != len(k.ground) {
		return "", &cryptors.KeyError{Field: "message key", Reason: fmt.Sprintf("%d letters for %d rotors", len(mk), len(k.ground))}
	}
	body, err := a.Indices(text)
	if err != nil {
		return "", err
	}

	out := make([]int, 0, 2*len(mk)+len(body))
	k.Reset()
	for n := 0; n < 2; n++ {
		for _, c := range mk {
			out = append(out, k.chain.Press(c))
		}
	}
	enc, err := k.pressFrom(mk, body)
	k.Reset()
	if err != nil {
		return "", err
	}
	return a.Text(append(out, enc...)), nil
}

// DecodeMessage reverses EncodeMessage and returns the message key and
// the plaintext. Halves of the indicator that disagree mean the ground
// setting is wrong and fail with ErrInvalidKey.
func (k *DailyKey) DecodeMessage(ciphertext string) (messageKey, text string, err error) {
	a := k.machine.alphabet
	idx, err := a.Indices(ciphertext)
	if err != nil {
		return "", "", err
	}
	n := len(k.ground)
	if len(idx) < 2*n {
		return "", "", &cryptors.KeyError{Field: "indicator", Reason: "message shorter than the doubled key"}
	}

	ind := make([]int, 2*n)
	k.Reset()
	for i := range ind {
		ind[i] = k.chain.Press(idx[i])
	}
	for i := 0; i < n; i++ {
		if ind[i] != ind[i+n] {
			k.Reset()
			return "", "", &cryptors.KeyError{
				Field:  "indicator",
				Reason: fmt.Sprintf("doubled key %s is inconsistent", a.Text(ind)),
			}
		}
	}

	body, err := k.pressFrom(ind[:n], idx[2*n:])
	k.Reset()
	if err != nil {
		return "", "", err
	}
	return a.Text(ind[:n]), a.Text(body), nil
}

// pressFrom turns the rotors to start and enciphers src.
func (k *DailyKey) pressFrom(start, src []int) ([]int, error) {
	if err := k.chain.SetOffsets(start); err != nil {
		return nil, err
	}
	out := make([]int, len(src))
	for i, c := range src {
		out[i] = k.chain.Press(c)
	}
	return out, nil
}
