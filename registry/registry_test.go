package registry

import (
	"bytes"
	"testing"

	"github.com/bgallie/mzenigma/cryptors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestHistorical(t *testing.T) {
	reg := Historical()
	require.Equal(t, []string{"A", "D", "G312", "I", "M3", "M4", "N", "SGS", "T"}, reg.Models())

	m3, err := reg.Model("M3")
	require.NoError(t, err)
	require.Equal(t, 3, m3.Slots)
	require.Equal(t, PlugboardFree, m3.Plugboard)
	require.Equal(t, 13, m3.MaxPairs)
	require.Len(t, m3.Rotors, 8)

	sgs, err := reg.Model("SGS")
	require.NoError(t, err)
	require.Equal(t, PlugboardNone, sgs.Plugboard)
	a, err := reg.Alphabet(sgs.Alphabet)
	require.NoError(t, err)
	require.Equal(t, 28, a.Size())

	for _, name := range reg.Reflectors() {
		f, err := reg.Reflector(name)
		require.NoError(t, err)
		for c, v := range f.Wiring() {
			require.NotEqual(t, c, v, "reflector %s", name)
		}
	}
}

func TestRotorCopies(t *testing.T) {
	reg := Historical()
	r1, err := reg.Rotor("VI")
	require.NoError(t, err)
	require.Equal(t, []int{12, 25}, r1.Notches())
	require.NoError(t, r1.SetOffset(4))

	r2, err := reg.Rotor("VI")
	require.NoError(t, err)
	require.Zero(t, r2.Offset(), "lookups hand out fresh copies")

	beta, err := reg.Rotor("Beta")
	require.NoError(t, err)
	require.True(t, beta.Stationary())

	_, err = reg.Rotor("IX")
	require.ErrorIs(t, err, ErrUnknownComponent)
	_, err = reg.Reflector("Z")
	require.ErrorIs(t, err, ErrUnknownComponent)
	_, err = reg.Model("Enigma Z")
	require.ErrorIs(t, err, ErrUnknownComponent)
}

func TestModelMutationDoesNotLeak(t *testing.T) {
	reg := Historical()
	m, err := reg.Model("I")
	require.NoError(t, err)
	m.Rotors[0] = "VIII"

	again, err := reg.Model("I")
	require.NoError(t, err)
	require.Equal(t, "I", again.Rotors[0])
}

func TestNewRejectsBadSpecs(t *testing.T) {
	rotors, reflectors, models := HistoricalSpecs()

	_, err := New(append(rotors, RotorSpec{Name: "I", Wiring: "ABCDEFGHIJKLMNOPQRSTUVWXYZ"}), reflectors, models)
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = New(rotors, append(reflectors, ReflectorSpec{Name: "X", Wiring: "ABCDEFGHIJKLMNOPQRSTUVWXYZ"}), models)
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = New(rotors, reflectors, append(models, ModelSpec{Name: "X", Rotors: []string{"I", "nope"}, Reflectors: []string{"B"}, Slots: 2}))
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = New(rotors, reflectors, append(models, ModelSpec{Name: "X", Rotors: []string{"I", "I-SGS"}, Reflectors: []string{"B"}, Slots: 2}))
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = New(rotors, reflectors, append(models, ModelSpec{Name: "X", Rotors: []string{"I", "II"}, Reflectors: []string{"B"}, Slots: 3}))
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)

	_, err = New(rotors, reflectors, append(models, ModelSpec{Name: "X", Rotors: []string{"I", "II"}, Reflectors: []string{"B"}, Slots: 2, Plugboard: "mark2"}))
	require.ErrorIs(t, err, cryptors.ErrInvalidWiring)
}

const customConfig = `
components:
  rotors:
    - name: X1
      wiring: BDFHJLCPRTXVZNYEIWGAKMUSQO
      notches: AN
  models:
    - name: Custom
      rotors: [I, II, X1]
      reflectors: [B]
      slots: 3
      plugboard: fixed
      fixed_pairs: AZ BY
`

func TestLoad(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(customConfig)))

	reg, err := Load(v)
	require.NoError(t, err)
	require.Contains(t, reg.Models(), "Custom")
	require.Contains(t, reg.Models(), "M4")

	x1, err := reg.Rotor("X1")
	require.NoError(t, err)
	require.Equal(t, []int{0, 13}, x1.Notches())

	custom, err := reg.Model("Custom")
	require.NoError(t, err)
	require.Equal(t, PlugboardFixed, custom.Plugboard)
	require.Equal(t, "AZ BY", custom.FixedPairs)

	plain, err := Load(nil)
	require.NoError(t, err)
	require.NotContains(t, plain.Models(), "Custom")
}
