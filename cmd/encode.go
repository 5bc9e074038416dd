/*
Copyright © 2021 Billy G. Allie <bill.allie@defiant.mug.org>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/bgallie/mzenigma/machine"
	"github.com/spf13/cobra"
)

// keyFlags holds the daily key given on the command line.
type keyFlags struct {
	reflector  string
	rotors     string
	rings      string
	positions  string
	plugs      string
	messageKey string
	blank      string
	group      int
}

func (f *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.reflector, "reflector", "u", "", "reflector (default is the model's first)")
	cmd.Flags().StringVarP(&f.rotors, "rotors", "w", "", `rotor order, leftmost first, e.g. "II I III" (default is the model's first order)`)
	cmd.Flags().StringVarP(&f.rings, "rings", "r", "", "ring settings, one letter per rotor (default all A)")
	cmd.Flags().StringVarP(&f.positions, "positions", "p", "", "ground setting, one letter per rotor (default all A)")
	cmd.Flags().StringVarP(&f.plugs, "plugs", "s", "", `plugboard pairs, e.g. "AB CD EF"`)
	cmd.Flags().StringVarP(&f.messageKey, "message-key", "k", "", "message key for the doubled indicator")
	cmd.Flags().StringVarP(&f.blank, "blank", "b", "", "letter that replaces blanks in the input (default is to drop them)")
	cmd.Flags().IntVarP(&f.group, "group", "g", 5, "letters per output group, 0 for none")
}

func (f *keyFlags) key(m *machine.Machine) *machine.DailyKey {
	s := machine.Settings{
		Reflector: f.reflector,
		Rotors:    strings.Fields(strings.ReplaceAll(f.rotors, ",", " ")),
		Rings:     f.rings,
		Positions: f.positions,
		Plugs:     f.plugs,
	}
	if s.Reflector == "" {
		s.Reflector = m.Reflectors()[0]
	}
	if len(s.Rotors) == 0 {
		s.Rotors = m.RotorOrders()[0]
	}
	k, err := m.NewKey(s)
	cobra.CheckErr(err)
	return k
}

// normalize keeps the letters the machine has, turning blanks into the
// --blank letter when one is given.
func (f *keyFlags) normalize(m *machine.Machine, text string) string {
	var blank rune
	if f.blank != "" {
		blank = []rune(strings.ToUpper(f.blank))[0]
	}
	return m.Alphabet().Normalize(text, blank)
}

func groups(text string, n int) string {
	if n <= 0 {
		return text
	}
	r := []rune(text)
	var parts []string
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	parts = append(parts, string(r))
	return strings.Join(parts, " ")
}

var encodeFlags keyFlags

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Encipher text with a daily key",
	Long: `Encipher text with a daily key. With --message-key the key is typed
twice at the ground setting and the text is enciphered from the message
key, the way operators did before May 1940.`,
	Run: func(cmd *cobra.Command, args []string) {
		m := loadMachine()
		k := encodeFlags.key(m)
		text := encodeFlags.normalize(m, readInput(args, "Plaintext"))

		var out string
		var err error
		if encodeFlags.messageKey != "" {
			out, err = k.EncodeMessage(strings.ToUpper(encodeFlags.messageKey), text)
		} else {
			out, err = k.Encode(text)
		}
		cobra.CheckErr(err)
		fmt.Fprintln(cmd.OutOrStdout(), groups(out, encodeFlags.group))
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeFlags.register(encodeCmd)
}
