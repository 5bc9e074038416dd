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
	"os"

	"github.com/spf13/cobra"
)

var (
	decodeFlags  keyFlags
	useIndicator bool
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode [ciphertext]",
	Short: "Decipher text with a daily key",
	Long: `Decipher text with a daily key. With --indicator the text starts with a
doubled message key, which is deciphered at the ground setting and used
for the rest.`,
	Run: func(cmd *cobra.Command, args []string) {
		m := loadMachine()
		k := decodeFlags.key(m)
		text := m.Alphabet().Normalize(readInput(args, "Ciphertext"), 0)

		if useIndicator {
			mk, plain, err := k.DecodeMessage(text)
			cobra.CheckErr(err)
			fmt.Fprintln(os.Stderr, "Message key:", mk)
			fmt.Fprintln(cmd.OutOrStdout(), groups(plain, decodeFlags.group))
			return
		}
		plain, err := k.Decode(text)
		cobra.CheckErr(err)
		fmt.Fprintln(cmd.OutOrStdout(), groups(plain, decodeFlags.group))
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeFlags.register(decodeCmd)
	decodeCmd.Flags().BoolVarP(&useIndicator, "indicator", "i", false, "the text starts with a doubled message key")
}
