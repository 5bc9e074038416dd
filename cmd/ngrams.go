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

	"github.com/bgallie/mzenigma/scoring"
	"github.com/spf13/cobra"
)

var (
	ngramOrder int
	showIC     bool
)

// ngramsCmd represents the ngrams command
var ngramsCmd = &cobra.Command{
	Use:   "ngrams [corpus]",
	Short: "Count the n-grams of a corpus for the attack commands",
	Long: `Count the n-grams of a corpus, read from the file named by the
argument or from stdin, and write them as "NGRAM COUNT" lines that
attack --ngrams reads back.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := loadMachine()
		var text string
		if len(args) == 1 {
			b, err := os.ReadFile(args[0])
			cobra.CheckErr(err)
			text = string(b)
		} else {
			text = readInput(nil, "Corpus")
		}
		text = m.Alphabet().Normalize(text, 0)
		if showIC {
			ic, err := scoring.IndexOfCoincidence(text, m.Alphabet())
			cobra.CheckErr(err)
			fmt.Fprintf(os.Stderr, "%d letters, index of coincidence %.4f\n", len([]rune(text)), ic)
		}
		cobra.CheckErr(scoring.WriteNgrams(cmd.OutOrStdout(), scoring.Train(m.Alphabet(), text, ngramOrder)))
	},
}

func init() {
	rootCmd.AddCommand(ngramsCmd)
	ngramsCmd.Flags().IntVarP(&ngramOrder, "order", "n", scoring.MaxOrder, "longest n-gram counted")
	ngramsCmd.Flags().BoolVar(&showIC, "ic", false, "report the corpus index of coincidence on stderr")
}
