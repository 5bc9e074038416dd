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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bgallie/mzenigma/attack"
	"github.com/bgallie/mzenigma/catalog"
	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/scoring"
	"github.com/bgallie/mzenigma/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	attackRange rangeFlags
	ngramFile   string
	corpusFile  string
	crib        string
	cribOffset  int
	maxResults  int
	catalogName string
)

// attackCmd represents the attack command
var attackCmd = &cobra.Command{
	Use:   "attack",
	Short: "Recover a daily key from intercepted traffic",
}

var gilloglyCmd = &cobra.Command{
	Use:   "gillogly [ciphertext]",
	Short: "Ciphertext-only attack: index of coincidence, then a plugboard search",
	Run: func(cmd *cobra.Command, args []string) {
		m := loadMachine()
		e, err := attack.New(loadScorer(m), attackOptions(), mustLogger())
		cobra.CheckErr(err)

		text := m.Alphabet().Normalize(readInput(args, "Ciphertext"), 0)
		res, err := e.Attack(cmd.Context(), attackRange.build(m), text)
		var ex *attack.ExhaustedError
		if errors.As(err, &ex) && ex.Best != nil {
			fmt.Fprintf(os.Stderr, "Best candidate %s scored %.4f\n", ex.Best, ex.BestScore)
		}
		cobra.CheckErr(err)
		printResult(cmd.OutOrStdout(), res)
	},
}

var cribCmd = &cobra.Command{
	Use:   "crib [ciphertext]",
	Short: "Known plaintext attack with a crib menu",
	Run: func(cmd *cobra.Command, args []string) {
		if crib == "" {
			cobra.CheckErr("you must supply a crib with --crib")
		}
		m := loadMachine()
		var scorer *scoring.Scorer
		if ngramFile != "" || corpusFile != "" {
			scorer = loadScorer(m)
		}
		e, err := attack.New(scorer, attackOptions(), mustLogger())
		cobra.CheckErr(err)

		text := m.Alphabet().Normalize(readInput(args, "Ciphertext"), 0)
		c := m.Alphabet().Normalize(crib, 0)
		offset := cribOffset
		if offset < 0 {
			menu, err := attack.BestCribPosition(m.Alphabet(), text, c)
			cobra.CheckErr(err)
			offset = menu.Offset
			fmt.Fprintf(os.Stderr, "Crib placed at %d: %d loops, %d components\n", offset, menu.Loops, len(menu.Components))
		}

		results, err := e.CribAttack(cmd.Context(), attackRange.build(m), text, c, offset)
		cobra.CheckErr(err)
		for i, res := range results {
			if i == maxResults {
				break
			}
			printResult(cmd.OutOrStdout(), res)
		}
	},
}

var catalogAttackCmd = &cobra.Command{
	Use:   "catalog [indicator...]",
	Short: "Look the day's doubled indicators up in a characteristic catalog",
	Long: `Look the day's doubled indicators up in a characteristic catalog. The
indicators come from the arguments or, one per line, from stdin. The
catalog is named by --handle and read from the configured store.`,
	Run: func(cmd *cobra.Command, args []string) {
		if catalogName == "" {
			cobra.CheckErr("you must name the catalog with --handle")
		}
		ctx := cmd.Context()
		m := loadMachine()
		e, err := attack.New(nil, attackOptions(), mustLogger())
		cobra.CheckErr(err)

		var c *catalog.Catalog
		cobra.CheckErr(withStore(ctx, func(s storage.Store) (err error) {
			c, err = e.LoadCatalog(ctx, s, catalogName, m)
			return err
		}))

		var indicators []string
		for _, l := range readLines(args, "Indicators") {
			for _, f := range strings.Fields(l) {
				indicators = append(indicators, m.Alphabet().Normalize(f, 0))
			}
		}
		matches, err := e.CatalogAttack(c, m, indicators)
		cobra.CheckErr(err)
		w := cmd.OutOrStdout()
		for _, match := range matches {
			fmt.Fprintln(w, match.Key)
			fmt.Fprintln(w, "  message keys:", strings.Join(match.MessageKeys, " "))
		}
	},
}

// loadScorer reads n-gram counts from --ngrams or trains them on --corpus.
func loadScorer(m *machine.Machine) *scoring.Scorer {
	var counts map[string]int
	switch {
	case ngramFile != "":
		f, err := os.Open(ngramFile)
		cobra.CheckErr(err)
		defer f.Close()
		counts, err = scoring.ReadNgrams(f)
		cobra.CheckErr(err)
	case corpusFile != "":
		b, err := os.ReadFile(corpusFile)
		cobra.CheckErr(err)
		counts = scoring.Train(m.Alphabet(), string(b), scoring.MaxOrder)
	default:
		cobra.CheckErr("you must supply n-gram counts with --ngrams or a corpus with --corpus")
	}
	s, err := scoring.NewScorer(m.Alphabet(), counts)
	cobra.CheckErr(err)
	if t := viper.GetFloat64("attack.temperature"); t > 0 {
		s.SetSATemperature(t)
	}
	return s
}

func printResult(w io.Writer, res *attack.Result) {
	fmt.Fprintf(w, "%s\nscore %.4f\n%s\n", res.Key, res.Score, groups(res.Plaintext, 5))
}

func init() {
	rootCmd.AddCommand(attackCmd)
	attackCmd.AddCommand(gilloglyCmd, cribCmd, catalogAttackCmd)
	attackRange.register(gilloglyCmd)
	attackRange.register(cribCmd)

	for _, c := range []*cobra.Command{gilloglyCmd, cribCmd} {
		c.Flags().StringVar(&ngramFile, "ngrams", "", `n-gram counts, one "NGRAM COUNT" per line`)
		c.Flags().StringVar(&corpusFile, "corpus", "", "plain text to train n-gram counts on")
	}
	cribCmd.Flags().StringVarP(&crib, "crib", "c", "", "known plaintext")
	cribCmd.Flags().IntVarP(&cribOffset, "offset", "o", -1, "crib position, -1 for the menu with the most loops")
	cribCmd.Flags().IntVarP(&maxResults, "results", "n", 5, "results to print")
	catalogAttackCmd.Flags().StringVar(&catalogName, "handle", "", "catalog handle, model/fingerprint")

	attackCmd.PersistentFlags().Int("workers", attack.DefaultOptions().Workers, "parallel workers")
	attackCmd.PersistentFlags().Int64("seed", attack.DefaultOptions().Seed, "random seed")
	attackCmd.PersistentFlags().String("method", string(attack.DefaultOptions().Method), "plugboard search: hillclimb, anneal, shotgun, exchange or mz")
	attackCmd.PersistentFlags().Int("top-k", attack.DefaultOptions().TopK, "phase 1 candidates kept")
	attackCmd.PersistentFlags().Int("ngram", attack.DefaultOptions().Ngram, "n-gram order used for scoring")
	attackCmd.PersistentFlags().Float64("min-score", attack.DefaultOptions().MinScore, "lowest mean n-gram score accepted")
	attackCmd.PersistentFlags().Float64("stop-score", 0, "mean n-gram score that ends the plugboard search early, 0 for none")
	for flag, key := range map[string]string{
		"workers":    "attack.workers",
		"seed":       "attack.seed",
		"method":     "attack.method",
		"top-k":      "attack.top_k",
		"ngram":      "attack.ngram",
		"min-score":  "attack.min_score",
		"stop-score": "attack.stop_score",
	} {
		cobra.CheckErr(viper.BindPFlag(key, attackCmd.PersistentFlags().Lookup(flag)))
	}
}
