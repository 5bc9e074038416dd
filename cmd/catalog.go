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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bgallie/mzenigma/attack"
	"github.com/bgallie/mzenigma/catalog"
	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rangeFlags select the part of the key space a catalog or an attack covers.
type rangeFlags struct {
	reflectors string
	orders     string
	positions  string
	rings      string
	plugs      string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.reflectors, "reflectors", "", `reflectors to try, e.g. "B C" (default all the model admits)`)
	cmd.Flags().StringVar(&f.orders, "orders", "", `rotor orders to try, separated by ";", e.g. "I II III; II I III" (default all)`)
	cmd.Flags().StringVar(&f.positions, "positions", "", `ground settings to try, e.g. "AAA KDO" (default all)`)
	cmd.Flags().StringVar(&f.rings, "rings", "", "ring settings held fixed (default all A)")
	cmd.Flags().StringVar(&f.plugs, "plugs", "", "plugboard pairs held fixed")
}

func (f *rangeFlags) build(m *machine.Machine) attack.Range {
	r := attack.Range{Machine: m, Rings: f.rings, Plugs: f.plugs}
	if f.reflectors != "" {
		r.Reflectors = strings.Fields(f.reflectors)
	}
	if f.orders != "" {
		for _, o := range strings.Split(f.orders, ";") {
			if order := strings.Fields(o); len(order) > 0 {
				r.Orders = append(r.Orders, order)
			}
		}
	}
	if f.positions != "" {
		r.Positions = strings.Fields(strings.ToUpper(f.positions))
	}
	return r
}

// withStore opens the configured store, runs fn on it and closes it
// again, so that the store is closed before any error reaches
// cobra.CheckErr.
func withStore(ctx context.Context, fn func(storage.Store) error) error {
	s, err := storage.NewStore(viper.GetString("store"), viper.GetString("store-path"))
	if err != nil {
		return err
	}
	if err := s.Init(ctx); err != nil {
		return errors.Join(err, storage.CloseIfSupported(s))
	}
	return errors.Join(fn(s), storage.CloseIfSupported(s))
}

// attackOptions reads the "attack" section of the configuration over the
// defaults. The keys with a flag are read one by one, since viper leaves
// flag values out of a section it unmarshals.
func attackOptions() attack.Options {
	opts := attack.DefaultOptions()
	cobra.CheckErr(viper.UnmarshalKey("attack", &opts))
	set := func(key string, apply func(string)) {
		if viper.IsSet(key) {
			apply(key)
		}
	}
	set("attack.workers", func(k string) { opts.Workers = viper.GetInt(k) })
	set("attack.seed", func(k string) { opts.Seed = viper.GetInt64(k) })
	set("attack.method", func(k string) { opts.Method = attack.Method(viper.GetString(k)) })
	set("attack.top_k", func(k string) { opts.TopK = viper.GetInt(k) })
	set("attack.ngram", func(k string) { opts.Ngram = viper.GetInt(k) })
	set("attack.min_score", func(k string) { opts.MinScore = viper.GetFloat64(k) })
	set("attack.stop_score", func(k string) { opts.StopScore = viper.GetFloat64(k) })
	return opts
}

var catalogRange rangeFlags

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Build, check and list characteristic catalogs",
}

var catalogCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File the characteristic of every ground setting in the range",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		m := loadMachine()
		e, err := attack.New(nil, attackOptions(), mustLogger())
		cobra.CheckErr(err)

		c, err := e.CreateCatalog(ctx, catalogRange.build(m))
		cobra.CheckErr(err)
		cobra.CheckErr(withStore(ctx, func(s storage.Store) error {
			handle, err := s.Save(ctx, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d entries\t%d characteristics\n", handle, c.Len(), c.Characteristics())
			return nil
		}))
	},
}

var checkStride int

var catalogCheckCmd = &cobra.Command{
	Use:   "check handle...",
	Short: "Check stored catalogs against the model",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		m := loadMachine()
		cobra.CheckErr(withStore(ctx, func(s storage.Store) error {
			for _, handle := range args {
				c, err := s.Load(ctx, handle)
				if err != nil {
					return err
				}
				if err := catalog.Check(c, m, checkStride); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tok\t%d entries\n", handle, c.Len())
			}
			return nil
		}))
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored catalogs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		var handles []string
		cobra.CheckErr(withStore(ctx, func(s storage.Store) (err error) {
			handles, err = s.List(ctx)
			return err
		}))
		for _, h := range handles {
			fmt.Fprintln(cmd.OutOrStdout(), h)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogCreateCmd, catalogCheckCmd, catalogListCmd)
	catalogRange.register(catalogCreateCmd)
	catalogCheckCmd.Flags().IntVar(&checkStride, "stride", 1, "recompute every n-th characteristic")
}
