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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/registry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	cfgFile    string
	GitCommit  string = "not set"
	GitBranch  string = "not set"
	GitState   string = "not set"
	GitSummary string = "not set"
	BuildDate  string = "not set"
	Version    string = "dev"
)

const envPrefix = "MZENIGMA"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mzenigma",
	Short: "An Enigma simulator and codebreaking workbench",
	Long: `mzenigma simulates the Enigma family of rotor machines and attacks
their traffic: Rejewski's characteristic catalog, crib menus and
Gillogly's ciphertext-only search.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the context the commands run with.
func Execute() {
	rootCmd.Version = Version
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mzenigma.yaml)")
	rootCmd.PersistentFlags().StringP("model", "m", "M3", "machine model")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("store", "file", "catalog store: memory, file, file-ascii85, bolt or sqlite")
	rootCmd.PersistentFlags().String("store-path", "catalogs", "directory or database file of the catalog store")
	cobra.CheckErr(viper.BindPFlags(rootCmd.PersistentFlags()))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".mzenigma" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mzenigma")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadMachine builds the model selected by --model from the historical
// components and any custom ones in the config file.
func loadMachine() *machine.Machine {
	reg, err := registry.Load(viper.GetViper())
	cobra.CheckErr(err)
	m, err := machine.New(reg, viper.GetString("model"))
	cobra.CheckErr(err)
	return m
}

// readInput returns the arguments joined by blanks or, without arguments,
// everything on stdin. A terminal gets a prompt first.
func readInput(args []string, prompt string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "%s (end with Ctrl-D): ", prompt)
	}
	b, err := io.ReadAll(bufio.NewReader(os.Stdin))
	cobra.CheckErr(err)
	return string(b)
}

// readLines is readInput split into non-empty lines.
func readLines(args []string, prompt string) []string {
	if len(args) > 0 {
		return args
	}
	var out []string
	for _, l := range strings.Split(readInput(nil, prompt), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
