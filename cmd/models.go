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
	"text/tabwriter"

	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/registry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the machine models and their components",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registry.Load(viper.GetViper())
		cobra.CheckErr(err)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tSLOTS\tPLUGBOARD\tROTORS\tREFLECTORS")
		for _, name := range reg.Models() {
			m, err := machine.New(reg, name)
			cobra.CheckErr(err)
			rotors := strings.Join(m.Rotors(), " ")
			if extra := m.ExtraWheels(); len(extra) > 0 {
				rotors = strings.Join(extra, " ") + " | " + rotors
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", name, m.Slots(), m.Plugboard(), rotors, strings.Join(m.Reflectors(), " "))
		}
		cobra.CheckErr(w.Flush())
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
