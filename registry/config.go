package registry

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load returns the historical registry extended by the components found
// under the "components" key of v:
//
//	components:
//	  rotors:
//	    - {name: X1, wiring: ..., notches: Q}
//	  reflectors:
//	    - {name: X, wiring: ...}
//	  models:
//	    - {name: Custom, rotors: [I, X1, III], reflectors: [B], slots: 3, plugboard: free}
//
// A nil v or an absent key yields the historical registry.
func Load(v *viper.Viper) (*Registry, error) {
	rotors, reflectors, models := HistoricalSpecs()
	if v == nil {
		return New(rotors, reflectors, models)
	}

	var extra struct {
		Rotors     []RotorSpec     `mapstructure:"rotors"`
		Reflectors []ReflectorSpec `mapstructure:"reflectors"`
		Models     []ModelSpec     `mapstructure:"models"`
	}
	if v.IsSet("components") {
		if err := v.UnmarshalKey("components", &extra); err != nil {
			return nil, fmt.Errorf("registry: reading components: %w", err)
		}
	}

	return New(
		append(rotors, extra.Rotors...),
		append(reflectors, extra.Reflectors...),
		append(models, extra.Models...),
	)
}
