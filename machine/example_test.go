package machine_test

import (
	"fmt"

	"github.com/bgallie/mzenigma/machine"
	"github.com/bgallie/mzenigma/registry"
)

func ExampleDailyKey_Encode() {
	m, err := machine.New(registry.Historical(), "M3")
	if err != nil {
		panic(err)
	}
	k, err := m.NewKey(machine.Settings{Reflector: "B", Rotors: []string{"I", "II", "III"}})
	if err != nil {
		panic(err)
	}

	out, _ := k.Encode("AAAAA")
	fmt.Println(out)
	plain, _ := k.Decode(out)
	fmt.Println(plain)
	// Output:
	// BDZGO
	// AAAAA
}
