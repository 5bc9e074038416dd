package registry

import "github.com/bgallie/mzenigma/cryptors"

var historicalRotors = []RotorSpec{
	// Commercial Enigma A
	{Name: "I-A", Wiring: "DMTWSILRUYQNKFEJCAZBPGXOHV", Notches: "Y"},
	{Name: "II-A", Wiring: "HQZGPJTMOBLNCIFDYAWVEUSRKX", Notches: "Y"},
	{Name: "III-A", Wiring: "UQNTLSZFMREHDPXKIBVYGJCWOA", Notches: "Y"},

	// Swedish SGS
	{Name: "I-SGS", Alphabet: cryptors.SGSLetters, Wiring: "PSBGÖXQJDHOÄUCFRTEZVÅINLYMKA", Notches: "Ä"},
	{Name: "II-SGS", Alphabet: cryptors.SGSLetters, Wiring: "CHNSYÖADMOTRZXBÄIGÅEKQUPFLVJ", Notches: "Ä"},
	{Name: "III-SGS", Alphabet: cryptors.SGSLetters, Wiring: "ÅVQIAÄXRJBÖZSPCFYUNTHDOMEKGL", Notches: "Ä"},

	// Enigma D
	{Name: "I-D", Wiring: "LPGSZMHAEOQKVXRFYBUTNICJDW", Notches: "Y"},
	{Name: "II-D", Wiring: "SLVGBTFXJQOHEWIRZYAMKPCNDU", Notches: "E"},
	{Name: "III-D", Wiring: "CJGDPSHKTURAWZXFMYNQOBVLIE", Notches: "N"},

	// Enigma I, M3 and M4
	{Name: "I", Wiring: "EKMFLGDQVZNTOWYHXUSPAIBRCJ", Notches: "Q"},
	{Name: "II", Wiring: "AJDKSIRUXBLHWTMCQGZNPYFVOE", Notches: "E"},
	{Name: "III", Wiring: "BDFHJLCPRTXVZNYEIWGAKMUSQO", Notches: "V"},
	{Name: "IV", Wiring: "ESOVPZJAYQUIRHXLNFTGKDCMWB", Notches: "J"},
	{Name: "V", Wiring: "VZBRGITYUPSDNHLXAWMJQOFECK", Notches: "Z"},
	{Name: "VI", Wiring: "JPGVOUMFYQBENHZRDKASXLICTW", Notches: "ZM"},
	{Name: "VII", Wiring: "NZJHGRCXMYSWBOUFAIVLPEKQDT", Notches: "ZM"},
	{Name: "VIII", Wiring: "FKQHTLXOCBJSPDZRAMEWNIUYGV", Notches: "ZM"},
	{Name: "Beta", Wiring: "LEYJVCNIXWPBQMDRTAKZGFUHOS", Stationary: true},
	{Name: "Gamma", Wiring: "FSOKANUERHMBTIYCWLQPZXVGJD", Stationary: true},

	// Enigma T (Tirpitz)
	{Name: "I-T", Wiring: "KPTYUELOCVGRFQDANJMBSWHZXI", Notches: "WZEKQ"},
	{Name: "II-T", Wiring: "UPHZLWEQMTDJXCAKSOIGVBYFNR", Notches: "WZFLR"},
	{Name: "III-T", Wiring: "QUDLYRFEKONVZAXWHMGPJBSICT", Notches: "WZEKQ"},
	{Name: "IV-T", Wiring: "CIWTBKXNRESPFLYDAGVHQUOJZM", Notches: "WZFLR"},
	{Name: "V-T", Wiring: "UAXGISNJBVERDYLFZWTPCKOHMQ", Notches: "YCFKR"},
	{Name: "VI-T", Wiring: "XFUZGALVHCNYSEWQTDMRBKPIOJ", Notches: "XEIMQ"},
	{Name: "VII-T", Wiring: "BJVFTXPLNAYOZIKWGDQERUCHSM", Notches: "YCFKR"},
	{Name: "VIII-T", Wiring: "YMTPNZHWKODAJXELUQVGCBISFR", Notches: "XEIMQ"},

	// Enigma G-312 (Abwehr)
	{Name: "I-G312", Wiring: "DMTWSILRUYQNKFEJCAZBPGXOHV", Notches: "SUVWZABCEFGIKLOPQ"},
	{Name: "II-G312", Wiring: "HQZGPJTMOBLNCIFDYAWVEUSRKX", Notches: "STVYZACDFGHKMNQ"},
	{Name: "III-G312", Wiring: "UQNTLSZFMREHDPXKIBVYGJCWOA", Notches: "UWXAEFHKMNR"},

	// Norway Enigma
	{Name: "I-N", Wiring: "WTOKASUYVRBXJHQCPZEFMDINLG", Notches: "Q"},
	{Name: "II-N", Wiring: "GJLPUBSWEMCTQVHXAOFZDRKYNI", Notches: "E"},
	{Name: "III-N", Wiring: "JWFMHNBPUSDYTIXVZGRQLAOEKC", Notches: "V"},
	{Name: "IV-N", Wiring: "FGZJMVXEPBWSHQTLIUDYKCNRAO", Notches: "J"},
	{Name: "V-N", Wiring: "HEJXQOTZBVFDASCILWPGYNMURK", Notches: "Z"},
}

var historicalReflectors = []ReflectorSpec{
	{Name: "A", Wiring: "EJMZALYXVBWFCRQUONTSPIKHGD"},
	{Name: "B", Wiring: "YRUHQSLDPXNGOKMIEBFZCWVJAT"},
	{Name: "C", Wiring: "FVPJIAOYEDRZXWGCTKUQSBNMHL"},
	{Name: "B-Thin", Wiring: "ENKQAUYWJICOPBLMDXZVFTHRGS"},
	{Name: "C-Thin", Wiring: "RDOBJNTKVEHMLFCWZAXGYIPSUQ"},
	{Name: "D", Wiring: "IMETCGFRAYSQBZXWLHKDVUPOJN"},
	{Name: "SGS", Alphabet: cryptors.SGSLetters, Wiring: "LDGBÄNCPSKJAVFZHXUIÅRMQÖOTEY"},
	{Name: "T", Wiring: "GEKPBTAUMOCNILJDXZYFHWVQSR"},
	{Name: "G312", Wiring: "RULQMZJSYGOCETKWDAHNBXPVIF"},
	{Name: "N", Wiring: "MOWJYPUXNDSRAIBFVLKZGQCHET"},
}

var historicalModels = []ModelSpec{
	{Name: "A", Rotors: []string{"I-A", "II-A", "III-A"}, Reflectors: []string{"D"}, Slots: 2},
	{Name: "SGS", Alphabet: cryptors.SGSLetters, Rotors: []string{"I-SGS", "II-SGS", "III-SGS"}, Reflectors: []string{"SGS"}, Slots: 2},
	{Name: "D", Rotors: []string{"I-D", "II-D", "III-D"}, Reflectors: []string{"D"}, Slots: 3},
	{Name: "I", Rotors: []string{"I", "II", "III", "IV", "V"}, Reflectors: []string{"A", "B", "C"}, Slots: 3,
		Plugboard: PlugboardFree, MaxPairs: 13},
	{Name: "M3", Rotors: []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII"}, Reflectors: []string{"A", "B", "C"}, Slots: 3,
		Plugboard: PlugboardFree, MaxPairs: 13},
	{Name: "M4", Rotors: []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII"}, ExtraWheels: []string{"Beta", "Gamma"},
		Reflectors: []string{"B-Thin", "C-Thin"}, Slots: 4, Plugboard: PlugboardFree, MaxPairs: 13},
	{Name: "T", Rotors: []string{"I-T", "II-T", "III-T", "IV-T", "V-T", "VI-T", "VII-T", "VIII-T"}, Reflectors: []string{"T"}, Slots: 3},
	{Name: "G312", Rotors: []string{"I-G312", "II-G312", "III-G312"}, Reflectors: []string{"G312"}, Slots: 3},
	{Name: "N", Rotors: []string{"I-N", "II-N", "III-N", "IV-N", "V-N"}, Reflectors: []string{"N"}, Slots: 3},
}

// HistoricalSpecs returns copies of the documented component tables.
func HistoricalSpecs() ([]RotorSpec, []ReflectorSpec, []ModelSpec) {
	return append([]RotorSpec(nil), historicalRotors...),
		append([]ReflectorSpec(nil), historicalReflectors...),
		append([]ModelSpec(nil), historicalModels...)
}

// Historical returns a registry with every documented machine. The tables
// are validated by the tests, so a failure here is a programming error.
func Historical() *Registry {
	reg, err := New(HistoricalSpecs())
	if err != nil {
		panic(err)
	}
	return reg
}
