package dynamics

import "math/rand/v2"

// diagnosticTroubleCodes is the pool of OBD-II powertrain codes injected by
// dtc triggers.
var diagnosticTroubleCodes = []string{
	"P0010", "P0011", "P0030", "P0031", "P0087", "P0101", "P0106", "P0113",
	"P0121", "P0128", "P0131", "P0135", "P0141", "P0171", "P0172", "P0174",
	"P0191", "P0218", "P0300", "P0301", "P0302", "P0303", "P0304", "P0325",
	"P0335", "P0340", "P0401", "P0420", "P0430", "P0440", "P0442", "P0446",
	"P0455", "P0500", "P0505", "P0562", "P0600", "P0700", "P0715", "P0720",
}

func randomDTC() string {
	return diagnosticTroubleCodes[rand.IntN(len(diagnosticTroubleCodes))]
}
