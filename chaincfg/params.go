// Package chaincfg defines the network parameters a BOLT 11 invoice is
// scoped to: the bech32 human-readable prefix and the address version
// bytes a decoded fallback address would need to be rendered against.
package chaincfg

// Params identifies a Bitcoin-like chain that a BOLT 11 invoice targets.
// It mirrors the handful of fields the codec actually needs; callers doing
// full address reconstruction should consult their own chain parameter
// tables for anything beyond these.
type Params struct {
	// Name is a human-readable identifier for the network, e.g. "mainnet".
	Name string

	// Bech32HRPSegwit is the prefix appended after "ln" in an invoice's
	// human-readable part, e.g. "bc" for mainnet.
	Bech32HRPSegwit string

	// PubKeyHashAddrID is the version byte for a P2PKH fallback address
	// on this network.
	PubKeyHashAddrID byte

	// ScriptHashAddrID is the version byte for a P2SH fallback address
	// on this network.
	ScriptHashAddrID byte

	// ValidWitnessVersions lists the segwit witness versions this
	// network will accept in a fallback address.
	ValidWitnessVersions []byte
}

var defaultWitnessVersions = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

// MainNetParams are the parameters for Bitcoin mainnet.
var MainNetParams = Params{
	Name:                 "mainnet",
	Bech32HRPSegwit:      "bc",
	PubKeyHashAddrID:     0x00,
	ScriptHashAddrID:     0x05,
	ValidWitnessVersions: defaultWitnessVersions,
}

// TestNet3Params are the parameters for Bitcoin testnet3.
var TestNet3Params = Params{
	Name:                 "testnet3",
	Bech32HRPSegwit:      "tb",
	PubKeyHashAddrID:     0x6f,
	ScriptHashAddrID:     0xc4,
	ValidWitnessVersions: defaultWitnessVersions,
}

// SigNetParams are the parameters for the default public signet.
var SigNetParams = Params{
	Name:                 "signet",
	Bech32HRPSegwit:      "tbs",
	PubKeyHashAddrID:     0x6f,
	ScriptHashAddrID:     0xc4,
	ValidWitnessVersions: defaultWitnessVersions,
}

// RegressionNetParams are the parameters for regtest.
var RegressionNetParams = Params{
	Name:                 "regtest",
	Bech32HRPSegwit:      "bcrt",
	PubKeyHashAddrID:     0x6f,
	ScriptHashAddrID:     0xc4,
	ValidWitnessVersions: defaultWitnessVersions,
}

// SimNetParams are the parameters for simnet.
var SimNetParams = Params{
	Name:                 "simnet",
	Bech32HRPSegwit:      "sb",
	PubKeyHashAddrID:     0x3f,
	ScriptHashAddrID:     0x7b,
	ValidWitnessVersions: defaultWitnessVersions,
}

// KnownNetworks lists every predefined network, ordered so that a longer
// prefix (e.g. "bcrt") is matched before a shorter one it is NOT a prefix
// of ("bc" is, so mainnet still must be tried after regtest).
var KnownNetworks = []*Params{
	&RegressionNetParams,
	&SigNetParams,
	&SimNetParams,
	&TestNet3Params,
	&MainNetParams,
}
