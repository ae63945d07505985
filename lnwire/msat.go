// Package lnwire holds the small wire-level value types the invoice codec
// shares with the rest of the Lightning stack: millisatoshi amounts and
// feature bit vectors.
package lnwire

import "github.com/btcsuite/btcd/btcutil"

// MSatPerSatoshi is the number of millisatoshis in one satoshi.
const MSatPerSatoshi uint64 = 1000

// MSatPerBitcoin is the number of millisatoshis in one whole bitcoin.
const MSatPerBitcoin uint64 = MSatPerSatoshi * 1e8

// MilliSatoshi is a thousandth of a satoshi, the smallest monetary unit
// that can be expressed within the Lightning Network.
type MilliSatoshi uint64

// NewMSatFromSatoshis creates a MilliSatoshi from a whole-satoshi amount.
func NewMSatFromSatoshis(sat btcutil.Amount) MilliSatoshi {
	return MilliSatoshi(int64(sat) * int64(MSatPerSatoshi))
}

// ToSatoshis converts the amount to satoshis, truncating any fractional
// millisatoshi remainder.
func (m MilliSatoshi) ToSatoshis() btcutil.Amount {
	return btcutil.Amount(uint64(m) / MSatPerSatoshi)
}

// WholeSatoshis returns the amount in whole satoshis and true if the
// amount is an exact multiple of 1000 msat; otherwise it returns false,
// since the value has no whole-satoshi representation.
func (m MilliSatoshi) WholeSatoshis() (btcutil.Amount, bool) {
	if uint64(m)%MSatPerSatoshi != 0 {
		return 0, false
	}
	return m.ToSatoshis(), true
}
