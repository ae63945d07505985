package zpay32

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/nova-carnivore/bolt11/lnwire"
)

// amountMultiplier pairs a BOLT 11 amount suffix with the millisatoshi
// value one digit-unit of that suffix represents, expressed as a
// numerator/denominator pair so the conversion stays exact in integer
// arithmetic (see §4.3's multiplier table).
type amountMultiplier struct {
	suffix byte
	num    uint64
	den    uint64
}

// multipliers is tried in order when compressing a millisatoshi amount to
// its shortest hrp form: m, u, n, then p.
var multipliers = []amountMultiplier{
	{'m', 1e8, 1},
	{'u', 1e5, 1},
	{'n', 1e2, 1},
	{'p', 1, 10},
}

// HRPToMSat parses an hrp amount token (the portion of the human-readable
// part after the network prefix) into a millisatoshi amount. An empty
// token means no amount was specified (a donation invoice).
func HRPToMSat(token string) (*lnwire.MilliSatoshi, error) {
	if token == "" {
		return nil, nil
	}

	digits, suffix, err := splitAmountToken(token)
	if err != nil {
		return nil, err
	}

	if suffix == 'p' && !isPicoMultipleOfTen(digits) {
		return nil, ErrPicoNotMultipleOfTen{Digits: digits}
	}

	digitVal, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return nil, ErrInvalidAmount{Token: token}
	}

	num, den := lnwire.MSatPerBitcoin, uint64(1)
	if suffix != 0 {
		m := multiplierForSuffix(suffix)
		num, den = m.num, m.den
	}

	msat := lnwire.MilliSatoshi(digitVal * num / den)
	return &msat, nil
}

// isPicoMultipleOfTen reports whether the decimal digit string, taken as
// an integer, is a multiple of 10. It is checked directly on the string's
// last digit to avoid overflow for very large amounts.
func isPicoMultipleOfTen(digits string) bool {
	return digits[len(digits)-1] == '0'
}

func multiplierForSuffix(suffix byte) amountMultiplier {
	for _, m := range multipliers {
		if m.suffix == suffix {
			return m
		}
	}
	return amountMultiplier{suffix, lnwire.MSatPerBitcoin, 1}
}

// splitAmountToken validates and splits an hrp amount token into its
// digit run and optional suffix character (0 if absent).
func splitAmountToken(token string) (digits string, suffix byte, err error) {
	last := token[len(token)-1]
	if last == 'm' || last == 'u' || last == 'n' || last == 'p' {
		suffix = last
		digits = token[:len(token)-1]
	} else {
		digits = token
	}

	if digits == "" {
		return "", 0, ErrInvalidAmount{Token: token}
	}
	if digits != "0" && digits[0] == '0' {
		return "", 0, ErrInvalidAmount{Token: token}
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", 0, ErrInvalidAmount{Token: token}
		}
	}

	return digits, suffix, nil
}

// MSatToHRP renders a millisatoshi amount in its shortest hrp form,
// trying the m/u/n/p suffixes in turn before falling back to an exact
// pico representation. A nil amount renders as the empty string.
func MSatToHRP(msat *lnwire.MilliSatoshi) string {
	if msat == nil {
		return ""
	}

	amt := uint64(*msat)
	for _, m := range multipliers {
		// scaled = amt / (num/den) = amt*den/num, and must be an exact
		// positive integer for this suffix to apply.
		scaledNum := amt * m.den
		if scaledNum >= m.num && scaledNum%m.num == 0 {
			return strconv.FormatUint(scaledNum/m.num, 10) + string(m.suffix)
		}
	}

	// Fallback: express as an exact multiple of 10 pico-bitcoin.
	return strconv.FormatUint(uint64(*msat)*10, 10) + "p"
}

// SatToHRP renders a whole-satoshi amount in its shortest hrp form.
func SatToHRP(sat btcutil.Amount) string {
	msat := lnwire.NewMSatFromSatoshis(sat)
	return MSatToHRP(&msat)
}

// HRPToSat parses an hrp amount token into a whole-satoshi amount. It
// returns ErrInvalidAmount if the amount has a non-zero millisatoshi
// remainder and so has no whole-satoshi representation.
func HRPToSat(token string) (btcutil.Amount, error) {
	msat, err := HRPToMSat(token)
	if err != nil {
		return 0, err
	}
	if msat == nil {
		return 0, ErrInvalidAmount{Token: token}
	}
	sat, ok := msat.WholeSatoshis()
	if !ok {
		return 0, ErrInvalidAmount{Token: token}
	}
	return sat, nil
}

// splitNetworkPrefix matches the longest known network prefix at the
// front of an hrp's remainder (after "ln"), returning the matched network
// and whatever's left over (the amount token, possibly empty).
func splitNetworkPrefix(rest string) (prefix string, amountToken string, matched bool) {
	for _, candidate := range knownPrefixesByLength() {
		if strings.HasPrefix(rest, candidate) {
			return candidate, rest[len(candidate):], true
		}
	}
	return "", "", false
}
