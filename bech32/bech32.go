// Package bech32 implements the bech32 checksum and word-alphabet codec used
// to frame BOLT 11 payment requests. Unlike BIP-173, this implementation
// does not cap the overall string length: BOLT 11 invoices routinely exceed
// the 90-character limit that ordinary segwit addresses respect.
package bech32

import "strings"

// charset is the bech32 5-bit word alphabet, ordered so that charset[v]
// yields the character for value v.
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// generator is the set of constants used to incrementally update the
// 30-bit BCH checksum accumulator in polymod.
var generator = [5]uint32{
	0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3,
}

// charsetRev maps an ASCII byte to its charset value, or -1 if the byte is
// not part of the alphabet.
var charsetRev = func() [256]int8 {
	var rev [256]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range charset {
		rev[c] = int8(i)
	}
	return rev
}()

// polymod computes the BCH checksum accumulator over a sequence of 5-bit
// values, per BIP-173 §Bech32.
func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

// hrpExpand expands the human-readable part into the sequence of 5-bit
// values used as the checksum's implicit prefix, per BIP-173.
func hrpExpand(hrp string) []byte {
	v := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		v = append(v, hrp[i]>>5)
	}
	v = append(v, 0)
	for i := 0; i < len(hrp); i++ {
		v = append(v, hrp[i]&31)
	}
	return v
}

// verifyChecksum reports whether the trailing six words of data form a
// valid checksum for hrp.
func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == 1
}

// createChecksum computes the six checksum words to append to hrp+data.
func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ 1

	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

// Encode builds a bech32 string from the given human-readable part and
// 5-bit data words, appending the checksum.
func Encode(hrp string, data []byte) (string, error) {
	if err := validateHRP(hrp); err != nil {
		return "", err
	}
	for _, b := range data {
		if b > 31 {
			return "", ErrInvalidDataWord{Value: b}
		}
	}

	combined := append(data, createChecksum(hrp, data)...)

	var bld strings.Builder
	bld.Grow(len(hrp) + 1 + len(combined))
	bld.WriteString(hrp)
	bld.WriteByte('1')
	for _, b := range combined {
		bld.WriteByte(charset[b])
	}

	return bld.String(), nil
}

// Decode splits a bech32 string into its human-readable part and 5-bit data
// words, verifying the checksum and stripping it from the returned data.
//
// Per BOLT 11, no overall length cap is enforced.
func Decode(bech string) (string, []byte, error) {
	lower := strings.ToLower(bech)

	sep := strings.LastIndexByte(lower, '1')
	if sep == -1 {
		return "", nil, ErrNoSeparator{}
	}
	if sep == 0 {
		return "", nil, ErrEmptyHRP{}
	}
	if len(lower)-sep-1 < 6 {
		return "", nil, ErrTooShort{}
	}

	hrp := lower[:sep]
	if err := validateHRP(hrp); err != nil {
		return "", nil, err
	}

	dataChars := lower[sep+1:]
	data := make([]byte, len(dataChars))
	for i := 0; i < len(dataChars); i++ {
		v := charsetRev[dataChars[i]]
		if v == -1 {
			return "", nil, ErrInvalidChar{Char: rune(dataChars[i])}
		}
		data[i] = byte(v)
	}

	if !verifyChecksum(hrp, data) {
		return "", nil, ErrInvalidChecksum{}
	}

	return hrp, data[:len(data)-6], nil
}

func validateHRP(hrp string) error {
	if hrp == "" {
		return ErrEmptyHRP{}
	}
	for i := 0; i < len(hrp); i++ {
		c := hrp[i]
		if c < 33 || c > 126 {
			return ErrInvalidChar{Char: rune(c)}
		}
	}
	return nil
}
