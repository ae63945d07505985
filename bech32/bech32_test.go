package bech32

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	words := ConvertBits8To5([]byte("hello bolt11"))

	encoded, err := Encode("lnbc", words)
	require.NoError(t, err)

	hrp, data, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, "lnbc", hrp)
	require.Equal(t, words, data)
}

func TestDecodeCaseInsensitive(t *testing.T) {
	words := ConvertBits8To5([]byte{0x01, 0x02, 0x03})
	encoded, err := Encode("tb", words)
	require.NoError(t, err)

	hrpLower, dataLower, err := Decode(strings.ToLower(encoded))
	require.NoError(t, err)

	hrpUpper, dataUpper, err := Decode(strings.ToUpper(encoded))
	require.NoError(t, err)

	require.Equal(t, hrpLower, hrpUpper)
	require.Equal(t, dataLower, dataUpper)
}

func TestDecodeNoLengthCap(t *testing.T) {
	// Unlike BIP-173, BOLT 11 permits strings far longer than 90 chars.
	words := ConvertBits8To5(make([]byte, 512))
	encoded, err := Encode("lnbc1000000000000000", words)
	require.NoError(t, err)
	require.Greater(t, len(encoded), 90)

	_, _, err = Decode(encoded)
	require.NoError(t, err)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  any
	}{
		{"no separator", "lnbcabc", ErrNoSeparator{}},
		{"empty hrp", "1qqqqqq", ErrEmptyHRP{}},
		{"too short", "ln1qq", ErrTooShort{}},
		{"invalid char", "ln1qqqqqb", ErrInvalidChar{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.in)
			require.Error(t, err)
			require.IsType(t, tc.err, err)
		})
	}
}

func TestDecodeInvalidChecksum(t *testing.T) {
	words := ConvertBits8To5([]byte{0xff})
	encoded, err := Encode("bc", words)
	require.NoError(t, err)

	// Flip the last character, which is part of the checksum.
	corrupted := encoded[:len(encoded)-1] + flipChar(encoded[len(encoded)-1])
	_, _, err = Decode(corrupted)
	require.IsType(t, ErrInvalidChecksum{}, err)
}

func flipChar(c byte) string {
	for _, alt := range charset {
		if byte(alt) != c {
			return string(alt)
		}
	}
	return "q"
}
