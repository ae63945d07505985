package bech32

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertBitsRoundTripBytes(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		orig := make([]byte, r.Intn(64))
		r.Read(orig)

		words := ConvertBits8To5(orig)
		back, err := ConvertBits5To8(words, false)
		require.NoError(t, err)
		require.True(t, bytes.Equal(orig, back))
	}
}

func TestConvertBitsPaddedExpansion(t *testing.T) {
	// 7 words of 5 bits = 35 bits, padding to 40 bits (5 bytes) with
	// pad=true, as used for the signing pre-image.
	words := []byte{1, 2, 3, 4, 5, 6, 7}
	out, err := ConvertBits5To8(words, true)
	require.NoError(t, err)
	require.Len(t, out, 5)
}

func TestConvertBitsRejectsOutOfRangeWord(t *testing.T) {
	_, err := ConvertBits5To8([]byte{32}, true)
	require.Error(t, err)
}
