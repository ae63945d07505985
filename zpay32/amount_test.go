package zpay32_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nova-carnivore/bolt11/lnwire"
	"github.com/nova-carnivore/bolt11/zpay32"
)

func TestHRPToMSat(t *testing.T) {
	cases := []struct {
		token string
		msat  uint64
	}{
		{"", 0}, // handled separately below, zero unused
		{"2500u", 250000000},
		{"1m", 100000000},
		{"100n", 10000},
		{"1000p", 100},
	}

	for _, c := range cases[1:] {
		msat, err := zpay32.HRPToMSat(c.token)
		require.NoError(t, err, c.token)
		require.Equal(t, c.msat, uint64(*msat), c.token)
	}

	msat, err := zpay32.HRPToMSat("")
	require.NoError(t, err)
	require.Nil(t, msat)
}

func TestHRPToMSatRejectsNonMultipleOfTenPico(t *testing.T) {
	_, err := zpay32.HRPToMSat("1001p")
	require.Error(t, err)
	require.IsType(t, zpay32.ErrPicoNotMultipleOfTen{}, err)
}

func TestHRPToMSatRejectsLeadingZero(t *testing.T) {
	_, err := zpay32.HRPToMSat("0100u")
	require.Error(t, err)
}

func TestMSatToHRPRoundTrip(t *testing.T) {
	amounts := []uint64{100000000, 250000000, 10000, 100, 7}
	for _, amt := range amounts {
		msat := lnwire.MilliSatoshi(amt)
		token := zpay32.MSatToHRP(&msat)

		back, err := zpay32.HRPToMSat(token)
		require.NoError(t, err, token)
		require.Equal(t, amt, uint64(*back), token)
	}
}

func TestMSatToHRPNilIsEmpty(t *testing.T) {
	require.Equal(t, "", zpay32.MSatToHRP(nil))
}

func TestHRPToSatRequiresWholeSatoshis(t *testing.T) {
	_, err := zpay32.HRPToSat("1p")
	require.Error(t, err)

	sat, err := zpay32.HRPToSat("10000p")
	require.NoError(t, err)
	require.EqualValues(t, 1, sat)
}
