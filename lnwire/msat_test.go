package lnwire

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

func TestWholeSatoshis(t *testing.T) {
	m := NewMSatFromSatoshis(btcutil.Amount(250000))
	sat, ok := m.WholeSatoshis()
	require.True(t, ok)
	require.EqualValues(t, 250000, sat)

	fractional := MilliSatoshi(967878534)
	_, ok = fractional.WholeSatoshis()
	require.False(t, ok)
}
