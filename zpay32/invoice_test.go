package zpay32_test

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/nova-carnivore/bolt11/bech32"
	"github.com/nova-carnivore/bolt11/chaincfg"
	"github.com/nova-carnivore/bolt11/lnwire"
	"github.com/nova-carnivore/bolt11/zpay32"
)

func randPrivKey(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

func randHash() [32]byte {
	var h [32]byte
	_, _ = rand.Read(h[:])
	return h
}

func TestSignDecodeRoundTrip(t *testing.T) {
	priv := randPrivKey(t)
	paymentHash := randHash()
	paymentSecret := randHash()
	amt := lnwire.MilliSatoshi(250000000)

	inv, err := zpay32.NewInvoice(
		&chaincfg.MainNetParams, paymentHash, time.Unix(1600000000, 0),
		zpay32.Amount(amt),
		zpay32.Description("coffee"),
		zpay32.PaymentSecret(paymentSecret),
		zpay32.CLTVExpiry(144),
		zpay32.Expiry(2*time.Hour),
	)
	require.NoError(t, err)

	signed, err := zpay32.Sign(inv, priv)
	require.NoError(t, err)
	require.True(t, signed.Complete)
	require.NotEmpty(t, signed.PaymentRequest)

	decoded, err := zpay32.Decode(signed.PaymentRequest)
	require.NoError(t, err)

	require.Equal(t, paymentHash, *decoded.PaymentHash)
	require.Equal(t, paymentSecret, *decoded.PaymentSecret)
	require.Equal(t, "coffee", *decoded.Description)
	require.Equal(t, amt, *decoded.MilliSat)
	require.Equal(t, uint64(144), decoded.MinFinalCLTVExpiry())
	require.Equal(t, 2*time.Hour, decoded.Expiry())
	require.Equal(t, inv.Timestamp.Unix(), decoded.Timestamp.Unix())

	require.NotNil(t, decoded.PayeeNodeKey)
	require.True(t, priv.PubKey().IsEqual(decoded.PayeeNodeKey))
}

func TestSignDecodeRoundTripDescriptionHash(t *testing.T) {
	priv := randPrivKey(t)
	paymentHash := randHash()
	paymentSecret := randHash()
	descHash := randHash()

	inv, err := zpay32.NewInvoice(
		&chaincfg.TestNet3Params, paymentHash, time.Unix(1700000000, 0),
		zpay32.DescriptionHash(descHash),
		zpay32.PaymentSecret(paymentSecret),
	)
	require.NoError(t, err)

	signed, err := zpay32.Sign(inv, priv)
	require.NoError(t, err)

	decoded, err := zpay32.Decode(signed.PaymentRequest)
	require.NoError(t, err)

	require.Nil(t, decoded.Description)
	require.Equal(t, descHash, *decoded.DescriptionHash)
	require.Nil(t, decoded.MilliSat)
	require.Equal(t, uint64(18), decoded.MinFinalCLTVExpiry())
	require.Equal(t, time.Hour, decoded.Expiry())
}

func TestSignDecodeRoundTripRouteHintsAndFeatures(t *testing.T) {
	priv := randPrivKey(t)
	hopKey := randPrivKey(t).PubKey()
	paymentHash := randHash()
	paymentSecret := randHash()

	features := lnwire.NewFeatureBits(0)
	features.Set(8) // tlv_onion required

	hintA := []zpay32.RouteHop{{
		PubKey:                    hopKey,
		ShortChannelID:            12345,
		FeeBaseMSat:               1000,
		FeeProportionalMillionths: 10,
		CLTVExpiryDelta:           40,
	}}
	hintB := []zpay32.RouteHop{{
		PubKey:                    hopKey,
		ShortChannelID:            67890,
		FeeBaseMSat:               500,
		FeeProportionalMillionths: 5,
		CLTVExpiryDelta:           20,
	}}

	inv, err := zpay32.NewInvoice(
		&chaincfg.RegressionNetParams, paymentHash, time.Unix(1650000000, 0),
		zpay32.Description("routed"),
		zpay32.PaymentSecret(paymentSecret),
		zpay32.RouteHint(hintA),
		zpay32.RouteHint(hintB),
		zpay32.Features(features),
		zpay32.Metadata([]byte{0xde, 0xad, 0xbe, 0xef}),
	)
	require.NoError(t, err)

	signed, err := zpay32.Sign(inv, priv)
	require.NoError(t, err)

	decoded, err := zpay32.Decode(signed.PaymentRequest)
	require.NoError(t, err)

	require.Len(t, decoded.RouteHints, 2)
	require.Equal(t, uint64(12345), decoded.RouteHints[0][0].ShortChannelID)
	require.Equal(t, uint64(67890), decoded.RouteHints[1][0].ShortChannelID)
	require.True(t, decoded.Features.IsSet(8))
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, decoded.Metadata)
}

func TestNewInvoiceRequiresPaymentSecret(t *testing.T) {
	_, err := zpay32.NewInvoice(
		&chaincfg.MainNetParams, randHash(), time.Unix(0, 0),
		zpay32.Description("no secret"),
	)
	require.Error(t, err)
	require.IsType(t, zpay32.ErrMissingRequiredTag{}, err)
}

func TestNewInvoiceRequiresExactlyOneDescription(t *testing.T) {
	_, err := zpay32.NewInvoice(
		&chaincfg.MainNetParams, randHash(), time.Unix(0, 0),
		zpay32.PaymentSecret(randHash()),
	)
	require.Error(t, err)

	_, err = zpay32.NewInvoice(
		&chaincfg.MainNetParams, randHash(), time.Unix(0, 0),
		zpay32.PaymentSecret(randHash()),
		zpay32.Description("both"),
		zpay32.DescriptionHash(randHash()),
	)
	require.Error(t, err)
}

func TestNewInvoiceDefaultsTimestampToNow(t *testing.T) {
	before := time.Now()
	inv, err := zpay32.NewInvoice(
		&chaincfg.MainNetParams, randHash(), time.Time{},
		zpay32.Description("now"),
		zpay32.PaymentSecret(randHash()),
	)
	require.NoError(t, err)
	require.False(t, inv.Timestamp.Before(before))
}

func TestDecodeRejectsTruncatedData(t *testing.T) {
	// A checksum-valid string whose data part is shorter than the 111
	// words of timestamp plus signature.
	encoded, err := bech32.Encode("lnbc", make([]byte, 50))
	require.NoError(t, err)

	_, err = zpay32.Decode(encoded)
	require.Error(t, err)
	require.IsType(t, zpay32.ErrDataTooShort{}, err)
}

func TestSignDecodeRoundTripFallbackAddress(t *testing.T) {
	priv := randPrivKey(t)
	paymentHash := randHash()
	paymentSecret := randHash()

	fallback := zpay32.FallbackAddress{
		Version: 17,
		Hash:    []byte{0x31, 0x72, 0xb5, 0x65, 0x4f, 0x66, 0x83, 0xc8, 0xfb, 0x14, 0x69, 0x59, 0xd3, 0x47, 0xce, 0x30, 0x3c, 0xae, 0x4c, 0xa7},
	}

	inv, err := zpay32.NewInvoice(
		&chaincfg.TestNet3Params, paymentHash, time.Unix(1496314658, 0),
		zpay32.Description("fallback test"),
		zpay32.PaymentSecret(paymentSecret),
		zpay32.FallbackAddr(fallback),
	)
	require.NoError(t, err)

	signed, err := zpay32.Sign(inv, priv)
	require.NoError(t, err)

	decoded, err := zpay32.Decode(signed.PaymentRequest)
	require.NoError(t, err)

	require.NotNil(t, decoded.FallbackAddr)
	require.True(t, decoded.FallbackAddr.IsP2PKH())
	require.False(t, decoded.FallbackAddr.IsP2SH())
	require.False(t, decoded.FallbackAddr.IsWitness())
	require.Equal(t, fallback.Hash, decoded.FallbackAddr.Hash)
}

func TestDecodeRecoverErrorOnGarbledSignature(t *testing.T) {
	var buf []byte
	full := make([]byte, 0, 7+104)
	full = append(full, make([]byte, 7)...)
	full = append(full, buf...)
	full = append(full, make([]byte, 104)...) // all-zero signature, not recoverable

	encoded, err := bech32.Encode("lnbc", full)
	require.NoError(t, err)

	decoded, err := zpay32.Decode(encoded)
	require.NoError(t, err)
	require.Nil(t, decoded.PayeeNodeKey)
	require.Error(t, decoded.RecoverError())
	require.IsType(t, zpay32.ErrRecoverFailed{}, decoded.RecoverError())
}

func TestTagsObjectLastValueWins(t *testing.T) {
	priv := randPrivKey(t)
	paymentHash := randHash()
	paymentSecret := randHash()
	hopKey := randPrivKey(t).PubKey()

	inv, err := zpay32.NewInvoice(
		&chaincfg.MainNetParams, paymentHash, time.Unix(1600000000, 0),
		zpay32.Description("first"),
		zpay32.PaymentSecret(paymentSecret),
		zpay32.RouteHint([]zpay32.RouteHop{{PubKey: hopKey, ShortChannelID: 1}}),
		zpay32.RouteHint([]zpay32.RouteHop{{PubKey: hopKey, ShortChannelID: 2}}),
	)
	require.NoError(t, err)

	signed, err := zpay32.Sign(inv, priv)
	require.NoError(t, err)

	decoded, err := zpay32.Decode(signed.PaymentRequest)
	require.NoError(t, err)

	tags := decoded.TagsObject()
	require.Contains(t, tags, "payment_hash")
	require.Contains(t, tags, "description")
	require.Contains(t, tags, "payment_secret")

	// Two route_hint tags were written; the view keeps the later one.
	require.Contains(t, tags, "route_hint")
	require.Equal(t, uint64(2), tags["route_hint"].RouteHint[0].ShortChannelID)
}
