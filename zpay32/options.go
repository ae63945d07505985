package zpay32

import (
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/nova-carnivore/bolt11/lnwire"
)

// Amount sets the invoice's amount in millisatoshis. Omit for a donation
// invoice with no requested amount.
func Amount(msat lnwire.MilliSatoshi) func(*Invoice) {
	return func(i *Invoice) { i.MilliSat = &msat }
}

// Destination explicitly sets the payee's node pubkey, encoded as a
// `payee` tag. If omitted, a decoder must recover it from the signature.
func Destination(dest *btcec.PublicKey) func(*Invoice) {
	return func(i *Invoice) { i.Destination = dest }
}

// Description sets the invoice's short plaintext description.
//
// Exactly one of Description or DescriptionHash must be set.
func Description(description string) func(*Invoice) {
	return func(i *Invoice) { i.Description = &description }
}

// DescriptionHash sets the SHA-256 hash of an out-of-band description,
// encoded as a `purpose_commit_hash` tag.
//
// Exactly one of Description or DescriptionHash must be set.
func DescriptionHash(hash [32]byte) func(*Invoice) {
	return func(i *Invoice) { i.DescriptionHash = &hash }
}

// PaymentSecret sets the payment secret the payee expects the payer to
// echo back in the final HTLC, encoded as a `payment_secret` tag. Required
// on every invoice this codec encodes.
func PaymentSecret(secret [32]byte) func(*Invoice) {
	return func(i *Invoice) { i.PaymentSecret = &secret }
}

// CLTVExpiry sets the minimum final CLTV expiry delta the payee requires
// of the last hop's HTLC.
func CLTVExpiry(delta uint64) func(*Invoice) {
	return func(i *Invoice) { i.minFinalCLTVExpiry = &delta }
}

// Expiry sets how long the invoice remains payable after its timestamp.
// If unset, a default of one hour applies.
func Expiry(expiry time.Duration) func(*Invoice) {
	return func(i *Invoice) { i.expiry = &expiry }
}

// FallbackAddr sets an on-chain fallback address tag.
func FallbackAddr(addr FallbackAddress) func(*Invoice) {
	return func(i *Invoice) { i.FallbackAddr = &addr }
}

// RouteHint adds one private routing hint, encoded as its own `route_hint`
// tag. Call it once per hint; an invoice may carry several.
func RouteHint(hops []RouteHop) func(*Invoice) {
	return func(i *Invoice) { i.RouteHints = append(i.RouteHints, hops) }
}

// Features sets the invoice's feature bit vector, encoded as a
// `feature_bits` tag.
func Features(features *lnwire.FeatureBits) func(*Invoice) {
	return func(i *Invoice) { i.Features = features }
}

// Metadata sets an opaque metadata payload, encoded as a `metadata` tag.
func Metadata(data []byte) func(*Invoice) {
	return func(i *Invoice) { i.Metadata = data }
}
