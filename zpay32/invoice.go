// Package zpay32 encodes, signs, and decodes BOLT 11 Lightning Network
// payment request invoices: a bech32-framed, secp256k1-signed, self
// describing request for payment over the Lightning Network.
package zpay32

import (
	"bytes"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/go-errors/errors"
	"github.com/nova-carnivore/bolt11/bech32"
	"github.com/nova-carnivore/bolt11/chaincfg"
	"github.com/nova-carnivore/bolt11/ecdsautil"
	"github.com/nova-carnivore/bolt11/lnwire"
)

const (
	// timestampWordLen is the number of 5-bit words the invoice
	// timestamp occupies (35 bits).
	timestampWordLen = 7

	// signatureWordLen is the number of 5-bit words the trailing
	// signature envelope occupies: 103 words of R‖S plus one word of
	// recovery id.
	signatureWordLen = 104

	// defaultExpiry is used when an invoice doesn't set its own expiry.
	defaultExpiry = 3600 * time.Second

	// defaultFinalCLTVExpiry is used when an invoice doesn't request a
	// specific final CLTV delta. BOLT 11 prescribes no default; this
	// follows the widely deployed convention.
	defaultFinalCLTVExpiry = 18
)

// MessageSigner adapts an external secp256k1 signer to the shape Encode
// needs: a function producing a 65-byte compact signature (1 header byte
// followed by 64 bytes of R‖S) over an arbitrary digest. This is the
// §6.4 "sign_recoverable" collaborator, expressed as lnd's node signers
// already are.
type MessageSigner struct {
	SignCompact func(hash []byte) ([]byte, error)
}

// Invoice is a decoded invoice, or one under construction for signing.
// Optional fields are nil unless the invoice they were parsed from (or
// built for) set them.
type Invoice struct {
	// Net identifies the chain this invoice targets.
	Net *chaincfg.Params

	// MilliSat is the requested amount, or nil for a donation invoice.
	MilliSat *lnwire.MilliSatoshi

	// Timestamp is the invoice's creation time, encoded to second
	// resolution.
	Timestamp time.Time

	// PaymentHash is the hash the payer's HTLC must carry as its
	// payment hash.
	PaymentHash *[32]byte

	// PaymentSecret is the secret the payee expects echoed back in the
	// final HTLC's payload.
	PaymentSecret *[32]byte

	// Destination is the payee's node pubkey as carried in a `payee` tag.
	// Decode sets it only when the invoice has such a tag (see
	// PayeeNodeKey for the recovered key); optionally set before Encode
	// to include it explicitly as a `payee` tag.
	Destination *btcec.PublicKey

	// Description is a short plaintext description of what is being
	// paid for. Exactly one of Description or DescriptionHash is set.
	Description *string

	// DescriptionHash is the hash of an out-of-band description.
	DescriptionHash *[32]byte

	// FallbackAddr is an on-chain fallback address.
	FallbackAddr *FallbackAddress

	// RouteHints holds zero or more private routing hints, each its own
	// ordered list of hops.
	RouteHints [][]RouteHop

	// Features is the invoice's feature bit vector.
	Features *lnwire.FeatureBits

	// Metadata is an opaque payload associated with the invoice.
	Metadata []byte

	// Tags is the ordered, duplicate-preserving list of every tagged
	// field this invoice carries, in wire order. Encode populates it
	// from the fields above; Decode populates it directly from the
	// wire and the fields above are derived from it (last occurrence
	// wins per tag type, except route_hint tags, which all accumulate
	// into RouteHints).
	Tags []Tag

	// Signature is the 64-byte R‖S signature over the invoice's signing
	// pre-image. Empty until Sign or Decode populates it.
	Signature [64]byte

	// RecoveryID is the 2-bit recovery id accompanying Signature.
	RecoveryID byte

	// PayeeNodeKey is the payee's pubkey, derived either from a `payee`
	// tag or by signature recovery. Nil if recovery was attempted and
	// failed.
	PayeeNodeKey *btcec.PublicKey

	// PaymentRequest is the bech32-encoded invoice string. Empty on an
	// unsigned invoice produced by NewInvoice.
	PaymentRequest string

	// Complete is true once the invoice carries a real signature,
	// whether from Sign or Decode.
	Complete bool

	minFinalCLTVExpiry *uint64
	expiry             *time.Duration
	recoverErr         error
}

// RecoverError returns the reason signature recovery failed to populate
// PayeeNodeKey, or nil if recovery wasn't needed or succeeded. Recovery
// failure never aborts Decode; this is purely diagnostic.
func (inv *Invoice) RecoverError() error {
	return inv.recoverErr
}

// NewInvoice builds an unsigned Invoice from the given mandatory fields
// plus any functional options. If timestamp is the zero time, the current
// time is used.
func NewInvoice(net *chaincfg.Params, paymentHash [32]byte,
	timestamp time.Time, options ...func(*Invoice)) (*Invoice, error) {

	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	invoice := &Invoice{
		Net:         net,
		PaymentHash: &paymentHash,
		Timestamp:   timestamp,
	}

	for _, option := range options {
		option(invoice)
	}

	if err := validateForEncode(invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// Expiry returns how long after Timestamp the invoice remains payable,
// defaulting to one hour if the invoice didn't set its own.
func (inv *Invoice) Expiry() time.Duration {
	if inv.expiry != nil {
		return *inv.expiry
	}
	return defaultExpiry
}

// MinFinalCLTVExpiry returns the minimum final CLTV expiry delta the
// payee requires.
func (inv *Invoice) MinFinalCLTVExpiry() uint64 {
	if inv.minFinalCLTVExpiry != nil {
		return *inv.minFinalCLTVExpiry
	}
	return defaultFinalCLTVExpiry
}

// TimestampString renders Timestamp as an ISO-8601 UTC string.
func (inv *Invoice) TimestampString() string {
	return inv.Timestamp.UTC().Format(time.RFC3339)
}

// TimeExpireDateString renders Timestamp+Expiry as an ISO-8601 UTC string.
func (inv *Invoice) TimeExpireDateString() string {
	return inv.Timestamp.Add(inv.Expiry()).UTC().Format(time.RFC3339)
}

// TagsObject returns each tag keyed by its canonical name, keeping only
// the most recently occurring instance of any tag type that appears more
// than once.
func (inv *Invoice) TagsObject() map[string]Tag {
	out := make(map[string]Tag, len(inv.Tags))
	for _, t := range inv.Tags {
		out[t.Name()] = t
	}
	return out
}

// validateForEncode checks that an invoice has every tag BOLT 11 requires
// before it can be signed.
func validateForEncode(inv *Invoice) error {
	if inv.Net == nil {
		return errors.New("net params not set")
	}
	if inv.PaymentHash == nil {
		return ErrMissingRequiredTag{Name: "payment_hash"}
	}
	if inv.PaymentSecret == nil {
		return ErrMissingRequiredTag{Name: "payment_secret"}
	}
	if inv.Description == nil && inv.DescriptionHash == nil {
		return ErrMissingRequiredTag{Name: "description"}
	}
	if inv.Description != nil && inv.DescriptionHash != nil {
		return errors.New("both description and description hash set")
	}

	return nil
}

// buildTags renders an invoice's logical fields into the ordered tag list
// that Encode will write to the wire.
func buildTags(inv *Invoice) []Tag {
	var tags []Tag

	if inv.PaymentHash != nil {
		tags = append(tags, Tag{Type: TagPaymentHash, PaymentHash: inv.PaymentHash})
	}
	if inv.PaymentSecret != nil {
		tags = append(tags, Tag{Type: TagPaymentSecret, PaymentSecret: inv.PaymentSecret})
	}
	if inv.Description != nil {
		tags = append(tags, Tag{Type: TagDescription, Description: inv.Description})
	}
	if inv.DescriptionHash != nil {
		tags = append(tags, Tag{Type: TagPurposeCommitHash, PurposeCommitHash: inv.DescriptionHash})
	}
	if inv.minFinalCLTVExpiry != nil {
		tags = append(tags, Tag{Type: TagMinFinalCLTVExpiry, MinFinalCLTVExpiry: inv.minFinalCLTVExpiry})
	}
	if inv.expiry != nil {
		seconds := uint64(inv.expiry.Seconds())
		tags = append(tags, Tag{Type: TagExpireTime, ExpireTime: &seconds})
	}
	if inv.FallbackAddr != nil {
		tags = append(tags, Tag{Type: TagFallbackAddress, FallbackAddress: inv.FallbackAddr})
	}
	for _, hops := range inv.RouteHints {
		tags = append(tags, Tag{Type: TagRouteHint, RouteHint: hops})
	}
	if inv.Features != nil {
		tags = append(tags, Tag{Type: TagFeatureBits, FeatureBits: inv.Features})
	}
	if inv.Metadata != nil {
		tags = append(tags, Tag{Type: TagMetadata, Metadata: inv.Metadata})
	}
	if inv.Destination != nil {
		tags = append(tags, Tag{Type: TagPayee, Payee: inv.Destination})
	}

	return tags
}

// applyDecodedTags populates an invoice's convenience fields from its
// freshly decoded Tags list, keeping the last occurrence of any tag type
// that may appear only once, and accumulating every route_hint tag in
// order.
func applyDecodedTags(inv *Invoice) {
	for _, t := range inv.Tags {
		switch t.Type {
		case TagPaymentHash:
			inv.PaymentHash = t.PaymentHash
		case TagPaymentSecret:
			inv.PaymentSecret = t.PaymentSecret
		case TagDescription:
			inv.Description = t.Description
		case TagPurposeCommitHash:
			inv.DescriptionHash = t.PurposeCommitHash
		case TagPayee:
			inv.Destination = t.Payee
		case TagExpireTime:
			d := time.Duration(*t.ExpireTime) * time.Second
			inv.expiry = &d
		case TagMinFinalCLTVExpiry:
			inv.minFinalCLTVExpiry = t.MinFinalCLTVExpiry
		case TagFallbackAddress:
			inv.FallbackAddr = t.FallbackAddress
		case TagRouteHint:
			inv.RouteHints = append(inv.RouteHints, t.RouteHint)
		case TagFeatureBits:
			inv.Features = t.FeatureBits
		case TagMetadata:
			inv.Metadata = t.Metadata
		}
	}
}

// signingPreimage builds the §4.5 signing pre-image: the hrp's UTF-8
// bytes followed by the data words (timestamp + tags, never the
// signature) expanded to bytes with zero-bit padding.
func signingPreimage(hrp string, dataWords []byte) ([]byte, error) {
	expanded, err := bech32.ConvertBits5To8(dataWords, true)
	if err != nil {
		return nil, err
	}
	msg := make([]byte, 0, len(hrp)+len(expanded))
	msg = append(msg, hrp...)
	msg = append(msg, expanded...)
	return msg, nil
}

// Encode renders the invoice to its bech32 wire form, signing it with
// signer. The invoice must already satisfy validateForEncode.
func (inv *Invoice) Encode(signer MessageSigner) (string, error) {
	if err := validateForEncode(inv); err != nil {
		return "", err
	}

	var data bytes.Buffer
	data.Write(zeroPad(uint64ToBase32(uint64(inv.Timestamp.Unix())), timestampWordLen))

	inv.Tags = buildTags(inv)
	for _, t := range inv.Tags {
		if err := encodeTag(&data, t); err != nil {
			return "", err
		}
	}

	hrp := "ln" + inv.Net.Bech32HRPSegwit
	if inv.MilliSat != nil {
		hrp += MSatToHRP(inv.MilliSat)
	}

	preimage, err := signingPreimage(hrp, data.Bytes())
	if err != nil {
		return "", err
	}
	hash := ecdsautil.Sha256(preimage)

	sig, err := signer.SignCompact(hash[:])
	if err != nil {
		return "", ErrSignFailed{Err: err}
	}

	recoveryID := sig[0] - 27 - 4
	var rs [64]byte
	copy(rs[:], sig[1:])

	inv.Signature = rs
	inv.RecoveryID = recoveryID
	inv.Complete = true

	data.Write(bech32.ConvertBits8To5(rs[:]))
	data.WriteByte(recoveryID)

	encoded, err := bech32.Encode(hrp, data.Bytes())
	if err != nil {
		return "", err
	}
	inv.PaymentRequest = encoded

	return encoded, nil
}

// Sign signs an unsigned invoice with priv, using the default secp256k1
// provider, and returns the now-complete invoice.
func Sign(inv *Invoice, priv *btcec.PrivateKey) (*Invoice, error) {
	signer := MessageSigner{
		SignCompact: func(hash []byte) ([]byte, error) {
			var h [32]byte
			copy(h[:], hash)

			sig, err := ecdsautil.SignRecoverable(h, priv)
			if err != nil {
				return nil, err
			}

			out := make([]byte, 0, 65)
			out = append(out, 27+4+sig.RecoveryID)
			out = append(out, sig.RS[:]...)
			return out, nil
		},
	}

	if _, err := inv.Encode(signer); err != nil {
		return nil, err
	}

	inv.PayeeNodeKey = ecdsautil.PublicKey(priv)

	return inv, nil
}

// Decode parses an encoded invoice string into a decoded Invoice.
func Decode(invoice string) (*Invoice, error) {
	hrp, data, err := bech32.Decode(invoice)
	if err != nil {
		return nil, err
	}

	if len(hrp) < 2 || hrp[:2] != "ln" {
		return nil, ErrUnknownNetwork{Prefix: hrp}
	}

	prefix, amountToken, matched := splitNetworkPrefix(hrp[2:])
	if !matched {
		return nil, ErrUnknownNetwork{Prefix: hrp}
	}
	net, _ := networkByPrefix(prefix)

	msat, err := HRPToMSat(amountToken)
	if err != nil {
		return nil, err
	}

	if len(data) < timestampWordLen+signatureWordLen {
		return nil, ErrDataTooShort{Got: len(data)}
	}

	timestampWords := data[:timestampWordLen]
	tagWords := data[timestampWordLen : len(data)-signatureWordLen]
	sigWords := data[len(data)-signatureWordLen:]

	ts, err := base32ToUint64(timestampWords)
	if err != nil {
		return nil, err
	}

	tags, err := decodeTags(tagWords)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		Net:       net,
		MilliSat:  msat,
		Timestamp: time.Unix(int64(ts), 0),
		Tags:      tags,
		Complete:  true,
	}
	applyDecodedTags(inv)

	sigBytes, err := bech32.ConvertBits5To8(sigWords[:signatureWordLen-1], false)
	if err != nil {
		return nil, err
	}
	var rs [64]byte
	copy(rs[:], sigBytes)
	recoveryID := sigWords[signatureWordLen-1] & 0x3

	inv.Signature = rs
	inv.RecoveryID = recoveryID

	dataBeforeSig := data[:len(data)-signatureWordLen]
	preimage, err := signingPreimage(hrp, dataBeforeSig)
	if err != nil {
		return nil, err
	}
	hash := ecdsautil.Sha256(preimage)

	if inv.Destination != nil {
		inv.PayeeNodeKey = inv.Destination
	} else {
		pub, err := ecdsautil.Recover(hash, ecdsautil.Signature{RS: rs, RecoveryID: recoveryID})
		if err != nil {
			inv.PayeeNodeKey = nil
			inv.recoverErr = ErrRecoverFailed{Err: err}
		} else {
			inv.PayeeNodeKey = pub
		}
	}

	inv.PaymentRequest = invoice

	return inv, nil
}

func zeroPad(words []byte, n int) []byte {
	if len(words) >= n {
		return words[len(words)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(words):], words)
	return out
}

// uint64ToBase32 renders num as the minimum number of big-endian 5-bit
// words needed to hold it, with at least one word for a zero value.
func uint64ToBase32(num uint64) []byte {
	if num == 0 {
		return []byte{0}
	}

	var buf [13]byte
	i := len(buf)
	for num > 0 {
		i--
		buf[i] = byte(num & 31)
		num >>= 5
	}
	return buf[i:]
}

// base32ToUint64 interprets a sequence of 5-bit words as a big-endian
// unsigned integer.
func base32ToUint64(words []byte) (uint64, error) {
	if len(words) > 13 {
		return 0, errors.Errorf("cannot parse %d words as uint64", len(words))
	}
	var v uint64
	for _, w := range words {
		if w > 31 {
			return 0, bech32.ErrInvalidDataWord{Value: w}
		}
		v = v<<5 | uint64(w)
	}
	return v, nil
}
