package zpay32

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/nova-carnivore/bolt11/bech32"
	"github.com/nova-carnivore/bolt11/lnwire"
)

// TagType identifies a BOLT 11 tagged field by its 5-bit wire type code.
type TagType byte

// The full set of tagged field types this codec understands. Any other
// type code encountered on decode is skipped, per BOLT 11's
// forward-compatibility clause.
const (
	TagPaymentHash        TagType = 1
	TagRouteHint          TagType = 3
	TagFeatureBits        TagType = 5
	TagExpireTime         TagType = 6
	TagFallbackAddress    TagType = 9
	TagDescription        TagType = 13
	TagPaymentSecret      TagType = 16
	TagPayee              TagType = 19
	TagPurposeCommitHash  TagType = 23
	TagMinFinalCLTVExpiry TagType = 24
	TagMetadata           TagType = 27
)

// Word lengths for the fixed-size tag payloads, per §4.4.
const (
	hashWordLen   = 52 // 32-byte hash, pack_8_to_5-expanded
	pubKeyWordLen = 53 // 33-byte compressed pubkey
	routeHopBytes = 51
)

// Name returns the tag's canonical BOLT 11 name, used by TagsObject and in
// error messages. Unknown type codes render as "unknown_<n>".
func (t TagType) Name() string {
	switch t {
	case TagPaymentHash:
		return "payment_hash"
	case TagRouteHint:
		return "route_hint"
	case TagFeatureBits:
		return "feature_bits"
	case TagExpireTime:
		return "expire_time"
	case TagFallbackAddress:
		return "fallback_address"
	case TagDescription:
		return "description"
	case TagPaymentSecret:
		return "payment_secret"
	case TagPayee:
		return "payee"
	case TagPurposeCommitHash:
		return "purpose_commit_hash"
	case TagMinFinalCLTVExpiry:
		return "min_final_cltv_expiry"
	case TagMetadata:
		return "metadata"
	default:
		return fmt.Sprintf("unknown_%d", byte(t))
	}
}

// RouteHop is one hop of a private routing hint, advising the payer how to
// reach the payee via a channel the public graph doesn't show.
type RouteHop struct {
	PubKey                    *btcec.PublicKey
	ShortChannelID            uint64
	FeeBaseMSat               uint32
	FeeProportionalMillionths uint32
	CLTVExpiryDelta           uint16
}

// FallbackAddress is an on-chain address a payer can fall back to if the
// Lightning payment cannot be completed. Rendering it into a textual
// address is left to the caller; see §1's stated non-goals.
type FallbackAddress struct {
	// Version is the witness version (0..16) for a native segwit
	// address, or 17/18 for legacy P2PKH/P2SH.
	Version byte
	Hash    []byte
}

const (
	fallbackVersionP2PKH byte = 17
	fallbackVersionP2SH  byte = 18
)

// IsP2PKH reports whether this fallback address is a legacy P2PKH address
// rather than a native segwit output.
func (f FallbackAddress) IsP2PKH() bool {
	return f.Version == fallbackVersionP2PKH
}

// IsP2SH reports whether this fallback address is a legacy P2SH address
// rather than a native segwit output.
func (f FallbackAddress) IsP2SH() bool {
	return f.Version == fallbackVersionP2SH
}

// IsWitness reports whether this fallback address is a native segwit
// output, i.e. its version is neither of the two legacy codes.
func (f FallbackAddress) IsWitness() bool {
	return !f.IsP2PKH() && !f.IsP2SH()
}

// Tag is a single BOLT 11 tagged field. It is modeled as a discriminated
// union: Type selects which of the payload fields below is meaningful,
// keeping the common "unknown or wrong-length tag is dropped" decode path
// a single default case instead of an open type hierarchy.
type Tag struct {
	Type TagType

	PaymentHash        *[32]byte
	PaymentSecret      *[32]byte
	Description        *string
	PurposeCommitHash  *[32]byte
	Payee              *btcec.PublicKey
	ExpireTime         *uint64
	MinFinalCLTVExpiry *uint64
	FallbackAddress    *FallbackAddress
	RouteHint          []RouteHop
	FeatureBits        *lnwire.FeatureBits
	Metadata           []byte
}

// Name returns the canonical name of the tag's type.
func (t Tag) Name() string {
	return t.Type.Name()
}

// hexToBytes decodes a lowercase hex string, rejecting odd lengths rather
// than silently truncating.
func hexToBytes(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, ErrOddHexLength{Hex: s}
	}
	return hex.DecodeString(s)
}

// writeTaggedField appends the (type, length, value) framing for one tag's
// already-5-bit-word-encoded payload to buf.
func writeTaggedField(buf *bytes.Buffer, typ TagType, words []byte) error {
	if len(words) > 1023 {
		return fmt.Errorf("tag %s payload too long: %d words", typ.Name(), len(words))
	}

	buf.WriteByte(byte(typ))
	buf.WriteByte(byte(len(words) >> 5))
	buf.WriteByte(byte(len(words) & 31))
	buf.Write(words)

	return nil
}

// encodeTag appends one tag's full wire representation to buf.
func encodeTag(buf *bytes.Buffer, t Tag) error {
	switch t.Type {
	case TagPaymentHash:
		words := bech32.ConvertBits8To5(t.PaymentHash[:])
		return writeTaggedField(buf, t.Type, words)

	case TagPaymentSecret:
		words := bech32.ConvertBits8To5(t.PaymentSecret[:])
		return writeTaggedField(buf, t.Type, words)

	case TagPurposeCommitHash:
		words := bech32.ConvertBits8To5(t.PurposeCommitHash[:])
		return writeTaggedField(buf, t.Type, words)

	case TagPayee:
		words := bech32.ConvertBits8To5(t.Payee.SerializeCompressed())
		return writeTaggedField(buf, t.Type, words)

	case TagMetadata:
		words := bech32.ConvertBits8To5(t.Metadata)
		return writeTaggedField(buf, t.Type, words)

	case TagDescription:
		words := bech32.ConvertBits8To5([]byte(*t.Description))
		return writeTaggedField(buf, t.Type, words)

	case TagExpireTime:
		return writeTaggedField(buf, t.Type, uint64ToBase32(*t.ExpireTime))

	case TagMinFinalCLTVExpiry:
		return writeTaggedField(buf, t.Type, uint64ToBase32(*t.MinFinalCLTVExpiry))

	case TagFallbackAddress:
		payload := append([]byte{t.FallbackAddress.Version},
			bech32.ConvertBits8To5(t.FallbackAddress.Hash)...)
		return writeTaggedField(buf, t.Type, payload)

	case TagRouteHint:
		raw := make([]byte, 0, routeHopBytes*len(t.RouteHint))
		for _, hop := range t.RouteHint {
			raw = append(raw, encodeRouteHop(hop)...)
		}
		return writeTaggedField(buf, t.Type, bech32.ConvertBits8To5(raw))

	case TagFeatureBits:
		return writeTaggedField(buf, t.Type, t.FeatureBits.EncodeWords())

	default:
		return ErrUnknownTagName{Name: t.Name()}
	}
}

func encodeRouteHop(hop RouteHop) []byte {
	out := make([]byte, routeHopBytes)
	copy(out[:33], hop.PubKey.SerializeCompressed())
	binary.BigEndian.PutUint64(out[33:41], hop.ShortChannelID)
	binary.BigEndian.PutUint32(out[41:45], hop.FeeBaseMSat)
	binary.BigEndian.PutUint32(out[45:49], hop.FeeProportionalMillionths)
	binary.BigEndian.PutUint16(out[49:51], hop.CLTVExpiryDelta)
	return out
}

func decodeRouteHop(raw []byte) (RouteHop, error) {
	pub, err := btcec.ParsePubKey(raw[:33])
	if err != nil {
		return RouteHop{}, err
	}
	return RouteHop{
		PubKey:                    pub,
		ShortChannelID:            binary.BigEndian.Uint64(raw[33:41]),
		FeeBaseMSat:               binary.BigEndian.Uint32(raw[41:45]),
		FeeProportionalMillionths: binary.BigEndian.Uint32(raw[45:49]),
		CLTVExpiryDelta:           binary.BigEndian.Uint16(raw[49:51]),
	}, nil
}

// decodeTags walks the tagged-field section of the data part, decoding
// each entry in turn. Unknown type codes and tags whose payload length
// doesn't match their type's fixed requirement are skipped, not errored;
// a length that would run the tag past the end of the data is a fatal
// decode error, since there is no way to know how far to skip.
func decodeTags(data []byte) ([]Tag, error) {
	var tags []Tag

	idx := 0
	for len(data)-idx >= 3 {
		typ := TagType(data[idx])
		length := int(data[idx+1])*32 + int(data[idx+2])

		if idx+3+length > len(data) {
			return nil, ErrTagExtendsBeyondData{Type: typ, Length: length}
		}
		payload := data[idx+3 : idx+3+length]
		idx += 3 + length

		tag, ok, err := decodeTag(typ, payload)
		if err != nil {
			return nil, err
		}
		if ok {
			tags = append(tags, tag)
		}
	}

	return tags, nil
}

// decodeTag decodes a single tag's payload. ok is false when the tag's
// type is unrecognized or its length doesn't satisfy the type's
// constraint; both cases are silently skipped by the caller.
func decodeTag(typ TagType, payload []byte) (tag Tag, ok bool, err error) {
	switch typ {
	case TagPaymentHash:
		if len(payload) != hashWordLen {
			return Tag{}, false, nil
		}
		var hash [32]byte
		b, err := bech32.ConvertBits5To8(payload, false)
		if err != nil {
			return Tag{}, false, nil
		}
		copy(hash[:], b)
		return Tag{Type: typ, PaymentHash: &hash}, true, nil

	case TagPaymentSecret:
		if len(payload) != hashWordLen {
			return Tag{}, false, nil
		}
		var secret [32]byte
		b, err := bech32.ConvertBits5To8(payload, false)
		if err != nil {
			return Tag{}, false, nil
		}
		copy(secret[:], b)
		return Tag{Type: typ, PaymentSecret: &secret}, true, nil

	case TagPurposeCommitHash:
		if len(payload) != hashWordLen {
			return Tag{}, false, nil
		}
		var hash [32]byte
		b, err := bech32.ConvertBits5To8(payload, false)
		if err != nil {
			return Tag{}, false, nil
		}
		copy(hash[:], b)
		return Tag{Type: typ, PurposeCommitHash: &hash}, true, nil

	case TagPayee:
		if len(payload) != pubKeyWordLen {
			return Tag{}, false, nil
		}
		b, err := bech32.ConvertBits5To8(payload, false)
		if err != nil {
			return Tag{}, false, nil
		}
		pub, err := btcec.ParsePubKey(b)
		if err != nil {
			return Tag{}, false, nil
		}
		return Tag{Type: typ, Payee: pub}, true, nil

	case TagMetadata:
		b, err := bech32.ConvertBits5To8(payload, false)
		if err != nil {
			return Tag{}, false, nil
		}
		return Tag{Type: typ, Metadata: b}, true, nil

	case TagDescription:
		b, err := bech32.ConvertBits5To8(payload, false)
		if err != nil {
			return Tag{}, false, nil
		}
		desc := string(b)
		return Tag{Type: typ, Description: &desc}, true, nil

	case TagExpireTime:
		v, err := base32ToUint64(payload)
		if err != nil {
			return Tag{}, false, nil
		}
		return Tag{Type: typ, ExpireTime: &v}, true, nil

	case TagMinFinalCLTVExpiry:
		v, err := base32ToUint64(payload)
		if err != nil {
			return Tag{}, false, nil
		}
		return Tag{Type: typ, MinFinalCLTVExpiry: &v}, true, nil

	case TagFallbackAddress:
		if len(payload) < 1 {
			return Tag{}, false, nil
		}
		hashBytes, err := bech32.ConvertBits5To8(payload[1:], false)
		if err != nil {
			return Tag{}, false, nil
		}
		return Tag{Type: typ, FallbackAddress: &FallbackAddress{
			Version: payload[0],
			Hash:    hashBytes,
		}}, true, nil

	case TagRouteHint:
		raw, err := bech32.ConvertBits5To8(payload, false)
		if err != nil || len(raw)%routeHopBytes != 0 {
			return Tag{}, false, nil
		}
		hops := make([]RouteHop, 0, len(raw)/routeHopBytes)
		for off := 0; off < len(raw); off += routeHopBytes {
			hop, err := decodeRouteHop(raw[off : off+routeHopBytes])
			if err != nil {
				return Tag{}, false, nil
			}
			hops = append(hops, hop)
		}
		return Tag{Type: typ, RouteHint: hops}, true, nil

	case TagFeatureBits:
		return Tag{Type: typ, FeatureBits: lnwire.DecodeFeatureWords(payload)}, true, nil

	default:
		// Unknown tag code: forward-compatible, silently skipped.
		return Tag{}, false, nil
	}
}
