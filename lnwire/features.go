package lnwire

import "math/big"

// namedFeaturePairs lists the well-known BOLT 9 feature bit pairs this
// codec recognizes by name, keyed by their even ("required") bit position.
var namedFeaturePairs = map[uint]string{
	0:  "option_data_loss_protect",
	2:  "initial_routing_sync",
	4:  "option_upfront_shutdown_script",
	6:  "gossip_queries",
	8:  "var_onion_optin",
	10: "gossip_queries_ex",
	12: "option_static_remotekey",
	14: "payment_secret",
	16: "basic_mpp",
	18: "option_support_large_channel",
}

// FeaturePair describes the required/optional state of one named feature
// bit pair, once at least one of the two bits is observed to be set.
type FeaturePair struct {
	// Required is true if the even ("compulsory") bit of the pair is
	// set.
	Required bool

	// Supported is true if either bit of the pair is set.
	Supported bool
}

// ExtraBits describes the feature bits this codec has no name for, i.e.
// positions 20 and above.
type ExtraBits struct {
	// Bits holds every set bit position at or above 20.
	Bits []uint

	// HasRequired is true iff any of Bits is at an even position, which
	// under BOLT 9's even/odd convention means the feature is not safe
	// to ignore.
	HasRequired bool
}

// FeatureBits is a big-endian feature bitfield, indexed so that bit 0 is
// the least-significant bit of the last wire word. It remembers the wire
// word width it was built with (or decoded from) so that a caller-chosen
// width round-trips even when the high-order words are all zero.
type FeatureBits struct {
	bits    *big.Int
	wordLen int
}

// NewFeatureBits returns an all-zero feature bitfield occupying wordLen
// 5-bit wire words.
func NewFeatureBits(wordLen int) *FeatureBits {
	return &FeatureBits{bits: new(big.Int), wordLen: wordLen}
}

// DecodeFeatureWords reconstructs a FeatureBits from the 5-bit words read
// off the wire, treating them as digits of a big-endian base-32 integer.
func DecodeFeatureWords(words []byte) *FeatureBits {
	v := new(big.Int)
	base := big.NewInt(32)
	for _, w := range words {
		v.Mul(v, base)
		v.Add(v, big.NewInt(int64(w)))
	}
	return &FeatureBits{bits: v, wordLen: len(words)}
}

// EncodeWords renders the bitfield back into its 5-bit wire words, padded
// on the left (toward more-significant words) to the field's remembered
// word length.
func (f *FeatureBits) EncodeWords() []byte {
	words := make([]byte, f.wordLen)
	tmp := new(big.Int).Set(f.bits)
	base := big.NewInt(32)
	mod := new(big.Int)
	for i := f.wordLen - 1; i >= 0; i-- {
		tmp.DivMod(tmp, base, mod)
		words[i] = byte(mod.Int64())
	}
	return words
}

// WordLen reports the number of 5-bit wire words this field occupies.
func (f *FeatureBits) WordLen() int {
	return f.wordLen
}

// IsSet reports whether the given bit position is set.
func (f *FeatureBits) IsSet(bit uint) bool {
	return f.bits.Bit(int(bit)) == 1
}

// Set marks the given bit position, growing the remembered word length if
// the bit falls beyond it.
func (f *FeatureBits) Set(bit uint) {
	f.bits.SetBit(f.bits, int(bit), 1)
	if needed := int(bit)/5 + 1; needed > f.wordLen {
		f.wordLen = needed
	}
}

// NamedPairs returns every named feature pair that has at least one of its
// two bits set, keyed by the pair's canonical name.
func (f *FeatureBits) NamedPairs() map[string]FeaturePair {
	out := make(map[string]FeaturePair)
	for evenBit, name := range namedFeaturePairs {
		required := f.IsSet(evenBit)
		supported := required || f.IsSet(evenBit+1)
		if !supported {
			continue
		}
		out[name] = FeaturePair{Required: required, Supported: supported}
	}
	return out
}

// Extra returns the feature bits this codec has no name for, i.e. bit
// positions 20 and above.
func (f *FeatureBits) Extra() ExtraBits {
	var extra ExtraBits
	total := uint(f.wordLen) * 5
	for bit := uint(20); bit < total; bit++ {
		if !f.IsSet(bit) {
			continue
		}
		extra.Bits = append(extra.Bits, bit)
		if bit%2 == 0 {
			extra.HasRequired = true
		}
	}
	return extra
}
