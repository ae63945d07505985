// Package ecdsautil adapts secp256k1 recoverable ECDSA signing/recovery to
// the narrow contract the invoice signing envelope needs (§6.4): sign a
// digest to a compact recoverable form, recover a compressed public key
// from one, and tolerate the non-canonical high-S signatures BOLT 11
// decoders are required to accept.
package ecdsautil

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// compactHeaderBase is the recovery-id offset SignCompact/RecoverCompact
// use for a compressed-pubkey signature (27 + 4).
const compactHeaderBase = 27 + 4

// Sha256 returns the single SHA-256 digest of data.
func Sha256(data []byte) [32]byte {
	var out [32]byte
	copy(out[:], chainhash.HashB(data))
	return out
}

// Signature is a compact recoverable ECDSA signature: 64 bytes of R‖S plus
// a 2-bit recovery id.
type Signature struct {
	RS         [64]byte
	RecoveryID byte
}

// SignRecoverable signs msgHash with priv, returning a canonical (low-S)
// compact signature and its recovery id.
func SignRecoverable(msgHash [32]byte, priv *btcec.PrivateKey) (Signature, error) {
	compact := ecdsa.SignCompact(priv, msgHash[:], true)

	var sig Signature
	sig.RecoveryID = compact[0] - compactHeaderBase
	copy(sig.RS[:], compact[1:])

	return sig, nil
}

// PublicKey derives the compressed public key for priv.
func PublicKey(priv *btcec.PrivateKey) *btcec.PublicKey {
	return priv.PubKey()
}

// Recover recovers the compressed public key that produced sig over
// msgHash. Per BOLT 11, a decoder must tolerate a non-canonical (high-S)
// signature: recovery is first attempted as given, and if that fails, S is
// normalized to n-S with the recovery id's low bit flipped and recovery is
// retried once.
func Recover(msgHash [32]byte, sig Signature) (*btcec.PublicKey, error) {
	pub, err := recoverWithID(msgHash, sig.RS, sig.RecoveryID)
	if err == nil {
		return pub, nil
	}

	normalized, flippedID, normalizable := normalizeHighS(sig.RS, sig.RecoveryID)
	if !normalizable {
		return nil, err
	}

	return recoverWithID(msgHash, normalized, flippedID)
}

func recoverWithID(msgHash [32]byte, rs [64]byte, recoveryID byte) (*btcec.PublicKey, error) {
	compact := make([]byte, 0, 65)
	compact = append(compact, compactHeaderBase+recoveryID)
	compact = append(compact, rs[:]...)

	pub, _, err := ecdsa.RecoverCompact(compact, msgHash[:])
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// normalizeHighS reports whether S exceeds the curve's half order, and if
// so returns the R‖S pair with S replaced by n-S along with the recovery
// id whose low bit has been flipped to match.
func normalizeHighS(rs [64]byte, recoveryID byte) (out [64]byte, newRecoveryID byte, ok bool) {
	var s btcec.ModNScalar
	overflow := s.SetByteSlice(rs[32:64])
	if overflow || !s.IsOverHalfOrder() {
		return out, 0, false
	}

	s.Negate()
	sBytes := s.Bytes()

	copy(out[:32], rs[:32])
	copy(out[32:], sBytes[:])

	return out, recoveryID ^ 1, true
}
