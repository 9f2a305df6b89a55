// Package keys implements the core's cryptography façade for public keys
// and ECDSA signature verification over the two curves the reference node
// supports: NIST P-256 (secp256r1, the chain's native curve)
// and secp256k1 (accepted by CheckSig/VerifyWithECDsa for interoperability
// with other chains' signatures, per the CryptoLib surface).
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/hex"
	"errors"
	"math/big"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/util"
)

// fieldVal converts a big.Int coordinate into a secp256k1.FieldVal.
func fieldVal(v *big.Int) *secp256k1.FieldVal {
	f := new(secp256k1.FieldVal)
	f.SetByteSlice(v.Bytes())
	return f
}

// Curve identifies which elliptic curve a PublicKey/signature belongs to.
type Curve byte

// Supported curves.
const (
	Secp256r1 Curve = iota
	Secp256k1
)

// PublicKeySize is the size of a compressed public key in bytes.
const PublicKeySize = 33

// PublicKey represents a serialized compressed EC point and the curve it
// belongs to.
type PublicKey struct {
	Curve Curve
	X, Y  *big.Int
}

func curveParams(c Curve) elliptic.Curve {
	if c == Secp256k1 {
		return secp256k1.S256()
	}
	return elliptic.P256()
}

// NewPublicKeyFromBytes decodes a compressed (0x02/0x03-prefixed) or
// uncompressed (0x04-prefixed) EC point into a PublicKey on secp256r1,
// the chain's native curve (matches NEO account script-hash derivation).
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	return newPublicKeyFromBytesCurve(b, Secp256r1)
}

// NewPublicKeyFromBytesCurve decodes a compressed public key on the given
// curve (used by CryptoLib.VerifyWithECDsa, which accepts secp256k1 keys).
func NewPublicKeyFromBytesCurve(b []byte, c Curve) (*PublicKey, error) {
	return newPublicKeyFromBytesCurve(b, c)
}

func newPublicKeyFromBytesCurve(b []byte, c Curve) (*PublicKey, error) {
	if len(b) == 0 {
		return nil, errors.New("empty public key")
	}
	curve := curveParams(c)
	switch b[0] {
	case 0x00:
		return &PublicKey{Curve: c, X: new(big.Int), Y: new(big.Int)}, nil
	case 0x02, 0x03:
		if len(b) != PublicKeySize {
			return nil, errors.New("invalid compressed public key length")
		}
		x := new(big.Int).SetBytes(b[1:])
		y := decompressY(curve, x, b[0]==0x03)
		if y == nil {
			return nil, errors.New("point not on curve")
		}
		return &PublicKey{Curve: c, X: x, Y: y}, nil
	case 0x04:
		if len(b) != 65 {
			return nil, errors.New("invalid uncompressed public key length")
		}
		x := new(big.Int).SetBytes(b[1:33])
		y := new(big.Int).SetBytes(b[33:65])
		return &PublicKey{Curve: c, X: x, Y: y}, nil
	default:
		return nil, errors.New("invalid public key prefix")
	}
}

// decompressY recovers Y from X and the compressed-point sign bit.
func decompressY(curve elliptic.Curve, x *big.Int, odd bool) *big.Int {
	params := curve.Params()
	ySq := new(big.Int).Exp(x, big.NewInt(3), params.P)
	if params.P.Cmp(elliptic.P256().Params().P) == 0 {
		// secp256r1 has a = -3; secp256k1 has a = 0.
		threeX := new(big.Int).Mul(x, big.NewInt(3))
		ySq.Sub(ySq, threeX)
	}
	ySq.Add(ySq, params.B)
	ySq.Mod(ySq, params.P)
	y := new(big.Int).ModSqrt(ySq, params.P)
	if y == nil {
		return nil
	}
	if y.Bit(0) != boolToUint(odd) {
		y.Sub(params.P, y)
	}
	return y
}

func boolToUint(b bool) uint {
	if b {
		return 1
	}
	return 0
}

// Bytes returns the compressed encoding of the public key.
func (p *PublicKey) Bytes() []byte {
	if p.X.Sign() == 0 && p.Y.Sign() == 0 {
		return []byte{0x00}
	}
	x := p.X.Bytes()
	padded := make([]byte, 32)
	copy(padded[32-len(x):], x)
	prefix := byte(0x02)
	if p.Y.Bit(0) != 0 {
		prefix = 0x03
	}
	return append([]byte{prefix}, padded...)
}

// String returns the hex encoding of the compressed public key.
func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// GetScriptHash builds the standard single-signature verification script
// for this key (PUSH pubkey, SYSCALL CheckSig) and returns its Hash160 —
// the account's script hash.
func (p *PublicKey) GetScriptHash() util.Uint160 {
	return hash.Hash160(p.verificationScript())
}

// verificationScript emits the standard "push pubkey; syscall CheckSig"
// script. Opcodes are spelled out numerically to avoid importing the vm
// package from keys (which the vm package itself depends on).
func (p *PublicKey) verificationScript() []byte {
	b := p.Bytes()
	script := make([]byte, 0, 2+len(b)+5)
	script = append(script, 0x0c, byte(len(b))) // PUSHDATA1
	script = append(script, b...)
	script = append(script, 0x41) // SYSCALL
	script = append(script, sysCallCheckSigHash()...)
	return script
}

// Verify checks an ECDSA signature over msg using this public key. The
// signature is the raw (r||s) 64-byte form used throughout the chain,
// never DER.
func (p *PublicKey) Verify(signature, msg []byte) bool {
	if len(signature) != 64 {
		return false
	}
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	digest := hash.Sha256(msg)
	switch p.Curve {
	case Secp256k1:
		pub := secp256k1.NewPublicKey(fieldVal(p.X), fieldVal(p.Y))
		return ecdsa.Verify(pub.ToECDSA(), digest[:], r, s)
	default:
		pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: p.X, Y: p.Y}
		return ecdsa.Verify(pub, digest[:], r, s)
	}
}

// VerifyWithHash checks a raw (r||s) ECDSA signature over hasher(msg),
// letting CryptoLib.verifyWithECDsa choose Sha256 or Keccak256 independently
// of the curve (the VerifyWithECDsa(msg, pubkey, signature, curve) surface).
func (p *PublicKey) VerifyWithHash(signature, msg []byte, hasher func([]byte) util.Uint256) bool {
	if len(signature) != 64 {
		return false
	}
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	digest := hasher(msg)
	switch p.Curve {
	case Secp256k1:
		pub := secp256k1.NewPublicKey(fieldVal(p.X), fieldVal(p.Y))
		return ecdsa.Verify(pub.ToECDSA(), digest[:], r, s)
	default:
		pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: p.X, Y: p.Y}
		return ecdsa.Verify(pub, digest[:], r, s)
	}
}

// sysCallCheckSigHash returns the 4-byte interop hash of
// System.Crypto.CheckSig, computed the same way the reference node
// derives interop method ids (first 4 bytes of Sha256(name)). Declared
// here (rather than imported from the interop-names registry) to avoid a
// package cycle between keys and core/interop.
func sysCallCheckSigHash() []byte {
	d := hash.Sha256([]byte("System.Crypto.CheckSig"))
	return d[:4]
}
