package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/nspcc-dev/rfc6979"
)

// PrivateKey wraps a secp256r1 scalar, the chain's native signing key.
type PrivateKey struct {
	b []byte
}

// NewPrivateKey generates a new random secp256r1 private key.
func NewPrivateKey() (*PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	b := priv.D.Bytes()
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return &PrivateKey{b: padded}, nil
}

// NewPrivateKeyFromBytes builds a PrivateKey from a raw 32-byte scalar.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid private key length %d", len(b))
	}
	p := make([]byte, 32)
	copy(p, b)
	return &PrivateKey{b: p}, nil
}

// Bytes returns the raw 32-byte scalar.
func (p *PrivateKey) Bytes() []byte {
	out := make([]byte, len(p.b))
	copy(out, p.b)
	return out
}

// PublicKey derives the corresponding secp256r1 PublicKey.
func (p *PrivateKey) PublicKey() *PublicKey {
	x, y := elliptic.P256().ScalarBaseMult(p.b)
	return &PublicKey{Curve: Secp256r1, X: x, Y: y}
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over msg in the
// raw (r||s) 64-byte form used by transaction/block witnesses.
func (p *PrivateKey) Sign(msg []byte) ([]byte, error) {
	digest := hash.Sha256(msg)
	d := new(big.Int).SetBytes(p.b)
	curve := elliptic.P256()
	x, y := curve.ScalarBaseMult(p.b)
	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}
	r, s := rfc6979.SignECDSA(priv, digest[:], sha256.New)
	rb := r.Bytes()
	sb := s.Bytes()
	out := make([]byte, 64)
	copy(out[32-len(rb):32], rb)
	copy(out[64-len(sb):64], sb)
	return out, nil
}
