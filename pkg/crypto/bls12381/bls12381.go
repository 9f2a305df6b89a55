// Package bls12381 is the core's façade over BLS12-381 group operations
// and pairing, consumed by the CryptoLib native.
// It delegates to gnark-crypto so the rest of the core never imports a
// pairing-library-specific point type directly.
package bls12381

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// G1Point wraps a G1 curve point.
type G1Point struct{ p bls12381.G1Affine }

// G2Point wraps a G2 curve point.
type G2Point struct{ p bls12381.G2Affine }

// GT wraps a target-group (pairing result) element.
type GT struct{ e bls12381.GT }

// G1FromBytes decodes a compressed G1 point.
func G1FromBytes(b []byte) (*G1Point, error) {
	var p bls12381.G1Affine
	if _, err := p.SetBytes(b); err != nil {
		return nil, err
	}
	return &G1Point{p: p}, nil
}

// G2FromBytes decodes a compressed G2 point.
func G2FromBytes(b []byte) (*G2Point, error) {
	var p bls12381.G2Affine
	if _, err := p.SetBytes(b); err != nil {
		return nil, err
	}
	return &G2Point{p: p}, nil
}

// Bytes returns the compressed encoding of g.
func (g *G1Point) Bytes() []byte {
	b := g.p.Bytes()
	return b[:]
}

// Bytes returns the compressed encoding of g.
func (g *G2Point) Bytes() []byte {
	b := g.p.Bytes()
	return b[:]
}

// Add adds two G1 points.
func (g *G1Point) Add(other *G1Point) *G1Point {
	var jac, oj, res bls12381.G1Jac
	jac.FromAffine(&g.p)
	oj.FromAffine(&other.p)
	res.Set(&jac).AddAssign(&oj)
	var out bls12381.G1Affine
	out.FromJacobian(&res)
	return &G1Point{p: out}
}

// Add adds two G2 points.
func (g *G2Point) Add(other *G2Point) *G2Point {
	var jac, oj, res bls12381.G2Jac
	jac.FromAffine(&g.p)
	oj.FromAffine(&other.p)
	res.Set(&jac).AddAssign(&oj)
	var out bls12381.G2Affine
	out.FromJacobian(&res)
	return &G2Point{p: out}
}

// Mul scales g by a big-endian encoded scalar, used by CryptoLib's
// Bls12381Mul interop method.
func (g *G1Point) Mul(scalar []byte) *G1Point {
	s := new(big.Int).SetBytes(scalar)
	var res bls12381.G1Affine
	res.ScalarMultiplication(&g.p, s)
	return &G1Point{p: res}
}

// Mul scales g by a big-endian encoded scalar.
func (g *G2Point) Mul(scalar []byte) *G2Point {
	s := new(big.Int).SetBytes(scalar)
	var res bls12381.G2Affine
	res.ScalarMultiplication(&g.p, s)
	return &G2Point{p: res}
}

// Pairing computes e(g1, g2), used by CryptoLib's Bls12381Pairing interop
// method.
func Pairing(g1 *G1Point, g2 *G2Point) (*GT, error) {
	res, err := bls12381.Pair([]bls12381.G1Affine{g1.p}, []bls12381.G2Affine{g2.p})
	if err != nil {
		return nil, err
	}
	return &GT{e: res}, nil
}

// Equal reports whether two GT elements are equal.
func (g *GT) Equal(other *GT) bool {
	return g.e.Equal(&other.e)
}
