// Package hash implements the core's cryptography facade for hashing:
// it exists so the rest of the core never imports a
// library-specific digest type directly.
package hash

import (
	"crypto/sha256"
	"errors"

	"github.com/n3core/node/pkg/util"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // reference hash160 = ripemd160(sha256(x))
	"golang.org/x/crypto/sha3"
)

// Sha256 computes a single SHA-256 digest of b.
func Sha256(b []byte) (h util.Uint256) {
	d := sha256.Sum256(b)
	return util.Uint256(d)
}

// DoubleSha256 computes SHA-256(SHA-256(b)), a.k.a. Hash256.
func DoubleSha256(b []byte) util.Uint256 {
	d1 := sha256.Sum256(b)
	d2 := sha256.Sum256(d1[:])
	return util.Uint256(d2)
}

// Hash256 is an alias for DoubleSha256, matching the interop-name spelling
// used by block/transaction hashing.
func Hash256(b []byte) util.Uint256 {
	return DoubleSha256(b)
}

// RipeMD160 computes a RIPEMD-160 digest of b.
func RipeMD160(b []byte) (u util.Uint160) {
	h := ripemd160.New()
	_, _ = h.Write(b)
	copy(u[:], h.Sum(nil))
	return u
}

// Hash160 computes RIPEMD160(SHA256(b)), used to derive script hashes from
// verification scripts.
func Hash160(b []byte) util.Uint160 {
	d := sha256.Sum256(b)
	return RipeMD160(d[:])
}

// Keccak256 computes the legacy Keccak-256 digest of b (not NIST SHA3-256),
// used by CryptoLib.keccak256 and the Keccak-flavored ECDSA verification
// curves.
func Keccak256(b []byte) (h util.Uint256) {
	d := sha3.NewLegacyKeccak256()
	_, _ = d.Write(b)
	copy(h[:], d.Sum(nil))
	return h
}

// Checksum returns the first 4 bytes of Hash256(b), used by Base58Check.
func Checksum(b []byte) []byte {
	d1 := sha256.Sum256(b)
	d2 := sha256.Sum256(d1[:])
	return d2[:4]
}

// errChecksum is returned by consumers validating a Base58Check payload.
var errChecksum = errors.New("invalid checksum")

// ErrChecksum is returned when a checksum fails to validate.
var ErrChecksum = errChecksum
