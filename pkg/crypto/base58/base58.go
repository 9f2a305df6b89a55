// Package base58 wraps github.com/mr-tron/base58 with the Base58Check
// envelope used for Neo addresses and WIF-encoded private keys.
package base58

import (
	"errors"

	"github.com/mr-tron/base58"
	"github.com/n3core/node/pkg/crypto/hash"
)

// ErrInvalidChecksum is returned by CheckDecode when the trailing 4-byte
// checksum doesn't match.
var ErrInvalidChecksum = errors.New("invalid checksum")

// Encode encodes b as plain (non-checksummed) base58.
func Encode(b []byte) string {
	return base58.Encode(b)
}

// Decode decodes a plain base58 string.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	return base58.Decode(s)
}

// CheckEncode encodes b with a trailing 4-byte Hash256-derived checksum.
func CheckEncode(b []byte) string {
	buf := make([]byte, 0, len(b)+4)
	buf = append(buf, b...)
	buf = append(buf, hash.Checksum(b)...)
	return base58.Encode(buf)
}

// CheckDecode decodes a Base58Check string, verifying and stripping the
// trailing checksum.
func CheckDecode(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) < 5 {
		return nil, errors.New("invalid base58 checksum string: too short")
	}
	body, sum := b[:len(b)-4], b[len(b)-4:]
	expected := hash.Checksum(body)
	for i := range sum {
		if sum[i] != expected[i] {
			return nil, ErrInvalidChecksum
		}
	}
	return body, nil
}
