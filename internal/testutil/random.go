package testutil

import (
	"math/rand"

	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/util"
)

// String returns a random string with n as its length.
func String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(Int(65, 90))
	}
	return string(b)
}

// Bytes returns a random byte slice of the specified length.
func Bytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// Int returns a random integer in [min,max).
func Int(min, max int) int {
	return min + rand.Intn(max-min)
}

// Uint256 returns a random Uint256.
func Uint256() util.Uint256 {
	return hash.Sha256(Bytes(20))
}

// Uint160 returns a random Uint160.
func Uint160() util.Uint160 {
	return hash.RipeMD160(Bytes(20))
}
