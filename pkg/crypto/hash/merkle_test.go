package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/n3core/node/pkg/util"
)

func fill256(b byte) (u util.Uint256) {
	for i := range u {
		u[i] = b
	}
	return u
}

func TestCalcMerkleRootEmpty(t *testing.T) {
	assert.Equal(t, util.Uint256{}, CalcMerkleRoot(nil))
}

func TestCalcMerkleRootSingle(t *testing.T) {
	h := fill256(0x42)
	assert.Equal(t, h, CalcMerkleRoot([]util.Uint256{h}))
}

func TestCalcMerkleRootPair(t *testing.T) {
	h1 := fill256(0x11)
	h2 := fill256(0x22)
	expected := DoubleSha256(append(h1.BytesLE(), h2.BytesLE()...))
	assert.Equal(t, expected, CalcMerkleRoot([]util.Uint256{h1, h2}))
}

func TestCalcMerkleRootOddDuplicatesLast(t *testing.T) {
	h1 := fill256(0x11)
	h2 := fill256(0x22)
	h3 := fill256(0x33)

	left := DoubleSha256(append(h1.BytesLE(), h2.BytesLE()...))
	right := DoubleSha256(append(h3.BytesLE(), h3.BytesLE()...))
	expected := DoubleSha256(append(left.BytesLE(), right.BytesLE()...))

	assert.Equal(t, expected, CalcMerkleRoot([]util.Uint256{h1, h2, h3}))
}

func TestCalcMerkleRootDeterministic(t *testing.T) {
	hashes := []util.Uint256{fill256(1), fill256(2), fill256(3), fill256(4), fill256(5)}
	assert.Equal(t, CalcMerkleRoot(hashes), CalcMerkleRoot(hashes))
	// Order matters.
	reversed := []util.Uint256{fill256(5), fill256(4), fill256(3), fill256(2), fill256(1)}
	assert.NotEqual(t, CalcMerkleRoot(hashes), CalcMerkleRoot(reversed))
}
