package hash

import "github.com/n3core/node/pkg/util"

// CalcMerkleRoot computes the Merkle root of the given ordered hash list
// the reference way: pairwise Hash256, duplicating the last element at each
// odd-sized level; the empty list's root is the all-zero hash.
func CalcMerkleRoot(hashes []util.Uint256) util.Uint256 {
	if len(hashes) == 0 {
		return util.Uint256{}
	}
	level := make([]util.Uint256, len(hashes))
	copy(level, hashes)
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]util.Uint256, len(level)/2)
		for i := 0; i < len(next); i++ {
			b := make([]byte, 0, 64)
			b = append(b, level[2*i].BytesLE()...)
			b = append(b, level[2*i+1].BytesLE()...)
			next[i] = DoubleSha256(b)
		}
		level = next
	}
	return level[0]
}
