package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

func newTestHeader() Header {
	return Header{
		Version:       VersionInitial,
		PrevHash:      testutil.Uint256(),
		MerkleRoot:    testutil.Uint256(),
		Timestamp:     1627894840919,
		Nonce:         12345,
		Index:         42,
		PrimaryIndex:  3,
		NextConsensus: testutil.Uint160(),
		Script: transaction.Witness{
			InvocationScript:   []byte{0x01},
			VerificationScript: []byte{0x02},
		},
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := newTestHeader()
	data, err := testutil.EncodeBinary(&h)
	require.NoError(t, err)

	var decoded Header
	require.NoError(t, testutil.DecodeBinary(data, &decoded))
	assert.Equal(t, h.Version, decoded.Version)
	assert.Equal(t, h.PrevHash, decoded.PrevHash)
	assert.Equal(t, h.MerkleRoot, decoded.MerkleRoot)
	assert.Equal(t, h.Timestamp, decoded.Timestamp)
	assert.Equal(t, h.Nonce, decoded.Nonce)
	assert.Equal(t, h.Index, decoded.Index)
	assert.Equal(t, h.PrimaryIndex, decoded.PrimaryIndex)
	assert.Equal(t, h.NextConsensus, decoded.NextConsensus)
	assert.Equal(t, h.Hash(), decoded.Hash())
}

func TestHeaderHashExcludesWitness(t *testing.T) {
	h1 := newTestHeader()
	h2 := newTestHeader()
	h2.PrevHash = h1.PrevHash
	h2.MerkleRoot = h1.MerkleRoot
	h2.NextConsensus = h1.NextConsensus
	h2.Script.InvocationScript = []byte{0xff, 0xff}

	// Hash covers only the first fields through nextConsensus.
	assert.Equal(t, h1.Hash(), h2.Hash())
}

func TestHeaderHashMatchesManualSerialization(t *testing.T) {
	h := newTestHeader()
	w := io.NewBufBinWriter()
	w.WriteU32LE(h.Version)
	w.WriteBytes(h.PrevHash.BytesLE())
	w.WriteBytes(h.MerkleRoot.BytesLE())
	w.WriteU64LE(h.Timestamp)
	w.WriteU64LE(h.Nonce)
	w.WriteU32LE(h.Index)
	w.WriteB(h.PrimaryIndex)
	w.WriteBytes(h.NextConsensus.BytesLE())
	require.NoError(t, w.Err)
	assert.Equal(t, hash.Hash256(w.Bytes()), h.Hash())
}

func newTestBlock() *Block {
	b := &Block{Header: newTestHeader()}
	b.RebuildMerkleRoot()
	return b
}

func TestBlockMerkleRoot(t *testing.T) {
	b := newTestBlock()
	assert.Equal(t, util.Uint256{}, b.MerkleRoot) // no transactions

	tx := transaction.NewTrimmedTX(testutil.Uint256())
	b.Transactions = append(b.Transactions, tx)
	b.RebuildMerkleRoot()
	assert.Equal(t, tx.Hash(), b.MerkleRoot)
}

func TestBlockRoundTrip(t *testing.T) {
	b := newTestBlock()
	data, err := testutil.EncodeBinary(b)
	require.NoError(t, err)

	decoded := New()
	require.NoError(t, testutil.DecodeBinary(data, decoded))
	assert.Equal(t, b.Hash(), decoded.Hash())
	assert.Empty(t, decoded.Transactions)
}

func TestBlockTrim(t *testing.T) {
	b := newTestBlock()
	tx := transaction.NewTrimmedTX(testutil.Uint256())
	b.Transactions = append(b.Transactions, tx)
	b.RebuildMerkleRoot()

	trimmed, err := b.Trim()
	require.NoError(t, err)

	restored, err := NewBlockFromTrimmedBytes(trimmed)
	require.NoError(t, err)
	assert.True(t, restored.Trimmed)
	assert.Equal(t, b.Hash(), restored.Hash())
	require.Len(t, restored.Transactions, 1)
	assert.Equal(t, tx.Hash(), restored.Transactions[0].Hash())
}
