package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
	"github.com/n3core/node/pkg/core/block"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/core/storage"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/smartcontract/manifest"
	"github.com/n3core/node/pkg/smartcontract/nef"
	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

func newTestDAO() *Simple {
	return NewSimple(storage.NewMemoryStore())
}

func testContract(id int32) *state.Contract {
	return &state.Contract{
		ID:       id,
		Hash:     testutil.Uint160(),
		NEF:      *nef.NewFile("test-compiler", []byte{byte(opcode.RET)}),
		Manifest: *manifest.DefaultManifest("Test"),
	}
}

func TestContractStateRoundTrip(t *testing.T) {
	d := newTestDAO()
	cs := testContract(7)

	_, err := d.GetContractState(cs.Hash)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, d.PutContractState(cs))

	got, err := d.GetContractState(cs.Hash)
	require.NoError(t, err)
	assert.Equal(t, cs.ID, got.ID)
	assert.Equal(t, cs.Hash, got.Hash)
	assert.Equal(t, cs.Manifest.Name, got.Manifest.Name)

	byID, err := d.GetContractByID(7)
	require.NoError(t, err)
	assert.Equal(t, cs.Hash, byID.Hash)

	require.NoError(t, d.DeleteContractState(cs.Hash))
	_, err = d.GetContractState(cs.Hash)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorageItems(t *testing.T) {
	d := newTestDAO()
	const id = int32(-4)

	require.Nil(t, func() state.StorageItem {
		it, _ := d.GetStorageItem(id, []byte{0x01})
		return it
	}())

	require.NoError(t, d.PutStorageItem(id, []byte{0x01}, state.StorageItem{0xaa}))
	it, err := d.GetStorageItem(id, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, state.StorageItem{0xaa}, it)

	// Another contract's rows are invisible under this id's prefix.
	require.NoError(t, d.PutStorageItem(id+1, []byte{0x02}, state.StorageItem{0xbb}))
	var visited int
	d.Seek(id, nil, false, func(k, v []byte) bool {
		visited++
		return true
	})
	assert.Equal(t, 1, visited)

	require.NoError(t, d.DeleteStorageItem(id, []byte{0x01}))
	_, err = d.GetStorageItem(id, []byte{0x01})
	require.Error(t, err)
}

func TestPrivateDAOIsolation(t *testing.T) {
	d := newTestDAO()
	require.NoError(t, d.PutStorageItem(1, []byte{0x01}, state.StorageItem{0x01}))

	p := d.GetPrivate()
	require.NoError(t, p.PutStorageItem(1, []byte{0x01}, state.StorageItem{0x02}))

	it, err := d.GetStorageItem(1, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, state.StorageItem{0x01}, it)

	_, err = p.Persist()
	require.NoError(t, err)

	it, err = d.GetStorageItem(1, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, state.StorageItem{0x02}, it)
}

func testBlock() *block.Block {
	b := &block.Block{
		Header: block.Header{
			Version:       0,
			PrevHash:      testutil.Uint256(),
			Timestamp:     123456789,
			Nonce:         42,
			Index:         1,
			NextConsensus: testutil.Uint160(),
			Script: transaction.Witness{
				InvocationScript:   []byte{},
				VerificationScript: []byte{byte(opcode.PUSH1)},
			},
		},
		Transactions: []*transaction.Transaction{},
	}
	b.RebuildMerkleRoot()
	return b
}

func TestBlockRoundTrip(t *testing.T) {
	d := newTestDAO()
	b := testBlock()

	require.NoError(t, d.PutBlock(b))

	got, err := d.GetBlock(b.Hash())
	require.NoError(t, err)
	assert.Equal(t, b.Index, got.Index)
	assert.Equal(t, b.PrevHash, got.PrevHash)

	hh, err := d.GetHeaderHash(1)
	require.NoError(t, err)
	assert.Equal(t, b.Hash(), hh)

	height, err := d.GetCurrentBlockHeight()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), height)

	ch, err := d.CurrentBlockHash()
	require.NoError(t, err)
	assert.Equal(t, b.Hash(), ch)
}

func TestAppExecResultRoundTrip(t *testing.T) {
	d := newTestDAO()
	container := testutil.Uint256()
	r := &state.TransactionReceipt{
		VMState:     1,
		GasConsumed: 12345,
		Notifications: []state.NotificationEvent{{
			ScriptHash: testutil.Uint160(),
			Name:       "Transfer",
			Item:       stackitem.NewArray([]stackitem.Item{stackitem.Make(1)}),
		}},
		FaultException: "",
	}
	require.NoError(t, d.PutAppExecResult(container, r))

	got, err := d.GetAppExecResult(container)
	require.NoError(t, err)
	assert.Equal(t, r.VMState, got.VMState)
	assert.Equal(t, r.GasConsumed, got.GasConsumed)
	require.Len(t, got.Notifications, 1)
	assert.Equal(t, "Transfer", got.Notifications[0].Name)
	assert.Equal(t, r.Notifications[0].ScriptHash, got.Notifications[0].ScriptHash)
}

func TestNextContractID(t *testing.T) {
	d := newTestDAO()
	id, err := d.GetNextContractID()
	require.NoError(t, err)
	assert.Equal(t, int32(0), id)
	id, err = d.GetNextContractID()
	require.NoError(t, err)
	assert.Equal(t, int32(1), id)
}
