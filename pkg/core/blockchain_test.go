package core

import (
	"encoding/hex"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/n3core/node/pkg/config"
	"github.com/n3core/node/pkg/core/block"
	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/core/storage"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/smartcontract/trigger"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm"
	"github.com/n3core/node/pkg/vm/emit"
	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

func testChain(t *testing.T) (*Blockchain, *keys.PrivateKey) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	cfg := &config.ProtocolConfiguration{
		Magic:                       860833102,
		StandbyCommittee:            []string{hex.EncodeToString(priv.PublicKey().Bytes())},
		ValidatorsCount:             1,
		TimePerBlock:                15 * time.Second,
		MaxTransactionsPerBlock:     512,
		MaxValidUntilBlockIncrement: 5760,
		MaxTraceableBlocks:          2102400,
		MemPoolSize:                 50000,
		VerifyTransactions:          true,
	}
	bc, err := NewBlockchain(storage.NewMemoryStore(), cfg, zap.NewNop())
	require.NoError(t, err)
	return bc, priv
}

func committeeAccount(t *testing.T, priv *keys.PrivateKey) util.Uint160 {
	acc, err := smartcontract.CreateMultiSigAccount(1, keys.PublicKeys{priv.PublicKey()})
	require.NoError(t, err)
	return acc
}

// signTx fills the transaction's witness with a 1-of-1 multisig signature
// by the committee key.
func signTx(t *testing.T, bc *Blockchain, priv *keys.PrivateKey, tx *transaction.Transaction) {
	script, err := smartcontract.CreateMultiSigRedeemScript(1, keys.PublicKeys{priv.PublicKey()})
	require.NoError(t, err)
	sig, err := priv.Sign(tx.SigningData(uint32(bc.GetConfig().Magic)))
	require.NoError(t, err)

	w := io.NewBufBinWriter()
	emit.Bytes(w.BinWriter, sig)
	require.NoError(t, w.Err)
	tx.Witnesses = []transaction.Witness{{
		InvocationScript:   w.Bytes(),
		VerificationScript: script,
	}}
}

func newSignedBlock(t *testing.T, bc *Blockchain, priv *keys.PrivateKey, txs ...*transaction.Transaction) *block.Block {
	prev, err := bc.GetBlock(bc.CurrentBlockHash())
	require.NoError(t, err)

	vals, err := bc.GetNextBlockValidators()
	require.NoError(t, err)
	nextConsensus, err := validatorsScriptHash(vals)
	require.NoError(t, err)

	b := &block.Block{
		Header: block.Header{
			Version:       block.VersionInitial,
			PrevHash:      prev.Hash(),
			Timestamp:     prev.Timestamp + uint64(15000),
			Nonce:         uint64(prev.Index) + 1,
			Index:         prev.Index + 1,
			PrimaryIndex:  0,
			NextConsensus: nextConsensus,
		},
		Transactions: txs,
	}
	b.RebuildMerkleRoot()

	script, err := smartcontract.CreateMultiSigRedeemScript(1, keys.PublicKeys{priv.PublicKey()})
	require.NoError(t, err)
	sig, err := priv.Sign(b.SigningData(uint32(bc.GetConfig().Magic)))
	require.NoError(t, err)
	w := io.NewBufBinWriter()
	emit.Bytes(w.BinWriter, sig)
	require.NoError(t, w.Err)
	b.Script = transaction.Witness{
		InvocationScript:   w.Bytes(),
		VerificationScript: script,
	}
	return b
}

func neoBalanceOf(t *testing.T, bc *Blockchain, acc util.Uint160) *big.Int {
	ic := bc.newInteropContext(trigger.Application, bc.dao, nil, nil)
	res, err := bc.natives.Neo.Invoke(ic, "balanceOf", []stackitem.Item{
		stackitem.NewByteArray(acc.BytesBE()),
	})
	require.NoError(t, err)
	n, err := res.TryInteger()
	require.NoError(t, err)
	return n
}

func transferScript(t *testing.T, asset, from, to util.Uint160, amount int64) []byte {
	w := io.NewBufBinWriter()
	emit.Opcode(w.BinWriter, opcode.PUSHNULL) // data
	emit.Int(w.BinWriter, amount)
	emit.Bytes(w.BinWriter, to.BytesBE())
	emit.Bytes(w.BinWriter, from.BytesBE())
	emit.Int(w.BinWriter, 4)
	emit.Opcode(w.BinWriter, opcode.PACK)
	emit.Int(w.BinWriter, int64(callflag.All))
	emit.String(w.BinWriter, "transfer")
	emit.Bytes(w.BinWriter, asset.BytesBE())
	emit.Syscall(w.BinWriter, interopnames.ToID(interopnames.SystemContractCall))
	require.NoError(t, w.Err)
	return w.Bytes()
}

func TestGenesisState(t *testing.T) {
	bc, priv := testChain(t)

	assert.Equal(t, uint32(0), bc.BlockHeight())
	assert.Equal(t, bc.GenesisHash(), bc.CurrentBlockHash())

	genesis, err := bc.GetBlock(bc.GenesisHash())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), genesis.Index)
	assert.Equal(t, util.Uint256{}, genesis.PrevHash)

	committee := committeeAccount(t, priv)
	assert.Equal(t, "100000000", neoBalanceOf(t, bc, committee).String())
	assert.Positive(t, bc.GetUtilityTokenBalance(committee).Sign())
}

func TestGenesisDeterministic(t *testing.T) {
	bc1, priv := testChain(t)
	cfg := bc1.GetConfig()
	bc2, err := NewBlockchain(storage.NewMemoryStore(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, bc1.GenesisHash(), bc2.GenesisHash())
	_ = priv
}

func TestRestoreFromStore(t *testing.T) {
	store := storage.NewMemoryStore()
	bc, priv := testChain(t)
	cfg := bc.GetConfig()

	first, err := NewBlockchain(store, cfg, zap.NewNop())
	require.NoError(t, err)
	b := newSignedBlock(t, first, priv)
	require.NoError(t, first.AddBlock(b))

	second, err := NewBlockchain(store, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), second.BlockHeight())
	assert.Equal(t, b.Hash(), second.CurrentBlockHash())
}

func TestAddEmptyBlock(t *testing.T) {
	bc, priv := testChain(t)
	b := newSignedBlock(t, bc, priv)

	require.NoError(t, bc.AddBlock(b))
	assert.Equal(t, uint32(1), bc.BlockHeight())
	assert.Equal(t, b.Hash(), bc.CurrentBlockHash())

	stored, err := bc.GetBlock(b.Hash())
	require.NoError(t, err)
	assert.Equal(t, b.MerkleRoot, stored.MerkleRoot)

	// Replay is rejected.
	err = bc.AddBlock(b)
	require.ErrorIs(t, err, ErrBlockAlreadyExists)
}

func TestAddBlockBadWitness(t *testing.T) {
	bc, priv := testChain(t)
	b := newSignedBlock(t, bc, priv)
	// Corrupt the signature.
	b.Script.InvocationScript[3] ^= 0xff
	err := bc.AddBlock(b)
	require.ErrorIs(t, err, ErrInvalidWitness)
	assert.Equal(t, uint32(0), bc.BlockHeight())
}

func TestAddBlockBadMerkleRoot(t *testing.T) {
	bc, priv := testChain(t)
	b := newSignedBlock(t, bc, priv)
	b.MerkleRoot[0] ^= 0xff
	err := bc.AddBlock(b)
	require.Error(t, err)
	assert.Equal(t, uint32(0), bc.BlockHeight())
}

func TestAddBlockBadTimestamp(t *testing.T) {
	bc, priv := testChain(t)
	b := newSignedBlock(t, bc, priv)
	b.Timestamp = genesisTimestamp // not after the previous block
	b = resign(t, bc, priv, b)
	err := bc.AddBlock(b)
	require.ErrorIs(t, err, ErrInvalidBlockTime)
}

// resign rebuilds the header hash and witness after a mutation.
func resign(t *testing.T, bc *Blockchain, priv *keys.PrivateKey, b *block.Block) *block.Block {
	nb := &block.Block{Header: b.Header, Transactions: b.Transactions}
	nb.RebuildMerkleRoot()
	data, err := nb.Trim()
	require.NoError(t, err)
	restored, err := block.NewBlockFromTrimmedBytes(data)
	require.NoError(t, err)
	restored.Transactions = b.Transactions

	script, err := smartcontract.CreateMultiSigRedeemScript(1, keys.PublicKeys{priv.PublicKey()})
	require.NoError(t, err)
	sig, err := priv.Sign(restored.SigningData(uint32(bc.GetConfig().Magic)))
	require.NoError(t, err)
	w := io.NewBufBinWriter()
	emit.Bytes(w.BinWriter, sig)
	require.NoError(t, w.Err)
	restored.Script = transaction.Witness{InvocationScript: w.Bytes(), VerificationScript: script}
	return restored
}

func TestNeoTransferThroughBlock(t *testing.T) {
	bc, priv := testChain(t)
	committee := committeeAccount(t, priv)
	alicePriv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	alice := alicePriv.PublicKey().GetScriptHash()

	neoHash := bc.natives.Neo.Metadata().Hash
	tx := &transaction.Transaction{
		Nonce:           1,
		SystemFee:       1_00000000,
		NetworkFee:      10_000000,
		ValidUntilBlock: 10,
		Signers: []transaction.Signer{{
			Account: committee,
			Scopes:  transaction.CalledByEntry,
		}},
		Script: transferScript(t, neoHash, committee, alice, 1),
	}
	signTx(t, bc, priv, tx)

	gasBefore := bc.GetUtilityTokenBalance(committee)

	b := newSignedBlock(t, bc, priv, tx)
	require.NoError(t, bc.AddBlock(b))

	// Receipt: halted, gas consumed, Transfer notification.
	receipt, err := bc.GetAppExecResult(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, byte(vm.HaltState), receipt.VMState)
	assert.Positive(t, receipt.GasConsumed)
	require.NotEmpty(t, receipt.Notifications)
	var transferSeen bool
	for _, n := range receipt.Notifications {
		if n.Name == "Transfer" {
			transferSeen = true
		}
	}
	assert.True(t, transferSeen)

	// Post-state balances.
	assert.Equal(t, "1", neoBalanceOf(t, bc, alice).String())
	assert.Equal(t, "99999999", neoBalanceOf(t, bc, committee).String())

	// The sender paid exactly systemFee+networkFee, netted against the
	// holding-GAS credit the transfer itself distributed (one block of
	// gas-per-block at 100% NEO ownership) and the committee member's
	// PostPersist block reward.
	ic := bc.newInteropContext(trigger.Application, bc.dao, nil, nil)
	memberReward := bc.natives.Gas.BalanceOf(ic, priv.PublicKey().GetScriptHash())
	gasAfter := bc.GetUtilityTokenBalance(committee)
	spent := new(big.Int).Sub(gasBefore, gasAfter)
	const holdingCredit = 5_00000000
	assert.Equal(t, big.NewInt(tx.SystemFee+tx.NetworkFee-holdingCredit).String(), spent.String())
	assert.Positive(t, memberReward.Sign())

	// The transaction is stored and indexed.
	stored, height, err := bc.GetTransaction(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), height)
	assert.Equal(t, tx.Hash(), stored.Hash())
}

func TestGasExhaustionInBlock(t *testing.T) {
	bc, priv := testChain(t)
	committee := committeeAccount(t, priv)

	// JMP 0 spins forever; systemFee bounds it.
	tx := &transaction.Transaction{
		Nonce:           2,
		SystemFee:       1000000,
		NetworkFee:      10_000000,
		ValidUntilBlock: 10,
		Signers: []transaction.Signer{{
			Account: committee,
			Scopes:  transaction.CalledByEntry,
		}},
		Script: []byte{byte(opcode.JMP), 0x00},
	}
	signTx(t, bc, priv, tx)

	gasBefore := bc.GetUtilityTokenBalance(committee)
	b := newSignedBlock(t, bc, priv, tx)
	require.NoError(t, bc.AddBlock(b))

	receipt, err := bc.GetAppExecResult(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, byte(vm.FaultState), receipt.VMState)
	assert.Empty(t, receipt.Notifications)
	assert.NotEmpty(t, receipt.FaultException)

	// Fees are deducted even though the script faulted.
	spent := new(big.Int).Sub(gasBefore, bc.GetUtilityTokenBalance(committee))
	assert.Equal(t, big.NewInt(tx.SystemFee+tx.NetworkFee).String(), spent.String())
}

func TestVerifyTxRejectsExpired(t *testing.T) {
	bc, priv := testChain(t)
	committee := committeeAccount(t, priv)
	tx := &transaction.Transaction{
		Nonce:           3,
		SystemFee:       1000000,
		NetworkFee:      10_000000,
		ValidUntilBlock: 0, // already expired at height 0
		Signers:         []transaction.Signer{{Account: committee, Scopes: transaction.CalledByEntry}},
		Script:          []byte{byte(opcode.PUSH1)},
	}
	signTx(t, bc, priv, tx)
	err := bc.PoolTx(tx)
	require.ErrorIs(t, err, ErrTxExpired)
}

func TestVerifyTxRejectsUnderfundedNetworkFee(t *testing.T) {
	bc, priv := testChain(t)
	committee := committeeAccount(t, priv)
	tx := &transaction.Transaction{
		Nonce:           4,
		SystemFee:       0,
		NetworkFee:      1, // can't even cover the byte fee
		ValidUntilBlock: 10,
		Signers:         []transaction.Signer{{Account: committee, Scopes: transaction.CalledByEntry}},
		Script:          []byte{byte(opcode.PUSH1)},
	}
	signTx(t, bc, priv, tx)
	err := bc.PoolTx(tx)
	require.ErrorIs(t, err, ErrInsufficientNetFee)
}

func TestPoolTxAdmitsValid(t *testing.T) {
	bc, priv := testChain(t)
	committee := committeeAccount(t, priv)
	tx := &transaction.Transaction{
		Nonce:           5,
		SystemFee:       1000000,
		NetworkFee:      10_000000,
		ValidUntilBlock: 10,
		Signers:         []transaction.Signer{{Account: committee, Scopes: transaction.CalledByEntry}},
		Script:          []byte{byte(opcode.PUSH1)},
	}
	signTx(t, bc, priv, tx)
	require.NoError(t, bc.PoolTx(tx))
	assert.Equal(t, 1, bc.GetMemPool().Count())

	// Double admission is rejected.
	err := bc.PoolTx(tx)
	require.ErrorIs(t, err, ErrTxAlreadyExists)

	// Applying a block holding the transaction evicts it.
	b := newSignedBlock(t, bc, priv, tx)
	require.NoError(t, bc.AddBlock(b))
	assert.Equal(t, 0, bc.GetMemPool().Count())
}
