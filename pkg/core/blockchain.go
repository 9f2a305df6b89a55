// Package core is the block processor: it validates incoming blocks and
// transactions against the chain rules, applies them atomically
// through a copy-on-write DAO snapshot, and owns the chain-head state every
// other subsystem reads through immutable snapshots.
package core

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/n3core/node/pkg/config"
	"github.com/n3core/node/pkg/core/block"
	"github.com/n3core/node/pkg/core/dao"
	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/core/mempool"
	"github.com/n3core/node/pkg/core/native"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/core/storage"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/smartcontract/trigger"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm"
)

// Block/transaction rejection reasons. All of
// them leave the store untouched.
var (
	ErrBlockAlreadyExists  = errors.New("block already exists")
	ErrInvalidBlockIndex   = errors.New("invalid block index")
	ErrInvalidPrevHash     = errors.New("previous header hash mismatch")
	ErrInvalidBlockTime    = errors.New("invalid block timestamp")
	ErrInvalidMerkleRoot   = errors.New("invalid merkle root")
	ErrInvalidNextConsensus = errors.New("invalid next consensus")
	ErrInvalidWitness      = errors.New("witness verification failed")
	ErrTxAlreadyExists     = errors.New("transaction already exists")
	ErrTxExpired           = errors.New("transaction has expired")
	ErrTxNotYetValid       = errors.New("transaction is not yet valid")
	ErrTxTooBig            = errors.New("transaction exceeds maximum size")
	ErrPolicyBlocked       = errors.New("transaction sender is blocked")
	ErrInsufficientNetFee  = errors.New("insufficient network fee")
	ErrInsufficientFunds   = errors.New("sender cannot cover transaction fees")
	ErrInvalidAttribute    = errors.New("invalid transaction attribute")
	ErrHasConflicts        = errors.New("transaction conflicts with an on-chain transaction")
)

// maxVerificationGAS caps a single witness verification run so a malicious
// verification script can't consume unbounded CPU during ingestion.
const maxVerificationGAS = 1_50000000

// Blockchain is the single chain writer: it executes blocks
// serially, commits them atomically and publishes a new head. Everything a
// native contract or syscall reaches back for goes through the narrow
// interop.Ledger slice of this type.
type Blockchain struct {
	cfg     *config.ProtocolConfiguration
	store   storage.Store
	dao     *dao.Simple
	natives *native.Set
	memPool *mempool.Pool
	log     *zap.Logger

	lock        sync.RWMutex
	blockHeight uint32
	headerHash  util.Uint256

	standbyValidators keys.PublicKeys
	genesisHash       util.Uint256
}

// NewBlockchain opens (or bootstraps) a chain over the given store. A fresh
// store gets the genesis block and native-contract state seeded before the
// constructor returns; an existing store only has its head pointer loaded.
func NewBlockchain(s storage.Store, cfg *config.ProtocolConfiguration, log *zap.Logger) (*Blockchain, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid protocol configuration: %w", err)
	}
	natives, err := native.NewSet(cfg)
	if err != nil {
		return nil, err
	}
	bc := &Blockchain{
		cfg:     cfg,
		store:   s,
		dao:     dao.NewSimple(s),
		natives: natives,
		memPool: mempool.New(cfg.MemPoolSize, 0, false),
		log:     log,
	}
	bc.standbyValidators = natives.Neo.StandbyCommittee()[:cfg.GetNumOfCNs(0)]
	if err := bc.init(); err != nil {
		return nil, err
	}
	return bc, nil
}

func (bc *Blockchain) init() error {
	genesis, err := createGenesisBlock(bc.standbyValidators)
	if err != nil {
		return err
	}
	bc.genesisHash = genesis.Hash()

	height, err := bc.dao.GetCurrentBlockHeight()
	if err == nil {
		stored, err := bc.dao.GetHeaderHash(0)
		if err != nil {
			return fmt.Errorf("corrupt store: height present but genesis hash missing: %w", err)
		}
		if !stored.Equals(bc.genesisHash) {
			return fmt.Errorf("store belongs to a different network: genesis %s != %s", stored, bc.genesisHash)
		}
		bc.blockHeight = height
		bc.headerHash, err = bc.dao.CurrentBlockHash()
		if err != nil {
			return err
		}
		bc.log.Info("restored chain state", zap.Uint32("height", height))
		return nil
	}
	return bc.persistGenesis(genesis)
}

// persistGenesis installs every native contract, seeds their storage and
// stores block #0 in one atomic batch.
func (bc *Blockchain) persistGenesis(genesis *block.Block) error {
	d := bc.dao.GetPrivate()
	ic := bc.newInteropContext(trigger.OnPersist, d, genesis, nil)
	committee, err := validatorsScriptHash(bc.natives.Neo.StandbyCommittee())
	if err != nil {
		return err
	}
	if err := bc.natives.InitializeGenesis(ic, committee); err != nil {
		return fmt.Errorf("genesis initialization: %w", err)
	}
	if err := d.PutBlock(genesis); err != nil {
		return err
	}
	if _, err := d.Persist(); err != nil {
		return err
	}
	bc.blockHeight = 0
	bc.headerHash = genesis.Hash()
	bc.log.Info("genesis block persisted", zap.Stringer("hash", bc.headerHash))
	return nil
}

// GetConfig returns the protocol configuration the chain runs under.
func (bc *Blockchain) GetConfig() *config.ProtocolConfiguration { return bc.cfg }

// GenesisHash returns the hash of block #0.
func (bc *Blockchain) GenesisHash() util.Uint256 { return bc.genesisHash }

// BlockHeight returns the height of the most recently persisted block.
func (bc *Blockchain) BlockHeight() uint32 {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.blockHeight
}

// CurrentBlockHash returns the hash of the most recently persisted block.
func (bc *Blockchain) CurrentBlockHash() util.Uint256 {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.headerHash
}

// GetBlock returns a stored block by hash.
func (bc *Blockchain) GetBlock(hash util.Uint256) (*block.Block, error) {
	return bc.dao.GetBlock(hash)
}

// GetHeaderHash returns the hash of the block at the given height.
func (bc *Blockchain) GetHeaderHash(index uint32) (util.Uint256, error) {
	return bc.dao.GetHeaderHash(index)
}

// GetTransaction returns a stored transaction and the height of the block
// containing it.
func (bc *Blockchain) GetTransaction(hash util.Uint256) (*transaction.Transaction, uint32, error) {
	return bc.dao.GetTransaction(hash)
}

// GetAppExecResult returns the stored execution receipt for a transaction
// or trigger container hash.
func (bc *Blockchain) GetAppExecResult(container util.Uint256) (*state.TransactionReceipt, error) {
	return bc.dao.GetAppExecResult(container)
}

// IsHardforkEnabled implements interop.Ledger over the protocol
// configuration's hardfork schedule.
func (bc *Blockchain) IsHardforkEnabled(name string, height uint32) bool {
	hf, ok := config.HardforkByName(name)
	if !ok {
		return false
	}
	return bc.cfg.IsHardforkEnabled(hf, height)
}

// GetCommittee returns the current committee snapshot from NeoToken.
func (bc *Blockchain) GetCommittee() (keys.PublicKeys, error) {
	ic := bc.newInteropContext(trigger.Application, bc.dao, nil, nil)
	return bc.natives.Neo.GetCommittee(ic)
}

// GetNextBlockValidators returns the validator set expected to sign the
// next block.
func (bc *Blockchain) GetNextBlockValidators() (keys.PublicKeys, error) {
	ic := bc.newInteropContext(trigger.Application, bc.dao, nil, nil)
	return bc.natives.Neo.GetValidators(ic)
}

// GetMemPool returns the chain's transaction pool.
func (bc *Blockchain) GetMemPool() *mempool.Pool { return bc.memPool }

// Close releases the underlying store. The chain must not be used after.
func (bc *Blockchain) Close() error { return bc.store.Close() }

// Feer implementation for the mempool.

// GetBaseExecFee returns PolicyContract's exec-fee-factor at the head.
func (bc *Blockchain) GetBaseExecFee() int64 {
	return bc.natives.Policy.GetExecFeeFactor(&interop.Context{DAO: bc.dao})
}

// FeePerByte returns PolicyContract's per-byte network fee at the head.
func (bc *Blockchain) FeePerByte() int64 {
	return bc.natives.Policy.GetFeePerByte(&interop.Context{DAO: bc.dao})
}

// GetUtilityTokenBalance returns the GAS balance of an account at the head.
func (bc *Blockchain) GetUtilityTokenBalance(acc util.Uint160) *big.Int {
	return bc.natives.Gas.BalanceOf(&interop.Context{DAO: bc.dao}, acc)
}

// P2PSigExtensionsEnabled reports whether notary-assisted pooling rules
// apply; the core never enables them.
func (bc *Blockchain) P2PSigExtensionsEnabled() bool { return false }

// PoolTx verifies tx against the head state and admits it to the mempool.
func (bc *Blockchain) PoolTx(tx *transaction.Transaction) error {
	bc.lock.RLock()
	height := bc.blockHeight
	bc.lock.RUnlock()
	if bc.memPool.ContainsKey(tx.Hash()) {
		return ErrTxAlreadyExists
	}
	if err := bc.verifyTx(tx, height); err != nil {
		return err
	}
	return bc.memPool.Add(tx, bc)
}

// newInteropContext assembles an Application Engine context over d with
// every syscall family registered and the committee resolver bound.
func (bc *Blockchain) newInteropContext(trig trigger.Type, d *dao.Simple, blk *block.Block, tx *transaction.Transaction) *interop.Context {
	policyCtx := &interop.Context{DAO: d}
	execFee := bc.natives.Policy.GetExecFeeFactor(policyCtx)
	storagePrice := bc.natives.Policy.GetStoragePrice(policyCtx)
	ic := interop.NewContext(trig, bc, d, uint32(bc.cfg.Magic), execFee, storagePrice, bc.natives.ByHash(), blk, tx)
	interop.RegisterRuntime(ic)
	interop.RegisterStorage(ic)
	interop.RegisterContract(ic)
	interop.RegisterCrypto(ic)
	interop.RegisterBinary(ic)
	interop.RegisterJson(ic)
	interop.RegisterIterator(ic)
	ic.GetCommitteeAddress = bc.natives.Neo.GetCommitteeAddress
	ic.Log = func(scriptHash util.Uint160, msg string) {
		bc.log.Info("runtime log", zap.Stringer("script", scriptHash), zap.String("msg", msg))
	}
	ic.InitNonceData()
	return ic
}

// AddBlock validates b as the next block and applies it atomically. Validation failure rejects the block
// with no state change; apply failure is fatal and returned as such.
func (bc *Blockchain) AddBlock(b *block.Block) error {
	bc.lock.Lock()
	defer bc.lock.Unlock()

	expected := bc.blockHeight + 1
	if b.Index != expected {
		if b.Index <= bc.blockHeight {
			return fmt.Errorf("%w: block %d already behind head %d", ErrBlockAlreadyExists, b.Index, bc.blockHeight)
		}
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidBlockIndex, expected, b.Index)
	}
	if err := bc.verifyBlock(b); err != nil {
		return err
	}
	if err := bc.storeBlock(b); err != nil {
		bc.log.Error("block application failed", zap.Uint32("index", b.Index), zap.Error(err))
		return fmt.Errorf("fatal: applying block %d: %w", b.Index, err)
	}
	return nil
}

// verifyBlock runs the structural and consensus checks an incoming block
// must pass at the expected height.
func (bc *Blockchain) verifyBlock(b *block.Block) error {
	prev, err := bc.dao.GetBlock(bc.headerHash)
	if err != nil {
		return fmt.Errorf("fatal: head block %s missing: %w", bc.headerHash, err)
	}
	if !b.PrevHash.Equals(bc.headerHash) {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidPrevHash, bc.headerHash, b.PrevHash)
	}
	if b.Timestamp <= prev.Timestamp {
		return fmt.Errorf("%w: %d is not after %d", ErrInvalidBlockTime, b.Timestamp, prev.Timestamp)
	}
	drift := uint64(bc.cfg.TimePerBlock / time.Millisecond)
	now := uint64(time.Now().UnixMilli())
	if b.Timestamp > now+drift {
		return fmt.Errorf("%w: %d is too far ahead of local clock %d", ErrInvalidBlockTime, b.Timestamp, now)
	}
	if len(b.Transactions) > int(bc.cfg.MaxTransactionsPerBlock) {
		return fmt.Errorf("%w: %d transactions", block.ErrMaxContentsPerBlock, len(b.Transactions))
	}
	if !b.ComputeMerkleRoot().Equals(b.MerkleRoot) {
		return ErrInvalidMerkleRoot
	}

	nextVals, err := bc.GetNextBlockValidators()
	if err != nil {
		return err
	}
	expectedConsensus, err := validatorsScriptHash(nextVals)
	if err != nil {
		return err
	}
	if !b.NextConsensus.Equals(expectedConsensus) {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidNextConsensus, expectedConsensus, b.NextConsensus)
	}
	// Block witness verifies against the consensus account pinned by the
	// previous header.
	if _, err := bc.verifyWitness(prev.NextConsensus, b, &b.Script, maxVerificationGAS); err != nil {
		return fmt.Errorf("%w: block witness: %v", ErrInvalidWitness, err)
	}

	seen := make(map[util.Uint256]bool, len(b.Transactions))
	for _, tx := range b.Transactions {
		if seen[tx.Hash()] {
			return fmt.Errorf("%w: duplicate within block", ErrTxAlreadyExists)
		}
		seen[tx.Hash()] = true
		if bc.cfg.VerifyTransactions {
			if err := bc.verifyTx(tx, b.Index-1); err != nil {
				return fmt.Errorf("transaction %s: %w", tx.Hash(), err)
			}
		}
	}
	return nil
}

// verifyTx checks one transaction against the head snapshot at the given
// height.
func (bc *Blockchain) verifyTx(t *transaction.Transaction, height uint32) error {
	if t.Size() > transaction.MaxTransactionSize {
		return fmt.Errorf("%w: %d bytes", ErrTxTooBig, t.Size())
	}
	if t.ValidUntilBlock <= height {
		return fmt.Errorf("%w: valid until %d, height %d", ErrTxExpired, t.ValidUntilBlock, height)
	}
	if t.ValidUntilBlock > height+bc.cfg.MaxValidUntilBlockIncrement {
		return fmt.Errorf("%w: valid until %d is too far ahead of height %d", ErrInvalidAttribute, t.ValidUntilBlock, height)
	}
	if len(t.Signers) == 0 || len(t.Signers) != len(t.Witnesses) {
		return fmt.Errorf("%w: %d signers, %d witnesses", ErrInvalidWitness, len(t.Signers), len(t.Witnesses))
	}
	if bc.dao.HasTransaction(t.Hash()) {
		return ErrTxAlreadyExists
	}
	policyCtx := &interop.Context{DAO: bc.dao}
	for _, s := range t.Signers {
		if bc.natives.Policy.IsBlocked(policyCtx, s.Account) {
			return fmt.Errorf("%w: %s", ErrPolicyBlocked, s.Account)
		}
	}
	if err := bc.verifyTxAttributes(t, height); err != nil {
		return err
	}

	// Byte fee plus attribute fees first, then whatever network fee
	// remains funds the witness verification runs.
	needed := bc.FeePerByte() * int64(t.Size())
	for _, a := range t.Attributes {
		needed += bc.natives.Policy.GetAttributeFee(policyCtx, a.Type)
	}
	if t.NetworkFee < needed {
		return fmt.Errorf("%w: %d < %d", ErrInsufficientNetFee, t.NetworkFee, needed)
	}
	verificationBudget := t.NetworkFee - needed
	for i := range t.Signers {
		gasLimit := verificationBudget
		if gasLimit > maxVerificationGAS {
			gasLimit = maxVerificationGAS
		}
		consumed, err := bc.verifyWitness(t.Signers[i].Account, t, &t.Witnesses[i], gasLimit)
		if err != nil {
			return fmt.Errorf("%w: signer %d: %v", ErrInvalidWitness, i, err)
		}
		verificationBudget -= consumed
		if verificationBudget < 0 {
			return ErrInsufficientNetFee
		}
	}

	balance := bc.GetUtilityTokenBalance(t.Sender())
	total := big.NewInt(t.SystemFee + t.NetworkFee)
	if balance.Cmp(total) < 0 {
		return fmt.Errorf("%w: balance %s, needed %s", ErrInsufficientFunds, balance, total)
	}
	return nil
}

// verifyTxAttributes enforces the per-type attribute rules.
func (bc *Blockchain) verifyTxAttributes(t *transaction.Transaction, height uint32) error {
	seen := make(map[transaction.AttrType]bool, len(t.Attributes))
	for i := range t.Attributes {
		a := &t.Attributes[i]
		switch a.Type {
		case transaction.HighPriority:
			if seen[a.Type] {
				return fmt.Errorf("%w: duplicate HighPriority", ErrInvalidAttribute)
			}
			committee := bc.natives.Neo.GetCommitteeAddress(&interop.Context{DAO: bc.dao})
			ok := false
			for _, s := range t.Signers {
				if s.Account.Equals(committee) {
					ok = true
					break
				}
			}
			if !ok {
				return fmt.Errorf("%w: HighPriority requires a committee signer", ErrInvalidAttribute)
			}
		case transaction.OracleResponseT:
			if seen[a.Type] {
				return fmt.Errorf("%w: duplicate OracleResponse", ErrInvalidAttribute)
			}
			ic := bc.newInteropContext(trigger.Application, bc.dao, nil, nil)
			oracles, err := bc.natives.RoleManagement.GetDesignated(ic, native.RoleOracle, height+1)
			if err != nil || len(oracles) == 0 {
				return fmt.Errorf("%w: OracleResponse without designated oracle nodes", ErrInvalidAttribute)
			}
			oracleAccount, err := validatorsScriptHash(oracles)
			if err != nil {
				return err
			}
			ok := false
			for _, s := range t.Signers {
				if s.Account.Equals(oracleAccount) {
					ok = true
					break
				}
			}
			if !ok {
				return fmt.Errorf("%w: OracleResponse not witnessed by the oracle account", ErrInvalidAttribute)
			}
		case transaction.NotValidBeforeT:
			if seen[a.Type] {
				return fmt.Errorf("%w: duplicate NotValidBefore", ErrInvalidAttribute)
			}
			nvb := a.Value.(*transaction.NotValidBefore)
			if height+1 < nvb.Height {
				return fmt.Errorf("%w: not valid before %d, next height %d", ErrTxNotYetValid, nvb.Height, height+1)
			}
		case transaction.ConflictsT:
			conflict := a.Value.(*transaction.Conflicts)
			if bc.dao.HasTransaction(conflict.Hash) {
				return fmt.Errorf("%w: %s", ErrHasConflicts, conflict.Hash)
			}
		}
		if a.Type != transaction.ConflictsT {
			seen[a.Type] = true
		}
	}
	return nil
}

// verifyWitness runs one witness's scripts under the Verification trigger
// and reports the gas consumed.
func (bc *Blockchain) verifyWitness(h util.Uint160, container interop.Hashable, w *transaction.Witness, gasLimit int64) (int64, error) {
	d := bc.dao.GetPrivate()
	defer d.Rollback()
	ic := bc.newInteropContext(trigger.Verification, d, nil, nil)
	if tx, ok := container.(*transaction.Transaction); ok {
		ic.Tx = tx
		ic.Container = tx
	} else {
		ic.Container = container
	}
	v := ic.SpawnVM(gasLimit)

	switch {
	case len(w.VerificationScript) != 0:
		if !w.ScriptHash().Equals(h) {
			return 0, fmt.Errorf("witness hash %s does not match %s", w.ScriptHash(), h)
		}
		if err := v.LoadScript(w.VerificationScript, h, byte(callflag.ReadOnly)); err != nil {
			return 0, err
		}
	default:
		// Contract-based witness: run the deployed contract's verify
		// method.
		cs, err := d.GetContractState(h)
		if err != nil {
			return 0, fmt.Errorf("witness contract %s not found", h)
		}
		md := cs.Manifest.ABI.GetMethod("verify", -1)
		if md == nil {
			return 0, fmt.Errorf("contract %s has no verify method", h)
		}
		script, err := cs.NEF.Bytes()
		if err != nil {
			return 0, err
		}
		if err := v.LoadScriptWithEntry(script, md.Offset, h, byte(callflag.ReadOnly)); err != nil {
			return 0, err
		}
	}
	if len(w.InvocationScript) > 0 {
		if !vm.IsPushOnly(w.InvocationScript) {
			return 0, errors.New("invocation script contains non-push instructions")
		}
		if err := v.LoadScript(w.InvocationScript, util.Uint160{}, byte(callflag.ReadOnly)); err != nil {
			return 0, err
		}
	}
	if err := v.Run(); err != nil {
		return v.GasConsumed(), fmt.Errorf("witness script failed: %w", err)
	}
	if v.State() != vm.HaltState {
		return v.GasConsumed(), fmt.Errorf("witness script ended in %s", v.State())
	}
	if v.Estack().Len() != 1 {
		return v.GasConsumed(), fmt.Errorf("witness script left %d items on the stack", v.Estack().Len())
	}
	res, err := v.Estack().Pop()
	if err != nil {
		return v.GasConsumed(), err
	}
	ok, err := res.TryBool()
	if err != nil || !ok {
		return v.GasConsumed(), errors.New("witness script returned false")
	}
	return v.GasConsumed(), nil
}

// storeBlock applies b through one root snapshot: OnPersist natives, each
// transaction in its own child snapshot, PostPersist natives, block and
// receipt records, then a single atomic commit.
func (bc *Blockchain) storeBlock(b *block.Block) error {
	root := bc.dao.GetPrivate()

	onPersist := bc.newInteropContext(trigger.OnPersist, root, b, nil)
	for _, n := range bc.natives.All() {
		if err := n.OnPersist(onPersist); err != nil {
			return fmt.Errorf("OnPersist %s: %w", n.Metadata().Name, err)
		}
	}

	for _, tx := range b.Transactions {
		// Fees burn whether the script halts or faults.
		fees := big.NewInt(tx.SystemFee + tx.NetworkFee)
		if err := bc.natives.Gas.Burn(onPersist, tx.Sender(), fees); err != nil {
			return fmt.Errorf("burning fees for %s: %w", tx.Hash(), err)
		}

		txDAO := root.GetPrivate()
		ic := bc.newInteropContext(trigger.Application, txDAO, b, tx)
		v := ic.SpawnVM(tx.SystemFee)
		if err := v.LoadScript(tx.Script, hash.Hash160(tx.Script), byte(callflag.All)); err != nil {
			return err
		}
		_ = v.Run()

		receipt := &state.TransactionReceipt{
			VMState:     byte(v.State()),
			GasConsumed: v.GasConsumed(),
		}
		if v.State() == vm.HaltState {
			if _, err := txDAO.Persist(); err != nil {
				return fmt.Errorf("committing transaction %s: %w", tx.Hash(), err)
			}
			receipt.Notifications = ic.Notifications
		} else {
			txDAO.Rollback()
			if fault := v.FaultException(); fault != nil {
				receipt.FaultException = fault.Error()
			}
			bc.log.Debug("transaction faulted",
				zap.Stringer("hash", tx.Hash()),
				zap.String("reason", receipt.FaultException))
		}
		if err := root.PutAppExecResult(tx.Hash(), receipt); err != nil {
			return err
		}
	}

	postPersist := bc.newInteropContext(trigger.PostPersist, root, b, nil)
	for _, n := range bc.natives.All() {
		if err := n.PostPersist(postPersist); err != nil {
			return fmt.Errorf("PostPersist %s: %w", n.Metadata().Name, err)
		}
	}

	if err := root.PutBlock(b); err != nil {
		return err
	}
	if _, err := root.Persist(); err != nil {
		return fmt.Errorf("committing block %d: %w", b.Index, err)
	}

	bc.blockHeight = b.Index
	bc.headerHash = b.Hash()
	bc.log.Info("block persisted",
		zap.Uint32("index", b.Index),
		zap.Stringer("hash", bc.headerHash),
		zap.Int("txs", len(b.Transactions)))

	included := make(map[util.Uint256]bool, len(b.Transactions))
	for _, tx := range b.Transactions {
		included[tx.Hash()] = true
		for _, a := range tx.Attributes {
			if c, ok := a.Value.(*transaction.Conflicts); ok {
				included[c.Hash] = true
			}
		}
	}
	bc.memPool.RemoveStale(func(t *transaction.Transaction) bool {
		return !included[t.Hash()] && t.ValidUntilBlock > b.Index
	}, heldLockFeer{bc, b.Index})
	return nil
}

// heldLockFeer serves the mempool's Feer calls made while bc.lock is held
// for writing, answering BlockHeight without taking the lock again.
type heldLockFeer struct {
	*Blockchain
	height uint32
}

func (f heldLockFeer) BlockHeight() uint32 { return f.height }
