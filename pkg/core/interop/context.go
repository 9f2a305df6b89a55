// Package interop is the Application Engine layered over the VM: it
// resolves SYSCALL ids to concrete handlers, prices syscalls and native
// calls, and carries the per-invocation context (trigger, container,
// signers, DAO snapshot, notification log) a syscall handler or native
// method needs.
package interop

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/n3core/node/pkg/core/block"
	"github.com/n3core/node/pkg/core/dao"
	"github.com/n3core/node/pkg/core/fee"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/smartcontract/trigger"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm"
	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// Ledger is the slice of Blockchain a Context needs, kept narrow so
// natives/syscalls don't reach back into block-processing internals.
type Ledger interface {
	BlockHeight() uint32
	CurrentBlockHash() util.Uint256
	GetBlock(hash util.Uint256) (*block.Block, error)
	GetHeaderHash(index uint32) (util.Uint256, error)
	IsHardforkEnabled(name string, height uint32) bool
}

// Contract is the interface every native contract implements; Invoke dispatches one ABI method by name.
type Contract interface {
	Metadata() *ContractMD
	OnPersist(ic *Context) error
	PostPersist(ic *Context) error
	Invoke(ic *Context, method string, args []stackitem.Item) (stackitem.Item, error)
}

// MethodDesc describes one native ABI method's price and permission
// requirement, used both for manifest construction and call-time charging.
type MethodDesc struct {
	Name          string
	Price         int64
	RequiredFlags callflag.CallFlag
	ActiveFrom    string // hardfork name, "" if always active
}

// ContractMD is the generic (hardfork-independent) metadata every native
// carries: its fixed id/hash/name and its ABI method table.
type ContractMD struct {
	ID      int32
	Hash    util.Uint160
	Name    string
	Methods []MethodDesc
}

// Function binds a syscall name/id to its handler, price and required call
// flags.
type Function struct {
	ID            uint32
	Name          string
	Func          func(ic *Context) error
	Price         int64
	RequiredFlags callflag.CallFlag
}

// Hashable is satisfied by both *transaction.Transaction and *block.Block,
// the two script containers a trigger can run against.
type Hashable interface {
	Hash() util.Uint256
}

// Context carries everything a syscall handler or native method needs for
// one VM invocation.
type Context struct {
	Chain     Ledger
	Container Hashable
	Network   uint32
	Trigger   trigger.Type
	Block     *block.Block
	Tx        *transaction.Transaction
	DAO       *dao.Simple
	VM        *vm.VM

	Notifications []state.NotificationEvent
	Invocations   map[util.Uint160]int
	Natives       map[util.Uint160]Contract

	// Log receives System.Runtime.Log messages; nil drops them.
	Log func(scriptHash util.Uint160, message string)

	// GetCommitteeAddress resolves the network's current committee
	// multisig account, used by native setters that require committee
	// witness. Bound by the blockchain to NeoToken.GetCommitteeAddress.
	GetCommitteeAddress func(ic *Context) util.Uint160

	baseExecFee    int64
	baseStorageFee int64
	functions      map[uint32]*Function

	signers      []transaction.Signer
	nonceData    [16]byte
	randomTimes  uint32
}

// NewContext builds a fresh Application Engine context. natives
// is keyed by contract hash so System.Contract.Call can recognize a native
// callee without a storage round trip.
func NewContext(trig trigger.Type, chain Ledger, d *dao.Simple, network uint32,
	baseExecFee, baseStorageFee int64, natives map[util.Uint160]Contract,
	blk *block.Block, tx *transaction.Transaction) *Context {
	ic := &Context{
		Chain:          chain,
		Network:        network,
		Trigger:        trig,
		Block:          blk,
		Tx:             tx,
		DAO:            d,
		Natives:        natives,
		Invocations:    make(map[util.Uint160]int),
		baseExecFee:    baseExecFee,
		baseStorageFee: baseStorageFee,
		functions:      make(map[uint32]*Function),
	}
	if tx != nil {
		ic.Container = tx
	} else if blk != nil {
		ic.Container = blk
	}
	return ic
}

// BaseExecFee returns the network's opcode/syscall price multiplier
// (PolicyContract.ExecFeeFactor).
func (ic *Context) BaseExecFee() int64 { return ic.baseExecFee }

// BaseStorageFee returns the per-byte storage write price
// (PolicyContract.StoragePrice).
func (ic *Context) BaseStorageFee() int64 { return ic.baseStorageFee }

// CommitteeAddress returns the network's current committee multisig
// account, or the zero hash if none is bound.
func (ic *Context) CommitteeAddress() util.Uint160 {
	if ic.GetCommitteeAddress == nil {
		return util.Uint160{}
	}
	return ic.GetCommitteeAddress(ic)
}

// UseSigners overrides the signer set used by CheckWitness, used by
// Verification-trigger runs that check witnesses against a single signer.
func (ic *Context) UseSigners(s []transaction.Signer) { ic.signers = s }

// Signers returns the signers witnessing the current execution.
func (ic *Context) Signers() []transaction.Signer {
	if ic.signers != nil {
		return ic.signers
	}
	if ic.Tx != nil {
		return ic.Tx.Signers
	}
	return nil
}

// InitNonceData seeds the GetRandom mixing buffer from the container hash
// and block nonce.
func (ic *Context) InitNonceData() {
	if ic.Tx != nil {
		copy(ic.nonceData[:], ic.Tx.Hash().BytesBE())
	}
	if ic.Block != nil {
		n := ic.Block.Nonce
		n ^= binary.LittleEndian.Uint64(ic.nonceData[:8])
		binary.LittleEndian.PutUint64(ic.nonceData[:8], n)
		binary.LittleEndian.PutUint32(ic.nonceData[8:12], ic.Block.Index)
	}
}

// RegisterFunction adds f to the syscall table.
func (ic *Context) RegisterFunction(f *Function) {
	ic.functions[f.ID] = f
}

// AddNotification appends a Notify event to the execution log.
func (ic *Context) AddNotification(scriptHash util.Uint160, name string, item *stackitem.Array) {
	ic.Notifications = append(ic.Notifications, state.NotificationEvent{
		ScriptHash: scriptHash,
		Name:       name,
		Item:       item,
	})
}

// SpawnVM creates the VM instance wired to this context's syscall dispatch
// and gas pricing.
func (ic *Context) SpawnVM(gasLimit int64) *vm.VM {
	v := vm.NewVM(gasLimit)
	ic.bindVM(v)
	return v
}

// ReuseVM rewires an existing VM (from a prior OnPersist/PostPersist run)
// for this context instead of allocating a new one.
func (ic *Context) ReuseVM(v *vm.VM, gasLimit int64) {
	v.Reset(gasLimit)
	ic.bindVM(v)
}

func (ic *Context) bindVM(v *vm.VM) {
	ic.VM = v
	v.GetPrice = ic.getPrice
	v.SyscallHandler = ic.handleSyscall
}

func (ic *Context) getPrice(op opcode.Opcode, _ *vm.Context) int64 {
	return fee.Opcode(ic.baseExecFee, op)
}

func (ic *Context) handleSyscall(v *vm.VM, id uint32) error {
	f, ok := ic.functions[id]
	if !ok {
		return fmt.Errorf("%w: unknown syscall id %08x", ErrSyscallNotFound, id)
	}
	ctx := v.Context()
	if ctx != nil && !callflag.CallFlag(ctx.CallFlags()).Has(f.RequiredFlags) {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidCallFlags, f.Name, f.RequiredFlags)
	}
	if !v.AddGas(f.Price * ic.baseExecFee) {
		return vm.ErrOutOfGas
	}
	return f.Func(ic)
}

// ErrSyscallNotFound is returned when a script references an unregistered
// syscall id.
var ErrSyscallNotFound = errors.New("interop: syscall not found")

// ErrInvalidCallFlags is returned when the executing context lacks the
// permission a syscall requires.
var ErrInvalidCallFlags = errors.New("interop: invalid call flags")
