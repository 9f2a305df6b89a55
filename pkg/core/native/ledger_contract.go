package native

import (
	"math/big"

	"github.com/n3core/node/pkg/core/block"
	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// LedgerContractID is the fixed negative id reserved for this native.
const LedgerContractID = -7

// LedgerContract exposes read-only block/transaction queries over the
// storage the block processor maintains directly; the native itself owns
// no storage of its own.
type LedgerContract struct {
	md   *interop.ContractMD
	hash util.Uint160
}

// NewLedgerContract builds the native.
func NewLedgerContract() *LedgerContract {
	h := smartcontract.CreateNativeContractHash("LedgerContract")
	return &LedgerContract{
		hash: h,
		md: &interop.ContractMD{
			ID: LedgerContractID, Hash: h, Name: "LedgerContract",
			Methods: []interop.MethodDesc{
				method("currentHash", 1<<15, callflag.ReadStates),
				method("currentIndex", 1<<15, callflag.ReadStates),
				method("getBlock", 1<<16, callflag.ReadStates),
				method("getTransaction", 1<<16, callflag.ReadStates),
				method("getTransactionHeight", 1<<15, callflag.ReadStates),
				method("getTransactionFromBlock", 1<<16, callflag.ReadStates),
			},
		},
	}
}

// Metadata implements interop.Contract.
func (l *LedgerContract) Metadata() *interop.ContractMD { return l.md }

// OnPersist implements interop.Contract: blocks are written by the
// processor via dao.PutBlock, not here.
func (l *LedgerContract) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements interop.Contract.
func (l *LedgerContract) PostPersist(ic *interop.Context) error { return nil }

// Invoke implements interop.Contract.
func (l *LedgerContract) Invoke(ic *interop.Context, m string, args []stackitem.Item) (stackitem.Item, error) {
	switch m {
	case "currentHash":
		h, err := ic.DAO.CurrentBlockHash()
		if err != nil {
			return nil, err
		}
		return uint256Item(h), nil
	case "currentIndex":
		h, err := ic.DAO.GetCurrentBlockHeight()
		if err != nil {
			return bigItem(bigFromInt64(-1)), nil
		}
		return bigItem(bigFromInt64(int64(h))), nil
	case "getBlock":
		blk, err := l.resolveBlock(ic, args[0])
		if err != nil {
			return stackitem.Null{}, nil
		}
		return stackitem.NewArray([]stackitem.Item{
			uint256Item(blk.Hash()),
			bigItem(bigFromInt64(int64(blk.Version))),
			uint256Item(blk.PrevHash),
			uint256Item(blk.MerkleRoot),
			bigItem(new(big.Int).SetUint64(blk.Timestamp)),
			bigItem(bigFromInt64(int64(blk.Index))),
			uint160Item(blk.NextConsensus),
			bigItem(bigFromInt64(int64(len(blk.Transactions)))),
		}), nil
	case "getTransaction":
		h, err := argUint256(args, 0)
		if err != nil {
			return nil, err
		}
		tx, _, err := ic.DAO.GetTransaction(h)
		if err != nil {
			return stackitem.Null{}, nil
		}
		return transactionItem(tx), nil
	case "getTransactionHeight":
		h, err := argUint256(args, 0)
		if err != nil {
			return nil, err
		}
		_, height, err := ic.DAO.GetTransaction(h)
		if err != nil {
			return bigItem(bigFromInt64(-1)), nil
		}
		return bigItem(bigFromInt64(int64(height))), nil
	case "getTransactionFromBlock":
		blk, err := l.resolveBlock(ic, args[0])
		if err != nil {
			return stackitem.Null{}, nil
		}
		idx, err := argInt64(args, 1)
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(blk.Transactions) {
			return stackitem.Null{}, nil
		}
		return transactionItem(blk.Transactions[idx]), nil
	default:
		return nil, errUnknownMethod("LedgerContract", m)
	}
}

func (l *LedgerContract) resolveBlock(ic *interop.Context, item stackitem.Item) (*block.Block, error) {
	if b, err := item.TryBytes(); err == nil && len(b) == util.Uint256Size {
		h, err := util.Uint256DecodeBytesBE(b)
		if err != nil {
			return nil, err
		}
		return ic.DAO.GetBlock(h)
	}
	n, err := item.TryInteger()
	if err != nil {
		return nil, err
	}
	h, err := ic.Chain.GetHeaderHash(uint32(n.Int64()))
	if err != nil {
		return nil, err
	}
	return ic.DAO.GetBlock(h)
}

// transactionItem renders a transaction the way LedgerContract queries and
// System.Runtime.GetScriptContainer expose it.
func transactionItem(t *transaction.Transaction) stackitem.Item {
	signers := make([]stackitem.Item, len(t.Signers))
	for i, s := range t.Signers {
		signers[i] = uint160Item(s.Account)
	}
	return stackitem.NewArray([]stackitem.Item{
		uint256Item(t.Hash()),
		bigItem(bigFromInt64(int64(t.Version))),
		bigItem(new(big.Int).SetUint64(uint64(t.Nonce))),
		uint160Item(t.Sender()),
		bigItem(bigFromInt64(t.SystemFee)),
		bigItem(bigFromInt64(t.NetworkFee)),
		bigItem(new(big.Int).SetUint64(uint64(t.ValidUntilBlock))),
		bytesItem(t.Script),
		stackitem.NewArray(signers),
	})
}
