package native

import (
	"fmt"

	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// PolicyContractID is the fixed negative id reserved for this native.
const PolicyContractID = -3

const (
	defaultFeePerByte     = 1000
	defaultExecFeeFactor  = 30
	defaultStoragePrice   = 100000
	maxExecFeeFactor      = 100
	maxStoragePrice       = 10000000
	maxFeePerByte         = 100_000_000
)

const (
	prefixPolicyBlockedAccount byte = 15
	prefixPolicyFeePerByte     byte = 10
	prefixPolicyExecFeeFactor  byte = 18
	prefixPolicyStoragePrice   byte = 19
	prefixPolicyAttributeFee   byte = 20
)

// PolicyContract stores network-wide fee and permission parameters.
type PolicyContract struct {
	md *interop.ContractMD
	hash util.Uint160
}

// NewPolicyContract builds the native.
func NewPolicyContract() *PolicyContract {
	h := smartcontract.CreateNativeContractHash("PolicyContract")
	return &PolicyContract{
		hash: h,
		md: &interop.ContractMD{
			ID: PolicyContractID, Hash: h, Name: "PolicyContract",
			Methods: []interop.MethodDesc{
				method("getFeePerByte", 1<<15, callflag.ReadStates),
				method("getExecFeeFactor", 1<<15, callflag.ReadStates),
				method("getStoragePrice", 1<<15, callflag.ReadStates),
				method("getAttributeFee", 1<<15, callflag.ReadStates),
				method("isBlocked", 1<<15, callflag.ReadStates),
				method("setFeePerByte", 1<<15, callflag.States),
				method("setExecFeeFactor", 1<<15, callflag.States),
				method("setStoragePrice", 1<<15, callflag.States),
				method("setAttributeFee", 1<<15, callflag.States),
				method("blockAccount", 1<<15, callflag.States),
				method("unblockAccount", 1<<15, callflag.States),
			},
		},
	}
}

// Metadata implements interop.Contract.
func (p *PolicyContract) Metadata() *interop.ContractMD { return p.md }

// OnPersist implements interop.Contract: no per-block update.
func (p *PolicyContract) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements interop.Contract.
func (p *PolicyContract) PostPersist(ic *interop.Context) error { return nil }

// Initialize seeds default parameters at genesis.
func (p *PolicyContract) Initialize(ic *interop.Context) error {
	for _, e := range []struct {
		prefix byte
		value  int64
	}{
		{prefixPolicyFeePerByte, defaultFeePerByte},
		{prefixPolicyExecFeeFactor, defaultExecFeeFactor},
		{prefixPolicyStoragePrice, defaultStoragePrice},
	} {
		if err := ic.DAO.PutStorageItem(p.md.ID, []byte{e.prefix}, encodeInt64(e.value)); err != nil {
			return err
		}
	}
	return nil
}

func (p *PolicyContract) getInt(ic *interop.Context, prefix byte, def int64) int64 {
	b, err := ic.DAO.GetStorageItem(p.md.ID, []byte{prefix})
	if err != nil {
		return def
	}
	return decodeInt64(b)
}

// GetExecFeeFactor returns the current VM opcode/syscall price multiplier,
// consumed by the Application Engine when pricing instructions.
func (p *PolicyContract) GetExecFeeFactor(ic *interop.Context) int64 {
	return p.getInt(ic, prefixPolicyExecFeeFactor, defaultExecFeeFactor)
}

// GetStoragePrice returns the per-byte Storage.Put cost.
func (p *PolicyContract) GetStoragePrice(ic *interop.Context) int64 {
	return p.getInt(ic, prefixPolicyStoragePrice, defaultStoragePrice)
}

// GetFeePerByte returns the per-byte network fee rate used by transaction
// validation.
func (p *PolicyContract) GetFeePerByte(ic *interop.Context) int64 {
	return p.getInt(ic, prefixPolicyFeePerByte, defaultFeePerByte)
}

// IsBlocked reports whether account is on the blocked-accounts list,
// consulted by transaction validation.
func (p *PolicyContract) IsBlocked(ic *interop.Context, account util.Uint160) bool {
	return p.isBlockedStored(ic, account)
}

// GetAttributeFee returns the per-attribute surcharge for at, consulted by
// transaction validation's networkFee sufficiency check.
func (p *PolicyContract) GetAttributeFee(ic *interop.Context, at transaction.AttrType) int64 {
	b, err := ic.DAO.GetStorageItem(p.md.ID, []byte{prefixPolicyAttributeFee, byte(at)})
	if err != nil {
		return 0
	}
	return decodeInt64(b)
}

// Invoke implements interop.Contract.
func (p *PolicyContract) Invoke(ic *interop.Context, m string, args []stackitem.Item) (stackitem.Item, error) {
	switch m {
	case "getFeePerByte":
		return bigItem(bigFromInt64(p.GetFeePerByte(ic))), nil
	case "getExecFeeFactor":
		return bigItem(bigFromInt64(p.GetExecFeeFactor(ic))), nil
	case "getStoragePrice":
		return bigItem(bigFromInt64(p.GetStoragePrice(ic))), nil
	case "getAttributeFee":
		t, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := ic.DAO.GetStorageItem(p.md.ID, []byte{prefixPolicyAttributeFee, byte(t)})
		if err != nil {
			return bigItem(bigFromInt64(0)), nil
		}
		return bigItem(bigFromInt64(decodeInt64(b))), nil
	case "isBlocked":
		acc, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		return boolItem(p.isBlockedStored(ic, acc)), nil
	case "setFeePerByte":
		n, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		if n < 0 || n > maxFeePerByte {
			return nil, fmt.Errorf("FeePerByte out of range: %d", n)
		}
		return nil, p.setInt(ic, prefixPolicyFeePerByte, n)
	case "setExecFeeFactor":
		n, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		if n <= 0 || n > maxExecFeeFactor {
			return nil, fmt.Errorf("ExecFeeFactor out of range: %d", n)
		}
		return nil, p.setInt(ic, prefixPolicyExecFeeFactor, n)
	case "setStoragePrice":
		n, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		if n <= 0 || n > maxStoragePrice {
			return nil, fmt.Errorf("StoragePrice out of range: %d", n)
		}
		return nil, p.setInt(ic, prefixPolicyStoragePrice, n)
	case "setAttributeFee":
		t, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		n, err := argInt64(args, 1)
		if err != nil {
			return nil, err
		}
		if n < 0 || n > maxFeePerByte {
			return nil, fmt.Errorf("attribute fee out of range: %d", n)
		}
		if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
			return nil, err
		}
		return nil, ic.DAO.PutStorageItem(p.md.ID, []byte{prefixPolicyAttributeFee, byte(t)}, encodeInt64(n))
	case "blockAccount":
		acc, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
			return nil, err
		}
		return boolItem(true), p.setBlocked(ic, acc, true)
	case "unblockAccount":
		acc, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
			return nil, err
		}
		return boolItem(true), p.setBlocked(ic, acc, false)
	default:
		return nil, errUnknownMethod("PolicyContract", m)
	}
}

func (p *PolicyContract) setInt(ic *interop.Context, prefix byte, n int64) error {
	if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
		return err
	}
	return ic.DAO.PutStorageItem(p.md.ID, []byte{prefix}, encodeInt64(n))
}

func (p *PolicyContract) blockedKey(account util.Uint160) []byte {
	return append([]byte{prefixPolicyBlockedAccount}, account.BytesBE()...)
}

func (p *PolicyContract) isBlockedStored(ic *interop.Context, account util.Uint160) bool {
	_, err := ic.DAO.GetStorageItem(p.md.ID, p.blockedKey(account))
	return err == nil
}

func (p *PolicyContract) setBlocked(ic *interop.Context, account util.Uint160, blocked bool) error {
	k := p.blockedKey(account)
	if blocked {
		return ic.DAO.PutStorageItem(p.md.ID, k, []byte{1})
	}
	return ic.DAO.DeleteStorageItem(p.md.ID, k)
}
