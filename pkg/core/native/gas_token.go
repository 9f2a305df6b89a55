package native

import (
	"fmt"
	"math/big"

	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// GasTokenID is the fixed negative id reserved for this native.
const GasTokenID = -5

// GasDecimals is GAS's fixed fractional precision.
const GasDecimals = 8

const prefixGasAccount byte = 20

// GasToken implements the network's fee currency: transferable balances
// minted on NEO balance changes and block reward, burned on fee payment.
type GasToken struct {
	md   *interop.ContractMD
	hash util.Uint160
}

// NewGasToken builds the native.
func NewGasToken() *GasToken {
	h := smartcontract.CreateNativeContractHash("GasToken")
	return &GasToken{
		hash: h,
		md: &interop.ContractMD{
			ID: GasTokenID, Hash: h, Name: "GasToken",
			Methods: []interop.MethodDesc{
				method("symbol", 0, callflag.NoneFlag),
				method("decimals", 0, callflag.NoneFlag),
				method("totalSupply", 1<<15, callflag.ReadStates),
				method("balanceOf", 1<<15, callflag.ReadStates),
				method("transfer", 1<<17, callflag.States|callflag.AllowCall|callflag.AllowNotify),
			},
		},
	}
}

// Metadata implements interop.Contract.
func (g *GasToken) Metadata() *interop.ContractMD { return g.md }

// OnPersist implements interop.Contract: no per-block bookkeeping of its
// own (gas-per-block mint is driven by NeoToken.PostPersist).
func (g *GasToken) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements interop.Contract.
func (g *GasToken) PostPersist(ic *interop.Context) error { return nil }

// Initialize seeds the genesis GAS supply onto the committee account, amount given in indivisible GAS units.
func (g *GasToken) Initialize(ic *interop.Context, committee util.Uint160, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	return g.Mint(ic, committee, amount)
}

// Invoke implements interop.Contract.
func (g *GasToken) Invoke(ic *interop.Context, m string, args []stackitem.Item) (stackitem.Item, error) {
	switch m {
	case "symbol":
		return stringItem("GAS"), nil
	case "decimals":
		return bigItem(bigFromInt64(GasDecimals)), nil
	case "totalSupply":
		return bigItem(g.totalSupply(ic)), nil
	case "balanceOf":
		acc, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		return bigItem(g.balanceOf(ic, acc)), nil
	case "transfer":
		from, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		to, err := argUint160(args, 1)
		if err != nil {
			return nil, err
		}
		amount, err := argBigInt(args, 2)
		if err != nil {
			return nil, err
		}
		ok, err := g.transfer(ic, from, to, amount)
		if err != nil {
			return nil, err
		}
		return boolItem(ok), nil
	default:
		return nil, errUnknownMethod("GasToken", m)
	}
}

func gasAccountKey(account util.Uint160) []byte {
	return append([]byte{prefixGasAccount}, account.BytesBE()...)
}

func (g *GasToken) getBalance(ic *interop.Context, account util.Uint160) *state.GASBalance {
	b, err := ic.DAO.GetStorageItem(g.md.ID, gasAccountKey(account))
	if err != nil {
		return &state.GASBalance{Balance: big.NewInt(0)}
	}
	bal := &state.GASBalance{}
	r := io.NewBinReaderFromBuf(b)
	bal.DecodeBinary(r)
	if r.Err != nil {
		return &state.GASBalance{Balance: big.NewInt(0)}
	}
	return bal
}

func (g *GasToken) putBalance(ic *interop.Context, account util.Uint160, bal *state.GASBalance) error {
	if bal.Balance.Sign() == 0 {
		return ic.DAO.DeleteStorageItem(g.md.ID, gasAccountKey(account))
	}
	w := io.NewBufBinWriter()
	bal.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return ic.DAO.PutStorageItem(g.md.ID, gasAccountKey(account), w.Bytes())
}

func (g *GasToken) balanceOf(ic *interop.Context, account util.Uint160) *big.Int {
	return g.getBalance(ic, account).Balance
}

// BalanceOf exposes the account's GAS balance to callers outside native
// dispatch (the mempool Feer and the block processor's fee checks), which
// need it without going through Invoke's stack-item marshaling.
func (g *GasToken) BalanceOf(ic *interop.Context, account util.Uint160) *big.Int {
	return g.balanceOf(ic, account)
}

func (g *GasToken) totalSupply(ic *interop.Context) *big.Int {
	total := big.NewInt(0)
	ic.DAO.Seek(g.md.ID, []byte{prefixGasAccount}, false, func(_, v []byte) bool {
		bal := &state.GASBalance{}
		r := io.NewBinReaderFromBuf(v)
		bal.DecodeBinary(r)
		if r.Err == nil {
			total.Add(total, bal.Balance)
		}
		return true
	})
	return total
}

// Mint credits account with amount GAS.
func (g *GasToken) Mint(ic *interop.Context, account util.Uint160, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	bal := g.getBalance(ic, account)
	bal.Balance.Add(bal.Balance, amount)
	bal.BalanceHeight = currentHeight(ic)
	if err := g.putBalance(ic, account, bal); err != nil {
		return err
	}
	ic.AddNotification(g.hash, "Transfer", stackitem.NewArray([]stackitem.Item{
		stackitem.Null{}, uint160Item(account), bigItem(amount),
	}))
	return nil
}

// Burn debits account by amount GAS, failing if the balance is
// insufficient.
func (g *GasToken) Burn(ic *interop.Context, account util.Uint160, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	bal := g.getBalance(ic, account)
	if bal.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient GAS balance")
	}
	bal.Balance.Sub(bal.Balance, amount)
	bal.BalanceHeight = currentHeight(ic)
	if err := g.putBalance(ic, account, bal); err != nil {
		return err
	}
	ic.AddNotification(g.hash, "Transfer", stackitem.NewArray([]stackitem.Item{
		uint160Item(account), stackitem.Null{}, bigItem(amount),
	}))
	return nil
}

func (g *GasToken) transfer(ic *interop.Context, from, to util.Uint160, amount *big.Int) (bool, error) {
	if amount.Sign() < 0 {
		return false, fmt.Errorf("transfer amount must be non-negative")
	}
	if !ic.CheckWitnessAccount(from) {
		return false, nil
	}
	fromBal := g.getBalance(ic, from)
	if fromBal.Balance.Cmp(amount) < 0 {
		return false, nil
	}
	if amount.Sign() > 0 {
		fromBal.Balance.Sub(fromBal.Balance, amount)
		if err := g.putBalance(ic, from, fromBal); err != nil {
			return false, err
		}
		toBal := g.getBalance(ic, to)
		toBal.Balance.Add(toBal.Balance, amount)
		if err := g.putBalance(ic, to, toBal); err != nil {
			return false, err
		}
	}
	ic.AddNotification(g.hash, "Transfer", stackitem.NewArray([]stackitem.Item{
		uint160Item(from), uint160Item(to), bigItem(amount),
	}))
	return true, nil
}
