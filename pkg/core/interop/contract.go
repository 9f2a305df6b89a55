package interop

import (
	"fmt"

	"math/big"

	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// RegisterContract adds the System.Contract.* syscalls.
func RegisterContract(ic *Context) {
	reg := func(name string, price int64, flags callflag.CallFlag, f func(*Context) error) {
		ic.RegisterFunction(&Function{
			ID: interopnames.ToID(name), Name: name, Func: f,
			Price: price, RequiredFlags: flags,
		})
	}
	reg(interopnames.SystemContractCall, 1<<15, callflag.ReadStates|callflag.AllowCall, contractCall)
	reg(interopnames.SystemContractGetCallFlags, 1<<10, callflag.NoneFlag, contractGetCallFlags)
	reg(interopnames.SystemContractCreateStandardAccount, 1<<8, callflag.NoneFlag, contractCreateStandardAccount)
	reg(interopnames.SystemContractCreateMultisigAccount, 1<<8, callflag.NoneFlag, contractCreateMultisigAccount)
}

// contractCall implements System.Contract.Call: (scriptHash, method, flags,
// args) -> invoke, native or user, honoring the manifest permission check
// and flag intersection.
func contractCall(ic *Context) error {
	hashItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	methodItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	flagsItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	argsItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	hb, err := hashItem.TryBytes()
	if err != nil {
		return err
	}
	callee, err := util.Uint160DecodeBytesBE(hb)
	if err != nil {
		return err
	}
	methodB, err := methodItem.TryBytes()
	if err != nil {
		return err
	}
	method := string(methodB)
	if len(method) > 0 && method[0] == '_' {
		return fmt.Errorf("method %q is not directly callable", method)
	}
	flagsInt, err := flagsItem.TryInteger()
	if err != nil {
		return err
	}
	requested := callflag.CallFlag(flagsInt.Int64())
	argsArr, ok := argsItem.(*stackitem.Array)
	if !ok {
		return fmt.Errorf("%w: Call arguments must be an array", stackitem.ErrInvalidCast)
	}
	args := argsArr.Value().([]stackitem.Item)

	callerHash := ic.VM.GetCurrentScriptHash()
	callerState, _ := ic.DAO.GetContractState(callerHash)

	callerFlags := callflag.All
	if curCtx := ic.VM.Context(); curCtx != nil {
		callerFlags = callflag.CallFlag(curCtx.CallFlags())
	}
	effective := requested.Intersect(callerFlags)

	if n, ok := ic.Natives[callee]; ok {
		if callerState != nil && !callerState.Manifest.CanCall(callee, nil, method) {
			return fmt.Errorf("contract %s is not allowed to call %s.%s", callerHash, callee, method)
		}
		md := n.Metadata()
		var desc *MethodDesc
		for i := range md.Methods {
			if md.Methods[i].Name == method {
				desc = &md.Methods[i]
				break
			}
		}
		if desc == nil {
			return fmt.Errorf("method %s not found on native %s", method, md.Name)
		}
		if !effective.Has(desc.RequiredFlags) {
			return fmt.Errorf("%w: %s.%s requires %s", ErrInvalidCallFlags, md.Name, method, desc.RequiredFlags)
		}
		if !ic.VM.AddGas(desc.Price * ic.BaseExecFee()) {
			return vm.ErrOutOfGas
		}
		ic.Invocations[callee]++
		res, err := n.Invoke(ic, method, args)
		if err != nil {
			return err
		}
		if res == nil {
			res = stackitem.Null{}
		}
		ic.VM.Estack().Push(res)
		return nil
	}

	cs, err := ic.DAO.GetContractState(callee)
	if err != nil {
		return fmt.Errorf("called contract %s not found", callee)
	}
	if callerState != nil && !callerState.Manifest.CanCall(callee, nil, method) {
		return fmt.Errorf("contract %s is not allowed to call %s.%s", callerHash, callee, method)
	}
	md := cs.Manifest.ABI.GetMethod(method, len(args))
	if md == nil {
		return fmt.Errorf("method %s/%d not found on contract %s", method, len(args), callee)
	}
	ic.Invocations[callee]++
	script, err := cs.NEF.Bytes()
	if err != nil {
		return err
	}
	for i := len(args) - 1; i >= 0; i-- {
		ic.VM.Estack().Push(args[i])
	}
	return ic.VM.LoadScriptWithEntry(script, md.Offset, callee, byte(effective))
}

func contractGetCallFlags(ic *Context) error {
	ctx := ic.VM.Context()
	var f byte
	if ctx != nil {
		f = ctx.CallFlags()
	}
	ic.VM.Estack().Push(stackitem.NewBigInteger(bigIntFromByte(f)))
	return nil
}

func contractCreateStandardAccount(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := item.TryBytes()
	if err != nil {
		return err
	}
	pub, err := pubKeyFromBytes(b)
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray(pub.GetScriptHash().BytesBE()))
	return nil
}

func contractCreateMultisigAccount(ic *Context) error {
	mItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	keysItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	mInt, err := mItem.TryInteger()
	if err != nil {
		return err
	}
	arr, ok := keysItem.(*stackitem.Array)
	if !ok {
		return fmt.Errorf("%w: expected public key array", stackitem.ErrInvalidCast)
	}
	items := arr.Value().([]stackitem.Item)
	pubs := make([][]byte, len(items))
	for i, it := range items {
		b, err := it.TryBytes()
		if err != nil {
			return err
		}
		pubs[i] = b
	}
	h, err := multisigScriptHash(int(mInt.Int64()), pubs)
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray(h.BytesBE()))
	return nil
}

// IsStandard reports whether script is a standard signature/multisig
// verification script, used by the Contract.IsStandard helper natives rely
// on when validating witness scripts.
func IsStandard(script []byte) bool { return vm.IsStandardContract(script) }

func bigIntFromByte(b byte) *big.Int { return big.NewInt(int64(b)) }

func pubKeyFromBytes(b []byte) (*keys.PublicKey, error) {
	return keys.NewPublicKeyFromBytes(b)
}

func multisigScriptHash(m int, pubs [][]byte) (util.Uint160, error) {
	parsed := make(keys.PublicKeys, len(pubs))
	for i, b := range pubs {
		p, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return util.Uint160{}, err
		}
		parsed[i] = p
	}
	script, err := smartcontract.CreateMultiSigRedeemScript(m, parsed)
	if err != nil {
		return util.Uint160{}, err
	}
	return hash.Hash160(script), nil
}
