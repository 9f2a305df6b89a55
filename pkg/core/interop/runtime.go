package interop

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// maxNotificationNameLen and maxLogMessageLen bound System.Runtime.Notify/
// Log arguments.
const (
	maxNotificationNameLen = 32
	maxLogMessageLen       = 1024
	maxNotifications       = 512
)

// RegisterRuntime adds the System.Runtime.* syscalls.
func RegisterRuntime(ic *Context) {
	reg := func(name string, price int64, flags callflag.CallFlag, f func(*Context) error) {
		ic.RegisterFunction(&Function{
			ID: interopnames.ToID(name), Name: name, Func: f,
			Price: price, RequiredFlags: flags,
		})
	}

	reg(interopnames.SystemRuntimeCheckWitness, 1<<10, callflag.ReadStates, runtimeCheckWitness)
	reg(interopnames.SystemRuntimeNotify, 1<<15, callflag.AllowNotify, runtimeNotify)
	reg(interopnames.SystemRuntimeLog, 1<<15, callflag.AllowNotify, runtimeLog)
	reg(interopnames.SystemRuntimeGetTime, 1<<3, callflag.ReadStates, runtimeGetTime)
	reg(interopnames.SystemRuntimeGetNetwork, 1<<3, callflag.NoneFlag, runtimeGetNetwork)
	reg(interopnames.SystemRuntimeGetRandom, 1<<4, callflag.NoneFlag, runtimeGetRandom)
	reg(interopnames.SystemRuntimeGasLeft, 1<<4, callflag.NoneFlag, runtimeGasLeft)
	reg(interopnames.SystemRuntimeGetTrigger, 1<<3, callflag.NoneFlag, runtimeGetTrigger)
	reg(interopnames.SystemRuntimeGetScriptContainer, 1<<3, callflag.NoneFlag, runtimeGetScriptContainer)
	reg(interopnames.SystemRuntimeGetExecutingScriptHash, 1<<4, callflag.NoneFlag, runtimeGetExecutingScriptHash)
	reg(interopnames.SystemRuntimeGetCallingScriptHash, 1<<4, callflag.NoneFlag, runtimeGetCallingScriptHash)
	reg(interopnames.SystemRuntimeGetEntryScriptHash, 1<<4, callflag.NoneFlag, runtimeGetEntryScriptHash)
	reg(interopnames.SystemRuntimeGetInvocationCounter, 1<<4, callflag.NoneFlag, runtimeGetInvocationCounter)
	reg(interopnames.SystemRuntimePlatform, 1<<3, callflag.NoneFlag, runtimePlatform)
	reg(interopnames.SystemRuntimeBurnGas, 1<<4, callflag.NoneFlag, runtimeBurnGas)
}

func runtimeCheckWitness(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := item.TryBytes()
	if err != nil {
		return err
	}
	var account util.Uint160
	switch len(b) {
	case util.Uint160Size:
		account, err = util.Uint160DecodeBytesBE(b)
		if err != nil {
			return err
		}
	case 33:
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return err
		}
		account = pub.GetScriptHash()
	default:
		return fmt.Errorf("%w: CheckWitness argument must be a hash or a public key", stackitem.ErrInvalidCast)
	}
	ok := ic.checkWitness(account)
	ic.VM.Estack().Push(stackitem.NewBool(ok))
	return nil
}

// CheckWitnessAccount is the exported form of checkWitness, used by native
// contracts gating committee-only setters without going through the VM
// evaluation stack.
func (ic *Context) CheckWitnessAccount(account util.Uint160) bool {
	return ic.checkWitness(account)
}

// checkWitness evaluates whether account is authorized to witness the
// currently executing context, per the signer's scope.
func (ic *Context) checkWitness(account util.Uint160) bool {
	current := ic.VM.GetCurrentScriptHash()
	if account == current {
		return true
	}
	var signer *transaction.Signer
	for i := range ic.Signers() {
		if ic.Signers()[i].Account == account {
			signer = &ic.Signers()[i]
			break
		}
	}
	if signer == nil {
		return false
	}
	if signer.Scopes&transaction.Global != 0 {
		return true
	}

	entry := ic.VM.GetCurrentScriptHash()
	var calling *util.Uint160
	if cc := ic.VM.ContextAt(1); cc != nil {
		h := cc.ScriptHash()
		calling = &h
	}

	if signer.Scopes&transaction.CalledByEntry != 0 && calling == nil {
		return true
	}
	if signer.Scopes&transaction.CustomContracts != 0 {
		for _, c := range signer.AllowedContracts {
			if c == current {
				return true
			}
		}
	}
	var currentGroups []*keys.PublicKey
	if cs, err := ic.DAO.GetContractState(current); err == nil {
		for i := range cs.Manifest.Groups {
			currentGroups = append(currentGroups, cs.Manifest.Groups[i].PublicKey)
		}
	}
	if signer.Scopes&transaction.CustomGroups != 0 {
		for _, g := range signer.AllowedGroups {
			for _, cg := range currentGroups {
				if g.Equal(cg) {
					return true
				}
			}
		}
	}
	if signer.Scopes&transaction.WitnessRules != 0 {
		var callingGroups []*keys.PublicKey
		if calling != nil {
			if cs, err := ic.DAO.GetContractState(*calling); err == nil {
				for i := range cs.Manifest.Groups {
					callingGroups = append(callingGroups, cs.Manifest.Groups[i].PublicKey)
				}
			}
		}
		for _, rule := range signer.Rules {
			if rule.Condition.Match(entry, calling, callingGroups) {
				return rule.Action == transaction.WitnessAllow
			}
		}
	}
	return false
}

func runtimeNotify(ic *Context) error {
	nameItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	argsItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	name, err := nameItem.TryBytes()
	if err != nil || len(name) > maxNotificationNameLen {
		return fmt.Errorf("%w: invalid notification name", stackitem.ErrInvalidCast)
	}
	arr, ok := argsItem.(*stackitem.Array)
	if !ok {
		return fmt.Errorf("%w: Notify state must be an array", stackitem.ErrInvalidCast)
	}
	if len(ic.Notifications) >= maxNotifications {
		return fmt.Errorf("too many notifications")
	}
	ic.AddNotification(ic.VM.GetCurrentScriptHash(), string(name), arr)
	return nil
}

func runtimeLog(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	msg, err := item.TryBytes()
	if err != nil || len(msg) > maxLogMessageLen {
		return fmt.Errorf("%w: invalid log message", stackitem.ErrInvalidCast)
	}
	if ic.Log != nil {
		ic.Log(ic.VM.GetCurrentScriptHash(), string(msg))
	}
	return nil
}

func runtimeGetTime(ic *Context) error {
	var ts uint64
	if ic.Block != nil {
		ts = ic.Block.Timestamp
	}
	ic.VM.Estack().Push(stackitem.NewBigInteger(new(big.Int).SetUint64(ts)))
	return nil
}

func runtimeGetNetwork(ic *Context) error {
	ic.VM.Estack().Push(stackitem.NewBigInteger(new(big.Int).SetUint64(uint64(ic.Network))))
	return nil
}

func runtimeGetRandom(ic *Context) error {
	ic.randomTimes++
	buf := make([]byte, 16+4)
	copy(buf, ic.nonceData[:])
	binary.LittleEndian.PutUint32(buf[16:], ic.randomTimes)
	h := hash.Sha256(buf)
	h2 := hash.Sha256(h[:])
	ic.VM.Estack().Push(stackitem.NewBigInteger(new(big.Int).SetBytes(reverse(h2[:]))))
	return nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[len(b)-1-i]
	}
	return out
}

func runtimeGasLeft(ic *Context) error {
	limit := ic.VM.GasLimit()
	var left int64 = -1
	if limit > 0 {
		left = limit - ic.VM.GasConsumed()
	}
	ic.VM.Estack().Push(stackitem.NewBigInteger(big.NewInt(left)))
	return nil
}

func runtimeGetTrigger(ic *Context) error {
	ic.VM.Estack().Push(stackitem.NewBigInteger(big.NewInt(int64(ic.Trigger))))
	return nil
}

func runtimeGetScriptContainer(ic *Context) error {
	if ic.Container == nil {
		ic.VM.Estack().Push(stackitem.Null{})
		return nil
	}
	switch c := ic.Container.(type) {
	case *transaction.Transaction:
		ic.VM.Estack().Push(transactionToStackItem(c))
	default:
		ic.VM.Estack().Push(stackitem.NewInterop(ic.Container))
	}
	return nil
}

func runtimeGetExecutingScriptHash(ic *Context) error {
	ic.VM.Estack().Push(stackitem.NewByteArray(ic.VM.GetCurrentScriptHash().BytesBE()))
	return nil
}

func runtimeGetCallingScriptHash(ic *Context) error {
	return ic.VM.PushContextScriptHash(1)
}

func runtimeGetEntryScriptHash(ic *Context) error {
	return ic.VM.PushContextScriptHash(ic.VM.Depth() - 1)
}

func runtimeGetInvocationCounter(ic *Context) error {
	h := ic.VM.GetCurrentScriptHash()
	n := ic.Invocations[h]
	if n == 0 {
		n = 1
		ic.Invocations[h] = 1
	}
	ic.VM.Estack().Push(stackitem.NewBigInteger(big.NewInt(int64(n))))
	return nil
}

func runtimePlatform(ic *Context) error {
	ic.VM.Estack().Push(stackitem.NewByteArray([]byte("NEO")))
	return nil
}

func runtimeBurnGas(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	n, err := item.TryInteger()
	if err != nil || n.Sign() <= 0 || !n.IsInt64() {
		return fmt.Errorf("%w: GAS amount must be a positive int64", stackitem.ErrInvalidCast)
	}
	if !ic.VM.AddGas(n.Int64()) {
		return fmt.Errorf("out of gas")
	}
	return nil
}

// transactionToStackItem renders a transaction the way a verification/
// application script expects to read its own container.
func transactionToStackItem(t *transaction.Transaction) stackitem.Item {
	signers := make([]stackitem.Item, len(t.Signers))
	for i, s := range t.Signers {
		signers[i] = stackitem.NewByteArray(s.Account.BytesBE())
	}
	return stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(t.Hash().BytesBE()),
		stackitem.NewBigInteger(big.NewInt(int64(t.Version))),
		stackitem.NewBigInteger(new(big.Int).SetUint64(uint64(t.Nonce))),
		stackitem.NewByteArray(t.Sender().BytesBE()),
		stackitem.NewBigInteger(big.NewInt(t.SystemFee)),
		stackitem.NewBigInteger(big.NewInt(t.NetworkFee)),
		stackitem.NewBigInteger(new(big.Int).SetUint64(uint64(t.ValidUntilBlock))),
		stackitem.NewByteArray(t.Script),
		stackitem.NewArray(signers),
	})
}
