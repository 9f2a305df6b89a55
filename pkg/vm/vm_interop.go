package vm

import (
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// AddGas exposes the engine's gas accounting to the embedding Application
// Engine, used when a syscall handler or native-contract dispatch wants to
// charge a dynamic (size-dependent) price in addition to the opcode/
// syscall base price already charged by Step.
func (v *VM) AddGas(cost int64) bool {
	return v.addGas(cost) == nil
}

// GasLimit returns the configured gas budget (0/negative means
// unmetered).
func (v *VM) GasLimit() int64 { return v.gasLimit }

// SetGasLimit replaces the gas budget, used by ApplicationEngine when
// switching triggers on a reused VM.
func (v *VM) SetGasLimit(limit int64) { v.gasLimit = limit }

// LoadScriptWithHash behaves like LoadScript but lets the caller pin the
// new context's script hash independent of the script bytes (used for
// native-contract synthetic scripts and NEF method tokens).
func (v *VM) LoadScriptWithHash(script []byte, scriptHash util.Uint160, callFlags byte) error {
	return v.LoadScript(script, scriptHash, callFlags)
}

// LoadScriptWithEntry is LoadScriptWithHash with a non-zero starting
// program counter, used by CALLT to jump directly into a NEF method
// token's target method.
func (v *VM) LoadScriptWithEntry(script []byte, entry int, scriptHash util.Uint160, callFlags byte) error {
	if err := v.LoadScript(script, scriptHash, callFlags); err != nil {
		return err
	}
	ctx := v.Context()
	if !ctx.script.IsValidTarget(entry) {
		v.istack = v.istack[:len(v.istack)-1]
		return ErrInvalidJump
	}
	ctx.pc = entry
	return nil
}

// GetCurrentScriptHash returns the executing context's script hash,
// matching System.Runtime.GetExecutingScriptHash.
func (v *VM) GetCurrentScriptHash() util.Uint160 {
	ctx := v.Context()
	if ctx == nil {
		return util.Uint160{}
	}
	return ctx.ScriptHash()
}

// PushContextScriptHash pushes the script hash of the invocation-stack
// frame n levels below the current one onto the evaluation stack, used by
// GetCallingScriptHash/GetEntryScriptHash.
func (v *VM) PushContextScriptHash(n int) error {
	ctx := v.ContextAt(n)
	if ctx == nil {
		v.estack.Push(stackitem.Null{})
		return nil
	}
	v.estack.Push(stackitem.NewByteArray(ctx.ScriptHash().BytesBE()))
	return nil
}

// Istack exposes the invocation-stack depth-indexed context accessor the
// interop layer needs for iterator/enumerator bookkeeping and diagnostics.
func (v *VM) Istack() []*Context { return v.istack }

// Reset clears engine state so it can be reused for another invocation.
func (v *VM) Reset(gasLimit int64) {
	v.istack = nil
	v.refs = stackitem.NewRefCounter()
	v.estack = newRefCountingStack(v.refs)
	v.state = NoneState
	v.fault = nil
	v.gasConsumed = 0
	v.gasLimit = gasLimit
}

// IsStandardContract reports whether script is exactly a standard
// signature or multisig verification script: a syntactic check on opcode shape, not an
// execution.
func IsStandardContract(script []byte) bool {
	// Single-signature: PUSHDATA1 33 <pubkey> SYSCALL <CheckSig hash>.
	if len(script) == 40 && script[0] == 0x0c && script[1] == 33 {
		return true
	}
	// Multisig: PUSH(m) (PUSHDATA1 33 <pubkey>)+ PUSH(n) SYSCALL <hash>.
	if len(script) < 42 {
		return false
	}
	if !isPushNumber(script[0]) {
		return false
	}
	i := 1
	if script[0] == 0x00 { // PUSHINT8 m
		i = 2
	}
	n := 0
	for i+35 <= len(script) && script[i] == 0x0c && script[i+1] == 33 {
		i += 35
		n++
	}
	if n == 0 || i+6 > len(script) {
		return false
	}
	if !isPushNumber(script[i]) {
		return false
	}
	if script[i] == 0x00 { // PUSHINT8 n
		i++
	}
	i++
	return i < len(script) && script[i] == 0x41 // SYSCALL
}

func isPushNumber(b byte) bool {
	return (b >= 0x10 && b <= 0x20) || b == 0x00
}

// IsPushOnly reports whether script consists solely of data-push
// instructions, the requirement on witness invocation scripts: they carry
// data, never logic.
func IsPushOnly(script []byte) bool {
	s, err := NewScript(script)
	if err != nil {
		return false
	}
	for ip := 0; ip < s.Len(); {
		op, _, next, err := s.InstructionAt(ip)
		if err != nil {
			return false
		}
		if op > opcode.PUSHINT256 && !(op >= opcode.PUSHM1 && op <= opcode.PUSH16) &&
			op != opcode.PUSHDATA1 && op != opcode.PUSHDATA2 && op != opcode.PUSHDATA4 &&
			op != opcode.PUSHNULL && op != opcode.PUSHT && op != opcode.PUSHF && op != opcode.PUSHA {
			return false
		}
		ip = next
	}
	return true
}
