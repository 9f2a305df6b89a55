// Package vm implements the reference Neo N3 stack-based execution
// engine: script decoding, the evaluation/invocation stacks, and the
// opcode jump table. Gas metering policy and syscall resolution are
// supplied by the embedding Application Engine (pkg/core/interop) via
// GetPrice/SyscallHandler, keeping this package free of chain-specific
// native-contract knowledge.
package vm

import (
	"fmt"
	"math/big"

	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// State is the lifecycle state of a VM run.
type State byte

const (
	NoneState State = iota
	HaltState
	FaultState
	BreakState
)

func (s State) String() string {
	switch s {
	case NoneState:
		return "NONE"
	case HaltState:
		return "HALT"
	case FaultState:
		return "FAULT"
	case BreakState:
		return "BREAK"
	default:
		return "UNKNOWN"
	}
}

// VM is the reference execution engine: one shared evaluation stack plus a
// stack of invocation contexts.
type VM struct {
	istack []*Context
	estack *Stack
	refs   *stackitem.RefCounter

	state State
	fault error

	gasConsumed int64
	gasLimit    int64

	// GetPrice returns the gas cost of executing op in ctx, charged before
	// the instruction runs. A nil GetPrice means unmetered execution
	// (used by standalone VM tests; ApplicationEngine always sets one).
	GetPrice func(op opcode.Opcode, ctx *Context) int64

	// SyscallHandler resolves and invokes a SYSCALL by its 4-byte id.
	// Returning an error faults the VM.
	SyscallHandler func(v *VM, id uint32) error

	// OnUnload is called just after a context is popped off the invocation
	// stack (RET or abnormal unwind), letting the embedder release any
	// per-call resources (e.g. storage contexts).
	OnUnload func(ctx *Context, unhandled bool)
}

// NewVM creates a VM with the given gas limit (0 disables metering).
func NewVM(gasLimit int64) *VM {
	refs := stackitem.NewRefCounter()
	return &VM{
		estack:   newRefCountingStack(refs),
		refs:     refs,
		gasLimit: gasLimit,
	}
}

// Estack returns the shared evaluation stack.
func (v *VM) Estack() *Stack { return v.estack }

// State returns the current lifecycle state.
func (v *VM) State() State { return v.state }

// FaultException returns the error that caused a Fault, if any.
func (v *VM) FaultException() error { return v.fault }

// GasConsumed returns the total gas charged so far.
func (v *VM) GasConsumed() int64 { return v.gasConsumed }

// Context returns the currently executing context, or nil if the
// invocation stack is empty.
func (v *VM) Context() *Context {
	if len(v.istack) == 0 {
		return nil
	}
	return v.istack[len(v.istack)-1]
}

// Depth returns the invocation stack depth.
func (v *VM) Depth() int { return len(v.istack) }

// ContextAt returns the invocation-stack context n frames below the
// current one (0 = the current context, as returned by Context), or nil if
// n is out of range. Used by the Application Engine to resolve
// calling/entry script hashes.
func (v *VM) ContextAt(n int) *Context {
	idx := len(v.istack) - 1 - n
	if idx < 0 || idx >= len(v.istack) {
		return nil
	}
	return v.istack[idx]
}

// LoadScript decodes script and pushes a new context onto the invocation
// stack, ready to execute from offset 0.
func (v *VM) LoadScript(script []byte, scriptHash util.Uint160, callFlags byte) error {
	if len(v.istack) >= MaxInvocationStackSize {
		return ErrStackTooDeep
	}
	s, err := NewScript(script)
	if err != nil {
		return err
	}
	v.istack = append(v.istack, NewContext(s, scriptHash, callFlags))
	return nil
}

// addGas charges cost against the gas limit, faulting the VM if exceeded.
func (v *VM) addGas(cost int64) error {
	if v.gasLimit <= 0 {
		return nil
	}
	v.gasConsumed += cost
	if v.gasConsumed > v.gasLimit {
		return ErrOutOfGas
	}
	return nil
}

// Run executes instructions until the VM halts, faults, or breaks.
func (v *VM) Run() error {
	if v.state == NoneState {
		v.state = NoneState
	}
	for v.state == NoneState || v.state == BreakState {
		if v.state == BreakState {
			v.state = NoneState
		}
		if err := v.Step(); err != nil {
			return err
		}
		if len(v.istack) == 0 && v.state == NoneState {
			v.state = HaltState
		}
	}
	return nil
}

// Step executes a single instruction, updating v.state on Halt/Fault.
func (v *VM) Step() error {
	ctx := v.Context()
	if ctx == nil {
		v.state = HaltState
		return nil
	}
	if ctx.pc == ctx.script.Len() {
		// Running off the end of a script is an implicit RET.
		return v.ret()
	}
	op, operand, next, err := ctx.script.InstructionAt(ctx.pc)
	if err != nil {
		return v.fail(err)
	}
	if v.GetPrice != nil {
		if err := v.addGas(v.GetPrice(op, ctx)); err != nil {
			return v.fail(err)
		}
	}
	ctx.pc = next
	if err := v.execute(ctx, op, operand); err != nil {
		if !v.tryHandle(err) {
			return v.fail(err)
		}
	}
	// Cycle collection and the aggregate item limit both run against the
	// reference counter, so a single stack slot holding an arbitrarily
	// large compound graph cannot dodge MaxStackSize.
	v.refs.Collect()
	if v.refs.Size() > MaxStackSize {
		return v.fail(ErrStackTooBig)
	}
	return nil
}

func (v *VM) fail(err error) error {
	v.state = FaultState
	v.fault = err
	return err
}

// tryHandle attempts to route a runtime fault to the nearest enclosing
// CATCH in the current context, matching THROW's own unwinding.
func (v *VM) tryHandle(err error) bool {
	ctx := v.Context()
	if ctx == nil {
		return false
	}
	tb, ok := ctx.currentTry()
	if !ok || !tb.hasCatch {
		return false
	}
	if ts, isThrow := err.(*throwSignal); isThrow {
		v.estack.Push(ts.item)
	} else {
		v.estack.Push(stackitem.NewByteArray([]byte(err.Error())))
	}
	ctx.pc = tb.catchPos
	tb.hasCatch = false
	return true
}

func popInt(s *Stack) (*big.Int, error) {
	i, err := s.Pop()
	if err != nil {
		return nil, err
	}
	return i.TryInteger()
}

func popBytes(s *Stack) ([]byte, error) {
	i, err := s.Pop()
	if err != nil {
		return nil, err
	}
	return i.TryBytes()
}

func pushBool(s *Stack, b bool) { s.Push(stackitem.NewBool(b)) }

func pushInt(s *Stack, i *big.Int) error {
	r := stackitem.NewBigInteger(i)
	if r == nil {
		return ErrInvalidOpcode
	}
	s.Push(r)
	return nil
}

// execute dispatches a single decoded instruction.
func (v *VM) execute(ctx *Context, op opcode.Opcode, operand []byte) error {
	es := v.estack
	switch {
	case op >= opcode.PUSHINT8 && op <= opcode.PUSHINT256:
		es.Push(stackitem.NewBigInteger(bytesToSignedInt(operand)))
		return nil
	case op >= opcode.PUSH0 && op <= opcode.PUSH16:
		es.Push(stackitem.Make(int64(op - opcode.PUSH0)))
		return nil
	}
	switch op {
	case opcode.PUSHM1:
		es.Push(stackitem.Make(-1))
	case opcode.PUSHT:
		pushBool(es, true)
	case opcode.PUSHF:
		pushBool(es, false)
	case opcode.PUSHNULL:
		es.Push(stackitem.Null{})
	case opcode.PUSHA:
		off := int32(le32(operand))
		target := ctx.pc - 5 + int(off)
		if !ctx.script.IsValidTarget(target) {
			return ErrInvalidJump
		}
		es.Push(stackitem.NewPointer(target, ctx.script.Bytes()))
	case opcode.PUSHDATA1, opcode.PUSHDATA2, opcode.PUSHDATA4:
		es.Push(stackitem.NewByteArray(operand))
	case opcode.NOP:
	case opcode.JMP, opcode.JMPL:
		return v.jump(ctx, op, operand, true)
	case opcode.JMPIF, opcode.JMPIFL:
		b, err := popBoolOp(es)
		if err != nil {
			return err
		}
		return v.jump(ctx, op, operand, b)
	case opcode.JMPIFNOT, opcode.JMPIFNOTL:
		b, err := popBoolOp(es)
		if err != nil {
			return err
		}
		return v.jump(ctx, op, operand, !b)
	case opcode.JMPEQ, opcode.JMPEQL, opcode.JMPNE, opcode.JMPNEL,
		opcode.JMPGT, opcode.JMPGTL, opcode.JMPGE, opcode.JMPGEL,
		opcode.JMPLT, opcode.JMPLTL, opcode.JMPLE, opcode.JMPLEL:
		return v.jumpCompare(ctx, op, operand)
	case opcode.CALL, opcode.CALLL:
		return v.call(ctx, op, operand)
	case opcode.CALLA:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		p, ok := i.(*stackitem.Pointer)
		if !ok {
			return ErrInvalidOpcode
		}
		return v.callTo(p.Position())
	case opcode.ABORT:
		return fmt.Errorf("ABORT")
	case opcode.ASSERT:
		b, err := popBoolOp(es)
		if err != nil {
			return err
		}
		if !b {
			return fmt.Errorf("ASSERT failed")
		}
	case opcode.THROW:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		return newThrow(i)
	case opcode.TRY, opcode.TRYL:
		return v.try(ctx, op, operand)
	case opcode.ENDTRY, opcode.ENDTRYL:
		return v.endTry(ctx, op, operand)
	case opcode.ENDFINALLY:
		tb, ok := ctx.currentTry()
		if !ok {
			return ErrInvalidOpcode
		}
		end := tb.endPos
		ctx.popTry()
		if !ctx.script.IsValidTarget(end) {
			return ErrInvalidJump
		}
		ctx.pc = end
	case opcode.RET:
		return v.ret()
	case opcode.SYSCALL:
		if v.SyscallHandler == nil {
			return ErrNoSyscall
		}
		return v.SyscallHandler(v, le32(operand))

	case opcode.DEPTH:
		es.Push(stackitem.Make(int64(es.Len())))
	case opcode.DROP:
		_, err := es.Pop()
		return err
	case opcode.NIP:
		_, err := es.RemoveAt(1)
		return err
	case opcode.XDROP:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		_, err = es.RemoveAt(int(n.Int64()))
		return err
	case opcode.CLEAR:
		es.Clear()
	case opcode.DUP:
		i, err := es.Peek(0)
		if err != nil {
			return err
		}
		es.Push(i)
	case opcode.OVER:
		i, err := es.Peek(1)
		if err != nil {
			return err
		}
		es.Push(i)
	case opcode.PICK:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		i, err := es.Peek(int(n.Int64()))
		if err != nil {
			return err
		}
		es.Push(i)
	case opcode.TUCK:
		i, err := es.Peek(0)
		if err != nil {
			return err
		}
		return es.InsertAt(i, 2)
	case opcode.SWAP:
		return swapN(es, 1)
	case opcode.ROT:
		return rollN(es, 2)
	case opcode.ROLL:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		return rollN(es, int(n.Int64()))
	case opcode.REVERSE3:
		return reverseN(es, 3)
	case opcode.REVERSE4:
		return reverseN(es, 4)
	case opcode.REVERSEN:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		return reverseN(es, int(n.Int64()))

	case opcode.INITSSLOT:
		return ctx.initStatic(int(operand[0]), v.refs)
	case opcode.INITSLOT:
		return ctx.initLocalsAndArgs(int(operand[0]), int(operand[1]), nil, es)
	case opcode.LDSFLD0, opcode.LDSFLD:
		idx := slotIndex(op, opcode.LDSFLD0, operand)
		i, err := ctx.static.Get(idx)
		if err != nil {
			return err
		}
		es.Push(i)
	case opcode.STSFLD0, opcode.STSFLD:
		idx := slotIndex(op, opcode.STSFLD0, operand)
		i, err := es.Pop()
		if err != nil {
			return err
		}
		return ctx.static.Set(idx, i)
	case opcode.LDLOC0, opcode.LDLOC:
		idx := slotIndex(op, opcode.LDLOC0, operand)
		i, err := ctx.local.Get(idx)
		if err != nil {
			return err
		}
		es.Push(i)
	case opcode.STLOC0, opcode.STLOC:
		idx := slotIndex(op, opcode.STLOC0, operand)
		i, err := es.Pop()
		if err != nil {
			return err
		}
		return ctx.local.Set(idx, i)
	case opcode.LDARG0, opcode.LDARG:
		idx := slotIndex(op, opcode.LDARG0, operand)
		i, err := ctx.args.Get(idx)
		if err != nil {
			return err
		}
		es.Push(i)
	case opcode.STARG0, opcode.STARG:
		idx := slotIndex(op, opcode.STARG0, operand)
		i, err := es.Pop()
		if err != nil {
			return err
		}
		return ctx.args.Set(idx, i)

	case opcode.NEWBUFFER:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		if n.Sign() < 0 || n.Int64() > stackitem.MaxItemSize {
			return ErrInvalidOpcode
		}
		es.Push(stackitem.NewBuffer(make([]byte, n.Int64())))
	case opcode.MEMCPY:
		return memcpy(es)
	case opcode.CAT:
		b, err := popBytes(es)
		if err != nil {
			return err
		}
		a, err := popBytes(es)
		if err != nil {
			return err
		}
		if len(a)+len(b) > stackitem.MaxItemSize {
			return stackitem.ErrTooBig
		}
		es.Push(stackitem.NewByteArray(append(append([]byte{}, a...), b...)))
	case opcode.SUBSTR:
		return substr(es)
	case opcode.LEFT:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		b, err := popBytes(es)
		if err != nil {
			return err
		}
		ln := int(n.Int64())
		if ln < 0 || ln > len(b) {
			return ErrInvalidOpcode
		}
		es.Push(stackitem.NewByteArray(b[:ln]))
	case opcode.RIGHT:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		b, err := popBytes(es)
		if err != nil {
			return err
		}
		ln := int(n.Int64())
		if ln < 0 || ln > len(b) {
			return ErrInvalidOpcode
		}
		es.Push(stackitem.NewByteArray(b[len(b)-ln:]))

	case opcode.INVERT:
		i, err := popInt(es)
		if err != nil {
			return err
		}
		return pushInt(es, new(big.Int).Not(i))
	case opcode.AND:
		return binInt(es, func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) })
	case opcode.OR:
		return binInt(es, func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) })
	case opcode.XOR:
		return binInt(es, func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) })
	case opcode.EQUAL:
		b, err := es.Pop()
		if err != nil {
			return err
		}
		a, err := es.Pop()
		if err != nil {
			return err
		}
		pushBool(es, a.Equals(b))
	case opcode.NOTEQUAL:
		b, err := es.Pop()
		if err != nil {
			return err
		}
		a, err := es.Pop()
		if err != nil {
			return err
		}
		pushBool(es, !a.Equals(b))

	case opcode.SIGN:
		i, err := popInt(es)
		if err != nil {
			return err
		}
		es.Push(stackitem.Make(int64(i.Sign())))
	case opcode.ABS:
		i, err := popInt(es)
		if err != nil {
			return err
		}
		return pushInt(es, new(big.Int).Abs(i))
	case opcode.NEGATE:
		i, err := popInt(es)
		if err != nil {
			return err
		}
		return pushInt(es, new(big.Int).Neg(i))
	case opcode.INC:
		i, err := popInt(es)
		if err != nil {
			return err
		}
		return pushInt(es, new(big.Int).Add(i, big.NewInt(1)))
	case opcode.DEC:
		i, err := popInt(es)
		if err != nil {
			return err
		}
		return pushInt(es, new(big.Int).Sub(i, big.NewInt(1)))
	case opcode.ADD:
		return binInt(es, func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) })
	case opcode.SUB:
		return binInt(es, func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) })
	case opcode.MUL:
		return binInt(es, func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) })
	case opcode.DIV:
		return binIntErr(es, func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, ErrDivideByZero
			}
			return new(big.Int).Quo(a, b), nil
		})
	case opcode.MOD:
		return binIntErr(es, func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, ErrDivideByZero
			}
			return new(big.Int).Rem(a, b), nil
		})
	case opcode.POW:
		e, err := popInt(es)
		if err != nil {
			return err
		}
		b, err := popInt(es)
		if err != nil {
			return err
		}
		if e.Sign() < 0 || !e.IsInt64() {
			return ErrInvalidOpcode
		}
		return pushInt(es, new(big.Int).Exp(b, e, nil))
	case opcode.SQRT:
		i, err := popInt(es)
		if err != nil {
			return err
		}
		if i.Sign() < 0 {
			return ErrInvalidOpcode
		}
		return pushInt(es, new(big.Int).Sqrt(i))
	case opcode.MODMUL:
		m, err := popInt(es)
		if err != nil {
			return err
		}
		b, err := popInt(es)
		if err != nil {
			return err
		}
		a, err := popInt(es)
		if err != nil {
			return err
		}
		if m.Sign() == 0 {
			return ErrDivideByZero
		}
		r := new(big.Int).Mod(new(big.Int).Mul(a, b), m)
		return pushInt(es, r)
	case opcode.MODPOW:
		m, err := popInt(es)
		if err != nil {
			return err
		}
		e, err := popInt(es)
		if err != nil {
			return err
		}
		b, err := popInt(es)
		if err != nil {
			return err
		}
		if m.Sign() == 0 {
			return ErrDivideByZero
		}
		return pushInt(es, new(big.Int).Exp(b, e, m))
	case opcode.SHL:
		return shift(es, true)
	case opcode.SHR:
		return shift(es, false)
	case opcode.NOT:
		b, err := popBoolOp(es)
		if err != nil {
			return err
		}
		pushBool(es, !b)
	case opcode.BOOLAND:
		b, err := popBoolOp(es)
		if err != nil {
			return err
		}
		a, err := popBoolOp(es)
		if err != nil {
			return err
		}
		pushBool(es, a && b)
	case opcode.BOOLOR:
		b, err := popBoolOp(es)
		if err != nil {
			return err
		}
		a, err := popBoolOp(es)
		if err != nil {
			return err
		}
		pushBool(es, a || b)
	case opcode.NZ:
		i, err := popInt(es)
		if err != nil {
			return err
		}
		pushBool(es, i.Sign() != 0)
	case opcode.NUMEQUAL:
		return cmpInt(es, func(c int) bool { return c == 0 })
	case opcode.NUMNOTEQUAL:
		return cmpInt(es, func(c int) bool { return c != 0 })
	case opcode.LT:
		return cmpInt(es, func(c int) bool { return c < 0 })
	case opcode.LE:
		return cmpInt(es, func(c int) bool { return c <= 0 })
	case opcode.GT:
		return cmpInt(es, func(c int) bool { return c > 0 })
	case opcode.GE:
		return cmpInt(es, func(c int) bool { return c >= 0 })
	case opcode.MIN:
		return binInt(es, func(a, b *big.Int) *big.Int {
			if a.Cmp(b) < 0 {
				return a
			}
			return b
		})
	case opcode.MAX:
		return binInt(es, func(a, b *big.Int) *big.Int {
			if a.Cmp(b) > 0 {
				return a
			}
			return b
		})
	case opcode.WITHIN:
		b, err := popInt(es)
		if err != nil {
			return err
		}
		a, err := popInt(es)
		if err != nil {
			return err
		}
		x, err := popInt(es)
		if err != nil {
			return err
		}
		pushBool(es, x.Cmp(a) >= 0 && x.Cmp(b) < 0)

	case opcode.PACKMAP:
		return packMap(es)
	case opcode.PACKSTRUCT:
		return pack(es, true)
	case opcode.PACK:
		return pack(es, false)
	case opcode.UNPACK:
		return unpack(es)
	case opcode.NEWARRAY0:
		es.Push(stackitem.NewArray(nil))
	case opcode.NEWARRAY, opcode.NEWARRAYT:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		if n.Sign() < 0 || n.Int64() > stackitem.MaxArraySize {
			return ErrInvalidOpcode
		}
		items := make([]stackitem.Item, n.Int64())
		for i := range items {
			items[i] = stackitem.Null{}
		}
		es.Push(stackitem.NewArray(items))
	case opcode.NEWSTRUCT0:
		es.Push(stackitem.NewStructItem(nil))
	case opcode.NEWSTRUCT:
		n, err := popInt(es)
		if err != nil {
			return err
		}
		if n.Sign() < 0 || n.Int64() > stackitem.MaxArraySize {
			return ErrInvalidOpcode
		}
		items := make([]stackitem.Item, n.Int64())
		for i := range items {
			items[i] = stackitem.Null{}
		}
		es.Push(stackitem.NewStructItem(items))
	case opcode.NEWMAP:
		es.Push(stackitem.NewMap())
	case opcode.SIZE:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		switch v := i.(type) {
		case *stackitem.Array:
			es.Push(stackitem.Make(int64(v.Len())))
		case *stackitem.Struct:
			es.Push(stackitem.Make(int64(v.Len())))
		case *stackitem.Map:
			es.Push(stackitem.Make(int64(v.Len())))
		default:
			b, err := i.TryBytes()
			if err != nil {
				return err
			}
			es.Push(stackitem.Make(int64(len(b))))
		}
	case opcode.HASKEY:
		k, err := es.Pop()
		if err != nil {
			return err
		}
		i, err := es.Pop()
		if err != nil {
			return err
		}
		switch v := i.(type) {
		case *stackitem.Map:
			pushBool(es, v.Has(k))
		case *stackitem.Array:
			n, err := k.TryInteger()
			if err != nil {
				return err
			}
			idx := n.Int64()
			pushBool(es, idx >= 0 && idx < int64(v.Len()))
		default:
			return ErrInvalidOpcode
		}
	case opcode.KEYS:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		m, ok := i.(*stackitem.Map)
		if !ok {
			return ErrInvalidOpcode
		}
		es.Push(stackitem.NewArray(m.Keys()))
	case opcode.VALUES:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		switch v := i.(type) {
		case *stackitem.Map:
			vals := v.Values()
			out := make([]stackitem.Item, len(vals))
			for j, it := range vals {
				out[j] = it.Dup()
			}
			es.Push(stackitem.NewArray(out))
		case *stackitem.Array:
			out := make([]stackitem.Item, v.Len())
			for j := 0; j < v.Len(); j++ {
				out[j] = v.At(j).Dup()
			}
			es.Push(stackitem.NewArray(out))
		default:
			return ErrInvalidOpcode
		}
	case opcode.PICKITEM:
		return pickItem(es)
	case opcode.APPEND:
		v, err := es.Pop()
		if err != nil {
			return err
		}
		i, err := es.Pop()
		if err != nil {
			return err
		}
		switch arr := i.(type) {
		case *stackitem.Array:
			if err := arr.Append(v); err != nil {
				return err
			}
			es.refs.AddContainerRef(v)
		case *stackitem.Struct:
			return ErrInvalidOpcode
		default:
			return ErrInvalidOpcode
		}
	case opcode.SETITEM:
		return setItem(es)
	case opcode.REVERSEITEMS:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		switch v := i.(type) {
		case *stackitem.Array:
			v.Reverse()
		case *stackitem.Struct:
		default:
			return ErrInvalidOpcode
		}
	case opcode.REMOVE:
		k, err := es.Pop()
		if err != nil {
			return err
		}
		i, err := es.Pop()
		if err != nil {
			return err
		}
		switch v := i.(type) {
		case *stackitem.Array:
			n, err := k.TryInteger()
			if err != nil {
				return err
			}
			idx := int(n.Int64())
			if idx < 0 || idx >= v.Len() {
				return ErrInvalidOpcode
			}
			removed := v.At(idx)
			v.Remove(idx)
			es.refs.RemoveContainerRef(removed)
		case *stackitem.Map:
			if v.Has(k) {
				old := v.Get(k)
				v.Delete(k)
				es.refs.RemoveContainerRef(k)
				es.refs.RemoveContainerRef(old)
			}
		default:
			return ErrInvalidOpcode
		}
	case opcode.CLEARITEMS:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		if v, ok := i.(*stackitem.Array); ok {
			for v.Len() > 0 {
				removed := v.At(0)
				v.Remove(0)
				es.refs.RemoveContainerRef(removed)
			}
		}
	case opcode.POPITEM:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		v, ok := i.(*stackitem.Array)
		if !ok {
			return ErrInvalidOpcode
		}
		last := v.At(v.Len() - 1)
		v.Remove(v.Len() - 1)
		es.refs.RemoveContainerRef(last)
		es.Push(last)

	case opcode.ISNULL:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		pushBool(es, stackitem.IsNull(i))
	case opcode.ISTYPE:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		pushBool(es, i.Type() == stackitem.Type(operand[0]))
	case opcode.CONVERT:
		i, err := es.Pop()
		if err != nil {
			return err
		}
		r, err := stackitem.Convert(i, stackitem.Type(operand[0]))
		if err != nil {
			return err
		}
		es.Push(r)

	default:
		return ErrInvalidOpcode
	}
	return nil
}
