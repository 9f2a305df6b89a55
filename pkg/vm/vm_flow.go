package vm

import (
	"fmt"

	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// throwSignal carries a THROWn stack item through Go's error-return
// unwinding so a CATCH block receives the original item, not a stringified
// message.
type throwSignal struct{ item stackitem.Item }

func (t *throwSignal) Error() string { return fmt.Sprintf("uncaught exception: %s", t.item.String()) }

func newThrow(i stackitem.Item) error { return &throwSignal{item: i} }

// opStart returns the offset of the instruction that produced operand,
// given the engine's already-advanced pc.
func opStart(pc int, operand []byte) int {
	return pc - 1 - len(operand)
}

func sbyte(b []byte) int32 { return int32(int8(b[0])) }

func (v *VM) jump(ctx *Context, op opcode.Opcode, operand []byte, cond bool) error {
	if !cond {
		return nil
	}
	start := opStart(ctx.pc, operand)
	var off int32
	if len(operand) == 1 {
		off = sbyte(operand)
	} else {
		off = int32(le32(operand))
	}
	target := start + int(off)
	if !ctx.script.IsValidTarget(target) {
		return ErrInvalidJump
	}
	ctx.pc = target
	return nil
}

func (v *VM) jumpCompare(ctx *Context, op opcode.Opcode, operand []byte) error {
	b, err := popInt(v.estack)
	if err != nil {
		return err
	}
	a, err := popInt(v.estack)
	if err != nil {
		return err
	}
	c := a.Cmp(b)
	var cond bool
	switch op {
	case opcode.JMPEQ, opcode.JMPEQL:
		cond = c == 0
	case opcode.JMPNE, opcode.JMPNEL:
		cond = c != 0
	case opcode.JMPGT, opcode.JMPGTL:
		cond = c > 0
	case opcode.JMPGE, opcode.JMPGEL:
		cond = c >= 0
	case opcode.JMPLT, opcode.JMPLTL:
		cond = c < 0
	case opcode.JMPLE, opcode.JMPLEL:
		cond = c <= 0
	}
	return v.jump(ctx, op, operand, cond)
}

func (v *VM) call(ctx *Context, op opcode.Opcode, operand []byte) error {
	start := opStart(ctx.pc, operand)
	var off int32
	if len(operand) == 1 {
		off = sbyte(operand)
	} else {
		off = int32(le32(operand))
	}
	return v.callTo(start + int(off))
}

// callTo pushes a new invocation context over the currently executing
// script, starting at target (CALL/CALLL/CALLA all stay within one
// script; cross-contract calls are mediated by the embedding interop
// layer, not this opcode).
func (v *VM) callTo(target int) error {
	cur := v.Context()
	if cur == nil {
		return ErrNotExecuting
	}
	if !cur.script.IsValidTarget(target) {
		return ErrInvalidJump
	}
	if len(v.istack) >= MaxInvocationStackSize {
		return ErrStackTooDeep
	}
	nc := NewContext(cur.script, cur.scriptHash, cur.callFlags)
	nc.pc = target
	v.istack = append(v.istack, nc)
	return nil
}

// ret pops the current context. When the invocation stack empties the VM
// halts; otherwise execution resumes in the caller at its saved pc.
func (v *VM) ret() error {
	ctx := v.Context()
	v.istack = v.istack[:len(v.istack)-1]
	ctx.releaseSlots()
	if v.OnUnload != nil {
		v.OnUnload(ctx, false)
	}
	if len(v.istack) == 0 {
		v.state = HaltState
	}
	return nil
}

func (v *VM) try(ctx *Context, op opcode.Opcode, operand []byte) error {
	var catchOff, finallyOff int32
	if op == opcode.TRY {
		catchOff, finallyOff = sbyte(operand[0:1]), sbyte(operand[1:2])
	} else {
		catchOff = int32(le32(operand[0:4]))
		finallyOff = int32(le32(operand[4:8]))
	}
	start := opStart(ctx.pc, operand)
	tb := tryBlock{}
	if catchOff != 0 {
		tb.hasCatch = true
		tb.catchPos = start + int(catchOff)
	}
	if finallyOff != 0 {
		tb.hasFinally = true
		tb.finallyPos = start + int(finallyOff)
	}
	return ctx.pushTry(tb)
}

func (v *VM) endTry(ctx *Context, op opcode.Opcode, operand []byte) error {
	tb, ok := ctx.currentTry()
	if !ok {
		return ErrInvalidOpcode
	}
	start := opStart(ctx.pc, operand)
	var off int32
	if op == opcode.ENDTRY {
		off = sbyte(operand)
	} else {
		off = int32(le32(operand))
	}
	target := start + int(off)
	if tb.hasFinally {
		endPos := tb.endPos
		if endPos == 0 {
			endPos = target
		}
		tb.endPos = endPos
		tb.hasFinally = false
		ctx.pc = tb.finallyPos
		return nil
	}
	ctx.popTry()
	if !ctx.script.IsValidTarget(target) {
		return ErrInvalidJump
	}
	ctx.pc = target
	return nil
}
