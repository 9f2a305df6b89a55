package vm

import (
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// tryBlock records one nested TRY/CATCH/FINALLY frame.
type tryBlock struct {
	catchPos   int
	finallyPos int
	hasCatch   bool
	hasFinally bool
	endPos     int
}

// Context is one frame of the invocation stack: a script plus its
// instruction pointer and local/static/argument slots. The evaluation stack itself is shared across every
// context in a VM, matching the reference engine.
type Context struct {
	script *Script
	pc     int

	static *Slot
	local  *Slot
	args   *Slot

	tryStack []tryBlock

	// scriptHash is the Hash160 of script, cached for CallingScriptHash/
	// ExecutingScriptHash interop handlers.
	scriptHash util.Uint160
	// callFlags are the permissions this frame was invoked with.
	callFlags byte
}

// NewContext creates a new context over script, starting at offset 0.
func NewContext(script *Script, scriptHash util.Uint160, callFlags byte) *Context {
	return &Context{script: script, scriptHash: scriptHash, callFlags: callFlags}
}

// Script returns the context's script.
func (c *Context) Script() *Script { return c.script }

// IP returns the current instruction pointer.
func (c *Context) IP() int { return c.pc }

// ScriptHash returns the Hash160 of the executing script.
func (c *Context) ScriptHash() util.Uint160 { return c.scriptHash }

// CallFlags returns the permissions this frame runs under.
func (c *Context) CallFlags() byte { return c.callFlags }

// initStatic allocates the static slot (INITSSLOT); it fails if the slot is
// already allocated.
func (c *Context) initStatic(n int, refs *stackitem.RefCounter) error {
	if c.static != nil {
		return ErrSlotNotInit
	}
	c.static = NewSlot(n, refs)
	return nil
}

// initLocalsAndArgs allocates the local/argument slots for INITSLOT. When
// args is nil (the in-script INITSLOT case), argument values are popped off
// the shared evaluation stack instead, matching the reference convention
// that a caller pushes its arguments before CALLing into a method whose
// first instruction is INITSLOT. The last-pushed
// value fills argument slot 0.
func (c *Context) initLocalsAndArgs(nLocal, nArgs int, args []stackitem.Item, es *Stack) error {
	c.local = NewSlot(nLocal, es.refs)
	c.args = NewSlot(nArgs, es.refs)
	if args != nil {
		for i := 0; i < nArgs && i < len(args); i++ {
			_ = c.args.Set(i, args[i])
		}
		return nil
	}
	for i := 0; i < nArgs; i++ {
		v, err := es.Pop()
		if err != nil {
			return err
		}
		_ = c.args.Set(i, v)
	}
	return nil
}

// pushTry pushes a new TRY frame.
func (c *Context) pushTry(tb tryBlock) error {
	if len(c.tryStack) >= MaxTryNestingDepth {
		return ErrStackTooDeep
	}
	c.tryStack = append(c.tryStack, tb)
	return nil
}

// currentTry returns the innermost TRY frame, if any.
func (c *Context) currentTry() (*tryBlock, bool) {
	if len(c.tryStack) == 0 {
		return nil, false
	}
	return &c.tryStack[len(c.tryStack)-1], true
}

// popTry removes the innermost TRY frame.
func (c *Context) popTry() {
	if len(c.tryStack) > 0 {
		c.tryStack = c.tryStack[:len(c.tryStack)-1]
	}
}

// releaseSlots drops the external references held by the context's slots,
// called when the context leaves the invocation stack.
func (c *Context) releaseSlots() {
	c.static.clearRefs()
	c.local.clearRefs()
	c.args.clearRefs()
}
