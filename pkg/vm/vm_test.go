package vm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

func load(t *testing.T, script []byte) *VM {
	v := NewVM(0)
	require.NoError(t, v.LoadScript(script, util.Uint160{}, 0x0f))
	return v
}

func runScript(t *testing.T, script []byte) *VM {
	v := load(t, script)
	_ = v.Run()
	return v
}

func popBigInt(t *testing.T, v *VM) *big.Int {
	item, err := v.Estack().Pop()
	require.NoError(t, err)
	n, err := item.TryInteger()
	require.NoError(t, err)
	return n
}

func TestPushAdd(t *testing.T) {
	v := runScript(t, []byte{byte(opcode.PUSH2), byte(opcode.PUSH3), byte(opcode.ADD)})
	require.Equal(t, HaltState, v.State())
	require.Equal(t, 1, v.Estack().Len())
	assert.Equal(t, int64(5), popBigInt(t, v).Int64())
}

func TestArithmetic(t *testing.T) {
	testCases := []struct {
		name     string
		script   []byte
		expected int64
	}{
		{"sub", []byte{byte(opcode.PUSH7), byte(opcode.PUSH3), byte(opcode.SUB)}, 4},
		{"mul", []byte{byte(opcode.PUSH4), byte(opcode.PUSH5), byte(opcode.MUL)}, 20},
		{"div", []byte{byte(opcode.PUSH9), byte(opcode.PUSH2), byte(opcode.DIV)}, 4},
		{"mod", []byte{byte(opcode.PUSH9), byte(opcode.PUSH4), byte(opcode.MOD)}, 1},
		{"min", []byte{byte(opcode.PUSH9), byte(opcode.PUSH4), byte(opcode.MIN)}, 4},
		{"max", []byte{byte(opcode.PUSH9), byte(opcode.PUSH4), byte(opcode.MAX)}, 9},
		{"negate", []byte{byte(opcode.PUSH3), byte(opcode.NEGATE)}, -3},
		{"inc", []byte{byte(opcode.PUSH3), byte(opcode.INC)}, 4},
		{"pow", []byte{byte(opcode.PUSH2), byte(opcode.PUSH8), byte(opcode.POW)}, 256},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := runScript(t, tc.script)
			require.Equal(t, HaltState, v.State())
			assert.Equal(t, tc.expected, popBigInt(t, v).Int64())
		})
	}
}

func TestDivisionByZeroFaults(t *testing.T) {
	v := runScript(t, []byte{byte(opcode.PUSH1), byte(opcode.PUSH0), byte(opcode.DIV)})
	assert.Equal(t, FaultState, v.State())
	assert.Error(t, v.FaultException())
}

func TestStackManipulation(t *testing.T) {
	// 1 2 SWAP -> [2 1], top = 1
	v := runScript(t, []byte{byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.SWAP)})
	require.Equal(t, HaltState, v.State())
	assert.Equal(t, int64(1), popBigInt(t, v).Int64())

	// 1 2 DROP -> [1]
	v = runScript(t, []byte{byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.DROP)})
	require.Equal(t, HaltState, v.State())
	require.Equal(t, 1, v.Estack().Len())
	assert.Equal(t, int64(1), popBigInt(t, v).Int64())

	// 1 2 OVER -> [1 2 1]
	v = runScript(t, []byte{byte(opcode.PUSH1), byte(opcode.PUSH2), byte(opcode.OVER)})
	require.Equal(t, HaltState, v.State())
	require.Equal(t, 3, v.Estack().Len())
	assert.Equal(t, int64(1), popBigInt(t, v).Int64())

	// DEPTH on three items.
	v = runScript(t, []byte{byte(opcode.PUSH1), byte(opcode.PUSH1), byte(opcode.PUSH1), byte(opcode.DEPTH)})
	require.Equal(t, HaltState, v.State())
	assert.Equal(t, int64(3), popBigInt(t, v).Int64())
}

func TestStackUnderflowFaults(t *testing.T) {
	v := runScript(t, []byte{byte(opcode.ADD)})
	assert.Equal(t, FaultState, v.State())
}

func TestJMPUnconditional(t *testing.T) {
	// JMP +3 skips PUSH2; only PUSH3 executes.
	v := runScript(t, []byte{
		byte(opcode.JMP), 0x03,
		byte(opcode.PUSH2),
		byte(opcode.PUSH3),
	})
	require.Equal(t, HaltState, v.State())
	require.Equal(t, 1, v.Estack().Len())
	assert.Equal(t, int64(3), popBigInt(t, v).Int64())
}

func TestJMPIF(t *testing.T) {
	// True condition takes the branch.
	v := runScript(t, []byte{
		byte(opcode.PUSH1),
		byte(opcode.JMPIF), 0x03,
		byte(opcode.PUSH2),
		byte(opcode.PUSH3),
	})
	require.Equal(t, HaltState, v.State())
	require.Equal(t, 1, v.Estack().Len())
	assert.Equal(t, int64(3), popBigInt(t, v).Int64())

	// False condition falls through.
	v = runScript(t, []byte{
		byte(opcode.PUSH0),
		byte(opcode.JMPIF), 0x03,
		byte(opcode.PUSH2),
		byte(opcode.PUSH3),
	})
	require.Equal(t, HaltState, v.State())
	require.Equal(t, 2, v.Estack().Len())
}

func TestJMPIntoOperandFaults(t *testing.T) {
	// Target lands in the middle of the PUSHDATA1 operand.
	v := runScript(t, []byte{
		byte(opcode.JMP), 0x03,
		byte(opcode.PUSHDATA1), 0x02, 0xaa, 0xbb,
	})
	assert.Equal(t, FaultState, v.State())
}

func TestCALLAndRET(t *testing.T) {
	// CALL +4 -> PUSH5 RET; the result lands on the shared stack.
	v := runScript(t, []byte{
		byte(opcode.CALL), 0x04,
		byte(opcode.PUSH1),
		byte(opcode.RET),
		byte(opcode.PUSH5),
		byte(opcode.RET),
	})
	require.Equal(t, HaltState, v.State())
	require.Equal(t, 2, v.Estack().Len())
	assert.Equal(t, int64(1), popBigInt(t, v).Int64())
	assert.Equal(t, int64(5), popBigInt(t, v).Int64())
}

func TestThrowUncaughtFaults(t *testing.T) {
	v := runScript(t, []byte{byte(opcode.PUSH1), byte(opcode.THROW)})
	assert.Equal(t, FaultState, v.State())
	assert.Error(t, v.FaultException())
}

func TestTryCatch(t *testing.T) {
	// TRY(catch=+5) PUSH1 THROW; catch: PUSH2.
	v := runScript(t, []byte{
		byte(opcode.TRY), 0x05, 0x00,
		byte(opcode.PUSH1),
		byte(opcode.THROW),
		byte(opcode.PUSH2),
	})
	require.Equal(t, HaltState, v.State())
	require.Equal(t, 2, v.Estack().Len())
	assert.Equal(t, int64(2), popBigInt(t, v).Int64())
	// The thrown item is on the stack beneath the catch block's work.
	assert.Equal(t, int64(1), popBigInt(t, v).Int64())
}

func TestTryCatchRuntimeFault(t *testing.T) {
	// A division by zero inside TRY is caught like THROW.
	v := runScript(t, []byte{
		byte(opcode.TRY), 0x07, 0x00,
		byte(opcode.PUSH1),
		byte(opcode.PUSH0),
		byte(opcode.DIV),
		byte(opcode.RET),
		byte(opcode.PUSH9),
	})
	require.Equal(t, HaltState, v.State())
	assert.Equal(t, int64(9), popBigInt(t, v).Int64())
}

func TestGasExhaustion(t *testing.T) {
	// JMP 0 loops forever; a metered run must fault with ErrOutOfGas.
	v := NewVM(100)
	v.GetPrice = func(opcode.Opcode, *Context) int64 { return 1 }
	require.NoError(t, v.LoadScript([]byte{byte(opcode.JMP), 0x00}, util.Uint160{}, 0x0f))
	_ = v.Run()
	assert.Equal(t, FaultState, v.State())
	assert.ErrorIs(t, v.FaultException(), ErrOutOfGas)
	assert.Greater(t, v.GasConsumed(), int64(100))
}

func TestEqualAndNumEqual(t *testing.T) {
	v := runScript(t, []byte{byte(opcode.PUSH3), byte(opcode.PUSH3), byte(opcode.NUMEQUAL)})
	require.Equal(t, HaltState, v.State())
	item, err := v.Estack().Pop()
	require.NoError(t, err)
	b, err := item.TryBool()
	require.NoError(t, err)
	assert.True(t, b)
}

func TestCompoundArray(t *testing.T) {
	// NEWARRAY0, PUSH5 APPEND, SIZE -> 1
	v := runScript(t, []byte{
		byte(opcode.NEWARRAY0),
		byte(opcode.DUP),
		byte(opcode.PUSH5),
		byte(opcode.APPEND),
		byte(opcode.SIZE),
	})
	require.Equal(t, HaltState, v.State())
	assert.Equal(t, int64(1), popBigInt(t, v).Int64())
}

func TestPickItem(t *testing.T) {
	// PACK takes the top item first: [8, 7][1] == 7
	v := runScript(t, []byte{
		byte(opcode.PUSH7),
		byte(opcode.PUSH8),
		byte(opcode.PUSH2),
		byte(opcode.PACK),
		byte(opcode.PUSH1),
		byte(opcode.PICKITEM),
	})
	require.Equal(t, HaltState, v.State())
	assert.Equal(t, int64(7), popBigInt(t, v).Int64())
}

func TestIsNull(t *testing.T) {
	v := runScript(t, []byte{byte(opcode.PUSHNULL), byte(opcode.ISNULL)})
	require.Equal(t, HaltState, v.State())
	item, err := v.Estack().Pop()
	require.NoError(t, err)
	b, err := item.TryBool()
	require.NoError(t, err)
	assert.True(t, b)
}

func TestConvertArrayToStruct(t *testing.T) {
	v := runScript(t, []byte{
		byte(opcode.PUSH1),
		byte(opcode.PUSH1),
		byte(opcode.PACK),
		byte(opcode.CONVERT), byte(stackitem.StructT),
	})
	require.Equal(t, HaltState, v.State())
	item, err := v.Estack().Pop()
	require.NoError(t, err)
	assert.Equal(t, stackitem.StructT, item.Type())
}

func TestPushData(t *testing.T) {
	v := runScript(t, []byte{byte(opcode.PUSHDATA1), 0x03, 0x01, 0x02, 0x03})
	require.Equal(t, HaltState, v.State())
	item, err := v.Estack().Pop()
	require.NoError(t, err)
	b, err := item.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, b)
}

func TestPushDataTruncatedFaults(t *testing.T) {
	v := runScript(t, []byte{byte(opcode.PUSHDATA1), 0x05, 0x01})
	assert.Equal(t, FaultState, v.State())
}

func TestCat(t *testing.T) {
	v := runScript(t, []byte{
		byte(opcode.PUSHDATA1), 0x02, 'a', 'b',
		byte(opcode.PUSHDATA1), 0x01, 'c',
		byte(opcode.CAT),
	})
	require.Equal(t, HaltState, v.State())
	item, err := v.Estack().Pop()
	require.NoError(t, err)
	b, err := item.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
}

func TestSubstr(t *testing.T) {
	v := runScript(t, []byte{
		byte(opcode.PUSHDATA1), 0x05, 'h', 'e', 'l', 'l', 'o',
		byte(opcode.PUSH1),
		byte(opcode.PUSH3),
		byte(opcode.SUBSTR),
	})
	require.Equal(t, HaltState, v.State())
	item, err := v.Estack().Pop()
	require.NoError(t, err)
	b, err := item.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("ell"), b)
}

func TestHaltLeavesOnlyReachableRefs(t *testing.T) {
	// Building and dropping a compound leaves nothing tracked; what stays
	// on the result stack is exactly what the counter still holds.
	v := runScript(t, []byte{
		byte(opcode.NEWARRAY0),
		byte(opcode.DUP),
		byte(opcode.PUSH1),
		byte(opcode.APPEND),
		byte(opcode.DROP),
		byte(opcode.PUSH2),
		byte(opcode.PUSH3),
	})
	require.Equal(t, HaltState, v.State())
	assert.Equal(t, 0, v.refs.Tracked())
	assert.Equal(t, 2, v.refs.Size())
	assert.Equal(t, 2, v.Estack().Len())
}

func TestUnreachableCycleCollected(t *testing.T) {
	// An array appended to itself and then dropped is a pure cycle: no
	// stack root, alive only through its own container edge.
	v := runScript(t, []byte{
		byte(opcode.NEWARRAY0),
		byte(opcode.DUP),
		byte(opcode.DUP),
		byte(opcode.APPEND),
		byte(opcode.DROP),
	})
	require.Equal(t, HaltState, v.State())
	assert.Equal(t, 0, v.refs.Size())
	assert.Equal(t, 0, v.refs.Tracked())
}

func TestSlotRefsReleasedOnReturn(t *testing.T) {
	// INITSLOT stores an array into a local; returning drops the slot's
	// reference so nothing survives the run.
	v := runScript(t, []byte{
		byte(opcode.INITSLOT), 0x01, 0x00,
		byte(opcode.NEWARRAY0),
		byte(opcode.STLOC0),
		byte(opcode.RET),
	})
	require.Equal(t, HaltState, v.State())
	assert.Equal(t, 0, v.refs.Size())
	assert.Equal(t, 0, v.refs.Tracked())
}

func TestStackSizeCountsNestedItems(t *testing.T) {
	// Two 1024-element arrays occupy two eval-stack slots but 2050
	// references, which must breach MaxStackSize (2048).
	v := runScript(t, []byte{
		byte(opcode.PUSHINT16), 0x00, 0x04,
		byte(opcode.NEWARRAY),
		byte(opcode.PUSHINT16), 0x00, 0x04,
		byte(opcode.NEWARRAY),
	})
	assert.Equal(t, FaultState, v.State())
	assert.ErrorIs(t, v.FaultException(), ErrStackTooBig)
}

func TestNewArrayBoundsOperand(t *testing.T) {
	// NEWARRAY beyond MaxArraySize is rejected before allocation.
	v := runScript(t, []byte{
		byte(opcode.PUSHINT16), 0x01, 0x04, // 1025
		byte(opcode.NEWARRAY),
	})
	assert.Equal(t, FaultState, v.State())
}
