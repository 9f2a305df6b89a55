package emit

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/vm/opcode"
)

func emitted(t *testing.T, f func(w *io.BinWriter)) []byte {
	w := io.NewBufBinWriter()
	f(w.BinWriter)
	require.NoError(t, w.Err)
	return w.Bytes()
}

func TestEmitInt(t *testing.T) {
	// Small ints use the PUSH0..PUSH16 range.
	b := emitted(t, func(w *io.BinWriter) { Int(w, 0) })
	assert.Equal(t, []byte{byte(opcode.PUSH0)}, b)

	b = emitted(t, func(w *io.BinWriter) { Int(w, 16) })
	assert.Equal(t, []byte{byte(opcode.PUSH16)}, b)

	b = emitted(t, func(w *io.BinWriter) { Int(w, -1) })
	assert.Equal(t, []byte{byte(opcode.PUSHM1)}, b)

	// Larger values spill into PUSHINT8/16/...
	b = emitted(t, func(w *io.BinWriter) { Int(w, 100) })
	assert.Equal(t, byte(opcode.PUSHINT8), b[0])

	b = emitted(t, func(w *io.BinWriter) { Int(w, 1000) })
	assert.Equal(t, byte(opcode.PUSHINT16), b[0])
}

func TestEmitBool(t *testing.T) {
	b := emitted(t, func(w *io.BinWriter) { Bool(w, true) })
	assert.Equal(t, []byte{byte(opcode.PUSHT)}, b)
	b = emitted(t, func(w *io.BinWriter) { Bool(w, false) })
	assert.Equal(t, []byte{byte(opcode.PUSHF)}, b)
}

func TestEmitBytes(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	b := emitted(t, func(w *io.BinWriter) { Bytes(w, payload) })
	assert.Equal(t, byte(opcode.PUSHDATA1), b[0])
	assert.Equal(t, byte(3), b[1])
	assert.Equal(t, payload, b[2:])
}

func TestEmitBigInt(t *testing.T) {
	b := emitted(t, func(w *io.BinWriter) { BigInt(w, big.NewInt(5)) })
	assert.Equal(t, []byte{byte(opcode.PUSHINT8), 0x05}, b)

	b = emitted(t, func(w *io.BinWriter) { BigInt(w, big.NewInt(-2)) })
	assert.Equal(t, []byte{byte(opcode.PUSHINT8), 0xfe}, b)
}

func TestEmitSyscall(t *testing.T) {
	b := emitted(t, func(w *io.BinWriter) { Syscall(w, 0xdeadbeef) })
	require.Len(t, b, 5)
	assert.Equal(t, byte(opcode.SYSCALL), b[0])
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, b[1:])
}
