// Package emit provides script-builder helpers used by native contracts,
// tests, and tooling to assemble VM bytecode without hand-encoding opcodes
// (grounded on the reference node's pkg/vm/emit).
package emit

import (
	"encoding/binary"
	"math/big"

	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/vm/opcode"
)

// Opcode appends a bare opcode (no operand) to w.
func Opcode(w *io.BinWriter, op opcode.Opcode) {
	w.WriteB(byte(op))
}

// Instruction appends an opcode followed by a raw operand.
func Instruction(w *io.BinWriter, op opcode.Opcode, operand []byte) {
	w.WriteB(byte(op))
	if len(operand) > 0 {
		w.WriteBytes(operand)
	}
}

// Bytes emits the shortest PUSHDATA instruction for b.
func Bytes(w *io.BinWriter, b []byte) {
	n := len(b)
	switch {
	case n < 0x100:
		Opcode(w, opcode.PUSHDATA1)
		w.WriteB(byte(n))
	case n < 0x10000:
		Opcode(w, opcode.PUSHDATA2)
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(n))
		w.WriteBytes(buf[:])
	default:
		Opcode(w, opcode.PUSHDATA4)
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(n))
		w.WriteBytes(buf[:])
	}
	w.WriteBytes(b)
}

// String emits b's UTF-8 bytes as a PUSHDATA.
func String(w *io.BinWriter, s string) {
	Bytes(w, []byte(s))
}

// Bool emits PUSHT/PUSHF.
func Bool(w *io.BinWriter, b bool) {
	if b {
		Opcode(w, opcode.PUSHT)
	} else {
		Opcode(w, opcode.PUSHF)
	}
}

// Int emits the shortest PUSH instruction for n: PUSHM1/PUSH0-16 for small
// values, otherwise PUSHINT8..PUSHINT256 with a minimal two's-complement
// little-endian operand.
func Int(w *io.BinWriter, n int64) {
	switch {
	case n == -1:
		Opcode(w, opcode.PUSHM1)
		return
	case n >= 0 && n <= 16:
		Opcode(w, opcode.Opcode(byte(opcode.PUSH0)+byte(n)))
		return
	}
	BigInt(w, big.NewInt(n))
}

// BigInt emits a PUSHINT8..PUSHINT256 instruction for n.
func BigInt(w *io.BinWriter, n *big.Int) {
	b := toMinimalTwosComplement(n)
	op, size := sizeFor(len(b))
	padded := make([]byte, size)
	copy(padded, b)
	if n.Sign() < 0 {
		for i := len(b); i < size; i++ {
			padded[i] = 0xff
		}
	}
	Opcode(w, op)
	w.WriteBytes(padded)
}

func sizeFor(n int) (opcode.Opcode, int) {
	switch {
	case n <= 1:
		return opcode.PUSHINT8, 1
	case n <= 2:
		return opcode.PUSHINT16, 2
	case n <= 4:
		return opcode.PUSHINT32, 4
	case n <= 8:
		return opcode.PUSHINT64, 8
	case n <= 16:
		return opcode.PUSHINT128, 16
	default:
		return opcode.PUSHINT256, 32
	}
}

func toMinimalTwosComplement(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{}
	}
	bitLen := v.BitLen()
	nBytes := bitLen/8 + 1
	buf := make([]byte, nBytes)
	if v.Sign() > 0 {
		b := v.Bytes()
		copy(buf[nBytes-len(b):], b)
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
		return buf
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))
	twos := new(big.Int).Add(mod, v)
	b := twos.Bytes()
	copy(buf[nBytes-len(b):], b)
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// Syscall emits a SYSCALL instruction for the given 4-byte interop id.
func Syscall(w *io.BinWriter, id uint32) {
	Opcode(w, opcode.SYSCALL)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], id)
	w.WriteBytes(buf[:])
}

// Call emits a CALLL to a fixed script-relative offset.
func Call(w *io.BinWriter, offset int32) {
	Opcode(w, opcode.CALLL)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(offset))
	w.WriteBytes(buf[:])
}

// ArrayLen emits PUSH n followed by PACK, which packs the top n stack items
// into an Array.
func ArrayLen(w *io.BinWriter, n int) {
	Int(w, int64(n))
	Opcode(w, opcode.PACK)
}
