package vm

import (
	"encoding/binary"
	"math/big"

	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

func le32(b []byte) uint32 {
	var buf [4]byte
	copy(buf[:], b)
	return binary.LittleEndian.Uint32(buf[:])
}

// bytesToSignedInt decodes a little-endian two's complement integer
// operand (PUSHINT8..PUSHINT256 payloads).
func bytesToSignedInt(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	if len(be) == 0 {
		return big.NewInt(0)
	}
	v := new(big.Int).SetBytes(be)
	if be[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(be)*8))
		v.Sub(v, mod)
	}
	return v
}

func popBoolOp(s *Stack) (bool, error) {
	i, err := s.Pop()
	if err != nil {
		return false, err
	}
	return i.Bool(), nil
}

func binInt(s *Stack, f func(a, b *big.Int) *big.Int) error {
	b, err := popInt(s)
	if err != nil {
		return err
	}
	a, err := popInt(s)
	if err != nil {
		return err
	}
	return pushInt(s, f(a, b))
}

func binIntErr(s *Stack, f func(a, b *big.Int) (*big.Int, error)) error {
	b, err := popInt(s)
	if err != nil {
		return err
	}
	a, err := popInt(s)
	if err != nil {
		return err
	}
	r, err := f(a, b)
	if err != nil {
		return err
	}
	return pushInt(s, r)
}

func cmpInt(s *Stack, f func(c int) bool) error {
	b, err := popInt(s)
	if err != nil {
		return err
	}
	a, err := popInt(s)
	if err != nil {
		return err
	}
	pushBool(s, f(a.Cmp(b)))
	return nil
}

func shift(s *Stack, left bool) error {
	n, err := popInt(s)
	if err != nil {
		return err
	}
	v, err := popInt(s)
	if err != nil {
		return err
	}
	shiftAmt := n.Int64()
	if shiftAmt < 0 || shiftAmt > stackitem.MaxBigIntegerSizeBits {
		return ErrShiftTooLarge
	}
	var r *big.Int
	if left {
		r = new(big.Int).Lsh(v, uint(shiftAmt))
	} else {
		r = new(big.Int).Rsh(v, uint(shiftAmt))
	}
	return pushInt(s, r)
}

func swapN(s *Stack, n int) error {
	a, err := s.RemoveAt(n)
	if err != nil {
		return err
	}
	return s.InsertAt(a, 0)
}

// rollN moves the item n deep to the top of the stack.
func rollN(s *Stack, n int) error {
	i, err := s.RemoveAt(n)
	if err != nil {
		return err
	}
	s.Push(i)
	return nil
}

func reverseN(s *Stack, n int) error {
	if n <= 1 {
		return nil
	}
	items := make([]stackitem.Item, n)
	for i := 0; i < n; i++ {
		it, err := s.RemoveAt(0)
		if err != nil {
			return err
		}
		items[i] = it
	}
	for _, it := range items {
		if err := s.InsertAt(it, 0); err != nil {
			return err
		}
	}
	return nil
}

// slotIndex resolves the slot index encoded either implicitly by the _0
// opcode (index 0, no operand) or explicitly by the generic form's
// single-byte operand.
func slotIndex(op, base opcode.Opcode, operand []byte) int {
	if op == base {
		return 0
	}
	return int(operand[0])
}
