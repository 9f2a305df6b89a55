package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/n3core/node/pkg/vm/opcode"
)

// Script is an immutable sequence of bytecode plus the decoded jump-target
// validity cache the engine consults before every branch.
type Script struct {
	value   []byte
	starts  map[int]bool // valid instruction-boundary offsets
}

// NewScript wraps raw bytecode and precomputes instruction boundaries up to
// the first malformed instruction; that instruction's decoding error is
// reported when execution reaches it, faulting the VM.
func NewScript(b []byte) (*Script, error) {
	s := &Script{value: b, starts: make(map[int]bool)}
	ip := 0
	for ip < len(b) {
		s.starts[ip] = true
		_, _, next, err := s.decodeAt(ip)
		if err != nil {
			break
		}
		ip = next
	}
	return s, nil
}

// Len returns the script length in bytes.
func (s *Script) Len() int { return len(s.value) }

// Bytes returns the raw script bytes.
func (s *Script) Bytes() []byte { return s.value }

// IsValidTarget reports whether ip lands on a decoded instruction boundary.
func (s *Script) IsValidTarget(ip int) bool {
	if ip == len(s.value) {
		return true // RET past the end is valid (implicit return)
	}
	return s.starts[ip]
}

// decodeAt decodes the instruction at ip, returning its opcode, operand
// bytes, and the offset of the following instruction.
func (s *Script) decodeAt(ip int) (opcode.Opcode, []byte, int, error) {
	if ip < 0 || ip >= len(s.value) {
		return 0, nil, 0, fmt.Errorf("%w: offset %d out of range", ErrInvalidJump, ip)
	}
	op := opcode.Opcode(s.value[ip])
	size := opcode.OperandSizeOf(op)
	next := ip + 1
	switch {
	case size.PrefixSize > 0:
		if next+size.PrefixSize > len(s.value) {
			return 0, nil, 0, fmt.Errorf("%w: truncated operand prefix at %d", ErrInvalidOpcode, ip)
		}
		var n int
		switch size.PrefixSize {
		case 1:
			n = int(s.value[next])
		case 2:
			n = int(binary.LittleEndian.Uint16(s.value[next : next+2]))
		case 4:
			n = int(binary.LittleEndian.Uint32(s.value[next : next+4]))
		}
		next += size.PrefixSize
		if next+n > len(s.value) {
			return 0, nil, 0, fmt.Errorf("%w: truncated operand data at %d", ErrInvalidOpcode, ip)
		}
		operand := s.value[next : next+n]
		return op, operand, next + n, nil
	case size.Fixed > 0:
		if next+size.Fixed > len(s.value) {
			return 0, nil, 0, fmt.Errorf("%w: truncated fixed operand at %d", ErrInvalidOpcode, ip)
		}
		operand := s.value[next : next+size.Fixed]
		return op, operand, next + size.Fixed, nil
	default:
		return op, nil, next, nil
	}
}

// InstructionAt decodes the instruction at ip for the engine's fetch step.
func (s *Script) InstructionAt(ip int) (opcode.Opcode, []byte, int, error) {
	return s.decodeAt(ip)
}
