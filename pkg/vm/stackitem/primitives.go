package stackitem

import (
	"fmt"
	"math/big"
)

// Bool is the Boolean stack item.
type Bool struct{ value bool }

// NewBool creates a new Boolean item.
func NewBool(b bool) *Bool { return &Bool{value: b} }

// Type implements Item.
func (*Bool) Type() Type { return BooleanT }

// Value implements Item.
func (b *Bool) Value() interface{} { return b.value }

// Dup implements Item.
func (b *Bool) Dup() Item { return b }

// Bool implements Item.
func (b *Bool) Bool() bool { return b.value }

// TryBool implements Item.
func (b *Bool) TryBool() (bool, error) { return b.value, nil }

// TryBytes implements Item.
func (b *Bool) TryBytes() ([]byte, error) {
	if b.value {
		return []byte{1}, nil
	}
	return []byte{}, nil
}

// TryInteger implements Item.
func (b *Bool) TryInteger() (*big.Int, error) {
	if b.value {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}

// Equals implements Item.
func (b *Bool) Equals(other Item) bool {
	o, ok := other.(*Bool)
	return ok && o.value == b.value
}

// String implements Item.
func (*Bool) String() string { return "Boolean" }

// BigInteger is the Integer stack item, arbitrary-precision two's
// complement, bounded by MaxBigIntegerSizeBits.
type BigInteger struct{ value *big.Int }

// NewBigInteger creates a new Integer item, failing (returning nil) if the
// value overflows MaxBigIntegerSizeBits.
func NewBigInteger(v *big.Int) *BigInteger {
	if v.BitLen() > MaxBigIntegerSizeBits {
		return nil
	}
	return &BigInteger{value: new(big.Int).Set(v)}
}

// Make is a convenience constructor from an int64.
func Make(v int64) *BigInteger {
	return &BigInteger{value: big.NewInt(v)}
}

// Type implements Item.
func (*BigInteger) Type() Type { return IntegerT }

// Value implements Item.
func (b *BigInteger) Value() interface{} { return b.value }

// Dup implements Item.
func (b *BigInteger) Dup() Item { return b }

// Bool implements Item.
func (b *BigInteger) Bool() bool { return b.value.Sign() != 0 }

// TryBool implements Item.
func (b *BigInteger) TryBool() (bool, error) { return b.Bool(), nil }

// TryBytes implements Item.
func (b *BigInteger) TryBytes() ([]byte, error) {
	return minimalTwosComplement(b.value), nil
}

// TryInteger implements Item.
func (b *BigInteger) TryInteger() (*big.Int, error) {
	return new(big.Int).Set(b.value), nil
}

// Equals implements Item.
func (b *BigInteger) Equals(other Item) bool {
	o, ok := other.(*BigInteger)
	return ok && o.value.Cmp(b.value) == 0
}

// String implements Item.
func (*BigInteger) String() string { return "Integer" }

// ByteString is the immutable ByteString stack item.
type ByteString struct{ value []byte }

// NewByteArray creates a new ByteString item (named to match the
// reference's interop call sites, e.g. stackitem.NewByteArray).
func NewByteArray(b []byte) *ByteString {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &ByteString{value: cp}
}

// Type implements Item.
func (*ByteString) Type() Type { return ByteStringT }

// Value implements Item.
func (b *ByteString) Value() interface{} { return b.value }

// Dup implements Item.
func (b *ByteString) Dup() Item { return b }

// Bool implements Item.
func (b *ByteString) Bool() bool {
	for _, v := range b.value {
		if v != 0 {
			return true
		}
	}
	return false
}

// TryBool implements Item.
func (b *ByteString) TryBool() (bool, error) { return b.Bool(), nil }

// TryBytes implements Item.
func (b *ByteString) TryBytes() ([]byte, error) {
	cp := make([]byte, len(b.value))
	copy(cp, b.value)
	return cp, nil
}

// TryInteger implements Item.
func (b *ByteString) TryInteger() (*big.Int, error) {
	if len(b.value) > MaxBigIntegerSizeBits/8 {
		return nil, fmt.Errorf("%w: byte string too long for integer", ErrInvalidCast)
	}
	return bigFromTwosComplement(b.value), nil
}

// Equals implements Item.
func (b *ByteString) Equals(other Item) bool {
	o, ok := other.(*ByteString)
	if !ok || len(o.value) != len(b.value) {
		return false
	}
	for i := range b.value {
		if b.value[i] != o.value[i] {
			return false
		}
	}
	return true
}

// String implements Item.
func (*ByteString) String() string { return "ByteString" }

// Buffer is the mutable Buffer stack item.
type Buffer struct{ value []byte }

// NewBuffer creates a new mutable Buffer item.
func NewBuffer(b []byte) *Buffer {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Buffer{value: cp}
}

// Type implements Item.
func (*Buffer) Type() Type { return BufferT }

// Value implements Item.
func (b *Buffer) Value() interface{} { return b.value }

// Dup implements Item.
func (b *Buffer) Dup() Item {
	return NewBuffer(b.value)
}

// Bool implements Item.
func (b *Buffer) Bool() bool {
	for _, v := range b.value {
		if v != 0 {
			return true
		}
	}
	return false
}

// TryBool implements Item.
func (b *Buffer) TryBool() (bool, error) { return b.Bool(), nil }

// TryBytes implements Item.
func (b *Buffer) TryBytes() ([]byte, error) {
	cp := make([]byte, len(b.value))
	copy(cp, b.value)
	return cp, nil
}

// TryInteger implements Item.
func (b *Buffer) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Buffer is not convertible to Integer", ErrInvalidCast)
}

// Equals implements Item.
func (b *Buffer) Equals(other Item) bool { return other == Item(b) }

// String implements Item.
func (*Buffer) String() string { return "Buffer" }

// Set overwrites a single byte at index i (used by VM SETITEM on Buffers).
func (b *Buffer) Set(i int, v byte) { b.value[i] = v }

// minimalTwosComplement encodes v as the shortest little-endian two's
// complement byte string that round-trips.
func minimalTwosComplement(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{}
	}
	bitLen := v.BitLen()
	nBytes := bitLen/8 + 1
	buf := make([]byte, nBytes)
	if v.Sign() > 0 {
		b := v.Bytes()
		for i, c := range b {
			buf[len(buf)-len(b)+i] = c
		}
		// reverse to little-endian
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
		// nBytes already leaves exactly one bit of room for the sign.
		return buf
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))
	twos := new(big.Int).Add(mod, v)
	b := twos.Bytes()
	for i, c := range b {
		buf[len(buf)-len(b)+i] = c
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	// trim redundant 0xFF bytes while keeping the sign bit set
	for len(buf) > 1 && buf[len(buf)-1] == 0xff && buf[len(buf)-2]&0x80 != 0 {
		buf = buf[:len(buf)-1]
	}
	return buf
}

// bigFromTwosComplement decodes a little-endian two's complement byte
// string into a big.Int.
func bigFromTwosComplement(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-i-1] = v
	}
	neg := be[0]&0x80 != 0
	if !neg {
		return new(big.Int).SetBytes(be)
	}
	v := new(big.Int).SetBytes(be)
	mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
	v.Sub(v, mod)
	return v
}
