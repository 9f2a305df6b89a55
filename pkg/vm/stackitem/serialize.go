package stackitem

import (
	"errors"
	"fmt"

	"github.com/n3core/node/pkg/io"
)

// ErrUnserializable is returned when an item has no binary encoding
// (InteropInterface, Pointer) or a decoded type tag is unknown. JSON
// conversion failures use ErrInvalidCast instead.
var ErrUnserializable = errors.New("item is not serializable")

// EncodeBinaryStackItem writes the compact binary encoding of i.
func EncodeBinaryStackItem(i Item, w *io.BinWriter) {
	if w.Err != nil {
		return
	}
	switch v := i.(type) {
	case Null:
		w.WriteB(byte(AnyT))
	case *Bool:
		w.WriteB(byte(BooleanT))
		w.WriteBool(v.value)
	case *BigInteger:
		w.WriteB(byte(IntegerT))
		b := minimalTwosComplement(v.value)
		w.WriteVarBytes(b)
	case *ByteString:
		w.WriteB(byte(ByteStringT))
		w.WriteVarBytes(v.value)
	case *Buffer:
		w.WriteB(byte(BufferT))
		w.WriteVarBytes(v.value)
	case *Array:
		w.WriteB(byte(ArrayT))
		w.WriteVarUint(uint64(len(v.value)))
		for _, e := range v.value {
			EncodeBinaryStackItem(e, w)
		}
	case *Struct:
		w.WriteB(byte(StructT))
		w.WriteVarUint(uint64(len(v.value)))
		for _, e := range v.value {
			EncodeBinaryStackItem(e, w)
		}
	case *Map:
		w.WriteB(byte(MapT))
		w.WriteVarUint(uint64(len(v.elems)))
		for _, e := range v.elems {
			EncodeBinaryStackItem(e.Key, w)
			EncodeBinaryStackItem(e.Value, w)
		}
	default:
		w.Err = fmt.Errorf("%w: %T", ErrUnserializable, i)
	}
}

// DecodeBinaryStackItem reads an item encoded by EncodeBinaryStackItem.
func DecodeBinaryStackItem(r *io.BinReader) Item {
	if r.Err != nil {
		return nil
	}
	t := Type(r.ReadB())
	switch t {
	case AnyT:
		return Null{}
	case BooleanT:
		return NewBool(r.ReadBool())
	case IntegerT:
		b := r.ReadVarBytes(MaxBigIntegerSizeBits/8 + 1)
		if r.Err != nil {
			return nil
		}
		return NewBigInteger(bigFromTwosComplement(b))
	case ByteStringT:
		return NewByteArray(r.ReadVarBytes(MaxItemSize))
	case BufferT:
		return NewBuffer(r.ReadVarBytes(MaxItemSize))
	case ArrayT, StructT:
		n := r.ReadVarUint()
		if r.Err != nil {
			return nil
		}
		if n > MaxArraySize {
			r.Err = ErrTooBig
			return nil
		}
		items := make([]Item, n)
		for i := range items {
			items[i] = DecodeBinaryStackItem(r)
			if r.Err != nil {
				return nil
			}
		}
		if t == ArrayT {
			return NewArray(items)
		}
		return NewStructItem(items)
	case MapT:
		n := r.ReadVarUint()
		if r.Err != nil {
			return nil
		}
		if n > MaxArraySize {
			r.Err = ErrTooBig
			return nil
		}
		m := NewMap()
		for i := uint64(0); i < n; i++ {
			k := DecodeBinaryStackItem(r)
			v := DecodeBinaryStackItem(r)
			if r.Err != nil {
				return nil
			}
			if err := m.Set(k, v); err != nil {
				r.Err = err
				return nil
			}
		}
		return m
	default:
		r.Err = fmt.Errorf("%w: unknown type tag %x", ErrUnserializable, byte(t))
		return nil
	}
}

// SerializeItem is a convenience helper returning the binary encoding as a
// byte slice, matching the interop name used in notification validation
// (Runtime.Notify requires its payload to be serializable).
func SerializeItem(i Item) ([]byte, error) {
	w := io.NewBufBinWriter()
	EncodeBinaryStackItem(i, w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// DeserializeItem is the inverse of SerializeItem.
func DeserializeItem(b []byte) (Item, error) {
	r := io.NewBinReaderFromBuf(b)
	i := DecodeBinaryStackItem(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return i, nil
}

