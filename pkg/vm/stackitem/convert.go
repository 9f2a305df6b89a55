package stackitem

import "fmt"

// Convert implements the VM's CONVERT opcode conversion rules:
// Boolean<->Integer via 0/1, Integer<->ByteString via minimal two's
// complement, ByteString->Buffer copies, Array<->Struct re-tag sharing
// items, and anything to Map (or Map to anything but Map or Boolean) is
// InvalidCast.
func Convert(i Item, t Type) (Item, error) {
	if i.Type() == t {
		return i, nil
	}
	switch t {
	case BooleanT:
		return NewBool(i.Bool()), nil
	case IntegerT:
		bi, err := i.TryInteger()
		if err != nil {
			return nil, err
		}
		r := NewBigInteger(bi)
		if r == nil {
			return nil, fmt.Errorf("%w: integer overflow on convert", ErrInvalidCast)
		}
		return r, nil
	case ByteStringT:
		switch v := i.(type) {
		case *Buffer:
			return NewByteArray(v.value), nil
		default:
			b, err := i.TryBytes()
			if err != nil {
				return nil, err
			}
			return NewByteArray(b), nil
		}
	case BufferT:
		b, err := i.TryBytes()
		if err != nil {
			return nil, err
		}
		return NewBuffer(b), nil
	case ArrayT:
		switch v := i.(type) {
		case *Struct:
			return NewArray(v.value), nil
		default:
			return nil, fmt.Errorf("%w: cannot convert %s to Array", ErrInvalidCast, i.Type())
		}
	case StructT:
		switch v := i.(type) {
		case *Array:
			return NewStructItem(v.value), nil
		default:
			return nil, fmt.Errorf("%w: cannot convert %s to Struct", ErrInvalidCast, i.Type())
		}
	case AnyT:
		if _, ok := i.(Null); ok {
			return i, nil
		}
		return nil, fmt.Errorf("%w: cannot convert to Any", ErrInvalidCast)
	default:
		return nil, fmt.Errorf("%w: cannot convert %s to %s", ErrInvalidCast, i.Type(), t)
	}
}
