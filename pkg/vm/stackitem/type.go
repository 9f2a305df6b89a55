// Package stackitem implements the VM's tagged stack-item sum type: Null, Boolean, Integer, ByteString, Buffer, Array,
// Struct, Map, InteropInterface and Pointer, plus the reference-counting
// machinery needed to detect and free unreachable compound-item cycles.
package stackitem

// Type identifies a stack item's runtime tag.
type Type byte

// Stack item type tags, numbered as in the reference node's wire/JSON
// encodings.
const (
	AnyT        Type = 0x00
	PointerT    Type = 0x10
	BooleanT    Type = 0x20
	IntegerT    Type = 0x21
	ByteStringT Type = 0x28
	BufferT     Type = 0x30
	ArrayT      Type = 0x40
	StructT     Type = 0x41
	MapT        Type = 0x48
	InteropT    Type = 0x60
)

// String returns the human-readable type name used by diagnostics and the
// reference's json/debug output.
func (t Type) String() string {
	switch t {
	case AnyT:
		return "Any"
	case PointerT:
		return "Pointer"
	case BooleanT:
		return "Boolean"
	case IntegerT:
		return "Integer"
	case ByteStringT:
		return "ByteString"
	case BufferT:
		return "Buffer"
	case ArrayT:
		return "Array"
	case StructT:
		return "Struct"
	case MapT:
		return "Map"
	case InteropT:
		return "InteropInterface"
	default:
		return "Invalid"
	}
}

// IsValid reports whether t is one of the defined stack item type tags,
// AnyT included.
func (t Type) IsValid() bool {
	switch t {
	case BooleanT, IntegerT, ByteStringT, BufferT, ArrayT, StructT, MapT, InteropT, PointerT, AnyT:
		return true
	default:
		return false
	}
}
