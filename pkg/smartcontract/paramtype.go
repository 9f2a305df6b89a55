// Package smartcontract holds the ABI-level vocabulary shared by the NEF,
// manifest, and native-contract method tables.
package smartcontract

import "fmt"

// ParamType identifies the ABI type of a contract method parameter or
// return value.
type ParamType byte

// The reference manifest parameter types.
const (
	AnyType ParamType = iota
	BoolType
	IntegerType
	ByteArrayType
	StringType
	Hash160Type
	Hash256Type
	PublicKeyType
	SignatureType
	ArrayType
	MapType
	InteropInterfaceType
	VoidType ParamType = 0xff
)

// String implements fmt.Stringer, matching the manifest's lowercase-camel
// JSON spelling for each type.
func (pt ParamType) String() string {
	switch pt {
	case AnyType:
		return "Any"
	case BoolType:
		return "Boolean"
	case IntegerType:
		return "Integer"
	case ByteArrayType:
		return "ByteArray"
	case StringType:
		return "String"
	case Hash160Type:
		return "Hash160"
	case Hash256Type:
		return "Hash256"
	case PublicKeyType:
		return "PublicKey"
	case SignatureType:
		return "Signature"
	case ArrayType:
		return "Array"
	case MapType:
		return "Map"
	case InteropInterfaceType:
		return "InteropInterface"
	case VoidType:
		return "Void"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(pt))
	}
}

// MarshalJSON implements json.Marshaler.
func (pt ParamType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + pt.String() + `"`), nil
}
