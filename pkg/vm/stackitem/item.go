package stackitem

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidCast is returned by Convert when the requested conversion
// would lose information.
var ErrInvalidCast = errors.New("invalid cast")

// ErrTooBig is returned when an item would exceed a configured limit.
var ErrTooBig = errors.New("item is too big")

// Item is the common interface every stack item implements.
type Item interface {
	// Type returns the item's runtime type tag.
	Type() Type
	// Value returns the Go-native value backing this item (big.Int,
	// bool, []byte, []Item, etc.) for interop marshaling.
	Value() interface{}
	// Dup returns the item as VALUES copies it: a Struct is cloned deeply,
	// a Buffer is copied, and every other item returns itself.
	Dup() Item
	// Bool converts the item to a VM boolean (per CONVERT/NZ rules).
	Bool() bool
	// TryBytes converts the item to a byte slice, failing for types that
	// have no canonical byte representation (compound items, Interop).
	TryBytes() ([]byte, error)
	// TryBool is an explicit convenience alias kept for symmetry with
	// TryBytes/TryInteger call sites in interop handlers.
	TryBool() (bool, error)
	// TryInteger converts the item to a big.Int, failing on overflow of
	// MaxBigIntegerSizeBits or on non-numeric types.
	TryInteger() (*big.Int, error)
	// Equals implements deep equality for Struct and ByteString/Integer/
	// Boolean, and reference equality for Array/Map/Buffer/InteropInterface.
	Equals(Item) bool
	// String returns the type name (matches the reference's debug output).
	String() string
}

// Null represents the VM's null/none value.
type Null struct{}

// Type implements Item.
func (Null) Type() Type { return AnyT }

// Value implements Item.
func (Null) Value() interface{} { return nil }

// Dup implements Item.
func (n Null) Dup() Item { return n }

// Bool implements Item.
func (Null) Bool() bool { return false }

// TryBytes implements Item.
func (Null) TryBytes() ([]byte, error) { return nil, fmt.Errorf("%w: Null has no byte form", ErrInvalidCast) }

// TryBool implements Item.
func (n Null) TryBool() (bool, error) { return n.Bool(), nil }

// TryInteger implements Item.
func (Null) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Null is not numeric", ErrInvalidCast)
}

// Equals implements Item.
func (Null) Equals(other Item) bool {
	_, ok := other.(Null)
	return ok
}

// String implements Item.
func (Null) String() string { return "Null" }

// IsNull reports whether an item is the Null value (helper for CheckWitness-
// style call sites that accept `stackitem.Item` directly).
func IsNull(i Item) bool {
	_, ok := i.(Null)
	return ok
}
