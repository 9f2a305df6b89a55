package stackitem

import (
	"fmt"
	"math/big"
)

// Array is the Array compound item: shared by reference, re-taggable to
// Struct via CONVERT.
type Array struct {
	value []Item
}

// NewArray creates a new Array item from the given elements.
func NewArray(items []Item) *Array {
	return &Array{value: items}
}

// Type implements Item.
func (*Array) Type() Type { return ArrayT }

// Value implements Item.
func (a *Array) Value() interface{} { return a.value }

// Dup implements Item. Array duplication is a reference copy: Dup returns
// a itself (compound items are shared by reference).
func (a *Array) Dup() Item { return a }

// Bool implements Item.
func (*Array) Bool() bool { return true }

// TryBool implements Item.
func (a *Array) TryBool() (bool, error) { return true, nil }

// TryBytes implements Item.
func (*Array) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Array has no byte form", ErrInvalidCast)
}

// TryInteger implements Item.
func (*Array) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Array is not numeric", ErrInvalidCast)
}

// Equals implements Item: Array equality is by reference.
func (a *Array) Equals(other Item) bool {
	o, ok := other.(*Array)
	return ok && o == a
}

// String implements Item.
func (*Array) String() string { return "Array" }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.value) }

// Append appends an item, enforcing MaxArraySize.
func (a *Array) Append(i Item) error {
	if len(a.value) >= MaxArraySize {
		return ErrTooBig
	}
	a.value = append(a.value, i)
	return nil
}

// At returns the element at index i.
func (a *Array) At(i int) Item { return a.value[i] }

// SetAt overwrites the element at index i.
func (a *Array) SetAt(i int, v Item) { a.value[i] = v }

// Remove deletes the element at index i, preserving order.
func (a *Array) Remove(i int) {
	a.value = append(a.value[:i], a.value[i+1:]...)
}

// Reverse reverses the elements in place.
func (a *Array) Reverse() {
	for i, j := 0, len(a.value)-1; i < j; i, j = i+1, j-1 {
		a.value[i], a.value[j] = a.value[j], a.value[i]
	}
}

// Struct is the Struct compound item: deep-equal, otherwise identical to
// Array.
type Struct struct {
	value []Item
}

// NewStructItem creates a new Struct item.
func NewStructItem(items []Item) *Struct {
	return &Struct{value: items}
}

// Type implements Item.
func (*Struct) Type() Type { return StructT }

// Value implements Item.
func (s *Struct) Value() interface{} { return s.value }

// Dup implements Item. A Struct clones deeply by calling Dup on every
// field, with no nesting-depth limit, matching the reference's copy
// semantics for value-like structs.
func (s *Struct) Dup() Item {
	cp := make([]Item, len(s.value))
	for i, v := range s.value {
		cp[i] = v.Dup()
	}
	return &Struct{value: cp}
}

// Bool implements Item.
func (*Struct) Bool() bool { return true }

// TryBool implements Item.
func (s *Struct) TryBool() (bool, error) { return true, nil }

// TryBytes implements Item.
func (*Struct) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Struct has no byte form", ErrInvalidCast)
}

// TryInteger implements Item.
func (*Struct) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Struct is not numeric", ErrInvalidCast)
}

// Equals implements Item: deep, element-wise equality.
func (s *Struct) Equals(other Item) bool {
	o, ok := other.(*Struct)
	if !ok || len(o.value) != len(s.value) {
		return false
	}
	for i := range s.value {
		if !s.value[i].Equals(o.value[i]) {
			return false
		}
	}
	return true
}

// String implements Item.
func (*Struct) String() string { return "Struct" }

// Len returns the number of fields.
func (s *Struct) Len() int { return len(s.value) }

// At returns the field at index i.
func (s *Struct) At(i int) Item { return s.value[i] }

// SetAt overwrites the field at index i.
func (s *Struct) SetAt(i int, v Item) { s.value[i] = v }

// MapElement is a single insertion-ordered Map entry.
type MapElement struct {
	Key   Item
	Value Item
}

// Map is the insertion-ordered Map compound item.
type Map struct {
	elems []MapElement
	index map[string]int
}

// NewMap creates a new empty Map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// Type implements Item.
func (*Map) Type() Type { return MapT }

// Value implements Item.
func (m *Map) Value() interface{} { return m.elems }

// Dup implements Item: compound items are shared by reference.
func (m *Map) Dup() Item { return m }

// Bool implements Item.
func (*Map) Bool() bool { return true }

// TryBool implements Item.
func (m *Map) TryBool() (bool, error) { return true, nil }

// TryBytes implements Item.
func (*Map) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Map has no byte form", ErrInvalidCast)
}

// TryInteger implements Item.
func (*Map) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Map is not numeric", ErrInvalidCast)
}

// Equals implements Item: Map equality is by reference.
func (m *Map) Equals(other Item) bool {
	o, ok := other.(*Map)
	return ok && o == m
}

// String implements Item.
func (*Map) String() string { return "Map" }

// mapKey returns a comparable key for a stack item usable as a Map key;
// only primitive item types may be keys.
func mapKey(i Item) (string, error) {
	b, err := i.TryBytes()
	if err != nil {
		return "", fmt.Errorf("unsuitable map key: %w", err)
	}
	if len(b) > MaxKeySize {
		return "", ErrTooBig
	}
	return string(i.Type()) + string(b), nil
}

// Has reports whether key is present.
func (m *Map) Has(key Item) bool {
	k, err := mapKey(key)
	if err != nil {
		return false
	}
	_, ok := m.index[k]
	return ok
}

// Get returns the value for key, or nil if absent.
func (m *Map) Get(key Item) Item {
	k, err := mapKey(key)
	if err != nil {
		return nil
	}
	if i, ok := m.index[k]; ok {
		return m.elems[i].Value
	}
	return nil
}

// Set inserts or overwrites key -> value, enforcing MaxArraySize entries.
func (m *Map) Set(key, value Item) error {
	k, err := mapKey(key)
	if err != nil {
		return err
	}
	if i, ok := m.index[k]; ok {
		m.elems[i].Value = value
		return nil
	}
	if len(m.elems) >= MaxArraySize {
		return ErrTooBig
	}
	m.index[k] = len(m.elems)
	m.elems = append(m.elems, MapElement{Key: key, Value: value})
	return nil
}

// Delete removes key, if present.
func (m *Map) Delete(key Item) {
	k, err := mapKey(key)
	if err != nil {
		return
	}
	i, ok := m.index[k]
	if !ok {
		return
	}
	m.elems = append(m.elems[:i], m.elems[i+1:]...)
	delete(m.index, k)
	for j := i; j < len(m.elems); j++ {
		nk, _ := mapKey(m.elems[j].Key)
		m.index[nk] = j
	}
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.elems) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []Item {
	out := make([]Item, len(m.elems))
	for i, e := range m.elems {
		out[i] = e.Key
	}
	return out
}

// Values returns the values in insertion order.
func (m *Map) Values() []Item {
	out := make([]Item, len(m.elems))
	for i, e := range m.elems {
		out[i] = e.Value
	}
	return out
}

// Interop wraps an arbitrary host-side value (e.g. *state.StorageContext,
// *Iterator) so it can travel on the evaluation stack.
type Interop struct {
	value interface{}
}

// NewInterop creates a new InteropInterface item.
func NewInterop(v interface{}) *Interop {
	return &Interop{value: v}
}

// Type implements Item.
func (*Interop) Type() Type { return InteropT }

// Value implements Item.
func (i *Interop) Value() interface{} { return i.value }

// Dup implements Item.
func (i *Interop) Dup() Item { return i }

// Bool implements Item.
func (*Interop) Bool() bool { return true }

// TryBool implements Item.
func (i *Interop) TryBool() (bool, error) { return true, nil }

// TryBytes implements Item.
func (*Interop) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: InteropInterface has no byte form", ErrInvalidCast)
}

// TryInteger implements Item.
func (*Interop) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: InteropInterface is not numeric", ErrInvalidCast)
}

// Equals implements Item: reference equality.
func (i *Interop) Equals(other Item) bool {
	o, ok := other.(*Interop)
	return ok && o == i
}

// String implements Item.
func (*Interop) String() string { return "InteropInterface" }

// Pointer is a CALL target produced by PUSHA and consumed by CALLA; it
// carries a script position.
type Pointer struct {
	pos    int
	script []byte
}

// NewPointer creates a new Pointer item referring to pos within script.
func NewPointer(pos int, script []byte) *Pointer {
	return &Pointer{pos: pos, script: script}
}

// Type implements Item.
func (*Pointer) Type() Type { return PointerT }

// Value implements Item.
func (p *Pointer) Value() interface{} { return p.pos }

// Dup implements Item.
func (p *Pointer) Dup() Item { return p }

// Bool implements Item.
func (*Pointer) Bool() bool { return true }

// TryBool implements Item.
func (p *Pointer) TryBool() (bool, error) { return true, nil }

// TryBytes implements Item.
func (*Pointer) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Pointer has no byte form", ErrInvalidCast)
}

// TryInteger implements Item.
func (*Pointer) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Pointer is not numeric", ErrInvalidCast)
}

// Equals implements Item: reference equality.
func (p *Pointer) Equals(other Item) bool {
	o, ok := other.(*Pointer)
	return ok && o == p
}

// String implements Item.
func (*Pointer) String() string { return "Pointer" }

// Position returns the script offset this pointer refers to.
func (p *Pointer) Position() int { return p.pos }
