package vm

import "github.com/n3core/node/pkg/vm/stackitem"

// Slot is a fixed-size array of stack items backing INITSLOT-declared
// locals, arguments, and statics. Unset entries read as
// stackitem.Null, matching the reference node. Slot entries count as
// external references, exactly like evaluation-stack entries.
type Slot struct {
	items []stackitem.Item
	refs  *stackitem.RefCounter
}

// NewSlot creates a slot of size n, every entry initialized to Null.
func NewSlot(n int, refs *stackitem.RefCounter) *Slot {
	items := make([]stackitem.Item, n)
	for i := range items {
		items[i] = stackitem.Null{}
		if refs != nil {
			refs.AddStackRef(items[i])
		}
	}
	return &Slot{items: items, refs: refs}
}

// Size returns the number of entries in the slot.
func (s *Slot) Size() int { return len(s.items) }

// Get returns the item at index i.
func (s *Slot) Get(i int) (stackitem.Item, error) {
	if s == nil || i < 0 || i >= len(s.items) {
		return nil, ErrInvalidSlotIndex
	}
	return s.items[i], nil
}

// Set overwrites the item at index i.
func (s *Slot) Set(i int, v stackitem.Item) error {
	if s == nil || i < 0 || i >= len(s.items) {
		return ErrInvalidSlotIndex
	}
	if s.refs != nil {
		s.refs.RemoveStackRef(s.items[i])
		s.refs.AddStackRef(v)
	}
	s.items[i] = v
	return nil
}

// clearRefs drops the external references the slot's entries hold, called
// when the owning context is unloaded.
func (s *Slot) clearRefs() {
	if s == nil || s.refs == nil {
		return
	}
	for _, i := range s.items {
		s.refs.RemoveStackRef(i)
	}
	s.items = nil
}
