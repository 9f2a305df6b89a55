package vm

import "github.com/n3core/node/pkg/vm/stackitem"

// Stack is a LIFO sequence of stack items, used for both the evaluation
// stack and the result stack. A stack created with a reference counter
// reports every item entering or leaving it, so the engine can bound the
// total reachable item count and collect unreachable cycles.
type Stack struct {
	items []stackitem.Item
	refs  *stackitem.RefCounter
}

// NewStack creates a new empty stack without reference tracking (used by
// standalone stack manipulation tests; the engine always tracks).
func NewStack() *Stack {
	return &Stack{}
}

// newRefCountingStack creates a stack whose pushes and pops adjust rc.
func newRefCountingStack(rc *stackitem.RefCounter) *Stack {
	return &Stack{refs: rc}
}

// Len returns the number of items on the stack.
func (s *Stack) Len() int { return len(s.items) }

// Push pushes an item onto the top of the stack.
func (s *Stack) Push(i stackitem.Item) {
	s.items = append(s.items, i)
	if s.refs != nil {
		s.refs.AddStackRef(i)
	}
}

// Pop removes and returns the top item.
func (s *Stack) Pop() (stackitem.Item, error) {
	if len(s.items) == 0 {
		return nil, ErrStackUnderflow
	}
	i := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	if s.refs != nil {
		s.refs.RemoveStackRef(i)
	}
	return i, nil
}

// Peek returns the item n from the top (0 is the top) without removing it.
func (s *Stack) Peek(n int) (stackitem.Item, error) {
	idx := len(s.items) - 1 - n
	if idx < 0 || n < 0 {
		return nil, ErrStackUnderflow
	}
	return s.items[idx], nil
}

// RemoveAt removes and returns the item n from the top.
func (s *Stack) RemoveAt(n int) (stackitem.Item, error) {
	idx := len(s.items) - 1 - n
	if idx < 0 || n < 0 {
		return nil, ErrStackUnderflow
	}
	i := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if s.refs != nil {
		s.refs.RemoveStackRef(i)
	}
	return i, nil
}

// InsertAt inserts i so that it ends up n positions from the top.
func (s *Stack) InsertAt(i stackitem.Item, n int) error {
	idx := len(s.items) - n
	if idx < 0 || idx > len(s.items) {
		return ErrStackUnderflow
	}
	s.items = append(s.items, nil)
	copy(s.items[idx+1:], s.items[idx:])
	s.items[idx] = i
	if s.refs != nil {
		s.refs.AddStackRef(i)
	}
	return nil
}

// Clear removes every item from the stack.
func (s *Stack) Clear() {
	if s.refs != nil {
		for _, i := range s.items {
			s.refs.RemoveStackRef(i)
		}
	}
	s.items = nil
}

// Items returns the backing slice, bottom to top (for result-stack
// inspection; callers must not mutate it).
func (s *Stack) Items() []stackitem.Item {
	return s.items
}
