package stackitem

// RefCounter implements the arena-based strategy described in the design
// notes: every compound item is tracked by identity in a per-engine arena,
// with two separate edge counts — references from the evaluation/result
// stacks and slots (external), and references from enclosing compound
// items (internal). Keeping the two apart is what makes cycle collection
// possible: a mark seeded only from items with nonzero external references
// leaves an unreachable cycle unmarked, no matter how many internal edges
// its members hold on each other. The whole arena is dropped when the
// owning engine ends, so nothing can leak even on Fault.
type RefCounter struct {
	// size is the total number of live references, counting primitive
	// items too — the aggregate the engine bounds with MaxStackSize.
	size int

	items map[Item]*refEntry

	// dirty is set when an edge removal leaves a tracked item alive with
	// zero stack references, the only state a collectible cycle can be in.
	dirty bool
}

type refEntry struct {
	stack int
	inner int
}

// NewRefCounter creates a new, empty reference counter.
func NewRefCounter() *RefCounter {
	return &RefCounter{items: make(map[Item]*refEntry)}
}

func trackable(i Item) bool {
	switch i.(type) {
	case *Array, *Struct, *Map, *Buffer:
		return true
	default:
		return false
	}
}

// AddStackRef registers one stack (or slot) reference to i. The first
// reference to a not-yet-tracked compound item also registers container
// references to its children, transitively.
func (r *RefCounter) AddStackRef(i Item) {
	r.addRef(i, true)
}

// RemoveStackRef drops one stack (or slot) reference to i.
func (r *RefCounter) RemoveStackRef(i Item) {
	r.removeRef(i, true)
}

// AddContainerRef registers one reference to i from inside a compound item
// (an Array/Struct element or a Map key/value).
func (r *RefCounter) AddContainerRef(i Item) {
	r.addRef(i, false)
}

// RemoveContainerRef drops one container reference to i.
func (r *RefCounter) RemoveContainerRef(i Item) {
	r.removeRef(i, false)
}

func (r *RefCounter) addRef(i Item, fromStack bool) {
	if r == nil {
		return
	}
	r.size++
	if !trackable(i) {
		return
	}
	e := r.items[i]
	fresh := e == nil
	if fresh {
		e = &refEntry{}
		r.items[i] = e
	}
	if fromStack {
		e.stack++
	} else {
		e.inner++
	}
	if fresh {
		r.trackChildren(i)
	}
}

func (r *RefCounter) removeRef(i Item, fromStack bool) {
	if r == nil {
		return
	}
	r.size--
	if !trackable(i) {
		return
	}
	e := r.items[i]
	if e == nil {
		return
	}
	if fromStack {
		e.stack--
	} else {
		e.inner--
	}
	if e.stack <= 0 && e.inner <= 0 {
		delete(r.items, i)
		r.releaseChildren(i)
		return
	}
	if e.stack <= 0 {
		r.dirty = true
	}
}

// trackChildren registers a container reference for every direct child of
// i; children not seen before recurse through addRef. i itself must
// already be tracked so that self-referencing items terminate.
func (r *RefCounter) trackChildren(i Item) {
	switch v := i.(type) {
	case *Array:
		for _, c := range v.value {
			r.AddContainerRef(c)
		}
	case *Struct:
		for _, c := range v.value {
			r.AddContainerRef(c)
		}
	case *Map:
		for _, e := range v.elems {
			r.AddContainerRef(e.Key)
			r.AddContainerRef(e.Value)
		}
	}
}

func (r *RefCounter) releaseChildren(i Item) {
	switch v := i.(type) {
	case *Array:
		for _, c := range v.value {
			r.RemoveContainerRef(c)
		}
	case *Struct:
		for _, c := range v.value {
			r.RemoveContainerRef(c)
		}
	case *Map:
		for _, e := range v.elems {
			r.RemoveContainerRef(e.Key)
			r.RemoveContainerRef(e.Value)
		}
	}
}

// Size returns the total number of live references (stack, slot and
// container edges, primitive targets included). A run that Halts cleanly
// ends with a size equal to exactly the references still reachable from
// the result stack.
func (r *RefCounter) Size() int {
	if r == nil {
		return 0
	}
	return r.size
}

// Tracked returns the number of distinct compound items in the arena.
func (r *RefCounter) Tracked() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// Collect runs a mark-sweep over the arena: the mark is seeded from every
// item that still has stack references, so members of an unreachable cycle
// — alive only through each other's container edges — are never marked and
// get swept. It is a no-op unless an edge removal since the last call left
// a candidate behind, so calling it after every VM step stays cheap.
func (r *RefCounter) Collect() {
	if r == nil || !r.dirty {
		return
	}
	r.dirty = false

	reachable := make(map[Item]bool, len(r.items))
	var mark func(Item)
	mark = func(i Item) {
		if !trackable(i) || reachable[i] {
			return
		}
		reachable[i] = true
		switch v := i.(type) {
		case *Array:
			for _, c := range v.value {
				mark(c)
			}
		case *Struct:
			for _, c := range v.value {
				mark(c)
			}
		case *Map:
			for _, e := range v.elems {
				mark(e.Value)
			}
		}
	}
	for i, e := range r.items {
		if e.stack > 0 {
			mark(i)
		}
	}

	swept := make(map[Item]bool)
	for i := range r.items {
		if !reachable[i] {
			swept[i] = true
		}
	}
	for i := range swept {
		// Every edge into a swept item comes from another swept item (a
		// reachable holder would have marked it), so its inner count can
		// be dropped from size wholesale.
		r.size -= r.items[i].inner
		delete(r.items, i)
	}
	for i := range swept {
		// Edges out of the cycle into still-reachable items (or
		// primitives) are released one by one; edges into other swept
		// items were already accounted for above.
		r.releaseSweptChildren(i, swept)
	}
}

func (r *RefCounter) releaseSweptChildren(i Item, swept map[Item]bool) {
	release := func(c Item) {
		if trackable(c) && swept[c] {
			return
		}
		r.RemoveContainerRef(c)
	}
	switch v := i.(type) {
	case *Array:
		for _, c := range v.value {
			release(c)
		}
	case *Struct:
		for _, c := range v.value {
			release(c)
		}
	case *Map:
		for _, e := range v.elems {
			release(e.Key)
			release(e.Value)
		}
	}
}
