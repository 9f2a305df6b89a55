package stackitem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefCounterPrimitives(t *testing.T) {
	rc := NewRefCounter()
	one := Make(1)

	rc.AddStackRef(one)
	rc.AddStackRef(one)
	assert.Equal(t, 2, rc.Size())
	assert.Equal(t, 0, rc.Tracked())

	rc.RemoveStackRef(one)
	rc.RemoveStackRef(one)
	assert.Equal(t, 0, rc.Size())
}

func TestRefCounterTracksChildren(t *testing.T) {
	rc := NewRefCounter()
	arr := NewArray([]Item{Make(1), NewByteArray([]byte("x"))})

	rc.AddStackRef(arr)
	// One stack ref to the array plus two container refs to its children.
	assert.Equal(t, 3, rc.Size())
	assert.Equal(t, 1, rc.Tracked())

	rc.RemoveStackRef(arr)
	assert.Equal(t, 0, rc.Size())
	assert.Equal(t, 0, rc.Tracked())
}

func TestRefCounterNestedCompound(t *testing.T) {
	rc := NewRefCounter()
	inner := NewArray([]Item{Make(1)})
	outer := NewArray([]Item{inner})

	rc.AddStackRef(outer)
	// outer(stack) + inner(container) + 1(container of inner).
	assert.Equal(t, 3, rc.Size())
	assert.Equal(t, 2, rc.Tracked())

	// A second path to inner keeps it alive after outer goes away.
	rc.AddStackRef(inner)
	rc.RemoveStackRef(outer)
	assert.Equal(t, 2, rc.Size())
	assert.Equal(t, 1, rc.Tracked())

	rc.RemoveStackRef(inner)
	assert.Equal(t, 0, rc.Size())
}

func TestRefCounterSelfCycleCollected(t *testing.T) {
	rc := NewRefCounter()
	arr := NewArray(nil)
	rc.AddStackRef(arr)
	require.NoError(t, arr.Append(arr))
	rc.AddContainerRef(arr)
	assert.Equal(t, 2, rc.Size())

	rc.RemoveStackRef(arr)
	// The self-edge keeps the combined count nonzero; only the sweep can
	// reclaim it.
	assert.Equal(t, 1, rc.Tracked())
	rc.Collect()
	assert.Equal(t, 0, rc.Size())
	assert.Equal(t, 0, rc.Tracked())
}

func TestRefCounterTwoNodeCycleCollected(t *testing.T) {
	rc := NewRefCounter()
	a := NewArray(nil)
	b := NewArray(nil)
	rc.AddStackRef(a)

	require.NoError(t, a.Append(b))
	rc.AddContainerRef(b)
	require.NoError(t, b.Append(a))
	rc.AddContainerRef(a)
	// A primitive hanging off the cycle must be released with it.
	require.NoError(t, b.Append(Make(7)))
	rc.AddContainerRef(Make(7))

	rc.RemoveStackRef(a)
	rc.Collect()
	assert.Equal(t, 0, rc.Size())
	assert.Equal(t, 0, rc.Tracked())
}

func TestRefCounterCycleReachableFromStackSurvives(t *testing.T) {
	rc := NewRefCounter()
	a := NewArray(nil)
	b := NewArray(nil)
	rc.AddStackRef(a)
	require.NoError(t, a.Append(b))
	rc.AddContainerRef(b)
	require.NoError(t, b.Append(a))
	rc.AddContainerRef(a)

	before := rc.Size()
	rc.Collect()
	// Still rooted on the stack: nothing may be swept.
	assert.Equal(t, before, rc.Size())
	assert.Equal(t, 2, rc.Tracked())

	rc.RemoveStackRef(a)
	rc.Collect()
	assert.Equal(t, 0, rc.Size())
}

func TestRefCounterMapEntries(t *testing.T) {
	rc := NewRefCounter()
	m := NewMap()
	require.NoError(t, m.Set(NewByteArray([]byte("k")), NewArray([]Item{Make(1)})))

	rc.AddStackRef(m)
	// map(stack) + key(container) + value-array(container) + 1(container).
	assert.Equal(t, 4, rc.Size())
	assert.Equal(t, 2, rc.Tracked())

	rc.RemoveStackRef(m)
	assert.Equal(t, 0, rc.Size())
	assert.Equal(t, 0, rc.Tracked())
}
