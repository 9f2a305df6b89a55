package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemCachedStoreGetPutDelete(t *testing.T) {
	base := NewMemoryStore()
	s := NewMemCachedStore(base)

	key := []byte{0x01}
	value := []byte{0xaa}

	_, err := s.Get(key)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Put(key, value))
	got, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
	assert.True(t, s.Contains(key))

	// Base is untouched until Persist.
	_, err = base.Get(key)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Delete(key))
	_, err = s.Get(key)
	require.ErrorIs(t, err, ErrKeyNotFound)
	assert.False(t, s.Contains(key))
}

func TestMemCachedStoreRollback(t *testing.T) {
	base := NewMemoryStore()
	require.NoError(t, base.Put([]byte{0x01}, []byte{0x01}))

	s := NewMemCachedStore(base)
	require.NoError(t, s.Put([]byte{0x01}, []byte{0x02}))
	s.Rollback()

	got, err := s.Get([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)

	got, err = base.Get([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)
}

func TestMemCachedStorePersist(t *testing.T) {
	base := NewMemoryStore()
	s := NewMemCachedStore(base)
	require.NoError(t, s.Put([]byte{0x01}, []byte{0xaa}))
	require.NoError(t, s.Put([]byte{0x02}, []byte{0xbb}))

	n, err := s.Persist()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := base.Get([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, got)

	// A fresh snapshot over the same parent sees the committed value.
	s2 := NewMemCachedStore(base)
	got, err = s2.Get([]byte{0x02})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xbb}, got)
}

func TestMemCachedStorePersistDeletes(t *testing.T) {
	base := NewMemoryStore()
	require.NoError(t, base.Put([]byte{0x01}, []byte{0x01}))

	s := NewMemCachedStore(base)
	require.NoError(t, s.Delete([]byte{0x01}))
	_, err := s.Persist()
	require.NoError(t, err)

	_, err = base.Get([]byte{0x01})
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSnapshotIsolation(t *testing.T) {
	// Spec scenario S6: a snapshot opened before a sibling's commit keeps
	// seeing the old value; one opened after sees the new one.
	parent := NewMemCachedStore(NewMemoryStore())
	require.NoError(t, parent.Put([]byte("k"), []byte{0x00}))

	a := NewMemCachedStore(parent)
	b := NewMemCachedStore(parent)
	require.NoError(t, a.Put([]byte("k"), []byte{0x01}))

	got, err := b.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, got)

	_, err = a.Persist()
	require.NoError(t, err)

	c := NewMemCachedStore(parent)
	got, err = c.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)
}

func collect(s Store, rng SeekRange) []KeyValue {
	var res []KeyValue
	s.Seek(rng, func(k, v []byte) bool {
		res = append(res, KeyValue{Key: k, Value: v})
		return true
	})
	return res
}

func TestMemCachedStoreSeekMerged(t *testing.T) {
	base := NewMemoryStore()
	require.NoError(t, base.Put([]byte{0x10, 0x01}, []byte{0x01}))
	require.NoError(t, base.Put([]byte{0x10, 0x03}, []byte{0x03}))
	require.NoError(t, base.Put([]byte{0x11, 0x01}, []byte{0xff})) // other prefix

	s := NewMemCachedStore(base)
	require.NoError(t, s.Put([]byte{0x10, 0x02}, []byte{0x02}))    // added
	require.NoError(t, s.Put([]byte{0x10, 0x03}, []byte{0x33}))    // modified
	require.NoError(t, s.Delete([]byte{0x10, 0x01}))               // deleted

	res := collect(s, SeekRange{Prefix: []byte{0x10}})
	require.Len(t, res, 2)
	assert.Equal(t, []byte{0x10, 0x02}, res[0].Key)
	assert.Equal(t, []byte{0x02}, res[0].Value)
	assert.Equal(t, []byte{0x10, 0x03}, res[1].Key)
	assert.Equal(t, []byte{0x33}, res[1].Value)
}

func TestMemCachedStoreSeekBackwards(t *testing.T) {
	base := NewMemoryStore()
	require.NoError(t, base.Put([]byte{0x10, 0x01}, []byte{0x01}))
	require.NoError(t, base.Put([]byte{0x10, 0x02}, []byte{0x02}))
	s := NewMemCachedStore(base)
	require.NoError(t, s.Put([]byte{0x10, 0x03}, []byte{0x03}))

	res := collect(s, SeekRange{Prefix: []byte{0x10}, Backwards: true})
	require.Len(t, res, 3)
	assert.Equal(t, []byte{0x10, 0x03}, res[0].Key)
	assert.Equal(t, []byte{0x10, 0x01}, res[2].Key)
}

func TestMemoryStoreSeekDeterministic(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Put([]byte{0x01, 0x02}, []byte{0x01}))
	require.NoError(t, s.Put([]byte{0x01, 0x01}, []byte{0x02}))
	require.NoError(t, s.Put([]byte{0x01, 0x03}, []byte{0x03}))

	first := collect(s, SeekRange{Prefix: []byte{0x01}})
	second := collect(s, SeekRange{Prefix: []byte{0x01}})
	require.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, []byte{0x01, 0x01}, first[0].Key)
	assert.Equal(t, []byte{0x01, 0x03}, first[2].Key)
}
