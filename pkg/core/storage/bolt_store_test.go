package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoltStore(t *testing.T) (*BoltDBStore, string) {
	path := filepath.Join(t.TempDir(), "chain.bolt")
	s, err := NewBoltDBStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestBoltDBStoreGetPutDelete(t *testing.T) {
	s, _ := newBoltStore(t)

	key := []byte{0x01, 0x02}
	value := []byte{0xaa}

	_, err := s.Get(key)
	require.ErrorIs(t, err, ErrKeyNotFound)
	assert.False(t, s.Contains(key))

	require.NoError(t, s.Put(key, value))
	got, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
	assert.True(t, s.Contains(key))

	require.NoError(t, s.Delete(key))
	_, err = s.Get(key)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestBoltDBStoreSeek(t *testing.T) {
	s, _ := newBoltStore(t)
	require.NoError(t, s.Put([]byte{0x10, 0x01}, []byte{0x01}))
	require.NoError(t, s.Put([]byte{0x10, 0x02}, []byte{0x02}))
	require.NoError(t, s.Put([]byte{0x10, 0x03}, []byte{0x03}))
	require.NoError(t, s.Put([]byte{0x11, 0x01}, []byte{0xff}))

	forward := collect(s, SeekRange{Prefix: []byte{0x10}})
	require.Len(t, forward, 3)
	assert.Equal(t, []byte{0x10, 0x01}, forward[0].Key)
	assert.Equal(t, []byte{0x10, 0x03}, forward[2].Key)

	backward := collect(s, SeekRange{Prefix: []byte{0x10}, Backwards: true})
	require.Len(t, backward, 3)
	assert.Equal(t, []byte{0x10, 0x03}, backward[0].Key)
	assert.Equal(t, []byte{0x10, 0x01}, backward[2].Key)

	// Early termination.
	var n int
	s.Seek(SeekRange{Prefix: []byte{0x10}}, func(k, v []byte) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}

func TestBoltDBStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.bolt")
	s, err := NewBoltDBStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put([]byte{0x01}, []byte{0xbe, 0xef}))
	require.NoError(t, s.Close())

	s2, err := NewBoltDBStore(path)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Get([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xbe, 0xef}, got)
}

func TestBoltDBStoreBehindMemCachedStore(t *testing.T) {
	// The snapshot layer persists into bbolt exactly like into the memory
	// backend.
	s, _ := newBoltStore(t)
	c := NewMemCachedStore(s)
	require.NoError(t, c.Put([]byte{0x01}, []byte{0x01}))
	require.NoError(t, c.Put([]byte{0x02}, []byte{0x02}))
	require.NoError(t, c.Delete([]byte{0x02}))

	_, err := c.Persist()
	require.NoError(t, err)

	got, err := s.Get([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)
	_, err = s.Get([]byte{0x02})
	require.ErrorIs(t, err, ErrKeyNotFound)
}
