package storage

import (
	"sort"
	"sync"
)

// MemoryStore is a map-backed Store, used for tests and for the root
// snapshot of a freshly initialized in-memory chain.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[string(key)] = v
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, string(key))
	return nil
}

// Contains implements Store.
func (s *MemoryStore) Contains(key []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[string(key)]
	return ok
}

// Seek implements Store.
func (s *MemoryStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if hasPrefix([]byte(k), rng.Prefix) && afterOrAtStart([]byte(k), rng.Start, rng.Backwards) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return cmpBytes([]byte(keys[i]), []byte(keys[j]), rng.Backwards) < 0
	})
	// snapshot values under the lock, then release before invoking f (f
	// may itself touch the store via nested interop calls).
	type kv struct{ k, v []byte }
	out := make([]kv, len(keys))
	for i, k := range keys {
		out[i] = kv{k: []byte(k), v: append([]byte(nil), s.data[k]...)}
	}
	s.mu.RUnlock()
	for _, e := range out {
		if !f(e.k, e.v) {
			return
		}
	}
}

// PutBatch applies a Batch atomically.
func (s *MemoryStore) PutBatch(b *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range b.ops {
		if op.delete {
			delete(s.data, string(op.key))
		} else {
			s.data[string(op.key)] = op.value
		}
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
