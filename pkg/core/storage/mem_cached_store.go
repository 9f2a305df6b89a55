package storage

import (
	"sort"
	"sync"
)

// rowState tags how a MemCachedStore's local overlay entry relates to its
// parent.
type rowState byte

const (
	stateAdded rowState = iota
	stateChanged
	stateDeleted
)

type overlayEntry struct {
	value []byte
	state rowState
}

// MemCachedStore is the copy-on-write copy-on-write snapshot layer: reads
// fall through to a parent Store on miss, writes land in a local overlay
// tagged by rowState, Seek merges both streams in one sorted pass hiding
// deletes, and Persist/PersistSync fold the overlay into the parent
// atomically. Once persisted, a MemCachedStore is conceptually frozen —
// callers are expected to discard it and open a fresh child if they need
// to keep writing (matches the reference's "committed snapshot is
// read-only" invariant).
type MemCachedStore struct {
	mu        sync.RWMutex
	parent    Store
	overlay   map[string]*overlayEntry
	persisted bool
}

// NewMemCachedStore creates a new snapshot layered over parent (a Store or
// another MemCachedStore — both satisfy Store).
func NewMemCachedStore(parent Store) *MemCachedStore {
	return &MemCachedStore{
		parent:  parent,
		overlay: make(map[string]*overlayEntry),
	}
}

// Get implements Store: overlay first, then parent.
func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.overlay[string(key)]
	s.mu.RUnlock()
	if ok {
		if e.state == stateDeleted {
			return nil, ErrKeyNotFound
		}
		out := make([]byte, len(e.value))
		copy(out, e.value)
		return out, nil
	}
	return s.parent.Get(key)
}

// Contains implements Store.
func (s *MemCachedStore) Contains(key []byte) bool {
	s.mu.RLock()
	e, ok := s.overlay[string(key)]
	s.mu.RUnlock()
	if ok {
		return e.state != stateDeleted
	}
	return s.parent.Contains(key)
}

// Put implements Store, marking the key Added or Changed in the overlay.
func (s *MemCachedStore) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	state := stateChanged
	if !s.parent.Contains(key) {
		if e, ok := s.overlay[string(key)]; !ok || e.state == stateDeleted {
			state = stateAdded
		}
	}
	s.overlay[string(key)] = &overlayEntry{value: v, state: state}
	return nil
}

// Delete implements Store, marking the key Deleted in the overlay.
func (s *MemCachedStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.overlay[string(key)]; ok && e.state == stateAdded {
		// never existed in parent: deleting it just drops the overlay row.
		delete(s.overlay, string(key))
		return nil
	}
	s.overlay[string(key)] = &overlayEntry{state: stateDeleted}
	return nil
}

// Seek implements Store, merging the overlay and parent into one sorted
// stream, hiding deleted keys and preferring overlay values for modified
// keys.
func (s *MemCachedStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mu.RLock()
	type kv struct {
		k []byte
		v []byte
	}
	seen := make(map[string]bool)
	var merged []kv
	for k, e := range s.overlay {
		if !hasPrefix([]byte(k), rng.Prefix) || !afterOrAtStart([]byte(k), rng.Start, rng.Backwards) {
			continue
		}
		seen[k] = true
		if e.state == stateDeleted {
			continue
		}
		merged = append(merged, kv{k: []byte(k), v: e.value})
	}
	s.mu.RUnlock()

	s.parent.Seek(rng, func(k, v []byte) bool {
		if seen[string(k)] {
			return true
		}
		merged = append(merged, kv{k: append([]byte(nil), k...), v: append([]byte(nil), v...)})
		return true
	})

	sort.Slice(merged, func(i, j int) bool {
		return cmpBytes(merged[i].k, merged[j].k, rng.Backwards) < 0
	})
	for _, e := range merged {
		if !f(e.k, e.v) {
			return
		}
	}
}

// Persist folds the overlay into the parent in one atomic batch and
// clears the overlay: commit applies the overlay to the parent in one
// atomic batch, and a committed snapshot is frozen.
// If the parent is itself a MemCachedStore, the batch is applied directly
// against its overlay; otherwise (a concrete Store) a Batch is built and
// applied via PutBatch when available, falling back to sequential writes.
func (s *MemCachedStore) Persist() (int, error) {
	return s.persist(false)
}

// PersistSync is Persist without deferring to any async batching — in this
// single-writer design the two behave identically, the name is kept for
// parity with the reference store's API.
func (s *MemCachedStore) PersistSync() (int, error) {
	return s.persist(false)
}

func (s *MemCachedStore) persist(_ bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.overlay)
	if n == 0 {
		return 0, nil
	}
	if mp, ok := s.parent.(*MemCachedStore); ok {
		mp.mu.Lock()
		for k, e := range s.overlay {
			if e.state == stateDeleted {
				if pe, ok := mp.overlay[k]; ok && pe.state == stateAdded {
					delete(mp.overlay, k)
				} else {
					mp.overlay[k] = &overlayEntry{state: stateDeleted}
				}
				continue
			}
			state := stateChanged
			if pe, ok := mp.overlay[k]; !ok || pe.state == stateDeleted {
				if !mp.parentContainsLocked(k) {
					state = stateAdded
				}
			}
			mp.overlay[k] = &overlayEntry{value: e.value, state: state}
		}
		mp.mu.Unlock()
	} else {
		batch := new(Batch)
		for k, e := range s.overlay {
			if e.state == stateDeleted {
				batch.Delete([]byte(k))
			} else {
				batch.Put([]byte(k), e.value)
			}
		}
		if pb, ok := s.parent.(interface{ PutBatch(*Batch) error }); ok {
			if err := pb.PutBatch(batch); err != nil {
				return 0, err
			}
		} else {
			for k, e := range s.overlay {
				if e.state == stateDeleted {
					if err := s.parent.Delete([]byte(k)); err != nil {
						return 0, err
					}
				} else if err := s.parent.Put([]byte(k), e.value); err != nil {
					return 0, err
				}
			}
		}
	}
	s.overlay = make(map[string]*overlayEntry)
	s.persisted = true
	return n, nil
}

func (s *MemCachedStore) parentContainsLocked(key string) bool {
	if e, ok := s.overlay[key]; ok {
		return e.state != stateDeleted
	}
	return s.parent.Contains([]byte(key))
}

// Rollback discards the overlay, — after Rollback, the
// parent is observed unchanged.
func (s *MemCachedStore) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = make(map[string]*overlayEntry)
}

// Close is a no-op: MemCachedStore does not own the parent's resources.
func (s *MemCachedStore) Close() error { return nil }
