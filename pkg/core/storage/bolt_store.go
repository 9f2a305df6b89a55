package storage

import (
	"bytes"

	bbolt "go.etcd.io/bbolt"
)

var bucket = []byte("neo")

// BoltDBStore is the one concrete on-disk backend wired into this repo
// behind the Store trait.
type BoltDBStore struct {
	db *bbolt.DB
}

// NewBoltDBStore opens (creating if necessary) a bbolt-backed store at path.
func NewBoltDBStore(path string) (*BoltDBStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltDBStore{db: db}, nil
}

// Get implements Store.
func (s *BoltDBStore) Get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return ErrKeyNotFound
		}
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	return out, err
}

// Put implements Store.
func (s *BoltDBStore) Put(key, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, value)
	})
}

// Delete implements Store.
func (s *BoltDBStore) Delete(key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}

// Contains implements Store.
func (s *BoltDBStore) Contains(key []byte) bool {
	found := false
	_ = s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucket).Get(key) != nil
		return nil
	})
	return found
}

// Seek implements Store.
func (s *BoltDBStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	_ = s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		if !rng.Backwards {
			var k, v []byte
			if len(rng.Start) > 0 {
				k, v = c.Seek(rng.Start)
			} else {
				k, v = c.Seek(rng.Prefix)
			}
			for ; k != nil && hasPrefix(k, rng.Prefix); k, v = c.Next() {
				if !f(bytes.Clone(k), bytes.Clone(v)) {
					return nil
				}
			}
			return nil
		}
		// Backwards: seek to the end of the prefix range, then step back.
		upper := prefixUpperBound(rng.Prefix)
		var k, v []byte
		if upper == nil {
			k, v = c.Last()
		} else {
			k, v = c.Seek(upper)
			if k == nil {
				k, v = c.Last()
			} else {
				k, v = c.Prev()
			}
		}
		for ; k != nil && hasPrefix(k, rng.Prefix); k, v = c.Prev() {
			if len(rng.Start) > 0 && bytes.Compare(k, rng.Start) > 0 {
				continue
			}
			if !f(bytes.Clone(k), bytes.Clone(v)) {
				return nil
			}
		}
		return nil
	})
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix, or nil if the prefix is all 0xff (no upper bound).
func prefixUpperBound(prefix []byte) []byte {
	up := append([]byte(nil), prefix...)
	for i := len(up) - 1; i >= 0; i-- {
		if up[i] != 0xff {
			up[i]++
			return up[:i+1]
		}
	}
	return nil
}

// Close implements Store.
func (s *BoltDBStore) Close() error {
	return s.db.Close()
}
