// Package dao wraps the storage.Store key-value abstraction with typed
// accessors for every persisted entity the core reads and writes: contract
// state, storage items, blocks, transactions and their receipts, and the
// chain height markers. A Simple is
// layered over a storage.Store exactly like the reference dao.Simple is
// layered over storage.Store; snapshotting is delegated to the underlying
// storage.MemCachedStore rather than reimplemented here, so GetPrivate/
// Persist/Rollback just drive that nested store.
package dao

import (
	"errors"

	lru "github.com/hashicorp/golang-lru"

	"github.com/n3core/node/pkg/core/block"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/core/storage"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// Storage row key prefixes. Contract storage rows are keyed by
// prefixStorage followed by state.StorageKey.Bytes() (contract ID, then the
// contract's own key).
const (
	prefixContract       byte = 0x08
	prefixContractByID   byte = 0x09
	prefixStorage        byte = 0x70
	prefixBlock          byte = 0x01
	prefixHeaderHash     byte = 0x02
	prefixTransaction    byte = 0x03
	prefixCurrentBlock   byte = 0x04
	prefixNextContractID byte = 0x05
	prefixAppExec        byte = 0x06
)

var (
	// ErrNotFound is returned when a decoded entity has no stored row.
	ErrNotFound = errors.New("dao: item not found")
)

const contractCacheSize = 256

// Simple is the DAO layer over one storage.Store. It caches
// decoded contract states so repeated native-contract dispatch on the same
// block doesn't re-deserialize a NEF/manifest pair on every call.
type Simple struct {
	Store storage.Store

	contracts *lru.Cache
}

// NewSimple wraps store in a DAO.
func NewSimple(store storage.Store) *Simple {
	c, _ := lru.New(contractCacheSize)
	return &Simple{Store: store, contracts: c}
}

// GetPrivate returns a DAO layered over a fresh copy-on-write snapshot of
// d's store. The decoded-item
// cache is shared: reads that miss the snapshot's own overlay still benefit
// from whatever the parent already decoded this block.
func (d *Simple) GetPrivate() *Simple {
	return &Simple{Store: storage.NewMemCachedStore(d.Store), contracts: d.contracts}
}

// Persist folds a snapshot DAO's overlay into its parent. Only meaningful when Store is a *storage.MemCachedStore.
func (d *Simple) Persist() (int, error) {
	mc, ok := d.Store.(*storage.MemCachedStore)
	if !ok {
		return 0, nil
	}
	return mc.Persist()
}

// Rollback discards a snapshot DAO's overlay.
func (d *Simple) Rollback() {
	if mc, ok := d.Store.(*storage.MemCachedStore); ok {
		mc.Rollback()
	}
}

func key(prefix byte, suffix []byte) []byte {
	b := make([]byte, 1+len(suffix))
	b[0] = prefix
	copy(b[1:], suffix)
	return b
}

func decode(b []byte, item io.Serializable) error {
	r := io.NewBinReaderFromBuf(b)
	item.DecodeBinary(r)
	return r.Err
}

func encode(item io.Serializable) ([]byte, error) {
	w := io.NewBufBinWriter()
	item.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// GetContractState returns the deployed contract at hash.
func (d *Simple) GetContractState(hash util.Uint160) (*state.Contract, error) {
	if v, ok := d.contracts.Get(hash); ok {
		return v.(*state.Contract), nil
	}
	b, err := d.Store.Get(key(prefixContract, hash.BytesBE()))
	if err != nil {
		return nil, ErrNotFound
	}
	cs := &state.Contract{}
	if err := decode(b, cs); err != nil {
		return nil, err
	}
	d.contracts.Add(hash, cs)
	return cs, nil
}

// GetContractByID returns the deployed contract with the given id, via the
// secondary id->hash index.
func (d *Simple) GetContractByID(id int32) (*state.Contract, error) {
	idx := make([]byte, 4)
	putU32BE(idx, uint32(id))
	hb, err := d.Store.Get(key(prefixContractByID, idx))
	if err != nil {
		return nil, ErrNotFound
	}
	hash, err := util.Uint160DecodeBytesBE(hb)
	if err != nil {
		return nil, err
	}
	return d.GetContractState(hash)
}

// PutContractState persists cs and refreshes both indexes and the decode
// cache.
func (d *Simple) PutContractState(cs *state.Contract) error {
	b, err := encode(cs)
	if err != nil {
		return err
	}
	if err := d.Store.Put(key(prefixContract, cs.Hash.BytesBE()), b); err != nil {
		return err
	}
	idx := make([]byte, 4)
	putU32BE(idx, uint32(cs.ID))
	if err := d.Store.Put(key(prefixContractByID, idx), cs.Hash.BytesBE()); err != nil {
		return err
	}
	d.contracts.Add(cs.Hash, cs)
	return nil
}

// DeleteContractState removes a contract and its indexes.
func (d *Simple) DeleteContractState(hash util.Uint160) error {
	cs, err := d.GetContractState(hash)
	if err == nil {
		idx := make([]byte, 4)
		putU32BE(idx, uint32(cs.ID))
		_ = d.Store.Delete(key(prefixContractByID, idx))
	}
	d.contracts.Remove(hash)
	return d.Store.Delete(key(prefixContract, hash.BytesBE()))
}

// GetAllContractStates returns every deployed contract, used to rebuild the
// in-process native cache after a restart.
func (d *Simple) GetAllContractStates() ([]*state.Contract, error) {
	var out []*state.Contract
	var decErr error
	d.Store.Seek(storage.SeekRange{Prefix: []byte{prefixContract}}, func(_, v []byte) bool {
		cs := &state.Contract{}
		if err := decode(v, cs); err != nil {
			decErr = err
			return false
		}
		out = append(out, cs)
		return true
	})
	return out, decErr
}

func storageKey(id int32, k []byte) []byte {
	sk := state.StorageKey{ID: id, Key: k}
	return key(prefixStorage, sk.Bytes())
}

// GetStorageItem returns one contract storage row.
func (d *Simple) GetStorageItem(id int32, k []byte) (state.StorageItem, error) {
	b, err := d.Store.Get(storageKey(id, k))
	if err != nil {
		return nil, ErrNotFound
	}
	return state.StorageItem(b), nil
}

// PutStorageItem writes one contract storage row.
func (d *Simple) PutStorageItem(id int32, k []byte, item state.StorageItem) error {
	return d.Store.Put(storageKey(id, k), item)
}

// DeleteStorageItem removes one contract storage row.
func (d *Simple) DeleteStorageItem(id int32, k []byte) error {
	return d.Store.Delete(storageKey(id, k))
}

// Seek visits every storage row of contract id whose key has the given
// sub-prefix, in deterministic order . f receives
// keys with the contract-id prefix already stripped.
func (d *Simple) Seek(id int32, subPrefix []byte, backwards bool, f func(k, v []byte) bool) {
	full := storageKey(id, subPrefix)
	stripLen := len(full) - len(subPrefix)
	d.Store.Seek(storage.SeekRange{Prefix: full, Backwards: backwards}, func(k, v []byte) bool {
		return f(k[stripLen:], v)
	})
}

// GetBlock returns the (possibly trimmed) block stored under hash.
func (d *Simple) GetBlock(hash util.Uint256) (*block.Block, error) {
	b, err := d.Store.Get(key(prefixBlock, hash.BytesBE()))
	if err != nil {
		return nil, ErrNotFound
	}
	return block.NewBlockFromTrimmedBytes(b)
}

// GetHeaderHash returns the hash of the header at the given height.
func (d *Simple) GetHeaderHash(index uint32) (util.Uint256, error) {
	ib := make([]byte, 4)
	putU32BE(ib, index)
	b, err := d.Store.Get(key(prefixHeaderHash, ib))
	if err != nil {
		return util.Uint256{}, ErrNotFound
	}
	return util.Uint256DecodeBytesBE(b)
}

// PutBlock stores b in trimmed form plus its height index, and advances the
// current-height marker.
func (d *Simple) PutBlock(b *block.Block) error {
	trimmed, err := b.Trim()
	if err != nil {
		return err
	}
	h := b.Hash()
	if err := d.Store.Put(key(prefixBlock, h.BytesBE()), trimmed); err != nil {
		return err
	}
	ib := make([]byte, 4)
	putU32BE(ib, b.Index)
	if err := d.Store.Put(key(prefixHeaderHash, ib), h.BytesBE()); err != nil {
		return err
	}
	for i, tx := range b.Transactions {
		if err := d.putTransaction(b.Index, uint16(i), tx); err != nil {
			return err
		}
	}
	return d.putCurrentHeight(b.Index, h)
}

func (d *Simple) putTransaction(height uint32, _ uint16, tx *transaction.Transaction) error {
	w := io.NewBufBinWriter()
	w.WriteU32LE(height)
	tx.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return d.Store.Put(key(prefixTransaction, tx.Hash().BytesBE()), w.Bytes())
}

// GetTransaction returns a stored transaction and the height of the block
// that contains it.
func (d *Simple) GetTransaction(hash util.Uint256) (*transaction.Transaction, uint32, error) {
	b, err := d.Store.Get(key(prefixTransaction, hash.BytesBE()))
	if err != nil {
		return nil, 0, ErrNotFound
	}
	r := io.NewBinReaderFromBuf(b)
	height := r.ReadU32LE()
	tx := &transaction.Transaction{}
	tx.DecodeBinary(r)
	if r.Err != nil {
		return nil, 0, r.Err
	}
	return tx, height, nil
}

// HasTransaction reports whether hash is already stored on chain, used by
// mempool conflict/duplicate checks.
func (d *Simple) HasTransaction(hash util.Uint256) bool {
	return d.Store.Contains(key(prefixTransaction, hash.BytesBE()))
}

func (d *Simple) putCurrentHeight(index uint32, h util.Uint256) error {
	b := make([]byte, 36)
	copy(b, h.BytesBE())
	putU32BE(b[32:], index)
	return d.Store.Put([]byte{prefixCurrentBlock}, b)
}

// GetCurrentBlockHeight returns the height of the most recently persisted
// block, or 0 with ErrNotFound before genesis.
func (d *Simple) GetCurrentBlockHeight() (uint32, error) {
	b, err := d.Store.Get([]byte{prefixCurrentBlock})
	if err != nil {
		return 0, ErrNotFound
	}
	return getU32BE(b[32:]), nil
}

// CurrentBlockHash returns the hash of the most recently persisted block.
func (d *Simple) CurrentBlockHash() (util.Uint256, error) {
	b, err := d.Store.Get([]byte{prefixCurrentBlock})
	if err != nil {
		return util.Uint256{}, ErrNotFound
	}
	return util.Uint256DecodeBytesBE(b[:32])
}

// GetNextContractID returns and atomically increments the contract-id
// allocation counter.
func (d *Simple) GetNextContractID() (int32, error) {
	b, err := d.Store.Get([]byte{prefixNextContractID})
	var id uint32
	if err == nil {
		id = getU32BE(b)
	}
	nb := make([]byte, 4)
	putU32BE(nb, id+1)
	if err := d.Store.Put([]byte{prefixNextContractID}, nb); err != nil {
		return 0, err
	}
	return int32(id), nil
}

// PutAppExecResult stores the execution receipt of a transaction or
// OnPersist/PostPersist trigger, keyed by container hash.
func (d *Simple) PutAppExecResult(container util.Uint256, r *state.TransactionReceipt) error {
	w := io.NewBufBinWriter()
	w.WriteB(r.VMState)
	w.WriteI64LE(r.GasConsumed)
	w.WriteVarUint(uint64(len(r.Notifications)))
	for _, n := range r.Notifications {
		w.WriteBytes(n.ScriptHash.BytesLE())
		w.WriteString(n.Name)
		itemBytes, err := stackitem.SerializeItem(n.Item)
		if err != nil {
			return err
		}
		w.WriteVarBytes(itemBytes)
	}
	w.WriteString(r.FaultException)
	if w.Err != nil {
		return w.Err
	}
	return d.Store.Put(key(prefixAppExec, container.BytesBE()), w.Bytes())
}

func putU32BE(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getU32BE(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// GetAppExecResult returns the stored execution receipt for the given
// container hash.
func (d *Simple) GetAppExecResult(container util.Uint256) (*state.TransactionReceipt, error) {
	b, err := d.Store.Get(key(prefixAppExec, container.BytesBE()))
	if err != nil {
		return nil, ErrNotFound
	}
	r := io.NewBinReaderFromBuf(b)
	res := &state.TransactionReceipt{
		VMState:     r.ReadB(),
		GasConsumed: r.ReadI64LE(),
	}
	n := r.ReadVarUint()
	for i := uint64(0); i < n && r.Err == nil; i++ {
		var ev state.NotificationEvent
		r.ReadBytes(ev.ScriptHash[:])
		ev.Name = r.ReadString()
		itemBytes := r.ReadVarBytes()
		if r.Err != nil {
			break
		}
		item, err := stackitem.DeserializeItem(itemBytes)
		if err != nil {
			return nil, err
		}
		arr, ok := item.(*stackitem.Array)
		if !ok {
			return nil, errors.New("dao: notification payload is not an array")
		}
		ev.Item = arr
		res.Notifications = append(res.Notifications, ev)
	}
	res.FaultException = r.ReadString()
	if r.Err != nil {
		return nil, r.Err
	}
	return res, nil
}
