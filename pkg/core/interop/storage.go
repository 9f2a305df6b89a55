package interop

import (
	"fmt"

	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// MaxStorageKeyLen and MaxStorageValueLen bound Storage.Put arguments.
const (
	MaxStorageKeyLen   = 64
	MaxStorageValueLen = 65535
)

// StorageContext is the handle System.Storage.Get/Put/Delete/Find operate
// through, carrying the owning contract id and a read-only flag.
type StorageContext struct {
	ID       int32
	ReadOnly bool
}

// RegisterStorage adds the System.Storage.* syscalls.
func RegisterStorage(ic *Context) {
	reg := func(name string, price int64, flags callflag.CallFlag, f func(*Context) error) {
		ic.RegisterFunction(&Function{
			ID: interopnames.ToID(name), Name: name, Func: f,
			Price: price, RequiredFlags: flags,
		})
	}
	reg(interopnames.SystemStorageGetContext, 1<<4, callflag.ReadStates, storageGetContext)
	reg(interopnames.SystemStorageGetReadOnlyContext, 1<<4, callflag.ReadStates, storageGetReadOnlyContext)
	reg(interopnames.SystemStorageAsReadOnly, 1<<4, callflag.ReadStates, storageAsReadOnly)
	reg(interopnames.SystemStorageGet, 1<<15, callflag.ReadStates, storageGet)
	reg(interopnames.SystemStoragePut, 1<<15, callflag.WriteStates, storagePut)
	reg(interopnames.SystemStorageDelete, 1<<15, callflag.WriteStates, storageDelete)
	reg(interopnames.SystemStorageFind, 1<<15, callflag.ReadStates, storageFind)
}

func currentStorageID(ic *Context) (int32, error) {
	h := ic.VM.GetCurrentScriptHash()
	cs, err := ic.DAO.GetContractState(h)
	if err != nil {
		return 0, fmt.Errorf("storage context: contract %s not found", h.String())
	}
	return cs.ID, nil
}

func storageGetContext(ic *Context) error {
	id, err := currentStorageID(ic)
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewInterop(&StorageContext{ID: id}))
	return nil
}

func storageGetReadOnlyContext(ic *Context) error {
	id, err := currentStorageID(ic)
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewInterop(&StorageContext{ID: id, ReadOnly: true}))
	return nil
}

func storageAsReadOnly(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	sc, ok := item.Value().(*StorageContext)
	if !ok {
		return fmt.Errorf("%w: expected StorageContext", stackitem.ErrInvalidCast)
	}
	ic.VM.Estack().Push(stackitem.NewInterop(&StorageContext{ID: sc.ID, ReadOnly: true}))
	return nil
}

func popStorageContext(ic *Context) (*StorageContext, error) {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return nil, err
	}
	sc, ok := item.Value().(*StorageContext)
	if !ok {
		return nil, fmt.Errorf("%w: expected StorageContext", stackitem.ErrInvalidCast)
	}
	return sc, nil
}

func storageGet(ic *Context) error {
	sc, err := popStorageContext(ic)
	if err != nil {
		return err
	}
	keyItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	k, err := keyItem.TryBytes()
	if err != nil {
		return err
	}
	item, err := ic.DAO.GetStorageItem(sc.ID, k)
	if err != nil {
		ic.VM.Estack().Push(stackitem.Null{})
		return nil
	}
	ic.VM.Estack().Push(stackitem.NewByteArray(item))
	return nil
}

func storagePut(ic *Context) error {
	sc, err := popStorageContext(ic)
	if err != nil {
		return err
	}
	if sc.ReadOnly {
		return fmt.Errorf("storage context is read-only")
	}
	keyItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	valItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	k, err := keyItem.TryBytes()
	if err != nil || len(k) > MaxStorageKeyLen {
		return fmt.Errorf("%w: invalid storage key", stackitem.ErrInvalidCast)
	}
	v, err := valItem.TryBytes()
	if err != nil || len(v) > MaxStorageValueLen {
		return fmt.Errorf("%w: invalid storage value", stackitem.ErrInvalidCast)
	}
	existing, _ := ic.DAO.GetStorageItem(sc.ID, k)
	sizeDelta := len(k) + len(v)
	if existing != nil {
		sizeDelta = len(v) - len(existing)
		if sizeDelta < 0 {
			sizeDelta = 0
		}
	}
	if sizeDelta > 0 && !ic.VM.AddGas(int64(sizeDelta)*ic.baseStorageFee) {
		return fmt.Errorf("out of gas")
	}
	return ic.DAO.PutStorageItem(sc.ID, k, state.StorageItem(v))
}

func storageDelete(ic *Context) error {
	sc, err := popStorageContext(ic)
	if err != nil {
		return err
	}
	if sc.ReadOnly {
		return fmt.Errorf("storage context is read-only")
	}
	keyItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	k, err := keyItem.TryBytes()
	if err != nil {
		return err
	}
	return ic.DAO.DeleteStorageItem(sc.ID, k)
}

// FindOptions mirrors the reference's FindOptions bit flags controlling
// what System.Storage.Find yields.
type FindOptions byte

const (
	FindDefault         FindOptions = 0
	FindKeysOnly        FindOptions = 1 << 0
	FindRemovePrefix     FindOptions = 1 << 1
	FindValuesOnly       FindOptions = 1 << 2
	FindDeserialize      FindOptions = 1 << 3
	FindPickField0       FindOptions = 1 << 4
	FindPickField1       FindOptions = 1 << 5
	FindBackwards        FindOptions = 1 << 7
)

// StorageIterator is the InteropInterface System.Storage.Find leaves on the
// stack; System.Iterator.Next/Value drive it.
type StorageIterator struct {
	rows    []storageRow
	pos     int
	opts    FindOptions
	prefLen int
}

type storageRow struct {
	key   []byte
	value []byte
}

func storageFind(ic *Context) error {
	sc, err := popStorageContext(ic)
	if err != nil {
		return err
	}
	prefixItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	optsItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	prefix, err := prefixItem.TryBytes()
	if err != nil {
		return err
	}
	optsInt, err := optsItem.TryInteger()
	if err != nil {
		return err
	}
	opts := FindOptions(optsInt.Int64())

	var rows []storageRow
	ic.DAO.Seek(sc.ID, prefix, opts&FindBackwards != 0, func(k, v []byte) bool {
		rows = append(rows, storageRow{key: append([]byte(nil), k...), value: append([]byte(nil), v...)})
		return true
	})
	it := &StorageIterator{rows: rows, pos: -1, opts: opts, prefLen: len(prefix)}
	ic.VM.Estack().Push(stackitem.NewInterop(it))
	return nil
}
