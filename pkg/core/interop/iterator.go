package interop

import (
	"fmt"

	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// RegisterIterator adds the System.Iterator.* syscalls.
func RegisterIterator(ic *Context) {
	reg := func(name string, price int64, flags callflag.CallFlag, f func(*Context) error) {
		ic.RegisterFunction(&Function{
			ID: interopnames.ToID(name), Name: name, Func: f,
			Price: price, RequiredFlags: flags,
		})
	}
	reg(interopnames.SystemIteratorNext, 1<<15, callflag.NoneFlag, iteratorNext)
	reg(interopnames.SystemIteratorValue, 1<<4, callflag.NoneFlag, iteratorValue)
}

func popIterator(ic *Context) (*StorageIterator, error) {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return nil, err
	}
	it, ok := item.Value().(*StorageIterator)
	if !ok {
		return nil, fmt.Errorf("%w: expected iterator", stackitem.ErrInvalidCast)
	}
	return it, nil
}

func iteratorNext(ic *Context) error {
	it, err := popIterator(ic)
	if err != nil {
		return err
	}
	it.pos++
	ic.VM.Estack().Push(stackitem.NewBool(it.pos < len(it.rows)))
	return nil
}

func iteratorValue(ic *Context) error {
	it, err := popIterator(ic)
	if err != nil {
		return err
	}
	if it.pos < 0 || it.pos >= len(it.rows) {
		return fmt.Errorf("iterator out of range")
	}
	row := it.rows[it.pos]
	k := row.key
	if it.opts&FindRemovePrefix != 0 {
		k = k[it.prefLen:]
	}
	switch {
	case it.opts&FindKeysOnly != 0:
		ic.VM.Estack().Push(stackitem.NewByteArray(k))
	case it.opts&FindValuesOnly != 0:
		ic.VM.Estack().Push(valueItem(it.opts, row.value))
	default:
		ic.VM.Estack().Push(stackitem.NewStructItem([]stackitem.Item{
			stackitem.NewByteArray(k),
			valueItem(it.opts, row.value),
		}))
	}
	return nil
}

func valueItem(opts FindOptions, v []byte) stackitem.Item {
	if opts&FindDeserialize != 0 {
		if item, err := stackitem.DeserializeItem(v); err == nil {
			if opts&(FindPickField0|FindPickField1) != 0 {
				if arr, ok := item.(*stackitem.Struct); ok {
					idx := 0
					if opts&FindPickField1 != 0 {
						idx = 1
					}
					if idx < arr.Len() {
						return arr.At(idx)
					}
				}
			}
			return item
		}
	}
	return stackitem.NewByteArray(v)
}
