package interop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/pkg/core/dao"
	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/core/storage"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/smartcontract/manifest"
	"github.com/n3core/node/pkg/smartcontract/nef"
	"github.com/n3core/node/pkg/smartcontract/trigger"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm"
	"github.com/n3core/node/pkg/vm/emit"
	"github.com/n3core/node/pkg/vm/opcode"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// newStorageVM installs a contract whose script is `script`, registers the
// storage/iterator syscalls and returns a VM ready to run it.
func newStorageVM(t *testing.T, script []byte) (*Context, *vm.VM) {
	d := dao.NewSimple(storage.NewMemoryStore())
	cs := &state.Contract{
		ID:       42,
		Hash:     hash.Hash160(script),
		NEF:      *nef.NewFile("test", script),
		Manifest: *manifest.DefaultManifest("Storage"),
	}
	require.NoError(t, d.PutContractState(cs))

	ic := NewContext(trigger.Application, nil, d, 0, 1, 1, nil, nil, nil)
	RegisterStorage(ic)
	RegisterIterator(ic)
	RegisterRuntime(ic)
	v := ic.SpawnVM(0)
	require.NoError(t, v.LoadScript(script, cs.Hash, byte(callflag.All)))
	return ic, v
}

func storageScript(t *testing.T, build func(w *io.BinWriter)) []byte {
	w := io.NewBufBinWriter()
	build(w.BinWriter)
	require.NoError(t, w.Err)
	return w.Bytes()
}

func TestStoragePutGet(t *testing.T) {
	// Put(ctx, 0x01, 0xAA) then Get(ctx, 0x01) leaves 0xAA on the stack.
	script := storageScript(t, func(w *io.BinWriter) {
		emit.Bytes(w, []byte{0xaa})
		emit.Bytes(w, []byte{0x01})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStoragePut))
		emit.Bytes(w, []byte{0x01})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGet))
	})
	_, v := newStorageVM(t, script)
	require.NoError(t, v.Run())
	require.Equal(t, vm.HaltState, v.State())

	item, err := v.Estack().Pop()
	require.NoError(t, err)
	b, err := item.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, b)
}

func TestStorageDeleteYieldsNull(t *testing.T) {
	script := storageScript(t, func(w *io.BinWriter) {
		emit.Bytes(w, []byte{0xaa})
		emit.Bytes(w, []byte{0x01})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStoragePut))
		emit.Bytes(w, []byte{0x01})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageDelete))
		emit.Bytes(w, []byte{0x01})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGet))
	})
	_, v := newStorageVM(t, script)
	require.NoError(t, v.Run())
	require.Equal(t, vm.HaltState, v.State())

	item, err := v.Estack().Pop()
	require.NoError(t, err)
	assert.True(t, stackitem.IsNull(item))
}

func TestStoragePutRequiresWriteFlag(t *testing.T) {
	script := storageScript(t, func(w *io.BinWriter) {
		emit.Bytes(w, []byte{0xaa})
		emit.Bytes(w, []byte{0x01})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStoragePut))
	})

	d := dao.NewSimple(storage.NewMemoryStore())
	cs := &state.Contract{
		ID:       42,
		Hash:     hash.Hash160(script),
		NEF:      *nef.NewFile("test", script),
		Manifest: *manifest.DefaultManifest("Storage"),
	}
	require.NoError(t, d.PutContractState(cs))

	ic := NewContext(trigger.Verification, nil, d, 0, 1, 1, nil, nil, nil)
	RegisterStorage(ic)
	v := ic.SpawnVM(0)
	require.NoError(t, v.LoadScript(script, cs.Hash, byte(callflag.ReadOnly)))
	_ = v.Run()
	assert.Equal(t, vm.FaultState, v.State())
}

func TestStorageFindIterates(t *testing.T) {
	// Two rows under prefix 0x10, iterated with Find + Next/Value.
	script := storageScript(t, func(w *io.BinWriter) {
		emit.Bytes(w, []byte{0x01})
		emit.Bytes(w, []byte{0x10, 0x01})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStoragePut))
		emit.Bytes(w, []byte{0x02})
		emit.Bytes(w, []byte{0x10, 0x02})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStoragePut))
		// Find(ctx, 0x10, ValuesOnly), then Next once, Value once.
		emit.Int(w, int64(FindValuesOnly))
		emit.Bytes(w, []byte{0x10})
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageGetContext))
		emit.Syscall(w, interopnames.ToID(interopnames.SystemStorageFind))
		emit.Opcode(w, opcode.DUP)
		emit.Syscall(w, interopnames.ToID(interopnames.SystemIteratorNext))
		emit.Opcode(w, opcode.DROP)
		emit.Opcode(w, opcode.DUP)
		emit.Syscall(w, interopnames.ToID(interopnames.SystemIteratorValue))
	})
	_, v := newStorageVM(t, script)
	require.NoError(t, v.Run())
	require.Equal(t, vm.HaltState, v.State())

	item, err := v.Estack().Pop()
	require.NoError(t, err)
	b, err := item.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, b)
}

func TestCheckWitnessAccount(t *testing.T) {
	d := dao.NewSimple(storage.NewMemoryStore())
	signer := util.Uint160{0x01, 0x02}
	other := util.Uint160{0x03}

	ic := NewContext(trigger.Application, nil, d, 0, 1, 1, nil, nil, nil)
	v := ic.SpawnVM(0)
	require.NoError(t, v.LoadScript([]byte{byte(opcode.RET)}, util.Uint160{0xff}, byte(callflag.All)))
	ic.UseSigners([]transaction.Signer{{Account: signer, Scopes: transaction.Global}})
	assert.True(t, ic.CheckWitnessAccount(signer))
	assert.False(t, ic.CheckWitnessAccount(other))
}
