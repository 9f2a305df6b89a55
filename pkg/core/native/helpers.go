// Package native implements the in-process method-table contracts the
// Application Engine dispatches to instead of interpreting bytecode: ContractManagement, NeoToken, GasToken,
// PolicyContract, RoleManagement, OracleContract, LedgerContract, StdLib
// and CryptoLib. Each native implements interop.Contract; the dispatcher
// in interop/contract.go calls Invoke after popping and converting
// arguments with the VM's own conversion rules.
package native

import (
	"fmt"
	"math/big"

	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/smartcontract/manifest"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

func bigFromInt64(n int64) *big.Int { return big.NewInt(n) }

// encodeInt64/decodeInt64 store a plain scalar storage row (committee
// parameters, counters) the way the reference natives do: a little-endian
// fixed-width integer, not a BigInteger stack-item encoding.
func encodeInt64(n int64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(n >> (8 * i))
	}
	return b
}

func decodeInt64(b []byte) int64 {
	var n int64
	for i := 0; i < len(b) && i < 8; i++ {
		n |= int64(b[i]) << (8 * i)
	}
	return n
}

func nefReader(b []byte) *io.BinReader { return io.NewBinReaderFromBuf(b) }

// currentHeight returns the index of the block currently being applied,
// falling back to one past the chain's persisted height when no block is
// attached to the context (e.g. a read-only RPC-style invocation).
func currentHeight(ic *interop.Context) uint32 {
	if ic.Block != nil {
		return ic.Block.Index
	}
	return ic.Chain.BlockHeight() + 1
}

// errUnknownMethod builds the error Invoke returns when asked for a method
// the native doesn't expose.
func errUnknownMethod(contract, method string) error {
	return fmt.Errorf("native %s: unknown method %q", contract, method)
}

func argUint160(args []stackitem.Item, i int) (util.Uint160, error) {
	b, err := args[i].TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

func argUint256(args []stackitem.Item, i int) (util.Uint256, error) {
	b, err := args[i].TryBytes()
	if err != nil {
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(b)
}

func argBigInt(args []stackitem.Item, i int) (*big.Int, error) {
	return args[i].TryInteger()
}

func argInt64(args []stackitem.Item, i int) (int64, error) {
	n, err := args[i].TryInteger()
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

func argBytes(args []stackitem.Item, i int) ([]byte, error) {
	return args[i].TryBytes()
}

func argString(args []stackitem.Item, i int) (string, error) {
	b, err := args[i].TryBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func argBool(args []stackitem.Item, i int) (bool, error) {
	return args[i].TryBool()
}

// argUint160OrNil treats a Null item as "no value" (e.g. NeoToken.vote
// target, candidate = null meaning "withdraw vote").
func argUint160OrNil(args []stackitem.Item, i int) (*util.Uint160, error) {
	if _, ok := args[i].(stackitem.Null); ok {
		return nil, nil
	}
	u, err := argUint160(args, i)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func uint160Item(u util.Uint160) stackitem.Item { return stackitem.NewByteArray(u.BytesBE()) }
func uint256Item(u util.Uint256) stackitem.Item { return stackitem.NewByteArray(u.BytesBE()) }
func bigItem(v *big.Int) stackitem.Item {
	if v == nil {
		v = big.NewInt(0)
	}
	return stackitem.NewBigInteger(v)
}
func boolItem(b bool) stackitem.Item   { return stackitem.NewBool(b) }
func bytesItem(b []byte) stackitem.Item { return stackitem.NewByteArray(b) }
func stringItem(s string) stackitem.Item { return stackitem.NewByteArray([]byte(s)) }

// requireCommittee fails the call unless it's witnessed by the network's
// current committee multisig account.
func requireCommittee(ic *interop.Context, committeeHash util.Uint160) error {
	if !ic.CheckWitnessAccount(committeeHash) {
		return fmt.Errorf("committee witness required")
	}
	return nil
}

// method builds an interop.MethodDesc.
func method(name string, price int64, flags callflag.CallFlag, params ...smartcontract.ParamType) interop.MethodDesc {
	return interop.MethodDesc{Name: name, Price: price, RequiredFlags: flags}
}

// abiMethod renders a MethodDesc into the manifest ABI entry used when
// ContractManagement installs the native's synthetic contract state.
func abiMethod(name string, offset int, ret smartcontract.ParamType, safe bool, params ...manifest.Parameter) manifest.Method {
	return manifest.Method{Name: name, Offset: offset, Parameters: params, ReturnType: ret, Safe: safe}
}

func param(name string, t smartcontract.ParamType) manifest.Parameter {
	return manifest.Parameter{Name: name, Type: t}
}
