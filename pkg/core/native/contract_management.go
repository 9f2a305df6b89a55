package native

import (
	"fmt"

	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/smartcontract/manifest"
	"github.com/n3core/node/pkg/smartcontract/nef"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// ContractManagementID is the fixed negative id reserved for this native.
const ContractManagementID = -1

// ContractManagement implements contract deployment/update/destroy, grounded on the reference's
// ManagementContract.
type ContractManagement struct {
	md  *interop.ContractMD
	hash util.Uint160

	minimumDeploymentFee func(*interop.Context) int64
}

// NewContractManagement builds the native, deriving its fixed hash from
// its name the same way every native contract is addressed.
func NewContractManagement() *ContractManagement {
	h := smartcontract.CreateNativeContractHash("ContractManagement")
	return &ContractManagement{
		hash: h,
		md: &interop.ContractMD{
			ID:   ContractManagementID,
			Hash: h,
			Name: "ContractManagement",
			Methods: []interop.MethodDesc{
				method("deploy", 0, callflag.States|callflag.AllowNotify),
				method("update", 0, callflag.States|callflag.AllowNotify),
				method("destroy", 1<<15, callflag.States|callflag.AllowNotify),
				method("getContract", 1<<15, callflag.ReadStates),
				method("getContractById", 1<<15, callflag.ReadStates),
				method("getMinimumDeploymentFee", 1<<15, callflag.ReadStates),
				method("setMinimumDeploymentFee", 1<<15, callflag.States),
				method("hasMethod", 1<<15, callflag.ReadStates),
			},
		},
	}
}

// Metadata implements interop.Contract.
func (c *ContractManagement) Metadata() *interop.ContractMD { return c.md }

const prefixMinimumDeploymentFee = 0x14

// OnPersist implements interop.Contract: nothing to roll over.
func (c *ContractManagement) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements interop.Contract.
func (c *ContractManagement) PostPersist(ic *interop.Context) error { return nil }

// Initialize seeds the minimum deployment fee storage row at genesis.
func (c *ContractManagement) Initialize(ic *interop.Context) error {
	return ic.DAO.PutStorageItem(c.md.ID, []byte{prefixMinimumDeploymentFee}, encodeInt64(10_00000000))
}

func (c *ContractManagement) minimumFee(ic *interop.Context) int64 {
	b, err := ic.DAO.GetStorageItem(c.md.ID, []byte{prefixMinimumDeploymentFee})
	if err != nil {
		return 10_00000000
	}
	return decodeInt64(b)
}

// Invoke implements interop.Contract.
func (c *ContractManagement) Invoke(ic *interop.Context, method string, args []stackitem.Item) (stackitem.Item, error) {
	switch method {
	case "deploy":
		if len(args) < 2 {
			return nil, fmt.Errorf("deploy requires nef and manifest arguments")
		}
		var data stackitem.Item
		if len(args) > 2 {
			data = args[2]
		}
		return c.deploy(ic, args[0], args[1], data)
	case "update":
		if len(args) < 2 {
			return nil, fmt.Errorf("update requires nef and manifest arguments")
		}
		var data stackitem.Item
		if len(args) > 2 {
			data = args[2]
		}
		return nil, c.update(ic, args[0], args[1], data)
	case "destroy":
		return nil, c.destroy(ic)
	case "getContract":
		h, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		cs, err := ic.DAO.GetContractState(h)
		if err != nil {
			return stackitem.Null{}, nil
		}
		return contractStateItem(cs), nil
	case "getContractById":
		id, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		cs, err := ic.DAO.GetContractByID(int32(id))
		if err != nil {
			return stackitem.Null{}, nil
		}
		return contractStateItem(cs), nil
	case "getMinimumDeploymentFee":
		return bigItem(bigFromInt64(c.minimumFee(ic))), nil
	case "setMinimumDeploymentFee":
		if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
			return nil, err
		}
		fee, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		return nil, ic.DAO.PutStorageItem(c.md.ID, []byte{prefixMinimumDeploymentFee}, encodeInt64(fee))
	case "hasMethod":
		h, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		name, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		pc, err := argInt64(args, 2)
		if err != nil {
			return nil, err
		}
		cs, err := ic.DAO.GetContractState(h)
		if err != nil {
			return boolItem(false), nil
		}
		return boolItem(cs.Manifest.ABI.GetMethod(name, int(pc)) != nil), nil
	default:
		return nil, errUnknownMethod("ContractManagement", method)
	}
}

func (c *ContractManagement) deploy(ic *interop.Context, nefItem, manifestItem, data stackitem.Item) (stackitem.Item, error) {
	if ic.Tx == nil {
		return nil, fmt.Errorf("deploy is only allowed during Application trigger")
	}
	nefBytes, err := nefItem.TryBytes()
	if err != nil {
		return nil, err
	}
	manifestBytes, err := manifestItem.TryBytes()
	if err != nil {
		return nil, err
	}
	if len(manifestBytes) > manifest.MaxManifestSize {
		return nil, manifest.ErrTooLarge
	}
	var nf nef.File
	nr := nefReader(nefBytes)
	nf.DecodeBinary(nr)
	if nr.Err != nil {
		return nil, nr.Err
	}
	var mf manifest.Manifest
	if err := manifest.Unmarshal(manifestBytes, &mf); err != nil {
		return nil, err
	}
	sender := ic.Tx.Sender()
	h := smartcontract.CreateContractHash(sender, nf.Checksum, mf.Name)
	if _, err := ic.DAO.GetContractState(h); err == nil {
		return nil, fmt.Errorf("contract %s already exists", h)
	}
	if err := mf.IsValid(h); err != nil {
		return nil, err
	}
	id, err := ic.DAO.GetNextContractID()
	if err != nil {
		return nil, err
	}
	if err := validateMethodTokens(ic, nf.Tokens); err != nil {
		return nil, err
	}
	minFee := c.minimumFee(ic)
	if !ic.VM.AddGas(minFee) {
		return nil, fmt.Errorf("out of gas")
	}
	cs := &state.Contract{ID: id, Hash: h, NEF: nf, Manifest: mf}
	if err := ic.DAO.PutContractState(cs); err != nil {
		return nil, err
	}
	if err := c.runDeployHook(ic, cs, data, false); err != nil {
		return nil, err
	}
	ic.AddNotification(c.hash, "Deploy", stackitem.NewArray([]stackitem.Item{uint160Item(h)}))
	return contractStateItem(cs), nil
}

func (c *ContractManagement) update(ic *interop.Context, nefItem, manifestItem, data stackitem.Item) error {
	caller := ic.VM.GetCurrentScriptHash()
	cs, err := ic.DAO.GetContractState(caller)
	if err != nil {
		return fmt.Errorf("contract %s not found", caller)
	}
	if nefB, err := nefItem.TryBytes(); err == nil && len(nefB) > 0 {
		var nf nef.File
		nr := nefReader(nefB)
		nf.DecodeBinary(nr)
		if nr.Err != nil {
			return nr.Err
		}
		if err := validateMethodTokens(ic, nf.Tokens); err != nil {
			return err
		}
		cs.NEF = nf
	}
	if mfB, err := manifestItem.TryBytes(); err == nil && len(mfB) > 0 {
		if len(mfB) > manifest.MaxManifestSize {
			return manifest.ErrTooLarge
		}
		var mf manifest.Manifest
		if err := manifest.Unmarshal(mfB, &mf); err != nil {
			return err
		}
		if err := mf.IsValid(cs.Hash); err != nil {
			return err
		}
		cs.Manifest = mf
	}
	cs.UpdateCounter++
	if err := ic.DAO.PutContractState(cs); err != nil {
		return err
	}
	if err := c.runDeployHook(ic, cs, data, true); err != nil {
		return err
	}
	ic.AddNotification(c.hash, "Update", stackitem.NewArray([]stackitem.Item{uint160Item(cs.Hash)}))
	return nil
}

func (c *ContractManagement) destroy(ic *interop.Context) error {
	h := ic.VM.GetCurrentScriptHash()
	cs, err := ic.DAO.GetContractState(h)
	if err != nil {
		return fmt.Errorf("contract %s not found", h)
	}
	var keys [][]byte
	ic.DAO.Seek(cs.ID, nil, false, func(k, _ []byte) bool {
		keys = append(keys, append([]byte(nil), k...))
		return true
	})
	for _, k := range keys {
		if err := ic.DAO.DeleteStorageItem(cs.ID, k); err != nil {
			return err
		}
	}
	if err := ic.DAO.DeleteContractState(h); err != nil {
		return err
	}
	ic.AddNotification(c.hash, "Destroy", stackitem.NewArray([]stackitem.Item{uint160Item(h)}))
	return nil
}

// runDeployHook invokes the contract's optional _deploy(data, update)
// method after Deploy/Update persists the new state.
func (c *ContractManagement) runDeployHook(ic *interop.Context, cs *state.Contract, data stackitem.Item, update bool) error {
	md := cs.Manifest.ABI.GetMethod("_deploy", 2)
	if md == nil {
		return nil
	}
	if data == nil {
		data = stackitem.Null{}
	}
	script, err := cs.NEF.Bytes()
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(boolItem(update))
	ic.VM.Estack().Push(data)
	return ic.VM.LoadScriptWithEntry(script, md.Offset, cs.Hash, byte(callflag.All))
}

// validateMethodTokens checks every NEF method token against its target
// contract's manifest ABI.
func validateMethodTokens(ic *interop.Context, tokens []nef.MethodToken) error {
	for _, t := range tokens {
		if _, isNative := ic.Natives[t.Hash]; isNative {
			continue
		}
		cs, err := ic.DAO.GetContractState(t.Hash)
		if err != nil {
			return fmt.Errorf("method token target %s not found", t.Hash)
		}
		if cs.Manifest.ABI.GetMethod(t.Method, int(t.ParamCount)) == nil {
			return fmt.Errorf("method token %s.%s/%d not found in target ABI", t.Hash, t.Method, t.ParamCount)
		}
	}
	return nil
}

func contractStateItem(cs *state.Contract) stackitem.Item {
	nefBytes, _ := cs.NEF.Bytes()
	mfBytes, _ := cs.Manifest.ToCanonicalJSON()
	return stackitem.NewStructItem([]stackitem.Item{
		bigItem(bigFromInt64(int64(cs.ID))),
		bigItem(bigFromInt64(int64(cs.UpdateCounter))),
		uint160Item(cs.Hash),
		bytesItem(nefBytes),
		bytesItem(mfBytes),
	})
}
