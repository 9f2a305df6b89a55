package native

import (
	"fmt"
	"sort"

	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// RoleManagementID is the fixed negative id reserved for this native.
const RoleManagementID = -6

// Role identifies one of the designation sets RoleManagement tracks.
type Role byte

// Designation roles.
const (
	RoleStateValidator Role = 4
	RoleOracle         Role = 8
	RoleNeoFSAlphabet  Role = 16
	RoleP2PNotary      Role = 32
)

// RoleManagement maps (role, designation-block-index) to a sorted public
// key list, committee-witnessed on write.
type RoleManagement struct {
	md   *interop.ContractMD
	hash util.Uint160
}

// NewRoleManagement builds the native.
func NewRoleManagement() *RoleManagement {
	h := smartcontract.CreateNativeContractHash("RoleManagement")
	return &RoleManagement{
		hash: h,
		md: &interop.ContractMD{
			ID: RoleManagementID, Hash: h, Name: "RoleManagement",
			Methods: []interop.MethodDesc{
				method("getDesignatedByRole", 1<<15, callflag.ReadStates),
				method("designateAsRole", 1<<15, callflag.States|callflag.AllowNotify),
			},
		},
	}
}

// Metadata implements interop.Contract.
func (r *RoleManagement) Metadata() *interop.ContractMD { return r.md }

// OnPersist implements interop.Contract: designations are write-only state,
// nothing to roll over automatically.
func (r *RoleManagement) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements interop.Contract.
func (r *RoleManagement) PostPersist(ic *interop.Context) error { return nil }

// Invoke implements interop.Contract.
func (r *RoleManagement) Invoke(ic *interop.Context, m string, args []stackitem.Item) (stackitem.Item, error) {
	switch m {
	case "getDesignatedByRole":
		role, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		height, err := argInt64(args, 1)
		if err != nil {
			return nil, err
		}
		pubs, err := r.getDesignated(ic, Role(role), uint32(height))
		if err != nil {
			return nil, err
		}
		return pubKeysItem(pubs), nil
	case "designateAsRole":
		role, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		arr, ok := args[1].(*stackitem.Array)
		if !ok {
			return nil, fmt.Errorf("designateAsRole: nodes must be an array")
		}
		pubs := make(keys.PublicKeys, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			b, err := arr.At(i).TryBytes()
			if err != nil {
				return nil, err
			}
			pub, err := keys.NewPublicKeyFromBytes(b)
			if err != nil {
				return nil, err
			}
			pubs[i] = pub
		}
		return nil, r.designate(ic, Role(role), pubs)
	default:
		return nil, errUnknownMethod("RoleManagement", m)
	}
}

func roleKey(role Role, height uint32) []byte {
	k := make([]byte, 5)
	k[0] = byte(role)
	k[1] = byte(height >> 24)
	k[2] = byte(height >> 16)
	k[3] = byte(height >> 8)
	k[4] = byte(height)
	return k
}

// designate records pubs as the designated set for role, effective as of
// the next block.
func (r *RoleManagement) designate(ic *interop.Context, role Role, pubs keys.PublicKeys) error {
	if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
		return err
	}
	if len(pubs) == 0 || len(pubs) > 255 {
		return fmt.Errorf("designateAsRole: invalid node count %d", len(pubs))
	}
	sort.Sort(pubs)
	w := io.NewBufBinWriter()
	w.WriteVarUint(uint64(len(pubs)))
	for _, p := range pubs {
		w.WriteBytes(p.Bytes())
	}
	if w.Err != nil {
		return w.Err
	}
	height := currentHeight(ic) + 1
	if err := ic.DAO.PutStorageItem(r.md.ID, roleKey(role, height), w.Bytes()); err != nil {
		return err
	}
	ic.AddNotification(r.hash, "Designation", stackitem.NewArray([]stackitem.Item{
		bigItem(bigFromInt64(int64(role))), bigItem(bigFromInt64(int64(height))),
	}))
	return nil
}

// GetDesignated exposes the designation query to callers outside native
// dispatch (the block processor's "oracle responses only from designated
// oracle nodes" check at transaction validation time).
func (r *RoleManagement) GetDesignated(ic *interop.Context, role Role, height uint32) (keys.PublicKeys, error) {
	return r.getDesignated(ic, role, height)
}

// getDesignated returns the set active at the given height: the most
// recent designation recorded at or before it.
func (r *RoleManagement) getDesignated(ic *interop.Context, role Role, height uint32) (keys.PublicKeys, error) {
	var best []byte
	var bestHeight uint32
	found := false
	ic.DAO.Seek(r.md.ID, []byte{byte(role)}, false, func(k, v []byte) bool {
		if len(k) != 5 {
			return true
		}
		h := uint32(k[1])<<24 | uint32(k[2])<<16 | uint32(k[3])<<8 | uint32(k[4])
		if h > height {
			return true
		}
		if !found || h > bestHeight {
			best = v
			bestHeight = h
			found = true
		}
		return true
	})
	if !found {
		return nil, nil
	}
	r2 := io.NewBinReaderFromBuf(best)
	count := r2.ReadVarUint()
	out := make(keys.PublicKeys, count)
	for i := range out {
		buf := make([]byte, keys.PublicKeySize)
		r2.ReadBytes(buf)
		if r2.Err != nil {
			return nil, r2.Err
		}
		pub, err := keys.NewPublicKeyFromBytes(buf)
		if err != nil {
			return nil, err
		}
		out[i] = pub
	}
	return out, r2.Err
}
