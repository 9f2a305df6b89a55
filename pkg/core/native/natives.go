package native

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/n3core/node/pkg/config"
	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/smartcontract/manifest"
	"github.com/n3core/node/pkg/smartcontract/nef"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/opcode"
)

// genesisGASSupply is the GAS minted at genesis. InitializeGenesis credits
// all of it to the committee account it is given;
// ProtocolConfiguration.InitialGASSupply is not consulted.
const genesisGASSupply = 30_000_000_00000000

// Set is the full collection of native contracts installed at genesis,
// keyed both by name (for wiring) and by hash (for dispatch).
type Set struct {
	ContractManagement *ContractManagement
	Policy             *PolicyContract
	Neo                *NeoToken
	Gas                *GasToken
	RoleManagement     *RoleManagement
	Oracle             *OracleContract
	Ledger             *LedgerContract
	StdLib             *StdLib
	CryptoLib          *CryptoLib

	byHash map[util.Uint160]interop.Contract
	all    []interop.Contract
}

// NewSet constructs every native contract, wires the cross-references
// between them (NeoToken needs GasToken for committee GAS distribution,
// OracleContract needs GasToken for fee burning/node rewards and
// RoleManagement for resolving the Oracle role), and derives the fixed
// hash each one is dispatched at.
func NewSet(cfg *config.ProtocolConfiguration) (*Set, error) {
	standby := make(keys.PublicKeys, len(cfg.StandbyCommittee))
	for i, s := range cfg.StandbyCommittee {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("native: parsing StandbyCommittee[%d]: %w", i, err)
		}
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("native: parsing StandbyCommittee[%d]: %w", i, err)
		}
		standby[i] = pub
	}

	s := &Set{
		ContractManagement: NewContractManagement(),
		Policy:             NewPolicyContract(),
		Neo:                NewNeoToken(standby, len(standby), int(cfg.ValidatorsCount)),
		Gas:                NewGasToken(),
		RoleManagement:     NewRoleManagement(),
		Oracle:             NewOracleContract(),
		Ledger:             NewLedgerContract(),
		StdLib:             NewStdLib(),
		CryptoLib:          NewCryptoLib(),
	}
	s.Neo.SetGasToken(s.Gas)
	s.Oracle.SetGasToken(s.Gas)
	s.Oracle.SetRoleManagement(s.RoleManagement)

	s.all = []interop.Contract{
		s.ContractManagement, s.Policy, s.Neo, s.Gas, s.RoleManagement,
		s.Oracle, s.Ledger, s.StdLib, s.CryptoLib,
	}
	s.byHash = make(map[util.Uint160]interop.Contract, len(s.all))
	for _, c := range s.all {
		s.byHash[c.Metadata().Hash] = c
	}
	return s, nil
}

// All returns every native in a fixed order (ContractManagement, Policy,
// NeoToken, GasToken, RoleManagement, Oracle, Ledger, StdLib, CryptoLib),
// the order OnPersist/PostPersist and genesis installation run in.
func (s *Set) All() []interop.Contract { return s.all }

// ByHash exposes the dispatch table interop.Context.Natives expects.
func (s *Set) ByHash() map[util.Uint160]interop.Contract { return s.byHash }

type genesisInitializer interface {
	Initialize(ic *interop.Context) error
}

// InitializeGenesis installs every native's synthetic contract state and
// runs its one-time storage seeding, in the order the reference genesis
// block processes them.
func (s *Set) InitializeGenesis(ic *interop.Context, committee util.Uint160) error {
	for _, c := range s.all {
		if err := installNativeState(ic, c.Metadata()); err != nil {
			return fmt.Errorf("native: installing %s: %w", c.Metadata().Name, err)
		}
	}
	for _, c := range s.all {
		switch n := c.(type) {
		case *GasToken:
			if err := n.Initialize(ic, committee, big.NewInt(genesisGASSupply)); err != nil {
				return fmt.Errorf("native: initializing GasToken: %w", err)
			}
		case genesisInitializer:
			if err := n.Initialize(ic); err != nil {
				return fmt.Errorf("native: initializing %s: %w", c.Metadata().Name, err)
			}
		}
	}
	return nil
}

// installNativeState writes the state.Contract record ContractManagement
// would otherwise produce for a deployed contract, so GetContractState,
// System.Contract.Call's permission check, and RPC introspection all see
// natives the same way they see user contracts. The native has no real bytecode: its script is
// a single RET, and its manifest ABI is rendered from ContractMD.Methods
// with untyped parameters, since MethodDesc doesn't carry per-parameter
// types (documented simplification, see DESIGN.md).
func installNativeState(ic *interop.Context, md *interop.ContractMD) error {
	script := []byte{byte(opcode.RET)}
	n := nef.NewFile("n3core-native", script)

	methods := make([]manifest.Method, len(md.Methods))
	for i, m := range md.Methods {
		methods[i] = manifest.Method{
			Name:       m.Name,
			Offset:     0,
			Parameters: nil,
			ReturnType: 0, // smartcontract.AnyType
			Safe:       m.RequiredFlags&callflag.States == 0,
		}
	}
	mf := manifest.DefaultManifest(md.Name)
	mf.ABI.Methods = methods

	cs := &state.Contract{
		ID:       md.ID,
		Hash:     md.Hash,
		NEF:      *n,
		Manifest: *mf,
	}
	return ic.DAO.PutContractState(cs)
}
