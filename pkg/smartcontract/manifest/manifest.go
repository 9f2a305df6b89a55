// Package manifest implements the contract manifest: the JSON ABI,
// permission, group, and trust metadata stored alongside a deployed
// contract's script. Deserialization tolerates
// unknown fields for forward compatibility; the canonical form used for
// hashing sorts keys at every level, which is why this package marshals
// through github.com/nspcc-dev/go-ordered-json rather than encoding/json
// directly for the hash path.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedjson "github.com/nspcc-dev/go-ordered-json"

	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/util"
)

// MaxManifestSize caps the serialized manifest size accepted by
// ContractManagement.Deploy.
const MaxManifestSize = 64 * 1024

// Parameter describes one method parameter or event argument.
type Parameter struct {
	Name string                  `json:"name"`
	Type smartcontract.ParamType `json:"type"`
}

// Method describes one ABI-exposed method.
type Method struct {
	Name       string                  `json:"name"`
	Offset     int                     `json:"offset"`
	Parameters []Parameter             `json:"parameters"`
	ReturnType smartcontract.ParamType `json:"returntype"`
	Safe       bool                    `json:"safe"`
}

// Event describes one notification a contract may emit.
type Event struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
}

// ABI is the method/event table.
type ABI struct {
	Methods []Method `json:"methods"`
	Events  []Event  `json:"events"`
}

// GetMethod looks up a method by name and parameter arity, as required by
// NEF method-token validation and the native/Call
// dispatcher.
func (a *ABI) GetMethod(name string, paramCount int) *Method {
	for i := range a.Methods {
		if a.Methods[i].Name == name && (paramCount < 0 || len(a.Methods[i].Parameters) == paramCount) {
			return &a.Methods[i]
		}
	}
	return nil
}

// Group is a (public key, signature-over-contract-hash) pair asserting
// that the contract belongs to a developer group.
type Group struct {
	PublicKey *keys.PublicKey `json:"pubkey"`
	Signature []byte          `json:"signature"`
}

// IsValid reports whether the group's signature verifies over h.
func (g *Group) IsValid(h util.Uint160) bool {
	return g.PublicKey.Verify(g.Signature, h.BytesBE())
}

// Permission describes which contracts/methods this contract is allowed
// to call. Contract is either a specific hash, a group public key, or the
// wildcard "*" (represented by a nil Hash/Group with Wildcard true).
type Permission struct {
	Wildcard bool
	Hash     *util.Uint160
	Group    *keys.PublicKey
	// Methods is the allowed method set; a nil slice with MethodsWildcard
	// true means "any method".
	Methods         []string
	MethodsWildcard bool
}

// IsAllowed reports whether calling method on the contract identified by h
// (with group memberships groups) is permitted.
func (p *Permission) IsAllowed(h util.Uint160, groups []*keys.PublicKey, method string) bool {
	switch {
	case p.Wildcard:
	case p.Hash != nil:
		if *p.Hash != h {
			return false
		}
	case p.Group != nil:
		found := false
		for _, g := range groups {
			if g.Equal(p.Group) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	default:
		return false
	}
	if p.MethodsWildcard {
		return true
	}
	for _, m := range p.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Manifest is the full contract manifest.
type Manifest struct {
	Name               string            `json:"name"`
	Groups             []Group           `json:"groups"`
	Features           map[string]any    `json:"features"`
	SupportedStandards []string          `json:"supportedstandards"`
	ABI                ABI               `json:"abi"`
	Permissions        []Permission      `json:"permissions"`
	Trusts             []util.Uint160    `json:"trusts"`
	Extra              json.RawMessage   `json:"extra"`
}

// DefaultManifest returns a manifest granting full call permissions to
// every other contract, the shape the reference compiler emits when a
// contract declares no explicit `permissions` (the shape the
// reference compiler emits by default).
func DefaultManifest(name string) *Manifest {
	return &Manifest{
		Name:               name,
		Groups:             []Group{},
		Features:           map[string]any{},
		SupportedStandards: []string{},
		ABI:                ABI{Methods: []Method{}, Events: []Event{}},
		Permissions:        []Permission{{Wildcard: true, MethodsWildcard: true}},
		Trusts:             []util.Uint160{},
	}
}

// IsValid validates group signatures against h, as required before
// ContractManagement.Deploy persists a manifest.
func (m *Manifest) IsValid(h util.Uint160) error {
	for i := range m.Groups {
		if !m.Groups[i].IsValid(h) {
			return fmt.Errorf("group %d: invalid signature", i)
		}
	}
	return nil
}

// CanCall reports whether this manifest's permissions allow calling
// method on the target contract th (whose groups are targetGroups).
func (m *Manifest) CanCall(th util.Uint160, targetGroups []*keys.PublicKey, method string) bool {
	for i := range m.Permissions {
		if m.Permissions[i].IsAllowed(th, targetGroups, method) {
			return true
		}
	}
	return false
}

// ToCanonicalJSON marshals m using sorted-key encoding, the form used when
// a manifest's bytes contribute to a contract's deploy hash.
func (m *Manifest) ToCanonicalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := orderedjson.NewEncoder(&buf)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ErrTooLarge is returned by Unmarshal when the input exceeds MaxManifestSize.
var ErrTooLarge = errors.New("manifest exceeds maximum size")

// Unmarshal decodes a manifest from JSON, rejecting oversize input but
// otherwise tolerating unknown fields (forward compatibility).
func Unmarshal(data []byte, m *Manifest) error {
	if len(data) > MaxManifestSize {
		return ErrTooLarge
	}
	return json.Unmarshal(data, m)
}
