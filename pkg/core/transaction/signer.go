package transaction

import (
	"errors"

	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

// MaxAttributesPerSigner caps AllowedContracts/AllowedGroups/Rules length.
const MaxAttributesPerSigner = 16

// Signer pairs an account with the call-scope its witness is valid for.
type Signer struct {
	Account          util.Uint160
	Scopes           WitnessScope
	AllowedContracts []util.Uint160
	AllowedGroups    []*keys.PublicKey
	Rules            []*WitnessRule
}

// EncodeBinary implements io.Serializable.
func (s *Signer) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(s.Account.BytesLE())
	w.WriteB(byte(s.Scopes))
	if s.Scopes&CustomContracts != 0 {
		w.WriteVarUint(uint64(len(s.AllowedContracts)))
		for _, c := range s.AllowedContracts {
			w.WriteBytes(c.BytesLE())
		}
	}
	if s.Scopes&CustomGroups != 0 {
		w.WriteVarUint(uint64(len(s.AllowedGroups)))
		for _, g := range s.AllowedGroups {
			g.EncodeBinary(w)
		}
	}
	if s.Scopes&WitnessRules != 0 {
		w.WriteVarUint(uint64(len(s.Rules)))
		for _, r := range s.Rules {
			r.EncodeBinary(w)
		}
	}
}

// DecodeBinary implements io.Serializable.
func (s *Signer) DecodeBinary(r *io.BinReader) {
	s.Account.DecodeBinary(r)
	scope, err := ScopesFromByte(r.ReadB())
	if r.Err != nil {
		return
	}
	if err != nil {
		r.Err = err
		return
	}
	s.Scopes = scope
	if s.Scopes&CustomContracts != 0 {
		n := r.ReadVarUint()
		if r.Err != nil {
			return
		}
		if n > MaxAttributesPerSigner {
			r.Err = errors.New("too many allowed contracts")
			return
		}
		s.AllowedContracts = make([]util.Uint160, n)
		for i := range s.AllowedContracts {
			s.AllowedContracts[i].DecodeBinary(r)
		}
	}
	if s.Scopes&CustomGroups != 0 {
		n := r.ReadVarUint()
		if r.Err != nil {
			return
		}
		if n > MaxAttributesPerSigner {
			r.Err = errors.New("too many allowed groups")
			return
		}
		s.AllowedGroups = make([]*keys.PublicKey, n)
		for i := range s.AllowedGroups {
			s.AllowedGroups[i] = new(keys.PublicKey)
			s.AllowedGroups[i].DecodeBinary(r)
		}
	}
	if s.Scopes&WitnessRules != 0 {
		n := r.ReadVarUint()
		if r.Err != nil {
			return
		}
		if n > MaxAttributesPerSigner {
			r.Err = errors.New("too many witness rules")
			return
		}
		s.Rules = make([]*WitnessRule, n)
		for i := range s.Rules {
			s.Rules[i] = new(WitnessRule)
			s.Rules[i].DecodeBinary(r)
		}
	}
}
