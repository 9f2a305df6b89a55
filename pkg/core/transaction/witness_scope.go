// Package transaction implements the wire-exact Transaction/Signer/
// Witness/Attribute data model.
package transaction

import (
	"fmt"
	"strings"
)

// WitnessScope restricts which contracts a signer's witness is considered
// valid for.
type WitnessScope byte

const (
	// None means the signer's witness is only valid for the entry script
	// itself signing nothing else (used for fee-only signers).
	None WitnessScope = 0
	// CalledByEntry restricts validity to calls made directly by the
	// entry script (not nested contract-to-contract calls).
	CalledByEntry WitnessScope = 0x01
	// CustomContracts restricts validity to an explicit allow-list of
	// contract hashes (Signer.AllowedContracts).
	CustomContracts WitnessScope = 0x10
	// CustomGroups restricts validity to contracts whose manifest
	// declares membership in one of Signer.AllowedGroups.
	CustomGroups WitnessScope = 0x20
	// WitnessRules evaluates Signer.Rules, a boolean expression tree over
	// the call chain (And/Or/Not/CalledByContract/CalledByGroup/
	// ScriptHash/Group/Boolean primitives).
	WitnessRules WitnessScope = 0x40
	// Global grants the witness unconditionally everywhere; cannot be
	// combined with any other scope.
	Global WitnessScope = 0x80
)

var scopeNames = []struct {
	s WitnessScope
	n string
}{
	{Global, "Global"},
	{CalledByEntry, "CalledByEntry"},
	{CustomContracts, "CustomContracts"},
	{CustomGroups, "CustomGroups"},
	{WitnessRules, "WitnessRules"},
}

// ScopesFromByte validates a raw scope byte, rejecting Global combined
// with any other bit and any unrecognized bit.
func ScopesFromByte(b byte) (WitnessScope, error) {
	s := WitnessScope(b)
	if s&Global != 0 && s != Global {
		return 0, fmt.Errorf("Global scope can not be combined with other scopes")
	}
	var known WitnessScope
	for _, e := range scopeNames {
		known |= e.s
	}
	if s&^known != 0 {
		return 0, fmt.Errorf("invalid scope byte 0x%x", b)
	}
	return s, nil
}

// ScopesFromString parses a comma-separated scope list, deduplicating and
// rejecting Global mixed with anything else.
func ScopesFromString(s string) (WitnessScope, error) {
	if s == "" {
		return 0, fmt.Errorf("empty scope string")
	}
	var result WitnessScope
	seenGlobal := false
	seenOther := false
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		found := false
		for _, e := range scopeNames {
			if e.n == part {
				if e.s == Global {
					seenGlobal = true
				} else {
					seenOther = true
				}
				result |= e.s
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("invalid scope %q", part)
		}
	}
	if seenGlobal && seenOther {
		return 0, fmt.Errorf("Global scope can not be combined with other scopes")
	}
	return result, nil
}

// String renders the scope set in the same comma-separated form
// ScopesFromString parses. The empty set renders as "None", which
// ScopesFromString does not accept.
func (s WitnessScope) String() string {
	if s == None {
		return "None"
	}
	var parts []string
	for _, e := range scopeNames {
		if s&e.s != 0 {
			parts = append(parts, e.n)
		}
	}
	return strings.Join(parts, ",")
}
