package transaction

import (
	"errors"

	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

// WitnessAction is the outcome a WitnessRule contributes when its
// condition matches.
type WitnessAction byte

const (
	WitnessDeny  WitnessAction = 0
	WitnessAllow WitnessAction = 1
)

// WitnessConditionType identifies the shape of a WitnessCondition node.
type WitnessConditionType byte

// The reference condition primitives.
const (
	ConditionBoolean          WitnessConditionType = 0x00
	ConditionNot              WitnessConditionType = 0x01
	ConditionAnd              WitnessConditionType = 0x02
	ConditionOr               WitnessConditionType = 0x03
	ConditionScriptHash       WitnessConditionType = 0x18
	ConditionGroup            WitnessConditionType = 0x19
	ConditionCalledByEntry    WitnessConditionType = 0x20
	ConditionCalledByContract WitnessConditionType = 0x28
	ConditionCalledByGroup    WitnessConditionType = 0x29
)

// WitnessCondition is a boolean expression tree evaluated over the current
// call chain when a signer's scope includes WitnessRules.
type WitnessCondition struct {
	Type       WitnessConditionType
	Boolean    bool
	Hash       util.Uint160
	Group      *keys.PublicKey
	Expression *WitnessCondition   // Not
	Expressions []*WitnessCondition // And/Or
}

// Match evaluates the condition against the current call chain, expressed
// as: entry, the hash of the currently executing script (passed through to
// nested conditions; no condition type compares against it), calling, the
// hash of the script that invoked it (nil if it is the entry script), and
// callingGroups, the set of manifest groups belonging to calling.
func (c *WitnessCondition) Match(entry util.Uint160, calling *util.Uint160, callingGroups []*keys.PublicKey) bool {
	switch c.Type {
	case ConditionBoolean:
		return c.Boolean
	case ConditionNot:
		return !c.Expression.Match(entry, calling, callingGroups)
	case ConditionAnd:
		for _, e := range c.Expressions {
			if !e.Match(entry, calling, callingGroups) {
				return false
			}
		}
		return true
	case ConditionOr:
		for _, e := range c.Expressions {
			if e.Match(entry, calling, callingGroups) {
				return true
			}
		}
		return false
	case ConditionCalledByEntry:
		return calling == nil
	case ConditionScriptHash:
		return calling != nil && *calling == c.Hash
	case ConditionCalledByContract:
		return calling != nil && *calling == c.Hash
	case ConditionGroup, ConditionCalledByGroup:
		for _, g := range callingGroups {
			if g.Equal(c.Group) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// EncodeBinary implements io.Serializable.
func (c *WitnessCondition) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(c.Type))
	switch c.Type {
	case ConditionBoolean:
		w.WriteBool(c.Boolean)
	case ConditionNot:
		c.Expression.EncodeBinary(w)
	case ConditionAnd, ConditionOr:
		w.WriteVarUint(uint64(len(c.Expressions)))
		for _, e := range c.Expressions {
			e.EncodeBinary(w)
		}
	case ConditionScriptHash, ConditionCalledByContract:
		w.WriteBytes(c.Hash.BytesLE())
	case ConditionGroup, ConditionCalledByGroup:
		c.Group.EncodeBinary(w)
	case ConditionCalledByEntry:
	}
}

// DecodeBinary implements io.Serializable.
func (c *WitnessCondition) DecodeBinary(r *io.BinReader) {
	c.Type = WitnessConditionType(r.ReadB())
	if r.Err != nil {
		return
	}
	switch c.Type {
	case ConditionBoolean:
		c.Boolean = r.ReadBool()
	case ConditionNot:
		c.Expression = new(WitnessCondition)
		c.Expression.DecodeBinary(r)
	case ConditionAnd, ConditionOr:
		n := r.ReadVarUint()
		if r.Err != nil {
			return
		}
		if n > 16 {
			r.Err = errors.New("too many sub-conditions")
			return
		}
		c.Expressions = make([]*WitnessCondition, n)
		for i := range c.Expressions {
			c.Expressions[i] = new(WitnessCondition)
			c.Expressions[i].DecodeBinary(r)
			if r.Err != nil {
				return
			}
		}
	case ConditionScriptHash, ConditionCalledByContract:
		c.Hash.DecodeBinary(r)
	case ConditionGroup, ConditionCalledByGroup:
		c.Group = new(keys.PublicKey)
		c.Group.DecodeBinary(r)
	case ConditionCalledByEntry:
	default:
		r.Err = errors.New("unknown witness condition type")
	}
}

// WitnessRule pairs a condition with the action to take when it matches.
type WitnessRule struct {
	Action    WitnessAction
	Condition *WitnessCondition
}

// EncodeBinary implements io.Serializable.
func (r *WitnessRule) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(r.Action))
	r.Condition.EncodeBinary(w)
}

// DecodeBinary implements io.Serializable.
func (r *WitnessRule) DecodeBinary(br *io.BinReader) {
	r.Action = WitnessAction(br.ReadB())
	r.Condition = new(WitnessCondition)
	r.Condition.DecodeBinary(br)
}
