package transaction

import (
	"errors"

	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

// AttrType identifies an attribute's type-specific body.
type AttrType byte

const (
	HighPriority     AttrType = 0x01
	OracleResponseT  AttrType = 0x11
	NotValidBeforeT  AttrType = 0x20
	ConflictsT       AttrType = 0x21
	NotaryAssistedT  AttrType = 0x22
)

// AttrValue is the type-specific body of an attribute.
type AttrValue interface {
	io.Serializable
	AttrType() AttrType
}

// Attribute is a (type, type-specific body) pair.
type Attribute struct {
	Type  AttrType
	Value AttrValue
}

// EncodeBinary implements io.Serializable.
func (a *Attribute) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(a.Type))
	if a.Value != nil {
		a.Value.EncodeBinary(w)
	}
}

// DecodeBinary implements io.Serializable.
func (a *Attribute) DecodeBinary(r *io.BinReader) {
	a.Type = AttrType(r.ReadB())
	if r.Err != nil {
		return
	}
	switch a.Type {
	case HighPriority:
		a.Value = &HighPriorityAttr{}
	case OracleResponseT:
		a.Value = &OracleResponse{}
	case NotValidBeforeT:
		a.Value = &NotValidBefore{}
	case ConflictsT:
		a.Value = &Conflicts{}
	case NotaryAssistedT:
		a.Value = &NotaryAssisted{}
	default:
		r.Err = errors.New("unknown attribute type")
		return
	}
	a.Value.DecodeBinary(r)
}

// HighPriorityAttr marks a transaction for the mempool's priority lane; it
// carries no body.
type HighPriorityAttr struct{}

func (*HighPriorityAttr) AttrType() AttrType        { return HighPriority }
func (*HighPriorityAttr) EncodeBinary(*io.BinWriter) {}
func (*HighPriorityAttr) DecodeBinary(*io.BinReader) {}

// OracleResponseCode is the status an oracle response carries.
type OracleResponseCode byte

const (
	Success              OracleResponseCode = 0x00
	ProtocolNotSupported OracleResponseCode = 0x10
	ConsensusUnreachable OracleResponseCode = 0x12
	NotFound             OracleResponseCode = 0x14
	Timeout              OracleResponseCode = 0x16
	Forbidden            OracleResponseCode = 0x18
	ResponseTooLarge     OracleResponseCode = 0x1a
	InsufficientFunds    OracleResponseCode = 0x1c
	ErrorCode            OracleResponseCode = 0x1f
)

// OracleResponse attribute delivers an oracle answer by request id.
type OracleResponse struct {
	ID     uint64
	Code   OracleResponseCode
	Result []byte
}

func (*OracleResponse) AttrType() AttrType { return OracleResponseT }
func (o *OracleResponse) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(o.ID)
	w.WriteB(byte(o.Code))
	w.WriteVarBytes(o.Result)
}
func (o *OracleResponse) DecodeBinary(r *io.BinReader) {
	o.ID = r.ReadU64LE()
	o.Code = OracleResponseCode(r.ReadB())
	o.Result = r.ReadVarBytes(0xffff)
}

// NotValidBefore attribute rejects the transaction before the chain
// reaches Height.
type NotValidBefore struct {
	Height uint32
}

func (*NotValidBefore) AttrType() AttrType          { return NotValidBeforeT }
func (n *NotValidBefore) EncodeBinary(w *io.BinWriter) { w.WriteU32LE(n.Height) }
func (n *NotValidBefore) DecodeBinary(r *io.BinReader)  { n.Height = r.ReadU32LE() }

// Conflicts attribute declares that Hash must not already be on-chain.
type Conflicts struct {
	Hash util.Uint256
}

func (*Conflicts) AttrType() AttrType { return ConflictsT }
func (c *Conflicts) EncodeBinary(w *io.BinWriter) { c.Hash.EncodeBinary(w) }
func (c *Conflicts) DecodeBinary(r *io.BinReader)  { c.Hash.DecodeBinary(r) }

// NotaryAssisted attribute records how many additional signatures a
// P2P-notary-assisted transaction expects; the notary
// service itself is out of scope, this is the struct only.
type NotaryAssisted struct {
	NKeys byte
}

func (*NotaryAssisted) AttrType() AttrType { return NotaryAssistedT }
func (n *NotaryAssisted) EncodeBinary(w *io.BinWriter) { w.WriteB(n.NKeys) }
func (n *NotaryAssisted) DecodeBinary(r *io.BinReader)  { n.NKeys = r.ReadB() }
