package state

import (
	"math/big"

	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// Candidate is NeoToken's per-candidate storage row: vote tally and
// registration flag.
type Candidate struct {
	PublicKey  *keys.PublicKey
	Votes      *big.Int
	Registered bool
}

// EncodeBinary implements io.Serializable.
func (c *Candidate) EncodeBinary(w *io.BinWriter) {
	writeBigInt(w, c.Votes)
	w.WriteBool(c.Registered)
}

// DecodeBinary implements io.Serializable (PublicKey is the storage key's
// suffix, not part of the encoded value).
func (c *Candidate) DecodeBinary(r *io.BinReader) {
	c.Votes = readBigInt(r)
	c.Registered = r.ReadBool()
}

// NotificationEvent is a contract-emitted event captured during
// execution, exposed to observers only after Halt.
type NotificationEvent struct {
	ScriptHash util.Uint160
	Name       string
	Item       *stackitem.Array
}
