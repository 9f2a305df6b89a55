package transaction

import (
	"errors"
	"sync"

	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

// Wire-format and validation limits.
const (
	MaxTransactionSize            = 102400
	MaxValidUntilBlockIncrement   = 5760
	MaxAttributes                 = 16
	MaxScriptLength               = 65536
)

// Transaction is the reference's {version, nonce, fees, signers,
// attributes, script, witnesses} record.
type Transaction struct {
	Version         byte
	Nonce           uint32
	SystemFee       int64
	NetworkFee      int64
	ValidUntilBlock uint32
	Signers         []Signer
	Attributes      []Attribute
	Script          []byte
	Witnesses       []Witness

	hashOnce sync.Once
	hash     util.Uint256
	size     int
}

// Sender returns the fee-payer, signers[0].
func (t *Transaction) Sender() util.Uint160 {
	if len(t.Signers) == 0 {
		return util.Uint160{}
	}
	return t.Signers[0].Account
}

// HasAttribute reports whether t carries at least one attribute of type at.
func (t *Transaction) HasAttribute(at AttrType) bool {
	for i := range t.Attributes {
		if t.Attributes[i].Type == at {
			return true
		}
	}
	return false
}

// IsHighPriority reports whether t carries a HighPriority attribute.
func (t *Transaction) IsHighPriority() bool {
	return t.HasAttribute(HighPriority)
}

// encodeUnsigned writes every field except Witnesses — the form that is
// hashed.
func (t *Transaction) encodeUnsigned(w *io.BinWriter) {
	w.WriteB(t.Version)
	w.WriteU32LE(t.Nonce)
	w.WriteI64LE(t.SystemFee)
	w.WriteI64LE(t.NetworkFee)
	w.WriteU32LE(t.ValidUntilBlock)
	w.WriteVarUint(uint64(len(t.Signers)))
	for i := range t.Signers {
		t.Signers[i].EncodeBinary(w)
	}
	w.WriteVarUint(uint64(len(t.Attributes)))
	for i := range t.Attributes {
		t.Attributes[i].EncodeBinary(w)
	}
	w.WriteVarBytes(t.Script)
}

// EncodeBinary implements io.Serializable: unsigned fields followed by the
// witness array.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	t.encodeUnsigned(w)
	w.WriteVarUint(uint64(len(t.Witnesses)))
	for i := range t.Witnesses {
		t.Witnesses[i].EncodeBinary(w)
	}
}

// DecodeBinary implements io.Serializable.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	t.Version = r.ReadB()
	t.Nonce = r.ReadU32LE()
	t.SystemFee = r.ReadI64LE()
	t.NetworkFee = r.ReadI64LE()
	t.ValidUntilBlock = r.ReadU32LE()
	if r.Err != nil {
		return
	}
	nSigners := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if nSigners == 0 {
		r.Err = errors.New("transaction has no signers")
		return
	}
	t.Signers = make([]Signer, nSigners)
	seen := map[util.Uint160]bool{}
	for i := range t.Signers {
		t.Signers[i].DecodeBinary(r)
		if r.Err != nil {
			return
		}
		if seen[t.Signers[i].Account] {
			r.Err = errors.New("duplicate signer account")
			return
		}
		seen[t.Signers[i].Account] = true
	}
	nAttrs := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if nAttrs > MaxAttributes {
		r.Err = errors.New("too many attributes")
		return
	}
	t.Attributes = make([]Attribute, nAttrs)
	seenHP := false
	for i := range t.Attributes {
		t.Attributes[i].DecodeBinary(r)
		if r.Err != nil {
			return
		}
		if t.Attributes[i].Type == HighPriority {
			if seenHP {
				r.Err = errors.New("duplicate HighPriority attribute")
				return
			}
			seenHP = true
		}
	}
	t.Script = r.ReadVarBytes(MaxScriptLength)
	if r.Err != nil {
		return
	}
	if len(t.Script) == 0 {
		r.Err = errors.New("empty script")
		return
	}
	nWit := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if nWit != nSigners {
		r.Err = errors.New("witness count must match signer count")
		return
	}
	t.Witnesses = make([]Witness, nWit)
	for i := range t.Witnesses {
		t.Witnesses[i].DecodeBinary(r)
	}
}

// Bytes serializes the full (signed) transaction.
func (t *Transaction) Bytes() []byte {
	w := io.NewBufBinWriter()
	t.EncodeBinary(w.BinWriter)
	return w.Bytes()
}

// Size returns the serialized byte length, used against MaxTransactionSize
// and the networkFee-per-byte calculation.
func (t *Transaction) Size() int {
	if t.size == 0 {
		t.size = len(t.Bytes())
	}
	return t.size
}

// Hash returns Hash256 over the unsigned encoding — the transaction id.
func (t *Transaction) Hash() util.Uint256 {
	t.hashOnce.Do(func() {
		w := io.NewBufBinWriter()
		t.encodeUnsigned(w.BinWriter)
		t.hash = hash.DoubleSha256(w.Bytes())
	})
	return t.hash
}

// SigningData returns the network-salted message a witness's verification
// script must sign: the network magic followed by the transaction hash.
func (t *Transaction) SigningData(network uint32) []byte {
	return signingData(network, t.Hash())
}

func signingData(network uint32, h util.Uint256) []byte {
	w := io.NewBufBinWriter()
	w.WriteU32LE(network)
	w.WriteBytes(h.BytesLE())
	return w.Bytes()
}

// NewTrimmedTX returns a Transaction that carries only its hash, as stored
// in a trimmed block body.
func NewTrimmedTX(h util.Uint256) *Transaction {
	t := &Transaction{}
	t.hash = h
	t.hashOnce.Do(func() {})
	return t
}

// NewTransactionFromBytes decodes a Transaction from its wire form.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	r := io.NewBinReaderFromBuf(b)
	t := &Transaction{}
	t.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	t.size = len(b)
	return t, nil
}
