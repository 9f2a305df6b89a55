package native

import (
	"errors"
	"math/big"

	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// OracleRequest is the storage row OracleContract keeps per pending
// request, keyed by its numeric id.
type OracleRequest struct {
	OriginalTxid     util.Uint256
	GasForResponse   int64
	URL              string
	Filter           string
	CallbackContract util.Uint160
	CallbackMethod   string
	UserData         []byte
}

// EncodeBinary implements io.Serializable.
func (r *OracleRequest) EncodeBinary(w *io.BinWriter) {
	r.OriginalTxid.EncodeBinary(w)
	w.WriteI64LE(r.GasForResponse)
	w.WriteString(r.URL)
	w.WriteString(r.Filter)
	w.WriteBytes(r.CallbackContract.BytesBE())
	w.WriteString(r.CallbackMethod)
	w.WriteVarBytes(r.UserData)
}

// DecodeBinary implements io.Serializable.
func (r *OracleRequest) DecodeBinary(br *io.BinReader) {
	r.OriginalTxid.DecodeBinary(br)
	r.GasForResponse = br.ReadI64LE()
	r.URL = br.ReadString()
	r.Filter = br.ReadString()
	var h [util.Uint160Size]byte
	br.ReadBytes(h[:])
	if br.Err != nil {
		return
	}
	r.CallbackContract, br.Err = util.Uint160DecodeBytesBE(h[:])
	if br.Err != nil {
		return
	}
	r.CallbackMethod = br.ReadString()
	r.UserData = br.ReadVarBytes(MaxOracleUserDataLength)
}

// IDList is the set of pending request ids sharing one (url, filter) pair,
// stored as a serialized stack-item array of integers.
type IDList []uint64

// EncodeBinary implements io.Serializable.
func (l *IDList) EncodeBinary(w *io.BinWriter) {
	items := make([]stackitem.Item, len(*l))
	for i, id := range *l {
		items[i] = bigItem(new(big.Int).SetUint64(id))
	}
	stackitem.EncodeBinaryStackItem(stackitem.NewArray(items), w)
}

// DecodeBinary implements io.Serializable.
func (l *IDList) DecodeBinary(r *io.BinReader) {
	item := stackitem.DecodeBinaryStackItem(r)
	if r.Err != nil {
		return
	}
	arr, ok := item.(*stackitem.Array)
	if !ok {
		r.Err = errors.New("oracle: IDList is not an array")
		return
	}
	out := make(IDList, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		n, err := arr.At(i).TryInteger()
		if err != nil {
			r.Err = err
			return
		}
		out[i] = n.Uint64()
	}
	*l = out
}

// Remove deletes id from the list, preserving the order of the rest, and
// reports whether it was present.
func (l *IDList) Remove(id uint64) bool {
	for i, v := range *l {
		if v == id {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

// NodeList is a sorted set of oracle-node public keys, stored as a
// serialized stack-item array of byte strings.
type NodeList keys.PublicKeys

// EncodeBinary implements io.Serializable.
func (l *NodeList) EncodeBinary(w *io.BinWriter) {
	items := make([]stackitem.Item, len(*l))
	for i, p := range *l {
		items[i] = stackitem.NewByteArray(p.Bytes())
	}
	stackitem.EncodeBinaryStackItem(stackitem.NewArray(items), w)
}

// DecodeBinary implements io.Serializable.
func (l *NodeList) DecodeBinary(r *io.BinReader) {
	item := stackitem.DecodeBinaryStackItem(r)
	if r.Err != nil {
		return
	}
	arr, ok := item.(*stackitem.Array)
	if !ok {
		r.Err = errors.New("oracle: NodeList is not an array")
		return
	}
	out := make(NodeList, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		b, err := arr.At(i).TryBytes()
		if err != nil {
			r.Err = err
			return
		}
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			r.Err = err
			return
		}
		out[i] = pub
	}
	*l = out
}
