package nef

import (
	"errors"
	"strings"

	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
)

const maxMethodLength = 32

var (
	errInvalidMethodName = errors.New("method name cannot start with '_'")
	errInvalidCallFlag   = errors.New("invalid call flag")
)

// MethodToken is a static reference to another contract's method, resolved
// by ContractManagement.Deploy against the target's manifest ABI.
type MethodToken struct {
	Hash       util.Uint160
	Method     string
	ParamCount uint16
	HasReturn  bool
	CallFlag   callflag.CallFlag
}

// EncodeBinary implements io.Serializable.
func (t *MethodToken) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(t.Hash.BytesBE())
	w.WriteString(t.Method)
	w.WriteU16LE(t.ParamCount)
	w.WriteBool(t.HasReturn)
	w.WriteB(byte(t.CallFlag))
}

// DecodeBinary implements io.Serializable.
func (t *MethodToken) DecodeBinary(r *io.BinReader) {
	var b [util.Uint160Size]byte
	r.ReadBytes(b[:])
	if r.Err != nil {
		return
	}
	h, err := util.Uint160DecodeBytesBE(b[:])
	if err != nil {
		r.Err = err
		return
	}
	t.Hash = h
	t.Method = r.ReadString(maxMethodLength)
	if r.Err != nil {
		return
	}
	if strings.HasPrefix(t.Method, "_") {
		r.Err = errInvalidMethodName
		return
	}
	t.ParamCount = r.ReadU16LE()
	t.HasReturn = r.ReadBool()
	flag := callflag.CallFlag(r.ReadB())
	if r.Err != nil {
		return
	}
	if flag&^callflag.All != 0 {
		r.Err = errInvalidCallFlag
		return
	}
	t.CallFlag = flag
}
