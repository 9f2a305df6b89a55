package util

import "github.com/n3core/node/pkg/io"

// EncodeBinary implements io.Serializable, writing the little-endian wire
// form used throughout block/transaction serialization.
func (u Uint160) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(u.BytesLE())
}

// DecodeBinary implements io.Serializable.
func (u *Uint160) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(u[:])
}

// EncodeBinary implements io.Serializable.
func (u Uint256) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(u.BytesLE())
}

// DecodeBinary implements io.Serializable.
func (u *Uint256) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(u[:])
}
