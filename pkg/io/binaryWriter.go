package io

import (
	"bytes"
	"encoding/binary"
	"io"
)

// BinWriter is the write-side counterpart of BinReader: every Write*
// method becomes a no-op once w.Err is set, so a sequence of writes can be
// issued without checking the error after each one.
type BinWriter struct {
	w   io.Writer
	Err error
}

// NewBinWriterFromIO makes a BinWriter from a given io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// Error returns the sticky error, if any was recorded by a previous write.
func (w *BinWriter) Error() error {
	return w.Err
}

func (w *BinWriter) fail(err error) {
	if w.Err == nil {
		w.Err = err
	}
}

func (w *BinWriter) writeBytes(p []byte) {
	if w.Err != nil {
		return
	}
	if _, err := w.w.Write(p); err != nil {
		w.fail(err)
	}
}

// WriteU64LE writes a uint64 value in little-endian encoding.
func (w *BinWriter) WriteU64LE(u64 uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u64)
	w.writeBytes(buf[:])
}

// WriteU32LE writes a uint32 value in little-endian encoding.
func (w *BinWriter) WriteU32LE(u32 uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], u32)
	w.writeBytes(buf[:])
}

// WriteU16LE writes a uint16 value in little-endian encoding.
func (w *BinWriter) WriteU16LE(u16 uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], u16)
	w.writeBytes(buf[:])
}

// WriteB writes a single byte.
func (w *BinWriter) WriteB(u8 byte) {
	w.writeBytes([]byte{u8})
}

// WriteBytes writes b verbatim with no length prefix, for callers (e.g.
// pkg/vm/emit) that already know the reader's expected operand width.
func (w *BinWriter) WriteBytes(b []byte) {
	w.writeBytes(b)
}

// WriteBool writes a boolean as a single 0x00/0x01 byte.
func (w *BinWriter) WriteBool(b bool) {
	if b {
		w.WriteB(1)
	} else {
		w.WriteB(0)
	}
}

// WriteI64LE writes an int64 value in little-endian encoding.
func (w *BinWriter) WriteI64LE(i64 int64) {
	w.WriteU64LE(uint64(i64))
}

// WriteI32LE writes an int32 value in little-endian encoding.
func (w *BinWriter) WriteI32LE(i32 int32) {
	w.WriteU32LE(uint32(i32))
}

// WriteVarUint writes val using the 0xFD/0xFE/0xFF canonical prefix scheme.
func (w *BinWriter) WriteVarUint(val uint64) {
	if w.Err != nil {
		return
	}
	switch {
	case val < 0xfd:
		w.WriteB(byte(val))
	case val <= 0xffff:
		w.WriteB(0xfd)
		w.WriteU16LE(uint16(val))
	case val <= 0xffffffff:
		w.WriteB(0xfe)
		w.WriteU32LE(uint32(val))
	default:
		w.WriteB(0xff)
		w.WriteU64LE(val)
	}
}

// WriteVarBytes writes a var-int length prefix followed by b.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.writeBytes(b)
}

// WriteString writes s as UTF-8 bytes with a var-int length prefix.
func (w *BinWriter) WriteString(s string) {
	w.WriteVarBytes([]byte(s))
}

// WriteArray writes a var-int-prefixed array of Serializable items.
func (w *BinWriter) WriteArray(arr interface{}) {
	items, ok := arr.([]Serializable)
	if !ok {
		w.fail(errNotSerializableSlice)
		return
	}
	w.WriteVarUint(uint64(len(items)))
	for _, item := range items {
		item.EncodeBinary(w)
		if w.Err != nil {
			return
		}
	}
}

var errNotSerializableSlice = &writeTypeError{}

type writeTypeError struct{}

func (*writeTypeError) Error() string { return "WriteArray target must be []Serializable" }

// BufBinWriter is a BinWriter that writes to an in-memory buffer, the
// common case for hashing and RPC marshaling.
type BufBinWriter struct {
	*BinWriter
	buf *bytes.Buffer
}

// NewBufBinWriter creates a new BufBinWriter backed by an empty buffer.
func NewBufBinWriter() *BufBinWriter {
	b := new(bytes.Buffer)
	return &BufBinWriter{
		BinWriter: NewBinWriterFromIO(b),
		buf:       b,
	}
}

// Bytes returns the accumulated bytes. It's an error to call it if w.Err
// is non-nil.
func (w *BufBinWriter) Bytes() []byte {
	if w.Err != nil {
		return nil
	}
	b := w.buf.Bytes()
	res := make([]byte, len(b))
	copy(res, b)
	return res
}

// Reset resets the buffer and error state, allowing the writer to be
// reused.
func (w *BufBinWriter) Reset() {
	w.Err = nil
	w.buf.Reset()
}

// Len returns the number of bytes written so far.
func (w *BufBinWriter) Len() int {
	return w.buf.Len()
}
