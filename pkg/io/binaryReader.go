package io

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrInvalidFormat is returned whenever the reader encounters a malformed,
// non-canonical, or oversize encoding.
var ErrInvalidFormat = errors.New("invalid format")

// MaxArraySize is the default cap on variable-length array/byte-slice
// decoding when the caller does not supply a tighter limit.
const MaxArraySize = 0x1000000

// BinReader is a convenience wrapper around an io.Reader that stops doing
// anything useful the moment it hits an error: every Read* method is a
// no-op once r.Err is set, so call sites can chain a sequence of reads and
// check the error exactly once at the end, matching the reference node's
// binary reader idiom.
type BinReader struct {
	r   io.Reader
	Err error
}

// NewBinReaderFromIO makes a BinReader from a given io.Reader.
func NewBinReaderFromIO(ior io.Reader) *BinReader {
	return &BinReader{r: ior}
}

// NewBinReaderFromBuf makes a BinReader from a byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return NewBinReaderFromIO(newByteReader(b))
}

func (r *BinReader) fail(err error) {
	if r.Err == nil {
		r.Err = err
	}
}

func (r *BinReader) readBytes(p []byte) {
	if r.Err != nil {
		return
	}
	_, err := io.ReadFull(r.r, p)
	if err != nil {
		r.fail(err)
	}
}

// ReadU64LE reads a little-endian encoded uint64 from the underlying stream.
func (r *BinReader) ReadU64LE() uint64 {
	var buf [8]byte
	r.readBytes(buf[:])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// ReadU32LE reads a little-endian encoded uint32.
func (r *BinReader) ReadU32LE() uint32 {
	var buf [4]byte
	r.readBytes(buf[:])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[:])
}

// ReadU16LE reads a little-endian encoded uint16.
func (r *BinReader) ReadU16LE() uint16 {
	var buf [2]byte
	r.readBytes(buf[:])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(buf[:])
}

// ReadBytes reads exactly len(p) raw bytes with no length prefix, used by
// fixed-width types (Uint160, Uint256, compressed public keys).
func (r *BinReader) ReadBytes(p []byte) {
	r.readBytes(p)
}

// ReadB reads a single byte.
func (r *BinReader) ReadB() byte {
	var buf [1]byte
	r.readBytes(buf[:])
	return buf[0]
}

// ReadBool reads a boolean encoded as a single non-zero/zero byte.
func (r *BinReader) ReadBool() bool {
	return r.ReadB() != 0
}

// ReadI64LE reads a little-endian encoded int64.
func (r *BinReader) ReadI64LE() int64 {
	return int64(r.ReadU64LE())
}

// ReadI32LE reads a little-endian encoded int32.
func (r *BinReader) ReadI32LE() int32 {
	return int32(r.ReadU32LE())
}

// ReadVarUint reads a variable-length integer using the reference's
// 0xFD/0xFE/0xFF prefix scheme, rejecting non-canonical encodings (a value
// that fits a narrower prefix but is encoded with a wider one).
func (r *BinReader) ReadVarUint() uint64 {
	if r.Err != nil {
		return 0
	}
	b := r.ReadB()
	switch b {
	case 0xfd:
		v := r.ReadU16LE()
		if r.Err == nil && v < 0xfd {
			r.fail(fmt.Errorf("%w: non-canonical varint", ErrInvalidFormat))
			return 0
		}
		return uint64(v)
	case 0xfe:
		v := r.ReadU32LE()
		if r.Err == nil && v <= math.MaxUint16 {
			r.fail(fmt.Errorf("%w: non-canonical varint", ErrInvalidFormat))
			return 0
		}
		return uint64(v)
	case 0xff:
		v := r.ReadU64LE()
		if r.Err == nil && v <= math.MaxUint32 {
			r.fail(fmt.Errorf("%w: non-canonical varint", ErrInvalidFormat))
			return 0
		}
		return v
	default:
		return uint64(b)
	}
}

// ReadVarBytes reads a variable-length byte slice (var-int length prefix
// followed by that many bytes), rejecting anything over maxSize.
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	n := r.ReadVarUint()
	limit := uint64(MaxArraySize)
	if len(maxSize) > 0 {
		limit = uint64(maxSize[0])
	}
	if r.Err != nil {
		return nil
	}
	if n > limit {
		r.fail(fmt.Errorf("%w: byte slice of %d exceeds limit %d", ErrInvalidFormat, n, limit))
		return nil
	}
	b := make([]byte, n)
	r.readBytes(b)
	return b
}

// ReadString reads a variable-length UTF-8 string.
func (r *BinReader) ReadString(maxSize ...int) string {
	return string(r.ReadVarBytes(maxSize...))
}

// ReadArray decodes a var-int-prefixed array of Serializable items into t,
// which must be a pointer to a slice of a type implementing Serializable.
func (r *BinReader) ReadArray(t interface{}, maxSize ...int) {
	arr, ok := t.(*[]Serializable)
	if !ok {
		r.fail(fmt.Errorf("ReadArray target must be *[]Serializable"))
		return
	}
	n := r.ReadVarUint()
	limit := uint64(MaxArraySize)
	if len(maxSize) > 0 {
		limit = uint64(maxSize[0])
	}
	if r.Err != nil {
		return
	}
	if n > limit {
		r.fail(fmt.Errorf("%w: array of %d exceeds limit %d", ErrInvalidFormat, n, limit))
		return
	}
	out := make([]Serializable, n)
	for i := range out {
		out[i].DecodeBinary(r)
		if r.Err != nil {
			return
		}
	}
	*arr = out
}

// byteReader adapts a []byte to io.Reader without an extra copy.
type byteReader struct {
	b   []byte
	pos int
}

func newByteReader(b []byte) *byteReader { return &byteReader{b: b} }

func (br *byteReader) Read(p []byte) (int, error) {
	if br.pos >= len(br.b) {
		return 0, io.EOF
	}
	n := copy(p, br.b[br.pos:])
	br.pos += n
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}
