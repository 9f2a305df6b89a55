// Package nef implements the Neo Executable Format: the serialized script
// plus compiler metadata that gets deployed on-chain.
package nef

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/io"
)

// Magic is the fixed 4-byte NEF file magic, "NEF3".
const Magic uint32 = 0x3346454e

const (
	compilerFieldSize = 64
	maxScriptLength    = 512 * 1024
	maxSourceURLLength = 256
)

var (
	// ErrInvalidMagic is returned when the header's magic does not match Magic.
	ErrInvalidMagic = errors.New("invalid NEF magic")
	// ErrInvalidChecksum is returned when the trailing checksum does not
	// match the recomputed one.
	ErrInvalidChecksum = errors.New("invalid NEF checksum")
	errEmptyScript     = errors.New("empty script")
)

// Header is the fixed-layout prefix of a NEF file.
type Header struct {
	Magic    uint32
	Compiler string
}

// File is a full NEF: header, optional source URL, method tokens, script,
// and a checksum over everything preceding it.
type File struct {
	Header
	SourceURL string
	Tokens    []MethodToken
	Script    []byte
	Checksum  uint32
}

// EncodeBinary implements io.Serializable.
func (f *File) EncodeBinary(w *io.BinWriter) {
	f.encodeHashable(w)
	w.WriteU32LE(f.Checksum)
}

func (f *File) encodeHashable(w *io.BinWriter) {
	w.WriteU32LE(f.Header.Magic)
	compiler := make([]byte, compilerFieldSize)
	copy(compiler, f.Header.Compiler)
	w.WriteBytes(compiler)
	w.WriteString(f.SourceURL)
	w.WriteB(0) // reserved
	w.WriteVarUint(uint64(len(f.Tokens)))
	for i := range f.Tokens {
		f.Tokens[i].EncodeBinary(w)
	}
	w.WriteU16LE(0) // reserved
	w.WriteVarBytes(f.Script)
}

// CalculateChecksum computes the checksum field: the first 4 bytes of
// Hash256 over every preceding byte of the file.
func (f *File) CalculateChecksum() uint32 {
	bw := io.NewBufBinWriter()
	f.encodeHashable(bw.BinWriter)
	h := hash.Hash256(bw.Bytes())
	return binary.LittleEndian.Uint32(h.BytesLE()[:4])
}

// DecodeBinary implements io.Serializable.
func (f *File) DecodeBinary(r *io.BinReader) {
	f.Header.Magic = r.ReadU32LE()
	if r.Err == nil && f.Header.Magic != Magic {
		r.Err = ErrInvalidMagic
		return
	}
	compiler := make([]byte, compilerFieldSize)
	r.ReadBytes(compiler)
	if r.Err != nil {
		return
	}
	n := 0
	for n < len(compiler) && compiler[n] != 0 {
		n++
	}
	f.Header.Compiler = string(compiler[:n])
	f.SourceURL = r.ReadString(maxSourceURLLength)
	_ = r.ReadB() // reserved
	ntok := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	if ntok > 128 {
		r.Err = fmt.Errorf("too many method tokens: %d", ntok)
		return
	}
	f.Tokens = make([]MethodToken, ntok)
	for i := range f.Tokens {
		f.Tokens[i].DecodeBinary(r)
		if r.Err != nil {
			return
		}
	}
	_ = r.ReadU16LE() // reserved
	f.Script = r.ReadVarBytes(maxScriptLength)
	if r.Err != nil {
		return
	}
	if len(f.Script) == 0 {
		r.Err = errEmptyScript
		return
	}
	f.Checksum = r.ReadU32LE()
	if r.Err != nil {
		return
	}
	if f.Checksum != f.CalculateChecksum() {
		r.Err = ErrInvalidChecksum
	}
}

// Bytes serializes f to its canonical on-chain encoding, recomputing the
// checksum first.
func (f *File) Bytes() ([]byte, error) {
	f.Checksum = f.CalculateChecksum()
	w := io.NewBufBinWriter()
	f.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// NewFile builds a File around script with no tokens/source URL and a
// freshly computed checksum.
func NewFile(compiler string, script []byte) *File {
	f := &File{
		Header: Header{Magic: Magic, Compiler: compiler},
		Script: script,
	}
	f.Checksum = f.CalculateChecksum()
	return f
}
