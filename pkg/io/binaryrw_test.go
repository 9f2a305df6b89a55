package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTripVarUint(t *testing.T, v uint64) []byte {
	w := NewBufBinWriter()
	w.WriteVarUint(v)
	require.NoError(t, w.Err)
	b := w.Bytes()
	r := NewBinReaderFromBuf(b)
	assert.Equal(t, v, r.ReadVarUint())
	require.NoError(t, r.Err)
	return b
}

func TestVarUintBoundaries(t *testing.T) {
	testCases := []struct {
		value uint64
		size  int
	}{
		{0, 1},
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
		{0xffffffffffffffff, 9},
	}
	for _, tc := range testCases {
		b := roundTripVarUint(t, tc.value)
		assert.Equal(t, tc.size, len(b), "value %x", tc.value)
	}
}

func TestVarUintNonCanonical(t *testing.T) {
	// A value < 0xFD must not be encoded with the 0xFD prefix.
	for _, b := range [][]byte{
		{0xfd, 0xfc, 0x00},
		{0xfe, 0xff, 0xff, 0x00, 0x00},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00},
	} {
		r := NewBinReaderFromBuf(b)
		r.ReadVarUint()
		require.Error(t, r.Err)
		require.ErrorIs(t, r.Err, ErrInvalidFormat)
	}
}

func TestVarUintTruncated(t *testing.T) {
	r := NewBinReaderFromBuf([]byte{0xfd, 0x01})
	r.ReadVarUint()
	require.Error(t, r.Err)
}

func TestWriteReadVarBytes(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	w := NewBufBinWriter()
	w.WriteVarBytes(payload)
	require.NoError(t, w.Err)

	r := NewBinReaderFromBuf(w.Bytes())
	assert.Equal(t, payload, r.ReadVarBytes())
	require.NoError(t, r.Err)

	// Oversize rejection with an explicit cap.
	r = NewBinReaderFromBuf(w.Bytes())
	r.ReadVarBytes(3)
	require.Error(t, r.Err)
}

func TestWriteReadString(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteString("neo")
	require.NoError(t, w.Err)

	r := NewBinReaderFromBuf(w.Bytes())
	assert.Equal(t, "neo", r.ReadString())
	require.NoError(t, r.Err)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteU64LE(0x0102030405060708)
	w.WriteU32LE(0xdeadbeef)
	w.WriteU16LE(0xcafe)
	w.WriteB(0x42)
	w.WriteBool(true)
	w.WriteI64LE(-5)
	w.WriteI32LE(-7)
	require.NoError(t, w.Err)

	r := NewBinReaderFromBuf(w.Bytes())
	assert.Equal(t, uint64(0x0102030405060708), r.ReadU64LE())
	assert.Equal(t, uint32(0xdeadbeef), r.ReadU32LE())
	assert.Equal(t, uint16(0xcafe), r.ReadU16LE())
	assert.Equal(t, byte(0x42), r.ReadB())
	assert.Equal(t, true, r.ReadBool())
	assert.Equal(t, int64(-5), r.ReadI64LE())
	assert.Equal(t, int32(-7), r.ReadI32LE())
	require.NoError(t, r.Err)
}

func TestReaderTruncation(t *testing.T) {
	r := NewBinReaderFromBuf([]byte{0x01})
	r.ReadU32LE()
	require.Error(t, r.Err)
	// Error sticks: further reads keep failing without panicking.
	r.ReadU64LE()
	require.Error(t, r.Err)
}

func TestBufBinWriterReset(t *testing.T) {
	w := NewBufBinWriter()
	w.WriteU32LE(1)
	require.NotEmpty(t, w.Bytes())
	w.Reset()
	w.WriteB(0xff)
	assert.Equal(t, []byte{0xff}, w.Bytes())
}
