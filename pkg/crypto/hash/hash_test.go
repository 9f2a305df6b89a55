package hash

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha256(t *testing.T) {
	input := []byte("hello")
	data := Sha256(input)

	expected := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	assert.Equal(t, expected, hex.EncodeToString(data.BytesLE()))
}

func TestHashDoubleSha256(t *testing.T) {
	input := []byte("hello")
	data := DoubleSha256(input)

	firstSha := Sha256(input)
	doubleSha := Sha256(firstSha.BytesLE())
	expected := hex.EncodeToString(doubleSha.BytesLE())

	assert.Equal(t, expected, hex.EncodeToString(data.BytesLE()))
	assert.Equal(t, data, Hash256(input))
}

func TestRipeMD160(t *testing.T) {
	input := []byte("hello")
	data := RipeMD160(input)

	expected := "108f07b8382412612c048d07d13f814118445acd"
	assert.Equal(t, expected, hex.EncodeToString(data.BytesLE()))
}

func TestHash160(t *testing.T) {
	input := "02cccafb41b220cab63fd77108d2d1ebcffa32be26da29a04dca4996afce5f75db"
	publicKeyBytes, _ := hex.DecodeString(input)
	data := Hash160(publicKeyBytes)

	assert.Equal(t, RipeMD160(Sha256(publicKeyBytes).BytesLE()), data)
}

func TestKeccak256(t *testing.T) {
	// Keccak-256 of the empty input, the canonical test vector.
	data := Keccak256(nil)
	expected := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	assert.Equal(t, expected, hex.EncodeToString(data.BytesLE()))
}

func TestChecksum(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03}
	cs := Checksum(b)
	require.Len(t, cs, 4)
	assert.Equal(t, Hash256(b).BytesLE()[:4], cs)
}
