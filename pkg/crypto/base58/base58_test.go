package base58

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0x00, 0x00, 0x01},
		{0xde, 0xad, 0xbe, 0xef},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}
	for _, p := range payloads {
		s := Encode(p)
		b, err := Decode(s)
		require.NoError(t, err)
		assert.Equal(t, p, b)
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode("0OIl")
	assert.Error(t, err)
}

func TestCheckEncodeDecode(t *testing.T) {
	payload := []byte{0x35, 0x01, 0x02, 0x03, 0x04, 0x05}
	s := CheckEncode(payload)
	b, err := CheckDecode(s)
	require.NoError(t, err)
	assert.Equal(t, payload, b)
}

func TestCheckDecodeBadChecksum(t *testing.T) {
	s := CheckEncode([]byte{0x35, 0x01, 0x02})
	// Flip the final character to corrupt the checksum.
	last := s[len(s)-1]
	repl := byte('2')
	if last == repl {
		repl = '3'
	}
	_, err := CheckDecode(s[:len(s)-1] + string(repl))
	assert.Error(t, err)
}

func TestCheckDecodeTooShort(t *testing.T) {
	_, err := CheckDecode("1")
	assert.Error(t, err)
}
