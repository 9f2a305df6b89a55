package nef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
)

func TestNewFileRoundTrip(t *testing.T) {
	f := NewFile("test-compiler 1.0", []byte{0x40})
	data, err := f.Bytes()
	require.NoError(t, err)

	var decoded File
	require.NoError(t, testutil.DecodeBinary(data, &decoded))
	assert.Equal(t, Magic, decoded.Header.Magic)
	assert.Equal(t, f.Header.Compiler, decoded.Header.Compiler)
	assert.Equal(t, f.Script, decoded.Script)
	assert.Equal(t, f.Checksum, decoded.Checksum)
}

func TestChecksumValidation(t *testing.T) {
	f := NewFile("c", []byte{0x40})
	data, err := f.Bytes()
	require.NoError(t, err)

	// Corrupt the trailing checksum.
	data[len(data)-1] ^= 0xff
	var decoded File
	err = testutil.DecodeBinary(data, &decoded)
	require.ErrorIs(t, err, ErrInvalidChecksum)
}

func TestMagicValidation(t *testing.T) {
	f := NewFile("c", []byte{0x40})
	data, err := f.Bytes()
	require.NoError(t, err)

	data[0] ^= 0xff
	var decoded File
	err = testutil.DecodeBinary(data, &decoded)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestMethodTokens(t *testing.T) {
	f := NewFile("c", []byte{0x40})
	f.Tokens = []MethodToken{{
		Hash:       testutil.Uint160(),
		Method:     "transfer",
		ParamCount: 4,
		HasReturn:  true,
		CallFlag:   0x0f,
	}}
	f.Checksum = f.CalculateChecksum()

	data, err := f.Bytes()
	require.NoError(t, err)
	var decoded File
	require.NoError(t, testutil.DecodeBinary(data, &decoded))
	require.Len(t, decoded.Tokens, 1)
	assert.Equal(t, "transfer", decoded.Tokens[0].Method)
	assert.Equal(t, f.Tokens[0].Hash, decoded.Tokens[0].Hash)
}

func TestChecksumChangesWithScript(t *testing.T) {
	f1 := NewFile("c", []byte{0x40})
	f2 := NewFile("c", []byte{0x41})
	assert.NotEqual(t, f1.Checksum, f2.Checksum)
}
