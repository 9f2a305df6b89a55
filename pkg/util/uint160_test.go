package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
	"github.com/n3core/node/pkg/util"
)

func TestUint160DecodeString(t *testing.T) {
	hexStr := "2d3b96ae1bcc5a585e075e3b81920210dec16302"
	val, err := util.Uint160DecodeString(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.String())

	_, err = util.Uint160DecodeString(hexStr[1:])
	assert.Error(t, err)

	hexStr = "0x" + hexStr
	val, err = util.Uint160DecodeString(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr[2:], val.String())

	_, err = util.Uint160DecodeString("zz3b96ae1bcc5a585e075e3b81920210dec16302")
	assert.Error(t, err)
}

func TestUint160DecodeBytes(t *testing.T) {
	b := testutil.Bytes(util.Uint160Size)
	val, err := util.Uint160DecodeBytesBE(b)
	require.NoError(t, err)
	assert.Equal(t, b, val.BytesBE())

	_, err = util.Uint160DecodeBytesBE(b[1:])
	assert.Error(t, err)

	le, err := util.Uint160DecodeBytesLE(b)
	require.NoError(t, err)
	assert.Equal(t, b, le.BytesLE())
}

func TestUInt160Equals(t *testing.T) {
	a := testutil.Uint160()
	b := testutil.Uint160()
	assert.False(t, a.Equals(b))
	assert.True(t, a.Equals(a))
}

func TestUInt160Less(t *testing.T) {
	a, err := util.Uint160DecodeString("2d3b96ae1bcc5a585e075e3b81920210dec16302")
	require.NoError(t, err)
	b, err := util.Uint160DecodeString("2d3b96ae1bcc5a585e075e3b81920210dec16303")
	require.NoError(t, err)

	assert.Equal(t, -1, a.CompareTo(b))
	assert.Equal(t, 0, a.CompareTo(a))
	assert.Equal(t, 1, b.CompareTo(a))
}

func TestUInt160Serializable(t *testing.T) {
	a := testutil.Uint160()
	b := new(util.Uint160)
	testutil.EncodeDecodeBinary(t, &a, b)
}
