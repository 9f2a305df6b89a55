package util_test

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
	"github.com/n3core/node/pkg/util"
)

func TestUint256DecodeString(t *testing.T) {
	hexStr := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	val, err := util.Uint256DecodeString(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.String())

	_, err = util.Uint256DecodeString(hexStr[1:])
	assert.Error(t, err)

	_, err = util.Uint256DecodeString("zz37308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d")
	assert.Error(t, err)
}

func TestUint256DecodeBytes(t *testing.T) {
	b := testutil.Bytes(util.Uint256Size)
	val, err := util.Uint256DecodeBytesBE(b)
	require.NoError(t, err)
	assert.Equal(t, b, val.BytesBE())

	le, err := util.Uint256DecodeBytesLE(b)
	require.NoError(t, err)
	assert.Equal(t, b, le.BytesLE())
	assert.Equal(t, util.ToArrayReverse(b), le.BytesBE())

	_, err = util.Uint256DecodeBytesBE(b[1:])
	assert.Error(t, err)
}

func TestUInt256Equals(t *testing.T) {
	a := testutil.Uint256()
	b := testutil.Uint256()
	assert.False(t, a.Equals(b))
	assert.True(t, a.Equals(a))
	assert.Equal(t, 0, a.CompareTo(a))
}

func TestUInt256Sort(t *testing.T) {
	us := []util.Uint256{
		{3, 2, 1},
		{2, 1, 0},
		{1, 0, 255},
	}
	sort.Slice(us, func(i, j int) bool { return us[i].CompareTo(us[j]) < 0 })
	for i := 0; i < len(us)-1; i++ {
		assert.Equal(t, -1, us[i].CompareTo(us[i+1]))
	}
}

func TestUInt256MarshalJSON(t *testing.T) {
	a := testutil.Uint256()
	data, err := json.Marshal(a)
	require.NoError(t, err)
	var b util.Uint256
	require.NoError(t, json.Unmarshal(data, &b))
	assert.True(t, a.Equals(b))
}
