package stackitem

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerBytesConversion(t *testing.T) {
	testCases := []struct {
		value int64
		bytes []byte
	}{
		{0, []byte{}},
		{1, []byte{0x01}},
		{-1, []byte{0xff}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x00}},
		{-128, []byte{0x80}},
		{255, []byte{0xff, 0x00}},
		{256, []byte{0x00, 0x01}},
	}
	for _, tc := range testCases {
		b, err := Make(tc.value).TryBytes()
		require.NoError(t, err)
		assert.Equal(t, tc.bytes, b, "value %d", tc.value)

		// Round-trip through ByteString.
		back, err := NewByteArray(tc.bytes).TryInteger()
		require.NoError(t, err)
		assert.Equal(t, tc.value, back.Int64(), "bytes of %d", tc.value)
	}
}

func TestIntegerOverflow(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), MaxBigIntegerSizeBits)
	limit.Sub(limit, big.NewInt(1))
	assert.NotNil(t, NewBigInteger(limit))

	over := new(big.Int).Add(limit, big.NewInt(1))
	assert.Nil(t, NewBigInteger(over))
}

func TestBoolConversions(t *testing.T) {
	n, err := NewBool(true).TryInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.Int64())

	n, err = NewBool(false).TryInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n.Int64())

	b, err := Make(0).TryBool()
	require.NoError(t, err)
	assert.False(t, b)
	b, err = Make(42).TryBool()
	require.NoError(t, err)
	assert.True(t, b)
}

func TestStructDeepEquality(t *testing.T) {
	a := NewStructItem([]Item{Make(1), NewByteArray([]byte("x"))})
	b := NewStructItem([]Item{Make(1), NewByteArray([]byte("x"))})
	c := NewStructItem([]Item{Make(2), NewByteArray([]byte("x"))})

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func TestArrayReferenceEquality(t *testing.T) {
	a := NewArray([]Item{Make(1)})
	b := NewArray([]Item{Make(1)})
	assert.True(t, a.Equals(a))
	assert.False(t, a.Equals(b))
}

func TestMapInsertionOrder(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.Set(NewByteArray([]byte("b")), Make(2)))
	require.NoError(t, m.Set(NewByteArray([]byte("a")), Make(1)))
	require.NoError(t, m.Set(NewByteArray([]byte("c")), Make(3)))

	keys := m.Keys()
	require.Len(t, keys, 3)
	kb, _ := keys[0].TryBytes()
	assert.Equal(t, []byte("b"), kb)
	kb, _ = keys[1].TryBytes()
	assert.Equal(t, []byte("a"), kb)
	kb, _ = keys[2].TryBytes()
	assert.Equal(t, []byte("c"), kb)

	// Overwriting keeps the original position.
	require.NoError(t, m.Set(NewByteArray([]byte("a")), Make(9)))
	v := m.Get(NewByteArray([]byte("a")))
	n, err := v.TryInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(9), n.Int64())
	assert.Equal(t, 3, m.Len())
}

func TestConvertRules(t *testing.T) {
	// Integer -> ByteString -> Integer.
	bs, err := Convert(Make(258), ByteStringT)
	require.NoError(t, err)
	n, err := bs.TryInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(258), n.Int64())

	// ByteString -> Buffer copies.
	buf, err := Convert(NewByteArray([]byte{1, 2}), BufferT)
	require.NoError(t, err)
	assert.Equal(t, BufferT, buf.Type())

	// Array <-> Struct share items but re-tag.
	arr := NewArray([]Item{Make(7)})
	st, err := Convert(arr, StructT)
	require.NoError(t, err)
	require.Equal(t, StructT, st.Type())
	n, err = st.(*Struct).At(0).TryInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(7), n.Int64())

	// Map to a non-Map, non-Boolean type fails.
	_, err = Convert(NewMap(), IntegerT)
	assert.Error(t, err)
}

func TestSerializeDeserializeItem(t *testing.T) {
	items := []Item{
		Null{},
		NewBool(true),
		Make(123456),
		NewByteArray([]byte("hello")),
		NewArray([]Item{Make(1), NewByteArray([]byte("x"))}),
	}
	for _, it := range items {
		b, err := SerializeItem(it)
		require.NoError(t, err)
		back, err := DeserializeItem(b)
		require.NoError(t, err)
		assert.Equal(t, it.Type(), back.Type())
	}
}

func TestSerializeInteropFails(t *testing.T) {
	_, err := SerializeItem(NewInterop(struct{}{}))
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	arr := NewArray([]Item{
		Make(42),
		NewByteArray([]byte("text")),
		NewBool(true),
		Null{},
	})
	data, err := ToJSON(arr)
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	require.Equal(t, ArrayT, back.Type())
	items := back.(*Array)
	require.Equal(t, 4, items.Len())
	n, err := items.At(0).TryInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n.Int64())
}

func TestJSONDisallowedTypes(t *testing.T) {
	_, err := ToJSON(NewInterop(struct{}{}))
	assert.Error(t, err)
	_, err = ToJSON(NewBuffer([]byte{1}))
	assert.Error(t, err)
}
