package keys

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateKeySignVerify(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	msg := []byte("sample message")
	sig, err := priv.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	assert.True(t, pub.Verify(sig, msg))
	assert.False(t, pub.Verify(sig, []byte("other message")))

	// A corrupted signature never verifies and never panics.
	sig[0] ^= 0xff
	assert.False(t, pub.Verify(sig, msg))
}

func TestPublicKeyEncodeDecode(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	b := pub.Bytes()
	require.Len(t, b, 33)

	decoded, err := NewPublicKeyFromBytes(b)
	require.NoError(t, err)
	assert.True(t, pub.Equal(decoded))
	assert.Equal(t, pub.GetScriptHash(), decoded.GetScriptHash())
}

func TestPublicKeyDecodeInvalid(t *testing.T) {
	_, err := NewPublicKeyFromBytes([]byte{0x02, 0x01})
	assert.Error(t, err)

	// A prefix outside {0x00, 0x02, 0x03, 0x04} is rejected.
	b := make([]byte, 33)
	b[0] = 0x07
	_, err = NewPublicKeyFromBytes(b)
	assert.Error(t, err)
}

func TestPrivateKeyFromBytes(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)

	same, err := NewPrivateKeyFromBytes(priv.Bytes())
	require.NoError(t, err)
	assert.True(t, priv.PublicKey().Equal(same.PublicKey()))

	_, err = NewPrivateKeyFromBytes([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestPublicKeysSort(t *testing.T) {
	var pubs PublicKeys
	for i := 0; i < 5; i++ {
		priv, err := NewPrivateKey()
		require.NoError(t, err)
		pubs = append(pubs, priv.PublicKey())
	}
	sort.Sort(pubs)
	for i := 0; i < len(pubs)-1; i++ {
		assert.True(t, pubs[i].Cmp(pubs[i+1]) <= 0)
	}
}
