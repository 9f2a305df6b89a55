package smartcontract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/util"
)

func genKeys(t *testing.T, n int) keys.PublicKeys {
	var pubs keys.PublicKeys
	for i := 0; i < n; i++ {
		priv, err := keys.NewPrivateKey()
		require.NoError(t, err)
		pubs = append(pubs, priv.PublicKey())
	}
	return pubs
}

func TestCreateMultiSigRedeemScript(t *testing.T) {
	pubs := genKeys(t, 3)
	script, err := CreateMultiSigRedeemScript(2, pubs)
	require.NoError(t, err)

	// PUSH2, three 33-byte key pushes, PUSH3, SYSCALL + 4-byte id.
	assert.Equal(t, byte(0x12), script[0])
	assert.Equal(t, 1+3*35+1+5, len(script))

	// Key order doesn't matter: the builder sorts.
	shuffled := keys.PublicKeys{pubs[2], pubs[0], pubs[1]}
	script2, err := CreateMultiSigRedeemScript(2, shuffled)
	require.NoError(t, err)
	assert.Equal(t, script, script2)
}

func TestCreateMultiSigRedeemScriptInvalidParams(t *testing.T) {
	pubs := genKeys(t, 2)
	_, err := CreateMultiSigRedeemScript(0, pubs)
	assert.Error(t, err)
	_, err = CreateMultiSigRedeemScript(3, pubs)
	assert.Error(t, err)
}

func TestCreateMultiSigAccountDeterministic(t *testing.T) {
	pubs := genKeys(t, 4)
	a1, err := CreateMultiSigAccount(3, pubs)
	require.NoError(t, err)
	a2, err := CreateMultiSigAccount(3, pubs)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, util.Uint160{}, a1)
}

func TestDefaultCommitteeM(t *testing.T) {
	assert.Equal(t, 1, DefaultCommitteeM(1))
	assert.Equal(t, 3, DefaultCommitteeM(4))
	assert.Equal(t, 5, DefaultCommitteeM(7))
	assert.Equal(t, 15, DefaultCommitteeM(21))
}

func TestCreateContractHash(t *testing.T) {
	sender := testutil.Uint160()
	h1 := CreateContractHash(sender, 123, "Token")
	h2 := CreateContractHash(sender, 123, "Token")
	assert.Equal(t, h1, h2)

	assert.NotEqual(t, h1, CreateContractHash(sender, 124, "Token"))
	assert.NotEqual(t, h1, CreateContractHash(sender, 123, "Other"))
	assert.NotEqual(t, h1, CreateContractHash(testutil.Uint160(), 123, "Token"))
}

func TestCreateNativeContractHash(t *testing.T) {
	neo := CreateNativeContractHash("NeoToken")
	gas := CreateNativeContractHash("GasToken")
	assert.NotEqual(t, neo, gas)
	assert.Equal(t, neo, CreateNativeContractHash("NeoToken"))
}
