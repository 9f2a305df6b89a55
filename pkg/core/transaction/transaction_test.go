package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
	"github.com/n3core/node/pkg/util"
)

func newTestTx() *Transaction {
	return &Transaction{
		Version:         0,
		Nonce:           12345,
		SystemFee:       1_0000000,
		NetworkFee:      2000000,
		ValidUntilBlock: 100,
		Signers: []Signer{{
			Account: testutil.Uint160(),
			Scopes:  CalledByEntry,
		}},
		Attributes: []Attribute{},
		Script:     []byte{0x11, 0x12, 0x9e},
		Witnesses: []Witness{{
			InvocationScript:   []byte{0x01, 0x02},
			VerificationScript: []byte{0x03, 0x04},
		}},
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := newTestTx()
	data, err := testutil.EncodeBinary(tx)
	require.NoError(t, err)

	decoded, err := NewTransactionFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, tx.Nonce, decoded.Nonce)
	assert.Equal(t, tx.SystemFee, decoded.SystemFee)
	assert.Equal(t, tx.NetworkFee, decoded.NetworkFee)
	assert.Equal(t, tx.Signers[0].Account, decoded.Signers[0].Account)
	assert.Equal(t, tx.Script, decoded.Script)
	assert.Equal(t, tx.Hash(), decoded.Hash())
}

func TestTransactionHashStable(t *testing.T) {
	tx := newTestTx()
	h1 := tx.Hash()

	// The hash covers the unsigned form only: witnesses don't affect it.
	tx2 := newTestTx()
	tx2.Signers[0].Account = tx.Signers[0].Account
	tx2.Witnesses[0].InvocationScript = []byte{0xff}
	assert.Equal(t, h1, tx2.Hash())

	// Any unsigned field does.
	tx3 := newTestTx()
	tx3.Signers[0].Account = tx.Signers[0].Account
	tx3.Nonce++
	h3 := tx3.Hash()
	assert.NotEqual(t, h1, h3)
}

func TestTransactionSender(t *testing.T) {
	tx := newTestTx()
	assert.Equal(t, tx.Signers[0].Account, tx.Sender())
	assert.Equal(t, util.Uint160{}, (&Transaction{}).Sender())
}

func TestTransactionDecodeRejectsNoSigners(t *testing.T) {
	tx := newTestTx()
	tx.Signers = nil
	tx.Witnesses = nil
	data, err := testutil.EncodeBinary(tx)
	require.NoError(t, err)
	_, err = NewTransactionFromBytes(data)
	require.Error(t, err)
}

func TestTransactionDecodeRejectsWitnessMismatch(t *testing.T) {
	tx := newTestTx()
	tx.Witnesses = append(tx.Witnesses, Witness{})
	data, err := testutil.EncodeBinary(tx)
	require.NoError(t, err)
	_, err = NewTransactionFromBytes(data)
	require.Error(t, err)
}

func TestTransactionDecodeRejectsDuplicateSigners(t *testing.T) {
	tx := newTestTx()
	tx.Signers = append(tx.Signers, tx.Signers[0])
	tx.Witnesses = append(tx.Witnesses, Witness{})
	data, err := testutil.EncodeBinary(tx)
	require.NoError(t, err)
	_, err = NewTransactionFromBytes(data)
	require.Error(t, err)
}

func TestTransactionAttributes(t *testing.T) {
	tx := newTestTx()
	tx.Attributes = []Attribute{
		{Type: HighPriority, Value: &HighPriorityAttr{}},
		{Type: NotValidBeforeT, Value: &NotValidBefore{Height: 5}},
		{Type: ConflictsT, Value: &Conflicts{Hash: testutil.Uint256()}},
	}
	data, err := testutil.EncodeBinary(tx)
	require.NoError(t, err)
	decoded, err := NewTransactionFromBytes(data)
	require.NoError(t, err)
	require.Len(t, decoded.Attributes, 3)
	assert.True(t, decoded.IsHighPriority())
	assert.True(t, decoded.HasAttribute(ConflictsT))
	nvb := decoded.Attributes[1].Value.(*NotValidBefore)
	assert.Equal(t, uint32(5), nvb.Height)
}

func TestWitnessScriptHash(t *testing.T) {
	w := Witness{VerificationScript: []byte{0x11}}
	assert.NotEqual(t, util.Uint160{}, w.ScriptHash())
}

func TestSignerSerializationScopes(t *testing.T) {
	s := &Signer{
		Account:          testutil.Uint160(),
		Scopes:           CustomContracts,
		AllowedContracts: []util.Uint160{testutil.Uint160(), testutil.Uint160()},
	}
	actual := &Signer{}
	testutil.EncodeDecodeBinary(t, s, actual)
}

func TestTransactionSize(t *testing.T) {
	tx := newTestTx()
	data, err := testutil.EncodeBinary(tx)
	require.NoError(t, err)
	assert.Equal(t, len(data), tx.Size())
}
