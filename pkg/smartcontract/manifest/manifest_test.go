package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
	"github.com/n3core/node/pkg/util"
)

func TestDefaultManifestRoundTrip(t *testing.T) {
	m := DefaultManifest("Test")
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, Unmarshal(data, &decoded))
	assert.Equal(t, m.Name, decoded.Name)
	assert.Len(t, decoded.Permissions, 1)
	assert.True(t, decoded.Permissions[0].Wildcard)
}

func TestUnmarshalToleratesUnknownFields(t *testing.T) {
	m := DefaultManifest("Test")
	data, err := json.Marshal(m)
	require.NoError(t, err)

	// Splice an unknown field into the document.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["futurefield"] = json.RawMessage(`"whatever"`)
	patched, err := json.Marshal(raw)
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, Unmarshal(patched, &decoded))
	assert.Equal(t, "Test", decoded.Name)
}

func TestCanCallDefaultWildcard(t *testing.T) {
	m := DefaultManifest("Test")
	assert.True(t, m.CanCall(testutil.Uint160(), nil, "anything"))
}

func TestCanCallRestricted(t *testing.T) {
	target := testutil.Uint160()
	other := testutil.Uint160()
	m := DefaultManifest("Test")
	m.Permissions = []Permission{{
		Hash:    &target,
		Methods: []string{"transfer"},
	}}

	assert.True(t, m.CanCall(target, nil, "transfer"))
	assert.False(t, m.CanCall(target, nil, "mint"))
	assert.False(t, m.CanCall(other, nil, "transfer"))
}

func TestABIGetMethod(t *testing.T) {
	m := DefaultManifest("Test")
	m.ABI.Methods = []Method{
		{Name: "verify", Offset: 0, Parameters: []Parameter{}},
		{Name: "transfer", Offset: 10, Parameters: make([]Parameter, 4)},
	}

	require.NotNil(t, m.ABI.GetMethod("verify", 0))
	require.NotNil(t, m.ABI.GetMethod("verify", -1))
	require.NotNil(t, m.ABI.GetMethod("transfer", 4))
	assert.Nil(t, m.ABI.GetMethod("transfer", 2))
	assert.Nil(t, m.ABI.GetMethod("missing", -1))
}

func TestToCanonicalJSONDeterministic(t *testing.T) {
	m := DefaultManifest("Test")
	m.Trusts = []util.Uint160{testutil.Uint160()}
	a, err := m.ToCanonicalJSON()
	require.NoError(t, err)
	b, err := m.ToCanonicalJSON()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}
