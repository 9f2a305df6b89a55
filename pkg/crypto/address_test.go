package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3core/node/internal/testutil"
)

func TestAddressRoundTrip(t *testing.T) {
	u := testutil.Uint160()
	addr := AddressFromUint160(u)
	back, err := Uint160DecodeAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, u, back)
}

func TestAddressVersionMismatch(t *testing.T) {
	u := testutil.Uint160()
	addr := AddressFromUint160Version(u, 0x17)
	_, err := Uint160DecodeAddressVersion(addr, 0x35)
	assert.Error(t, err)

	back, err := Uint160DecodeAddressVersion(addr, 0x17)
	require.NoError(t, err)
	assert.Equal(t, u, back)
}

func TestAddressInvalid(t *testing.T) {
	_, err := Uint160DecodeAddress("not-an-address")
	assert.Error(t, err)
}
