package crypto

import (
	"errors"

	"github.com/n3core/node/pkg/crypto/base58"
	"github.com/n3core/node/pkg/util"
)

// DefaultAddressVersion is the mainnet Base58Check address-version
// prefix. Call sites that care about a different network pass their
// own version through AddressFromUint160Version/Uint160DecodeAddressVersion.
const DefaultAddressVersion = 0x35

// AddressFromUint160 converts a script hash to a Base58Check address using
// DefaultAddressVersion.
func AddressFromUint160(u util.Uint160) string {
	return AddressFromUint160Version(u, DefaultAddressVersion)
}

// AddressFromUint160Version converts a script hash to a Base58Check address
// using the given address-version byte.
func AddressFromUint160Version(u util.Uint160, version byte) string {
	b := make([]byte, 0, 1+util.Uint160Size)
	b = append(b, version)
	b = append(b, u.BytesBE()...)
	return base58.CheckEncode(b)
}

// Uint160DecodeAddress decodes a Base58Check address using
// DefaultAddressVersion.
func Uint160DecodeAddress(address string) (util.Uint160, error) {
	return Uint160DecodeAddressVersion(address, DefaultAddressVersion)
}

// Uint160DecodeAddressVersion decodes a Base58Check address, checking it
// carries the given address-version byte.
func Uint160DecodeAddressVersion(address string, version byte) (u util.Uint160, err error) {
	b, err := base58.CheckDecode(address)
	if err != nil {
		return u, err
	}
	if len(b) != 1+util.Uint160Size {
		return u, errors.New("unexpected address length")
	}
	if b[0] != version {
		return u, errors.New("address version mismatch")
	}
	return util.Uint160DecodeBytesBE(b[1:])
}
