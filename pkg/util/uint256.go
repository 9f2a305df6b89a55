package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32 byte long unsigned integer, traditionally used to store
// block and transaction hashes. It is little-endian internally (matching
// the wire encoding) but String/MarshalJSON render it big-endian, as the
// reference node and block explorers do.
type Uint256 [Uint256Size]uint8

// Uint256DecodeString attempts to decode the given string (in big-endian,
// optionally "0x"-prefixed hex) into a Uint256.
func Uint256DecodeString(s string) (u Uint256, err error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s) != Uint256Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint256Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint256DecodeBytesBE(b)
}

// Uint256DecodeBytesBE attempts to decode the given big-endian bytes into
// a Uint256.
func Uint256DecodeBytesBE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	for i, v := range b {
		u[Uint256Size-i-1] = v
	}
	return u, nil
}

// Uint256DecodeBytesLE attempts to decode the given little-endian bytes
// into a Uint256.
func Uint256DecodeBytesLE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint256) BytesBE() []byte {
	return ToArrayReverse(u[:])
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint256) BytesLE() []byte {
	b := make([]byte, Uint256Size)
	copy(b, u[:])
	return b
}

// BytesReverse returns a copy of u with its byte order reversed.
func (u Uint256) BytesReverse() Uint256 {
	var res Uint256
	for i := range u {
		res[Uint256Size-i-1] = u[i]
	}
	return res
}

// Reverse reverses the Uint256 in place and returns it.
func (u *Uint256) Reverse() Uint256 {
	*u = u.BytesReverse()
	return *u
}

// Equals returns true if u == other.
func (u Uint256) Equals(other Uint256) bool {
	return u == other
}

// String implements the Stringer interface, producing big-endian hex.
func (u Uint256) String() string {
	return hex.EncodeToString(u.BytesBE())
}

// StringLE returns the little-endian hex encoding of u.
func (u Uint256) StringLE() string {
	return hex.EncodeToString(u[:])
}

// CompareTo compares two Uint256 with each other, returning -1, 0 or 1,
// comparing bytewise over the little-endian representation (matching the
// reference's wire ordering).
func (u Uint256) CompareTo(other Uint256) int {
	for i := Uint256Size - 1; i >= 0; i-- {
		if u[i] == other[i] {
			continue
		}
		if u[i] > other[i] {
			return 1
		}
		return -1
	}
	return 0
}

// MarshalJSON implements the json.Marshaler interface.
func (u Uint256) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + u.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (u *Uint256) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = Uint256DecodeString(js)
	return err
}
