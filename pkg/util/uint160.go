package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint160 is a 20 byte long unsigned integer, used for script hashes
// (contract and account identifiers).
type Uint160 [Uint160Size]uint8

// Uint160DecodeString attempts to decode the given string (optionally
// "0x"-prefixed, big-endian hex) into a Uint160.
func Uint160DecodeString(s string) (u Uint160, err error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s) != Uint160Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint160Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint160DecodeBytesBE(b)
}

// Uint160DecodeBytes is kept for backwards-compatible callers that don't
// care about endianness explicitly; it decodes big-endian bytes.
func Uint160DecodeBytes(b []byte) (u Uint160, err error) {
	return Uint160DecodeBytesBE(b)
}

// Uint160DecodeBytesBE attempts to decode the given big-endian bytes into
// a Uint160.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint160Size, len(b))
	}
	for i, v := range b {
		u[Uint160Size-i-1] = v
	}
	return u, nil
}

// Uint160DecodeBytesLE attempts to decode the given little-endian bytes
// into a Uint160.
func Uint160DecodeBytesLE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// BytesBE returns a big-endian byte representation of u.
func (u Uint160) BytesBE() []byte {
	return ToArrayReverse(u[:])
}

// BytesLE returns a little-endian byte representation of u.
func (u Uint160) BytesLE() []byte {
	b := make([]byte, Uint160Size)
	copy(b, u[:])
	return b
}

// Equals returns true if u == other.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// String implements the Stringer interface, producing big-endian hex.
func (u Uint160) String() string {
	return hex.EncodeToString(u.BytesBE())
}

// StringLE returns the little-endian hex encoding of u.
func (u Uint160) StringLE() string {
	return hex.EncodeToString(u[:])
}

// CompareTo compares two Uint160 with each other, returning -1, 0 or 1.
func (u Uint160) CompareTo(other Uint160) int {
	for i := Uint160Size - 1; i >= 0; i-- {
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
func (u Uint160) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + u.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (u *Uint160) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = Uint160DecodeString(js)
	return err
}
