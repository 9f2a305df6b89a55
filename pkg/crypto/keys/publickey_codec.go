package keys

import (
	"encoding/hex"
	"encoding/json"

	"github.com/n3core/node/pkg/io"
)

// Equal reports whether p and other encode the same compressed point on
// the same curve.
func (p *PublicKey) Equal(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Curve == other.Curve && p.X.Cmp(other.X) == 0 && p.Y.Cmp(other.Y) == 0
}

// Cmp orders two public keys by their compressed byte encoding, the
// tie-breaker NeoToken's committee ranking uses.
func (p *PublicKey) Cmp(other *PublicKey) int {
	a, b := p.Bytes(), other.Bytes()
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// EncodeBinary implements io.Serializable.
func (p *PublicKey) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(p.Bytes())
}

// DecodeBinary implements io.Serializable.
func (p *PublicKey) DecodeBinary(r *io.BinReader) {
	var b [PublicKeySize]byte
	r.ReadBytes(b[:])
	if r.Err != nil {
		return
	}
	np, err := NewPublicKeyFromBytes(b[:])
	if err != nil {
		r.Err = err
		return
	}
	*p = *np
}

// MarshalJSON implements json.Marshaler, matching the reference's
// lowercase-hex pubkey spelling used in manifests and RPC responses.
func (p *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	np, err := NewPublicKeyFromBytes(b)
	if err != nil {
		return err
	}
	*p = *np
	return nil
}
