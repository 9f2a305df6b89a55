package transaction

import (
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

// MaxWitnessScriptSize caps each half of a Witness.
const MaxWitnessScriptSize = 64 * 1024

// Witness is an (invocation-script, verification-script) pair proving a
// signer's authority.
type Witness struct {
	InvocationScript   []byte
	VerificationScript []byte
}

// ScriptHash returns the Hash160 of the verification script, which must
// equal the corresponding signer's account.
func (w Witness) ScriptHash() util.Uint160 {
	return hash.Hash160(w.VerificationScript)
}

// EncodeBinary implements io.Serializable.
func (w *Witness) EncodeBinary(bw *io.BinWriter) {
	bw.WriteVarBytes(w.InvocationScript)
	bw.WriteVarBytes(w.VerificationScript)
}

// DecodeBinary implements io.Serializable.
func (w *Witness) DecodeBinary(br *io.BinReader) {
	w.InvocationScript = br.ReadVarBytes(MaxWitnessScriptSize)
	w.VerificationScript = br.ReadVarBytes(MaxWitnessScriptSize)
}
