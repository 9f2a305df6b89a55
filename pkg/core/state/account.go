package state

import (
	"math/big"

	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

// NEOBalance is NeoToken's per-account storage row: balance, the height at which it was last touched (for
// GAS-per-block accrual), and the account's current vote target.
type NEOBalance struct {
	Balance       *big.Int
	BalanceHeight uint32
	VoteTo        *util.Uint160
}

// EncodeBinary implements io.Serializable.
func (b *NEOBalance) EncodeBinary(w *io.BinWriter) {
	writeBigInt(w, b.Balance)
	w.WriteU32LE(b.BalanceHeight)
	w.WriteBool(b.VoteTo != nil)
	if b.VoteTo != nil {
		w.WriteBytes(b.VoteTo.BytesLE())
	}
}

// DecodeBinary implements io.Serializable.
func (b *NEOBalance) DecodeBinary(r *io.BinReader) {
	b.Balance = readBigInt(r)
	b.BalanceHeight = r.ReadU32LE()
	hasVote := r.ReadBool()
	if r.Err != nil {
		return
	}
	if hasVote {
		var u util.Uint160
		u.DecodeBinary(r)
		if r.Err != nil {
			return
		}
		b.VoteTo = &u
	}
}

// GASBalance is GasToken's per-account storage row.
type GASBalance struct {
	Balance       *big.Int
	BalanceHeight uint32
}

// EncodeBinary implements io.Serializable.
func (b *GASBalance) EncodeBinary(w *io.BinWriter) {
	writeBigInt(w, b.Balance)
	w.WriteU32LE(b.BalanceHeight)
}

// DecodeBinary implements io.Serializable.
func (b *GASBalance) DecodeBinary(r *io.BinReader) {
	b.Balance = readBigInt(r)
	b.BalanceHeight = r.ReadU32LE()
}

func writeBigInt(w *io.BinWriter, v *big.Int) {
	if v == nil {
		v = big.NewInt(0)
	}
	b := v.Bytes()
	neg := v.Sign() < 0
	w.WriteBool(neg)
	w.WriteVarBytes(b)
}

func readBigInt(r *io.BinReader) *big.Int {
	neg := r.ReadBool()
	b := r.ReadVarBytes(64)
	if r.Err != nil {
		return big.NewInt(0)
	}
	v := new(big.Int).SetBytes(b)
	if neg {
		v.Neg(v)
	}
	return v
}
