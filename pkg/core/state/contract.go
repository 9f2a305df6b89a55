// Package state defines the persisted, on-chain entities the core reads
// and writes through the DAO layer: contract state, account balances, candidate records,
// and the decoded forms native contracts cache over raw storage items.
package state

import (
	"encoding/json"

	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract/manifest"
	"github.com/n3core/node/pkg/smartcontract/nef"
	"github.com/n3core/node/pkg/util"
)

// Contract is the persisted record ContractManagement keeps for every
// deployed contract, native or user.
type Contract struct {
	ID             int32
	UpdateCounter  uint16
	Hash           util.Uint160
	NEF            nef.File
	Manifest       manifest.Manifest
}

// EncodeBinary implements io.Serializable.
func (c *Contract) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(uint32(c.ID))
	w.WriteU16LE(c.UpdateCounter)
	w.WriteBytes(c.Hash.BytesLE())
	nefBytes, err := c.NEF.Bytes()
	if err != nil {
		w.Err = err
		return
	}
	w.WriteVarBytes(nefBytes)
	mb, err := json.Marshal(&c.Manifest)
	if err != nil {
		w.Err = err
		return
	}
	w.WriteVarBytes(mb)
}

// DecodeBinary implements io.Serializable.
func (c *Contract) DecodeBinary(r *io.BinReader) {
	c.ID = int32(r.ReadU32LE())
	c.UpdateCounter = r.ReadU16LE()
	var h [util.Uint160Size]byte
	r.ReadBytes(h[:])
	if r.Err != nil {
		return
	}
	c.Hash, r.Err = util.Uint160DecodeBytesLE(h[:])
	if r.Err != nil {
		return
	}
	nb := r.ReadVarBytes(nefMaxSize)
	if r.Err != nil {
		return
	}
	nr := io.NewBinReaderFromBuf(nb)
	c.NEF.DecodeBinary(nr)
	if nr.Err != nil {
		r.Err = nr.Err
		return
	}
	mb := r.ReadVarBytes(manifest.MaxManifestSize)
	if r.Err != nil {
		return
	}
	r.Err = manifest.Unmarshal(mb, &c.Manifest)
}

const nefMaxSize = 1024 * 1024

// IsNative reports whether c is one of the fixed-hash natives (negative id).
func (c *Contract) IsNative() bool {
	return c.ID < 0
}
