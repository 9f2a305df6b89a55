package block

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

// VersionInitial is the only block version the reference node produces.
const VersionInitial uint32 = 0

// Header carries a block's hashable fields plus the single witness script
// authorizing it.
type Header struct {
	Version       uint32
	PrevHash      util.Uint256
	MerkleRoot    util.Uint256
	Timestamp     uint64
	Nonce         uint64
	Index         uint32
	PrimaryIndex  byte
	NextConsensus util.Uint160
	Script        transaction.Witness

	hash util.Uint256
}

type headerAux struct {
	Hash          util.Uint256          `json:"hash"`
	Version       uint32                `json:"version"`
	PrevHash      util.Uint256          `json:"previousblockhash"`
	MerkleRoot    util.Uint256          `json:"merkleroot"`
	Timestamp     uint64                `json:"time"`
	Nonce         string                `json:"nonce"`
	Index         uint32                `json:"index"`
	NextConsensus string                `json:"nextconsensus"`
	PrimaryIndex  byte                  `json:"primary"`
	Witnesses     []transaction.Witness `json:"witnesses"`
}

// Hash returns the header hash (Hash256 over the hashable fields).
// It is cached on first computation; decode/re-encode to refresh it after
// mutating the header.
func (h *Header) Hash() util.Uint256 {
	if h.hash.Equals(util.Uint256{}) {
		h.createHash()
	}
	return h.hash
}

// DecodeBinary implements io.Serializable.
func (h *Header) DecodeBinary(br *io.BinReader) {
	h.decodeHashableFields(br)
	witnessCount := br.ReadVarUint()
	if br.Err == nil && witnessCount != 1 {
		br.Err = errors.New("wrong witness count")
		return
	}
	h.Script.DecodeBinary(br)
}

// EncodeBinary implements io.Serializable.
func (h *Header) EncodeBinary(bw *io.BinWriter) {
	h.encodeHashableFields(bw)
	bw.WriteVarUint(1)
	h.Script.EncodeBinary(bw)
}

func (h *Header) createHash() {
	buf := io.NewBufBinWriter()
	h.encodeHashableFields(buf.BinWriter)
	h.hash = hash.DoubleSha256(buf.Bytes())
}

// SigningData returns the network-salted message h's witness verification
// script must sign, matching transaction.Transaction.SigningData.
func (h *Header) SigningData(network uint32) []byte {
	w := io.NewBufBinWriter()
	w.WriteU32LE(network)
	w.WriteBytes(h.Hash().BytesLE())
	return w.Bytes()
}

// encodeHashableFields writes the fields that feed Hash.
func (h *Header) encodeHashableFields(bw *io.BinWriter) {
	bw.WriteU32LE(h.Version)
	bw.WriteBytes(h.PrevHash[:])
	bw.WriteBytes(h.MerkleRoot[:])
	bw.WriteU64LE(h.Timestamp)
	bw.WriteU64LE(h.Nonce)
	bw.WriteU32LE(h.Index)
	bw.WriteB(h.PrimaryIndex)
	bw.WriteBytes(h.NextConsensus[:])
}

func (h *Header) decodeHashableFields(br *io.BinReader) {
	h.Version = br.ReadU32LE()
	br.ReadBytes(h.PrevHash[:])
	br.ReadBytes(h.MerkleRoot[:])
	h.Timestamp = br.ReadU64LE()
	h.Nonce = br.ReadU64LE()
	h.Index = br.ReadU32LE()
	h.PrimaryIndex = br.ReadB()
	br.ReadBytes(h.NextConsensus[:])
	if br.Err == nil {
		h.createHash()
	}
}

// MarshalJSON implements json.Marshaler.
func (h Header) MarshalJSON() ([]byte, error) {
	aux := headerAux{
		Hash:          h.Hash(),
		Version:       h.Version,
		PrevHash:      h.PrevHash,
		MerkleRoot:    h.MerkleRoot,
		Timestamp:     h.Timestamp,
		Nonce:         fmt.Sprintf("%016X", h.Nonce),
		Index:         h.Index,
		PrimaryIndex:  h.PrimaryIndex,
		NextConsensus: crypto.AddressFromUint160(h.NextConsensus),
		Witnesses:     []transaction.Witness{h.Script},
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *Header) UnmarshalJSON(data []byte) error {
	aux := new(headerAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	var nonce uint64
	var err error
	if len(aux.Nonce) != 0 {
		nonce, err = strconv.ParseUint(aux.Nonce, 16, 64)
		if err != nil {
			return err
		}
	}
	nextC, err := crypto.Uint160DecodeAddress(aux.NextConsensus)
	if err != nil {
		return err
	}
	if len(aux.Witnesses) != 1 {
		return errors.New("wrong number of witnesses")
	}
	h.Version = aux.Version
	h.PrevHash = aux.PrevHash
	h.MerkleRoot = aux.MerkleRoot
	h.Timestamp = aux.Timestamp
	h.Nonce = nonce
	h.Index = aux.Index
	h.PrimaryIndex = aux.PrimaryIndex
	h.NextConsensus = nextC
	h.Script = aux.Witnesses[0]
	if !aux.Hash.Equals(h.Hash()) {
		return errors.New("json 'hash' doesn't match header hash")
	}
	return nil
}
