package block

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/util"
)

// MaxTransactionsPerBlock bounds the transaction count encoded in a block.
const MaxTransactionsPerBlock = math.MaxUint16

// ErrMaxContentsPerBlock is returned when a block claims more transactions
// than MaxTransactionsPerBlock.
var ErrMaxContentsPerBlock = errors.New("the number of transactions exceeds the maximum per block")

// Block is a Header plus its full transaction list.
type Block struct {
	Header

	Transactions []*transaction.Transaction

	// Trimmed reports whether Transactions holds only hash placeholders,
	// as stored in the trimmed on-disk block form.
	Trimmed bool
}

type auxBlockOut struct {
	Transactions []*transaction.Transaction `json:"tx"`
}

type auxBlockIn struct {
	Transactions []json.RawMessage `json:"tx"`
}

// ComputeMerkleRoot recomputes the Merkle root over the current
// Transactions.
func (b *Block) ComputeMerkleRoot() util.Uint256 {
	hashes := make([]util.Uint256, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}
	return hash.CalcMerkleRoot(hashes)
}

// RebuildMerkleRoot recomputes and stores the Merkle root.
func (b *Block) RebuildMerkleRoot() {
	b.MerkleRoot = b.ComputeMerkleRoot()
}

// New creates a blank block.
func New() *Block {
	return &Block{}
}

// NewBlockFromTrimmedBytes rebuilds a block from its trimmed on-disk form,
// where transactions are represented only by their hashes.
func NewBlockFromTrimmedBytes(b []byte) (*Block, error) {
	block := &Block{Trimmed: true}
	br := io.NewBinReaderFromBuf(b)
	block.Header.DecodeBinary(br)
	lenHashes := br.ReadVarUint()
	if lenHashes > MaxTransactionsPerBlock {
		return nil, ErrMaxContentsPerBlock
	}
	if lenHashes > 0 {
		block.Transactions = make([]*transaction.Transaction, lenHashes)
		for i := 0; i < int(lenHashes); i++ {
			var h util.Uint256
			h.DecodeBinary(br)
			block.Transactions[i] = transaction.NewTrimmedTX(h)
		}
	}
	return block, br.Err
}

// Trim returns the on-disk form of b: the header plus transaction hashes
// only, saving the full script bodies.
func (b *Block) Trim() ([]byte, error) {
	buf := io.NewBufBinWriter()
	b.Header.EncodeBinary(buf.BinWriter)
	buf.WriteVarUint(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		h := tx.Hash()
		h.EncodeBinary(buf.BinWriter)
	}
	if buf.Err != nil {
		return nil, buf.Err
	}
	return buf.Bytes(), nil
}

// DecodeBinary implements io.Serializable.
func (b *Block) DecodeBinary(br *io.BinReader) {
	b.Header.DecodeBinary(br)
	contentsCount := br.ReadVarUint()
	if br.Err != nil {
		return
	}
	if contentsCount > MaxTransactionsPerBlock {
		br.Err = ErrMaxContentsPerBlock
		return
	}
	txes := make([]*transaction.Transaction, contentsCount)
	for i := range txes {
		tx := &transaction.Transaction{}
		tx.DecodeBinary(br)
		txes[i] = tx
	}
	b.Transactions = txes
}

// EncodeBinary implements io.Serializable.
func (b *Block) EncodeBinary(bw *io.BinWriter) {
	b.Header.EncodeBinary(bw)
	bw.WriteVarUint(uint64(len(b.Transactions)))
	for i := range b.Transactions {
		b.Transactions[i].EncodeBinary(bw)
	}
}

// MarshalJSON implements json.Marshaler.
func (b Block) MarshalJSON() ([]byte, error) {
	auxb, err := json.Marshal(auxBlockOut{Transactions: b.Transactions})
	if err != nil {
		return nil, err
	}
	baseBytes, err := json.Marshal(b.Header)
	if err != nil {
		return nil, err
	}
	if baseBytes[len(baseBytes)-1] != '}' || auxb[0] != '{' {
		return nil, errors.New("can't merge internal jsons")
	}
	baseBytes[len(baseBytes)-1] = ','
	baseBytes = append(baseBytes, auxb[1:]...)
	return baseBytes, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Block) UnmarshalJSON(data []byte) error {
	auxb := new(auxBlockIn)
	if err := json.Unmarshal(data, auxb); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &b.Header); err != nil {
		return err
	}
	if len(auxb.Transactions) != 0 {
		b.Transactions = make([]*transaction.Transaction, 0, len(auxb.Transactions))
		for _, txBytes := range auxb.Transactions {
			tx := &transaction.Transaction{}
			if err := json.Unmarshal(txBytes, tx); err != nil {
				return err
			}
			b.Transactions = append(b.Transactions, tx)
		}
	}
	return nil
}

// Size returns the serialized byte length of the block.
func (b *Block) Size() int {
	w := io.NewBufBinWriter()
	b.EncodeBinary(w.BinWriter)
	return w.Len()
}
