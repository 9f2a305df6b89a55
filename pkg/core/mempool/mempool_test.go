package mempool

import (
	"errors"
	"math/big"
	"sort"
	"testing"
	"time"

	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feerStub struct {
	feePerByte  int64
	p2pSigExt   bool
	blockHeight uint32
	balance     int64
}

func (fs *feerStub) GetBaseExecFee() int64                           { return 30 }
func (fs *feerStub) FeePerByte() int64                               { return fs.feePerByte }
func (fs *feerStub) BlockHeight() uint32                             { return fs.blockHeight }
func (fs *feerStub) GetUtilityTokenBalance(util.Uint160) *big.Int    { return big.NewInt(fs.balance) }
func (fs *feerStub) P2PSigExtensionsEnabled() bool                   { return fs.p2pSigExt }

func newTx(nonce uint32, netFee int64) *transaction.Transaction {
	return &transaction.Transaction{
		Script:     []byte{0x51},
		Nonce:      nonce,
		NetworkFee: netFee,
		Signers:    []transaction.Signer{{Account: util.Uint160{1, 2, 3}}},
	}
}

func TestMemPoolAddRemove(t *testing.T) {
	fs := &feerStub{}
	mp := New(10, 0, false)
	tx := newTx(0, 0)
	_, ok := mp.TryGetValue(tx.Hash())
	require.False(t, ok)
	require.NoError(t, mp.Add(tx, fs))
	require.Error(t, mp.Add(tx, fs))
	tx2, ok := mp.TryGetValue(tx.Hash())
	require.True(t, ok)
	require.Equal(t, tx, tx2)
	mp.Remove(tx.Hash(), fs)
	_, ok = mp.TryGetValue(tx.Hash())
	require.False(t, ok)
	assert.Equal(t, 0, mp.Count())
}

func TestMemPoolRemoveStale(t *testing.T) {
	mp := New(5, 0, false)
	txs := make([]*transaction.Transaction, 5)
	for i := range txs {
		txs[i] = newTx(uint32(i), 0)
		require.NoError(t, mp.Add(txs[i], &feerStub{blockHeight: uint32(i)}))
	}

	stale := make(chan *transaction.Transaction, 5)
	mp.SetResendThreshold(5, func(tx *transaction.Transaction, _ interface{}) { stale <- tx })

	isValid := func(tx *transaction.Transaction) bool { return tx.Nonce%2 == 0 }

	mp.RemoveStale(isValid, &feerStub{blockHeight: 5})
	require.Eventually(t, func() bool { return len(stale) == 1 }, time.Second, time.Millisecond*100)
	require.Equal(t, txs[0], <-stale)

	mp.RemoveStale(isValid, &feerStub{blockHeight: 7})
	require.Eventually(t, func() bool { return len(stale) == 1 }, time.Second, time.Millisecond*100)
	require.Equal(t, txs[2], <-stale)

	mp.RemoveStale(isValid, &feerStub{blockHeight: 10})
	require.Eventually(t, func() bool { return len(stale) == 1 }, time.Second, time.Millisecond*100)
	require.Equal(t, txs[0], <-stale)

	mp.RemoveStale(isValid, &feerStub{blockHeight: 15})

	mp.RemoveStale(isValid, &feerStub{blockHeight: 22})
	require.Eventually(t, func() bool { return len(stale) == 1 }, time.Second, time.Millisecond*100)
	require.Equal(t, txs[2], <-stale)

	close(stale)
	require.Len(t, stale, 0)
}

func TestOverCapacity(t *testing.T) {
	fs := &feerStub{balance: 10000000}
	const capacity = 10
	mp := New(capacity, 0, false)

	nonce := uint32(0)
	for i := 0; i < capacity; i++ {
		require.NoError(t, mp.Add(newTx(nonce, 0), fs))
		nonce++
	}
	require.Equal(t, capacity, mp.Count())
	require.True(t, sort.IsSorted(sort.Reverse(mp.verifiedTxes)))

	for i := 0; i < capacity; i++ {
		tx := newTx(nonce, 10000)
		nonce++
		require.NoError(t, mp.Add(tx, fs))
		require.Equal(t, capacity, mp.Count())
	}

	low := newTx(nonce, 100)
	nonce++
	require.Error(t, mp.Add(low, fs))
	require.Equal(t, capacity, mp.Count())
	require.False(t, mp.ContainsKey(low.Hash()))
}

func TestGetVerifiedTransactions(t *testing.T) {
	fs := &feerStub{}
	const capacity = 10
	mp := New(capacity, 0, false)

	txes := make([]*transaction.Transaction, 0, capacity)
	for i := 0; i < capacity; i++ {
		tx := newTx(uint32(i), 0)
		txes = append(txes, tx)
		require.NoError(t, mp.Add(tx, fs))
	}
	require.ElementsMatch(t, txes, mp.GetVerifiedTransactions())
	for _, tx := range txes {
		mp.Remove(tx.Hash(), fs)
	}
	require.Empty(t, mp.GetVerifiedTransactions())
}

func TestMemPoolFees(t *testing.T) {
	mp := New(10, 0, false)
	fs := &feerStub{balance: 10000000}
	sender := util.Uint160{1, 2, 3}

	tx0 := newTx(0, fs.balance+1)
	tx0.Signers = []transaction.Signer{{Account: sender}}
	require.False(t, mp.Verify(tx0, fs))
	require.Error(t, mp.Add(tx0, fs))

	half := fs.balance / 4
	tx1 := newTx(1, half)
	tx1.Signers = []transaction.Signer{{Account: sender}}
	require.NoError(t, mp.Add(tx1, fs))

	tx2 := newTx(2, fs.balance-half)
	tx2.Signers = []transaction.Signer{{Account: sender}}
	require.NoError(t, mp.Add(tx2, fs))

	tx3 := newTx(3, 1)
	tx3.Signers = []transaction.Signer{{Account: sender}}
	require.False(t, mp.Verify(tx3, fs))
	require.Error(t, mp.Add(tx3, fs))
}

func TestItemCompareTo(t *testing.T) {
	sender := util.Uint160{1, 2, 3}
	balance := int64(10000000)

	highPriority := func(tx *transaction.Transaction) {
		tx.Attributes = []transaction.Attribute{{Type: transaction.HighPriority, Value: &transaction.HighPriorityAttr{}}}
	}

	tx1 := newTx(1, balance/8)
	tx1.Signers = []transaction.Signer{{Account: sender}}
	highPriority(tx1)
	tx2 := newTx(2, balance/16)
	tx2.Signers = []transaction.Signer{{Account: sender}}
	highPriority(tx2)
	tx3 := newTx(3, balance/2)
	tx3.Signers = []transaction.Signer{{Account: sender}}
	tx4 := newTx(4, balance/4)
	tx4.Signers = []transaction.Signer{{Account: sender}}

	i1, i2, i3, i4 := item{txn: tx1}, item{txn: tx2}, item{txn: tx3}, item{txn: tx4}

	require.True(t, i1.CompareTo(i2) > 0)
	require.True(t, i1.CompareTo(i3) > 0)
	require.True(t, i2.CompareTo(i3) > 0)
	require.True(t, i3.CompareTo(i4) > 0)
}

func TestMempoolAddRemoveOracleResponse(t *testing.T) {
	mp := New(3, 0, false)
	fs := &feerStub{balance: 10000}
	nonce := uint32(0)
	oracleTx := func(netFee int64, id uint64) *transaction.Transaction {
		tx := newTx(nonce, netFee)
		nonce++
		tx.Attributes = []transaction.Attribute{{Type: transaction.OracleResponseT, Value: &transaction.OracleResponse{ID: id}}}
		return tx
	}

	tx1 := oracleTx(10, 1)
	require.NoError(t, mp.Add(tx1, fs))

	tx2 := oracleTx(5, 1)
	require.True(t, errors.Is(mp.Add(tx2, fs), ErrOracleResponse))

	mp.Remove(tx1.Hash(), fs)
	require.NoError(t, mp.Add(tx2, fs))

	tx3 := oracleTx(6, 1)
	require.NoError(t, mp.Add(tx3, fs))
	_, ok := mp.TryGetValue(tx2.Hash())
	require.False(t, ok)
	_, ok = mp.TryGetValue(tx3.Hash())
	require.True(t, ok)
}

func TestMempoolAddRemoveConflicts(t *testing.T) {
	capacity := 6
	mp := New(capacity, 0, false)
	fs := &feerStub{p2pSigExt: true, balance: 100000}
	nonce := uint32(1)
	conflictsTx := func(netFee int64, hashes ...util.Uint256) *transaction.Transaction {
		tx := newTx(nonce, netFee)
		nonce++
		tx.Attributes = make([]transaction.Attribute, len(hashes))
		for i, h := range hashes {
			tx.Attributes[i] = transaction.Attribute{Type: transaction.ConflictsT, Value: &transaction.Conflicts{Hash: h}}
		}
		return tx
	}

	smallFee := int64(3)
	tx1 := conflictsTx(smallFee)
	require.NoError(t, mp.Add(tx1, fs))

	tx2 := conflictsTx(smallFee-1, tx1.Hash())
	require.True(t, errors.Is(mp.Add(tx2, fs), ErrConflictsAttribute))

	tx3 := conflictsTx(smallFee+1, tx1.Hash())
	require.NoError(t, mp.Add(tx3, fs))
	assert.Equal(t, 1, mp.Count())
	assert.Equal(t, []util.Uint256{tx3.Hash()}, mp.conflicts[tx1.Hash()])

	require.True(t, errors.Is(mp.Add(tx1, fs), ErrConflictsAttribute))

	require.NoError(t, mp.Add(tx2, fs))
	assert.Equal(t, []util.Uint256{tx3.Hash(), tx2.Hash()}, mp.conflicts[tx1.Hash()])
}
