// Package mempool holds the fee-ordered pool of verified, not-yet-included
// transactions the block assembler and P2P relay read from, with a
// separate high-priority lane.
package mempool

import (
	"errors"
	"math/big"
	"sort"
	"sync"

	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/util"
)

var (
	// ErrDup is returned when a transaction with the same hash is already
	// in the pool.
	ErrDup = errors.New("mempool: duplicate transaction")
	// ErrOOM is returned when the pool is at capacity and the incoming
	// transaction isn't prioritized enough to evict the worst entry.
	ErrOOM = errors.New("mempool: pool is full")
	// ErrInsufficientFunds is returned when the sender's GAS balance can't
	// cover the sum of network fees of every mempooled transaction of
	// theirs plus the incoming one.
	ErrInsufficientFunds = errors.New("mempool: insufficient funds for fee")
	// ErrConflictsAttribute is returned when a Conflicts attribute check
	// fails in either direction.
	ErrConflictsAttribute = errors.New("mempool: conflicts attribute check failed")
	// ErrOracleResponse is returned when a higher- or equal-fee transaction
	// already answers the same OracleResponse id.
	ErrOracleResponse = errors.New("mempool: oracle response already pooled with a better fee")
)

// Feer supplies the sender-balance and fee-policy facts Verify/Add need
// without the mempool depending on the blockchain package directly.
type Feer interface {
	GetBaseExecFee() int64
	FeePerByte() int64
	BlockHeight() uint32
	GetUtilityTokenBalance(util.Uint160) *big.Int
	P2PSigExtensionsEnabled() bool
}

// item wraps a pooled transaction with the bookkeeping Pool needs: the
// height it was added at, from which RemoveStale's resend backoff counts.
type item struct {
	txn        *transaction.Transaction
	blockStamp uint32
}

// CompareTo orders items by priority: any HighPriority transaction always
// outranks a non-high-priority one; within the same class the one with
// the larger fee-per-byte wins.
func (i item) CompareTo(o item) int {
	p1, p2 := i.txn.IsHighPriority(), o.txn.IsHighPriority()
	if p1 != p2 {
		if p1 {
			return 1
		}
		return -1
	}
	f1, f2 := feePerByte(i.txn), feePerByte(o.txn)
	switch {
	case f1 > f2:
		return 1
	case f1 < f2:
		return -1
	default:
		return i.txn.Hash().CompareTo(o.txn.Hash())
	}
}

func feePerByte(t *transaction.Transaction) int64 {
	sz := t.Size()
	if sz == 0 {
		return t.NetworkFee
	}
	return t.NetworkFee / int64(sz)
}

// items is kept sorted highest-priority first, so GetVerifiedTransactions
// returns a ready-to-assemble block order and capacity eviction drops the
// tail.
type items []item

func (p items) Len() int           { return len(p) }
func (p items) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p items) Less(i, j int) bool { return p[i].CompareTo(p[j]) < 0 }

// utilityBalanceAndFees caches a sender's GAS balance as of the last time
// it was consulted, alongside the running sum of NetworkFee across every
// one of that sender's currently pooled transactions, so a new candidate
// can be rejected without walking the whole pool.
type utilityBalanceAndFees struct {
	balance *big.Int
	feeSum  *big.Int
}

// ResendFunc is invoked by RemoveStale's exponential-backoff resend check.
type ResendFunc func(tx *transaction.Transaction, data interface{})

// Pool is the mempool itself: a capacity-bounded, fee-sorted set of
// verified transactions plus the secondary indices needed to enforce
// OracleResponse and Conflicts attribute rules in O(1).
type Pool struct {
	lock sync.RWMutex

	verifiedMap  map[util.Uint256]*transaction.Transaction
	verifiedTxes items

	fees       map[util.Uint160]utilityBalanceAndFees
	oracleResp map[uint64]util.Uint256
	conflicts  map[util.Uint256][]util.Uint256

	capacity int

	resendThreshold uint32
	resendFunc      ResendFunc
}

// New builds an empty pool. resendThreshold is the initial resend backoff
// window (0 disables resending until SetResendThreshold is called).
// p2pSigExtensionsEnabled is not used: Conflicts-attribute handling follows
// the Feer's P2PSigExtensionsEnabled on each call.
func New(capacity int, resendThreshold uint32, p2pSigExtensionsEnabled bool) *Pool {
	return &Pool{
		verifiedMap:     make(map[util.Uint256]*transaction.Transaction),
		verifiedTxes:    make(items, 0, capacity),
		fees:            make(map[util.Uint160]utilityBalanceAndFees),
		oracleResp:      make(map[uint64]util.Uint256),
		conflicts:       make(map[util.Uint256][]util.Uint256),
		capacity:        capacity,
		resendThreshold: resendThreshold,
	}
}

// SetResendThreshold installs the resend backoff window and callback used
// by RemoveStale.
func (mp *Pool) SetResendThreshold(threshold uint32, f ResendFunc) {
	mp.lock.Lock()
	defer mp.lock.Unlock()
	mp.resendThreshold = threshold
	mp.resendFunc = f
}

// Count returns the number of pooled transactions.
func (mp *Pool) Count() int {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	return len(mp.verifiedTxes)
}

// ContainsKey reports whether h is already pooled.
func (mp *Pool) ContainsKey(h util.Uint256) bool {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	return mp.containsKey(h)
}

func (mp *Pool) containsKey(h util.Uint256) bool {
	_, ok := mp.verifiedMap[h]
	return ok
}

// TryGetValue returns the pooled transaction for h, if any.
func (mp *Pool) TryGetValue(h util.Uint256) (*transaction.Transaction, bool) {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	tx, ok := mp.verifiedMap[h]
	return tx, ok
}

// GetVerifiedTransactions returns every pooled transaction, highest
// priority first.
func (mp *Pool) GetVerifiedTransactions() []*transaction.Transaction {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	out := make([]*transaction.Transaction, len(mp.verifiedTxes))
	for i, it := range mp.verifiedTxes {
		out[i] = it.txn
	}
	return out
}

// Verify reports whether tx would currently be accepted by Add, without
// mutating the pool.
func (mp *Pool) Verify(tx *transaction.Transaction, feer Feer) bool {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	return mp.checkTxFee(tx, feer) == nil
}

// checkTxFee reports whether the sender's balance covers every pooled fee
// of theirs plus tx's own NetworkFee.
func (mp *Pool) checkTxFee(tx *transaction.Transaction, feer Feer) error {
	sender := tx.Sender()
	entry, ok := mp.fees[sender]
	balance := feer.GetUtilityTokenBalance(sender)
	if !ok {
		entry = utilityBalanceAndFees{balance: balance, feeSum: big.NewInt(0)}
	} else {
		entry.balance = balance
	}
	need := new(big.Int).Add(entry.feeSum, big.NewInt(tx.NetworkFee))
	if need.Cmp(entry.balance) > 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// Add validates and inserts tx, evicting the lowest-priority pooled
// transaction if the pool is at capacity and tx outranks it.
func (mp *Pool) Add(tx *transaction.Transaction, feer Feer) error {
	mp.lock.Lock()
	defer mp.lock.Unlock()

	if mp.containsKey(tx.Hash()) {
		return ErrDup
	}
	if err := mp.checkConflictsIn(tx, feer); err != nil {
		return err
	}
	if err := mp.checkConflictsAgainst(tx, feer); err != nil {
		return err
	}
	if err := mp.checkOracleResponse(tx); err != nil {
		return err
	}
	if err := mp.checkTxFee(tx, feer); err != nil {
		return err
	}

	it := item{txn: tx, blockStamp: feer.BlockHeight()}
	if len(mp.verifiedTxes) >= mp.capacity {
		worst := mp.verifiedTxes[len(mp.verifiedTxes)-1]
		if it.CompareTo(worst) <= 0 {
			return ErrOOM
		}
		mp.removeLocked(worst.txn.Hash(), feer)
	}

	mp.insertLocked(it)
	mp.chargeFee(tx, feer)
	mp.indexOracleResponse(tx)
	mp.indexConflicts(tx)
	return nil
}

func (mp *Pool) insertLocked(it item) {
	i := sort.Search(len(mp.verifiedTxes), func(i int) bool {
		return mp.verifiedTxes[i].CompareTo(it) < 0
	})
	mp.verifiedTxes = append(mp.verifiedTxes, item{})
	copy(mp.verifiedTxes[i+1:], mp.verifiedTxes[i:])
	mp.verifiedTxes[i] = it
	mp.verifiedMap[it.txn.Hash()] = it.txn
}

func (mp *Pool) chargeFee(tx *transaction.Transaction, feer Feer) {
	sender := tx.Sender()
	entry, ok := mp.fees[sender]
	if !ok {
		entry = utilityBalanceAndFees{balance: feer.GetUtilityTokenBalance(sender), feeSum: big.NewInt(0)}
	}
	entry.feeSum = new(big.Int).Add(entry.feeSum, big.NewInt(tx.NetworkFee))
	mp.fees[sender] = entry
}

func (mp *Pool) uncharge(tx *transaction.Transaction) {
	sender := tx.Sender()
	entry, ok := mp.fees[sender]
	if !ok {
		return
	}
	entry.feeSum = new(big.Int).Sub(entry.feeSum, big.NewInt(tx.NetworkFee))
	if entry.feeSum.Sign() <= 0 {
		delete(mp.fees, sender)
		return
	}
	mp.fees[sender] = entry
}

// oracleResponseID returns (id, true) if tx carries an OracleResponse
// attribute.
func oracleResponseID(tx *transaction.Transaction) (uint64, bool) {
	for i := range tx.Attributes {
		if resp, ok := tx.Attributes[i].Value.(*transaction.OracleResponse); ok {
			return resp.ID, true
		}
	}
	return 0, false
}

// checkOracleResponse rejects tx if a better- or equally-fee'd transaction
// already answers the same OracleResponse id.
func (mp *Pool) checkOracleResponse(tx *transaction.Transaction) error {
	id, ok := oracleResponseID(tx)
	if !ok {
		return nil
	}
	existing, ok := mp.oracleResp[id]
	if !ok {
		return nil
	}
	old, ok := mp.verifiedMap[existing]
	if !ok {
		return nil
	}
	if tx.NetworkFee <= old.NetworkFee {
		return ErrOracleResponse
	}
	return nil
}

func (mp *Pool) indexOracleResponse(tx *transaction.Transaction) {
	id, ok := oracleResponseID(tx)
	if !ok {
		return
	}
	if existing, ok := mp.oracleResp[id]; ok && existing != tx.Hash() {
		mp.removeLocked(existing, nil)
	}
	mp.oracleResp[id] = tx.Hash()
}

func conflictHashes(tx *transaction.Transaction) []util.Uint256 {
	var out []util.Uint256
	for i := range tx.Attributes {
		if c, ok := tx.Attributes[i].Value.(*transaction.Conflicts); ok {
			out = append(out, c.Hash)
		}
	}
	return out
}

// checkConflictsAgainst is "Step 1": a transaction already pooled may
// declare tx.Hash() as a conflict; if that mempooled objector has a fee at
// least as large as tx's, tx is rejected outright.
func (mp *Pool) checkConflictsAgainst(tx *transaction.Transaction, feer Feer) error {
	if !feer.P2PSigExtensionsEnabled() {
		return nil
	}
	for _, objectorHash := range mp.conflicts[tx.Hash()] {
		objector, ok := mp.verifiedMap[objectorHash]
		if !ok {
			continue
		}
		if objector.NetworkFee >= tx.NetworkFee {
			return ErrConflictsAttribute
		}
	}
	return nil
}

// checkConflictsIn is "Step 2": for every Conflicts attribute tx itself
// carries, if the named transaction is pooled and has a fee at least as
// large as tx's, tx is rejected; otherwise the named transaction will be
// evicted once tx is actually inserted.
func (mp *Pool) checkConflictsIn(tx *transaction.Transaction, feer Feer) error {
	if !feer.P2PSigExtensionsEnabled() {
		return nil
	}
	for _, h := range conflictHashes(tx) {
		victim, ok := mp.verifiedMap[h]
		if !ok {
			continue
		}
		if victim.NetworkFee >= tx.NetworkFee {
			return ErrConflictsAttribute
		}
	}
	return nil
}

// indexConflicts evicts every pooled transaction tx's Conflicts attributes
// name (tx has already been confirmed to outbid them) and records tx as
// the current objector against each.
func (mp *Pool) indexConflicts(tx *transaction.Transaction) {
	for _, h := range conflictHashes(tx) {
		if _, ok := mp.verifiedMap[h]; ok {
			mp.removeLocked(h, nil)
		}
		mp.conflicts[h] = append(mp.conflicts[h], tx.Hash())
	}
}

func (mp *Pool) dropConflictEntries(tx *transaction.Transaction) {
	for _, h := range conflictHashes(tx) {
		list := mp.conflicts[h]
		for i, v := range list {
			if v == tx.Hash() {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(mp.conflicts, h)
		} else {
			mp.conflicts[h] = list
		}
	}
}

// Remove deletes the transaction identified by h, if pooled.
func (mp *Pool) Remove(h util.Uint256, feer Feer) {
	mp.lock.Lock()
	defer mp.lock.Unlock()
	mp.removeLocked(h, feer)
}

func (mp *Pool) removeLocked(h util.Uint256, feer Feer) {
	tx, ok := mp.verifiedMap[h]
	if !ok {
		return
	}
	mp.removeLockedNoFeer(h)
	mp.uncharge(tx)
}

// removeLockedNoFeer removes h from every index except the fee ledger,
// used internally by eviction paths that immediately re-account fees
// themselves.
func (mp *Pool) removeLockedNoFeer(h util.Uint256) {
	tx, ok := mp.verifiedMap[h]
	if !ok {
		return
	}
	delete(mp.verifiedMap, h)
	for i := range mp.verifiedTxes {
		if mp.verifiedTxes[i].txn.Hash() == h {
			mp.verifiedTxes = append(mp.verifiedTxes[:i], mp.verifiedTxes[i+1:]...)
			break
		}
	}
	if id, ok := oracleResponseID(tx); ok {
		if mp.oracleResp[id] == h {
			delete(mp.oracleResp, id)
		}
	}
	mp.dropConflictEntries(tx)
}

// RemoveStale drops every pooled transaction isValid rejects, and fires
// the resend callback for the rest whenever their pooled age crosses a
// power-of-two multiple of the resend threshold.
func (mp *Pool) RemoveStale(isValid func(*transaction.Transaction) bool, feer Feer) {
	mp.lock.Lock()
	defer mp.lock.Unlock()

	height := feer.BlockHeight()
	var stale []util.Uint256
	for _, it := range mp.verifiedTxes {
		if !isValid(it.txn) {
			stale = append(stale, it.txn.Hash())
			continue
		}
		mp.maybeResend(it, height)
	}
	for _, h := range stale {
		mp.removeLocked(h, feer)
	}
}

func (mp *Pool) maybeResend(it item, height uint32) {
	if mp.resendFunc == nil || mp.resendThreshold == 0 || height < it.blockStamp {
		return
	}
	delta := height - it.blockStamp
	if delta == 0 || delta%mp.resendThreshold != 0 {
		return
	}
	k := delta / mp.resendThreshold
	if k&(k-1) != 0 {
		return
	}
	mp.resendFunc(it.txn, nil)
}
