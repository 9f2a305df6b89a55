package native

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/core/state"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// NeoTokenID is the fixed negative id reserved for this native.
const NeoTokenID = -4

// NeoTotalSupply is NEO's fixed, indivisible total supply.
var NeoTotalSupply = big.NewInt(100_000_000)

const (
	defaultGasPerBlock   = 5_00000000
	defaultRegisterPrice = 1000_00000000
)

const (
	prefixNeoAccount       byte = 20
	prefixNeoCandidate     byte = 33
	prefixNeoCommittee     byte = 14
	prefixNeoGasPerBlock   byte = 29
	prefixNeoRegisterPrice byte = 13
)

// NeoToken implements the governance token: balances, candidate
// registration, voting, and committee/validator derivation, grounded on the reference NEO native.
type NeoToken struct {
	md   *interop.ContractMD
	hash util.Uint160

	standbyCommittee keys.PublicKeys
	committeeSize    int
	validatorsCount  int

	gas *GasToken
}

// NewNeoToken builds the native over the network's standby committee and
// governance sizes.
func NewNeoToken(standbyCommittee keys.PublicKeys, committeeSize, validatorsCount int) *NeoToken {
	h := smartcontract.CreateNativeContractHash("NeoToken")
	return &NeoToken{
		hash:             h,
		standbyCommittee: standbyCommittee,
		committeeSize:    committeeSize,
		validatorsCount:  validatorsCount,
		md: &interop.ContractMD{
			ID: NeoTokenID, Hash: h, Name: "NeoToken",
			Methods: []interop.MethodDesc{
				method("symbol", 0, callflag.NoneFlag),
				method("decimals", 0, callflag.NoneFlag),
				method("totalSupply", 1<<15, callflag.ReadStates),
				method("balanceOf", 1<<15, callflag.ReadStates),
				method("transfer", 1<<17, callflag.States|callflag.AllowCall|callflag.AllowNotify),
				method("registerCandidate", 0, callflag.States),
				method("unregisterCandidate", 1<<16, callflag.States),
				method("vote", 1<<16, callflag.States),
				method("getCandidates", 1<<16, callflag.ReadStates),
				method("getCommittee", 1<<16, callflag.ReadStates),
				method("getNextBlockValidators", 1<<16, callflag.ReadStates),
				method("getGasPerBlock", 1<<15, callflag.ReadStates),
				method("setGasPerBlock", 1<<15, callflag.States),
				method("getRegisterPrice", 1<<15, callflag.ReadStates),
				method("setRegisterPrice", 1<<15, callflag.States),
				method("unclaimedGas", 1<<16, callflag.ReadStates),
				method("getAccountState", 1<<15, callflag.ReadStates),
			},
		},
	}
}

// SetGasToken wires the GasToken native used to mint voting/block rewards.
func (n *NeoToken) SetGasToken(g *GasToken) { n.gas = g }

// StandbyCommittee returns the configured standby committee keys, the
// fallback committee before any votes are cast.
func (n *NeoToken) StandbyCommittee() keys.PublicKeys { return n.standbyCommittee }

// Metadata implements interop.Contract.
func (n *NeoToken) Metadata() *interop.ContractMD { return n.md }

// Initialize seeds genesis state: the standby committee holds the entire
// supply, gas-per-block and the candidate-registration price take their
// defaults, and the committee snapshot starts as the standby list.
func (n *NeoToken) Initialize(ic *interop.Context) error {
	committeeHash, err := smartcontract.CreateMultiSigAccount(smartcontract.DefaultCommitteeM(len(n.standbyCommittee)), n.standbyCommittee)
	if err != nil {
		return err
	}
	bal := &state.NEOBalance{Balance: new(big.Int).Set(NeoTotalSupply), BalanceHeight: 0}
	if err := n.putBalance(ic, committeeHash, bal); err != nil {
		return err
	}
	if err := ic.DAO.PutStorageItem(n.md.ID, []byte{prefixNeoGasPerBlock}, encodeInt64(defaultGasPerBlock)); err != nil {
		return err
	}
	if err := ic.DAO.PutStorageItem(n.md.ID, []byte{prefixNeoRegisterPrice}, encodeInt64(defaultRegisterPrice)); err != nil {
		return err
	}
	return n.putCommittee(ic, n.standbyCommittee)
}

// OnPersist rolls the committee snapshot over at every committee-sized
// boundary.
func (n *NeoToken) OnPersist(ic *interop.Context) error {
	if ic.Block == nil || ic.Block.Index == 0 {
		return nil
	}
	if ic.Block.Index%uint32(n.committeeSize) != 0 {
		return nil
	}
	committee, err := n.computeCommittee(ic)
	if err != nil {
		return err
	}
	return n.putCommittee(ic, committee)
}

// PostPersist mints the block's GAS reward to the current committee,
// proportional to each member's vote share.
func (n *NeoToken) PostPersist(ic *interop.Context) error {
	if n.gas == nil {
		return nil
	}
	committee, err := n.getCommittee(ic)
	if err != nil {
		return err
	}
	if len(committee) == 0 {
		return nil
	}
	gasPerBlock := n.getGasPerBlock(ic)
	totalVotes := big.NewInt(0)
	votes := make([]*big.Int, len(committee))
	for i, pub := range committee {
		cand, err := n.getCandidate(ic, pub)
		v := big.NewInt(0)
		if err == nil {
			v = cand.Votes
		}
		votes[i] = v
		totalVotes.Add(totalVotes, v)
	}
	reward := big.NewInt(gasPerBlock)
	if totalVotes.Sign() == 0 {
		share := new(big.Int).Div(reward, big.NewInt(int64(len(committee))))
		for _, pub := range committee {
			if err := n.gas.Mint(ic, pub.GetScriptHash(), share); err != nil {
				return err
			}
		}
		return nil
	}
	for i, pub := range committee {
		if votes[i].Sign() == 0 {
			continue
		}
		share := new(big.Int).Mul(reward, votes[i])
		share.Div(share, totalVotes)
		if share.Sign() == 0 {
			continue
		}
		if err := n.gas.Mint(ic, pub.GetScriptHash(), share); err != nil {
			return err
		}
	}
	return nil
}

// GetCommittee exposes the current committee snapshot to the block
// processor (Blockchain.GetCommittee), so consensus/RPC callers outside the
// native dispatch path don't need a synthetic Invoke round trip.
func (n *NeoToken) GetCommittee(ic *interop.Context) (keys.PublicKeys, error) {
	return n.getCommittee(ic)
}

// GetValidators returns the committee's validatorsCount-sized validator
// subset for the next block.
func (n *NeoToken) GetValidators(ic *interop.Context) (keys.PublicKeys, error) {
	committee, err := n.getCommittee(ic)
	if err != nil {
		return nil, err
	}
	nv := n.validatorsCount
	if nv > len(committee) {
		nv = len(committee)
	}
	return committee[:nv], nil
}

// GetCommitteeAddress returns the Hash160 of the current committee's
// multisig verification script, the account interop.Context.CommitteeAddress
// resolves for committee-gated native setters.
func (n *NeoToken) GetCommitteeAddress(ic *interop.Context) util.Uint160 {
	committee, err := n.getCommittee(ic)
	if err != nil || len(committee) == 0 {
		committee = n.standbyCommittee
	}
	h, err := smartcontract.CreateMultiSigAccount(smartcontract.DefaultCommitteeM(len(committee)), committee)
	if err != nil {
		return util.Uint160{}
	}
	return h
}

// Invoke implements interop.Contract.
func (n *NeoToken) Invoke(ic *interop.Context, m string, args []stackitem.Item) (stackitem.Item, error) {
	switch m {
	case "symbol":
		return stringItem("NEO"), nil
	case "decimals":
		return bigItem(bigFromInt64(0)), nil
	case "totalSupply":
		return bigItem(NeoTotalSupply), nil
	case "balanceOf":
		acc, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		bal, err := n.getBalance(ic, acc)
		if err != nil {
			return bigItem(bigFromInt64(0)), nil
		}
		return bigItem(bal.Balance), nil
	case "transfer":
		from, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		to, err := argUint160(args, 1)
		if err != nil {
			return nil, err
		}
		amount, err := argBigInt(args, 2)
		if err != nil {
			return nil, err
		}
		ok, err := n.transfer(ic, from, to, amount)
		if err != nil {
			return nil, err
		}
		return boolItem(ok), nil
	case "registerCandidate":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return nil, err
		}
		ok, err := n.registerCandidate(ic, pub)
		if err != nil {
			return nil, err
		}
		return boolItem(ok), nil
	case "unregisterCandidate":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return nil, err
		}
		return boolItem(true), n.unregisterCandidate(ic, pub)
	case "vote":
		acc, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		var target *keys.PublicKey
		if b, err := argBytes(args, 1); err == nil && len(b) > 0 {
			target, err = keys.NewPublicKeyFromBytes(b)
			if err != nil {
				return nil, err
			}
		}
		ok, err := n.vote(ic, acc, target)
		if err != nil {
			return nil, err
		}
		return boolItem(ok), nil
	case "getCandidates":
		return n.candidatesItem(ic)
	case "getCommittee":
		committee, err := n.getCommittee(ic)
		if err != nil {
			return nil, err
		}
		return pubKeysItem(committee), nil
	case "getNextBlockValidators":
		committee, err := n.getCommittee(ic)
		if err != nil {
			return nil, err
		}
		nv := n.validatorsCount
		if nv > len(committee) {
			nv = len(committee)
		}
		return pubKeysItem(committee[:nv]), nil
	case "getGasPerBlock":
		return bigItem(bigFromInt64(n.getGasPerBlock(ic))), nil
	case "setGasPerBlock":
		v, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("gas-per-block must be non-negative")
		}
		if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
			return nil, err
		}
		return nil, ic.DAO.PutStorageItem(n.md.ID, []byte{prefixNeoGasPerBlock}, encodeInt64(v))
	case "getRegisterPrice":
		return bigItem(bigFromInt64(n.getRegisterPrice(ic))), nil
	case "setRegisterPrice":
		v, err := argInt64(args, 0)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("register price must be positive")
		}
		if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
			return nil, err
		}
		return nil, ic.DAO.PutStorageItem(n.md.ID, []byte{prefixNeoRegisterPrice}, encodeInt64(v))
	case "unclaimedGas":
		acc, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		end, err := argInt64(args, 1)
		if err != nil {
			return nil, err
		}
		g, err := n.unclaimedGas(ic, acc, uint32(end))
		if err != nil {
			return nil, err
		}
		return bigItem(g), nil
	case "getAccountState":
		acc, err := argUint160(args, 0)
		if err != nil {
			return nil, err
		}
		bal, err := n.getBalance(ic, acc)
		if err != nil {
			return stackitem.Null{}, nil
		}
		return accountStateItem(bal), nil
	default:
		return nil, errUnknownMethod("NeoToken", m)
	}
}

func accountKey(account util.Uint160) []byte {
	return append([]byte{prefixNeoAccount}, account.BytesBE()...)
}

func candidateKey(pub *keys.PublicKey) []byte {
	return append([]byte{prefixNeoCandidate}, pub.Bytes()...)
}

func (n *NeoToken) getBalance(ic *interop.Context, account util.Uint160) (*state.NEOBalance, error) {
	b, err := ic.DAO.GetStorageItem(n.md.ID, accountKey(account))
	if err != nil {
		return nil, err
	}
	bal := &state.NEOBalance{}
	r := io.NewBinReaderFromBuf(b)
	bal.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return bal, nil
}

func (n *NeoToken) putBalance(ic *interop.Context, account util.Uint160, bal *state.NEOBalance) error {
	w := io.NewBufBinWriter()
	bal.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return ic.DAO.PutStorageItem(n.md.ID, accountKey(account), w.Bytes())
}

func (n *NeoToken) getCandidate(ic *interop.Context, pub *keys.PublicKey) (*state.Candidate, error) {
	b, err := ic.DAO.GetStorageItem(n.md.ID, candidateKey(pub))
	if err != nil {
		return nil, err
	}
	c := &state.Candidate{PublicKey: pub}
	r := io.NewBinReaderFromBuf(b)
	c.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return c, nil
}

func (n *NeoToken) putCandidate(ic *interop.Context, c *state.Candidate) error {
	w := io.NewBufBinWriter()
	c.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return ic.DAO.PutStorageItem(n.md.ID, candidateKey(c.PublicKey), w.Bytes())
}

func (n *NeoToken) getGasPerBlock(ic *interop.Context) int64 {
	b, err := ic.DAO.GetStorageItem(n.md.ID, []byte{prefixNeoGasPerBlock})
	if err != nil {
		return defaultGasPerBlock
	}
	return decodeInt64(b)
}

func (n *NeoToken) getRegisterPrice(ic *interop.Context) int64 {
	b, err := ic.DAO.GetStorageItem(n.md.ID, []byte{prefixNeoRegisterPrice})
	if err != nil {
		return defaultRegisterPrice
	}
	return decodeInt64(b)
}

func (n *NeoToken) putCommittee(ic *interop.Context, committee keys.PublicKeys) error {
	w := io.NewBufBinWriter()
	w.WriteVarUint(uint64(len(committee)))
	for _, p := range committee {
		w.WriteBytes(p.Bytes())
	}
	if w.Err != nil {
		return w.Err
	}
	return ic.DAO.PutStorageItem(n.md.ID, []byte{prefixNeoCommittee}, w.Bytes())
}

func (n *NeoToken) getCommittee(ic *interop.Context) (keys.PublicKeys, error) {
	b, err := ic.DAO.GetStorageItem(n.md.ID, []byte{prefixNeoCommittee})
	if err != nil {
		return n.standbyCommittee, nil
	}
	r := io.NewBinReaderFromBuf(b)
	count := r.ReadVarUint()
	out := make(keys.PublicKeys, count)
	for i := range out {
		buf := make([]byte, keys.PublicKeySize)
		r.ReadBytes(buf)
		if r.Err != nil {
			return nil, r.Err
		}
		pub, err := keys.NewPublicKeyFromBytes(buf)
		if err != nil {
			return nil, err
		}
		out[i] = pub
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return out, nil
}

// computeCommittee ranks registered candidates by votes, breaking ties by
// public-key byte order, and returns the top committeeSize.
func (n *NeoToken) computeCommittee(ic *interop.Context) (keys.PublicKeys, error) {
	var candidates []*state.Candidate
	ic.DAO.Seek(n.md.ID, []byte{prefixNeoCandidate}, false, func(k, v []byte) bool {
		pub, err := keys.NewPublicKeyFromBytes(k[1:])
		if err != nil {
			return true
		}
		c := &state.Candidate{PublicKey: pub}
		r := io.NewBinReaderFromBuf(v)
		c.DecodeBinary(r)
		if r.Err == nil && c.Registered {
			candidates = append(candidates, c)
		}
		return true
	})
	sort.Slice(candidates, func(i, j int) bool {
		cmp := candidates[i].Votes.Cmp(candidates[j].Votes)
		if cmp != 0 {
			return cmp > 0
		}
		return candidates[i].PublicKey.Cmp(candidates[j].PublicKey) < 0
	})
	size := n.committeeSize
	if len(candidates) < size {
		// Pad with the standby committee, in order, skipping anyone already
		// selected, so the committee never shrinks below its configured size.
		picked := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			picked[c.PublicKey.String()] = true
		}
		for _, p := range n.standbyCommittee {
			if len(candidates) >= size {
				break
			}
			if picked[p.String()] {
				continue
			}
			candidates = append(candidates, &state.Candidate{PublicKey: p, Votes: big.NewInt(0)})
		}
	}
	if len(candidates) > size {
		candidates = candidates[:size]
	}
	out := make(keys.PublicKeys, len(candidates))
	for i, c := range candidates {
		out[i] = c.PublicKey
	}
	return out, nil
}

// distributeGas credits account with the GAS it accrued for holding bal
// between bal.BalanceHeight and upTo, then advances BalanceHeight.
func (n *NeoToken) distributeGas(ic *interop.Context, account util.Uint160, bal *state.NEOBalance, upTo uint32) error {
	if n.gas == nil || bal.Balance.Sign() == 0 || upTo <= bal.BalanceHeight {
		bal.BalanceHeight = upTo
		return nil
	}
	g := n.computeUnclaimed(ic, bal, upTo)
	bal.BalanceHeight = upTo
	if g.Sign() <= 0 {
		return nil
	}
	return n.gas.Mint(ic, account, g)
}

func (n *NeoToken) computeUnclaimed(ic *interop.Context, bal *state.NEOBalance, upTo uint32) *big.Int {
	blocks := big.NewInt(int64(upTo - bal.BalanceHeight))
	gasPerBlock := big.NewInt(n.getGasPerBlock(ic))
	g := new(big.Int).Mul(blocks, gasPerBlock)
	g.Mul(g, bal.Balance)
	g.Div(g, NeoTotalSupply)
	return g
}

func (n *NeoToken) unclaimedGas(ic *interop.Context, account util.Uint160, end uint32) (*big.Int, error) {
	bal, err := n.getBalance(ic, account)
	if err != nil {
		return big.NewInt(0), nil
	}
	if end <= bal.BalanceHeight {
		return big.NewInt(0), nil
	}
	return n.computeUnclaimed(ic, bal, end), nil
}

func (n *NeoToken) transfer(ic *interop.Context, from, to util.Uint160, amount *big.Int) (bool, error) {
	if amount.Sign() < 0 {
		return false, fmt.Errorf("transfer amount must be non-negative")
	}
	if !ic.CheckWitnessAccount(from) {
		return false, nil
	}
	height := currentHeight(ic)
	fromBal, err := n.getBalance(ic, from)
	if err != nil {
		fromBal = &state.NEOBalance{Balance: big.NewInt(0), BalanceHeight: height}
	}
	if fromBal.Balance.Cmp(amount) < 0 {
		return false, nil
	}
	toBal, err := n.getBalance(ic, to)
	if err != nil {
		toBal = &state.NEOBalance{Balance: big.NewInt(0), BalanceHeight: height}
	}
	if err := n.distributeGas(ic, from, fromBal, height); err != nil {
		return false, err
	}
	if from != to {
		if err := n.distributeGas(ic, to, toBal, height); err != nil {
			return false, err
		}
	} else {
		toBal = fromBal
	}
	if amount.Sign() > 0 {
		fromBal.Balance.Sub(fromBal.Balance, amount)
		if from != to {
			toBal.Balance.Add(toBal.Balance, amount)
		} else {
			fromBal.Balance.Add(fromBal.Balance, amount)
		}
		if fromBal.VoteTo != nil {
			if err := n.adjustVotes(ic, *fromBal.VoteTo, new(big.Int).Neg(amount)); err != nil {
				return false, err
			}
		}
		if from != to && toBal.VoteTo != nil {
			if err := n.adjustVotes(ic, *toBal.VoteTo, amount); err != nil {
				return false, err
			}
		}
	}
	if err := n.putBalance(ic, from, fromBal); err != nil {
		return false, err
	}
	if from != to {
		if err := n.putBalance(ic, to, toBal); err != nil {
			return false, err
		}
	}
	ic.AddNotification(n.hash, "Transfer", stackitem.NewArray([]stackitem.Item{
		uint160Item(from), uint160Item(to), bigItem(amount),
	}))
	return true, nil
}

func (n *NeoToken) adjustVotes(ic *interop.Context, candidate util.Uint160, delta *big.Int) error {
	var found *state.Candidate
	ic.DAO.Seek(n.md.ID, []byte{prefixNeoCandidate}, false, func(k, v []byte) bool {
		pub, err := keys.NewPublicKeyFromBytes(k[1:])
		if err != nil || pub.GetScriptHash() != candidate {
			return true
		}
		c := &state.Candidate{PublicKey: pub}
		r := io.NewBinReaderFromBuf(v)
		c.DecodeBinary(r)
		if r.Err == nil {
			found = c
		}
		return false
	})
	if found == nil {
		return nil
	}
	found.Votes.Add(found.Votes, delta)
	return n.putCandidate(ic, found)
}

func (n *NeoToken) registerCandidate(ic *interop.Context, pub *keys.PublicKey) (bool, error) {
	account := pub.GetScriptHash()
	if !ic.CheckWitnessAccount(account) {
		return false, nil
	}
	cand, err := n.getCandidate(ic, pub)
	if err != nil {
		cand = &state.Candidate{PublicKey: pub, Votes: big.NewInt(0)}
	}
	if n.gas != nil {
		if err := n.gas.Burn(ic, account, big.NewInt(n.getRegisterPrice(ic))); err != nil {
			return false, err
		}
	}
	cand.Registered = true
	return true, n.putCandidate(ic, cand)
}

func (n *NeoToken) unregisterCandidate(ic *interop.Context, pub *keys.PublicKey) error {
	account := pub.GetScriptHash()
	if !ic.CheckWitnessAccount(account) {
		return fmt.Errorf("witness check failed")
	}
	cand, err := n.getCandidate(ic, pub)
	if err != nil {
		return nil
	}
	if cand.Votes.Sign() == 0 {
		return ic.DAO.DeleteStorageItem(n.md.ID, candidateKey(pub))
	}
	cand.Registered = false
	return n.putCandidate(ic, cand)
}

func (n *NeoToken) vote(ic *interop.Context, account util.Uint160, target *keys.PublicKey) (bool, error) {
	if !ic.CheckWitnessAccount(account) {
		return false, nil
	}
	bal, err := n.getBalance(ic, account)
	if err != nil {
		return false, nil
	}
	if target != nil {
		cand, err := n.getCandidate(ic, target)
		if err != nil || !cand.Registered {
			return false, fmt.Errorf("candidate not registered")
		}
	}
	if bal.VoteTo != nil {
		if err := n.adjustVotes(ic, *bal.VoteTo, new(big.Int).Neg(bal.Balance)); err != nil {
			return false, err
		}
	}
	if target != nil {
		if err := n.adjustVotes(ic, target.GetScriptHash(), bal.Balance); err != nil {
			return false, err
		}
		h := target.GetScriptHash()
		bal.VoteTo = &h
	} else {
		bal.VoteTo = nil
	}
	if err := n.putBalance(ic, account, bal); err != nil {
		return false, err
	}
	ic.AddNotification(n.hash, "Vote", stackitem.NewArray([]stackitem.Item{uint160Item(account)}))
	return true, nil
}

func (n *NeoToken) candidatesItem(ic *interop.Context) (stackitem.Item, error) {
	var items []stackitem.Item
	ic.DAO.Seek(n.md.ID, []byte{prefixNeoCandidate}, false, func(k, v []byte) bool {
		pub, err := keys.NewPublicKeyFromBytes(k[1:])
		if err != nil {
			return true
		}
		c := &state.Candidate{PublicKey: pub}
		r := io.NewBinReaderFromBuf(v)
		c.DecodeBinary(r)
		if r.Err == nil && c.Registered {
			items = append(items, stackitem.NewStructItem([]stackitem.Item{
				bytesItem(pub.Bytes()), bigItem(c.Votes),
			}))
		}
		return true
	})
	return stackitem.NewArray(items), nil
}

func pubKeysItem(pubs keys.PublicKeys) stackitem.Item {
	items := make([]stackitem.Item, len(pubs))
	for i, p := range pubs {
		items[i] = bytesItem(p.Bytes())
	}
	return stackitem.NewArray(items)
}

func accountStateItem(bal *state.NEOBalance) stackitem.Item {
	vote := stackitem.Item(stackitem.Null{})
	if bal.VoteTo != nil {
		vote = uint160Item(*bal.VoteTo)
	}
	return stackitem.NewStructItem([]stackitem.Item{
		bigItem(bal.Balance), bigItem(bigFromInt64(int64(bal.BalanceHeight))), vote,
	})
}
