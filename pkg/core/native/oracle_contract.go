package native

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/n3core/node/pkg/core/interop"
	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/io"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/emit"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// OracleContractID is the fixed negative id reserved for this native.
const OracleContractID = -10

// DefaultOracleRequestPrice is the GAS cost charged from the requesting
// contract's own balance for every requestURL call, independent of the
// gas set aside for the eventual callback.
const DefaultOracleRequestPrice = 0_50000000

// MinimumResponseGas is the smallest gasForResponse accepted by
// requestURL: enough to cover the callback invocation and the oracle
// nodes' reward, below which the request is rejected outright.
const MinimumResponseGas = 0_10000000

const (
	MaxOracleURLLength      = 256
	MaxOracleFilterLength   = 128
	MaxOracleUserDataLength = 512
	MaxOracleResultLength   = 0xffff
)

const (
	prefixOraclePrice     byte = 5
	prefixOracleIDList    byte = 6
	prefixOracleRequest   byte = 7
	prefixOracleRequestID byte = 9
)

// OracleContract bridges off-chain HTTP(S) data into contract execution:
// a contract requests a URL, designated Oracle role nodes answer it with
// a signed OracleResponse transaction attribute, and the contract's
// callback runs with the result.
type OracleContract struct {
	md   *interop.ContractMD
	hash util.Uint160

	gas  *GasToken
	role *RoleManagement
}

// NewOracleContract builds the native.
func NewOracleContract() *OracleContract {
	h := smartcontract.CreateNativeContractHash("OracleContract")
	return &OracleContract{
		hash: h,
		md: &interop.ContractMD{
			ID: OracleContractID, Hash: h, Name: "OracleContract",
			Methods: []interop.MethodDesc{
				method("getPrice", 1<<15, callflag.ReadStates),
				method("setPrice", 1<<15, callflag.States),
				method("requestURL", 0, callflag.States|callflag.AllowCall|callflag.AllowNotify),
				method("finish", 0, callflag.All),
				method("verify", 1<<15, callflag.NoneFlag),
			},
		},
	}
}

// SetGasToken wires the GasToken native used to charge requesters and
// reward responding Oracle nodes (mirrors NeoToken.SetGasToken).
func (o *OracleContract) SetGasToken(g *GasToken) { o.gas = g }

// SetRoleManagement wires the RoleManagement native used to resolve the
// currently designated Oracle nodes.
func (o *OracleContract) SetRoleManagement(r *RoleManagement) { o.role = r }

// Metadata implements interop.Contract.
func (o *OracleContract) Metadata() *interop.ContractMD { return o.md }

// OnPersist implements interop.Contract: OracleContract keeps no per-block
// rollover state of its own.
func (o *OracleContract) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements interop.Contract.
func (o *OracleContract) PostPersist(ic *interop.Context) error { return nil }

// Initialize seeds the default request price at genesis.
func (o *OracleContract) Initialize(ic *interop.Context) error {
	return ic.DAO.PutStorageItem(o.md.ID, []byte{prefixOraclePrice}, encodeInt64(DefaultOracleRequestPrice))
}

// Invoke implements interop.Contract.
func (o *OracleContract) Invoke(ic *interop.Context, m string, args []stackitem.Item) (stackitem.Item, error) {
	switch m {
	case "getPrice":
		return bigItem(bigFromInt64(o.getPrice(ic))), nil
	case "setPrice":
		price, err := argBigInt(args, 0)
		if err != nil {
			return nil, err
		}
		return nil, o.setPrice(ic, price)
	case "requestURL":
		url, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		var filter string
		if _, ok := args[1].(stackitem.Null); !ok {
			filter, err = argString(args, 1)
			if err != nil {
				return nil, err
			}
		}
		cb, err := argString(args, 2)
		if err != nil {
			return nil, err
		}
		userData, err := argBytes(args, 3)
		if err != nil {
			return nil, err
		}
		gasForResponse, err := argInt64(args, 4)
		if err != nil {
			return nil, err
		}
		return nil, o.requestURL(ic, url, filter, cb, userData, gasForResponse)
	case "finish":
		return nil, o.finish(ic)
	case "verify":
		return boolItem(o.verify(ic)), nil
	default:
		return nil, errUnknownMethod("OracleContract", m)
	}
}

func (o *OracleContract) getPrice(ic *interop.Context) int64 {
	b, err := ic.DAO.GetStorageItem(o.md.ID, []byte{prefixOraclePrice})
	if err != nil {
		return DefaultOracleRequestPrice
	}
	return decodeInt64(b)
}

func (o *OracleContract) setPrice(ic *interop.Context, price *big.Int) error {
	if err := requireCommittee(ic, ic.CommitteeAddress()); err != nil {
		return err
	}
	if price.Sign() <= 0 {
		return fmt.Errorf("setPrice: price must be positive")
	}
	return ic.DAO.PutStorageItem(o.md.ID, []byte{prefixOraclePrice}, encodeInt64(price.Int64()))
}

// requestURL validates and records a new oracle request, charging the
// calling contract the fixed request price plus the gas it reserves for
// its own callback.
func (o *OracleContract) requestURL(ic *interop.Context, url, filter, cb string, userData []byte, gasForResponse int64) error {
	if !utf8.ValidString(url) || !utf8.ValidString(filter) {
		return fmt.Errorf("invalid value: not UTF-8")
	}
	if len(url) == 0 || len(url) > MaxOracleURLLength {
		return fmt.Errorf("requestURL: invalid url length")
	}
	if len(filter) > MaxOracleFilterLength {
		return fmt.Errorf("requestURL: filter too long")
	}
	if len(userData) > MaxOracleUserDataLength {
		return fmt.Errorf("requestURL: userData too long")
	}
	if len(cb) > 0 && cb[0] == '_' {
		return fmt.Errorf("disallowed callback method (starts with '_')")
	}
	if gasForResponse < MinimumResponseGas {
		return fmt.Errorf("not enough gas for response")
	}

	caller := ic.VM.GetCurrentScriptHash()
	price := o.getPrice(ic)
	if err := o.gas.Burn(ic, caller, bigFromInt64(price)); err != nil {
		return fmt.Errorf("requestURL: %w", err)
	}
	if err := o.gas.Burn(ic, caller, bigFromInt64(gasForResponse)); err != nil {
		return fmt.Errorf("requestURL: %w", err)
	}

	id, err := o.nextRequestID(ic)
	if err != nil {
		return err
	}
	req := &OracleRequest{
		OriginalTxid:     o.originalTxid(ic),
		GasForResponse:   gasForResponse,
		URL:              url,
		Filter:           filter,
		CallbackContract: caller,
		CallbackMethod:   cb,
		UserData:         userData,
	}
	if err := o.putRequest(ic, id, req); err != nil {
		return err
	}
	if err := o.addToIDList(ic, url, filter, id); err != nil {
		return err
	}
	ic.AddNotification(o.hash, "OracleRequest", stackitem.NewArray([]stackitem.Item{
		bigItem(new(big.Int).SetUint64(id)), uint160Item(caller), stringItem(url), stringItem(filter),
	}))
	return nil
}

// originalTxid returns the request's own tx hash, used so a transaction
// that is itself responding to an earlier oracle request (chained
// requests) is tracked by its ultimate originator.
func (o *OracleContract) originalTxid(ic *interop.Context) util.Uint256 {
	if ic.Tx == nil {
		return util.Uint256{}
	}
	for _, attr := range ic.Tx.Attributes {
		if resp, ok := attr.Value.(*transaction.OracleResponse); ok {
			if req, err := o.getRequest(ic, resp.ID); err == nil {
				return req.OriginalTxid
			}
		}
	}
	return ic.Tx.Hash()
}

func (o *OracleContract) nextRequestID(ic *interop.Context) (uint64, error) {
	var id uint64
	b, err := ic.DAO.GetStorageItem(o.md.ID, []byte{prefixOracleRequestID})
	if err == nil {
		id = uint64(decodeInt64(b))
	}
	next := id + 1
	if err := ic.DAO.PutStorageItem(o.md.ID, []byte{prefixOracleRequestID}, encodeInt64(int64(next))); err != nil {
		return 0, err
	}
	return id, nil
}

func requestKey(id uint64) []byte {
	k := make([]byte, 9)
	k[0] = prefixOracleRequest
	for i := 0; i < 8; i++ {
		k[1+i] = byte(id >> (8 * i))
	}
	return k
}

func idListKey(url, filter string) []byte {
	d := hash.Sha256([]byte(url + "\x00" + filter))
	return append([]byte{prefixOracleIDList}, d.BytesBE()...)
}

func (o *OracleContract) putRequest(ic *interop.Context, id uint64, req *OracleRequest) error {
	w := io.NewBufBinWriter()
	req.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return ic.DAO.PutStorageItem(o.md.ID, requestKey(id), w.Bytes())
}

func (o *OracleContract) getRequest(ic *interop.Context, id uint64) (*OracleRequest, error) {
	b, err := ic.DAO.GetStorageItem(o.md.ID, requestKey(id))
	if err != nil {
		return nil, fmt.Errorf("oracle tx points to invalid request")
	}
	req := &OracleRequest{}
	r := io.NewBinReaderFromBuf(b)
	req.DecodeBinary(r)
	if r.Err != nil {
		return nil, r.Err
	}
	return req, nil
}

func (o *OracleContract) deleteRequest(ic *interop.Context, id uint64) error {
	return ic.DAO.DeleteStorageItem(o.md.ID, requestKey(id))
}

func (o *OracleContract) addToIDList(ic *interop.Context, url, filter string, id uint64) error {
	key := idListKey(url, filter)
	var list IDList
	if b, err := ic.DAO.GetStorageItem(o.md.ID, key); err == nil {
		list.DecodeBinary(io.NewBinReaderFromBuf(b))
	}
	list = append(list, id)
	w := io.NewBufBinWriter()
	list.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return ic.DAO.PutStorageItem(o.md.ID, key, w.Bytes())
}

func (o *OracleContract) removeFromIDList(ic *interop.Context, url, filter string, id uint64) error {
	key := idListKey(url, filter)
	b, err := ic.DAO.GetStorageItem(o.md.ID, key)
	if err != nil {
		return nil
	}
	var list IDList
	list.DecodeBinary(io.NewBinReaderFromBuf(b))
	list.Remove(id)
	if len(list) == 0 {
		return ic.DAO.DeleteStorageItem(o.md.ID, key)
	}
	w := io.NewBufBinWriter()
	list.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}
	return ic.DAO.PutStorageItem(o.md.ID, key, w.Bytes())
}

// finish is invoked by the oracle response transaction's own script
// (CreateOracleResponseScript): it must run from the entry script
// (directly, not through a further nested call), resolve the pending
// request from the tx's OracleResponse attribute, reward the designated
// Oracle nodes, and hand the result to the requester's callback.
func (o *OracleContract) finish(ic *interop.Context) error {
	if ic.VM.Depth() != 1 {
		return fmt.Errorf("Oracle.finish called from non-entry script")
	}
	if ic.Tx == nil {
		return fmt.Errorf("finish: no transaction context")
	}
	var resp *transaction.OracleResponse
	for _, attr := range ic.Tx.Attributes {
		if r, ok := attr.Value.(*transaction.OracleResponse); ok {
			resp = r
			break
		}
	}
	if resp == nil {
		return fmt.Errorf("finish: transaction carries no OracleResponse attribute")
	}
	req, err := o.getRequest(ic, resp.ID)
	if err != nil {
		return err
	}
	if err := o.deleteRequest(ic, resp.ID); err != nil {
		return err
	}
	if err := o.removeFromIDList(ic, req.URL, req.Filter, resp.ID); err != nil {
		return err
	}
	if err := o.rewardOracleNodes(ic, req.GasForResponse); err != nil {
		return err
	}

	userDataItem := stackitem.NewByteArray(req.UserData)
	args := []stackitem.Item{
		stringItem(req.URL), userDataItem,
		bigItem(bigFromInt64(int64(resp.Code))), bytesItem(resp.Result),
	}
	ic.AddNotification(o.hash, "OracleResponse", stackitem.NewArray([]stackitem.Item{
		bigItem(new(big.Int).SetUint64(resp.ID)), bigItem(bigFromInt64(int64(resp.Code))),
	}))
	return o.invokeCallback(ic, req, args)
}

// rewardOracleNodes splits gasForResponse evenly across the Oracle role's
// currently designated nodes.
func (o *OracleContract) rewardOracleNodes(ic *interop.Context, gasForResponse int64) error {
	nodes, err := o.role.getDesignated(ic, RoleOracle, currentHeight(ic))
	if err != nil || len(nodes) == 0 {
		return nil
	}
	share := gasForResponse / int64(len(nodes))
	if share <= 0 {
		return nil
	}
	for _, pub := range nodes {
		if err := o.gas.Mint(ic, pub.GetScriptHash(), bigFromInt64(share)); err != nil {
			return err
		}
	}
	return nil
}

// invokeCallback loads the requester's callback method as a new VM
// context, so it runs immediately after finish returns (mirrors
// interop.contractCall's LoadScriptWithEntry pattern; a native Invoke
// never pushes a context of its own).
func (o *OracleContract) invokeCallback(ic *interop.Context, req *OracleRequest, args []stackitem.Item) error {
	cs, err := ic.DAO.GetContractState(req.CallbackContract)
	if err != nil {
		return fmt.Errorf("finish: callback contract %s not found", req.CallbackContract)
	}
	md := cs.Manifest.ABI.GetMethod(req.CallbackMethod, len(args))
	if md == nil {
		return fmt.Errorf("finish: callback method %s/%d not found", req.CallbackMethod, len(args))
	}
	script, err := cs.NEF.Bytes()
	if err != nil {
		return err
	}
	for i := len(args) - 1; i >= 0; i-- {
		ic.VM.Estack().Push(args[i])
	}
	return ic.VM.LoadScriptWithEntry(script, md.Offset, req.CallbackContract, byte(callflag.All))
}

// verify implements the verification-trigger entry point OracleResponse
// witnesses check: the attribute-carrying transaction always passes,
// since its legitimacy is enforced by finish's own request lookup rather
// than a script hash check.
func (o *OracleContract) verify(ic *interop.Context) bool {
	return ic.Tx != nil && ic.Tx.HasAttribute(transaction.OracleResponseT)
}

// CreateOracleResponseScript assembles the fixed script every
// OracleResponse transaction carries: a single System.Contract.Call into
// OracleContract.finish with no arguments.
func CreateOracleResponseScript(oracleHash util.Uint160) []byte {
	w := io.NewBufBinWriter()
	emit.ArrayLen(w.BinWriter, 0)
	emit.Int(w.BinWriter, int64(callflag.All))
	emit.String(w.BinWriter, "finish")
	emit.Bytes(w.BinWriter, oracleHash.BytesBE())
	emit.Syscall(w.BinWriter, interopnames.ToID(interopnames.SystemContractCall))
	return w.Bytes()
}
