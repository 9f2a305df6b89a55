package native

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/n3core/node/pkg/core/interop"
	b58 "github.com/n3core/node/pkg/crypto/base58"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
	"github.com/twmb/murmur3"
)

// StdLibID is the fixed negative id reserved for this native.
const StdLibID = -8

const maxStdlibInput = 1024 * 1024

// StdLib is the stateless utility native: base58/64, decimal/integer
// parsing, string splitting, and Murmur32 hashing.
type StdLib struct {
	md   *interop.ContractMD
	hash util.Uint160
}

// NewStdLib builds the native.
func NewStdLib() *StdLib {
	h := smartcontract.CreateNativeContractHash("StdLib")
	return &StdLib{
		hash: h,
		md: &interop.ContractMD{
			ID: StdLibID, Hash: h, Name: "StdLib",
			Methods: []interop.MethodDesc{
				method("base58Encode", 1<<12, callflag.NoneFlag),
				method("base58Decode", 1<<12, callflag.NoneFlag),
				method("base58CheckEncode", 1<<13, callflag.NoneFlag),
				method("base58CheckDecode", 1<<13, callflag.NoneFlag),
				method("base64Encode", 1<<12, callflag.NoneFlag),
				method("base64Decode", 1<<12, callflag.NoneFlag),
				method("itoa", 1<<12, callflag.NoneFlag),
				method("atoi", 1<<12, callflag.NoneFlag),
				method("stringSplit", 1<<13, callflag.NoneFlag),
				method("murmur32", 1<<13, callflag.NoneFlag),
				method("jsonSerialize", 1<<14, callflag.NoneFlag),
				method("jsonDeserialize", 1<<14, callflag.NoneFlag),
			},
		},
	}
}

// Metadata implements interop.Contract.
func (s *StdLib) Metadata() *interop.ContractMD { return s.md }

// OnPersist implements interop.Contract: StdLib is stateless.
func (s *StdLib) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements interop.Contract.
func (s *StdLib) PostPersist(ic *interop.Context) error { return nil }

// Invoke implements interop.Contract.
func (s *StdLib) Invoke(ic *interop.Context, m string, args []stackitem.Item) (stackitem.Item, error) {
	switch m {
	case "base58Encode":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		return stringItem(b58.Encode(b)), nil
	case "base58Decode":
		str, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := b58.Decode(str)
		if err != nil {
			return nil, err
		}
		return bytesItem(b), nil
	case "base58CheckEncode":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		return stringItem(b58.CheckEncode(b)), nil
	case "base58CheckDecode":
		str, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := b58.CheckDecode(str)
		if err != nil {
			return nil, err
		}
		return bytesItem(b), nil
	case "base64Encode":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		return stringItem(base64.StdEncoding.EncodeToString(b)), nil
	case "base64Decode":
		str, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			return nil, err
		}
		return bytesItem(b), nil
	case "itoa":
		n, err := argBigInt(args, 0)
		if err != nil {
			return nil, err
		}
		base := 10
		if len(args) > 1 {
			b, err := argInt64(args, 1)
			if err != nil {
				return nil, err
			}
			base = int(b)
		}
		return stringItem(n.Text(base)), nil
	case "atoi":
		str, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		base := 10
		if len(args) > 1 {
			b, err := argInt64(args, 1)
			if err != nil {
				return nil, err
			}
			base = int(b)
		}
		n, ok := new(big.Int).SetString(str, base)
		if !ok {
			return nil, fmt.Errorf("atoi: invalid number %q", str)
		}
		return bigItem(n), nil
	case "stringSplit":
		str, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		sep, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(str, sep)
		items := make([]stackitem.Item, len(parts))
		for i, p := range parts {
			items[i] = stringItem(p)
		}
		return stackitem.NewArray(items), nil
	case "murmur32":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		seed, err := argInt64(args, 1)
		if err != nil {
			return nil, err
		}
		h := murmur3.SeedSum32(uint32(seed), b)
		out := []byte{byte(h), byte(h >> 8), byte(h >> 16), byte(h >> 24)}
		return bytesItem(out), nil
	case "jsonSerialize":
		b, err := stackitem.ToJSON(args[0])
		if err != nil {
			return nil, err
		}
		return bytesItem(b), nil
	case "jsonDeserialize":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		if len(b) > maxStdlibInput {
			return nil, fmt.Errorf("jsonDeserialize: input too large")
		}
		return stackitem.FromJSON(b)
	default:
		return nil, errUnknownMethod("StdLib", m)
	}
}
