package native

import (
	"crypto/ed25519"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/n3core/node/pkg/core/interop"
	blsfacade "github.com/n3core/node/pkg/crypto/bls12381"
	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/stackitem"
	"github.com/twmb/murmur3"
)

// CryptoLibID is the fixed negative id reserved for this native.
const CryptoLibID = -9

// NamedCurveHash selects the curve/hash pair VerifyWithECDsa checks a
// signature against.
type NamedCurveHash byte

// Supported (curve, hash) combinations.
const (
	Secp256r1Sha256 NamedCurveHash = iota
	Secp256k1Sha256
	Secp256r1Keccak256
	Secp256k1Keccak256
)

// CryptoLib is the stateless native exposing hash functions, ECDSA/EdDSA
// signature verification and BLS12-381 group operations to contracts.
type CryptoLib struct {
	md   *interop.ContractMD
	hash util.Uint160
}

// NewCryptoLib builds the native.
func NewCryptoLib() *CryptoLib {
	h := smartcontract.CreateNativeContractHash("CryptoLib")
	return &CryptoLib{
		hash: h,
		md: &interop.ContractMD{
			ID: CryptoLibID, Hash: h, Name: "CryptoLib",
			Methods: []interop.MethodDesc{
				method("sha256", 1<<15, callflag.NoneFlag),
				method("ripemd160", 1<<15, callflag.NoneFlag),
				method("keccak256", 1<<15, callflag.NoneFlag),
				method("murmur32", 1<<13, callflag.NoneFlag),
				method("verifyWithECDsa", 1<<15, callflag.NoneFlag),
				method("verifyWithEd25519", 1<<15, callflag.NoneFlag),
				method("recoverSecp256K1", 1<<15, callflag.NoneFlag),
				method("bls12381Serialize", 1<<19, callflag.NoneFlag),
				method("bls12381Deserialize", 1<<19, callflag.NoneFlag),
				method("bls12381Equal", 1<<5, callflag.NoneFlag),
				method("bls12381Add", 1<<19, callflag.NoneFlag),
				method("bls12381Mul", 1<<21, callflag.NoneFlag),
				method("bls12381Pairing", 1<<23, callflag.NoneFlag),
			},
		},
	}
}

// Metadata implements interop.Contract.
func (c *CryptoLib) Metadata() *interop.ContractMD { return c.md }

// OnPersist implements interop.Contract: CryptoLib is stateless.
func (c *CryptoLib) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements interop.Contract.
func (c *CryptoLib) PostPersist(ic *interop.Context) error { return nil }

// Invoke implements interop.Contract.
func (c *CryptoLib) Invoke(ic *interop.Context, m string, args []stackitem.Item) (stackitem.Item, error) {
	switch m {
	case "sha256":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		h := hash.Sha256(b)
		return bytesItem(h.BytesBE()), nil
	case "ripemd160":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		h := hash.RipeMD160(b)
		return bytesItem(h.BytesBE()), nil
	case "keccak256":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		h := hash.Keccak256(b)
		return bytesItem(h.BytesBE()), nil
	case "murmur32":
		b, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		seed, err := argInt64(args, 1)
		if err != nil {
			return nil, err
		}
		s := murmur3.SeedSum32(uint32(seed), b)
		return bytesItem([]byte{byte(s), byte(s >> 8), byte(s >> 16), byte(s >> 24)}), nil
	case "verifyWithECDsa":
		return c.verifyWithECDsa(args)
	case "verifyWithEd25519":
		return c.verifyWithEd25519(args)
	case "recoverSecp256K1":
		return c.recoverSecp256K1(args)
	case "bls12381Serialize":
		return c.bls12381Serialize(args)
	case "bls12381Deserialize":
		return c.bls12381Deserialize(args)
	case "bls12381Equal":
		return c.bls12381Equal(args)
	case "bls12381Add":
		return c.bls12381Add(args)
	case "bls12381Mul":
		return c.bls12381Mul(args)
	case "bls12381Pairing":
		return c.bls12381Pairing(args)
	default:
		return nil, errUnknownMethod("CryptoLib", m)
	}
}

// verifyWithECDsa checks a raw 64-byte (r||s) signature over msg using
// pubkey on the curve/hash combination named by curve.
func (c *CryptoLib) verifyWithECDsa(args []stackitem.Item) (stackitem.Item, error) {
	msg, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	pubBytes, err := argBytes(args, 1)
	if err != nil {
		return nil, err
	}
	sig, err := argBytes(args, 2)
	if err != nil {
		return nil, err
	}
	curve, err := argInt64(args, 3)
	if err != nil {
		return nil, err
	}
	var (
		ecCurve keys.Curve
		hasher  func([]byte) util.Uint256
	)
	switch NamedCurveHash(curve) {
	case Secp256r1Sha256:
		ecCurve, hasher = keys.Secp256r1, hash.Sha256
	case Secp256k1Sha256:
		ecCurve, hasher = keys.Secp256k1, hash.Sha256
	case Secp256r1Keccak256:
		ecCurve, hasher = keys.Secp256r1, hash.Keccak256
	case Secp256k1Keccak256:
		ecCurve, hasher = keys.Secp256k1, hash.Keccak256
	default:
		return nil, fmt.Errorf("verifyWithECDsa: unknown curve %d", curve)
	}
	pub, err := keys.NewPublicKeyFromBytesCurve(pubBytes, ecCurve)
	if err != nil {
		return boolItem(false), nil
	}
	return boolItem(pub.VerifyWithHash(sig, msg, hasher)), nil
}

// verifyWithEd25519 checks an Ed25519 signature over msg ("verifyWithEd25519(msg,
// pubkey, signature)").
func (c *CryptoLib) verifyWithEd25519(args []stackitem.Item) (stackitem.Item, error) {
	msg, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	pub, err := argBytes(args, 1)
	if err != nil {
		return nil, err
	}
	sig, err := argBytes(args, 2)
	if err != nil {
		return nil, err
	}
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return boolItem(false), nil
	}
	return boolItem(ed25519.Verify(ed25519.PublicKey(pub), msg, sig)), nil
}

// recoverSecp256K1 recovers the compressed public key that produced a
// compact (recovery-byte||r||s) signature over a 32-byte message hash,
// returning Null on any malformed or unrecoverable input ("recoverSecp256K1(messageHash, signature)").
func (c *CryptoLib) recoverSecp256K1(args []stackitem.Item) (stackitem.Item, error) {
	msgHash, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	sig, err := argBytes(args, 1)
	if err != nil {
		return nil, err
	}
	if len(msgHash) != 32 || len(sig) != 65 {
		return stackitem.Null{}, nil
	}
	// the wire form carries the recovery id as the trailing byte; decred's
	// compact signature format wants it leading, offset by 27.
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])
	pub, _, err := ecdsa.RecoverCompact(compact, msgHash)
	if err != nil {
		return stackitem.Null{}, nil
	}
	return bytesItem(pub.SerializeCompressed()), nil
}

// bls12381Serialize is an identity pass-through: points already travel on
// the stack as their compressed byte encoding, so this exists for ABI
// symmetry with bls12381Deserialize.
func (c *CryptoLib) bls12381Serialize(args []stackitem.Item) (stackitem.Item, error) {
	b, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	return bytesItem(b), nil
}

// bls12381Deserialize validates that b decodes as a compressed G1 or G2
// point and returns it unchanged.
func (c *CryptoLib) bls12381Deserialize(args []stackitem.Item) (stackitem.Item, error) {
	b, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	if g1, err := blsfacade.G1FromBytes(b); err == nil {
		return bytesItem(g1.Bytes()), nil
	}
	g2, err := blsfacade.G2FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("bls12381Deserialize: invalid point encoding")
	}
	return bytesItem(g2.Bytes()), nil
}

func (c *CryptoLib) bls12381Equal(args []stackitem.Item) (stackitem.Item, error) {
	a, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := argBytes(args, 1)
	if err != nil {
		return nil, err
	}
	return boolItem(string(a) == string(b)), nil
}

func (c *CryptoLib) bls12381Add(args []stackitem.Item) (stackitem.Item, error) {
	a, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := argBytes(args, 1)
	if err != nil {
		return nil, err
	}
	if g1a, err := blsfacade.G1FromBytes(a); err == nil {
		g1b, err := blsfacade.G1FromBytes(b)
		if err != nil {
			return nil, err
		}
		return bytesItem(g1a.Add(g1b).Bytes()), nil
	}
	g2a, err := blsfacade.G2FromBytes(a)
	if err != nil {
		return nil, fmt.Errorf("bls12381Add: invalid point encoding")
	}
	g2b, err := blsfacade.G2FromBytes(b)
	if err != nil {
		return nil, err
	}
	return bytesItem(g2a.Add(g2b).Bytes()), nil
}

func (c *CryptoLib) bls12381Mul(args []stackitem.Item) (stackitem.Item, error) {
	pointBytes, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	scalar, err := argBytes(args, 1)
	if err != nil {
		return nil, err
	}
	if g1, err := blsfacade.G1FromBytes(pointBytes); err == nil {
		return bytesItem(g1.Mul(scalar).Bytes()), nil
	}
	g2, err := blsfacade.G2FromBytes(pointBytes)
	if err != nil {
		return nil, fmt.Errorf("bls12381Mul: invalid point encoding")
	}
	return bytesItem(g2.Mul(scalar).Bytes()), nil
}

// bls12381Pairing checks the pairing-equality e(g1a, g2a) == e(g1b, g2b),
// the form contracts need to verify signature aggregation and accumulator
// proofs without exposing a raw GT element on the stack ("bls12381Pairing(g1a,
// g2a, g1b, g2b)").
func (c *CryptoLib) bls12381Pairing(args []stackitem.Item) (stackitem.Item, error) {
	g1aB, err := argBytes(args, 0)
	if err != nil {
		return nil, err
	}
	g2aB, err := argBytes(args, 1)
	if err != nil {
		return nil, err
	}
	g1bB, err := argBytes(args, 2)
	if err != nil {
		return nil, err
	}
	g2bB, err := argBytes(args, 3)
	if err != nil {
		return nil, err
	}
	g1a, err := blsfacade.G1FromBytes(g1aB)
	if err != nil {
		return nil, err
	}
	g2a, err := blsfacade.G2FromBytes(g2aB)
	if err != nil {
		return nil, err
	}
	g1b, err := blsfacade.G1FromBytes(g1bB)
	if err != nil {
		return nil, err
	}
	g2b, err := blsfacade.G2FromBytes(g2bB)
	if err != nil {
		return nil, err
	}
	lhs, err := blsfacade.Pairing(g1a, g2a)
	if err != nil {
		return nil, err
	}
	rhs, err := blsfacade.Pairing(g1b, g2b)
	if err != nil {
		return nil, err
	}
	return boolItem(lhs.Equal(rhs)), nil
}
