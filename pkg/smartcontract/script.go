package smartcontract

import (
	"errors"
	"fmt"

	"github.com/n3core/node/pkg/crypto/hash"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/util"
)

// Opcode bytes spelled out numerically to avoid a package cycle with pkg/vm
// (vm's own emit package, used for everything else, already depends on
// things this package doesn't need).
const (
	opPush1    = 0x11
	opPushInt8 = 0x00
	opPushData1 = 0x0c
	opSyscall  = 0x41
)

func pushInt(script []byte, n int) []byte {
	if n >= 0 && n <= 16 {
		return append(script, byte(opPush1-1+n))
	}
	// PUSHINT8/16/32/64 are consecutive opcodes taking 1/2/4/8 LE bytes.
	op, size := byte(opPushInt8), 1
	for size < 8 && (n < -(1<<(8*size-1)) || n >= 1<<(8*size-1)) {
		op, size = op+1, size*2
	}
	script = append(script, op)
	for i := 0; i < size; i++ {
		script = append(script, byte(n>>(8*i)))
	}
	return script
}

func checkMultisigHash() []byte {
	d := hash.Sha256([]byte("System.Crypto.CheckMultisig"))
	return d[:4]
}

// CreateMultiSigRedeemScript builds the standard m-of-n multisig
// verification script: PUSH m, PUSHDATA(pubkey)*, PUSH n, SYSCALL
// CheckMultisig.
func CreateMultiSigRedeemScript(m int, pubs keys.PublicKeys) ([]byte, error) {
	n := len(pubs)
	if m < 1 || m > n || n > 1024 {
		return nil, fmt.Errorf("invalid multisig parameters: %d of %d", m, n)
	}
	script := make([]byte, 0, 3+n*(2+keys.PublicKeySize))
	script = pushInt(script, m)
	sorted := make(keys.PublicKeys, n)
	copy(sorted, pubs)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sorted[j].Cmp(sorted[i]) < 0 {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	for _, p := range sorted {
		b := p.Bytes()
		script = append(script, opPushData1, byte(len(b)))
		script = append(script, b...)
	}
	script = pushInt(script, n)
	script = append(script, opSyscall)
	script = append(script, checkMultisigHash()...)
	return script, nil
}

// CreateMultiSigAccount returns the script hash (account id) of the
// standard m-of-n multisig over pubs.
func CreateMultiSigAccount(m int, pubs keys.PublicKeys) (util.Uint160, error) {
	script, err := CreateMultiSigRedeemScript(m, pubs)
	if err != nil {
		return util.Uint160{}, err
	}
	return hash.Hash160(script), nil
}

// DefaultCommitteeM returns the standard multisig threshold for a
// committee/validator set of size n: n - floor((n-1)/3), the BFT-tolerant
// majority, matching the reference node's fixed formula.
func DefaultCommitteeM(n int) int {
	return n - (n-1)/3
}

// ErrEmptyScript is returned by CreateContractHash/CreateNativeContractHash
// when given an empty sender or script.
var ErrEmptyScript = errors.New("empty script")

// CreateContractHash derives a deployed contract's id-independent hash
// from its deployer and NEF checksum, matching the reference formula
// Hash160 over a script pushing sender, nefCheckSum and name, so redeploys of the
// same source by the same sender with the same name collide deliberately.
func CreateContractHash(sender util.Uint160, nefCheckSum uint32, name string) util.Uint160 {
	w := newHashWriter()
	w.writeOpPush(sender.BytesLE())
	w.writeOpPushInt(int64(nefCheckSum))
	w.writeOpPush([]byte(name))
	return hash.Hash160(w.bytes())
}

// CreateNativeContractHash derives a native contract's fixed hash from its
// name alone (natives have no deployer or NEF), matching the reference
// formula Hash160(0 || name) using the zero sender as a stand-in for "no
// deployer".
func CreateNativeContractHash(name string) util.Uint160 {
	return CreateContractHash(util.Uint160{}, 0, name)
}

type hashWriter struct {
	b []byte
}

func newHashWriter() *hashWriter { return &hashWriter{} }

func (h *hashWriter) writeOpPush(b []byte) {
	h.b = append(h.b, opPushData1, byte(len(b)))
	h.b = append(h.b, b...)
}

func (h *hashWriter) writeOpPushInt(n int64) {
	h.b = pushInt(h.b, int(n))
}

func (h *hashWriter) bytes() []byte { return h.b }
