package interop

import (
	"fmt"

	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/vm"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// RegisterCrypto adds the System.Crypto.* syscalls: CheckSig and
// CheckMultisig. No Hash160 or Hash256 syscall is registered.
func RegisterCrypto(ic *Context) {
	reg := func(name string, price int64, flags callflag.CallFlag, f func(*Context) error) {
		ic.RegisterFunction(&Function{
			ID: interopnames.ToID(name), Name: name, Func: f,
			Price: price, RequiredFlags: flags,
		})
	}
	reg(interopnames.SystemCryptoCheckSig, 1<<15, callflag.NoneFlag, cryptoCheckSig)
	reg(interopnames.SystemCryptoCheckMultisig, 0, callflag.NoneFlag, cryptoCheckMultisig)
}

func cryptoCheckSig(ic *Context) error {
	pubItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	sigItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	pubB, err := pubItem.TryBytes()
	if err != nil {
		return err
	}
	sigB, err := sigItem.TryBytes()
	if err != nil {
		return err
	}
	if !ic.VM.AddGas(1 << 15 * ic.baseExecFee) {
		return fmt.Errorf("out of gas")
	}
	pub, err := keys.NewPublicKeyFromBytes(pubB)
	ok := err == nil && ic.verifiableSigned(pub, sigB)
	ic.VM.Estack().Push(stackitem.NewBool(ok))
	return nil
}

// verifiableSigned checks sig against the hash of the current script
// container's unsigned form, network-salted the way the reference signs.
func (ic *Context) verifiableSigned(pub *keys.PublicKey, sig []byte) bool {
	if pub == nil {
		return false
	}
	msg := ic.signedMessage()
	if msg == nil {
		return false
	}
	return pub.Verify(sig, msg)
}

func (ic *Context) signedMessage() []byte {
	switch c := ic.Container.(type) {
	case interface{ SigningData(uint32) []byte }:
		return c.SigningData(ic.Network)
	default:
		_ = c
		return nil
	}
}

func cryptoCheckMultisig(ic *Context) error {
	pubBytes, err := popSigElements(ic.VM.Estack())
	if err != nil {
		return err
	}
	sigBytes, err := popSigElements(ic.VM.Estack())
	if err != nil {
		return err
	}
	n := len(pubBytes)
	m := len(sigBytes)
	if m == 0 || n == 0 || m > n {
		return fmt.Errorf("invalid multisig parameters: %d of %d", m, n)
	}
	price := int64(1<<15) * int64(n)
	if !ic.VM.AddGas(price * ic.baseExecFee) {
		return fmt.Errorf("out of gas")
	}
	msg := ic.signedMessage()
	pubKeys := make([]*keys.PublicKey, n)
	for i, b := range pubBytes {
		pk, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return err
		}
		pubKeys[i] = pk
	}
	ok := msg != nil && verifyMultisigOrdered(pubKeys, sigBytes, msg)
	ic.VM.Estack().Push(stackitem.NewBool(ok))
	return nil
}

// popSigElements pops a signature/key list off the stack accepting both
// layouts the reference does: a single Array item, or an integer count
// followed by that many items (the form standard multisig verification
// scripts emit).
func popSigElements(s *vm.Stack) ([][]byte, error) {
	it, err := s.Pop()
	if err != nil {
		return nil, err
	}
	var items []stackitem.Item
	switch t := it.(type) {
	case *stackitem.Array:
		items, _ = t.Value().([]stackitem.Item)
	default:
		num, err := it.TryInteger()
		if err != nil {
			return nil, fmt.Errorf("%w: expected array or count", stackitem.ErrInvalidCast)
		}
		n := int(num.Int64())
		if n < 0 || n > s.Len() {
			return nil, fmt.Errorf("invalid sig element count %d", n)
		}
		items = make([]stackitem.Item, n)
		for i := 0; i < n; i++ {
			items[i], err = s.Pop()
			if err != nil {
				return nil, err
			}
		}
	}
	res := make([][]byte, len(items))
	for i, el := range items {
		b, err := el.TryBytes()
		if err != nil {
			return nil, err
		}
		res[i] = b
	}
	return res, nil
}

// verifyMultisigOrdered matches each signature against public keys in
// order, requiring every signature to find a later-or-equal key, so a shuffled-but-valid signature set never
// double-matches one key.
func verifyMultisigOrdered(pubs []*keys.PublicKey, sigs [][]byte, msg []byte) bool {
	si, pi := 0, 0
	for si < len(sigs) && pi < len(pubs) {
		if pubs[pi].Verify(sigs[si], msg) {
			si++
		}
		pi++
	}
	return si == len(sigs)
}
