package interop

import (
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/n3core/node/pkg/core/interop/interopnames"
	b58 "github.com/n3core/node/pkg/crypto/base58"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// RegisterBinary adds the System.Binary.* syscalls.
func RegisterBinary(ic *Context) {
	reg := func(name string, price int64, flags callflag.CallFlag, f func(*Context) error) {
		ic.RegisterFunction(&Function{
			ID: interopnames.ToID(name), Name: name, Func: f,
			Price: price, RequiredFlags: flags,
		})
	}
	reg(interopnames.SystemBinarySerialize, 1<<16, callflag.NoneFlag, binarySerialize)
	reg(interopnames.SystemBinaryDeserialize, 1<<16, callflag.NoneFlag, binaryDeserialize)
	reg(interopnames.SystemBinaryBase64Encode, 1<<12, callflag.NoneFlag, binaryBase64Encode)
	reg(interopnames.SystemBinaryBase64Decode, 1<<12, callflag.NoneFlag, binaryBase64Decode)
	reg(interopnames.SystemBinaryBase58Encode, 1<<12, callflag.NoneFlag, binaryBase58Encode)
	reg(interopnames.SystemBinaryBase58Decode, 1<<12, callflag.NoneFlag, binaryBase58Decode)
	reg(interopnames.SystemBinaryItoa, 1<<12, callflag.NoneFlag, binaryItoa)
	reg(interopnames.SystemBinaryAtoi, 1<<12, callflag.NoneFlag, binaryAtoi)
}

func binarySerialize(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := stackitem.SerializeItem(item)
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray(b))
	return nil
}

func binaryDeserialize(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := item.TryBytes()
	if err != nil {
		return err
	}
	res, err := stackitem.DeserializeItem(b)
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(res)
	return nil
}

func binaryBase64Encode(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := item.TryBytes()
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray([]byte(base64.StdEncoding.EncodeToString(b))))
	return nil
}

func binaryBase64Decode(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	s, err := item.TryBytes()
	if err != nil {
		return err
	}
	b, err := base64.StdEncoding.DecodeString(string(s))
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray(b))
	return nil
}

func binaryBase58Encode(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := item.TryBytes()
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray([]byte(b58.Encode(b))))
	return nil
}

func binaryBase58Decode(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	s, err := item.TryBytes()
	if err != nil {
		return err
	}
	b, err := b58.Decode(string(s))
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray(b))
	return nil
}

func binaryItoa(ic *Context) error {
	numItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	n, err := numItem.TryInteger()
	if err != nil {
		return err
	}
	baseItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := baseItem.TryInteger()
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray([]byte(n.Text(int(b.Int64())))))
	return nil
}

func binaryAtoi(ic *Context) error {
	strItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	s, err := strItem.TryBytes()
	if err != nil {
		return err
	}
	baseItem, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := baseItem.TryInteger()
	if err != nil {
		return err
	}
	n, ok := new(big.Int).SetString(string(s), int(b.Int64()))
	if !ok {
		return fmt.Errorf("atoi: invalid number %q", s)
	}
	ic.VM.Estack().Push(stackitem.NewBigInteger(n))
	return nil
}
