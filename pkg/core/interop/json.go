package interop

import (
	"github.com/n3core/node/pkg/core/interop/interopnames"
	"github.com/n3core/node/pkg/smartcontract/callflag"
	"github.com/n3core/node/pkg/vm/stackitem"
)

// maxJSONInput bounds System.Json.Deserialize the way StdLib.jsonDeserialize
// bounds its own input.
const maxJSONInput = 1024 * 1024

// RegisterJson adds the System.Json.* syscalls.
func RegisterJson(ic *Context) {
	reg := func(name string, price int64, flags callflag.CallFlag, f func(*Context) error) {
		ic.RegisterFunction(&Function{
			ID: interopnames.ToID(name), Name: name, Func: f,
			Price: price, RequiredFlags: flags,
		})
	}
	reg(interopnames.SystemJsonSerialize, 1<<14, callflag.NoneFlag, jsonSerialize)
	reg(interopnames.SystemJsonDeserialize, 1<<14, callflag.NoneFlag, jsonDeserialize)
}

func jsonSerialize(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := stackitem.ToJSON(item)
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(stackitem.NewByteArray(b))
	return nil
}

func jsonDeserialize(ic *Context) error {
	item, err := ic.VM.Estack().Pop()
	if err != nil {
		return err
	}
	b, err := item.TryBytes()
	if err != nil {
		return err
	}
	if len(b) > maxJSONInput {
		return stackitem.ErrTooBig
	}
	res, err := stackitem.FromJSON(b)
	if err != nil {
		return err
	}
	ic.VM.Estack().Push(res)
	return nil
}
