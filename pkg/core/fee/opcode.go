// Package fee prices VM opcodes for gas metering.
package fee

import "github.com/n3core/node/pkg/vm/opcode"

// Base opcode price tiers, in the smallest GAS unit before multiplication
// by the network's exec-fee-factor (PolicyContract.GetExecFeeFactor).
// Instructions that touch the stack/slots cheaply sit in the lowest tier.
// Every price is flat: NEWARRAY and the compound-type ops cost the same
// whatever their operand size, and PUSHDATA1/2/4 are not listed, so they
// take the tier0 default.
const (
	tier0   = 1 << 0
	tier1   = 1 << 3
	tier2   = 1 << 4
	tier3   = 1 << 6
	tier4   = 1 << 8
	tier5   = 1 << 11
	tier6   = 1 << 13
	tier7   = 1 << 16
)

var opcodePrices = map[opcode.Opcode]int64{
	opcode.PUSHINT8: tier0, opcode.PUSHINT16: tier0, opcode.PUSHINT32: tier0,
	opcode.PUSHINT64: tier0, opcode.PUSHINT128: tier1, opcode.PUSHINT256: tier1,
	opcode.PUSHT: tier0, opcode.PUSHF: tier0, opcode.PUSHNULL: tier0,
	opcode.PUSHM1: tier0,
	opcode.PUSH0: tier0, opcode.PUSH1: tier0, opcode.PUSH2: tier0, opcode.PUSH3: tier0,
	opcode.PUSH4: tier0, opcode.PUSH5: tier0, opcode.PUSH6: tier0, opcode.PUSH7: tier0,
	opcode.PUSH8: tier0, opcode.PUSH9: tier0, opcode.PUSH10: tier0, opcode.PUSH11: tier0,
	opcode.PUSH12: tier0, opcode.PUSH13: tier0, opcode.PUSH14: tier0, opcode.PUSH15: tier0,
	opcode.PUSH16: tier0,
	opcode.PUSHA:  tier1,

	opcode.NOP: tier0,
	opcode.JMP: tier1, opcode.JMPL: tier1,
	opcode.JMPIF: tier1, opcode.JMPIFL: tier1, opcode.JMPIFNOT: tier1, opcode.JMPIFNOTL: tier1,
	opcode.JMPEQ: tier1, opcode.JMPEQL: tier1, opcode.JMPNE: tier1, opcode.JMPNEL: tier1,
	opcode.JMPGT: tier1, opcode.JMPGTL: tier1, opcode.JMPGE: tier1, opcode.JMPGEL: tier1,
	opcode.JMPLT: tier1, opcode.JMPLTL: tier1, opcode.JMPLE: tier1, opcode.JMPLEL: tier1,
	opcode.CALL: tier3, opcode.CALLL: tier3, opcode.CALLA: tier3, opcode.CALLT: tier4,
	opcode.ABORT: tier0, opcode.ASSERT: tier0, opcode.THROW: tier1,
	opcode.TRY: tier1, opcode.TRYL: tier1, opcode.ENDTRY: tier1, opcode.ENDTRYL: tier1,
	opcode.ENDFINALLY: tier1, opcode.RET: tier0,
	opcode.SYSCALL: tier0,

	opcode.DEPTH: tier1, opcode.DROP: tier1, opcode.NIP: tier1, opcode.XDROP: tier2,
	opcode.CLEAR: tier1, opcode.DUP: tier1, opcode.OVER: tier1, opcode.PICK: tier1,
	opcode.TUCK: tier1, opcode.SWAP: tier1, opcode.ROT: tier1, opcode.ROLL: tier2,
	opcode.REVERSE3: tier1, opcode.REVERSE4: tier1, opcode.REVERSEN: tier2,

	opcode.INITSSLOT: tier4, opcode.INITSLOT: tier4,
	opcode.LDSFLD0: tier1, opcode.LDSFLD: tier1,
	opcode.STSFLD0: tier1, opcode.STSFLD: tier1,
	opcode.LDLOC0: tier1, opcode.LDLOC: tier1,
	opcode.STLOC0: tier1, opcode.STLOC: tier1,
	opcode.LDARG0: tier1, opcode.LDARG: tier1,
	opcode.STARG0: tier1, opcode.STARG: tier1,

	opcode.NEWBUFFER: tier4,
	opcode.MEMCPY:    tier4,
	opcode.CAT:       tier4,
	opcode.SUBSTR:    tier4,
	opcode.LEFT:      tier4,
	opcode.RIGHT:     tier4,

	opcode.INVERT: tier1, opcode.AND: tier2, opcode.OR: tier2, opcode.XOR: tier2,
	opcode.EQUAL: tier4, opcode.NOTEQUAL: tier4,

	opcode.SIGN: tier1, opcode.ABS: tier1, opcode.NEGATE: tier1,
	opcode.INC: tier1, opcode.DEC: tier1, opcode.ADD: tier1, opcode.SUB: tier1,
	opcode.MUL: tier2, opcode.DIV: tier2, opcode.MOD: tier2,
	opcode.POW: tier5, opcode.SQRT: tier5, opcode.MODMUL: tier5, opcode.MODPOW: tier6,
	opcode.SHL: tier2, opcode.SHR: tier2, opcode.NOT: tier1,
	opcode.BOOLAND: tier1, opcode.BOOLOR: tier1, opcode.NZ: tier1,
	opcode.NUMEQUAL: tier1, opcode.NUMNOTEQUAL: tier1,
	opcode.LT: tier1, opcode.LE: tier1, opcode.GT: tier1, opcode.GE: tier1,
	opcode.MIN: tier1, opcode.MAX: tier1, opcode.WITHIN: tier1,

	opcode.PACKMAP: tier4, opcode.PACKSTRUCT: tier4, opcode.PACK: tier4, opcode.UNPACK: tier4,
	opcode.NEWARRAY0: tier1, opcode.NEWARRAY: tier4, opcode.NEWARRAYT: tier4,
	opcode.NEWSTRUCT0: tier1, opcode.NEWSTRUCT: tier4, opcode.NEWMAP: tier1,
	opcode.SIZE: tier1, opcode.HASKEY: tier4, opcode.KEYS: tier1,
	opcode.VALUES: tier7, opcode.PICKITEM: tier4, opcode.APPEND: tier7,
	opcode.SETITEM: tier7, opcode.REVERSEITEMS: tier7, opcode.REMOVE: tier4,
	opcode.CLEARITEMS: tier1, opcode.POPITEM: tier4,

	opcode.ISNULL: tier1, opcode.ISTYPE: tier1, opcode.CONVERT: tier7,
}

// Opcode returns op's base price scaled by the network's exec-fee-factor
// (PolicyContract.ExecFeeFactor). Unrecognized opcodes price as tier0,
// matching the reference default for unlisted simple instructions.
func Opcode(execFeeFactor int64, op opcode.Opcode) int64 {
	price, ok := opcodePrices[op]
	if !ok {
		price = tier0
	}
	return execFeeFactor * price
}
