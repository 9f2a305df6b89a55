// Package interopnames is the registry of System.* syscall names the
// Application Engine resolves SYSCALL operands against. Each name hashes to the 4-byte id actually encoded in a
// script, matching the reference convention of id = first 4 bytes of
// SHA256(name).
package interopnames

import "github.com/n3core/node/pkg/crypto/hash"

// The full syscall surface.
const (
	SystemRuntimeCheckWitness          = "System.Runtime.CheckWitness"
	SystemRuntimeLog                   = "System.Runtime.Log"
	SystemRuntimeNotify                 = "System.Runtime.Notify"
	SystemRuntimeGetTime                = "System.Runtime.GetTime"
	SystemRuntimeGetNetwork              = "System.Runtime.GetNetwork"
	SystemRuntimeGetRandom               = "System.Runtime.GetRandom"
	SystemRuntimeGasLeft                 = "System.Runtime.GasLeft"
	SystemRuntimeGetTrigger              = "System.Runtime.GetTrigger"
	SystemRuntimeGetScriptContainer      = "System.Runtime.GetScriptContainer"
	SystemRuntimeGetExecutingScriptHash  = "System.Runtime.GetExecutingScriptHash"
	SystemRuntimeGetCallingScriptHash    = "System.Runtime.GetCallingScriptHash"
	SystemRuntimeGetEntryScriptHash      = "System.Runtime.GetEntryScriptHash"
	SystemRuntimeGetInvocationCounter    = "System.Runtime.GetInvocationCounter"
	SystemRuntimeGetNotifications        = "System.Runtime.GetNotifications"
	SystemRuntimePlatform                = "System.Runtime.Platform"
	SystemRuntimeBurnGas                 = "System.Runtime.BurnGas"
	SystemRuntimeCurrentSigners          = "System.Runtime.CurrentSigners"

	SystemStorageGetContext     = "System.Storage.GetContext"
	SystemStorageGetReadOnlyContext = "System.Storage.GetReadOnlyContext"
	SystemStorageAsReadOnly     = "System.Storage.AsReadOnly"
	SystemStorageGet            = "System.Storage.Get"
	SystemStoragePut            = "System.Storage.Put"
	SystemStorageDelete         = "System.Storage.Delete"
	SystemStorageFind           = "System.Storage.Find"

	SystemIteratorNext  = "System.Iterator.Next"
	SystemIteratorValue = "System.Iterator.Value"

	SystemContractCall             = "System.Contract.Call"
	SystemContractCallNative       = "System.Contract.CallNative"
	SystemContractGetCallFlags     = "System.Contract.GetCallFlags"
	SystemContractCreateStandardAccount = "System.Contract.CreateStandardAccount"
	SystemContractCreateMultisigAccount = "System.Contract.CreateMultisigAccount"
	SystemContractNativeOnPersist  = "System.Contract.NativeOnPersist"
	SystemContractNativePostPersist = "System.Contract.NativePostPersist"

	SystemCryptoCheckSig      = "System.Crypto.CheckSig"
	SystemCryptoCheckMultisig = "System.Crypto.CheckMultisig"

	SystemJsonSerialize   = "System.Json.Serialize"
	SystemJsonDeserialize = "System.Json.Deserialize"

	SystemBinarySerialize      = "System.Binary.Serialize"
	SystemBinaryDeserialize    = "System.Binary.Deserialize"
	SystemBinaryBase64Encode    = "System.Binary.Base64Encode"
	SystemBinaryBase64Decode    = "System.Binary.Base64Decode"
	SystemBinaryBase58Encode    = "System.Binary.Base58Encode"
	SystemBinaryBase58Decode    = "System.Binary.Base58Decode"
	SystemBinaryItoa            = "System.Binary.Itoa"
	SystemBinaryAtoi            = "System.Binary.Atoi"
)

// toID hashes name into the 4-byte little-endian id the bytecode encodes
// after SYSCALL.
func toID(name string) uint32 {
	h := hash.Sha256([]byte(name))
	return uint32(h[0]) | uint32(h[1])<<8 | uint32(h[2])<<16 | uint32(h[3])<<24
}

// ToID is exported for tooling/tests that need the id of a name outside the
// engine's own registration path.
func ToID(name string) uint32 { return toID(name) }
