package state

// StorageItem is the raw byte value of one storage row. It carries no
// cached decoded ("interoperable") form; callers decode the bytes themselves.
type StorageItem []byte

// StorageKey is the pair (contract-id, key) that prefixes every storage
// row.
type StorageKey struct {
	ID  int32
	Key []byte
}

// Bytes encodes the raw storage row key: contract-id (big-endian i32)
// followed by the contract-specific key bytes.
func (k StorageKey) Bytes() []byte {
	b := make([]byte, 4+len(k.Key))
	b[0] = byte(uint32(k.ID) >> 24)
	b[1] = byte(uint32(k.ID) >> 16)
	b[2] = byte(uint32(k.ID) >> 8)
	b[3] = byte(uint32(k.ID))
	copy(b[4:], k.Key)
	return b
}

// TransactionReceipt is what the ledger stores per-transaction after
// apply: the VM outcome, consumed gas, notifications, and the fault message
// when the VM faulted.
type TransactionReceipt struct {
	VMState      byte
	GasConsumed  int64
	Notifications []NotificationEvent
	FaultException string
}
