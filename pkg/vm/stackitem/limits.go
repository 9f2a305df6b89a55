package stackitem

// Limits enforced per item and per operation. Values
// match the reference node's defaults and are fixed constants.
const (
	// MaxArraySize is the maximum number of elements an Array/Struct/Map
	// may hold.
	MaxArraySize = 1024
	// MaxItemSize is the maximum size in bytes of a ByteString or Buffer.
	MaxItemSize = 1024 * 1024
	// MaxBigIntegerSizeBits is the maximum bit length of an Integer's
	// two's-complement representation (32 bytes).
	MaxBigIntegerSizeBits = 32 * 8
	// MaxKeySize is the maximum length of a Map key.
	MaxKeySize = 64
)
