// Package io implements the node's bytewise-deterministic binary codec:
// fixed-width little-endian integers, the 0xFD/0xFE/0xFF variable-length
// integer scheme, and variable-length byte/string encodings, as required
// by the wire format. Every wire-sensitive type (Block, Header, Transaction,
// Witness, NEF, stack items) implements Serializable against this package.
package io

// Serializable defines the binary encoding contract. EncodeBinary is
// infallible given a big-enough buffer (errors surface through the
// BinWriter's sticky error field); DecodeBinary surfaces format errors
// through the BinReader's sticky error field.
type Serializable interface {
	DecodeBinary(*BinReader)
	EncodeBinary(*BinWriter)
}
