package storage

import (
	"github.com/zkshield/shieldpool/types"
)

// NoteRecord is the persisted form of a discovered note: enough to
// rebuild the plaintext by decryption and to locate the leaf in the
// commitment tree. Spent status is deliberately absent.
type NoteRecord struct {
	Commitment types.HexBytes `cbor:"1,keyasint"`
	Payload    types.HexBytes `cbor:"2,keyasint"`
	LeafIndex  uint64         `cbor:"3,keyasint"`
}

// OperationRecord is the persisted state of one in-flight protocol
// operation. It is rewritten after every phase transition, so a
// crashed client can resume from the last recorded phase.
type OperationRecord struct {
	ID          types.HexBytes   `cbor:"1,keyasint"`
	Kind        uint8            `cbor:"2,keyasint"`
	Phase       uint8            `cbor:"3,keyasint"`
	Root        types.HexBytes   `cbor:"4,keyasint"`
	Nullifiers  []types.HexBytes `cbor:"5,keyasint"`
	Commitments []types.HexBytes `cbor:"6,keyasint"`
	Payloads    []types.HexBytes `cbor:"7,keyasint"`
	Proof       types.HexBytes   `cbor:"8,keyasint"`
	PubSignals  string           `cbor:"9,keyasint"`
	UpdatedAt   int64            `cbor:"10,keyasint"`
}
