// Package circuits bridges the protocol state to the external proving
// and verifying systems: it lays out circuit witnesses in the exact
// order the circuits expect, serializes them into the prover's binary
// format, and reformats resulting proofs into the on-ledger verifier's
// point layout.
package circuits

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/constants"

	"github.com/zkshield/shieldpool/crypto"
	"github.com/zkshield/shieldpool/types"
)

// scalarField is the field every witness element lives in.
var scalarField = constants.Q

// EncodeWitness serializes an ordered witness as a 4-byte big-endian
// element count followed by each element's canonical 32-byte encoding.
// Elements are reduced into the field, the same reduction used by every
// hash derivation, so the prover sees exactly the hashed values.
func EncodeWitness(elements []*big.Int) ([]byte, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("empty witness")
	}
	buf := make([]byte, 4, 4+len(elements)*crypto.SerializedFieldSize)
	binary.BigEndian.PutUint32(buf, uint32(len(elements)))
	for i, e := range elements {
		if e == nil {
			return nil, fmt.Errorf("nil witness element at index %d", i)
		}
		buf = append(buf, crypto.FieldToBytes(scalarField, e)...)
	}
	return buf, nil
}

// DecodeWitness parses the binary witness format back into its ordered
// elements, failing fast on any length mismatch.
func DecodeWitness(data []byte) ([]*big.Int, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("witness too short: got %d bytes", len(data))
	}
	count := binary.BigEndian.Uint32(data)
	want := 4 + int(count)*crypto.SerializedFieldSize
	if len(data) != want {
		return nil, fmt.Errorf("invalid witness length: got %d bytes, expected %d bytes for %d elements",
			len(data), want, count)
	}
	elements := make([]*big.Int, count)
	for i := range elements {
		e, err := crypto.BytesToField(scalarField, data[4+i*crypto.SerializedFieldSize:4+(i+1)*crypto.SerializedFieldSize])
		if err != nil {
			return nil, err
		}
		elements[i] = e
	}
	return elements, nil
}

// NoteAssignment is the witness view of one note: its fields plus the
// tree position proving membership.
type NoteAssignment struct {
	StealthPubX *big.Int
	TokenMint   *big.Int
	Amount      uint64
	Randomness  *big.Int
	LeafIndex   uint64
	Siblings    []*big.Int // exactly types.MerkleTreeDepth entries
}

func (n *NoteAssignment) serialize() ([]*big.Int, error) {
	if len(n.Siblings) != types.MerkleTreeDepth {
		return nil, fmt.Errorf("invalid sibling path length: got %d, expected %d",
			len(n.Siblings), types.MerkleTreeDepth)
	}
	out := []*big.Int{
		n.StealthPubX,
		n.TokenMint,
		new(big.Int).SetUint64(n.Amount),
		n.Randomness,
		new(big.Int).SetUint64(n.LeafIndex),
	}
	return append(out, n.Siblings...), nil
}

// OutputAssignment is the witness view of a freshly created note; it
// has no tree position yet.
type OutputAssignment struct {
	StealthPubX *big.Int
	TokenMint   *big.Int
	Amount      uint64
	Randomness  *big.Int
}

func (o *OutputAssignment) serialize() []*big.Int {
	return []*big.Int{
		o.StealthPubX,
		o.TokenMint,
		new(big.Int).SetUint64(o.Amount),
		o.Randomness,
	}
}

// TransferWitness collects every input of the transfer circuit. The
// serialized order is part of the circuit contract:
//
//	public:  MerkleRoot, InputNullifiers, OutputCommitments, TokenMint
//	private: per input note (fields, leaf index, siblings), per input
//	         stealth spending key, per output note fields
//
// Any deviation silently proves the wrong statement, so tests pin the
// exact layout.
type TransferWitness struct {
	MerkleRoot        *big.Int
	InputNullifiers   []*big.Int
	OutputCommitments []*big.Int
	TokenMint         *big.Int

	InputNotes  []NoteAssignment
	StealthKeys []*big.Int
	Outputs     []OutputAssignment
}

// PublicInputs returns the public elements in verifier order.
func (w *TransferWitness) PublicInputs() []*big.Int {
	out := []*big.Int{w.MerkleRoot}
	out = append(out, w.InputNullifiers...)
	out = append(out, w.OutputCommitments...)
	return append(out, w.TokenMint)
}

// Serialize returns the full ordered witness, public inputs first.
func (w *TransferWitness) Serialize() ([]*big.Int, error) {
	if len(w.InputNotes) != len(w.InputNullifiers) || len(w.InputNotes) != len(w.StealthKeys) {
		return nil, fmt.Errorf("input count mismatch: %d notes, %d nullifiers, %d keys",
			len(w.InputNotes), len(w.InputNullifiers), len(w.StealthKeys))
	}
	if len(w.Outputs) != len(w.OutputCommitments) {
		return nil, fmt.Errorf("output count mismatch: %d notes, %d commitments",
			len(w.Outputs), len(w.OutputCommitments))
	}
	out := w.PublicInputs()
	for i := range w.InputNotes {
		fields, err := w.InputNotes[i].serialize()
		if err != nil {
			return nil, fmt.Errorf("input note %d: %w", i, err)
		}
		out = append(out, fields...)
	}
	out = append(out, w.StealthKeys...)
	for i := range w.Outputs {
		out = append(out, w.Outputs[i].serialize()...)
	}
	return out, nil
}

// VoteWitness collects every input of the vote circuit. The chosen
// option and weight stay private; the ciphertexts, election key and
// spent-note binding are public:
//
//	public:  ElectionID, MerkleRoot, Nullifier, ElectionKey (x, y),
//	         per option ciphertext coordinates (C1.x, C1.y, C2.x, C2.y)
//	private: weight, chosen option, encryption nonces, spent note
//	         (fields, leaf index, siblings), stealth spending key
type VoteWitness struct {
	ElectionID   *big.Int
	MerkleRoot   *big.Int
	Nullifier    *big.Int
	ElectionKey  [2]*big.Int
	VoteCoords   [][4]*big.Int // one entry per option
	Weight       uint64
	ChosenOption uint64
	Nonces       []*big.Int
	SpentNote    NoteAssignment
	StealthKey   *big.Int
}

// PublicInputs returns the public elements in verifier order.
func (w *VoteWitness) PublicInputs() []*big.Int {
	out := []*big.Int{w.ElectionID, w.MerkleRoot, w.Nullifier, w.ElectionKey[0], w.ElectionKey[1]}
	for _, coords := range w.VoteCoords {
		out = append(out, coords[0], coords[1], coords[2], coords[3])
	}
	return out
}

// Serialize returns the full ordered witness, public inputs first.
func (w *VoteWitness) Serialize() ([]*big.Int, error) {
	if len(w.Nonces) != len(w.VoteCoords) {
		return nil, fmt.Errorf("nonce count mismatch: %d nonces, %d options",
			len(w.Nonces), len(w.VoteCoords))
	}
	out := w.PublicInputs()
	out = append(out,
		new(big.Int).SetUint64(w.Weight),
		new(big.Int).SetUint64(w.ChosenOption),
	)
	out = append(out, w.Nonces...)
	noteFields, err := w.SpentNote.serialize()
	if err != nil {
		return nil, fmt.Errorf("spent note: %w", err)
	}
	out = append(out, noteFields...)
	return append(out, w.StealthKey), nil
}
