// Package operations sequences multi-phase protocol operations against
// a ledger that cannot express a whole state transition atomically.
// Each operation advances Pending -> Nullified -> Executed ->
// Committed -> Closed, persisting the phase after every transition so
// a restarted client can resume from the last recorded phase instead
// of replaying ledger-mutating steps.
package operations

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/zkshield/shieldpool/circuits"
	"github.com/zkshield/shieldpool/crypto"
	"github.com/zkshield/shieldpool/types"
	"github.com/zkshield/shieldpool/util"
)

var (
	// ErrDoubleSpend is surfaced when a nullifier is already in the
	// ledger's spent set. The operation is terminally aborted;
	// retrying with the same inputs reproduces the identical
	// nullifier and fails identically.
	ErrDoubleSpend = errors.New("nullifier already published")
	// ErrStaleRoot is surfaced when the root an operation's proof was
	// built against no longer matches the ledger. Recoverable by
	// rescanning and rebuilding the operation from fresh state.
	ErrStaleRoot = errors.New("merkle root is stale")
	// ErrNeedsResync marks an operation that mutated ledger state and
	// then hit an ambiguous failure. It must not be resumed; the
	// client has to reconcile against the ledger first.
	ErrNeedsResync = errors.New("operation needs resync against ledger state")
)

// Kind tags the protocol flow an operation executes.
type Kind uint8

const (
	KindShield Kind = iota + 1
	KindTransfer
	KindUnshield
	KindVoteCast
	KindVoteChange
	KindPositionClose
	KindClaim
)

func (k Kind) String() string {
	switch k {
	case KindShield:
		return "shield"
	case KindTransfer:
		return "transfer"
	case KindUnshield:
		return "unshield"
	case KindVoteCast:
		return "voteCast"
	case KindVoteChange:
		return "voteChange"
	case KindPositionClose:
		return "positionClose"
	case KindClaim:
		return "claim"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Phase is the persisted progress marker of an operation.
type Phase uint8

const (
	PhasePending Phase = iota + 1
	PhaseNullified
	PhaseExecuted
	PhaseCommitted
	PhaseClosed
	PhaseAborted
	PhaseNeedsResync
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseNullified:
		return "nullified"
	case PhaseExecuted:
		return "executed"
	case PhaseCommitted:
		return "committed"
	case PhaseClosed:
		return "closed"
	case PhaseAborted:
		return "aborted"
	case PhaseNeedsResync:
		return "needsResync"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Terminal reports whether the phase admits no further transitions.
func (p Phase) Terminal() bool {
	return p == PhaseClosed || p == PhaseAborted
}

const idSize = 12

// Operation is one in-flight protocol operation: the proof and public
// values to publish, plus the phase reached so far. Nullifiers and
// commitments are published in slice order.
type Operation struct {
	ID          types.HexBytes
	Kind        Kind
	Phase       Phase
	Root        *big.Int
	Nullifiers  []*big.Int
	Commitments []*big.Int
	Payloads    []types.HexBytes // encrypted outputs, parallel to Commitments
	Proof       types.HexBytes
	PubSignals  string
}

// NewOperation creates a pending operation with a fresh random id. The
// root must be the one the proof's Merkle paths were built against.
func NewOperation(kind Kind, root *big.Int, nullifiers, commitments []*big.Int, payloads []types.HexBytes, proof types.HexBytes) (*Operation, error) {
	if len(payloads) != len(commitments) {
		return nil, fmt.Errorf("payload count mismatch: %d payloads, %d commitments",
			len(payloads), len(commitments))
	}
	return &Operation{
		ID:          util.RandomBytes(idSize),
		Kind:        kind,
		Phase:       PhasePending,
		Root:        root,
		Nullifiers:  nullifiers,
		Commitments: commitments,
		Payloads:    payloads,
		Proof:       proof,
	}, nil
}

// LedgerPayload assembles the bounded-size instruction body published
// with the intent: the proof followed by the encoded public inputs in
// verifier order (root, nullifiers, commitments).
func (op *Operation) LedgerPayload() ([]byte, error) {
	publics := make([]*big.Int, 0, 1+len(op.Nullifiers)+len(op.Commitments))
	publics = append(publics, op.Root)
	publics = append(publics, op.Nullifiers...)
	publics = append(publics, op.Commitments...)
	encoded, err := circuits.EncodeWitness(publics)
	if err != nil {
		return nil, fmt.Errorf("encode public inputs: %w", err)
	}
	return append(append([]byte{}, op.Proof...), encoded...), nil
}

func bigToBytes(v *big.Int) types.HexBytes {
	if v == nil {
		return nil
	}
	out := make([]byte, crypto.SerializedFieldSize)
	v.FillBytes(out)
	return out
}

func bigsToBytes(vs []*big.Int) []types.HexBytes {
	out := make([]types.HexBytes, len(vs))
	for i, v := range vs {
		out[i] = bigToBytes(v)
	}
	return out
}

func bytesToBigs(vs []types.HexBytes) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = new(big.Int).SetBytes(v)
	}
	return out
}
