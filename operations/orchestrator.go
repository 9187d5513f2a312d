package operations

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/zkshield/shieldpool/log"
	"github.com/zkshield/shieldpool/storage"
)

// Ledger is the external chain surface the orchestrator drives. Every
// method is fallible; the mutating ones (PublishNullifier, Execute,
// PublishCommitment) must be treated as non-retryable once called,
// because a successful-but-unconfirmed response leaves ledger state
// changed.
type Ledger interface {
	// CurrentRoot returns the ledger's current commitment tree root.
	CurrentRoot(ctx context.Context) (*big.Int, error)
	// SubmitIntent records the operation's proof and public inputs.
	// The ledger verifies the proof here; no state is consumed yet.
	SubmitIntent(ctx context.Context, payload []byte) error
	// PublishNullifier adds a nullifier to the spent set. Returns
	// ErrDoubleSpend if it is already present.
	PublishNullifier(ctx context.Context, nullifier *big.Int) error
	// Execute applies the operation's effect (balance or tally move).
	Execute(ctx context.Context, payload []byte) error
	// PublishCommitment appends an output commitment with its
	// encrypted payload to the tree.
	PublishCommitment(ctx context.Context, commitment *big.Int, payload []byte) error
	// CloseIntent reclaims the intent bookkeeping.
	CloseIntent(ctx context.Context, id []byte) error
}

// Orchestrator runs operations phase by phase, persisting after every
// transition. It never reorders steps and never rolls back a mutating
// step; ambiguous failures park the operation in NeedsResync.
type Orchestrator struct {
	st     *storage.Storage
	ledger Ledger
}

// New creates an orchestrator over a ledger and the local record store.
func New(st *storage.Storage, ledger Ledger) *Orchestrator {
	return &Orchestrator{st: st, ledger: ledger}
}

// Run drives a pending operation to a terminal phase. It returns
// ErrDoubleSpend or ErrStaleRoot on terminal aborts and ErrNeedsResync
// when a mutating step failed ambiguously; in every case the persisted
// record reflects the phase reached.
func (o *Orchestrator) Run(ctx context.Context, op *Operation) error {
	if op.Phase.Terminal() {
		return fmt.Errorf("operation %x is already %s", op.ID, op.Phase)
	}
	if op.Phase == PhaseNeedsResync {
		return ErrNeedsResync
	}
	if err := o.persist(op); err != nil {
		return err
	}
	log.Infow("running operation", "id", op.ID.String(), "kind", op.Kind.String(), "phase", op.Phase.String())

	for !op.Phase.Terminal() {
		if err := o.step(ctx, op); err != nil {
			return err
		}
	}
	return nil
}

// Resume reloads a persisted operation and continues it. Operations
// parked in NeedsResync are refused until the client rebuilds them
// from fresh ledger state.
func (o *Orchestrator) Resume(ctx context.Context, id []byte) (*Operation, error) {
	op, err := o.Load(id)
	if err != nil {
		return nil, err
	}
	if op.Phase.Terminal() {
		return op, nil
	}
	if err := o.Run(ctx, op); err != nil {
		return op, err
	}
	return op, nil
}

// step executes the transition out of the current phase and persists
// the new phase before returning.
func (o *Orchestrator) step(ctx context.Context, op *Operation) error {
	switch op.Phase {
	case PhasePending:
		return o.submit(ctx, op)
	case PhaseNullified:
		return o.execute(ctx, op)
	case PhaseExecuted:
		return o.commit(ctx, op)
	case PhaseCommitted:
		return o.close(ctx, op)
	default:
		return fmt.Errorf("operation %x in unexpected phase %s", op.ID, op.Phase)
	}
}

// submit verifies preconditions, records the intent and publishes the
// input nullifiers. Nothing before the first nullifier mutates state,
// so failures up to there abort cleanly; a failure after the first
// published nullifier is ambiguous.
func (o *Orchestrator) submit(ctx context.Context, op *Operation) error {
	root, err := o.ledger.CurrentRoot(ctx)
	if err != nil {
		return o.abort(op, fmt.Errorf("fetch current root: %w", err))
	}
	if op.Root == nil || root.Cmp(op.Root) != 0 {
		return o.abort(op, ErrStaleRoot)
	}

	payload, err := op.LedgerPayload()
	if err != nil {
		return o.abort(op, err)
	}
	if err := o.ledger.SubmitIntent(ctx, payload); err != nil {
		return o.abort(op, fmt.Errorf("submit intent: %w", err))
	}

	for i, nullifier := range op.Nullifiers {
		err := o.ledger.PublishNullifier(ctx, nullifier)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrDoubleSpend) && i == 0 {
			// nothing of ours consumed yet, safe terminal abort;
			// the recorded intent is reclaimed best-effort
			if cerr := o.ledger.CloseIntent(ctx, op.ID); cerr != nil {
				log.Warnw("failed to reclaim intent of aborted operation",
					"id", op.ID.String(), "error", cerr.Error())
			}
			return o.abort(op, ErrDoubleSpend)
		}
		// some of the operation's nullifiers may already be
		// published; only a resync can tell
		return o.park(op, fmt.Errorf("publish nullifier %d: %w", i, err))
	}
	return o.advance(op, PhaseNullified)
}

func (o *Orchestrator) execute(ctx context.Context, op *Operation) error {
	payload, err := op.LedgerPayload()
	if err != nil {
		return o.park(op, err)
	}
	if err := o.ledger.Execute(ctx, payload); err != nil {
		// the nullifiers are already consumed, rollback is impossible
		return o.park(op, fmt.Errorf("execute: %w", err))
	}
	return o.advance(op, PhaseExecuted)
}

func (o *Orchestrator) commit(ctx context.Context, op *Operation) error {
	for i, cm := range op.Commitments {
		if err := o.ledger.PublishCommitment(ctx, cm, op.Payloads[i]); err != nil {
			return o.park(op, fmt.Errorf("publish commitment %d: %w", i, err))
		}
	}
	return o.advance(op, PhaseCommitted)
}

func (o *Orchestrator) close(ctx context.Context, op *Operation) error {
	if err := o.ledger.CloseIntent(ctx, op.ID); err != nil {
		return o.park(op, fmt.Errorf("close intent: %w", err))
	}
	return o.advance(op, PhaseClosed)
}

func (o *Orchestrator) advance(op *Operation, next Phase) error {
	op.Phase = next
	if err := o.persist(op); err != nil {
		return err
	}
	log.Debugw("operation advanced", "id", op.ID.String(), "phase", next.String())
	return nil
}

// abort marks the operation terminally failed before any ledger state
// was consumed.
func (o *Orchestrator) abort(op *Operation, cause error) error {
	op.Phase = PhaseAborted
	if err := o.persist(op); err != nil {
		return errors.Join(cause, err)
	}
	log.Warnw("operation aborted", "id", op.ID.String(), "cause", cause.Error())
	return cause
}

// park marks the operation as needing reconciliation: ledger state may
// have been mutated and the local view can no longer be trusted.
func (o *Orchestrator) park(op *Operation, cause error) error {
	op.Phase = PhaseNeedsResync
	if err := o.persist(op); err != nil {
		return errors.Join(cause, err)
	}
	log.Errorw("operation parked for resync", "id", op.ID.String(), "cause", cause.Error())
	return fmt.Errorf("%w: %w", ErrNeedsResync, cause)
}

func (o *Orchestrator) persist(op *Operation) error {
	rec := &storage.OperationRecord{
		ID:          op.ID,
		Kind:        uint8(op.Kind),
		Phase:       uint8(op.Phase),
		Root:        bigToBytes(op.Root),
		Nullifiers:  bigsToBytes(op.Nullifiers),
		Commitments: bigsToBytes(op.Commitments),
		Payloads:    op.Payloads,
		Proof:       op.Proof,
		PubSignals:  op.PubSignals,
		UpdatedAt:   time.Now().Unix(),
	}
	if err := o.st.SetOperation(rec); err != nil {
		return fmt.Errorf("persist operation: %w", err)
	}
	return nil
}

// Load rebuilds an operation from its persisted record.
func (o *Orchestrator) Load(id []byte) (*Operation, error) {
	rec, err := o.st.Operation(id)
	if err != nil {
		return nil, err
	}
	return &Operation{
		ID:          rec.ID,
		Kind:        Kind(rec.Kind),
		Phase:       Phase(rec.Phase),
		Root:        new(big.Int).SetBytes(rec.Root),
		Nullifiers:  bytesToBigs(rec.Nullifiers),
		Commitments: bytesToBigs(rec.Commitments),
		Payloads:    rec.Payloads,
		Proof:       rec.Proof,
		PubSignals:  rec.PubSignals,
	}, nil
}
