package circuits

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/iden3/go-rapidsnark/prover"
	"github.com/iden3/go-rapidsnark/witness"

	"github.com/zkshield/shieldpool/log"
)

// Prover produces groth16 proofs for a fixed circuit. Implementations
// return the proof and public signals as the JSON strings emitted by
// the underlying proving system.
type Prover interface {
	Prove(ctx context.Context, inputs map[string]any) (proof string, pubSignals string, err error)
}

// RapidsnarkProver proves with a circom wasm witness calculator and a
// rapidsnark groth16 proving key. The witness calculator is built once
// on first use and reused across proofs.
type RapidsnarkProver struct {
	wasm []byte
	zkey []byte

	once    sync.Once
	calc    *witness.Circom2WitnessCalculator
	initErr error
}

// NewRapidsnarkProver wraps a compiled circuit wasm and its proving
// key. The artifacts are only parsed on the first Prove call.
func NewRapidsnarkProver(wasm, zkey []byte) *RapidsnarkProver {
	return &RapidsnarkProver{wasm: wasm, zkey: zkey}
}

func (p *RapidsnarkProver) init() error {
	p.once.Do(func() {
		p.calc, p.initErr = witness.NewCircom2WitnessCalculator(p.wasm, true)
	})
	return p.initErr
}

// Prove calculates the witness for the given circuit inputs and runs
// the groth16 prover over it. The context is checked before each of
// the two expensive phases; the phases themselves are not
// interruptible.
func (p *RapidsnarkProver) Prove(ctx context.Context, inputs map[string]any) (string, string, error) {
	if err := p.init(); err != nil {
		return "", "", fmt.Errorf("instance witness calculator: %w", err)
	}
	rawInputs, err := json.Marshal(inputs)
	if err != nil {
		return "", "", fmt.Errorf("encode circuit inputs: %w", err)
	}
	parsedInputs, err := witness.ParseInputs(rawInputs)
	if err != nil {
		return "", "", fmt.Errorf("parse circuit inputs: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	wtns, err := p.calc.CalculateWTNSBin(parsedInputs, true)
	if err != nil {
		return "", "", fmt.Errorf("calculate witness: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	log.Debugw("witness calculated, proving", "witnessBytes", len(wtns))
	proof, pubSignals, err := prover.Groth16ProverRaw(p.zkey, wtns)
	if err != nil {
		return "", "", fmt.Errorf("groth16 prover: %w", err)
	}
	return proof, pubSignals, nil
}
