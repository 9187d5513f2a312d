package circuits

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"

	"github.com/zkshield/shieldpool/types"
)

// Proof byte layout: A (2 coordinates), B (4 coordinates), C (2
// coordinates), each coordinate 32 bytes big-endian.
const (
	proofAYOffset = 32
	proofAYEnd    = 64
)

// FormatProofForVerifier converts a prover proof into the layout the
// on-ledger verifier consumes. The pairing equation checked on ledger
// needs -A instead of A, so the A point's y coordinate is negated in
// the base field; every other byte passes through untouched. All
// coordinates must be canonical (below the base field modulus) and A
// must be a valid curve point.
func FormatProofForVerifier(proof []byte) ([]byte, error) {
	if len(proof) != types.ProofSize {
		return nil, fmt.Errorf("invalid proof length: got %d bytes, expected %d bytes",
			len(proof), types.ProofSize)
	}
	modulus := fp.Modulus()
	for i := 0; i < types.ProofSize; i += 32 {
		coord := new(big.Int).SetBytes(proof[i : i+32])
		if coord.Cmp(modulus) >= 0 {
			return nil, fmt.Errorf("non-canonical proof coordinate at offset %d", i)
		}
	}

	ax := new(big.Int).SetBytes(proof[:proofAYOffset])
	ay := new(big.Int).SetBytes(proof[proofAYOffset:proofAYEnd])
	var a bn254.G1Affine
	a.X.SetBigInt(ax)
	a.Y.SetBigInt(ay)
	if !a.IsOnCurve() {
		return nil, fmt.Errorf("proof point A is not on the curve")
	}

	out := make([]byte, types.ProofSize)
	copy(out, proof)
	// y = 0 is its own negation and must stay 0
	if ay.Sign() != 0 {
		negY := new(big.Int).Sub(modulus, ay)
		negY.FillBytes(out[proofAYOffset:proofAYEnd])
	}
	return out, nil
}
