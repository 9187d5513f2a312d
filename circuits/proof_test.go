package circuits

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	qt "github.com/frankban/quicktest"

	"github.com/zkshield/shieldpool/types"
)

// proofWithGeneratorA builds a well-formed proof whose A point is the
// bn254 generator and whose remaining coordinates are small canonical
// values.
func proofWithGeneratorA() []byte {
	_, _, g1, _ := bn254.Generators()
	proof := make([]byte, types.ProofSize)
	g1.X.BigInt(new(big.Int)).FillBytes(proof[:32])
	g1.Y.BigInt(new(big.Int)).FillBytes(proof[32:64])
	for i := 64; i < types.ProofSize; i += 32 {
		big.NewInt(int64(i)).FillBytes(proof[i : i+32])
	}
	return proof
}

func TestFormatProofNegatesOnlyAY(t *testing.T) {
	c := qt.New(t)
	proof := proofWithGeneratorA()

	formatted, err := FormatProofForVerifier(proof)
	c.Assert(err, qt.IsNil)
	c.Assert(len(formatted), qt.Equals, types.ProofSize)

	// everything outside the A.y window is untouched
	c.Assert(bytes.Equal(formatted[:32], proof[:32]), qt.IsTrue)
	c.Assert(bytes.Equal(formatted[64:], proof[64:]), qt.IsTrue)

	// the A.y window holds p - y
	ay := new(big.Int).SetBytes(proof[32:64])
	want := new(big.Int).Sub(fp.Modulus(), ay)
	got := new(big.Int).SetBytes(formatted[32:64])
	c.Assert(got.String(), qt.Equals, want.String())
}

func TestFormatProofInvolution(t *testing.T) {
	c := qt.New(t)
	proof := proofWithGeneratorA()

	once, err := FormatProofForVerifier(proof)
	c.Assert(err, qt.IsNil)
	twice, err := FormatProofForVerifier(once)
	c.Assert(err, qt.IsNil)
	c.Assert(bytes.Equal(twice, proof), qt.IsTrue)
}

func TestFormatProofRejections(t *testing.T) {
	c := qt.New(t)

	_, err := FormatProofForVerifier(make([]byte, types.ProofSize-1))
	c.Assert(err, qt.Not(qt.IsNil))

	// a non-canonical coordinate anywhere fails
	proof := proofWithGeneratorA()
	fp.Modulus().FillBytes(proof[128:160])
	_, err = FormatProofForVerifier(proof)
	c.Assert(err, qt.Not(qt.IsNil))

	// A must be a curve point
	proof = proofWithGeneratorA()
	big.NewInt(12345).FillBytes(proof[:32])
	_, err = FormatProofForVerifier(proof)
	c.Assert(err, qt.Not(qt.IsNil))
}
