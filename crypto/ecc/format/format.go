// Package format converts BabyJubJub affine coordinates between the
// standard twisted Edwards form (TE, a = 168700) used by iden3 and the
// reduced form (RTE, a = -1) used by gnark-crypto. The two are related
// by x' = f * x with f = sqrt(-168700) mod p; the Y coordinate is the
// same in both forms.
package format

import (
	"math/big"

	"github.com/iden3/go-iden3-crypto/constants"
)

// scalingFactor is sqrt(-168700) modulo the BabyJubJub base field.
var scalingFactor, _ = new(big.Int).SetString(
	"6360561867910373094066688120553762416144456282423235903351243436111059670888", 10)

var scalingFactorInv = new(big.Int).ModInverse(scalingFactor, constants.Q)

// FromTEtoRTE converts standard twisted Edwards coordinates to the
// reduced form.
func FromTEtoRTE(x, y *big.Int) (*big.Int, *big.Int) {
	xRTE := new(big.Int).Mul(x, scalingFactor)
	return xRTE.Mod(xRTE, constants.Q), new(big.Int).Set(y)
}

// FromRTEtoTE converts reduced twisted Edwards coordinates to the
// standard form.
func FromRTEtoTE(x, y *big.Int) (*big.Int, *big.Int) {
	xTE := new(big.Int).Mul(x, scalingFactorInv)
	return xTE.Mod(xTE, constants.Q), new(big.Int).Set(y)
}
