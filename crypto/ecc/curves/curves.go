// Package curves instantiates curve backends by type identifier.
package curves

import (
	"fmt"

	"github.com/zkshield/shieldpool/crypto/ecc"
	bjjGnark "github.com/zkshield/shieldpool/crypto/ecc/bjj_gnark"
	bjjIden3 "github.com/zkshield/shieldpool/crypto/ecc/bjj_iden3"
)

const (
	// CurveTypeBabyJubJub is the default BabyJubJub backend.
	CurveTypeBabyJubJub = bjjIden3.CurveType
	// CurveTypeBabyJubJubGnark is the gnark-crypto BabyJubJub backend.
	CurveTypeBabyJubJubGnark = bjjGnark.CurveType
)

// New returns a new point of the given curve type, set to the identity
// element.
func New(curveType string) (ecc.Point, error) {
	switch curveType {
	case CurveTypeBabyJubJub:
		return bjjIden3.New(), nil
	case CurveTypeBabyJubJubGnark:
		return bjjGnark.New(), nil
	default:
		return nil, fmt.Errorf("unsupported curve type %q", curveType)
	}
}

// Curves returns the list of supported curve type identifiers.
func Curves() []string {
	return []string{CurveTypeBabyJubJub, CurveTypeBabyJubJubGnark}
}
