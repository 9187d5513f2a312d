package ecc

import (
	"math/big"

	"github.com/zkshield/shieldpool/types"
)

// Point represents the affine coordinates of an element of the curve
// group and provides the arithmetic, serialization and comparison
// operations the protocol needs. Implementations live in the bjj_iden3
// and bjj_gnark subpackages and must agree on the twisted Edwards
// coordinates returned by Point().
type Point interface {
	// New returns a new point on the same curve.
	New() Point

	// Order returns the order of the prime subgroup used for scalars.
	// Note this is not the modulus of the coordinate field.
	Order() *big.Int

	// Add sets the receiver to a + b.
	Add(a, b Point)

	// SafeAdd is Add with exclusive access to the receiver, so
	// aggregation loops can run from multiple goroutines.
	SafeAdd(a, b Point)

	// ScalarMult sets the receiver to scalar * a. Scalars are reduced
	// modulo Order() by the caller; implementations do not reduce.
	ScalarMult(a Point, scalar *big.Int)

	// ScalarBaseMult sets the receiver to scalar * Generator.
	ScalarBaseMult(scalar *big.Int)

	// Marshal serializes the point into its 32-byte compressed form.
	Marshal() []byte

	// Unmarshal deserializes a compressed point. Returns an error if
	// buf does not represent a valid point.
	Unmarshal(buf []byte) error

	// Equal reports whether the receiver and a are the same point.
	Equal(a Point) bool

	// Neg sets the receiver to -a.
	Neg(a Point)

	// SetZero sets the receiver to the group identity.
	SetZero()

	// Set sets the receiver to the value of a.
	Set(a Point)

	// SetGenerator sets the receiver to the subgroup generator.
	SetGenerator()

	// String returns "x,y" in twisted Edwards coordinates.
	String() string

	// Point returns the X and Y coordinates in twisted Edwards form.
	Point() (*big.Int, *big.Int)

	// SetPoint sets the point from twisted Edwards coordinates.
	SetPoint(x, y *big.Int) Point

	// Type returns the identifier of the curve implementation.
	Type() string
}

// PointEC is the JSON shape of an affine point.
type PointEC struct {
	X types.BigInt `json:"x"`
	Y types.BigInt `json:"y"`
}
