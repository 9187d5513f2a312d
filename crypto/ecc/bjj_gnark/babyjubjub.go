// Package bjj provides the BabyJubJub group backed by gnark-crypto,
// which works in reduced twisted Edwards coordinates internally.
// Point() and SetPoint() convert to and from the standard form so both
// curve backends expose identical coordinates.
package bjj

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	babyjubjub "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"

	curve "github.com/zkshield/shieldpool/crypto/ecc"
	"github.com/zkshield/shieldpool/crypto/ecc/format"
	"github.com/zkshield/shieldpool/types"
)

const CurveType = "bjj_gnark"

// Params holds the BabyJubJub curve parameters in reduced form.
var Params babyjubjub.CurveParams

func init() {
	Params = babyjubjub.GetEdwardsCurve()
}

// BJJ is the affine representation of a BabyJubJub group element.
type BJJ struct {
	inner *babyjubjub.PointAffine
	lock  sync.Mutex
}

// New creates a new BJJ point set to the identity element.
func New() curve.Point {
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.SetZero()
	return p
}

func (g *BJJ) New() curve.Point {
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.SetZero()
	return p
}

// Order returns the order of the BabyJubJub prime subgroup.
func (g *BJJ) Order() *big.Int {
	return new(big.Int).Set(&Params.Order)
}

func (g *BJJ) Add(a, b curve.Point) {
	g.inner.Add(a.(*BJJ).inner, b.(*BJJ).inner)
}

func (g *BJJ) SafeAdd(a, b curve.Point) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Add(a, b)
}

func (g *BJJ) ScalarMult(a curve.Point, scalar *big.Int) {
	g.inner.ScalarMultiplication(a.(*BJJ).inner, scalar)
}

func (g *BJJ) ScalarBaseMult(scalar *big.Int) {
	g.SetGenerator()
	g.ScalarMult(g, scalar)
}

func (g *BJJ) Equal(a curve.Point) bool {
	return g.inner.Equal(a.(*BJJ).inner)
}

func (g *BJJ) Neg(a curve.Point) {
	g.inner.Neg(a.(*BJJ).inner)
}

// SetZero sets g to the identity element (0, 1).
func (g *BJJ) SetZero() {
	g.inner.X.SetZero()
	g.inner.Y.SetOne()
}

func (g *BJJ) Set(a curve.Point) {
	g.inner.Set(a.(*BJJ).inner)
}

// SetGenerator sets g to the subgroup generator.
func (g *BJJ) SetGenerator() {
	g.inner.Set(&Params.Base)
}

func (g *BJJ) String() string {
	x, y := g.Point()
	return fmt.Sprintf("%s,%s", x.String(), y.String())
}

// Marshal serializes the point into its 32-byte compressed form.
func (g *BJJ) Marshal() []byte {
	return g.inner.Marshal()
}

// Unmarshal deserializes a compressed point.
func (g *BJJ) Unmarshal(buf []byte) error {
	return g.inner.Unmarshal(buf)
}

func (g *BJJ) MarshalJSON() ([]byte, error) {
	x, y := g.Point()
	points := &curve.PointEC{}
	points.X = types.BigInt(*x)
	points.Y = types.BigInt(*y)
	return json.Marshal(points)
}

func (g *BJJ) UnmarshalJSON(buf []byte) error {
	points := &curve.PointEC{}
	if err := json.Unmarshal(buf, points); err != nil {
		return err
	}
	if g.inner == nil {
		g.inner = new(babyjubjub.PointAffine)
	}
	p := g.SetPoint(points.X.MathBigInt(), points.Y.MathBigInt())
	g.inner = p.(*BJJ).inner
	return nil
}

// Point returns the X and Y coordinates converted to standard twisted
// Edwards form.
func (g *BJJ) Point() (*big.Int, *big.Int) {
	x, y := new(big.Int), new(big.Int)
	g.inner.X.BigInt(x)
	g.inner.Y.BigInt(y)
	return format.FromRTEtoTE(x, y)
}

// SetPoint sets the point from standard twisted Edwards coordinates.
func (g *BJJ) SetPoint(x, y *big.Int) curve.Point {
	xRTE, yRTE := format.FromTEtoRTE(x, y)
	p := &BJJ{inner: new(babyjubjub.PointAffine)}
	p.inner.X.SetBigInt(xRTE)
	p.inner.Y.SetBigInt(yRTE)
	return p
}

func (g *BJJ) Type() string {
	return CurveType
}
