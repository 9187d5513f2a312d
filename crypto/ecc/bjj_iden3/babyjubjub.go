// Package bjj provides the BabyJubJub group backed by the iden3
// implementation, which works natively in standard twisted Edwards
// coordinates. This is the default curve backend of the protocol.
package bjj

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	babyjubjub "github.com/iden3/go-iden3-crypto/babyjub"
	"github.com/iden3/go-iden3-crypto/constants"

	curve "github.com/zkshield/shieldpool/crypto/ecc"
	"github.com/zkshield/shieldpool/types"
)

const CurveType = "bjj_iden3"

// BJJ is the affine representation of a BabyJubJub group element.
type BJJ struct {
	inner *babyjubjub.Point
	lock  sync.Mutex
}

// New creates a new BJJ point set to the identity element.
func New() curve.Point {
	return &BJJ{inner: babyjubjub.NewPoint()}
}

func (g *BJJ) New() curve.Point {
	return &BJJ{inner: babyjubjub.NewPoint()}
}

// Order returns the order of the BabyJubJub prime subgroup.
func (g *BJJ) Order() *big.Int {
	return new(big.Int).Set(babyjubjub.SubOrder)
}

func (g *BJJ) Add(a, b curve.Point) {
	g.inner = g.inner.Projective().Add(
		a.(*BJJ).inner.Projective(),
		b.(*BJJ).inner.Projective(),
	).Affine()
}

func (g *BJJ) SafeAdd(a, b curve.Point) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.Add(a, b)
}

func (g *BJJ) ScalarMult(a curve.Point, scalar *big.Int) {
	g.inner = g.inner.Mul(scalar, a.(*BJJ).inner)
}

func (g *BJJ) ScalarBaseMult(scalar *big.Int) {
	g.inner = g.inner.Mul(scalar, babyjubjub.B8)
}

func (g *BJJ) Equal(a curve.Point) bool {
	x, y := a.(*BJJ).inner.X, a.(*BJJ).inner.Y
	return g.inner.X.Cmp(x) == 0 && g.inner.Y.Cmp(y) == 0
}

// Neg sets g to -a. In twisted Edwards form the negation of (x, y) is
// (-x, y).
func (g *BJJ) Neg(a curve.Point) {
	x := new(big.Int).Sub(constants.Q, a.(*BJJ).inner.X)
	x.Mod(x, constants.Q)
	g.inner = &babyjubjub.Point{X: x, Y: new(big.Int).Set(a.(*BJJ).inner.Y)}
}

// SetZero sets g to the identity element (0, 1).
func (g *BJJ) SetZero() {
	g.inner = babyjubjub.NewPoint()
}

func (g *BJJ) Set(a curve.Point) {
	g.inner = &babyjubjub.Point{
		X: new(big.Int).Set(a.(*BJJ).inner.X),
		Y: new(big.Int).Set(a.(*BJJ).inner.Y),
	}
}

// SetGenerator sets g to the subgroup generator (the point iden3 calls
// B8).
func (g *BJJ) SetGenerator() {
	g.inner = &babyjubjub.Point{
		X: new(big.Int).Set(babyjubjub.B8.X),
		Y: new(big.Int).Set(babyjubjub.B8.Y),
	}
}

func (g *BJJ) String() string {
	x, y := g.Point()
	return fmt.Sprintf("%s,%s", x.String(), y.String())
}

// Marshal serializes the point into its 32-byte compressed form.
func (g *BJJ) Marshal() []byte {
	b := g.inner.Compress()
	return b[:]
}

// Unmarshal deserializes a compressed point.
func (g *BJJ) Unmarshal(buf []byte) error {
	if len(buf) != 32 {
		return fmt.Errorf("invalid compressed point length: got %d bytes, expected 32 bytes", len(buf))
	}
	var leBuf [32]byte
	copy(leBuf[:], buf)
	p, err := babyjubjub.NewPoint().Decompress(leBuf)
	if err != nil {
		return err
	}
	g.inner = p
	return nil
}

func (g *BJJ) MarshalJSON() ([]byte, error) {
	points := &curve.PointEC{}
	points.X = types.BigInt(*g.inner.X)
	points.Y = types.BigInt(*g.inner.Y)
	return json.Marshal(points)
}

func (g *BJJ) UnmarshalJSON(buf []byte) error {
	points := &curve.PointEC{}
	if err := json.Unmarshal(buf, points); err != nil {
		return err
	}
	g.inner = &babyjubjub.Point{
		X: new(big.Int).Set(points.X.MathBigInt()),
		Y: new(big.Int).Set(points.Y.MathBigInt()),
	}
	return nil
}

// Point returns the X and Y coordinates in twisted Edwards form, which
// is the native form of this backend.
func (g *BJJ) Point() (*big.Int, *big.Int) {
	return new(big.Int).Set(g.inner.X), new(big.Int).Set(g.inner.Y)
}

// SetPoint sets the point from twisted Edwards coordinates.
func (g *BJJ) SetPoint(x, y *big.Int) curve.Point {
	return &BJJ{inner: &babyjubjub.Point{
		X: new(big.Int).Set(x),
		Y: new(big.Int).Set(y),
	}}
}

func (g *BJJ) Type() string {
	return CurveType
}
