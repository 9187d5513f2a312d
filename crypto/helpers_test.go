package crypto

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/iden3/go-iden3-crypto/constants"
)

func TestBigToFF(t *testing.T) {
	c := qt.New(t)
	q := constants.Q

	// in-range values pass through
	c.Assert(BigToFF(q, big.NewInt(42)).String(), qt.Equals, "42")
	// the modulus itself maps to zero
	c.Assert(BigToFF(q, new(big.Int).Set(q)).Sign(), qt.Equals, 0)
	// values above the modulus reduce
	over := new(big.Int).Add(q, big.NewInt(5))
	c.Assert(BigToFF(q, over).String(), qt.Equals, "5")
	// negative values reduce into the field
	c.Assert(BigToFF(q, big.NewInt(-1)).String(), qt.Equals,
		new(big.Int).Sub(q, big.NewInt(1)).String())
}

func TestFieldBytesRoundTrip(t *testing.T) {
	c := qt.New(t)
	q := constants.Q

	for _, v := range []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(1234567890),
		new(big.Int).Sub(q, big.NewInt(1)),
	} {
		buf := FieldToBytes(q, v)
		c.Assert(len(buf), qt.Equals, SerializedFieldSize)
		back, err := BytesToField(q, buf)
		c.Assert(err, qt.IsNil)
		c.Assert(back.String(), qt.Equals, v.String())
	}

	_, err := BytesToField(q, make([]byte, 31))
	c.Assert(err, qt.Not(qt.IsNil))
	_, err = BytesToField(q, make([]byte, 33))
	c.Assert(err, qt.Not(qt.IsNil))
}
