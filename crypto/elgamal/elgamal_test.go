package elgamal

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/zkshield/shieldpool/crypto/ecc/curves"
)

func TestGenerateKey(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)

	publicKey, privateKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)
	c.Assert(publicKey, qt.Not(qt.IsNil))
	c.Assert(privateKey, qt.Not(qt.IsNil))

	// publicKey must equal privateKey * G
	testPoint := curve.New()
	testPoint.SetGenerator()
	testPoint.ScalarMult(testPoint, privateKey)
	c.Assert(testPoint.Equal(publicKey), qt.IsTrue)
}

func TestEncryptDecrypt(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)

	publicKey, privateKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	maxMessage := uint64(1000)
	for _, m := range []uint64{0, 1, 42, 999} {
		msg := new(big.Int).SetUint64(m)
		c1, c2, k, err := Encrypt(publicKey, msg)
		c.Assert(err, qt.IsNil)
		c.Assert(CheckK(c1, k), qt.IsTrue)

		M, recovered, err := Decrypt(publicKey, privateKey, c1, c2, maxMessage)
		c.Assert(err, qt.IsNil)
		c.Assert(recovered.String(), qt.Equals, msg.String())

		// M must equal m * G
		testPoint := curve.New()
		testPoint.SetGenerator()
		testPoint.ScalarMult(testPoint, msg)
		c.Assert(testPoint.Equal(M), qt.IsTrue)
	}
}

func TestHomomorphicAdd(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)

	publicKey, privateKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	a, b := big.NewInt(123), big.NewInt(456)
	ca := NewCiphertext(curve)
	_, err = ca.Encrypt(a, publicKey, nil)
	c.Assert(err, qt.IsNil)
	cb := NewCiphertext(curve)
	_, err = cb.Encrypt(b, publicKey, nil)
	c.Assert(err, qt.IsNil)

	sum := NewCiphertext(curve).Add(ca, cb)
	_, recovered, err := Decrypt(publicKey, privateKey, sum.C1, sum.C2, 1000)
	c.Assert(err, qt.IsNil)
	c.Assert(recovered.Int64(), qt.Equals, int64(579))
}

func TestCiphertextSerialization(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)

	publicKey, _, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	ct := NewCiphertext(curve)
	_, err = ct.Encrypt(big.NewInt(777), publicKey, nil)
	c.Assert(err, qt.IsNil)

	data := ct.Serialize()
	c.Assert(len(data), qt.Equals, SizeCiphertext)

	restored := NewCiphertext(curve)
	c.Assert(restored.Deserialize(data), qt.IsNil)
	c.Assert(restored.C1.Equal(ct.C1), qt.IsTrue)
	c.Assert(restored.C2.Equal(ct.C2), qt.IsTrue)

	// truncated input fails fast
	c.Assert(restored.Deserialize(data[:SizeCiphertext-1]), qt.Not(qt.IsNil))
}

func TestEncryptVote(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)

	publicKey, privateKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	// weight 1000 for option "Yes" (index 0) among 3 options
	vote, err := EncryptVote(big.NewInt(1000), 0, 3, publicKey)
	c.Assert(err, qt.IsNil)
	c.Assert(len(vote.Options), qt.Equals, 3)

	tally, err := vote.DecryptTally(publicKey, privateKey, 2000)
	c.Assert(err, qt.IsNil)
	c.Assert(tally[0].Int64(), qt.Equals, int64(1000))
	c.Assert(tally[1].Int64(), qt.Equals, int64(0))
	c.Assert(tally[2].Int64(), qt.Equals, int64(0))
}

func TestVoteAggregation(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)

	publicKey, privateKey, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	v1, err := EncryptVote(big.NewInt(10), 0, 2, publicKey)
	c.Assert(err, qt.IsNil)
	v2, err := EncryptVote(big.NewInt(25), 1, 2, publicKey)
	c.Assert(err, qt.IsNil)
	v3, err := EncryptVote(big.NewInt(5), 1, 2, publicKey)
	c.Assert(err, qt.IsNil)

	agg, err := NewEncryptedVote(curve, 2)
	c.Assert(err, qt.IsNil)
	_, err = agg.Add(v1, v2)
	c.Assert(err, qt.IsNil)
	_, err = agg.Add(agg, v3)
	c.Assert(err, qt.IsNil)

	tally, err := agg.DecryptTally(publicKey, privateKey, 100)
	c.Assert(err, qt.IsNil)
	c.Assert(tally[0].Int64(), qt.Equals, int64(10))
	c.Assert(tally[1].Int64(), qt.Equals, int64(30))
}

func TestVoteSerializationRoundTrip(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)

	publicKey, _, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	vote, err := EncryptVote(big.NewInt(7), 2, 4, publicKey)
	c.Assert(err, qt.IsNil)

	data := vote.Serialize()
	c.Assert(len(data), qt.Equals, 4*SizeCiphertext)

	restored, err := NewEncryptedVote(curve, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(restored.Deserialize(data), qt.IsNil)
	for i := range vote.Options {
		c.Assert(restored.Options[i].C1.Equal(vote.Options[i].C1), qt.IsTrue)
		c.Assert(restored.Options[i].C2.Equal(vote.Options[i].C2), qt.IsTrue)
	}
}

func TestEncryptVoteBadOption(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)
	publicKey, _, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	_, err = EncryptVote(big.NewInt(1), 3, 3, publicKey)
	c.Assert(err, qt.Not(qt.IsNil))
	_, err = EncryptVote(big.NewInt(1), -1, 3, publicKey)
	c.Assert(err, qt.Not(qt.IsNil))
}
