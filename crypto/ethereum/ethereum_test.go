package ethereum

import (
	"testing"

	qt "github.com/frankban/quicktest"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/zkshield/shieldpool/crypto/ecc/curves"
)

func TestSpendingKeyDerivation(t *testing.T) {
	c := qt.New(t)
	privKey, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)

	sig, err := SignKeySeed(privKey)
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyKeySeed(&privKey.PublicKey, sig), qt.IsTrue)

	sk1, err := SpendingKeyFromSignature(sig)
	c.Assert(err, qt.IsNil)
	sk2, err := SpendingKeyFromSignature(sig)
	c.Assert(err, qt.IsNil)
	c.Assert(sk1.String(), qt.Equals, sk2.String())

	// a different wallet derives a different key
	otherKey, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)
	otherSig, err := SignKeySeed(otherKey)
	c.Assert(err, qt.IsNil)
	otherSK, err := SpendingKeyFromSignature(otherSig)
	c.Assert(err, qt.IsNil)
	c.Assert(sk1.String(), qt.Not(qt.Equals), otherSK.String())
}

func TestSpendingKeyBadSignature(t *testing.T) {
	c := qt.New(t)
	_, err := SpendingKeyFromSignature([]byte("short"))
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestDeriveKeypair(t *testing.T) {
	c := qt.New(t)
	curve, err := curves.New(curves.CurveTypeBabyJubJub)
	c.Assert(err, qt.IsNil)
	privKey, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)

	kp1, err := DeriveKeypair(curve, privKey)
	c.Assert(err, qt.IsNil)
	kp2, err := DeriveKeypair(curve, privKey)
	c.Assert(err, qt.IsNil)

	// recovery from the wallet alone is deterministic
	c.Assert(kp1.SpendingKey.String(), qt.Equals, kp2.SpendingKey.String())
	c.Assert(kp1.PublicKey.Equal(kp2.PublicKey), qt.IsTrue)

	// the keypair is consistent: pub = sk * G
	pub := curve.New()
	pub.ScalarBaseMult(kp1.SpendingKey)
	c.Assert(pub.Equal(kp1.PublicKey), qt.IsTrue)

	otherKey, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)
	other, err := DeriveKeypair(curve, otherKey)
	c.Assert(err, qt.IsNil)
	c.Assert(other.PublicKey.Equal(kp1.PublicKey), qt.IsFalse)
}
