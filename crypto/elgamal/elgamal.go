// Package elgamal implements additively homomorphic ElGamal encryption
// over the protocol curve, used for private vote tallying. Plaintexts
// are encoded as scalar multiples of the generator, so ciphertext
// addition decrypts to plaintext addition; recovering an aggregate
// tally is a bounded discrete-log search done by the election
// authority.
package elgamal

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/vocdoni/arbo"

	"github.com/zkshield/shieldpool/crypto/ecc"
)

// RandK generates a random encryption nonce, reduced into the field.
func RandK() (*big.Int, error) {
	kBytes := make([]byte, 20)
	if _, err := rand.Read(kBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random k: %w", err)
	}
	k := new(big.Int).SetBytes(kBytes)
	return arbo.BigToFF(arbo.BN254BaseField, k), nil
}

// GenerateKey generates a new public/private ElGamal key pair on the
// given curve.
func GenerateKey(curve ecc.Point) (publicKey ecc.Point, privateKey *big.Int, err error) {
	order := curve.Order()
	d, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key scalar: %w", err)
	}
	if d.Sign() == 0 {
		d = big.NewInt(1) // avoid zero private keys
	}
	publicKey = curve.New()
	publicKey.SetGenerator()
	publicKey.ScalarMult(publicKey, d)
	return publicKey, d, nil
}

// EncryptWithK encrypts msg under pubKey with the provided nonce.
// It returns C1 = k*G and C2 = msg*G + k*pubKey.
func EncryptWithK(pubKey ecc.Point, msg, k *big.Int) (ecc.Point, ecc.Point, error) {
	order := pubKey.Order()
	msg = new(big.Int).Mod(msg, order)

	c1 := pubKey.New()
	c1.ScalarBaseMult(k)

	s := pubKey.New()
	s.ScalarMult(pubKey, k)

	m := pubKey.New()
	m.ScalarBaseMult(msg)

	c2 := pubKey.New()
	c2.Add(m, s)
	return c1, c2, nil
}

// Encrypt encrypts msg under pubKey with a fresh random nonce, which is
// also returned.
func Encrypt(pubKey ecc.Point, msg *big.Int) (ecc.Point, ecc.Point, *big.Int, error) {
	k, err := RandK()
	if err != nil {
		return nil, nil, nil, err
	}
	c1, c2, err := EncryptWithK(pubKey, msg, k)
	if err != nil {
		return nil, nil, nil, err
	}
	return c1, c2, k, nil
}

// Decrypt recovers the plaintext of (c1, c2) with the private key. It
// returns the message point M = c2 - d*c1 and the message scalar found
// by bounded discrete-log search up to maxMessage.
func Decrypt(publicKey ecc.Point, privateKey *big.Int, c1, c2 ecc.Point, maxMessage uint64) (M ecc.Point, message *big.Int, err error) {
	dC1 := c2.New()
	dC1.ScalarMult(c1, privateKey)
	dC1.Neg(dC1)

	M = c2.New()
	M.Set(c2)
	M.Add(M, dC1) // M = c2 - d*c1

	G := publicKey.New()
	G.SetGenerator()

	message, err = BabyStepGiantStep(M, G, maxMessage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find discrete log: %w", err)
	}
	return M, message, nil
}

// BabyStepGiantStep solves M = x*G for x in [0, maxMessage] with the
// baby-step giant-step algorithm. It is a tally-time operation; vote
// weights are assumed small relative to the field size.
func BabyStepGiantStep(M, G ecc.Point, maxMessage uint64) (*big.Int, error) {
	mSqrt := uint64(math.Sqrt(float64(maxMessage))) + 1

	babySteps := make(map[string]uint64, mSqrt)
	babyStep := M.New()
	babyStep.SetZero()
	for j := uint64(0); j < mSqrt; j++ {
		babySteps[babyStep.String()] = j
		babyStep.Add(babyStep, G)
	}

	// c = -mSqrt * G
	c := M.New()
	c.ScalarBaseMult(new(big.Int).SetUint64(mSqrt))
	c.Neg(c)

	giantStep := M.New()
	giantStep.Set(M)
	for i := uint64(0); i <= mSqrt; i++ {
		if j, found := babySteps[giantStep.String()]; found {
			return new(big.Int).SetUint64(i*mSqrt + j), nil
		}
		giantStep.Add(giantStep, c)
	}
	return nil, fmt.Errorf("no discrete logarithm found within bound %d", maxMessage)
}

// CheckK reports whether nonce k produced ciphertext component c1,
// without decrypting anything.
func CheckK(c1 ecc.Point, k *big.Int) bool {
	kG := c1.New()
	kG.ScalarBaseMult(k)
	return kG.Equal(c1)
}
