// Package stealth derives one-time receiving addresses. A sender
// combines a fresh ephemeral key with the recipient's long-term public
// key through ECDH, so the derived address cannot be linked to the
// recipient by an on-ledger observer, while the recipient can always
// recover the matching private scalar from the ephemeral public key.
package stealth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/zkshield/shieldpool/crypto/ecc"
	"github.com/zkshield/shieldpool/crypto/hash/poseidon"
)

// Address is a per-transfer stealth address. The ephemeral public key
// must travel with the note so the recipient can derive the spending
// scalar for StealthPubKey.
type Address struct {
	StealthPubKey   ecc.Point
	EphemeralPubKey ecc.Point
}

// RandScalar samples a uniform nonzero scalar below the subgroup order
// of the given curve.
func RandScalar(curve ecc.Point) (*big.Int, error) {
	s, err := rand.Int(rand.Reader, curve.Order())
	if err != nil {
		return nil, fmt.Errorf("failed to sample scalar: %w", err)
	}
	if s.Sign() == 0 {
		s = big.NewInt(1) // avoid zero scalars
	}
	return s, nil
}

// factor computes the stealth tweak f = H(stealth-domain, S.x) reduced
// modulo the subgroup order, where S is the ECDH shared point. Both
// sides of the exchange derive the identical factor.
func factor(eng *poseidon.Engine, shared ecc.Point) (*big.Int, error) {
	sx, _ := shared.Point()
	f, err := eng.Hash(poseidon.DomainStealthFactor, sx)
	if err != nil {
		return nil, fmt.Errorf("stealth factor: %w", err)
	}
	return f.Mod(f, shared.Order()), nil
}

// GenerateAddress creates a stealth address for the recipient's
// long-term public key. It returns the address and the ephemeral
// private scalar, which the sender also needs to encrypt the note
// payload to the recipient.
func GenerateAddress(eng *poseidon.Engine, recipientPubKey ecc.Point) (*Address, *big.Int, error) {
	e, err := RandScalar(recipientPubKey)
	if err != nil {
		return nil, nil, err
	}
	ephemeralPub := recipientPubKey.New()
	ephemeralPub.ScalarBaseMult(e)

	shared := recipientPubKey.New()
	shared.ScalarMult(recipientPubKey, e)

	f, err := factor(eng, shared)
	if err != nil {
		return nil, nil, err
	}

	fG := recipientPubKey.New()
	fG.ScalarBaseMult(f)
	stealthPub := recipientPubKey.New()
	stealthPub.Add(recipientPubKey, fG)

	return &Address{
		StealthPubKey:   stealthPub,
		EphemeralPubKey: ephemeralPub,
	}, e, nil
}

// DerivePrivateKey recovers the stealth spending scalar for an address
// generated against the holder of spendingKey. By ECDH symmetry,
// spendingKey * E equals the sender's shared point, so both sides
// derive the same tweak.
func DerivePrivateKey(eng *poseidon.Engine, spendingKey *big.Int, ephemeralPubKey ecc.Point) (*big.Int, error) {
	shared := ephemeralPubKey.New()
	shared.ScalarMult(ephemeralPubKey, spendingKey)

	f, err := factor(eng, shared)
	if err != nil {
		return nil, err
	}
	sk := new(big.Int).Add(spendingKey, f)
	return sk.Mod(sk, ephemeralPubKey.Order()), nil
}

// CheckOwnership reports whether the candidate spending key owns the
// given stealth address. It recomputes the stealth key and compares
// derived public coordinates, so scanning needs no extra tag.
func CheckOwnership(eng *poseidon.Engine, stealthPubKey, ephemeralPubKey ecc.Point, spendingKey *big.Int) (bool, error) {
	sk, err := DerivePrivateKey(eng, spendingKey, ephemeralPubKey)
	if err != nil {
		return false, err
	}
	derived := stealthPubKey.New()
	derived.ScalarBaseMult(sk)
	return derived.Equal(stealthPubKey), nil
}
