// Package notes implements the private UTXO model: notes, their hiding
// commitments, and the nullifiers whose publication marks a note as
// spent. All derivations are pure functions of their inputs so the same
// note always commits and nullifies identically.
package notes

import (
	"fmt"
	"math/big"

	"github.com/zkshield/shieldpool/crypto"
	"github.com/zkshield/shieldpool/crypto/ecc"
	"github.com/zkshield/shieldpool/crypto/hash/poseidon"
	"github.com/zkshield/shieldpool/crypto/stealth"
)

// Keypair is a long-term account key. The spending key never leaves the
// holder; the public key is what senders derive stealth addresses from.
type Keypair struct {
	SpendingKey *big.Int
	PublicKey   ecc.Point
}

// NewKeypair samples a fresh keypair on the given curve.
func NewKeypair(curve ecc.Point) (*Keypair, error) {
	sk, err := stealth.RandScalar(curve)
	if err != nil {
		return nil, err
	}
	return KeypairFromScalar(curve, sk), nil
}

// KeypairFromScalar builds the keypair for an existing spending key
// scalar, reducing it modulo the subgroup order.
func KeypairFromScalar(curve ecc.Point, sk *big.Int) *Keypair {
	sk = new(big.Int).Mod(sk, curve.Order())
	pub := curve.New()
	pub.ScalarBaseMult(sk)
	return &Keypair{SpendingKey: sk, PublicKey: pub}
}

// Note is a private UTXO. It is created when a value-bearing output is
// produced and destroyed when its nullifier is published.
type Note struct {
	StealthPubX *big.Int // X coordinate of the owning stealth pubkey
	TokenMint   *big.Int
	Amount      uint64
	Randomness  *big.Int
}

// Commitment binds the note's contents without revealing them. It is
// the value published on the ledger.
func (n *Note) Commitment(eng *poseidon.Engine) (*big.Int, error) {
	return eng.Hash(poseidon.DomainCommitment,
		n.StealthPubX,
		n.TokenMint,
		new(big.Int).SetUint64(n.Amount),
		n.Randomness,
	)
}

// DeriveNullifierKey derives the nullifier key for a stealth spending
// key. It is computed once per key and never published directly.
func DeriveNullifierKey(eng *poseidon.Engine, stealthSpendingKey *big.Int) (*big.Int, error) {
	return eng.Hash(poseidon.DomainNullifierKey, stealthSpendingKey, big.NewInt(0))
}

// DeriveNullifierKeyBytes is DeriveNullifierKey for a 32-byte
// big-endian key encoding. Any other length fails fast.
func DeriveNullifierKeyBytes(eng *poseidon.Engine, stealthSpendingKey []byte) (*big.Int, error) {
	sk, err := crypto.BytesToField(eng.Field(), stealthSpendingKey)
	if err != nil {
		return nil, fmt.Errorf("nullifier key: %w", err)
	}
	return DeriveNullifierKey(eng, sk)
}

// DeriveSpendingNullifier derives the value published when the note
// behind commitment, stored at leafIndex, is spent. It is deterministic
// so a second spend of the same note reproduces the same nullifier and
// is rejected by the ledger.
func DeriveSpendingNullifier(eng *poseidon.Engine, nullifierKey, commitment *big.Int, leafIndex uint64) (*big.Int, error) {
	return eng.Hash(poseidon.DomainSpendingNullifier,
		nullifierKey,
		commitment,
		new(big.Int).SetUint64(leafIndex),
	)
}
