// Package ethereum derives deterministic protocol key material from an
// Ethereum wallet, so a user can recover their shielded account from
// the wallet alone: the wallet signs a fixed message and the signature
// hash seeds the spending key scalar.
package ethereum

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iden3/go-iden3-crypto/babyjub"

	"github.com/zkshield/shieldpool/crypto/ecc"
	"github.com/zkshield/shieldpool/notes"
)

// KeySeedMessage is the fixed message a wallet signs to derive its
// shielded spending key. Changing it invalidates every derived account.
const KeySeedMessage = "shieldpool key derivation v1"

// SignKeySeed signs the key seed message with the wallet private key
// and returns the 65-byte signature.
func SignKeySeed(privKey *ecdsa.PrivateKey) ([]byte, error) {
	digest := ethcrypto.Keccak256([]byte(KeySeedMessage))
	sig, err := ethcrypto.Sign(digest, privKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign key seed: %w", err)
	}
	return sig, nil
}

// VerifyKeySeed checks that sig is a valid key seed signature for the
// given wallet public key.
func VerifyKeySeed(pubKey *ecdsa.PublicKey, sig []byte) bool {
	if len(sig) < 64 {
		return false
	}
	digest := ethcrypto.Keccak256([]byte(KeySeedMessage))
	return ethcrypto.VerifySignature(ethcrypto.CompressPubkey(pubKey), digest, sig[:64])
}

// SpendingKeyFromSignature turns a key seed signature into a spending
// key scalar, reduced modulo the BabyJubJub subgroup order. The same
// signature always yields the same key.
func SpendingKeyFromSignature(sig []byte) (*big.Int, error) {
	if len(sig) < 64 {
		return nil, fmt.Errorf("invalid signature length: got %d bytes, expected at least 64 bytes", len(sig))
	}
	seed := ethcrypto.Keccak256(sig[:64])
	sk := new(big.Int).SetBytes(seed)
	sk.Mod(sk, babyjub.SubOrder)
	if sk.Sign() == 0 {
		sk = big.NewInt(1)
	}
	return sk, nil
}

// DeriveKeypair derives the shielded account keypair for a wallet: the
// wallet signs the key seed message and the signature seeds the
// spending key on the given curve. The same wallet always recovers the
// same keypair.
func DeriveKeypair(curve ecc.Point, privKey *ecdsa.PrivateKey) (*notes.Keypair, error) {
	sig, err := SignKeySeed(privKey)
	if err != nil {
		return nil, err
	}
	sk, err := SpendingKeyFromSignature(sig)
	if err != nil {
		return nil, err
	}
	return notes.KeypairFromScalar(curve, sk), nil
}
