package elgamal

import (
	"fmt"
	"math/big"

	"github.com/zkshield/shieldpool/crypto/ecc"
)

// Serialized sizes in bytes.
const (
	sizePoint      = 32 // compressed curve point
	SizeCiphertext = 2 * sizePoint
)

// Ciphertext is an ElGamal encrypted message. Ciphertexts under the
// same public key are additively homomorphic through Add.
type Ciphertext struct {
	C1 ecc.Point `json:"c1"`
	C2 ecc.Point `json:"c2"`
}

// NewCiphertext creates a zero Ciphertext on the same curve as the
// given point.
func NewCiphertext(curve ecc.Point) *Ciphertext {
	return &Ciphertext{C1: curve.New(), C2: curve.New()}
}

// Encrypt encrypts a message under the public key. The nonce k may be
// nil to sample a fresh one.
func (z *Ciphertext) Encrypt(message *big.Int, publicKey ecc.Point, k *big.Int) (*Ciphertext, error) {
	var err error
	if k == nil {
		if k, err = RandK(); err != nil {
			return nil, fmt.Errorf("elgamal encryption failed: %w", err)
		}
	}
	c1, c2, err := EncryptWithK(publicKey, message, k)
	if err != nil {
		return nil, fmt.Errorf("elgamal encryption failed: %w", err)
	}
	z.C1, z.C2 = c1, c2
	return z, nil
}

// Add sets z to the component-wise sum of x and y, which must be
// encrypted under the same public key, and returns z.
func (z *Ciphertext) Add(x, y *Ciphertext) *Ciphertext {
	z.C1.SafeAdd(x.C1, y.C1)
	z.C2.SafeAdd(x.C2, y.C2)
	return z
}

// Serialize returns the 64-byte wire form of the ciphertext: the
// compressed C1 point followed by the compressed C2 point.
func (z *Ciphertext) Serialize() []byte {
	buf := make([]byte, 0, SizeCiphertext)
	buf = append(buf, z.C1.Marshal()...)
	buf = append(buf, z.C2.Marshal()...)
	return buf
}

// Deserialize reconstructs a Ciphertext from its 64-byte wire form.
func (z *Ciphertext) Deserialize(data []byte) error {
	if len(data) != SizeCiphertext {
		return fmt.Errorf("invalid ciphertext length: got %d bytes, expected %d bytes",
			len(data), SizeCiphertext)
	}
	if err := z.C1.Unmarshal(data[:sizePoint]); err != nil {
		return fmt.Errorf("invalid C1 point: %w", err)
	}
	if err := z.C2.Unmarshal(data[sizePoint:]); err != nil {
		return fmt.Errorf("invalid C2 point: %w", err)
	}
	return nil
}

// String returns a human-readable representation of the ciphertext.
func (z *Ciphertext) String() string {
	if z == nil || z.C1 == nil || z.C2 == nil {
		return "{C1: nil, C2: nil}"
	}
	return fmt.Sprintf("{C1: %s, C2: %s}", z.C1.String(), z.C2.String())
}
