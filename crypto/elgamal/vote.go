package elgamal

import (
	"fmt"
	"math/big"

	"github.com/zkshield/shieldpool/crypto/ecc"
	"github.com/zkshield/shieldpool/types"
)

// EncryptedVote carries one ciphertext per ballot option, all encrypted
// under the same election public key. The chosen option encrypts the
// voter's weight and every other option encrypts zero, so an observer
// cannot tell the options apart and tallies aggregate by ciphertext
// addition.
type EncryptedVote struct {
	CurveType string        `json:"curveType"`
	Options   []*Ciphertext `json:"options"`
}

// NewEncryptedVote creates a zero vote with nOptions ciphertexts on the
// same curve as the given point.
func NewEncryptedVote(curve ecc.Point, nOptions int) (*EncryptedVote, error) {
	if nOptions <= 0 || nOptions > types.MaxVoteOptions {
		return nil, fmt.Errorf("invalid option count %d, must be in [1, %d]", nOptions, types.MaxVoteOptions)
	}
	v := &EncryptedVote{
		CurveType: curve.Type(),
		Options:   make([]*Ciphertext, nOptions),
	}
	for i := range v.Options {
		v.Options[i] = NewCiphertext(curve)
	}
	return v, nil
}

// EncryptVote encrypts weight for chosenOption among nOptions under the
// election public key. Every option uses an independently sampled
// nonce.
func EncryptVote(weight *big.Int, chosenOption, nOptions int, electionPubKey ecc.Point) (*EncryptedVote, error) {
	if chosenOption < 0 || chosenOption >= nOptions {
		return nil, fmt.Errorf("chosen option %d out of range [0, %d)", chosenOption, nOptions)
	}
	v, err := NewEncryptedVote(electionPubKey, nOptions)
	if err != nil {
		return nil, err
	}
	for i := range v.Options {
		msg := big.NewInt(0)
		if i == chosenOption {
			msg = weight
		}
		if _, err := v.Options[i].Encrypt(msg, electionPubKey, nil); err != nil {
			return nil, fmt.Errorf("encrypt option %d: %w", i, err)
		}
	}
	return v, nil
}

// Add sets v to the component-wise sum of x and y and returns it. Both
// votes must carry the same number of options and be encrypted under
// the same election key.
func (v *EncryptedVote) Add(x, y *EncryptedVote) (*EncryptedVote, error) {
	if len(x.Options) != len(y.Options) || len(v.Options) != len(x.Options) {
		return nil, fmt.Errorf("option count mismatch: %d != %d", len(x.Options), len(y.Options))
	}
	if x.CurveType != y.CurveType {
		return nil, fmt.Errorf("curve type mismatch: %q != %q", x.CurveType, y.CurveType)
	}
	for i := range v.Options {
		v.Options[i].Add(x.Options[i], y.Options[i])
	}
	return v, nil
}

// Serialize returns the wire form of the vote: per option the 64-byte
// ciphertext (compressed C1 then compressed C2), in option order.
func (v *EncryptedVote) Serialize() []byte {
	buf := make([]byte, 0, len(v.Options)*SizeCiphertext)
	for _, opt := range v.Options {
		buf = append(buf, opt.Serialize()...)
	}
	return buf
}

// Deserialize reconstructs an EncryptedVote from its wire form. The
// receiver must already carry the expected number of option
// ciphertexts; any other input length is rejected.
func (v *EncryptedVote) Deserialize(data []byte) error {
	if len(data) != len(v.Options)*SizeCiphertext {
		return fmt.Errorf("invalid encrypted vote length: got %d bytes, expected %d bytes",
			len(data), len(v.Options)*SizeCiphertext)
	}
	for i := range v.Options {
		if err := v.Options[i].Deserialize(data[i*SizeCiphertext : (i+1)*SizeCiphertext]); err != nil {
			return fmt.Errorf("option %d: %w", i, err)
		}
	}
	return nil
}

// DecryptTally decrypts every option of an aggregated vote with the
// election private key, searching plaintexts up to maxWeight. This is
// the election authority's tally-time path, not the per-vote hot path.
func (v *EncryptedVote) DecryptTally(publicKey ecc.Point, privateKey *big.Int, maxWeight uint64) ([]*big.Int, error) {
	tally := make([]*big.Int, len(v.Options))
	for i, opt := range v.Options {
		_, msg, err := Decrypt(publicKey, privateKey, opt.C1, opt.C2, maxWeight)
		if err != nil {
			return nil, fmt.Errorf("decrypt option %d: %w", i, err)
		}
		tally[i] = msg
	}
	return tally, nil
}
