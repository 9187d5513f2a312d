// Package poseidon implements the protocol's domain-separated hash
// engine on top of the iden3 Poseidon permutation. Every logical use of
// the hash carries its own domain tag, hashed as the first field
// element, so values from one context can never be reinterpreted in
// another.
package poseidon

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/zkshield/shieldpool/crypto"
)

// Reserved domain tags. These are part of the protocol wire contract:
// renumbering any of them is a protocol version bump. New domains are
// reserved by increment.
const (
	DomainCommitment        uint8 = 1
	DomainSpendingNullifier uint8 = 2
	DomainNullifierKey      uint8 = 3
	DomainStealthFactor     uint8 = 4
	DomainMerkleNode        uint8 = 5
	DomainEmptyLeaf         uint8 = 6
	DomainNoteEncryption    uint8 = 7
)

const (
	// chunkSize is how many field elements are absorbed per Poseidon
	// permutation; longer inputs are hashed chunk-wise and folded.
	chunkSize = 16
	// maxInputs bounds a single Hash call.
	maxInputs = 256
)

// Engine is the initialized hash primitive. It holds no mutable state
// after construction, so a single instance may be shared by any number
// of goroutines.
type Engine struct {
	field *big.Int
}

var (
	defaultEngine *Engine
	defaultErr    error
	defaultOnce   sync.Once
)

// Default returns the process-wide engine, building it exactly once.
// Concurrent callers before initialization completes share the single
// in-flight setup.
func Default() (*Engine, error) {
	defaultOnce.Do(func() {
		defaultEngine, defaultErr = NewEngine()
	})
	return defaultEngine, defaultErr
}

// NewEngine builds a hash engine over the BabyJubJub base field (the
// bn254 scalar field) and verifies the underlying permutation is
// usable by running a probe hash.
func NewEngine() (*Engine, error) {
	e := &Engine{field: new(big.Int).Set(constants.Q)}
	if _, err := poseidon.Hash([]*big.Int{big.NewInt(0)}); err != nil {
		return nil, fmt.Errorf("poseidon parameters unavailable: %w", err)
	}
	return e, nil
}

// Field returns the modulus all hash inputs and outputs live in.
func (e *Engine) Field() *big.Int {
	return new(big.Int).Set(e.field)
}

// Hash returns H(domain, inputs...). Inputs are reduced into the field
// before hashing; the domain tag is hashed as the leading element.
// Inputs longer than one permutation chunk are hashed chunk-wise and
// the chunk digests folded with a final permutation, so the result is
// still a single field element.
func (e *Engine) Hash(domain uint8, inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	if len(inputs) > maxInputs {
		return nil, fmt.Errorf("too many inputs: got %d, max %d", len(inputs), maxInputs)
	}
	elems := make([]*big.Int, 0, len(inputs)+1)
	elems = append(elems, big.NewInt(int64(domain)))
	for _, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("nil input")
		}
		elems = append(elems, crypto.BigToFF(e.field, in))
	}

	hashes := []*big.Int{}
	chunk := []*big.Int{}
	for _, elem := range elems {
		if len(chunk) == chunkSize {
			hash, err := poseidon.Hash(chunk)
			if err != nil {
				return nil, err
			}
			hashes = append(hashes, hash)
			chunk = []*big.Int{}
		}
		chunk = append(chunk, elem)
	}
	if len(chunk) > 0 {
		hash, err := poseidon.Hash(chunk)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	return poseidon.Hash(hashes)
}
