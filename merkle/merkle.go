// Package merkle recomputes roots of the on-ledger commitment tree from
// leaf values and sibling paths. Internal nodes and the empty-leaf
// sentinel use their own hash domains, so a leaf can never be confused
// with an internal node.
package merkle

import (
	"fmt"
	"math/big"

	"github.com/zkshield/shieldpool/crypto/hash/poseidon"
	"github.com/zkshield/shieldpool/types"
)

// Node hashes two child digests into their parent.
func Node(eng *poseidon.Engine, left, right *big.Int) (*big.Int, error) {
	return eng.Hash(poseidon.DomainMerkleNode, left, right)
}

// EmptyLeaf returns the sentinel digest stored in unoccupied leaves.
func EmptyLeaf(eng *poseidon.Engine) (*big.Int, error) {
	return eng.Hash(poseidon.DomainEmptyLeaf, big.NewInt(0))
}

// ComputeRoot folds a leaf up through its sibling path. The path must
// have exactly the tree depth entries; the leaf index selects left or
// right placement at each level, least significant bit first.
func ComputeRoot(eng *poseidon.Engine, leaf *big.Int, leafIndex uint64, siblings []*big.Int) (*big.Int, error) {
	if len(siblings) != types.MerkleTreeDepth {
		return nil, fmt.Errorf("invalid sibling path length: got %d, expected %d",
			len(siblings), types.MerkleTreeDepth)
	}
	node := leaf
	idx := leafIndex
	for _, sib := range siblings {
		var err error
		if idx&1 == 1 {
			node, err = Node(eng, sib, node)
		} else {
			node, err = Node(eng, node, sib)
		}
		if err != nil {
			return nil, err
		}
		idx >>= 1
	}
	return node, nil
}

// VerifyPath reports whether the leaf at leafIndex hashes up through
// siblings to the expected root.
func VerifyPath(eng *poseidon.Engine, root, leaf *big.Int, leafIndex uint64, siblings []*big.Int) (bool, error) {
	computed, err := ComputeRoot(eng, leaf, leafIndex, siblings)
	if err != nil {
		return false, err
	}
	return computed.Cmp(root) == 0, nil
}
