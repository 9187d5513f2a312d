package types

const (
	// MerkleTreeDepth is the fixed depth of the on-ledger commitment tree.
	// Sibling paths supplied by the indexer must have exactly this length.
	MerkleTreeDepth = 32
	// NoteFieldCount is the number of field elements carried by a note
	// payload: stealth pubkey X, token mint, amount and randomness.
	NoteFieldCount = 4
	// MaxVoteOptions bounds the per-option ciphertext array of an
	// encrypted vote.
	MaxVoteOptions = 16
	// ProofSize is the byte length of a serialized groth16 proof in the
	// ledger verifier layout: A (64) | B (128) | C (64).
	ProofSize = 256
)
