package circuits

import (
	"encoding/binary"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/zkshield/shieldpool/types"
)

func TestWitnessRoundTrip(t *testing.T) {
	c := qt.New(t)

	elements := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(123456789),
		new(big.Int).Sub(scalarField, big.NewInt(1)),
	}
	data, err := EncodeWitness(elements)
	c.Assert(err, qt.IsNil)
	c.Assert(len(data), qt.Equals, 4+len(elements)*32)
	c.Assert(binary.BigEndian.Uint32(data), qt.Equals, uint32(len(elements)))

	decoded, err := DecodeWitness(data)
	c.Assert(err, qt.IsNil)
	c.Assert(len(decoded), qt.Equals, len(elements))
	for i := range elements {
		c.Assert(decoded[i].String(), qt.Equals, elements[i].String())
	}
}

func TestWitnessReduction(t *testing.T) {
	c := qt.New(t)

	// an element above the field modulus encodes as its reduction
	over := new(big.Int).Add(scalarField, big.NewInt(7))
	data, err := EncodeWitness([]*big.Int{over})
	c.Assert(err, qt.IsNil)
	decoded, err := DecodeWitness(data)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded[0].String(), qt.Equals, "7")
}

func TestWitnessErrors(t *testing.T) {
	c := qt.New(t)

	_, err := EncodeWitness(nil)
	c.Assert(err, qt.Not(qt.IsNil))
	_, err = EncodeWitness([]*big.Int{big.NewInt(1), nil})
	c.Assert(err, qt.Not(qt.IsNil))

	_, err = DecodeWitness([]byte{0, 0})
	c.Assert(err, qt.Not(qt.IsNil))

	// count field inconsistent with the payload length
	data, err := EncodeWitness([]*big.Int{big.NewInt(1)})
	c.Assert(err, qt.IsNil)
	binary.BigEndian.PutUint32(data, 2)
	_, err = DecodeWitness(data)
	c.Assert(err, qt.Not(qt.IsNil))
}

func siblingsForTest() []*big.Int {
	siblings := make([]*big.Int, types.MerkleTreeDepth)
	for i := range siblings {
		siblings[i] = big.NewInt(int64(1000 + i))
	}
	return siblings
}

func TestTransferWitnessLayout(t *testing.T) {
	c := qt.New(t)

	w := &TransferWitness{
		MerkleRoot:        big.NewInt(11),
		InputNullifiers:   []*big.Int{big.NewInt(21), big.NewInt(22)},
		OutputCommitments: []*big.Int{big.NewInt(31)},
		TokenMint:         big.NewInt(41),
		InputNotes: []NoteAssignment{
			{StealthPubX: big.NewInt(51), TokenMint: big.NewInt(41), Amount: 600, Randomness: big.NewInt(61), LeafIndex: 3, Siblings: siblingsForTest()},
			{StealthPubX: big.NewInt(52), TokenMint: big.NewInt(41), Amount: 400, Randomness: big.NewInt(62), LeafIndex: 9, Siblings: siblingsForTest()},
		},
		StealthKeys: []*big.Int{big.NewInt(71), big.NewInt(72)},
		Outputs: []OutputAssignment{
			{StealthPubX: big.NewInt(81), TokenMint: big.NewInt(41), Amount: 1000, Randomness: big.NewInt(91)},
		},
	}

	pub := w.PublicInputs()
	c.Assert(len(pub), qt.Equals, 5)
	c.Assert(pub[0].String(), qt.Equals, "11")
	c.Assert(pub[4].String(), qt.Equals, "41")

	all, err := w.Serialize()
	c.Assert(err, qt.IsNil)
	// public inputs lead the witness in the same order
	for i := range pub {
		c.Assert(all[i].String(), qt.Equals, pub[i].String())
	}
	// layout: publics, 2 input notes (5 fields + siblings each), 2 keys, 1 output (4 fields)
	noteLen := 5 + types.MerkleTreeDepth
	c.Assert(len(all), qt.Equals, 5+2*noteLen+2+4)
	c.Assert(all[5].String(), qt.Equals, "51")
	c.Assert(all[5+2*noteLen].String(), qt.Equals, "71")
	c.Assert(all[5+2*noteLen+2].String(), qt.Equals, "81")
}

func TestTransferWitnessMismatch(t *testing.T) {
	c := qt.New(t)

	w := &TransferWitness{
		MerkleRoot:      big.NewInt(1),
		InputNullifiers: []*big.Int{big.NewInt(2)},
		TokenMint:       big.NewInt(3),
		// no input notes for the declared nullifier
	}
	_, err := w.Serialize()
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestVoteWitnessLayout(t *testing.T) {
	c := qt.New(t)

	w := &VoteWitness{
		ElectionID:  big.NewInt(101),
		MerkleRoot:  big.NewInt(102),
		Nullifier:   big.NewInt(103),
		ElectionKey: [2]*big.Int{big.NewInt(104), big.NewInt(105)},
		VoteCoords: [][4]*big.Int{
			{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)},
			{big.NewInt(5), big.NewInt(6), big.NewInt(7), big.NewInt(8)},
		},
		Weight:       1000,
		ChosenOption: 1,
		Nonces:       []*big.Int{big.NewInt(201), big.NewInt(202)},
		SpentNote: NoteAssignment{
			StealthPubX: big.NewInt(301), TokenMint: big.NewInt(302), Amount: 1000,
			Randomness: big.NewInt(303), LeafIndex: 4, Siblings: siblingsForTest(),
		},
		StealthKey: big.NewInt(401),
	}

	pub := w.PublicInputs()
	c.Assert(len(pub), qt.Equals, 5+2*4)
	c.Assert(pub[0].String(), qt.Equals, "101")
	c.Assert(pub[5].String(), qt.Equals, "1")

	all, err := w.Serialize()
	c.Assert(err, qt.IsNil)
	c.Assert(len(all), qt.Equals, len(pub)+2+2+5+types.MerkleTreeDepth+1)
	c.Assert(all[len(pub)].String(), qt.Equals, "1000")
	c.Assert(all[len(all)-1].String(), qt.Equals, "401")
}

func TestVoteWitnessNonceMismatch(t *testing.T) {
	c := qt.New(t)

	w := &VoteWitness{
		ElectionID:  big.NewInt(1),
		MerkleRoot:  big.NewInt(2),
		Nullifier:   big.NewInt(3),
		ElectionKey: [2]*big.Int{big.NewInt(4), big.NewInt(5)},
		VoteCoords:  [][4]*big.Int{{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)}},
		SpentNote: NoteAssignment{
			StealthPubX: big.NewInt(1), TokenMint: big.NewInt(1), Amount: 1,
			Randomness: big.NewInt(1), Siblings: siblingsForTest(),
		},
		StealthKey: big.NewInt(1),
	}
	_, err := w.Serialize()
	c.Assert(err, qt.Not(qt.IsNil))
}
