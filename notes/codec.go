package notes

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/zkshield/shieldpool/crypto"
	"github.com/zkshield/shieldpool/crypto/ecc"
	"github.com/zkshield/shieldpool/crypto/hash/poseidon"
	"github.com/zkshield/shieldpool/types"
)

// ErrDecrypt is returned when a ciphertext does not decrypt to a valid
// note under the given key. During scanning this is the normal "not
// mine" outcome, not a failure.
var ErrDecrypt = errors.New("note not decryptable with this key")

const (
	sizePoint = 32
	// SerializedNoteSize is the wire size of an encrypted note: the
	// compressed ephemeral pubkey followed by one padded 32-byte field
	// per note field.
	SerializedNoteSize = sizePoint + types.NoteFieldCount*crypto.SerializedFieldSize
)

// EncryptedNote is a note payload encrypted to a recipient public key.
// It is stored on the ledger alongside the note's commitment; only the
// holder of the matching spending key can recover the plaintext fields.
type EncryptedNote struct {
	EphemeralPubKey types.HexBytes `json:"ephemeralPubkey"`
	Payload         types.HexBytes `json:"payload"`
}

// EncryptNote encrypts the note's fields to the recipient. The
// ephemeral scalar is the one returned by stealth address generation,
// so a single ephemeral pubkey serves both stealth derivation and
// payload decryption. Each field is masked with an indexed pad derived
// from the ECDH shared point.
func EncryptNote(eng *poseidon.Engine, note *Note, recipientPubKey ecc.Point, ephemeralKey *big.Int) (*EncryptedNote, error) {
	ephemeralPub := recipientPubKey.New()
	ephemeralPub.ScalarBaseMult(ephemeralKey)

	shared := recipientPubKey.New()
	shared.ScalarMult(recipientPubKey, ephemeralKey)
	sharedX, _ := shared.Point()

	fields := [types.NoteFieldCount]*big.Int{
		note.StealthPubX,
		note.TokenMint,
		new(big.Int).SetUint64(note.Amount),
		note.Randomness,
	}
	payload := make([]byte, 0, types.NoteFieldCount*crypto.SerializedFieldSize)
	for i, m := range fields {
		pad, err := eng.Hash(poseidon.DomainNoteEncryption, sharedX, big.NewInt(int64(i)))
		if err != nil {
			return nil, fmt.Errorf("note pad %d: %w", i, err)
		}
		ct := new(big.Int).Add(crypto.BigToFF(eng.Field(), m), pad)
		ct.Mod(ct, eng.Field())
		payload = append(payload, crypto.FieldToBytes(eng.Field(), ct)...)
	}
	return &EncryptedNote{
		EphemeralPubKey: ephemeralPub.Marshal(),
		Payload:         payload,
	}, nil
}

// DecryptNote attempts to recover a note from the ciphertext with the
// given viewing (spending) key. It returns ErrDecrypt when the
// plaintext is not a well-formed note, which during scanning simply
// means the note belongs to someone else.
func DecryptNote(eng *poseidon.Engine, curve ecc.Point, enc *EncryptedNote, viewingKey *big.Int) (*Note, error) {
	if len(enc.Payload) != types.NoteFieldCount*crypto.SerializedFieldSize {
		return nil, fmt.Errorf("invalid note payload length: got %d bytes, expected %d bytes",
			len(enc.Payload), types.NoteFieldCount*crypto.SerializedFieldSize)
	}
	ephemeralPub := curve.New()
	if err := ephemeralPub.Unmarshal(enc.EphemeralPubKey); err != nil {
		return nil, fmt.Errorf("%w: bad ephemeral pubkey", ErrDecrypt)
	}

	shared := curve.New()
	shared.ScalarMult(ephemeralPub, viewingKey)
	sharedX, _ := shared.Point()

	fields := [types.NoteFieldCount]*big.Int{}
	for i := range fields {
		ct, err := crypto.BytesToField(eng.Field(),
			enc.Payload[i*crypto.SerializedFieldSize:(i+1)*crypto.SerializedFieldSize])
		if err != nil {
			return nil, err
		}
		pad, err := eng.Hash(poseidon.DomainNoteEncryption, sharedX, big.NewInt(int64(i)))
		if err != nil {
			return nil, fmt.Errorf("note pad %d: %w", i, err)
		}
		m := new(big.Int).Sub(ct, pad)
		m.Mod(m, eng.Field())
		fields[i] = m
	}
	// the amount field must be in u64 range; anything else means the
	// pads were wrong, so the note is not ours
	if fields[2].BitLen() > 64 {
		return nil, ErrDecrypt
	}
	return &Note{
		StealthPubX: fields[0],
		TokenMint:   fields[1],
		Amount:      fields[2].Uint64(),
		Randomness:  fields[3],
	}, nil
}

// Bytes returns the fixed-size wire form of the encrypted note.
func (e *EncryptedNote) Bytes() []byte {
	buf := make([]byte, 0, SerializedNoteSize)
	buf = append(buf, e.EphemeralPubKey...)
	buf = append(buf, e.Payload...)
	return buf
}

// ParseEncryptedNote parses the fixed-size wire form of an encrypted
// note, failing fast on any other length.
func ParseEncryptedNote(data []byte) (*EncryptedNote, error) {
	if len(data) != SerializedNoteSize {
		return nil, fmt.Errorf("invalid encrypted note length: got %d bytes, expected %d bytes",
			len(data), SerializedNoteSize)
	}
	return &EncryptedNote{
		EphemeralPubKey: append(types.HexBytes{}, data[:sizePoint]...),
		Payload:         append(types.HexBytes{}, data[sizePoint:]...),
	}, nil
}
