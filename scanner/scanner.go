// Package scanner discovers the notes a spending key owns by trial
// decryption of the ledger's encrypted note payloads. Discovered notes
// are cached by commitment, so rescanning is cheap and idempotent;
// spent status is never cached and is queried fresh on every balance
// computation.
package scanner

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/zkshield/shieldpool/crypto"
	"github.com/zkshield/shieldpool/crypto/ecc"
	"github.com/zkshield/shieldpool/crypto/hash/poseidon"
	"github.com/zkshield/shieldpool/crypto/stealth"
	"github.com/zkshield/shieldpool/log"
	"github.com/zkshield/shieldpool/merkle"
	"github.com/zkshield/shieldpool/notes"
	"github.com/zkshield/shieldpool/storage"
	"github.com/zkshield/shieldpool/types"
)

// Candidate is one ledger entry the scanner inspects: a published
// commitment with its encrypted payload and tree position.
type Candidate struct {
	Commitment *big.Int
	Payload    types.HexBytes
	LeafIndex  uint64
	Root       *big.Int
	Siblings   []*big.Int
}

// Source feeds the scanner with ledger state. Implementations talk to
// an indexer or a local replica; the scanner never assumes the data is
// fresh beyond a single call.
type Source interface {
	// Candidates returns the note entries published on the ledger.
	Candidates(ctx context.Context) ([]Candidate, error)
	// NullifierSpent reports whether a nullifier appears in the
	// ledger's spent set.
	NullifierSpent(ctx context.Context, nullifier *big.Int) (bool, error)
}

// OwnedNote is a note the scanned key can spend, together with the
// stealth spending scalar and the tree position needed to build a
// spend witness.
type OwnedNote struct {
	Note       *notes.Note
	StealthKey *big.Int
	Commitment *big.Int
	LeafIndex  uint64
	Root       *big.Int
	Siblings   []*big.Int
}

// Scanner trial-decrypts ledger candidates against spending keys.
// Safe for concurrent use; concurrent scans for the same key are
// collapsed into one pass over the source.
type Scanner struct {
	curve ecc.Point
	eng   *poseidon.Engine
	src   Source
	st    *storage.Storage

	group singleflight.Group
	mu    sync.RWMutex
	owned map[string]map[string]*OwnedNote // key fingerprint -> commitment -> note
}

// New creates a scanner over the given ledger source. The curve
// parameter fixes the point implementation used to parse ephemeral
// keys. A non-nil store persists discovered note records, so a
// restarted scanner rediscovers its notes without the source having to
// replay them; pass nil for a purely in-memory scanner.
func New(curve ecc.Point, eng *poseidon.Engine, src Source, st *storage.Storage) *Scanner {
	return &Scanner{
		curve: curve,
		eng:   eng,
		src:   src,
		st:    st,
		owned: make(map[string]map[string]*OwnedNote),
	}
}

func keyFingerprint(kp *notes.Keypair) string {
	return hex.EncodeToString(kp.PublicKey.Marshal())
}

// Scan walks the ledger candidates and returns every note the keypair
// owns, newly discovered ones included. Results accumulate in the
// per-key cache keyed by commitment, so candidates seen on a previous
// scan are recognized without re-decryption and never duplicated.
func (s *Scanner) Scan(ctx context.Context, kp *notes.Keypair) ([]*OwnedNote, error) {
	fp := keyFingerprint(kp)
	res, err, _ := s.group.Do(fp, func() (any, error) {
		return s.scan(ctx, fp, kp)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*OwnedNote), nil
}

func (s *Scanner) scan(ctx context.Context, fp string, kp *notes.Keypair) ([]*OwnedNote, error) {
	candidates, err := s.src.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	// persisted records are replayed as extra candidates, after the
	// fresh ones so live tree positions win
	if s.st != nil {
		recs, err := s.st.ListNotes()
		if err != nil {
			return nil, fmt.Errorf("load note records: %w", err)
		}
		for _, rec := range recs {
			candidates = append(candidates, Candidate{
				Commitment: new(big.Int).SetBytes(rec.Commitment),
				Payload:    rec.Payload,
				LeafIndex:  rec.LeafIndex,
			})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cache := s.owned[fp]
	if cache == nil {
		cache = make(map[string]*OwnedNote)
		s.owned[fp] = cache
	}

	found := 0
	for i := range candidates {
		cand := &candidates[i]
		cmKey := cand.Commitment.String()
		if prev, ok := cache[cmKey]; ok {
			// already known, but the tree position may have moved;
			// replayed records carry no root and must not clobber it
			if cand.Root != nil {
				prev.LeafIndex = cand.LeafIndex
				prev.Root = cand.Root
				prev.Siblings = cand.Siblings
			}
			continue
		}
		note, err := s.tryClaim(cand, kp)
		if err != nil {
			return nil, err
		}
		if note == nil {
			continue
		}
		cache[cmKey] = note
		found++
		if s.st != nil {
			rec := &storage.NoteRecord{
				Commitment: fieldBytes(cand.Commitment),
				Payload:    cand.Payload,
				LeafIndex:  cand.LeafIndex,
			}
			if err := s.st.SetNote(rec); err != nil {
				return nil, fmt.Errorf("persist note record: %w", err)
			}
		}
	}
	if found > 0 {
		log.Debugw("scan discovered notes", "new", found, "total", len(cache))
	}

	out := make([]*OwnedNote, 0, len(cache))
	for _, n := range cache {
		out = append(out, n)
	}
	return out, nil
}

// tryClaim decrypts one candidate and checks whether the keypair owns
// the embedded stealth address. It returns nil with no error for the
// normal "not ours" outcome.
func (s *Scanner) tryClaim(cand *Candidate, kp *notes.Keypair) (*OwnedNote, error) {
	enc, err := notes.ParseEncryptedNote(cand.Payload)
	if err != nil {
		// malformed ledger entries are skipped, not fatal
		log.Debugw("skipping malformed note payload", "commitment", cand.Commitment.String())
		return nil, nil
	}
	note, err := notes.DecryptNote(s.eng, s.curve, enc, kp.SpendingKey)
	if errors.Is(err, notes.ErrDecrypt) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stealthKey, err := s.stealthKeyFor(note, enc, kp)
	if err != nil {
		return nil, err
	}
	if stealthKey == nil {
		return nil, nil
	}

	// the plaintext must hash to the published commitment, otherwise
	// the payload lies about the note it accompanies
	cm, err := note.Commitment(s.eng)
	if err != nil {
		return nil, err
	}
	if cm.Cmp(cand.Commitment) != 0 {
		log.Warnw("note payload does not match its commitment",
			"commitment", cand.Commitment.String())
		return nil, nil
	}
	// when the indexer supplies a membership path, the commitment must
	// hash up to the advertised root before the note enters the cache
	if cand.Root != nil && len(cand.Siblings) > 0 {
		ok, err := merkle.VerifyPath(s.eng, cand.Root, cm, cand.LeafIndex, cand.Siblings)
		if err != nil || !ok {
			log.Warnw("note membership path does not verify",
				"commitment", cand.Commitment.String())
			return nil, nil
		}
	}
	return &OwnedNote{
		Note:       note,
		StealthKey: stealthKey,
		Commitment: cm,
		LeafIndex:  cand.LeafIndex,
		Root:       cand.Root,
		Siblings:   cand.Siblings,
	}, nil
}

// stealthKeyFor returns the scalar that spends the note's stealth
// address, or nil when the keypair does not own it. Notes addressed
// directly to the long-term key spend with the key itself.
func (s *Scanner) stealthKeyFor(note *notes.Note, enc *notes.EncryptedNote, kp *notes.Keypair) (*big.Int, error) {
	baseX, _ := kp.PublicKey.Point()
	if note.StealthPubX.Cmp(baseX) == 0 {
		return kp.SpendingKey, nil
	}

	ephemeralPub := s.curve.New()
	if err := ephemeralPub.Unmarshal(enc.EphemeralPubKey); err != nil {
		return nil, nil
	}
	stealthKey, err := stealth.DerivePrivateKey(s.eng, kp.SpendingKey, ephemeralPub)
	if err != nil {
		return nil, err
	}
	derived := s.curve.New()
	derived.ScalarBaseMult(stealthKey)
	derivedX, _ := derived.Point()
	if note.StealthPubX.Cmp(derivedX) != 0 {
		return nil, nil
	}
	return stealthKey, nil
}

// Balance scans for the keypair and sums the amounts of its unspent
// notes for one token mint. Spent status comes from a fresh nullifier
// query per note on every call, so a balance never reflects stale
// spend state. The sum is a big.Int since many u64 notes can exceed
// the u64 range together.
func (s *Scanner) Balance(ctx context.Context, kp *notes.Keypair, tokenMint *big.Int) (*big.Int, error) {
	owned, err := s.Scan(ctx, kp)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, n := range owned {
		if n.Note.TokenMint.Cmp(tokenMint) != 0 {
			continue
		}
		nk, err := notes.DeriveNullifierKey(s.eng, n.StealthKey)
		if err != nil {
			return nil, err
		}
		nullifier, err := notes.DeriveSpendingNullifier(s.eng, nk, n.Commitment, n.LeafIndex)
		if err != nil {
			return nil, err
		}
		spent, err := s.src.NullifierSpent(ctx, nullifier)
		if err != nil {
			return nil, fmt.Errorf("query nullifier: %w", err)
		}
		if !spent {
			total.Add(total, new(big.Int).SetUint64(n.Note.Amount))
		}
	}
	return total, nil
}

func fieldBytes(v *big.Int) []byte {
	out := make([]byte, crypto.SerializedFieldSize)
	v.FillBytes(out)
	return out
}

// Nullifier derives the spending nullifier for an owned note. Spend
// flows publish this value; Balance recomputes it rather than caching.
func (s *Scanner) Nullifier(n *OwnedNote) (*big.Int, error) {
	nk, err := notes.DeriveNullifierKey(s.eng, n.StealthKey)
	if err != nil {
		return nil, err
	}
	return notes.DeriveSpendingNullifier(s.eng, nk, n.Commitment, n.LeafIndex)
}
