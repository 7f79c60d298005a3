package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"log"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// Fingerprint computes the deterministic content hash of a comment. Each
// field is length-prefixed before hashing so no separator byte can be forged
// by crafted input.
func Fingerprint(author, platform, text string) string {
	h := sha256.New()
	var buf [binary.MaxVarintLen64]byte
	for _, field := range []string{author, platform, text} {
		n := binary.PutUvarint(buf[:], uint64(len(field)))
		h.Write(buf[:n])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// LeadChecker is the slice of the store the dedup index needs.
type LeadChecker interface {
	LeadExists(ctx context.Context, hash string) (bool, error)
}

// DedupIndex partitions comments into unique and already-seen by content
// fingerprint.
type DedupIndex struct {
	store LeadChecker
}

func NewDedupIndex(store LeadChecker) *DedupIndex {
	return &DedupIndex{store: store}
}

// Partition attaches the fingerprint to every comment and splits the batch
// into unique and duplicate slices, preserving input order within each.
// A store error during the existence check fails open: the comment is kept
// as unique rather than risking a lost lead.
func (d *DedupIndex) Partition(ctx context.Context, comments []*models.Comment) (unique, duplicates []*models.Comment) {
	for _, c := range comments {
		c.Hash = Fingerprint(c.Author, c.Platform, c.Text)

		exists, err := d.store.LeadExists(ctx, c.Hash)
		if err != nil {
			log.Printf("Warning: duplicate check degraded for %s, treating as unique: %v", c.Author, err)
			unique = append(unique, c)
			continue
		}
		if exists {
			duplicates = append(duplicates, c)
		} else {
			unique = append(unique, c)
		}
	}

	log.Printf("Dedup: %d unique, %d duplicates", len(unique), len(duplicates))
	return unique, duplicates
}
