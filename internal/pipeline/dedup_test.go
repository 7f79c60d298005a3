package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := Fingerprint("user", "youtube", "hello world")
		b := Fingerprint("user", "youtube", "hello world")
		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
	})

	t.Run("any field change diverges", func(t *testing.T) {
		base := Fingerprint("user", "youtube", "hello world")
		assert.NotEqual(t, base, Fingerprint("other", "youtube", "hello world"))
		assert.NotEqual(t, base, Fingerprint("user", "instagram", "hello world"))
		assert.NotEqual(t, base, Fingerprint("user", "youtube", "hello world!"))
	})

	t.Run("field boundaries cannot be forged", func(t *testing.T) {
		// Moving a suffix of one field to the start of the next must change
		// the hash.
		a := Fingerprint("userx", "youtube", "text")
		b := Fingerprint("user", "xyoutube", "text")
		assert.NotEqual(t, a, b)
	})
}

type fakeLeadChecker struct {
	existing map[string]bool
	err      error
}

func (f *fakeLeadChecker) LeadExists(ctx context.Context, hash string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.existing[hash], nil
}

func TestPartition(t *testing.T) {
	seen := Fingerprint("old", "youtube", "seen this before")
	store := &fakeLeadChecker{existing: map[string]bool{seen: true}}
	d := NewDedupIndex(store)

	comments := []*models.Comment{
		{Author: "new", Platform: "youtube", Text: "never seen"},
		{Author: "old", Platform: "youtube", Text: "seen this before"},
	}

	unique, duplicates := d.Partition(context.Background(), comments)

	require.Len(t, unique, 1)
	require.Len(t, duplicates, 1)
	assert.Equal(t, "new", unique[0].Author)
	assert.Equal(t, "old", duplicates[0].Author)

	// Every comment carries its hash after partitioning.
	assert.NotEmpty(t, comments[0].Hash)
	assert.Equal(t, seen, comments[1].Hash)
}

func TestPartitionFailsOpen(t *testing.T) {
	store := &fakeLeadChecker{err: errors.New("connection refused")}
	d := NewDedupIndex(store)

	comments := []*models.Comment{
		{Author: "a", Platform: "youtube", Text: "one"},
		{Author: "b", Platform: "youtube", Text: "two"},
	}

	unique, duplicates := d.Partition(context.Background(), comments)
	assert.Len(t, unique, 2)
	assert.Empty(t, duplicates)
}
