package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// FallbackStore writes leads that could not reach Postgres to local JSON
// files so a run never loses qualified leads. Each failed batch becomes one
// timestamped file that a later import can replay.
type FallbackStore struct {
	dir string
}

func NewFallbackStore(dir string) *FallbackStore {
	return &FallbackStore{dir: dir}
}

// Save writes the given leads to a new timestamped JSON file and returns its
// path.
func (f *FallbackStore) Save(leads []*models.Lead) (string, error) {
	if len(leads) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create fallback dir: %w", err)
	}

	name := fmt.Sprintf("leads_%s.json", time.Now().Format("20060102T150405"))
	path := filepath.Join(f.dir, name)

	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal leads: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write fallback file: %w", err)
	}

	log.Printf("Saved %d leads to fallback file %s", len(leads), path)
	return path, nil
}

// List returns the fallback files on disk, oldest first. The timestamped
// filenames sort chronologically.
func (f *FallbackStore) List() ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(f.dir, "leads_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list fallback files: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

// Load reads the leads from one fallback file.
func (f *FallbackStore) Load(path string) ([]*models.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback file: %w", err)
	}

	var leads []*models.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("failed to parse fallback file %s: %w", path, err)
	}
	return leads, nil
}

// Import replays every fallback file into the lead repository. Files whose
// leads all make it into Postgres are removed; a file with any failed lead
// is rewritten with just the remainder. Duplicate hashes are skipped, not
// treated as failures.
func (f *FallbackStore) Import(ctx context.Context, repo *LeadRepository) (imported int, err error) {
	files, err := f.List()
	if err != nil {
		return 0, err
	}

	for _, path := range files {
		leads, err := f.Load(path)
		if err != nil {
			log.Printf("Skipping unreadable fallback file: %v", err)
			continue
		}

		var remaining []*models.Lead
		for _, lead := range leads {
			exists, err := repo.LeadExists(ctx, lead.LeadHash)
			if err == nil && exists {
				continue
			}
			if err := repo.Create(ctx, lead); err != nil {
				log.Printf("Failed to import lead from %s: %v", lead.Author, err)
				remaining = append(remaining, lead)
				continue
			}
			imported++
		}

		if len(remaining) == 0 {
			if err := os.Remove(path); err != nil {
				log.Printf("Failed to remove imported fallback file %s: %v", path, err)
			}
			continue
		}

		data, err := json.MarshalIndent(remaining, "", "  ")
		if err != nil {
			log.Printf("Failed to rewrite fallback file %s: %v", path, err)
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Printf("Failed to rewrite fallback file %s: %v", path, err)
		}
	}

	log.Printf("Imported %d leads from fallback files", imported)
	return imported, nil
}
