package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/david/hackathon-tracker/internal/models"
	"github.com/david/hackathon-tracker/internal/store"
)

// Deduper reconciles incoming records against the store and collapses
// duplicates that accumulated across scrape cycles.
type Deduper struct {
	Store store.RecordStore
}

// FilterNew returns the candidates not already present in the store,
// plus the number skipped as duplicates. Presence is a case-insensitive
// title match or an exact URL match against any stored record.
func (d *Deduper) FilterNew(ctx context.Context, candidates []models.Hackathon) ([]models.Hackathon, int, error) {
	fresh := make([]models.Hackathon, 0, len(candidates))
	skipped := 0
	for _, c := range candidates {
		if strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.WebsiteURL) == "" {
			skipped++
			continue
		}
		existing, err := d.Store.FindDuplicate(ctx, c.Title, c.WebsiteURL)
		if err != nil {
			return nil, skipped, fmt.Errorf("dedup lookup for %q: %w", c.Title, err)
		}
		if existing != nil {
			log.Printf("Skipping duplicate: %s", c.Title)
			skipped++
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh, skipped, nil
}

// Collapse runs three duplicate-removal passes over the full store:
// exact title, exact URL, then fuzzy title containment. Each pass works
// on a fresh snapshot so earlier deletions are never double-counted.
// Returns the total number of records removed.
func (d *Deduper) Collapse(ctx context.Context) (int, error) {
	total := 0
	for _, pass := range []struct {
		name   string
		losers func([]models.Hackathon) []uuid.UUID
	}{
		{"exact title", exactTitleLosers},
		{"exact url", exactURLLosers},
		{"fuzzy title", fuzzyTitleLosers},
	} {
		snapshot, err := d.Store.ListAll(ctx)
		if err != nil {
			return total, fmt.Errorf("collapse snapshot: %w", err)
		}
		ids := pass.losers(snapshot)
		if len(ids) == 0 {
			continue
		}
		n, err := d.Store.DeleteByIDs(ctx, ids)
		if err != nil {
			return total, fmt.Errorf("collapse %s pass: %w", pass.name, err)
		}
		if n > 0 {
			log.Printf("Removed %d duplicates (%s)", n, pass.name)
		}
		total += n
	}
	return total, nil
}

// exactTitleLosers keeps the most recently scraped record per
// case-insensitive title and marks the rest for deletion. On a timestamp
// tie the later-seen record wins.
func exactTitleLosers(records []models.Hackathon) []uuid.UUID {
	seen := make(map[string]models.Hackathon)
	var losers []uuid.UUID
	for _, h := range records {
		key := strings.ToLower(strings.TrimSpace(h.Title))
		prev, ok := seen[key]
		if !ok {
			seen[key] = h
			continue
		}
		if h.ScrapedAt.Before(prev.ScrapedAt) {
			losers = append(losers, h.ID)
		} else {
			losers = append(losers, prev.ID)
			seen[key] = h
		}
	}
	return losers
}

// exactURLLosers does the same keyed on website_url, ignoring placeholder
// values that carry no real address.
func exactURLLosers(records []models.Hackathon) []uuid.UUID {
	seen := make(map[string]models.Hackathon)
	var losers []uuid.UUID
	for _, h := range records {
		if isPlaceholderURL(h.WebsiteURL) {
			continue
		}
		key := strings.TrimSpace(h.WebsiteURL)
		prev, ok := seen[key]
		if !ok {
			seen[key] = h
			continue
		}
		if h.ScrapedAt.Before(prev.ScrapedAt) {
			losers = append(losers, h.ID)
		} else {
			losers = append(losers, prev.ID)
			seen[key] = h
		}
	}
	return losers
}

// fuzzyTitleLosers compares every pair whose normalized title is a
// substring of the other's and keeps the higher-scoring record. Score is
// description length plus a large recency bonus, so a fresher record beats
// a wordier stale one.
func fuzzyTitleLosers(records []models.Hackathon) []uuid.UUID {
	deleted := make(map[uuid.UUID]bool)
	var losers []uuid.UUID
	mark := func(id uuid.UUID) {
		if !deleted[id] {
			deleted[id] = true
			losers = append(losers, id)
		}
	}
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			h1, h2 := records[i], records[j]
			t1, t2 := normalizeTitle(h1.Title), normalizeTitle(h2.Title)
			if t1 == "" || t2 == "" {
				continue
			}
			if !strings.Contains(t1, t2) && !strings.Contains(t2, t1) {
				continue
			}
			s1 := len(h1.Description)
			if h1.ScrapedAt.After(h2.ScrapedAt) {
				s1 += 1000
			}
			s2 := len(h2.Description)
			if h2.ScrapedAt.After(h1.ScrapedAt) {
				s2 += 1000
			}
			if s1 < s2 && !deleted[h1.ID] {
				mark(h1.ID)
			} else {
				mark(h2.ID)
			}
		}
	}
	return losers
}
