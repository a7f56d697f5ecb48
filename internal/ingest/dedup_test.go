package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/david/hackathon-tracker/internal/models"
	"github.com/david/hackathon-tracker/internal/store"
)

func rec(title, url, desc string, scrapedAt time.Time) models.Hackathon {
	return models.Hackathon{
		ID:          uuid.New(),
		Title:       title,
		EndDate:     models.DateTBD,
		WebsiteURL:  url,
		Description: desc,
		ScrapedAt:   scrapedAt,
		Source:      models.SourceGeminiSearch,
	}
}

func TestFilterNew(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	st := store.NewMemoryStore()
	if _, err := st.InsertMany(ctx, []models.Hackathon{
		rec("Smart India Hackathon", "https://sih.example", "", now),
	}); err != nil {
		t.Fatal(err)
	}

	dedup := &Deduper{Store: st}
	fresh, skipped, err := dedup.FilterNew(ctx, []models.Hackathon{
		rec("smart india hackathon ", "https://other.example", "", now), // title match despite case and spacing
		rec("Totally Different", "https://sih.example", "", now),       // url match
		rec("Brand New Hack", "https://new.example", "", now),
	})
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", skipped)
	}
	if len(fresh) != 1 || fresh[0].Title != "Brand New Hack" {
		t.Errorf("expected only Brand New Hack to survive, got %+v", fresh)
	}
}

func TestExactTitleLosers(t *testing.T) {
	now := time.Now().UTC()
	older := rec("HackX", "https://a.example", "", now.Add(-time.Hour))
	newer := rec("hackx", "https://b.example", "", now)

	losers := exactTitleLosers([]models.Hackathon{older, newer})
	if len(losers) != 1 || losers[0] != older.ID {
		t.Errorf("expected older record to lose, got %v", losers)
	}

	// Reversed input order, same winner.
	losers = exactTitleLosers([]models.Hackathon{newer, older})
	if len(losers) != 1 || losers[0] != older.ID {
		t.Errorf("expected older record to lose regardless of order, got %v", losers)
	}
}

func TestExactURLLosers(t *testing.T) {
	now := time.Now().UTC()
	a := rec("HackA", "https://same.example", "", now.Add(-time.Hour))
	b := rec("HackB", "https://same.example", "", now)
	tbd1 := rec("HackC", "TBD", "", now)
	tbd2 := rec("HackD", "TBD", "", now)

	losers := exactURLLosers([]models.Hackathon{a, b, tbd1, tbd2})
	if len(losers) != 1 || losers[0] != a.ID {
		t.Errorf("expected only the stale shared-URL record to lose, got %v", losers)
	}
}

func TestFuzzyTitleLosers(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Description length breaks same-age tie", func(t *testing.T) {
		long := rec("Smart India Hackathon 2026", "", "a long detailed description", now)
		short := rec("Smart India Hackathon", "", "short", now)
		losers := fuzzyTitleLosers([]models.Hackathon{long, short})
		if len(losers) != 1 || losers[0] != short.ID {
			t.Errorf("expected shorter description to lose, got %v", losers)
		}
	})

	t.Run("Recency outweighs description length", func(t *testing.T) {
		stale := rec("Smart India Hackathon 2026", "", "a very long and detailed description of everything", now.Add(-time.Hour))
		fresh := rec("Smart India Hackathon", "", "x", now)
		losers := fuzzyTitleLosers([]models.Hackathon{stale, fresh})
		if len(losers) != 1 || losers[0] != stale.ID {
			t.Errorf("expected stale record to lose despite longer description, got %v", losers)
		}
	})

	t.Run("Unrelated titles untouched", func(t *testing.T) {
		a := rec("HackX", "", "", now)
		b := rec("Completely Other Event", "", "", now)
		if losers := fuzzyTitleLosers([]models.Hackathon{a, b}); len(losers) != 0 {
			t.Errorf("expected no losers, got %v", losers)
		}
	})

	t.Run("Empty normalized titles skipped", func(t *testing.T) {
		a := rec("***", "", "", now)
		b := rec("!!!", "", "", now)
		if losers := fuzzyTitleLosers([]models.Hackathon{a, b}); len(losers) != 0 {
			t.Errorf("expected no losers for unmatchable titles, got %v", losers)
		}
	})
}

func TestCollapse(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	st := store.NewMemoryStore()
	if _, err := st.InsertMany(ctx, []models.Hackathon{
		rec("HackX", "https://x.example", "keep me", now),
		rec("hackx", "https://x-old.example", "", now.Add(-time.Hour)), // exact title dup
		rec("Other Event", "https://x.example", "", now.Add(-2*time.Hour)), // exact url dup
		rec("HackX 2026 Edition", "https://y.example", "", now.Add(-3*time.Hour)), // fuzzy dup
		rec("Standalone", "https://z.example", "", now),
	}); err != nil {
		t.Fatal(err)
	}

	dedup := &Deduper{Store: st}
	removed, err := dedup.Collapse(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}

	left, err := st.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	titles := make(map[string]bool)
	for _, h := range left {
		titles[h.Title] = true
	}
	if !titles["HackX"] || !titles["Standalone"] || len(left) != 2 {
		t.Errorf("unexpected survivors: %+v", titles)
	}

	// Fixed point: a second sweep removes nothing.
	removed, err = dedup.Collapse(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("second collapse removed %d, want 0", removed)
	}
}
