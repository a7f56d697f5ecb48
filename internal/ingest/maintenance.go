package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/david/hackathon-tracker/internal/store"
)

// staleTBDAge is how long a record with no concrete end date is kept
// before it is assumed dead.
const staleTBDAge = 60 * 24 * time.Hour

// Maintenance removes records that no longer belong in the store: ended
// hackathons, stale TBD entries, and accumulated duplicates.
type Maintenance struct {
	Store store.RecordStore
}

// Expire deletes records whose end date has passed and TBD records whose
// scrape time is older than the staleness window. Returns the counts of
// each. Safe to run repeatedly.
func (m *Maintenance) Expire(ctx context.Context, now time.Time) (ended, stale int, err error) {
	today := now.UTC().Format("2006-01-02")
	ended, err = m.Store.DeleteEnded(ctx, today)
	if err != nil {
		return 0, 0, fmt.Errorf("delete ended: %w", err)
	}
	if ended > 0 {
		log.Printf("Removed %d expired hackathons", ended)
	}

	cutoff := now.UTC().Add(-staleTBDAge)
	stale, err = m.Store.DeleteStaleTBD(ctx, cutoff)
	if err != nil {
		return ended, 0, fmt.Errorf("delete stale tbd: %w", err)
	}
	if stale > 0 {
		log.Printf("Removed %d stale TBD hackathons", stale)
	}
	return ended, stale, nil
}

// Run performs the full maintenance sweep: expiry followed by duplicate
// collapse. Returns total expired and total duplicates removed.
func (m *Maintenance) Run(ctx context.Context, now time.Time) (expired, collapsed int, err error) {
	ended, stale, err := m.Expire(ctx, now)
	expired = ended + stale
	if err != nil {
		return expired, 0, err
	}
	dedup := &Deduper{Store: m.Store}
	collapsed, err = dedup.Collapse(ctx)
	return expired, collapsed, err
}
