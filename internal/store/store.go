// Package store defines the record store contract the rest of the system is
// written against, plus its Postgres and in-memory implementations. Every
// mutation is a single atomic statement; no call spans a multi-record
// transaction, so concurrent readers may observe a store mid-maintenance.
package store

import (
	"context"
	"time"

	"github.com/david/hackathon-tracker/internal/models"
	"github.com/google/uuid"
)

// RecordStore is constructed once at process start and injected into the
// pipeline and the web handlers.
type RecordStore interface {
	// ListAll returns every record in the store.
	ListAll(ctx context.Context) ([]models.Hackathon, error)

	// Get returns the record with the given id, or (nil, nil) when absent.
	Get(ctx context.Context, id uuid.UUID) (*models.Hackathon, error)

	// FindDuplicate returns an existing record whose trimmed title matches
	// case-insensitively, or whose website_url matches exactly (URL matching
	// is skipped when websiteURL is empty). Returns (nil, nil) when no
	// record matches.
	FindDuplicate(ctx context.Context, title, websiteURL string) (*models.Hackathon, error)

	// InsertMany bulk-inserts records and returns how many were written.
	InsertMany(ctx context.Context, records []models.Hackathon) (int, error)

	// Update replaces the editable field set of one record and stamps
	// updated_at.
	Update(ctx context.Context, id uuid.UUID, patch models.EditablePatch, updatedAt time.Time) error

	// Delete removes a single record.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByIDs removes the given records and returns the deleted count.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, error)

	// DeleteEnded removes records with end_date earlier than today
	// (string comparison) excluding the TBD sentinel.
	DeleteEnded(ctx context.Context, today string) (int, error)

	// DeleteStaleTBD removes TBD records scraped before the cutoff.
	DeleteStaleTBD(ctx context.Context, cutoff time.Time) (int, error)

	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)

	// CountByPlatform groups live records by platform.
	CountByPlatform(ctx context.Context) (map[string]int, error)
}
