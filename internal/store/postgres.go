package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/david/hackathon-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements RecordStore on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const selectCols = `id, title, end_date, website_url, platform, status, description,
	prize_pool, scraped_at, source, organizer, registration_deadline, event_date,
	eligibility, tags, updated_at`

func scanHackathon(scan func(dest ...interface{}) error) (models.Hackathon, error) {
	var h models.Hackathon
	var updatedAt *time.Time

	err := scan(
		&h.ID, &h.Title, &h.EndDate, &h.WebsiteURL, &h.Platform, &h.Status, &h.Description,
		&h.PrizePool, &h.ScrapedAt, &h.Source, &h.Organizer, &h.RegistrationDeadline, &h.EventDate,
		&h.Eligibility, &h.Tags, &updatedAt,
	)
	if err != nil {
		return h, err
	}
	h.UpdatedAt = updatedAt
	return h, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Hackathon, error) {
	sql := fmt.Sprintf("SELECT %s FROM hackathons ORDER BY scraped_at ASC, id ASC", selectCols)
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	var records []models.Hackathon
	for rows.Next() {
		h, err := scanHackathon(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		records = append(records, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Hackathon, error) {
	sql := fmt.Sprintf("SELECT %s FROM hackathons WHERE id = $1", selectCols)
	row := s.pool.QueryRow(ctx, sql, id)

	h, err := scanHackathon(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	return &h, nil
}

func (s *PostgresStore) FindDuplicate(ctx context.Context, title, websiteURL string) (*models.Hackathon, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM hackathons
		WHERE lower(btrim(title)) = lower(btrim($1))
		   OR ($2 <> '' AND website_url = $2)
		LIMIT 1
	`, selectCols)
	row := s.pool.QueryRow(ctx, sql, title, websiteURL)

	h, err := scanHackathon(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup failed: %w", err)
	}
	return &h, nil
}

func (s *PostgresStore) InsertMany(ctx context.Context, records []models.Hackathon) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]interface{}, 0, len(records))
	for _, h := range records {
		if h.ID == uuid.Nil {
			h.ID = uuid.New()
		}
		if h.Tags == nil {
			h.Tags = []string{}
		}
		rows = append(rows, []interface{}{
			h.ID, h.Title, h.EndDate, h.WebsiteURL, h.Platform, h.Status, h.Description,
			h.PrizePool, h.ScrapedAt, h.Source, h.Organizer, h.RegistrationDeadline,
			h.EventDate, h.Eligibility, h.Tags, h.UpdatedAt,
		})
	}

	copied, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"hackathons"},
		[]string{"id", "title", "end_date", "website_url", "platform", "status", "description",
			"prize_pool", "scraped_at", "source", "organizer", "registration_deadline",
			"event_date", "eligibility", "tags", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk insert failed: %w", err)
	}
	return int(copied), nil
}

func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, patch models.EditablePatch, updatedAt time.Time) error {
	tags := patch.Tags
	if tags == nil {
		tags = []string{}
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE hackathons SET
			title = $1, description = $2, organizer = $3, registration_deadline = $4,
			event_date = $5, prize_pool = $6, website_url = $7, platform = $8,
			status = $9, eligibility = $10, tags = $11, updated_at = $12
		WHERE id = $13
	`, patch.Title, patch.Description, patch.Organizer, patch.RegistrationDeadline,
		patch.EventDate, patch.PrizePool, patch.WebsiteURL, patch.Platform,
		patch.Status, patch.Eligibility, tags, updatedAt, id)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update failed: no record with id %s", id)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM hackathons WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM hackathons WHERE id = ANY($1)", ids)
	if err != nil {
		return 0, fmt.Errorf("delete-many failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DeleteEnded(ctx context.Context, today string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM hackathons WHERE end_date < $1 AND end_date <> $2",
		today, models.DateTBD)
	if err != nil {
		return 0, fmt.Errorf("expiry delete failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) DeleteStaleTBD(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM hackathons WHERE end_date = $1 AND scraped_at < $2",
		models.DateTBD, cutoff)
	if err != nil {
		return 0, fmt.Errorf("stale TBD delete failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM hackathons").Scan(&total); err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM hackathons WHERE status = $1", status,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("status count failed: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountByPlatform(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT platform, COUNT(*) FROM hackathons GROUP BY platform")
	if err != nil {
		return nil, fmt.Errorf("platform grouping failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("platform scan failed: %w", err)
		}
		counts[platform] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("platform rows iteration failed: %w", err)
	}
	return counts, nil
}
