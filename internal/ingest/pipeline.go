package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/david/hackathon-tracker/internal/models"
	"github.com/david/hackathon-tracker/internal/store"
)

// Searcher produces a raw free-text search response listing hackathons.
type Searcher interface {
	Search(ctx context.Context, limit int) (string, error)
}

// Outcome classifies how an ingestion cycle ended.
type Outcome string

const (
	// OutcomeCompleted means new records were committed.
	OutcomeCompleted Outcome = "completed"
	// OutcomeEmpty means the cycle ran but produced nothing new. This is
	// a normal result, not a failure.
	OutcomeEmpty Outcome = "empty"
	// OutcomeFetchFailed means the search backend failed on every attempt.
	OutcomeFetchFailed Outcome = "fetch_failed"
	// OutcomeStoreFailed means the store rejected an operation mid-cycle.
	OutcomeStoreFailed Outcome = "store_failed"
)

// CycleReport summarizes one ingestion cycle.
type CycleReport struct {
	Outcome           Outcome  `json:"outcome"`
	ExpiredRemoved    int      `json:"expired_removed"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	Candidates        int      `json:"candidates"`
	Skipped           int      `json:"skipped"`
	Inserted          int      `json:"inserted"`
	InsertedTitles    []string `json:"inserted_titles,omitempty"`
	Error             string   `json:"error,omitempty"`
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 10 * time.Second
)

// Pipeline runs the full ingestion cycle: maintenance, fetch with retry,
// extraction, validation, dedup, commit.
type Pipeline struct {
	Store  store.RecordStore
	Search Searcher
	// Limit caps how many records one cycle may commit.
	Limit int
	// MaxAttempts bounds search retries. Defaults to 3.
	MaxAttempts int
	// Backoff is the base retry delay, multiplied by the attempt number.
	// Zero disables the wait.
	Backoff time.Duration
}

func NewPipeline(st store.RecordStore, searcher Searcher, limit int) *Pipeline {
	return &Pipeline{
		Store:       st,
		Search:      searcher,
		Limit:       limit,
		MaxAttempts: defaultMaxAttempts,
		Backoff:     defaultBackoff,
	}
}

// RunCycle executes one ingestion cycle and always returns a report, never
// panics. A fetch failure aborts the cycle; maintenance failures are logged
// and the cycle continues, since stale leftovers are removed next time.
func (p *Pipeline) RunCycle(ctx context.Context) CycleReport {
	log.Printf("Starting ingestion cycle")
	var report CycleReport
	now := time.Now().UTC()

	maint := &Maintenance{Store: p.Store}
	expired, collapsed, err := maint.Run(ctx, now)
	report.ExpiredRemoved = expired
	report.DuplicatesRemoved = collapsed
	if err != nil {
		log.Printf("Maintenance failed, continuing cycle: %v", err)
	}

	raw, err := p.fetch(ctx)
	if err != nil {
		log.Printf("Search failed after %d attempts: %v", p.maxAttempts(), err)
		report.Outcome = OutcomeFetchFailed
		report.Error = err.Error()
		return report
	}

	payload, ok := ExtractArray(raw)
	if !ok {
		log.Printf("No hackathon data found in search response")
		report.Outcome = OutcomeEmpty
		return report
	}

	records := ValidateRecords(payload, p.Limit, now)
	report.Candidates = len(records)
	if len(records) == 0 {
		log.Printf("No valid hackathons in search response")
		report.Outcome = OutcomeEmpty
		return report
	}

	candidates := make([]models.Hackathon, 0, len(records))
	for _, h := range records {
		if strings.TrimSpace(h.Title) == "" || strings.TrimSpace(h.WebsiteURL) == "" {
			log.Printf("Skipping record with missing title or URL: %q", h.Title)
			report.Skipped++
			continue
		}
		candidates = append(candidates, h)
	}

	dedup := &Deduper{Store: p.Store}
	fresh, skipped, err := dedup.FilterNew(ctx, candidates)
	report.Skipped += skipped
	if err != nil {
		log.Printf("Dedup failed: %v", err)
		report.Outcome = OutcomeStoreFailed
		report.Error = err.Error()
		return report
	}

	if len(fresh) == 0 {
		log.Printf("No new hackathons, all %d already tracked", len(candidates))
		report.Outcome = OutcomeEmpty
		return report
	}

	inserted, err := p.Store.InsertMany(ctx, fresh)
	if err != nil {
		log.Printf("Commit failed: %v", err)
		report.Outcome = OutcomeStoreFailed
		report.Error = err.Error()
		return report
	}
	report.Inserted = inserted
	for _, h := range fresh {
		report.InsertedTitles = append(report.InsertedTitles, h.Title)
		log.Printf("Added: %s (ends %s)", h.Title, h.EndDate)
	}
	log.Printf("Ingestion cycle done: %d added, %d skipped", inserted, report.Skipped)
	report.Outcome = OutcomeCompleted
	return report
}

// fetch queries the search backend with linear backoff between attempts.
// The wait is cut short if the cycle context is cancelled.
func (p *Pipeline) fetch(ctx context.Context) (string, error) {
	attempts := p.maxAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := p.Search.Search(ctx, p.Limit)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		log.Printf("Search attempt %d/%d failed: %v", attempt, attempts, err)
		if attempt == attempts {
			break
		}
		wait := time.Duration(attempt) * p.backoff()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("search failed after %d attempts: %w", attempts, lastErr)
}

func (p *Pipeline) maxAttempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return defaultMaxAttempts
}

func (p *Pipeline) backoff() time.Duration {
	if p.Backoff > 0 {
		return p.Backoff
	}
	return 0
}
