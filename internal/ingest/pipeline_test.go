package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/david/hackathon-tracker/internal/models"
	"github.com/david/hackathon-tracker/internal/store"
)

type stubSearcher struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubSearcher) Search(ctx context.Context, limit int) (string, error) {
	i := s.calls
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var resp string
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	return resp, err
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestRunCycleCommitsNewRecords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	search := &stubSearcher{responses: []string{fmt.Sprintf(
		"```json\n[{\"title\": \"HackA\", \"end_date\": %[1]q, \"website_url\": \"https://a.example\", \"status\": \"open\"},\n"+
			"{\"title\": \"HackB\", \"end_date\": %[1]q, \"website_url\": \"https://b.example\", \"status\": \"upcoming\"}]\n```",
		futureDate(30),
	)}}

	p := &Pipeline{Store: st, Search: search, Limit: 15}
	report := p.RunCycle(ctx)

	if report.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s, want completed (err %s)", report.Outcome, report.Error)
	}
	if report.Inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", report.Inserted)
	}
	stored, err := st.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(stored))
	}
	for _, h := range stored {
		if h.Source != models.SourceGeminiSearch {
			t.Errorf("record %s has source %q", h.Title, h.Source)
		}
	}
}

func TestRunCycleSkipsKnownRecords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	existing := rec("HackA", "https://a.example", "", time.Now().UTC())
	if _, err := st.InsertMany(ctx, []models.Hackathon{existing}); err != nil {
		t.Fatal(err)
	}

	search := &stubSearcher{responses: []string{fmt.Sprintf(
		"[{\"title\": \"HackA\", \"end_date\": %q, \"website_url\": \"https://a.example\"}]",
		futureDate(10),
	)}}

	p := &Pipeline{Store: st, Search: search, Limit: 15}
	report := p.RunCycle(ctx)

	if report.Outcome != OutcomeEmpty {
		t.Errorf("outcome = %s, want empty", report.Outcome)
	}
	if report.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", report.Skipped)
	}
	n, _ := st.CountAll(ctx)
	if n != 1 {
		t.Errorf("store grew to %d records", n)
	}
}

func TestRunCycleRetriesFetch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	search := &stubSearcher{
		errs: []error{errors.New("quota"), errors.New("quota"), nil},
		responses: []string{"", "", fmt.Sprintf(
			"[{\"title\": \"HackA\", \"end_date\": %q, \"website_url\": \"https://a.example\"}]",
			futureDate(5),
		)},
	}

	p := &Pipeline{Store: st, Search: search, Limit: 15}
	report := p.RunCycle(ctx)

	if search.calls != 3 {
		t.Errorf("expected 3 search attempts, got %d", search.calls)
	}
	if report.Outcome != OutcomeCompleted {
		t.Errorf("outcome = %s, want completed", report.Outcome)
	}
}

func TestRunCycleFetchExhausted(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	search := &stubSearcher{errs: []error{
		errors.New("quota"), errors.New("quota"), errors.New("quota"),
	}}

	p := &Pipeline{Store: st, Search: search, Limit: 15}
	report := p.RunCycle(ctx)

	if search.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", search.calls)
	}
	if report.Outcome != OutcomeFetchFailed {
		t.Errorf("outcome = %s, want fetch_failed", report.Outcome)
	}
	if report.Error == "" {
		t.Error("expected error detail in report")
	}
	n, _ := st.CountAll(ctx)
	if n != 0 {
		t.Errorf("fetch failure must not write, store has %d records", n)
	}
}

func TestRunCycleRefusalResponse(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	search := &stubSearcher{responses: []string{
		"Sorry, I could not find any current hackathons matching your criteria.",
	}}

	p := &Pipeline{Store: st, Search: search, Limit: 15}
	report := p.RunCycle(ctx)

	if report.Outcome != OutcomeEmpty {
		t.Errorf("outcome = %s, want empty", report.Outcome)
	}
	n, _ := st.CountAll(ctx)
	if n != 0 {
		t.Errorf("expected empty store, got %d records", n)
	}
}

func TestRunCycleDropsIncompleteRecords(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	search := &stubSearcher{responses: []string{fmt.Sprintf(
		`[{"title": "", "end_date": %[1]q, "website_url": "https://nameless.example"},
		  {"title": "No URL Hack", "end_date": %[1]q, "website_url": ""},
		  {"title": "Complete Hack", "end_date": %[1]q, "website_url": "https://ok.example"}]`,
		futureDate(7),
	)}}

	p := &Pipeline{Store: st, Search: search, Limit: 15}
	report := p.RunCycle(ctx)

	if report.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s, want completed", report.Outcome)
	}
	if report.Inserted != 1 {
		t.Errorf("expected 1 inserted, got %d", report.Inserted)
	}
	if report.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", report.Skipped)
	}
}

func TestRunCycleRunsMaintenanceFirst(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	expired := rec("Old Hack", "https://old.example", "", time.Now().UTC())
	expired.EndDate = "2020-01-01"
	if _, err := st.InsertMany(ctx, []models.Hackathon{expired}); err != nil {
		t.Fatal(err)
	}

	search := &stubSearcher{responses: []string{"[]"}}
	p := &Pipeline{Store: st, Search: search, Limit: 15}
	report := p.RunCycle(ctx)

	if report.ExpiredRemoved != 1 {
		t.Errorf("expected 1 expired removal, got %d", report.ExpiredRemoved)
	}
	if report.Outcome != OutcomeEmpty {
		t.Errorf("outcome = %s, want empty", report.Outcome)
	}
}

func TestFetchBackoffHonorsCancel(t *testing.T) {
	st := store.NewMemoryStore()
	search := &stubSearcher{errs: []error{errors.New("quota"), errors.New("quota"), errors.New("quota")}}
	p := &Pipeline{Store: st, Search: search, Limit: 15, Backoff: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := p.fetch(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled fetch")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancel did not interrupt backoff, took %s", elapsed)
	}
}
