package ingest

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/david/hackathon-tracker/internal/models"
)

func TestValidateEndDate(t *testing.T) {
	today := "2026-09-01"

	tests := []struct {
		name     string
		endDate  string
		expected string
		keep     bool
	}{
		{"Future date kept", "2026-12-31", "2026-12-31", true},
		{"Today kept", "2026-09-01", "2026-09-01", true},
		{"Past date dropped", "2026-08-31", "", false},
		{"TBD kept", "TBD", "TBD", true},
		{"Absent kept as TBD", "", "TBD", true},
		{"Timestamp prefix parsed", "2026-12-31T23:59:59Z", "2026-12-31", true},
		{"Long unparsable kept verbatim", "December 31st, 2026", "December 31st, 2026", true},
		{"Short garbage dropped", "soon", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, keep := validateEndDate(tt.endDate, today)
			if keep != tt.keep {
				t.Fatalf("keep = %v, want %v", keep, tt.keep)
			}
			if keep && got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestValidateRecords(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	payload := `[
		{"title": "HackA", "end_date": "2026-10-01", "website_url": "https://a.example", "status": "open"},
		{"title": "Expired", "end_date": "2026-01-01", "website_url": "https://old.example"},
		{"title": "HackB", "end_date": "TBD", "website_url": "https://b.example"},
		{"title": "HackC", "end_date": "2026-12-01", "website_url": "https://c.example"}
	]`

	records := ValidateRecords(payload, 15, now)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// TBD sorts as far-future, so it leads the descending order.
	order := []string{"HackB", "HackC", "HackA"}
	for i, want := range order {
		if records[i].Title != want {
			t.Errorf("position %d: expected %s, got %s", i, want, records[i].Title)
		}
	}

	for _, r := range records {
		if r.Source != models.SourceGeminiSearch {
			t.Errorf("record %s missing source stamp, got %q", r.Title, r.Source)
		}
		if !r.ScrapedAt.Equal(now) {
			t.Errorf("record %s not stamped with scrape time", r.Title)
		}
		if r.ID == uuid.Nil {
			t.Errorf("record %s has zero ID", r.Title)
		}
	}
}

func TestValidateRecordsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"Not JSON", "this is not json"},
		{"Object instead of array", `{"title": "HackA"}`},
		{"Empty array", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateRecords(tt.payload, 15, time.Now()); len(got) != 0 {
				t.Errorf("expected no records, got %d", len(got))
			}
		})
	}
}

func TestValidateRecordsTruncates(t *testing.T) {
	payload := `[
		{"title": "A", "end_date": "TBD"},
		{"title": "B", "end_date": "TBD"},
		{"title": "C", "end_date": "TBD"}
	]`
	records := ValidateRecords(payload, 2, time.Now())
	if len(records) != 2 {
		t.Errorf("expected 2 records after truncation, got %d", len(records))
	}
}

func TestValidateRecordsSanitizes(t *testing.T) {
	payload := `[{"title": "<b>HackA</b>", "end_date": "TBD", "description": "Win <i>big</i>"}]`
	records := ValidateRecords(payload, 15, time.Now())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Title != "HackA" {
		t.Errorf("title not sanitized: %q", records[0].Title)
	}
	if records[0].Description != "Win big" {
		t.Errorf("description not sanitized: %q", records[0].Description)
	}
}
