package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateTBD is the sentinel end date for hackathons without a confirmed deadline.
const DateTBD = "TBD"

// DateMax sorts after every real YYYY-MM-DD date; TBD records cluster here.
const DateMax = "9999-12-31"

// SourceGeminiSearch tags records created by the ingestion pipeline, as
// opposed to manual edits.
const SourceGeminiSearch = "gemini_search"

// Hackathon is the unit of storage. end_date is kept as a string on purpose:
// it is either canonical "YYYY-MM-DD" (which orders correctly as text) or the
// "TBD" sentinel, and expiry/sorting rely on plain string comparison.
type Hackathon struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	EndDate     string    `json:"end_date"`
	WebsiteURL  string    `json:"website_url"`
	Platform    string    `json:"platform"`
	Status      string    `json:"status"` // open, upcoming, closed
	Description string    `json:"description"`
	PrizePool   string    `json:"prize_pool"`
	ScrapedAt   time.Time `json:"scraped_at"`
	Source      string    `json:"source"`

	// Fields below are only populated through manual edits.
	Organizer            string     `json:"organizer,omitempty"`
	RegistrationDeadline string     `json:"registration_deadline,omitempty"`
	EventDate            string     `json:"event_date,omitempty"`
	Eligibility          string     `json:"eligibility,omitempty"`
	Tags                 []string   `json:"tags,omitempty"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`

	// DaysUntilDeadline is derived for display; 999 when the end date is
	// TBD or unparsable. Never persisted.
	DaysUntilDeadline int `json:"days_until_deadline,omitempty"`
}

// EditablePatch is the fixed field set a manual edit may replace.
type EditablePatch struct {
	Title                string
	Description          string
	Organizer            string
	RegistrationDeadline string
	EventDate            string
	PrizePool            string
	WebsiteURL           string
	Platform             string
	Status               string
	Eligibility          string
	Tags                 []string
}

// SortDate returns the end date used for ordering, mapping TBD and empty
// values to DateMax so they sort last.
func (h Hackathon) SortDate() string {
	if h.EndDate == "" || h.EndDate == DateTBD {
		return DateMax
	}
	return h.EndDate
}

// IsOpen reports whether the record sorts into the top display tier.
func (h Hackathon) IsOpen() bool {
	return strings.EqualFold(strings.TrimSpace(h.Status), "open")
}

// ComputeDaysUntil fills DaysUntilDeadline relative to today (UTC date).
func (h *Hackathon) ComputeDaysUntil(now time.Time) {
	h.DaysUntilDeadline = 999
	if h.EndDate == "" || h.EndDate == DateTBD {
		return
	}
	end, err := time.Parse("2006-01-02", h.EndDate)
	if err != nil {
		return
	}
	today, err := time.Parse("2006-01-02", now.UTC().Format("2006-01-02"))
	if err != nil {
		return
	}
	h.DaysUntilDeadline = int(end.Sub(today).Hours() / 24)
}
