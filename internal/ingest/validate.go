package ingest

import (
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/david/hackathon-tracker/internal/models"
)

type rawRecord struct {
	Title       string `json:"title"`
	EndDate     string `json:"end_date"`
	WebsiteURL  string `json:"website_url"`
	Platform    string `json:"platform"`
	Status      string `json:"status"`
	Description string `json:"description"`
	PrizePool   string `json:"prize_pool"`
}

// ValidateRecords parses an extracted JSON array into hackathon records,
// dropping entries whose end date has already passed. Dates the model
// formatted oddly are kept as-is rather than lost: a long unparsable
// end_date is treated as plausibly valid and left for manual review.
// Records are stamped with the scrape time and source, sanitized, and
// returned sorted by end date descending (TBD entries first).
func ValidateRecords(payload string, limit int, now time.Time) []models.Hackathon {
	var raws []rawRecord
	if err := json.Unmarshal([]byte(payload), &raws); err != nil {
		log.Printf("Failed to parse search response as JSON: %v", err)
		return nil
	}

	if limit > 0 && len(raws) > limit {
		log.Printf("Search returned %d records, truncating to %d", len(raws), limit)
		raws = raws[:limit]
	}

	today := now.UTC().Format("2006-01-02")
	out := make([]models.Hackathon, 0, len(raws))
	for _, r := range raws {
		endDate, keep := validateEndDate(r.EndDate, today)
		if !keep {
			continue
		}
		out = append(out, models.Hackathon{
			ID:          uuid.New(),
			Title:       sanitizeText(r.Title),
			EndDate:     endDate,
			WebsiteURL:  strings.TrimSpace(r.WebsiteURL),
			Platform:    sanitizeText(r.Platform),
			Status:      sanitizeText(r.Status),
			Description: sanitizeText(r.Description),
			PrizePool:   sanitizeText(r.PrizePool),
			ScrapedAt:   now.UTC(),
			Source:      models.SourceGeminiSearch,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortDate() > out[j].SortDate()
	})
	return out
}

// validateEndDate decides whether a record survives date screening and
// returns the value to store. TBD and absent dates are kept unconditionally.
func validateEndDate(endDate, today string) (string, bool) {
	endDate = strings.TrimSpace(endDate)
	if endDate == "" || endDate == models.DateTBD {
		return models.DateTBD, true
	}

	head := endDate
	if len(head) > 10 {
		head = head[:10]
	}
	t, err := time.Parse("2006-01-02", head)
	if err != nil {
		// Lenient path: a long value is probably a real date in an
		// unexpected format. Short garbage is dropped.
		if len(endDate) >= 10 {
			return endDate, true
		}
		return "", false
	}

	canonical := t.Format("2006-01-02")
	if canonical < today {
		return "", false
	}
	return canonical, true
}
