package search

import (
	"fmt"
	"strings"
	"time"
)

// BuildPrompt renders the search prompt for a given capture time and result
// limit. The prompt pins today's date so the model filters out finished
// events itself; the validator re-checks anyway.
func BuildPrompt(cfg *QueryConfig, now time.Time, limit int) string {
	today := now.UTC().Format("2006-01-02")
	month := now.UTC().Format("January 2006")
	year := now.UTC().Year()

	query := strings.TrimSpace(cfg.Query)
	if query == "" {
		query = "latest hackathons"
	}
	query = fmt.Sprintf("%s %d %d %s", query, year, year+1, strings.Join(cfg.Platforms, " "))

	return fmt.Sprintf(`TODAY'S DATE: %s (%s)

Search for the top %d most POPULAR and CURRENTLY ACTIVE/UPCOMING hackathons happening from NOW (%s) onwards.
Focus on major platforms: %s

SEARCH FOR: %s

MANDATORY REQUIREMENTS:
1. Find hackathons with registration deadlines AFTER %s
2. Include hackathons happening in %d and %d
3. Get COMPLETE and VERIFIED registration URLs (must start with https://)
4. Focus on popular hackathons with good prize pools
5. Include both ongoing (registration open) and upcoming hackathons

Return ONLY a valid JSON array with this EXACT format (MAXIMUM %d hackathons):
[
    {
        "title": "Full Official Hackathon Name",
        "end_date": "YYYY-MM-DD",
        "website_url": "https://complete-working-url.com/hackathon-page",
        "platform": "%s/other",
        "status": "open",
        "description": "Comprehensive description including themes, tracks, and key details (2-3 sentences)",
        "prize_pool": "$10,000 or TBD"
    }
]

CRITICAL VALIDATION:
- ALL end_date values MUST be AFTER %s
- ALL website_url values MUST be complete URLs with https://
- Focus on VERIFIED hackathons from official platforms
- Include diverse hackathons (%s)
- NO expired or past hackathons

Return ONLY the JSON array, absolutely no markdown, no explanations, no extra text.`,
		today, month,
		limit, month,
		strings.Join(cfg.PlatformSites, ", "),
		query,
		today,
		year, year+1,
		limit,
		strings.Join(cfg.Platforms, "/"),
		today,
		strings.Join(cfg.FocusAreas, ", "),
	)
}
