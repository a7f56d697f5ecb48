package web

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/hackathon-tracker/internal/ingest"
	"github.com/david/hackathon-tracker/internal/models"
	"github.com/david/hackathon-tracker/internal/scheduler"
	"github.com/david/hackathon-tracker/internal/store"
)

// Server serves the tracker UI and JSON API. Read routes run a defensive
// maintenance sweep first so expired records never reach a response; store
// failures degrade to empty results instead of error pages.
type Server struct {
	Store  store.RecordStore
	Runner *scheduler.Runner
	Echo   *echo.Echo
}

func NewServer(st store.RecordStore, runner *scheduler.Runner) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = r

	s := &Server{Store: st, Runner: runner, Echo: e}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	s.Echo.GET("/", s.handleIndex)
	s.Echo.GET("/hackathons/:id", s.handleDetail)
	s.Echo.GET("/hackathons/:id/edit", s.handleEditForm)
	s.Echo.POST("/hackathons/:id", s.handleUpdate)
	s.Echo.POST("/hackathons/:id/delete", s.handleDelete)
	s.Echo.GET("/hackathons/:id/search", s.handleSearchRedirect)

	s.Echo.GET("/api/hackathons", s.handleAPIList)
	s.Echo.POST("/api/scrape-now", s.handleScrapeNow)
	s.Echo.GET("/api/scrape-status", s.handleScrapeStatus)
	s.Echo.GET("/api/stats", s.handleStats)
}

func (s *Server) Start(addr string) error {
	return s.Echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// maintain sweeps expired records and duplicates before a read. Failures
// are logged and the read proceeds with whatever the store returns.
func (s *Server) maintain(c echo.Context, collapse bool) {
	ctx := c.Request().Context()
	maint := &ingest.Maintenance{Store: s.Store}
	if _, _, err := maint.Expire(ctx, time.Now().UTC()); err != nil {
		log.Printf("Expiry sweep failed: %v", err)
	}
	if !collapse {
		return
	}
	dedup := &ingest.Deduper{Store: s.Store}
	if _, err := dedup.Collapse(ctx); err != nil {
		log.Printf("Collapse sweep failed: %v", err)
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	s.maintain(c, true)

	records, err := s.Store.ListAll(c.Request().Context())
	if err != nil {
		log.Printf("List failed, rendering empty page: %v", err)
		records = nil
	}

	now := time.Now().UTC()
	for i := range records {
		records[i].ComputeDaysUntil(now)
	}
	// Open hackathons first, then soonest deadline; TBD entries last
	// within each tier.
	sort.SliceStable(records, func(i, j int) bool {
		oi, oj := records[i].IsOpen(), records[j].IsOpen()
		if oi != oj {
			return oi
		}
		return records[i].SortDate() < records[j].SortDate()
	})

	return c.Render(http.StatusOK, "index.html", map[string]interface{}{
		"Hackathons": records,
		"Count":      len(records),
	})
}

func (s *Server) lookup(c echo.Context) (*models.Hackathon, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, err
	}
	h, err := s.Store.Get(c.Request().Context(), id)
	if err != nil {
		log.Printf("Lookup %s failed: %v", id, err)
		return nil, err
	}
	if h == nil {
		return nil, nil
	}
	return h, nil
}

func (s *Server) handleDetail(c echo.Context) error {
	h, err := s.lookup(c)
	if err != nil || h == nil {
		return c.Redirect(http.StatusFound, "/")
	}
	h.ComputeDaysUntil(time.Now().UTC())
	return c.Render(http.StatusOK, "hackathon_detail.html", h)
}

func (s *Server) handleEditForm(c echo.Context) error {
	h, err := s.lookup(c)
	if err != nil || h == nil {
		return c.Redirect(http.StatusFound, "/")
	}
	return c.Render(http.StatusOK, "edit_hackathon.html", map[string]interface{}{
		"Hackathon":  h,
		"TagsJoined": strings.Join(h.Tags, ", "),
	})
}

func (s *Server) handleUpdate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	var tags []string
	for _, t := range strings.Split(c.FormValue("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	patch := models.EditablePatch{
		Title:                strings.TrimSpace(c.FormValue("title")),
		Description:          strings.TrimSpace(c.FormValue("description")),
		Organizer:            strings.TrimSpace(c.FormValue("organizer")),
		RegistrationDeadline: strings.TrimSpace(c.FormValue("registration_deadline")),
		EventDate:            strings.TrimSpace(c.FormValue("event_date")),
		PrizePool:            strings.TrimSpace(c.FormValue("prize_pool")),
		WebsiteURL:           strings.TrimSpace(c.FormValue("website_url")),
		Platform:             strings.TrimSpace(c.FormValue("platform")),
		Status:               strings.TrimSpace(c.FormValue("status")),
		Eligibility:          strings.TrimSpace(c.FormValue("eligibility")),
		Tags:                 tags,
	}

	if err := s.Store.Update(c.Request().Context(), id, patch, time.Now().UTC()); err != nil {
		log.Printf("Update %s failed: %v", id, err)
		return c.Redirect(http.StatusFound, fmt.Sprintf("/hackathons/%s/edit", id))
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/hackathons/%s", id))
}

func (s *Server) handleDelete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false, "error": "invalid id",
		})
	}
	if err := s.Store.Delete(c.Request().Context(), id); err != nil {
		log.Printf("Delete %s failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false, "error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// handleSearchRedirect sends the browser to a Google search for the
// hackathon's registration page.
func (s *Server) handleSearchRedirect(c echo.Context) error {
	h, err := s.lookup(c)
	if err != nil || h == nil {
		return c.Redirect(http.StatusFound, "/")
	}
	terms := []string{h.Title}
	if h.Platform != "" {
		terms = append(terms, h.Platform)
	}
	terms = append(terms, fmt.Sprintf("%d", time.Now().UTC().Year()), "hackathon registration")
	target := "https://www.google.com/search?q=" + url.QueryEscape(strings.Join(terms, " "))
	return c.Redirect(http.StatusFound, target)
}

func (s *Server) handleAPIList(c echo.Context) error {
	s.maintain(c, false)

	records, err := s.Store.ListAll(c.Request().Context())
	if err != nil {
		log.Printf("List failed, returning empty set: %v", err)
		records = []models.Hackathon{}
	}
	now := time.Now().UTC()
	for i := range records {
		records[i].ComputeDaysUntil(now)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SortDate() > records[j].SortDate()
	})
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":      len(records),
		"hackathons": records,
	})
}

func (s *Server) handleScrapeNow(c echo.Context) error {
	if s.Runner == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "scraping is not configured",
		})
	}
	job, ok := s.Runner.Trigger()
	if !ok {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "a scrape is already running",
			"job_id": job.ID,
		})
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Scrape started",
		"job_id":  job.ID,
		"poll":    "/api/scrape-status",
	})
}

func (s *Server) handleScrapeStatus(c echo.Context) error {
	if s.Runner == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "scraping is not configured",
		})
	}
	job := s.Runner.LastJob()
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no scrape has run yet"})
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleStats(c echo.Context) error {
	ctx := c.Request().Context()
	total, err := s.Store.CountAll(ctx)
	if err != nil {
		log.Printf("Stats count failed: %v", err)
	}
	open, err := s.Store.CountByStatus(ctx, "open")
	if err != nil {
		log.Printf("Stats open count failed: %v", err)
	}
	platforms, err := s.Store.CountByPlatform(ctx)
	if err != nil {
		log.Printf("Stats platform counts failed: %v", err)
		platforms = map[string]int{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_hackathons": total,
		"open_hackathons":  open,
		"platforms":        platforms,
		"last_updated":     time.Now().UTC().Format("2006-01-02"),
	})
}
