package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/david/hackathon-tracker/internal/ingest"
)

// Job is the observable record of one scrape run.
type Job struct {
	ID        string              `json:"id"`
	Trigger   string              `json:"trigger"` // startup, scheduled, manual
	Status    string              `json:"status"`  // running, completed, failed
	StartedAt time.Time           `json:"started_at"`
	EndedAt   time.Time           `json:"ended_at,omitempty"`
	Report    *ingest.CycleReport `json:"report,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// Runner owns the periodic scrape schedule and the manual-trigger slot.
// Manual triggers are rejected while a manual run is in flight; the cron
// schedule keeps firing regardless, matching the store's tolerance for
// overlapping cycles.
type Runner struct {
	pipeline *ingest.Pipeline
	every    time.Duration
	timeout  time.Duration
	cron     *cron.Cron

	jobMu   sync.Mutex
	lastJob *Job
}

func New(pipeline *ingest.Pipeline, every, timeout time.Duration) *Runner {
	return &Runner{
		pipeline: pipeline,
		every:    every,
		timeout:  timeout,
		cron:     cron.New(),
	}
}

// Start registers the periodic schedule, kicks off the startup scrape in
// the background, and begins ticking.
func (r *Runner) Start() error {
	spec := fmt.Sprintf("@every %s", r.every)
	if _, err := r.cron.AddFunc(spec, func() {
		r.run("scheduled")
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	go r.run("startup")
	r.cron.Start()
	log.Printf("Scheduler started, scraping every %s", r.every)
	return nil
}

// Stop halts the schedule. Runs already in flight finish on their own.
func (r *Runner) Stop() {
	r.cron.Stop()
}

// Trigger starts a manual run in the background. Returns the job record
// and false when a run is already occupying the slot.
func (r *Runner) Trigger() (*Job, bool) {
	r.jobMu.Lock()
	if r.lastJob != nil && r.lastJob.Status == "running" {
		job := r.lastJob
		r.jobMu.Unlock()
		return job, false
	}
	r.jobMu.Unlock()

	job := r.begin("manual")
	go func() {
		r.finish(job, r.runCycle())
	}()
	return job, true
}

// LastJob returns a copy of the most recent job record, or nil if no run
// has happened yet.
func (r *Runner) LastJob() *Job {
	r.jobMu.Lock()
	defer r.jobMu.Unlock()
	if r.lastJob == nil {
		return nil
	}
	copied := *r.lastJob
	return &copied
}

func (r *Runner) run(trigger string) {
	job := r.begin(trigger)
	r.finish(job, r.runCycle())
}

func (r *Runner) begin(trigger string) *Job {
	job := &Job{
		ID:        uuid.New().String()[:8],
		Trigger:   trigger,
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	r.jobMu.Lock()
	r.lastJob = job
	r.jobMu.Unlock()
	log.Printf("[scrape-job %s] started (%s)", job.ID, trigger)
	return job
}

// runCycle executes one pipeline cycle under the configured deadline.
func (r *Runner) runCycle() ingest.CycleReport {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.pipeline.RunCycle(ctx)
}

func (r *Runner) finish(job *Job, report ingest.CycleReport) {
	r.jobMu.Lock()
	defer r.jobMu.Unlock()
	job.EndedAt = time.Now().UTC()
	job.Report = &report
	if report.Outcome == ingest.OutcomeFetchFailed || report.Outcome == ingest.OutcomeStoreFailed {
		job.Status = "failed"
		job.Error = report.Error
		log.Printf("[scrape-job %s] failed: %s", job.ID, report.Error)
		return
	}
	job.Status = "completed"
	log.Printf("[scrape-job %s] completed: %d added", job.ID, report.Inserted)
}
