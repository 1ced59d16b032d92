// Package scheduler runs the periodic jobs of the watch command on top of
// gocron. Jobs are keyed by a caller-chosen id and never overlap.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/zjrosen/evencheck/internal/log"
)

// JobInfo is a point-in-time view of a scheduled job.
type JobInfo struct {
	ID       string
	Schedule string
	LastRun  time.Time
	NextRun  time.Time
	Runs     int
}

type job struct {
	schedule string
	ref      *gocron.Job
}

// Scheduler owns a gocron scheduler running in UTC.
type Scheduler struct {
	mu      sync.RWMutex
	cron    *gocron.Scheduler
	jobs    map[string]*job
	running bool
}

// New creates a stopped scheduler.
func New() *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		cron: s,
		jobs: make(map[string]*job),
	}
}

// AddCron schedules task on a 5-field cron expression.
func (s *Scheduler) AddCron(id, expr string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job %s already scheduled", id)
	}
	ref, err := s.cron.Cron(expr).Do(s.wrap(id, task))
	if err != nil {
		return fmt.Errorf("scheduling %s with %q: %w", id, expr, err)
	}
	s.jobs[id] = &job{schedule: expr, ref: ref}
	log.Info(log.CatSched, "Job added", "job", id, "cron", expr, "next_run", ref.NextRun().Format(time.RFC3339))
	return nil
}

// AddInterval schedules task every interval, starting when the scheduler
// starts.
func (s *Scheduler) AddInterval(id string, interval time.Duration, task func()) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", id, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job %s already scheduled", id)
	}
	ref, err := s.cron.Every(interval).Do(s.wrap(id, task))
	if err != nil {
		return fmt.Errorf("scheduling %s every %s: %w", id, interval, err)
	}
	s.jobs[id] = &job{schedule: "every " + interval.String(), ref: ref}
	log.Info(log.CatSched, "Job added", "job", id, "interval", interval)
	return nil
}

func (s *Scheduler) wrap(id string, task func()) func() {
	return func() {
		start := time.Now()
		log.Debug(log.CatSched, "Job executing", "job", id)
		task()
		log.Debug(log.CatSched, "Job finished", "job", id, "took", time.Since(start))
	}
}

// Jobs lists scheduled jobs sorted by id.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for id, j := range s.jobs {
		out = append(out, JobInfo{
			ID:       id,
			Schedule: j.schedule,
			LastRun:  j.ref.LastRun(),
			NextRun:  j.ref.NextRun(),
			Runs:     j.ref.RunCount(),
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Start runs jobs in the background. Interval jobs fire immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.cron.StartAsync()
	s.running = true
	log.Info(log.CatSched, "Scheduler started", "jobs", len(s.jobs))
}

// Stop halts the scheduler. Safe to call when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	log.Info(log.CatSched, "Scheduler stopped")
}

// ValidateCron reports whether expr parses as a 5-field cron expression.
func ValidateCron(expr string) error {
	_, err := gocron.NewScheduler(time.UTC).Cron(expr).Do(func() {})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
