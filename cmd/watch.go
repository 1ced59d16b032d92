package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/log"
	"github.com/zjrosen/evencheck/internal/pubsub"
	"github.com/zjrosen/evencheck/internal/report"
	"github.com/zjrosen/evencheck/internal/scheduler"
	"github.com/zjrosen/evencheck/internal/watcher"
)

// Job ids used by the watch command.
const (
	jobMetrics = "metrics-export"
	jobCompact = "sqlite-compact"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload on data file changes and run scheduled jobs",
		Long: `Keep a session open, reload it whenever the data files change on disk and
print today's count after each reload.

Scheduled jobs:
  metrics-export   writes metrics.textfile every watch.metrics_interval
  sqlite-compact   runs VACUUM on watch.compact_cron (sqlite backend only)

Stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.withSession(cmd, func(s *session) error {
				return runWatch(ctx, s)
			})
		},
	}
}

func runWatch(ctx context.Context, s *session) error {
	wcfg := watcher.DefaultConfig(s.watchPaths()...)
	if s.cfg.Watch.Debounce > 0 {
		wcfg.DebounceDur = s.cfg.Watch.Debounce
	}
	w, err := watcher.New(wcfg)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	changes, err := w.Start()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	sched := scheduler.New()
	if err := addJobs(ctx, sched, s); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	for _, job := range sched.Jobs() {
		_ = s.out.Message("Scheduled %s (%s)", job.ID, job.Schedule)
	}

	events := s.svc.Subscribe(ctx)
	_ = s.out.Message("Watching %v (%d records today)", s.watchPaths(), len(s.svc.RecordsForDate(s.svc.Today())))

	for {
		select {
		case <-ctx.Done():
			log.Info(log.CatWatcher, "Watch stopped")
			return s.out.Message("Stopped")
		case <-changes:
			log.Debug(log.CatWatcher, "Data files changed, reloading")
			s.svc.Reload(ctx)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := printEvent(s, ev); err != nil {
				return err
			}
		}
	}
}

func addJobs(ctx context.Context, sched *scheduler.Scheduler, s *session) error {
	if path := s.cfg.Metrics.Textfile; path != "" && s.cfg.Watch.MetricsInterval > 0 {
		err := sched.AddInterval(jobMetrics, s.cfg.Watch.MetricsInterval, func() {
			if err := s.metrics.WriteTextfile(path); err != nil {
				log.ErrorErr(log.CatMetrics, "Scheduled metrics export failed", err)
			}
		})
		if err != nil {
			return err
		}
	}
	if s.db != nil && s.cfg.Watch.CompactCron != "" {
		err := sched.AddCron(jobCompact, s.cfg.Watch.CompactCron, func() {
			if err := s.db.Compact(ctx); err != nil {
				log.ErrorErr(log.CatSched, "Scheduled compaction failed", err)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func printEvent(s *session, ev pubsub.Event[domain.Change]) error {
	if ev.Type != pubsub.ReloadedEvent {
		return nil
	}
	snap := report.Today(s.svc)
	return s.out.Message("%s reloaded: %d records today, %d registered",
		ev.Timestamp.Format("15:04:05"), snap.Total, len(s.svc.List()))
}
