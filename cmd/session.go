package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/evencheck/internal/attendance/application"
	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/config"
	"github.com/zjrosen/evencheck/internal/flags"
	"github.com/zjrosen/evencheck/internal/infrastructure/filestore"
	"github.com/zjrosen/evencheck/internal/infrastructure/sqlite"
	"github.com/zjrosen/evencheck/internal/log"
	"github.com/zjrosen/evencheck/internal/metrics"
	"github.com/zjrosen/evencheck/internal/presentation"
	"github.com/zjrosen/evencheck/internal/tracing"
)

// session is an opened service plus the collaborators a command needs.
type session struct {
	svc     *application.Service
	cfg     config.Config
	flags   *flags.Registry
	metrics *metrics.Metrics
	tracer  *tracing.Provider
	out     *presentation.Formatter
	stdout  io.Writer
	stderr  io.Writer

	files *filestore.Repository // file backend only
	db    *sqlite.Repository    // sqlite backend only
}

// openSession builds the repository for the configured backend and opens
// the service on it. Load warnings are printed to stderr.
func (a *app) openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg := a.cfg

	provider, err := tracing.NewProvider(cfg.Tracing.Provider())
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	s := &session{
		cfg:     cfg,
		flags:   flags.New(cfg.Flags),
		metrics: metrics.New(),
		tracer:  provider,
		out:     presentation.NewFormatter(cmd.OutOrStdout(), cfg.Output),
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
	}

	var repo domain.Repository
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			_ = provider.Shutdown(ctx)
			return nil, err
		}
		s.db = db
		repo = db
	default:
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			_ = provider.Shutdown(ctx)
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		s.files = filestore.New(cfg.LedgerPath(), cfg.RegistryPath())
		repo = s.files
	}

	s.svc = application.Open(ctx, repo,
		application.WithMetrics(s.metrics),
		application.WithTracer(provider.Tracer()),
		application.WithCacheTTL(cfg.Cache.TTL),
		application.WithDefaultCategory(cfg.DefaultCategory),
		application.WithDefaultMethod(cfg.DefaultMethod),
		application.WithStrictMethods(s.flags.Enabled(flags.FlagStrictMethods)),
	)
	for _, w := range s.svc.Warnings() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: "+w.Error())
	}
	log.Debug(log.CatCLI, "Session ready", "command", cmd.Name(), "backend", cfg.Backend,
		"session", s.svc.SessionID(), "tracing", provider.Enabled())
	return s, nil
}

// watchPaths lists the files whose change should trigger a reload.
func (s *session) watchPaths() []string {
	if s.db != nil {
		return []string{s.db.Path()}
	}
	return s.files.Paths()
}

// Close exports metrics when configured, reports copies kept of malformed
// data files, closes the service and flushes pending spans.
func (s *session) Close() error {
	if s.files != nil {
		for _, path := range s.files.Preserved() {
			_, _ = fmt.Fprintf(s.stderr, "Warning: the unreadable data file was copied to %s before being rewritten\n", path)
		}
	}
	if s.cfg.Metrics.Textfile != "" {
		if err := s.metrics.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
			log.ErrorErr(log.CatMetrics, "Metrics export failed", err)
		}
	}
	err := s.svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := s.tracer.Shutdown(ctx); shutdownErr != nil {
		log.ErrorErr(log.CatCLI, "Tracer shutdown failed", shutdownErr)
	}
	return err
}

// withSession opens a session, runs fn and closes the session.
func (a *app) withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := a.openSession(cmd)
	if err != nil {
		return err
	}
	runErr := fn(s)
	if closeErr := s.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	return runErr
}
