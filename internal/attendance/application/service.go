// Package application holds the attendance Service: the session object that
// owns the registry and ledger, persists every mutation before returning and
// publishes committed changes.
//
// Mutations are transactional. The service applies a change to copies of
// its state, persists the change and only then swaps the copies in. When
// persistence fails the in-memory state is left exactly as it was and the
// caller gets the *domain.StorageError.
package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/cachemanager"
	"github.com/zjrosen/evencheck/internal/log"
	"github.com/zjrosen/evencheck/internal/metrics"
	"github.com/zjrosen/evencheck/internal/pubsub"
	"github.com/zjrosen/evencheck/internal/report"
	"github.com/zjrosen/evencheck/internal/tracing"
)

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("service closed")

// Service is the attendance session. It is safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	repo     domain.Repository
	registry *domain.Registry
	ledger   *domain.Ledger
	warnings []error
	version  uint64
	closed   bool

	sessionID       string
	now             func() time.Time
	defaultCategory string
	defaultMethod   string
	strictMethods   bool
	cacheTTL        time.Duration

	validate  *validator.Validate
	broker    *pubsub.Broker[domain.Change]
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	overviews *cachemanager.ReadThroughCache[string, report.Overview, report.Source]
	cache     cachemanager.CacheManager[string, report.Overview]
}

// Open loads the persisted state from repo and returns a ready service.
// Unreadable or malformed resources load as empty and are reported by
// Warnings.
func Open(ctx context.Context, repo domain.Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		sessionID:     uuid.NewString(),
		now:           time.Now,
		defaultMethod: string(domain.MethodManual),
		cacheTTL:      cachemanager.DefaultExpiration,
		validate:      newValidator(),
		broker:        pubsub.NewBroker[domain.Change](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.tracer == nil {
		s.tracer = tracing.Noop().Tracer()
	}
	s.cache = cachemanager.NewInMemoryCacheManager[string, report.Overview](
		"overview", s.cacheTTL, cachemanager.DefaultCleanupInterval)
	s.overviews = cachemanager.NewReadThroughCache(s.cache,
		func(_ context.Context, src report.Source) (report.Overview, error) {
			return report.BuildOverview(src), nil
		}, s.cacheTTL <= 0)

	_ = tracing.Run(ctx, s.tracer, tracing.SpanLoad, func(ctx context.Context) error {
		s.load(ctx)
		return nil
	}, attribute.String(tracing.AttrSessionID, s.sessionID))

	log.Info(log.CatLedger, "Session opened",
		"session", s.sessionID,
		"individuals", s.registry.Len(),
		"records", s.ledger.Len(),
		"warnings", len(s.warnings))
	return s
}

// load replaces the state with what the repository holds. Caller holds the
// write lock or has exclusive access.
func (s *Service) load(ctx context.Context) {
	res := s.repo.Load(ctx)
	s.registry = domain.RegistryFrom(res.Individuals)
	s.ledger = domain.LedgerFrom(res.Records)
	s.warnings = res.Warnings
	for _, w := range res.Warnings {
		log.Warn(log.CatStore, "Loaded with warning", "session", s.sessionID, "warning", w)
		s.metrics.LoadWarnings.Inc()
	}
	s.version++
	s.metrics.SetSizes(s.registry.Len(), s.ledger.Len())
}

// SessionID identifies this session in logs and spans.
func (s *Service) SessionID() string {
	return s.sessionID
}

// Today is the current date per the service clock.
func (s *Service) Today() string {
	return domain.FormatDate(s.now())
}

// Version increases on every committed mutation and reload.
func (s *Service) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Warnings returns the problems reported by the last load.
func (s *Service) Warnings() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.warnings)
}

// Subscribe streams committed changes until ctx is cancelled.
func (s *Service) Subscribe(ctx context.Context) <-chan pubsub.Event[domain.Change] {
	return s.broker.Subscribe(ctx)
}

// AddOrReplace registers id, overwriting any existing entry.
func (s *Service) AddOrReplace(ctx context.Context, id, name, category string) (domain.Individual, error) {
	return s.register(ctx, id, name, category, true)
}

// AddIfAbsent registers id. It fails with domain.ErrDuplicateID when id is
// already registered and leaves that entry unchanged.
func (s *Service) AddIfAbsent(ctx context.Context, id, name, category string) (domain.Individual, error) {
	return s.register(ctx, id, name, category, false)
}

func (s *Service) register(ctx context.Context, id, name, category string, replace bool) (domain.Individual, error) {
	in := registration{
		ID:       strings.TrimSpace(id),
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
	}
	if err := s.check(in); err != nil {
		return domain.Individual{}, err
	}
	if in.Category == "" {
		in.Category = s.defaultCategory
	}

	var saved domain.Individual
	err := tracing.Run(ctx, s.tracer, tracing.SpanRegister, func(ctx context.Context) error {
		return s.commit(ctx, func(reg *domain.Registry, _ *domain.Ledger) (domain.Change, error) {
			_, existed := reg.Lookup(in.ID)
			if replace {
				saved = reg.AddOrReplace(in.ID, in.Name, in.Category, s.Today())
			} else {
				ind, err := reg.AddIfAbsent(in.ID, in.Name, in.Category, s.Today())
				if err != nil {
					return domain.Change{}, err
				}
				saved = ind
			}
			log.Info(log.CatRegistry, "Individual saved", "id", saved.ID, "replaced", existed, "session", s.sessionID)
			return domain.Change{Kind: domain.ChangeIndividualSaved, Individual: saved}, nil
		})
	}, attribute.String(tracing.AttrIndividualID, in.ID), attribute.String(tracing.AttrSessionID, s.sessionID))
	if err != nil {
		return domain.Individual{}, err
	}
	s.metrics.Registrations.Inc()
	return saved, nil
}

// Remove deletes id from the registry. Its records stay in the ledger.
func (s *Service) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	err := tracing.Run(ctx, s.tracer, tracing.SpanRemove, func(ctx context.Context) error {
		return s.commit(ctx, func(reg *domain.Registry, _ *domain.Ledger) (domain.Change, error) {
			if err := reg.Remove(id); err != nil {
				return domain.Change{}, err
			}
			log.Info(log.CatRegistry, "Individual removed", "id", id, "session", s.sessionID)
			return domain.Change{Kind: domain.ChangeIndividualRemoved, Individual: domain.Individual{ID: id}}, nil
		})
	}, attribute.String(tracing.AttrIndividualID, id))
	if err != nil {
		return err
	}
	s.metrics.Removals.Inc()
	return nil
}

// MarkPresent records id as present today. A blank name falls back to the
// registered name and a blank method to the default method. It fails with
// domain.ErrAlreadyMarkedToday when id already has a record today. Marking
// never registers id.
func (s *Service) MarkPresent(ctx context.Context, id, name, method string) (domain.Record, error) {
	in := mark{
		ID:     strings.TrimSpace(id),
		Name:   strings.TrimSpace(name),
		Method: strings.TrimSpace(method),
	}
	if in.Method == "" {
		in.Method = s.defaultMethod
	}
	if in.Name == "" {
		if ind, ok := s.Lookup(in.ID); ok {
			in.Name = ind.Name
		}
	}
	if err := s.check(in); err != nil {
		return domain.Record{}, err
	}
	if s.strictMethods && !domain.Method(in.Method).IsKnown() {
		return domain.Record{}, fmt.Errorf("%w: unknown method %q", domain.ErrInvalidInput, in.Method)
	}

	now := s.now()
	date, clock := domain.FormatDate(now), domain.FormatTime(now)

	var rec domain.Record
	err := tracing.Run(ctx, s.tracer, tracing.SpanMark, func(ctx context.Context) error {
		return s.commit(ctx, func(_ *domain.Registry, l *domain.Ledger) (domain.Change, error) {
			r, err := l.Mark(in.ID, in.Name, domain.Method(in.Method), date, clock)
			if err != nil {
				return domain.Change{}, err
			}
			rec = r
			return domain.Change{Kind: domain.ChangeRecordAdded, Record: r}, nil
		})
	},
		attribute.String(tracing.AttrIndividualID, in.ID),
		attribute.String(tracing.AttrMethod, in.Method),
		attribute.String(tracing.AttrDate, date),
	)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyMarkedToday) {
			s.metrics.MarksRejected.Inc()
			log.Debug(log.CatLedger, "Mark rejected", "id", in.ID, "date", date)
		}
		return domain.Record{}, err
	}
	s.metrics.ObserveMark(string(rec.Method))
	log.Info(log.CatLedger, "Marked present", "id", rec.ID, "date", rec.Date, "method", rec.Method, "session", s.sessionID)
	return rec, nil
}

// ClearForDate removes every record dated date and returns how many were
// removed. Removing nothing is not an error.
func (s *Service) ClearForDate(ctx context.Context, date string) (int, error) {
	date = strings.TrimSpace(date)
	if err := s.check(dateInput{Date: date}); err != nil {
		return 0, err
	}

	var removed int
	err := tracing.Run(ctx, s.tracer, tracing.SpanClearDate, func(ctx context.Context) error {
		return s.commit(ctx, func(_ *domain.Registry, l *domain.Ledger) (domain.Change, error) {
			removed = l.ClearForDate(date)
			return domain.Change{Kind: domain.ChangeRecordsCleared, Date: date, Count: removed}, nil
		})
	}, attribute.String(tracing.AttrDate, date))
	if err != nil {
		return 0, err
	}
	s.metrics.RecordsCleared.Add(float64(removed))
	log.Info(log.CatLedger, "Cleared date", "date", date, "removed", removed, "session", s.sessionID)
	return removed, nil
}

// ClearToday removes today's records.
func (s *Service) ClearToday(ctx context.Context) (int, error) {
	return s.ClearForDate(ctx, s.Today())
}

// ClearAll empties the ledger and returns how many records were removed.
func (s *Service) ClearAll(ctx context.Context) (int, error) {
	var removed int
	err := tracing.Run(ctx, s.tracer, tracing.SpanClearAll, func(ctx context.Context) error {
		return s.commit(ctx, func(_ *domain.Registry, l *domain.Ledger) (domain.Change, error) {
			removed = l.ClearAll()
			return domain.Change{Kind: domain.ChangeLedgerTruncated, Count: removed}, nil
		})
	})
	if err != nil {
		return 0, err
	}
	s.metrics.RecordsCleared.Add(float64(removed))
	log.Info(log.CatLedger, "Cleared ledger", "removed", removed, "session", s.sessionID)
	return removed, nil
}

// Reload discards the in-memory state and loads it again from the
// repository.
func (s *Service) Reload(ctx context.Context) {
	s.mu.Lock()
	s.load(ctx)
	s.mu.Unlock()

	s.cache.Flush(ctx)
	s.broker.Publish(pubsub.ReloadedEvent, domain.Change{})
	log.Info(log.CatLedger, "Session reloaded", "session", s.sessionID)
}

// Close releases the repository and ends every subscription. Further
// mutations fail with ErrClosed.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	dropped := s.broker.Dropped()
	s.broker.Close()
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("closing repository: %w", err)
	}
	log.Info(log.CatLedger, "Session closed", "session", s.sessionID, "dropped_events", dropped)
	return nil
}

// mutation applies one change to the given copies of the state.
type mutation func(reg *domain.Registry, l *domain.Ledger) (domain.Change, error)

// commit runs fn against copies of the state under the write lock, persists
// the resulting change and swaps the copies in. A change that touches no
// record or entry is not persisted.
func (s *Service) commit(ctx context.Context, fn mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	reg, ledger := s.registry.Clone(), s.ledger.Clone()
	change, err := fn(reg, ledger)
	if err != nil {
		return err
	}
	if isNoop(change) {
		return nil
	}

	if err := s.persist(ctx, change, reg, ledger); err != nil {
		log.ErrorErr(log.CatStore, "Persist failed, mutation rolled back", err,
			"kind", change.Kind, "session", s.sessionID)
		return err
	}

	s.registry, s.ledger = reg, ledger
	s.version++
	s.metrics.SetSizes(reg.Len(), ledger.Len())
	s.cache.Flush(ctx)
	s.broker.Publish(eventType(change.Kind), change)
	return nil
}

func (s *Service) persist(ctx context.Context, change domain.Change, reg *domain.Registry, ledger *domain.Ledger) error {
	return tracing.Run(ctx, s.tracer, tracing.SpanPersist, func(ctx context.Context) error {
		start := time.Now()
		var err error
		if j, ok := s.repo.(domain.Journal); ok {
			err = j.Apply(ctx, change)
		} else {
			err = s.repo.Flush(ctx, domain.Snapshot{Individuals: reg.List(), Records: ledger.Records()})
		}
		s.metrics.ObservePersist(start, err)
		return err
	}, attribute.String(tracing.AttrChangeKind, string(change.Kind)))
}

func isNoop(c domain.Change) bool {
	switch c.Kind {
	case domain.ChangeRecordsCleared, domain.ChangeLedgerTruncated:
		return c.Count == 0
	default:
		return false
	}
}

func eventType(kind domain.ChangeKind) pubsub.EventType {
	switch kind {
	case domain.ChangeRecordAdded:
		return pubsub.CreatedEvent
	case domain.ChangeIndividualSaved:
		return pubsub.UpdatedEvent
	default:
		return pubsub.DeletedEvent
	}
}
