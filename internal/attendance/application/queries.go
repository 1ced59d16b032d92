package application

import (
	"context"
	"fmt"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/report"
	"github.com/zjrosen/evencheck/internal/tracing"
)

var _ report.Source = (*Service)(nil)

// Lookup returns the registry entry for id.
func (s *Service) Lookup(id string) (domain.Individual, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Lookup(id)
}

// List returns every registry entry sorted by id.
func (s *Service) List() []domain.Individual {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.List()
}

// Search matches term against ids and names, case-insensitively.
func (s *Service) Search(term string) []domain.Individual {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Search(term)
}

// Records returns every ledger record in insertion order.
func (s *Service) Records() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Records()
}

func (s *Service) RecordsForDate(date string) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.ForDate(date)
}

func (s *Service) RecordsForIndividual(id string) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.ForIndividual(id)
}

// RecordsInRange returns records dated start through end inclusive.
func (s *Service) RecordsInRange(start, end string) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.InRange(start, end)
}

// Overview returns the dataset summary, cached per state version.
func (s *Service) Overview(ctx context.Context) (report.Overview, error) {
	key := fmt.Sprintf("overview:%d", s.Version())
	var o report.Overview
	err := tracing.Run(ctx, s.tracer, tracing.SpanReport, func(ctx context.Context) error {
		var err error
		o, err = s.overviews.Get(ctx, key, s, s.cacheTTL)
		return err
	})
	return o, err
}
