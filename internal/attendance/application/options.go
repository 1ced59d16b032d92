package application

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/evencheck/internal/metrics"
)

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of the current date and time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics sets the collectors the service updates.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer sets the tracer used for mutation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithCacheTTL sets how long an overview stays cached. Zero disables the
// cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// WithDefaultCategory sets the category applied when registration omits one.
func WithDefaultCategory(category string) Option {
	return func(s *Service) { s.defaultCategory = category }
}

// WithDefaultMethod sets the method recorded when a mark omits one.
func WithDefaultMethod(method string) Option {
	return func(s *Service) { s.defaultMethod = method }
}

// WithStrictMethods rejects marks whose method is not a known method.
func WithStrictMethods(strict bool) Option {
	return func(s *Service) { s.strictMethods = strict }
}
