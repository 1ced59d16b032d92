package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

// Builder accumulates individuals and records and produces a snapshot.
type Builder struct {
	t           *testing.T
	individuals []individualData
	records     []recordData
}

// NewBuilder creates an empty builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithIndividual adds a registry entry.
func (b *Builder) WithIndividual(id string, opts ...IndividualOption) *Builder {
	ind := defaultIndividual(id)
	for _, opt := range opts {
		opt(&ind)
	}
	b.individuals = append(b.individuals, ind)
	return b
}

// WithRecord adds a Present record for id on date. The name defaults to the
// registered name when id was added with WithIndividual.
func (b *Builder) WithRecord(id, date string, opts ...RecordOption) *Builder {
	rec := recordData{id: id, date: date, time: "09:00:00", method: domain.MethodManual}
	for _, ind := range b.individuals {
		if ind.id == id {
			rec.name = ind.name
		}
	}
	if rec.name == "" {
		rec.name = "Individual " + id
	}
	for _, opt := range opts {
		opt(&rec)
	}
	b.records = append(b.records, rec)
	return b
}

// Build returns the accumulated snapshot. Records go through a Ledger so a
// duplicate (id, date) fails the test.
func (b *Builder) Build() domain.Snapshot {
	b.t.Helper()

	reg := domain.NewRegistry()
	for _, ind := range b.individuals {
		reg.AddOrReplace(ind.id, ind.name, ind.category, ind.registeredOn)
	}
	ledger := domain.NewLedger()
	for _, rec := range b.records {
		_, err := ledger.Mark(rec.id, rec.name, rec.method, rec.date, rec.time)
		require.NoError(b.t, err, "duplicate fixture record %s on %s", rec.id, rec.date)
	}
	return domain.Snapshot{Individuals: reg.List(), Records: ledger.Records()}
}

// BuildRepository returns a MemoryRepository preloaded with the snapshot.
func (b *Builder) BuildRepository() *MemoryRepository {
	b.t.Helper()
	return NewMemoryRepository(b.Build())
}
