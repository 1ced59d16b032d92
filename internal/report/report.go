// Package report composes read-only views over the registry and ledger.
// Nothing here mutates state; every function takes a Source and returns
// plain values ready for rendering or export.
package report

import (
	"fmt"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/csvutil"
)

// NotAvailable is shown when an aggregate has no data.
const NotAvailable = "N/A"

// RecentLimit is how many records Overview lists as recent activity.
const RecentLimit = 3

// Source is the read side of the attendance service.
type Source interface {
	Today() string
	Lookup(id string) (domain.Individual, bool)
	List() []domain.Individual
	Records() []domain.Record
	RecordsForDate(date string) []domain.Record
	RecordsForIndividual(id string) []domain.Record
	RecordsInRange(start, end string) []domain.Record
}

// TodaySnapshot is today's records with their aggregate counts.
type TodaySnapshot struct {
	Date             string
	Records          []domain.Record
	Total            int
	Unique           int
	MostCommonMethod string
}

// Today builds the snapshot for src.Today().
func Today(src Source) TodaySnapshot {
	date := src.Today()
	records := src.RecordsForDate(date)
	stats := domain.ComputeStats(records)

	method, ok := domain.MostCommonMethod(records)
	if !ok {
		method = NotAvailable
	}
	return TodaySnapshot{
		Date:             date,
		Records:          records,
		Total:            stats.TotalRecords,
		Unique:           stats.DistinctIndividuals,
		MostCommonMethod: method,
	}
}

// Detail is one individual with their full history.
type Detail struct {
	Individual domain.Individual
	Records    []domain.Record
	Total      int
	Rate       float64
	LastSeen   string
}

// Individual returns the detail for a registered id. Unregistered ids fail
// with domain.ErrNotFound even when they have records.
func Individual(src Source, id string) (Detail, error) {
	ind, ok := src.Lookup(id)
	if !ok {
		return Detail{}, fmt.Errorf("individual %s: %w", id, domain.ErrNotFound)
	}
	records := src.RecordsForIndividual(id)
	d := Detail{
		Individual: ind,
		Records:    records,
		Total:      len(records),
		Rate:       domain.AttendanceRate(records),
	}
	if len(records) > 0 {
		d.LastSeen = records[len(records)-1].Date
	}
	return d, nil
}

// RangeReport is the records in [Start, End] and the same rows as ledger CSV.
type RangeReport struct {
	Start   string
	End     string
	Records []domain.Record
	Stats   domain.Stats
	CSV     []byte
}

// Range reports records dated between start and end inclusive. Both bounds
// must be valid dates. A start after end yields an empty report.
func Range(src Source, start, end string) (RangeReport, error) {
	if !domain.IsValidDate(start) {
		return RangeReport{}, fmt.Errorf("start date %q: %w", start, domain.ErrInvalidInput)
	}
	if !domain.IsValidDate(end) {
		return RangeReport{}, fmt.Errorf("end date %q: %w", end, domain.ErrInvalidInput)
	}
	records := src.RecordsInRange(start, end)
	return RangeReport{
		Start:   start,
		End:     end,
		Records: records,
		Stats:   domain.ComputeStats(records),
		CSV:     csvutil.EncodeRecords(records),
	}, nil
}

// Overview is the dashboard summary of the whole dataset.
type Overview struct {
	Stats              domain.Stats
	Registered         int
	Rate               float64
	MostCommonMethod   string
	MostCommonCategory string
	ByMethod           []domain.Count
	ByDate             []domain.Count
	ByCategory         []domain.Count
	Recent             []domain.Record
}

// BuildOverview aggregates everything in src.
func BuildOverview(src Source) Overview {
	records := src.Records()
	individuals := src.List()

	method, ok := domain.MostCommonMethod(records)
	if !ok {
		method = NotAvailable
	}
	category, ok := domain.MostCommonCategory(individuals)
	if !ok {
		category = NotAvailable
	}
	return Overview{
		Stats:              domain.ComputeStats(records),
		Registered:         len(individuals),
		Rate:               domain.AttendanceRate(records),
		MostCommonMethod:   method,
		MostCommonCategory: category,
		ByMethod:           domain.CountByMethod(records),
		ByDate:             domain.CountByDate(records),
		ByCategory:         domain.CountByCategory(individuals),
		Recent:             domain.Recent(records, RecentLimit),
	}
}
