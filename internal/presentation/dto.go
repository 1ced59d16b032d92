package presentation

import (
	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/report"
)

// IndividualDTO is a registry entry for output. Field names follow the
// registry file.
type IndividualDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	AddedDate  string `json:"added_date"`
}

// RecordDTO is a ledger record for output.
type RecordDTO struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Method    string `json:"method"`
	Status    string `json:"status"`
}

// CountDTO is one group-by bucket.
type CountDTO struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// StatsDTO mirrors domain.Stats.
type StatsDTO struct {
	TotalRecords        int     `json:"total_records"`
	DistinctIndividuals int     `json:"distinct_individuals"`
	DistinctDates       int     `json:"distinct_dates"`
	AveragePerDay       float64 `json:"average_per_day"`
}

// TodayDTO is report.TodaySnapshot for output.
type TodayDTO struct {
	Date             string      `json:"date"`
	Total            int         `json:"total"`
	Unique           int         `json:"unique_individuals"`
	MostCommonMethod string      `json:"most_common_method"`
	Records          []RecordDTO `json:"records"`
}

// DetailDTO is report.Detail for output.
type DetailDTO struct {
	Individual     IndividualDTO `json:"individual"`
	Total          int           `json:"total"`
	AttendanceRate float64       `json:"attendance_rate"`
	LastSeen       string        `json:"last_seen,omitempty"`
	Records        []RecordDTO   `json:"records"`
}

// RangeDTO is report.RangeReport for output.
type RangeDTO struct {
	Start   string      `json:"start"`
	End     string      `json:"end"`
	Stats   StatsDTO    `json:"stats"`
	Records []RecordDTO `json:"records"`
}

// OverviewDTO is report.Overview for output.
type OverviewDTO struct {
	Stats              StatsDTO    `json:"stats"`
	Registered         int         `json:"registered"`
	AttendanceRate     float64     `json:"attendance_rate"`
	MostCommonMethod   string      `json:"most_common_method"`
	MostCommonCategory string      `json:"most_common_department"`
	ByMethod           []CountDTO  `json:"by_method"`
	ByDate             []CountDTO  `json:"by_date"`
	ByCategory         []CountDTO  `json:"by_department"`
	Recent             []RecordDTO `json:"recent"`
}

// FromIndividual converts a registry entry.
func FromIndividual(ind domain.Individual) IndividualDTO {
	return IndividualDTO{
		ID:         ind.ID,
		Name:       ind.Name,
		Department: ind.Category,
		AddedDate:  ind.RegisteredOn,
	}
}

// FromIndividuals converts registry entries. The result is never nil.
func FromIndividuals(individuals []domain.Individual) []IndividualDTO {
	dtos := make([]IndividualDTO, len(individuals))
	for i, ind := range individuals {
		dtos[i] = FromIndividual(ind)
	}
	return dtos
}

// FromRecord converts a ledger record.
func FromRecord(rec domain.Record) RecordDTO {
	return RecordDTO{
		StudentID: rec.ID,
		Name:      rec.Name,
		Date:      rec.Date,
		Time:      rec.Time,
		Method:    string(rec.Method),
		Status:    string(rec.Status),
	}
}

// FromRecords converts ledger records. The result is never nil.
func FromRecords(records []domain.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = FromRecord(rec)
	}
	return dtos
}

func fromCounts(counts []domain.Count) []CountDTO {
	dtos := make([]CountDTO, len(counts))
	for i, c := range counts {
		dtos[i] = CountDTO{Key: c.Key, Count: c.Count}
	}
	return dtos
}

func fromStats(s domain.Stats) StatsDTO {
	return StatsDTO{
		TotalRecords:        s.TotalRecords,
		DistinctIndividuals: s.DistinctIndividuals,
		DistinctDates:       s.DistinctDates,
		AveragePerDay:       s.AveragePerDay,
	}
}

// FromToday converts a today snapshot.
func FromToday(s report.TodaySnapshot) TodayDTO {
	return TodayDTO{
		Date:             s.Date,
		Total:            s.Total,
		Unique:           s.Unique,
		MostCommonMethod: s.MostCommonMethod,
		Records:          FromRecords(s.Records),
	}
}

// FromDetail converts an individual detail.
func FromDetail(d report.Detail) DetailDTO {
	return DetailDTO{
		Individual:     FromIndividual(d.Individual),
		Total:          d.Total,
		AttendanceRate: d.Rate,
		LastSeen:       d.LastSeen,
		Records:        FromRecords(d.Records),
	}
}

// FromRange converts a range report.
func FromRange(r report.RangeReport) RangeDTO {
	return RangeDTO{
		Start:   r.Start,
		End:     r.End,
		Stats:   fromStats(r.Stats),
		Records: FromRecords(r.Records),
	}
}

// FromOverview converts an overview.
func FromOverview(o report.Overview) OverviewDTO {
	return OverviewDTO{
		Stats:              fromStats(o.Stats),
		Registered:         o.Registered,
		AttendanceRate:     o.Rate,
		MostCommonMethod:   o.MostCommonMethod,
		MostCommonCategory: o.MostCommonCategory,
		ByMethod:           fromCounts(o.ByMethod),
		ByDate:             fromCounts(o.ByDate),
		ByCategory:         fromCounts(o.ByCategory),
		Recent:             FromRecords(o.Recent),
	}
}
