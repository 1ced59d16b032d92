package domain

import "sort"

// Stats are the headline ledger aggregates.
type Stats struct {
	TotalRecords        int
	DistinctIndividuals int
	DistinctDates       int
	AveragePerDay       float64 // TotalRecords / DistinctDates, 0 when there are no dates
}

// Count is one bucket of a group-by.
type Count struct {
	Key   string
	Count int
}

// ComputeStats derives Stats from records.
func ComputeStats(records []Record) Stats {
	ids := make(map[string]struct{})
	dates := make(map[string]struct{})
	for _, rec := range records {
		ids[rec.ID] = struct{}{}
		dates[rec.Date] = struct{}{}
	}
	s := Stats{
		TotalRecords:        len(records),
		DistinctIndividuals: len(ids),
		DistinctDates:       len(dates),
	}
	if s.DistinctDates > 0 {
		s.AveragePerDay = float64(s.TotalRecords) / float64(s.DistinctDates)
	}
	return s
}

// CountByMethod groups records by method, most frequent first.
// Ties are broken by method name.
func CountByMethod(records []Record) []Count {
	return countBy(records, func(r Record) string { return string(r.Method) }, byFrequency)
}

// CountByDate groups records by date in ascending date order.
func CountByDate(records []Record) []Count {
	return countBy(records, func(r Record) string { return r.Date }, byKey)
}

// CountByCategory groups individuals by category, most frequent first.
func CountByCategory(individuals []Individual) []Count {
	counts := make(map[string]int)
	for _, ind := range individuals {
		counts[ind.Category]++
	}
	return sortCounts(counts, byFrequency)
}

// MostCommonMethod returns the most frequent method. ok is false when
// records is empty.
func MostCommonMethod(records []Record) (method string, ok bool) {
	counts := CountByMethod(records)
	if len(counts) == 0 {
		return "", false
	}
	return counts[0].Key, true
}

// MostCommonCategory returns the most frequent category among individuals.
func MostCommonCategory(individuals []Individual) (category string, ok bool) {
	counts := CountByCategory(individuals)
	if len(counts) == 0 {
		return "", false
	}
	return counts[0].Key, true
}

// AttendanceRate is the share of records with status Present, as a
// percentage. It is 0 for no records.
func AttendanceRate(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, rec := range records {
		if rec.Status == StatusPresent {
			present++
		}
	}
	return float64(present) / float64(len(records)) * 100
}

// Recent returns the last n records in insertion order.
func Recent(records []Record, n int) []Record {
	if n <= 0 {
		return []Record{}
	}
	if n > len(records) {
		n = len(records)
	}
	out := make([]Record, n)
	copy(out, records[len(records)-n:])
	return out
}

type countOrder int

const (
	byFrequency countOrder = iota
	byKey
)

func countBy(records []Record, key func(Record) string, order countOrder) []Count {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[key(rec)]++
	}
	return sortCounts(counts, order)
}

func sortCounts(counts map[string]int, order countOrder) []Count {
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if order == byFrequency && out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
