package domain

import "fmt"

type markKey struct {
	id   string
	date string
}

// Ledger is the insertion-ordered list of presence records.
// At most one record exists per (id, date).
type Ledger struct {
	records []Record
	marked  map[markKey]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{marked: make(map[markKey]struct{})}
}

// LedgerFrom rebuilds a ledger from stored records, preserving their order.
// Rows are kept as stored even if an older file holds a duplicate pair.
func LedgerFrom(records []Record) *Ledger {
	l := &Ledger{
		records: make([]Record, len(records)),
		marked:  make(map[markKey]struct{}, len(records)),
	}
	copy(l.records, records)
	l.reindex()
	return l
}

func (l *Ledger) reindex() {
	l.marked = make(map[markKey]struct{}, len(l.records))
	for _, rec := range l.records {
		l.marked[markKey{rec.ID, rec.Date}] = struct{}{}
	}
}

// Mark appends a Present record for id on date. If id already has a record
// on date it returns ErrAlreadyMarkedToday and the ledger is unchanged.
// A blank method is recorded as Manual.
func (l *Ledger) Mark(id, name string, method Method, date, clock string) (Record, error) {
	if l.Has(id, date) {
		return Record{}, fmt.Errorf("%s on %s: %w", id, date, ErrAlreadyMarkedToday)
	}
	if method == "" {
		method = MethodManual
	}
	rec := Record{
		ID:     id,
		Name:   name,
		Date:   date,
		Time:   clock,
		Method: method,
		Status: StatusPresent,
	}
	l.records = append(l.records, rec)
	l.marked[markKey{id, date}] = struct{}{}
	return rec, nil
}

// Has reports whether id has a record on date.
func (l *Ledger) Has(id, date string) bool {
	_, ok := l.marked[markKey{id, date}]
	return ok
}

// Records returns a copy of every record in insertion order.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// ForDate returns the records dated date, in insertion order.
func (l *Ledger) ForDate(date string) []Record {
	return l.filter(func(r Record) bool { return r.Date == date })
}

// ForIndividual returns every record for id, in insertion order.
func (l *Ledger) ForIndividual(id string) []Record {
	return l.filter(func(r Record) bool { return r.ID == id })
}

// InRange returns records with start <= date <= end. Dates compare as
// YYYY-MM-DD strings, so start > end yields nothing.
func (l *Ledger) InRange(start, end string) []Record {
	return l.filter(func(r Record) bool { return r.Date >= start && r.Date <= end })
}

// ClearForDate removes every record dated date and returns how many went.
func (l *Ledger) ClearForDate(date string) int {
	kept := l.records[:0:0]
	for _, rec := range l.records {
		if rec.Date != date {
			kept = append(kept, rec)
		}
	}
	removed := len(l.records) - len(kept)
	l.records = kept
	l.reindex()
	return removed
}

// ClearAll empties the ledger and returns how many records went.
func (l *Ledger) ClearAll() int {
	removed := len(l.records)
	l.records = nil
	l.marked = make(map[markKey]struct{})
	return removed
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	return LedgerFrom(l.records)
}

func (l *Ledger) filter(keep func(Record) bool) []Record {
	out := make([]Record, 0)
	for _, rec := range l.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
