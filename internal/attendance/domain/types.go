// Package domain is the attendance core: the registry of individuals, the
// ledger of presence records, the pure aggregates over them and the ports the
// persistence adapters implement.
//
// Nothing here touches the clock, the filesystem or a database. Callers pass
// in the current date and time as formatted strings so every operation is
// deterministic under test.
package domain

import (
	"strings"
	"time"
)

// Date and time layouts used in records and on disk.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Category values. DefaultCategory is applied on registration when none is
// given; UnspecifiedCategory is what a stored entry without one reads as.
const (
	DefaultCategory     = "General"
	UnspecifiedCategory = "Not Specified"
)

// Method is how presence was captured. The set is open: any non-empty text is
// accepted and the constants below are only the values the front-end offers.
type Method string

const (
	MethodManual            Method = "Manual"
	MethodQRCode            Method = "QR Code"
	MethodBiometric         Method = "Biometric"
	MethodFacialRecognition Method = "Facial Recognition"
)

// KnownMethods lists the methods offered by default, in display order.
func KnownMethods() []Method {
	return []Method{MethodManual, MethodQRCode, MethodBiometric, MethodFacialRecognition}
}

// IsKnown reports whether m is one of KnownMethods.
func (m Method) IsKnown() bool {
	for _, k := range KnownMethods() {
		if m == k {
			return true
		}
	}
	return false
}

// Status of a record. Only presence is ever recorded.
type Status string

const StatusPresent Status = "Present"

// Individual is a registry entry.
type Individual struct {
	ID           string
	Name         string
	Category     string
	RegisteredOn string
}

// Record is one presence event. Name is the display name at mark time and
// is never rewritten when the registry changes.
type Record struct {
	ID     string
	Name   string
	Date   string
	Time   string
	Method Method
	Status Status
}

// FormatDate renders t as YYYY-MM-DD in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders t as HH:MM:SS (24h) in t's location.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// normalizeCategory trims c and substitutes DefaultCategory when blank.
func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultCategory
	}
	return c
}
