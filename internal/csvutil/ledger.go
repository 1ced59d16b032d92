// Package csvutil reads and writes the ledger's tabular form and the
// students list export.
package csvutil

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

// LedgerHeader is the fixed column contract of the ledger file.
var LedgerHeader = []string{"StudentID", "Name", "Date", "Time", "Method", "Status"}

// ErrUnrecognizedHeader is returned when the first row names none of the
// ledger columns.
var ErrUnrecognizedHeader = errors.New("header has no ledger columns")

const (
	colID = iota
	colName
	colDate
	colTime
	colMethod
	colStatus
)

// headerAliases maps a normalized column name to its position in LedgerHeader.
var headerAliases = map[string]int{
	"studentid": colID,
	"id":        colID,
	"name":      colName,
	"date":      colDate,
	"time":      colTime,
	"method":    colMethod,
	"status":    colStatus,
}

// WriteRecords writes records to w in ledger form, header first.
func WriteRecords(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LedgerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.ID, rec.Name, rec.Date, rec.Time, string(rec.Method), string(rec.Status)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %s/%s: %w", rec.ID, rec.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeRecords returns records in ledger form.
func EncodeRecords(records []domain.Record) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = WriteRecords(&buf, records)
	return buf.Bytes()
}

// DecodeRecords parses a ledger file. Columns are located by header name so
// files with a different column order or a missing column still load; a
// missing column or a short row reads as empty strings. An empty input
// yields no records.
func DecodeRecords(r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	positions, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0)
	line := 1
	for {
		row, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		var fields [6]string
		for i, col := range positions {
			if col >= 0 && i < len(row) {
				fields[col] = row[i]
			}
		}
		records = append(records, domain.Record{
			ID:     fields[colID],
			Name:   fields[colName],
			Date:   fields[colDate],
			Time:   fields[colTime],
			Method: domain.Method(fields[colMethod]),
			Status: domain.Status(fields[colStatus]),
		})
	}
	return records, nil
}

// mapHeader returns, for each input column, its ledger position or -1.
func mapHeader(header []string) ([]int, error) {
	positions := make([]int, len(header))
	known := 0
	for i, name := range header {
		col, ok := headerAliases[normalizeColumn(name)]
		if !ok {
			positions[i] = -1
			continue
		}
		positions[i] = col
		known++
	}
	if known == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedHeader, header)
	}
	return positions, nil
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(name, "_", "")
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
