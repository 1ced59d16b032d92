package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/report"
)

var sampleRecords = []domain.Record{
	{ID: "S1", Name: "Ana", Date: "2024-03-03", Time: "08:50:00", Method: domain.MethodQRCode, Status: domain.StatusPresent},
	{ID: "S2", Name: "Ben", Date: "2024-03-03", Time: "09:02:00", Method: domain.MethodManual, Status: domain.StatusPresent},
}

func TestFormatter_RecordsJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, FormatJSON)
	require.True(t, f.JSON())

	require.NoError(t, f.Records(FromRecords(sampleRecords)))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "S1", got[0]["student_id"])
	require.Equal(t, "QR Code", got[0]["method"])
	require.Equal(t, "Present", got[1]["status"])
}

func TestFormatter_EmptyListsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, FormatJSON)

	require.NoError(t, f.Individuals(FromIndividuals(nil)))
	require.JSONEq(t, "[]", buf.String())
}

func TestFormatter_RecordsTable(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, "anything")
	require.False(t, f.JSON())

	require.NoError(t, f.Records(FromRecords(sampleRecords)))
	out := buf.String()
	require.Contains(t, out, "Student ID")
	require.Contains(t, out, "Ana")
	require.Contains(t, out, "QR Code")
	require.Contains(t, out, "09:02:00")
}

func TestFormatter_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, FormatTable).Records(nil))
	require.Equal(t, "(none)\n", buf.String())
}

func TestFormatter_Message(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, FormatTable).Message("Removed %d records", 3))
	require.Equal(t, "Removed 3 records\n", buf.String())

	buf.Reset()
	require.NoError(t, NewFormatter(&buf, FormatJSON).Message("Removed %d records", 3))
	require.JSONEq(t, `{"message":"Removed 3 records"}`, buf.String())
}

func TestFormatter_Today(t *testing.T) {
	snap := report.TodaySnapshot{Date: "2024-03-03", Records: sampleRecords, Total: 2, Unique: 2, MostCommonMethod: "Manual"}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, FormatTable).Today(FromToday(snap)))
	require.Contains(t, buf.String(), "Attendance for 2024-03-03")
	require.Contains(t, buf.String(), "Most common method: Manual")

	buf.Reset()
	require.NoError(t, NewFormatter(&buf, FormatJSON).Today(FromToday(snap)))
	var got TodayDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, 2, got.Unique)
	require.Len(t, got.Records, 2)
}

func TestFormatter_Detail(t *testing.T) {
	d := report.Detail{
		Individual: domain.Individual{ID: "S1", Name: "Ana", Category: "Physics", RegisteredOn: "2024-02-01"},
		Records:    sampleRecords[:1],
		Total:      1,
		Rate:       100,
		LastSeen:   "2024-03-03",
	}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, FormatTable).Detail(FromDetail(d)))
	require.Contains(t, buf.String(), "Ana (S1)")
	require.Contains(t, buf.String(), "Rate: 100.0%")

	buf.Reset()
	require.NoError(t, NewFormatter(&buf, FormatJSON).Detail(FromDetail(d)))
	require.Contains(t, buf.String(), `"department": "Physics"`)
	require.Contains(t, buf.String(), `"last_seen": "2024-03-03"`)
}

func TestFormatter_Overview(t *testing.T) {
	o := report.Overview{
		Stats:              domain.ComputeStats(sampleRecords),
		Registered:         2,
		Rate:               100,
		MostCommonMethod:   "Manual",
		MostCommonCategory: "Physics",
		ByMethod:           domain.CountByMethod(sampleRecords),
		ByDate:             domain.CountByDate(sampleRecords),
		ByCategory:         []domain.Count{{Key: "Physics", Count: 2}},
		Recent:             sampleRecords,
	}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, FormatTable).Overview(FromOverview(o)))
	out := buf.String()
	for _, want := range []string{"Overview", "By method", "By department", "By date", "Recent activity", "Most common department"} {
		require.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, NewFormatter(&buf, FormatJSON).Overview(FromOverview(o)))
	var got OverviewDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, 2, got.Stats.TotalRecords)
	require.Equal(t, "Physics", got.MostCommonCategory)
	require.Len(t, got.ByMethod, 2)
}

func TestFromRange(t *testing.T) {
	r := report.RangeReport{Start: "2024-03-01", End: "2024-03-03", Records: sampleRecords, Stats: domain.ComputeStats(sampleRecords)}
	dto := FromRange(r)
	require.Equal(t, 2, dto.Stats.TotalRecords)
	require.Len(t, dto.Records, 2)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, FormatTable).Range(dto))
	require.Contains(t, buf.String(), "2024-03-01 to 2024-03-03: 2 records, 2 individuals")
}
