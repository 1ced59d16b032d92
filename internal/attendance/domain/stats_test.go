package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "S1", Name: "Ann", Date: "2024-03-01", Time: "09:00:00", Method: MethodQRCode, Status: StatusPresent},
		{ID: "S2", Name: "Bob", Date: "2024-03-01", Time: "09:01:00", Method: MethodManual, Status: StatusPresent},
		{ID: "S1", Name: "Ann", Date: "2024-03-02", Time: "09:00:00", Method: MethodQRCode, Status: StatusPresent},
		{ID: "S3", Name: "Cy", Date: "2024-02-28", Time: "10:00:00", Method: MethodBiometric, Status: StatusPresent},
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(sampleRecords())
	require.Equal(t, 4, s.TotalRecords)
	require.Equal(t, 3, s.DistinctIndividuals)
	require.Equal(t, 3, s.DistinctDates)
	require.InDelta(t, 4.0/3.0, s.AveragePerDay, 1e-9)
}

func TestComputeStats_Empty(t *testing.T) {
	require.Equal(t, Stats{}, ComputeStats(nil))
}

func TestCountByMethod_FrequencyThenName(t *testing.T) {
	require.Equal(t, []Count{
		{Key: "QR Code", Count: 2},
		{Key: "Biometric", Count: 1},
		{Key: "Manual", Count: 1},
	}, CountByMethod(sampleRecords()))
}

func TestCountByDate_Ascending(t *testing.T) {
	require.Equal(t, []Count{
		{Key: "2024-02-28", Count: 1},
		{Key: "2024-03-01", Count: 2},
		{Key: "2024-03-02", Count: 1},
	}, CountByDate(sampleRecords()))
}

func TestMostCommonMethod(t *testing.T) {
	m, ok := MostCommonMethod(sampleRecords())
	require.True(t, ok)
	require.Equal(t, "QR Code", m)

	_, ok = MostCommonMethod(nil)
	require.False(t, ok)
}

func TestMostCommonCategory(t *testing.T) {
	c, ok := MostCommonCategory([]Individual{
		{ID: "S1", Category: "Maths"},
		{ID: "S2", Category: "Physics"},
		{ID: "S3", Category: "Physics"},
	})
	require.True(t, ok)
	require.Equal(t, "Physics", c)
}

func TestAttendanceRate(t *testing.T) {
	require.Equal(t, 0.0, AttendanceRate(nil), "no records is a zero rate, not an error")
	require.Equal(t, 100.0, AttendanceRate(sampleRecords()))

	mixed := append(sampleRecords(), Record{ID: "S1", Date: "2024-03-03", Status: Status("Absent")})
	require.InDelta(t, 80.0, AttendanceRate(mixed), 1e-9)
}

func TestRecent(t *testing.T) {
	recs := sampleRecords()

	last := Recent(recs, 3)
	require.Len(t, last, 3)
	require.Equal(t, "S2", last[0].ID)
	require.Equal(t, "S3", last[2].ID)

	require.Len(t, Recent(recs, 10), 4)
	require.Empty(t, Recent(recs, 0))
	require.Empty(t, Recent(nil, 3))
}

// Scenario: register, mark twice on the same day, inspect.
func TestScenario_RegisterAndMarkOnce(t *testing.T) {
	reg := NewRegistry()
	l := NewLedger()

	_, err := reg.AddIfAbsent("1001", "Ada", "Engineering", "2024-05-10")
	require.NoError(t, err)

	_, err = l.Mark("1001", "Ada", MethodQRCode, "2024-05-10", "08:30:00")
	require.NoError(t, err)
	_, err = l.Mark("1001", "Ada", MethodManual, "2024-05-10", "12:00:00")
	require.ErrorIs(t, err, ErrAlreadyMarkedToday)

	history := l.ForIndividual("1001")
	require.Len(t, history, 1)
	require.Equal(t, 100.0, AttendanceRate(history))
}

// Scenario: removing an individual keeps their history.
func TestScenario_RemoveKeepsHistory(t *testing.T) {
	reg := NewRegistry()
	l := NewLedger()

	reg.AddOrReplace("2002", "Grace", "", "2024-05-10")
	_, err := l.Mark("2002", "Grace", "", "2024-05-10", "09:00:00")
	require.NoError(t, err)

	require.NoError(t, reg.Remove("2002"))
	_, ok := reg.Lookup("2002")
	require.False(t, ok)
	require.Len(t, l.ForIndividual("2002"), 1)
}

// Scenario: clearing one day leaves the others and their stats.
func TestScenario_ClearOneDay(t *testing.T) {
	l := LedgerFrom(sampleRecords())

	removed := l.ClearForDate("2024-03-01")
	require.Equal(t, 2, removed)

	s := ComputeStats(l.Records())
	require.Equal(t, 2, s.TotalRecords)
	require.Equal(t, 2, s.DistinctDates)
}
