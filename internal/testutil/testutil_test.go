package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

func TestBuilder_StandardTestData(t *testing.T) {
	snap := NewBuilder(t).WithStandardTestData().Build()

	require.Len(t, snap.Individuals, 3)
	require.Len(t, snap.Records, 5)
	require.Equal(t, "S1", snap.Individuals[0].ID)
	require.Equal(t, "Physics", snap.Individuals[0].Category)

	today := 0
	for _, rec := range snap.Records {
		require.Equal(t, domain.StatusPresent, rec.Status)
		if rec.Date == "2024-03-03" {
			today++
		}
	}
	require.Equal(t, 3, today)
}

func TestBuilder_RecordNameDefaults(t *testing.T) {
	snap := NewBuilder(t).
		WithIndividual("S1", Name("Ana")).
		WithRecord("S1", DefaultDate).
		WithRecord("S2", DefaultDate).
		WithRecord("S3", DefaultDate, As("Cy"), Via(domain.MethodBiometric), At("10:00:00")).
		Build()

	require.Equal(t, "Ana", snap.Records[0].Name)
	require.Equal(t, "Individual S2", snap.Records[1].Name)
	require.Equal(t, domain.Record{
		ID: "S3", Name: "Cy", Date: DefaultDate, Time: "10:00:00",
		Method: domain.MethodBiometric, Status: domain.StatusPresent,
	}, snap.Records[2])
}

func TestBuilder_UnregisteredRecords(t *testing.T) {
	snap := NewBuilder(t).WithStandardTestData().WithUnregisteredRecords().Build()
	require.Len(t, snap.Records, 7)
	require.Len(t, snap.Individuals, 3)
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBuilder(t).WithStandardTestData().BuildRepository()

	res := repo.Load(ctx)
	require.Len(t, res.Records, 5)
	require.Empty(t, res.Warnings)

	require.NoError(t, repo.Flush(ctx, domain.Snapshot{}))
	require.Equal(t, 1, repo.Flushes())
	require.Empty(t, repo.Stored().Records)

	repo.FailWith(ErrInjected)
	err := repo.Flush(ctx, res.Snapshot)
	require.ErrorIs(t, err, domain.ErrIO)
	require.ErrorIs(t, err, ErrInjected)
	require.Equal(t, 1, repo.Flushes())

	repo.WarnOnLoad(errors.New("bad ledger"))
	require.Len(t, repo.Load(ctx).Warnings, 1)

	require.NoError(t, repo.Close())
	require.True(t, repo.Closed())
}

func TestMemoryRepository_LoadReturnsCopy(t *testing.T) {
	repo := NewBuilder(t).WithStandardTestData().BuildRepository()
	res := repo.Load(context.Background())
	res.Records[0].Name = "changed"
	require.Equal(t, "Ana", repo.Stored().Records[0].Name)
}

func TestJournalRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepository(domain.Snapshot{})

	change := domain.Change{Kind: domain.ChangeRecordsCleared, Date: DefaultDate, Count: 2}
	require.NoError(t, repo.Apply(ctx, change))
	require.Equal(t, []domain.Change{change}, repo.Changes())

	repo.FailWith(ErrInjected)
	require.ErrorIs(t, repo.Apply(ctx, change), domain.ErrIO)
	require.Len(t, repo.Changes(), 1)
}

func TestMemoryRepository_FailAfter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(domain.Snapshot{})
	repo.FailAfter(1, ErrInjected)

	require.NoError(t, repo.Flush(ctx, domain.Snapshot{}))
	require.ErrorIs(t, repo.Flush(ctx, domain.Snapshot{}), ErrInjected)
	require.ErrorIs(t, repo.Flush(ctx, domain.Snapshot{}), ErrInjected)
	require.Equal(t, 1, repo.Flushes())

	repo.FailAfter(0, nil)
	require.NoError(t, repo.Flush(ctx, domain.Snapshot{}))
}

func TestClock(t *testing.T) {
	c := NewClock("2024-03-01", "23:59:30")
	require.Equal(t, "2024-03-01", domain.FormatDate(c.Now()))

	c.Advance(time.Minute)
	require.Equal(t, "2024-03-02", domain.FormatDate(c.Now()))
	require.Equal(t, "00:00:30", domain.FormatTime(c.Now()))

	c.NextDay()
	require.Equal(t, "2024-03-03", domain.FormatDate(c.Now()))
	require.Panics(t, func() { NewClock("03/01/2024", "09:00:00") })
}
