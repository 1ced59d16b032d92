package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/evencheck/internal/attendance/application"
	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/config"
	"github.com/zjrosen/evencheck/internal/flags"
	"github.com/zjrosen/evencheck/internal/presentation"
	"github.com/zjrosen/evencheck/internal/testutil"
)

// cli runs commands against one temporary data directory and config file.
type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("EVENCHECK_DEBUG", "")
	return &cli{t: t, dir: t.TempDir()}
}

func (c *cli) args(args ...string) []string {
	return append([]string{"--config", filepath.Join(c.dir, "config.yaml"), "--data-dir", c.dir}, args...)
}

// run executes args and returns stdout, stderr and the error.
func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), newRootCmd(), c.args(args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (c *cli) ok(args ...string) string {
	c.t.Helper()
	stdout, stderr, err := c.run(args...)
	require.NoError(c.t, err, "stderr: %s", stderr)
	return stdout
}

func TestCLI_WritesDefaultConfig(t *testing.T) {
	c := newCLI(t)
	c.ok("student:list")

	data, err := os.ReadFile(filepath.Join(c.dir, "config.yaml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "backend: file")
}

func TestCLI_MarkAutoRegisters(t *testing.T) {
	c := newCLI(t)

	out := c.ok("mark", "--id", "S9", "--name", "Ben")
	require.Contains(t, out, "Marked S9 (Ben) present")
	require.Contains(t, out, "Registered S9")

	var individuals []presentation.IndividualDTO
	require.NoError(t, json.Unmarshal([]byte(c.ok("student:list", "-o", "json")), &individuals))
	require.Len(t, individuals, 1)
	require.Equal(t, "Ben", individuals[0].Name)
	require.Equal(t, "General", individuals[0].Department)

	ledger, err := os.ReadFile(filepath.Join(c.dir, "attendance_data.csv"))
	require.NoError(t, err)
	require.Contains(t, string(ledger), "StudentID,Name,Date,Time,Method,Status\nS9,Ben,")
}

func TestCLI_AutoRegisterDisabled(t *testing.T) {
	c := newCLI(t)
	c.ok("student:list")
	c.ok("config:set", "flags.auto-register", "false")

	out := c.ok("mark", "--id", "S9", "--name", "Ben")
	require.NotContains(t, out, "Registered")
	require.Equal(t, "[]\n", c.ok("student:list", "-o", "json"))
}

func TestCLI_MarkTwiceFails(t *testing.T) {
	c := newCLI(t)
	c.ok("student:add", "--id", "S1", "--name", "Ana")
	c.ok("mark", "--id", "S1")

	_, stderr, err := c.run("mark", "--id", "S1")
	require.ErrorIs(t, err, domain.ErrAlreadyMarkedToday)
	require.Equal(t, "Error: already marked present today\n", stderr)

	var records []presentation.RecordDTO
	require.NoError(t, json.Unmarshal([]byte(c.ok("records:for", "--id", "S1", "-o", "json")), &records))
	require.Len(t, records, 1)
	require.Equal(t, "Ana", records[0].Name)
	require.Equal(t, "Manual", records[0].Method)
}

func TestCLI_StudentCommands(t *testing.T) {
	c := newCLI(t)
	require.Contains(t, c.ok("student:add", "--id", "S1", "--name", "Ana", "--category", "Physics"), "Registered S1 (Ana) in Physics")
	c.ok("student:add", "--id", "S2", "--name", "Ben")

	_, stderr, err := c.run("student:add", "--id", "S1", "--name", "Other")
	require.ErrorIs(t, err, domain.ErrDuplicateID)
	require.Contains(t, stderr, "already registered")

	out := c.ok("student:list", "--search", "an")
	require.Contains(t, out, "Ana")
	require.NotContains(t, out, "Ben")

	c.ok("mark", "--id", "S1", "--method", "QR Code")
	var detail presentation.DetailDTO
	require.NoError(t, json.Unmarshal([]byte(c.ok("student:show", "--id", "S1", "-o", "json")), &detail))
	require.Equal(t, "Physics", detail.Individual.Department)
	require.Equal(t, 1, detail.Total)
	require.Equal(t, float64(100), detail.AttendanceRate)

	require.Contains(t, c.ok("student:remove", "--id", "S1"), "Removed S1")
	_, stderr, err = c.run("student:remove", "--id", "S1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Contains(t, stderr, "no individual with that id")

	_, _, err = c.run("student:show", "--id", "S1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Contains(t, c.ok("records:for", "--id", "S1"), "QR Code", "records outlive removal")
}

func TestCLI_InvalidInput(t *testing.T) {
	c := newCLI(t)

	_, stderr, err := c.run("student:add", "--id", "  ", "--name", "Ana")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Contains(t, stderr, "id is required")

	_, _, err = c.run("records:range", "--start", "yesterday", "--end", "2024-03-01")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = c.run("mark")
	require.ErrorContains(t, err, `required flag(s) "id" not set`)
}

func TestCLI_ClearCommands(t *testing.T) {
	c := newCLI(t)
	c.ok("mark", "--id", "S1", "--name", "Ana")
	c.ok("mark", "--id", "S2", "--name", "Ben")

	require.Contains(t, c.ok("clear:date", "--date", "1999-01-01"), "Removed 0 records for 1999-01-01")

	_, stderr, err := c.run("clear:all")
	require.ErrorIs(t, err, errNotConfirmed)
	require.Contains(t, stderr, "--yes")

	require.Contains(t, c.ok("clear:today"), "Removed 2 records")
	require.Contains(t, c.ok("clear:all", "--yes"), "Removed 0 records")

	var individuals []presentation.IndividualDTO
	require.NoError(t, json.Unmarshal([]byte(c.ok("student:list", "-o", "json")), &individuals))
	require.Len(t, individuals, 2, "clearing records keeps the registry")
}

func TestCLI_Reports(t *testing.T) {
	c := newCLI(t)
	c.ok("student:add", "--id", "S1", "--name", "Ana", "--category", "Physics")
	c.ok("mark", "--id", "S1", "--method", "Biometric")
	c.ok("mark", "--id", "S2", "--name", "Ben")

	var today presentation.TodayDTO
	require.NoError(t, json.Unmarshal([]byte(c.ok("records:today", "-o", "json")), &today))
	require.Equal(t, 2, today.Total)
	require.Equal(t, 2, today.Unique)

	var overview presentation.OverviewDTO
	require.NoError(t, json.Unmarshal([]byte(c.ok("report:stats", "-o", "json")), &overview))
	require.Equal(t, 2, overview.Stats.TotalRecords)
	require.Equal(t, 2, overview.Registered)
	require.Len(t, overview.Recent, 2)

	require.Contains(t, c.ok("report:stats"), "Most common department")

	var rng presentation.RangeDTO
	require.NoError(t, json.Unmarshal([]byte(c.ok("records:range", "--start", "2000-01-01", "--end", "2999-12-31", "-o", "json")), &rng))
	require.Len(t, rng.Records, 2)
}

func TestCLI_Export(t *testing.T) {
	c := newCLI(t)
	c.ok("student:add", "--id", "S1", "--name", "Ana")
	c.ok("mark", "--id", "S1")

	stdout := c.ok("export:records")
	require.Contains(t, stdout, "StudentID,Name,Date,Time,Method,Status\nS1,Ana,")

	out := filepath.Join(c.dir, "exports", "today.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0750))
	_, stderr, err := c.run("export:records", "--today", "--out", out)
	require.NoError(t, err)
	require.Contains(t, stderr, "Exported 1 records")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, stdout, string(data))

	require.Equal(t, "StudentID,Name,Date,Time,Method,Status\n",
		c.ok("export:records", "--start", "1999-01-01", "--end", "1999-12-31"))

	_, _, err = c.run("export:records", "--today", "--start", "1999-01-01")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	students := c.ok("export:students")
	require.Contains(t, students, "Student ID,Name,Department,Added Date\nS1,Ana,General,")
}

func TestCLI_SQLiteBackendAndImport(t *testing.T) {
	c := newCLI(t)
	c.ok("student:add", "--id", "S1", "--name", "Ana")
	c.ok("mark", "--id", "S1")
	c.ok("mark", "--id", "S2", "--name", "Ben")

	require.Contains(t, c.ok("import"), "Imported 2 individuals and 2 records")

	c.ok("config:set", "backend", "sqlite")
	var today presentation.TodayDTO
	require.NoError(t, json.Unmarshal([]byte(c.ok("records:today", "-o", "json")), &today))
	require.Len(t, today.Records, 2)

	_, _, err := c.run("mark", "--id", "S1")
	require.ErrorIs(t, err, domain.ErrAlreadyMarkedToday)

	c.ok("mark", "--id", "S3", "--name", "Cy")
	require.Contains(t, c.ok("student:list"), "Cy")

	_, err = os.Stat(filepath.Join(c.dir, "evencheck.db"))
	require.NoError(t, err)
}

func TestCLI_MalformedLedgerWarns(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "attendance_data.csv"), []byte("StudentID,Name\n\"unterminated\n"), 0644))

	stdout, stderr, err := c.run("records:today")
	require.NoError(t, err)
	require.Contains(t, stderr, "Warning: malformed ledger")
	require.Contains(t, stdout, "(none)")
}

func TestCLI_MalformedLedgerKeptBeforeRewrite(t *testing.T) {
	c := newCLI(t)
	ledger := filepath.Join(c.dir, "attendance_data.csv")
	bad := []byte("StudentID,Name\n\"unterminated\n")
	require.NoError(t, os.WriteFile(ledger, bad, 0644))

	_, stderr, err := c.run("mark", "--id", "S1", "--name", "Ana")
	require.NoError(t, err)
	require.Contains(t, stderr, "copied to "+ledger+".malformed")

	kept, err := os.ReadFile(ledger + ".malformed")
	require.NoError(t, err)
	require.Equal(t, bad, kept)

	// The rewritten ledger loads cleanly and holds the new mark only.
	stdout, stderr, err := c.run("records:today", "-o", "json")
	require.NoError(t, err)
	require.Empty(t, stderr)
	var today presentation.TodayDTO
	require.NoError(t, json.Unmarshal([]byte(stdout), &today))
	require.Equal(t, 1, today.Total)
}

func TestCLI_ConfigInit(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(c.dir, "config.yaml")

	require.Equal(t, "Wrote "+path+"\n", c.ok("config:init"))
	require.Equal(t, "Config already exists at "+path+"\n", c.ok("config:init"))
	require.Equal(t, "Wrote "+path+"\n", c.ok("config:init", "--force"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))
}

func TestMarkAndRegister_RegistrationFailureKeepsMark(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMemoryRepository(domain.Snapshot{})
	repo.FailAfter(1, testutil.ErrInjected)

	var stdout, stderr bytes.Buffer
	s := &session{
		svc:   application.Open(ctx, repo),
		flags: flags.New(nil),
		out:   presentation.NewFormatter(&stdout, presentation.FormatTable),
	}
	t.Cleanup(func() { _ = s.svc.Close() })

	out, err := markAndRegister(ctx, s, "S9", "Ben", "", "")
	require.NoError(t, err, "the mark itself was saved")
	require.False(t, out.Registered)
	require.ErrorIs(t, out.RegisterErr, testutil.ErrInjected)
	require.Len(t, repo.Stored().Records, 1)
	require.Empty(t, repo.Stored().Individuals)

	require.NoError(t, reportMark(s, &stderr, out))
	require.Contains(t, stdout.String(), "Marked S9 (Ben) present")
	require.NotContains(t, stdout.String(), "Registered")
	require.Contains(t, stderr.String(), "Warning: S9 was marked present but not registered")
	require.NotContains(t, stderr.String(), "nothing was changed")
}

func TestMarkAndRegister_AutoRegisterOff(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMemoryRepository(domain.Snapshot{})
	s := &session{
		svc:   application.Open(ctx, repo),
		flags: flags.New(map[string]bool{flags.FlagAutoRegister: false}),
	}
	t.Cleanup(func() { _ = s.svc.Close() })

	out, err := markAndRegister(ctx, s, "S9", "Ben", "", "")
	require.NoError(t, err)
	require.False(t, out.Registered)
	require.NoError(t, out.RegisterErr)
	require.Equal(t, 1, repo.Flushes())
}

func TestCLI_Watch(t *testing.T) {
	c := newCLI(t)
	c.ok("student:list")
	c.ok("config:set", "watch.debounce", "50ms")

	var stdout syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- execute(ctx, newRootCmd(), c.args("watch"), &stdout, &bytes.Buffer{})
	}()

	require.Eventually(t, func() bool { return bytes.Contains(stdout.Bytes(), []byte("Watching")) }, 5*time.Second, 20*time.Millisecond)

	ledger := fmt.Sprintf("StudentID,Name,Date,Time,Method,Status\nS1,Ana,%s,09:00:00,Manual,Present\n", time.Now().Format("2006-01-02"))
	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "attendance_data.csv"), []byte(ledger), 0644))

	require.Eventually(t, func() bool {
		return bytes.Contains(stdout.Bytes(), []byte("reloaded: 1 records today"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.Fail(t, "watch did not stop")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("S1 on 2024-03-01: %w", domain.ErrAlreadyMarkedToday), "already marked present today"},
		{fmt.Errorf("%w: S1", domain.ErrDuplicateID), "that id is already registered"},
		{fmt.Errorf("individual S1: %w", domain.ErrNotFound), "no individual with that id"},
		{fmt.Errorf("%w: name is required", domain.ErrInvalidInput), "invalid input: name is required"},
		{&domain.StorageError{Op: "write", Path: "a.csv", Err: errors.New("disk full")}, "storage write a.csv: disk full; nothing was changed"},
		{&domain.StorageError{Op: "open", Path: "x.db", Err: errors.New("denied")}, "storage open x.db: denied"},
		{&domain.StorageError{Op: "restore", Path: "a.csv", Err: errors.New("disk full")}, "storage restore a.csv: disk full; the ledger file may hold a change that was not applied"},
		{application.ErrClosed, "session already closed"},
		{errors.New("something else"), "something else"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, userMessage(tt.err))
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}
