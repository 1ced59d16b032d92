package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

// ErrInjected is the default failure returned by a repository set to fail.
var ErrInjected = errors.New("injected storage failure")

// MemoryRepository is an in-memory domain.Repository with failure injection.
type MemoryRepository struct {
	mu       sync.Mutex
	snap     domain.Snapshot
	warnings []error
	failWith error
	failNext error // fails writes once allowed reaches zero
	allowed  int
	flushes  int
	closed   bool
}

var _ domain.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns a repository holding snap.
func NewMemoryRepository(snap domain.Snapshot) *MemoryRepository {
	return &MemoryRepository{snap: copySnapshot(snap)}
}

// Load returns a copy of the stored snapshot plus any configured warnings.
func (r *MemoryRepository) Load(context.Context) domain.LoadResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.LoadResult{Snapshot: copySnapshot(r.snap), Warnings: slices.Clone(r.warnings)}
}

// Flush stores snap unless the repository is set to fail.
func (r *MemoryRepository) Flush(_ context.Context, snap domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(); err != nil {
		return &domain.StorageError{Op: "write", Path: "memory", Err: err}
	}
	r.snap = copySnapshot(snap)
	r.flushes++
	return nil
}

// Close marks the repository closed.
func (r *MemoryRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// FailWith makes every following write fail with err. Nil restores success.
func (r *MemoryRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

// FailAfter lets the next n writes succeed and fails every write after them
// with err.
func (r *MemoryRepository) FailAfter(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowed = n
	r.failNext = err
}

// injected returns the failure the next write should report. Callers hold
// r.mu.
func (r *MemoryRepository) injected() error {
	if r.failWith != nil {
		return r.failWith
	}
	if r.failNext == nil {
		return nil
	}
	if r.allowed == 0 {
		return r.failNext
	}
	r.allowed--
	return nil
}

// WarnOnLoad makes Load report warnings.
func (r *MemoryRepository) WarnOnLoad(warnings ...error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = warnings
}

// Replace swaps the stored snapshot, as if another process had written it.
func (r *MemoryRepository) Replace(snap domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = copySnapshot(snap)
}

// Stored returns a copy of the last written snapshot.
func (r *MemoryRepository) Stored() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copySnapshot(r.snap)
}

// Flushes counts successful Flush calls.
func (r *MemoryRepository) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

// Closed reports whether Close was called.
func (r *MemoryRepository) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// JournalRepository is a MemoryRepository that also implements
// domain.Journal and records every applied change.
type JournalRepository struct {
	*MemoryRepository
	changes []domain.Change
}

var _ domain.Journal = (*JournalRepository)(nil)

// NewJournalRepository returns a journaling repository holding snap.
func NewJournalRepository(snap domain.Snapshot) *JournalRepository {
	return &JournalRepository{MemoryRepository: NewMemoryRepository(snap)}
}

// Apply records change unless the repository is set to fail.
func (r *JournalRepository) Apply(_ context.Context, change domain.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected(); err != nil {
		return &domain.StorageError{Op: "apply", Path: "memory", Err: err}
	}
	r.changes = append(r.changes, change)
	return nil
}

// Changes returns the applied changes in order.
func (r *JournalRepository) Changes() []domain.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.changes)
}

func copySnapshot(s domain.Snapshot) domain.Snapshot {
	return domain.Snapshot{
		Individuals: append([]domain.Individual{}, s.Individuals...),
		Records:     append([]domain.Record{}, s.Records...),
	}
}
