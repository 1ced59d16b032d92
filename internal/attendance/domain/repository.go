package domain

import "context"

// Snapshot is the full persisted state: every registry entry and every
// ledger record in insertion order.
type Snapshot struct {
	Individuals []Individual
	Records     []Record
}

// LoadResult is what a repository hands back at startup. A resource that is
// missing loads as empty. A resource that cannot be read or parsed also
// loads as empty and its error is reported in Warnings.
type LoadResult struct {
	Snapshot
	Warnings []error
}

// Repository persists the registry and ledger.
type Repository interface {
	// Load reads the persisted state. It never fails outright.
	Load(ctx context.Context) LoadResult

	// Flush replaces the persisted state with snap. Errors are *StorageError.
	Flush(ctx context.Context, snap Snapshot) error

	// Close releases resources held by the repository.
	Close() error
}

// Journal is implemented by repositories that can persist a single change
// without rewriting everything. The service prefers it over Flush.
type Journal interface {
	Apply(ctx context.Context, change Change) error
}

// ChangeKind names a mutation.
type ChangeKind string

const (
	ChangeRecordAdded       ChangeKind = "record_added"
	ChangeRecordsCleared    ChangeKind = "records_cleared"
	ChangeLedgerTruncated   ChangeKind = "ledger_truncated"
	ChangeIndividualSaved   ChangeKind = "individual_saved"
	ChangeIndividualRemoved ChangeKind = "individual_removed"
)

// Change describes one committed mutation. Only the fields relevant to Kind
// are set.
type Change struct {
	Kind       ChangeKind
	Record     Record     // record_added
	Individual Individual // individual_saved, individual_removed (ID only)
	Date       string     // records_cleared
	Count      int        // records_cleared, ledger_truncated
}
