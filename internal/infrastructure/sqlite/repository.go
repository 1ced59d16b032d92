package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/log"
)

// Repository implements domain.Repository and domain.Journal over SQLite.
// It owns the DB and closes it on Close.
type Repository struct {
	db *DB
}

var (
	_ domain.Repository = (*Repository)(nil)
	_ domain.Journal    = (*Repository)(nil)
)

func newRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Open opens the database at path and returns its repository.
func Open(path string) (*Repository, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, &domain.StorageError{Op: "open", Path: path, Err: err}
	}
	return db.AttendanceRepository(), nil
}

// Path returns the database file path.
func (r *Repository) Path() string { return r.db.path }

// Load reads both tables. A failing query loads that collection as empty
// and is reported in Warnings.
func (r *Repository) Load(ctx context.Context) domain.LoadResult {
	var res domain.LoadResult

	individuals, err := r.loadIndividuals(ctx)
	if err != nil {
		log.Warn(log.CatStore, "individuals unreadable, starting empty", "error", err)
		res.Warnings = append(res.Warnings, &domain.StorageError{Op: "read", Path: r.db.path, Err: err})
		individuals = []domain.Individual{}
	}
	records, err := r.loadRecords(ctx)
	if err != nil {
		log.Warn(log.CatStore, "records unreadable, starting empty", "error", err)
		res.Warnings = append(res.Warnings, &domain.StorageError{Op: "read", Path: r.db.path, Err: err})
		records = []domain.Record{}
	}

	res.Individuals = individuals
	res.Records = records
	return res
}

func (r *Repository) loadIndividuals(ctx context.Context) ([]domain.Individual, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, category, registered_on FROM individuals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying individuals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.Individual, 0)
	for rows.Next() {
		var m individualModel
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.RegisteredOn); err != nil {
			return nil, fmt.Errorf("scanning individual: %w", err)
		}
		out = append(out, m.toDomain())
	}
	return out, rows.Err()
}

func (r *Repository) loadRecords(ctx context.Context) ([]domain.Record, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT seq, student_id, name, date, time, method, status FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.Record, 0)
	for rows.Next() {
		var m recordModel
		if err := rows.Scan(&m.Seq, &m.StudentID, &m.Name, &m.Date, &m.Time, &m.Method, &m.Status); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, m.toDomain())
	}
	return out, rows.Err()
}

// Flush replaces both tables with snap in one transaction. A record whose
// (id, date) pair already appeared earlier in snap is skipped.
func (r *Repository) Flush(ctx context.Context, snap domain.Snapshot) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return fmt.Errorf("clearing records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM individuals`); err != nil {
			return fmt.Errorf("clearing individuals: %w", err)
		}
		for _, ind := range snap.Individuals {
			if err := upsertIndividual(ctx, tx, toIndividualModel(ind)); err != nil {
				return err
			}
		}
		skipped := 0
		for _, rec := range snap.Records {
			m := toRecordModel(rec)
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO records (student_id, name, date, time, method, status) VALUES (?, ?, ?, ?, ?, ?)`,
				m.StudentID, m.Name, m.Date, m.Time, m.Method, m.Status)
			if err != nil {
				return fmt.Errorf("inserting record %s/%s: %w", m.StudentID, m.Date, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				skipped++
			}
		}
		if skipped > 0 {
			log.Warn(log.CatStore, "skipped duplicate records", "count", skipped)
		}
		return nil
	})
	if err != nil {
		return &domain.StorageError{Op: "write", Path: r.db.path, Err: err}
	}
	log.Debug(log.CatStore, "flushed database",
		"records", len(snap.Records), "individuals", len(snap.Individuals))
	return nil
}

// Apply persists a single change.
func (r *Repository) Apply(ctx context.Context, change domain.Change) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		switch change.Kind {
		case domain.ChangeRecordAdded:
			m := toRecordModel(change.Record)
			_, err := tx.ExecContext(ctx,
				`INSERT INTO records (student_id, name, date, time, method, status) VALUES (?, ?, ?, ?, ?, ?)`,
				m.StudentID, m.Name, m.Date, m.Time, m.Method, m.Status)
			return err
		case domain.ChangeRecordsCleared:
			_, err := tx.ExecContext(ctx, `DELETE FROM records WHERE date = ?`, change.Date)
			return err
		case domain.ChangeLedgerTruncated:
			_, err := tx.ExecContext(ctx, `DELETE FROM records`)
			return err
		case domain.ChangeIndividualSaved:
			return upsertIndividual(ctx, tx, toIndividualModel(change.Individual))
		case domain.ChangeIndividualRemoved:
			_, err := tx.ExecContext(ctx, `DELETE FROM individuals WHERE id = ?`, change.Individual.ID)
			return err
		default:
			return fmt.Errorf("unknown change kind %q", change.Kind)
		}
	})
	if err != nil {
		return &domain.StorageError{Op: "apply", Path: r.db.path, Err: fmt.Errorf("%s: %w", change.Kind, err)}
	}
	log.Debug(log.CatStore, "applied change", "kind", change.Kind)
	return nil
}

// Compact rebuilds the database file to reclaim space left by cleared
// records.
func (r *Repository) Compact(ctx context.Context) error {
	if _, err := r.db.conn.ExecContext(ctx, `VACUUM`); err != nil {
		return &domain.StorageError{Op: "compact", Path: r.db.path, Err: err}
	}
	log.Info(log.CatStore, "compacted database", "db", r.db.path)
	return nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func upsertIndividual(ctx context.Context, tx *sql.Tx, m individualModel) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO individuals (id, name, category, registered_on) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			registered_on = excluded.registered_on`,
		m.ID, m.Name, m.Category, m.RegisteredOn)
	if err != nil {
		return fmt.Errorf("saving individual %s: %w", m.ID, err)
	}
	return nil
}
