// Package filestore persists the registry as a JSON document and the ledger
// as a CSV file. Every flush rewrites both files in full: both are staged
// first and then renamed into place, and the ledger is put back when the
// registry rename fails.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/csvutil"
	"github.com/zjrosen/evencheck/internal/fileutil"
	"github.com/zjrosen/evencheck/internal/log"
)

const filePerm = 0644

// malformedSuffix names the copy kept of a file that failed to parse.
const malformedSuffix = ".malformed"

// Resource names used in errors and logs.
const (
	ResourceLedger   = "ledger"
	ResourceRegistry = "registry"
)

// Repository is the file-backed domain.Repository.
type Repository struct {
	ledgerPath   string
	registryPath string

	mu        sync.Mutex
	malformed []string // paths that failed to parse on the last Load
	preserved []string // copies made of them before they were overwritten
}

// New returns a repository over the two given files. Neither needs to exist.
func New(ledgerPath, registryPath string) *Repository {
	return &Repository{ledgerPath: ledgerPath, registryPath: registryPath}
}

// LedgerPath returns the ledger file path.
func (r *Repository) LedgerPath() string { return r.ledgerPath }

// RegistryPath returns the registry file path.
func (r *Repository) RegistryPath() string { return r.registryPath }

// Load reads both files concurrently. A missing file loads as empty. A file
// that cannot be read or parsed also loads as empty and is reported in
// Warnings.
func (r *Repository) Load(ctx context.Context) domain.LoadResult {
	var (
		res         domain.LoadResult
		ledgerErr   error
		registryErr error
	)

	// Neither goroutine returns an error; failures become warnings.
	var g errgroup.Group
	g.Go(func() error {
		res.Records, ledgerErr = r.loadLedger(ctx)
		return nil
	})
	g.Go(func() error {
		res.Individuals, registryErr = r.loadRegistry(ctx)
		return nil
	})
	_ = g.Wait()

	var malformed []string
	for _, err := range []error{registryErr, ledgerErr} {
		if err == nil {
			continue
		}
		log.Warn(log.CatStore, "resource unreadable, starting empty", "error", err)
		res.Warnings = append(res.Warnings, err)
		var bad *domain.MalformedResourceError
		if errors.As(err, &bad) {
			malformed = append(malformed, bad.Path)
		}
	}
	r.mu.Lock()
	r.malformed = malformed
	r.mu.Unlock()
	if res.Records == nil {
		res.Records = []domain.Record{}
	}
	if res.Individuals == nil {
		res.Individuals = []domain.Individual{}
	}
	log.Debug(log.CatStore, "loaded files",
		"records", len(res.Records), "individuals", len(res.Individuals))
	return res
}

func (r *Repository) loadLedger(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "read", Path: r.ledgerPath, Err: err}
	}
	data, err := os.ReadFile(r.ledgerPath)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Path: r.ledgerPath, Err: err}
	}

	records, err := csvutil.DecodeRecords(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.MalformedResourceError{Resource: ResourceLedger, Path: r.ledgerPath, Err: err}
	}
	return records, nil
}

func (r *Repository) loadRegistry(ctx context.Context) ([]domain.Individual, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "read", Path: r.registryPath, Err: err}
	}
	data, err := os.ReadFile(r.registryPath)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Individual{}, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Path: r.registryPath, Err: err}
	}

	individuals, err := decodeRegistry(data)
	if err != nil {
		return nil, &domain.MalformedResourceError{Resource: ResourceRegistry, Path: r.registryPath, Err: err}
	}
	return individuals, nil
}

// Flush rewrites both files from snap. Both files are staged before either
// target changes. The ledger is renamed first; if the registry rename then
// fails the previous ledger is restored. A file that failed to parse on Load
// is copied aside before it is first overwritten. Errors are
// *domain.StorageError; Op "restore" means the ledger could not be put back.
func (r *Repository) Flush(ctx context.Context, snap domain.Snapshot) error {
	err := r.flush(ctx, snap)
	if err != nil {
		log.ErrorErr(log.CatStore, "flush failed", err)
		return err
	}
	log.Debug(log.CatStore, "flushed files",
		"records", len(snap.Records), "individuals", len(snap.Individuals))
	return nil
}

func (r *Repository) flush(ctx context.Context, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "write", Path: r.ledgerPath, Err: err}
	}
	registryData, err := encodeRegistry(snap.Individuals)
	if err != nil {
		return &domain.StorageError{Op: "write", Path: r.registryPath, Err: err}
	}
	ledgerData := csvutil.EncodeRecords(snap.Records)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.preserveMalformed(); err != nil {
		return err
	}

	var ledger, registry *fileutil.Staged
	var g errgroup.Group
	g.Go(func() error {
		staged, err := fileutil.Stage(r.ledgerPath, ledgerData, filePerm)
		if err != nil {
			return &domain.StorageError{Op: "write", Path: r.ledgerPath, Err: err}
		}
		ledger = staged
		return nil
	})
	g.Go(func() error {
		staged, err := fileutil.Stage(r.registryPath, registryData, filePerm)
		if err != nil {
			return &domain.StorageError{Op: "write", Path: r.registryPath, Err: err}
		}
		registry = staged
		return nil
	})
	if err := g.Wait(); err != nil {
		ledger.Discard()
		registry.Discard()
		return err
	}

	previous, err := fileutil.Remember(r.ledgerPath)
	if err != nil {
		ledger.Discard()
		registry.Discard()
		return &domain.StorageError{Op: "write", Path: r.ledgerPath, Err: err}
	}
	if err := ledger.Commit(); err != nil {
		registry.Discard()
		return &domain.StorageError{Op: "write", Path: r.ledgerPath, Err: err}
	}
	if err := registry.Commit(); err != nil {
		if restoreErr := previous.Restore(); restoreErr != nil {
			return &domain.StorageError{Op: "restore", Path: r.ledgerPath, Err: errors.Join(err, restoreErr)}
		}
		log.Warn(log.CatStore, "registry write failed, ledger restored", "ledger", r.ledgerPath)
		return &domain.StorageError{Op: "write", Path: r.registryPath, Err: err}
	}
	return nil
}

// preserveMalformed copies every file that failed to parse on the last Load
// to a free "<name>.malformed" path. Callers hold r.mu.
func (r *Repository) preserveMalformed() error {
	for len(r.malformed) > 0 {
		path := r.malformed[0]
		if fileutil.Exists(path) {
			dst := fileutil.FreeName(path, malformedSuffix)
			if err := fileutil.CopyFile(path, dst, filePerm); err != nil {
				return &domain.StorageError{Op: "write", Path: dst, Err: fmt.Errorf("keeping malformed file: %w", err)}
			}
			r.preserved = append(r.preserved, dst)
			log.Warn(log.CatStore, "kept a copy of a malformed file before overwriting it", "path", path, "copy", dst)
		}
		r.malformed = r.malformed[1:]
	}
	return nil
}

// Preserved lists the copies kept of malformed files, oldest first.
func (r *Repository) Preserved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.preserved)
}

// Close is a no-op; files are opened per call.
func (r *Repository) Close() error { return nil }

// Paths returns the data files this repository owns, for watching.
func (r *Repository) Paths() []string {
	return []string{r.ledgerPath, r.registryPath}
}

// DefaultPaths joins the configured file names onto dir.
func DefaultPaths(dir, ledgerFile, registryFile string) (ledgerPath, registryPath string) {
	return filepath.Join(dir, ledgerFile), filepath.Join(dir, registryFile)
}

func (r *Repository) String() string {
	return fmt.Sprintf("filestore(%s, %s)", r.ledgerPath, r.registryPath)
}
