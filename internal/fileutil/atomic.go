// Package fileutil holds small file helpers shared by the persistence adapters
// and the config writer.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Staged is new content written and synced to a temp file next to its
// target. Commit renames it over the target; Discard removes it.
type Staged struct {
	path string
	temp string
}

// Stage writes data to a temp file in the directory of path, creating the
// directory if needed. The target is not touched until Commit.
func Stage(path string, data []byte, perm os.FileMode) (*Staged, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Sync(); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("syncing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("setting permissions: %w", err)
	}
	return &Staged{path: path, temp: tempPath}, nil
}

// Path returns the target path.
func (s *Staged) Path() string { return s.path }

// Commit renames the temp file over the target. On failure the temp file is
// removed and the target is left as it was.
func (s *Staged) Commit() error {
	if err := os.Rename(s.temp, s.path); err != nil {
		_ = os.Remove(s.temp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Discard removes the temp file. Safe on a nil or committed Staged.
func (s *Staged) Discard() {
	if s == nil {
		return
	}
	_ = os.Remove(s.temp)
}

// WriteFileAtomic replaces path with data. The bytes go to a temp file in the
// same directory which is then renamed over path, so readers see either the
// old content or the new content and never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	staged, err := Stage(path, data, perm)
	if err != nil {
		return err
	}
	return staged.Commit()
}

// Original is the content a file had before it was replaced.
type Original struct {
	path    string
	data    []byte
	existed bool
	perm    os.FileMode
}

// Remember reads the current content of path so it can be put back later.
// A missing file is remembered as missing.
func Remember(path string) (*Original, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Original{path: path}, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is a configured data file
	if err != nil {
		return nil, err
	}
	return &Original{path: path, data: data, existed: true, perm: info.Mode().Perm()}, nil
}

// Restore puts the remembered content back, removing the file when it did
// not exist.
func (o *Original) Restore() error {
	if !o.existed {
		if err := os.Remove(o.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return WriteFileAtomic(o.path, o.data, o.perm)
}

// CopyFile copies src to dst, truncating dst.
func CopyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // G304: src is a configured data file
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm) //nolint:gosec // G304: dst derives from src
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// FreeName returns path with suffix appended, adding a counter when that
// name is taken.
func FreeName(path, suffix string) string {
	candidate := path + suffix
	for i := 1; Exists(candidate); i++ {
		candidate = fmt.Sprintf("%s%s.%d", path, suffix, i)
	}
	return candidate
}

// Exists reports whether path exists. Errors other than not-exist count as
// existing so callers go on to surface the real error when reading.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}
