package domain

import (
	"errors"
	"fmt"
)

// Engine errors. Callers match with errors.Is.
var (
	ErrDuplicateID        = errors.New("id already registered")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyMarkedToday = errors.New("attendance already marked today")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMalformedResource  = errors.New("malformed resource")
	ErrIO                 = errors.New("storage failure")
)

// MalformedResourceError reports a persisted resource that could not be parsed.
// It matches ErrMalformedResource.
type MalformedResourceError struct {
	Resource string // "ledger" or "registry"
	Path     string
	Err      error
}

func (e *MalformedResourceError) Error() string {
	return fmt.Sprintf("malformed %s %s: %v", e.Resource, e.Path, e.Err)
}

func (e *MalformedResourceError) Unwrap() error { return e.Err }

func (e *MalformedResourceError) Is(target error) bool { return target == ErrMalformedResource }

// StorageError reports a read or write failure at the storage boundary.
// It matches ErrIO.
type StorageError struct {
	Op   string // "read", "write", "apply"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrIO }
