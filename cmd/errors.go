package cmd

import (
	"errors"

	"github.com/zjrosen/evencheck/internal/attendance/application"
	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

// userMessage maps an error to the short line shown to the user.
func userMessage(err error) string {
	var storageErr *domain.StorageError
	switch {
	case errors.Is(err, domain.ErrAlreadyMarkedToday):
		return "already marked present today"
	case errors.Is(err, domain.ErrDuplicateID):
		return "that id is already registered"
	case errors.Is(err, domain.ErrNotFound):
		return "no individual with that id"
	case errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	case errors.As(err, &storageErr):
		switch storageErr.Op {
		case "write", "apply":
			return storageErr.Error() + "; nothing was changed"
		case "restore":
			return storageErr.Error() + "; the ledger file may hold a change that was not applied"
		default:
			return storageErr.Error()
		}
	case errors.Is(err, application.ErrClosed):
		return "session already closed"
	default:
		return err.Error()
	}
}
