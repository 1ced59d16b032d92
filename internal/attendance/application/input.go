package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

// registration is the validated input of AddOrReplace and AddIfAbsent.
type registration struct {
	ID       string `validate:"required,max=64"`
	Name     string `validate:"required,max=128"`
	Category string `validate:"max=64"`
}

// mark is the validated input of MarkPresent.
type mark struct {
	ID     string `validate:"required,max=64"`
	Name   string `validate:"required,max=128"`
	Method string `validate:"required,max=64"`
}

// dateInput is a single YYYY-MM-DD date.
type dateInput struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// check validates in and maps failures to domain.ErrInvalidInput.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s is longer than %s characters", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s %q is not a YYYY-MM-DD date", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
