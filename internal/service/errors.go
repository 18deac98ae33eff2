// Package service holds the schedule versioning, edit, bootstrap and optimizer
// configuration logic on top of the repository interfaces.
package service

import (
	"errors"
	"fmt"

	"github.com/lalith-99/maintcal/internal/models"
	"github.com/lalith-99/maintcal/internal/repository"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNoActiveSchedule = errors.New("no active schedule")
	ErrWindowNotFound   = errors.New("maintenance window not found")
	ErrDaysMismatch     = errors.New("days not found in maintenance window")
	ErrNoActiveConfig   = errors.New("no active optimizer config")
	ErrStorage          = errors.New("storage failure")
)

// ValidationError rejects malformed input before the store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DaysMismatchError reports old days that the target window does not contain.
type DaysMismatchError struct {
	Unit    string
	Code    string
	Missing []int
	Current []int
}

func (e *DaysMismatchError) Error() string {
	return fmt.Sprintf("days %v not found in maintenance %q of unit %q; current days: %v",
		e.Missing, e.Code, e.Unit, e.Current)
}

func (e *DaysMismatchError) Is(target error) bool {
	return target == ErrDaysMismatch
}

// StorageError wraps an unexpected store failure. It is never retried here.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// validationErr converts a models.FieldError into a ValidationError, prefixing
// the field with where it came from.
func validationErr(prefix string, err error) error {
	var fe *models.FieldError
	if errors.As(err, &fe) {
		field := fe.Field
		if prefix != "" {
			field = prefix + "." + fe.Field
		}
		return &ValidationError{Field: field, Reason: fe.Reason}
	}
	return &ValidationError{Field: prefix, Reason: err.Error()}
}

// classifyEdit maps repository outcomes of an edit to the service taxonomy.
func classifyEdit(err error) error {
	var mismatch *DaysMismatchError
	switch {
	case errors.As(err, &mismatch):
		return mismatch
	case errors.Is(err, repository.ErrNoActiveSnapshot):
		return ErrNoActiveSchedule
	case errors.Is(err, repository.ErrWindowNotFound):
		return ErrWindowNotFound
	default:
		return storageErr("edit window", err)
	}
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoActiveSchedule) ||
		errors.Is(err, ErrWindowNotFound) ||
		errors.Is(err, ErrNoActiveConfig)
}
