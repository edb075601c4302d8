package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds surfaced to handlers. Services wrap them with context via
// fmt.Errorf("...: %w", ErrX); handlers match with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOverDispatch      = errors.New("dispatch exceeds remaining quantity")
	ErrBusy              = errors.New("resource busy")
)

// notFound converts gorm.ErrRecordNotFound into ErrNotFound and passes other
// errors through untouched.
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

// duplicate converts a unique-key violation into ErrConflict.
func duplicate(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", msg, ErrConflict)
	}
	return err
}
