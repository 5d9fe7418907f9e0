package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrReferenceNotFound   = errors.New("referenced record does not exist")
	ErrReferentialConflict = errors.New("record is still referenced")
	ErrDuplicate           = errors.New("duplicate value")
	ErrStorage             = errors.New("storage failure")
)

// NotFound reports that no row exists for the given entity id.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// ReferenceNotFound reports a dangling foreign key, e.g. an order pointing
// at a customer that does not exist.
func ReferenceNotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrReferenceNotFound)
}

// Conflict reports a delete blocked by rows of another entity.
func Conflict(entity string, id any, referencedBy string) error {
	return fmt.Errorf("%s %v is referenced by existing %s: %w", entity, id, referencedBy, ErrReferentialConflict)
}

// Duplicate reports a unique field already taken by another row.
func Duplicate(entity, field, value string) error {
	return fmt.Errorf("%s with %s %q already exists: %w", entity, field, value, ErrDuplicate)
}

// Storage wraps a driver or transaction failure.
func Storage(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorage, err)
}
