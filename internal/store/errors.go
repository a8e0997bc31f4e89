package store

import (
	"errors"
	"fmt"
)

// Common errors returned by store operations.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, store.ErrNotFound) {
//	    // Handle missing record
//	}
var (
	// ErrNotFound is returned when an update references an id that does
	// not exist. Deletes tolerate absence and never return this.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert collides with an
	// existing id.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrLastTab is returned when attempting to delete the only
	// remaining tab.
	ErrLastTab = errors.New("cannot delete the last tab")
)

// StorageError wraps a persistence-layer failure (disk, quota, driver).
// The store never retries these; they propagate to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// storageErr wraps err unless it is nil or one of the sentinel errors
// above, which pass through untouched.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrLastTab) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
