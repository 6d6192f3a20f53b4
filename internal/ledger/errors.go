package ledger

import (
	"errors"
	"fmt"
)

// Rejections returned by Credit. They are expected outcomes, not faults.
var (
	ErrSelfReferral    = errors.New("self-referral")
	ErrAlreadyCredited = errors.New("referral already credited")
	ErrAlreadyRecorded = errors.New("referral already recorded")
)

// IsRejection reports whether err is one of the Credit rejections.
func IsRejection(err error) bool {
	return errors.Is(err, ErrSelfReferral) ||
		errors.Is(err, ErrAlreadyCredited) ||
		errors.Is(err, ErrAlreadyRecorded)
}

// StorageError wraps a failure of the underlying database. When it comes out of
// Credit the transaction has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
