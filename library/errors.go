package library

import (
	"errors"
	"fmt"
)

// Domain errors: precondition failures rejected before any statement runs.
var (
	ErrNotAvailable       = errors.New("book is not available for loan")
	ErrBookOnLoan         = errors.New("book has active loans")
	ErrNotFound           = errors.New("record not found")
	ErrUnknownSearchField = errors.New("unknown search field")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrBadSecretCode      = errors.New("invalid secret code")
)

// StoreError wraps a database fault with the operation that hit it. The
// caller abandons the operation; nothing is retried automatically.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
