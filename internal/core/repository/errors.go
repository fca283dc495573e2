package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotFound is returned when no row matches the requested ID.
	ErrClientNotFound = errors.New("client not found")

	// ErrInvalidClient is returned for arguments that can never be stored,
	// such as a nil client or an update of a transient one.
	ErrInvalidClient = errors.New("invalid client")
)

// ConnectionError means the store could not be reached or refused the
// credentials.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s database: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatementError means a statement reached the store but failed while
// executing or while reading its result.
type StatementError struct {
	Op  string
	Err error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

func IsStatementError(err error) bool {
	var stmtErr *StatementError
	return errors.As(err, &stmtErr)
}
