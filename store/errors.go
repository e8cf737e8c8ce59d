package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Failure categories returned by the repositories. Callers match them with
// errors.Is; the driver error stays wrapped underneath.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("duplicate record")
	ErrConstraint  = errors.New("constraint violation")
	ErrUnavailable = errors.New("database unavailable")
)

// Classify maps a driver or gorm error onto one of the failure categories.
// Errors that fit no category are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if kind := kindOf(err); kind != nil {
		if errors.Is(err, kind) {
			return err
		}
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, ErrDuplicate):
		return ErrDuplicate
	case errors.Is(err, ErrConstraint):
		return ErrConstraint
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded):
		return ErrUnavailable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqKind(pqErr)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return sqliteKind(liteErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrUnavailable
	}
	return nil
}

func pqKind(err *pq.Error) error {
	switch {
	case err.Code == "23505":
		return ErrDuplicate
	case err.Code.Class() == "23", err.Code == "22001":
		return ErrConstraint
	case err.Code.Class() == "08", err.Code.Class() == "53", err.Code.Class() == "57":
		return ErrUnavailable
	}
	return nil
}

func sqliteKind(err sqlite3.Error) error {
	switch err.Code {
	case sqlite3.ErrConstraint:
		if err.ExtendedCode == sqlite3.ErrConstraintUnique || err.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrDuplicate
		}
		return ErrConstraint
	case sqlite3.ErrTooBig:
		return ErrConstraint
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen:
		return ErrUnavailable
	}
	return nil
}
