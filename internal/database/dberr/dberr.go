// Package dberr classifies driver errors into database agnostic categories
// so services can map them onto domain errors or retry them.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var (
	// ErrUniqueViolation is returned by Map for unique or primary key conflicts.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrSerialization is returned by Map when a transaction lost a
	// concurrency race and may be retried.
	ErrSerialization = errors.New("transaction serialization failure")
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// gorm's error translation, pgx or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUniqueViolation) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}

	return false
}

// IsSerialization reports whether err means the transaction should be retried.
func IsSerialization(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSerialization) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	return false
}

// Map wraps classified driver errors with the matching sentinel and returns
// anything else unchanged.
func Map(err error) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err) && !errors.Is(err, ErrUniqueViolation):
		return errors.Join(ErrUniqueViolation, err)
	case IsSerialization(err) && !errors.Is(err, ErrSerialization):
		return errors.Join(ErrSerialization, err)
	default:
		return err
	}
}
