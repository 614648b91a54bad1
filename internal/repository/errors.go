package repository

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound reports that no row matched. It is a valid outcome, not a transport failure.
var ErrNotFound = errors.New("record not found")

// Postgres SQLSTATE codes the store distinguishes.
const (
	pgUniqueViolation       = "23505"
	pgUndefinedColumn       = "42703"
	pgInsufficientPrivilege = "42501"
)

// StoreErrorKind classifies rejections from the record store.
type StoreErrorKind int

const (
	KindUnknown StoreErrorKind = iota
	KindUniqueViolation
	KindUndefinedColumn
	KindPermissionDenied
)

// StoreError wraps a database rejection with its classification.
type StoreError struct {
	Kind       StoreErrorKind
	Column     string
	Constraint string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store rejected operation: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

var undefinedColumnName = regexp.MustCompile(`column "?([A-Za-z0-9_.]+)"? (?:of relation "[^"]+" )?does not exist`)

// classify turns driver errors into ErrNotFound or a StoreError.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	storeErr := &StoreError{Kind: KindUnknown, Constraint: pgErr.ConstraintName, Column: pgErr.ColumnName, Err: err}
	switch pgErr.Code {
	case pgUniqueViolation:
		storeErr.Kind = KindUniqueViolation
	case pgUndefinedColumn:
		storeErr.Kind = KindUndefinedColumn
		if storeErr.Column == "" {
			if m := undefinedColumnName.FindStringSubmatch(pgErr.Message); len(m) == 2 {
				storeErr.Column = m[1]
			}
		}
	case pgInsufficientPrivilege:
		storeErr.Kind = KindPermissionDenied
	}
	return storeErr
}

// KindOf returns the StoreErrorKind carried by err, or KindUnknown.
func KindOf(err error) (StoreErrorKind, *StoreError) {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind, storeErr
	}
	return KindUnknown, nil
}
