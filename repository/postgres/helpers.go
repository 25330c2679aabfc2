package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktrack/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"

	// Class 22 covers data exceptions such as 22003 numeric_value_out_of_range.
	pgDataExceptionClass = "22"
)

func rowExists(ctx context.Context, pool *pgxpool.Pool, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// constraintError maps constraint violations to domain errors. unique replaces
// a unique violation when set.
func constraintError(err error, unique error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if unique != nil {
			return unique
		}
		return domain.WrapError(domain.ErrCodeConflict, "duplicate record", err)
	case pgForeignKeyViolation:
		return domain.WrapError(domain.ErrCodeInvalid, "referenced record does not exist", err)
	case pgCheckViolation:
		return domain.WrapError(domain.ErrCodeInvariantViolation, "record violates "+pgErr.ConstraintName, err)
	}
	if strings.HasPrefix(pgErr.Code, pgDataExceptionClass) {
		return domain.WrapError(domain.ErrCodeInvalid, "value out of range for column", err)
	}
	return err
}

// memberConstraintError tells the owner/manager indexes apart from the (project, user) key.
func memberConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case "project_members_one_owner":
			return domain.ErrSecondOwner
		case "project_members_one_manager":
			return domain.ErrManagerAssigned
		}
		return domain.ErrDuplicateMember
	}
	return constraintError(err, nil)
}
