package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/fastygo/tasktrack/domain"
)

func TestConstraintError(t *testing.T) {
	plain := errors.New("connection reset")

	cases := []struct {
		name string
		err  error
		code domain.ErrorCode
	}{
		{"passthrough", plain, domain.ErrCodeInternal},
		{"unique", &pgconn.PgError{Code: pgUniqueViolation}, domain.ErrCodeInvalid},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation}), domain.ErrCodeInvalid},
		{"foreign key", &pgconn.PgError{Code: pgForeignKeyViolation}, domain.ErrCodeInvalid},
		{"check", &pgconn.PgError{Code: pgCheckViolation, ConstraintName: "tasks_check"}, domain.ErrCodeInvariantViolation},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, domain.ErrCodeInvalid},
		{"invalid datetime", &pgconn.PgError{Code: "22007"}, domain.ErrCodeInvalid},
		{"other pg error", &pgconn.PgError{Code: "40001"}, domain.ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, domain.CodeOf(constraintError(tc.err, domain.ErrDuplicateName)))
		})
	}

	assert.Equal(t, domain.ErrCodeConflict, domain.CodeOf(constraintError(&pgconn.PgError{Code: pgUniqueViolation}, nil)))
	assert.Same(t, plain, constraintError(plain, nil))
}

func TestMemberConstraintError(t *testing.T) {
	unique := func(name string) error {
		return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: name}
	}
	assert.ErrorIs(t, memberConstraintError(unique("project_members_one_owner")), domain.ErrSecondOwner)
	assert.ErrorIs(t, memberConstraintError(unique("project_members_one_manager")), domain.ErrManagerAssigned)
	assert.ErrorIs(t, memberConstraintError(unique("project_members_project_id_user_id_key")), domain.ErrDuplicateMember)
	assert.Equal(t, domain.ErrCodeInvalid, domain.CodeOf(memberConstraintError(&pgconn.PgError{Code: pgForeignKeyViolation})))
}
