package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

const memberColumns = `id, project_id, user_id, email, role, invited_by, joined_at, version, created_at, updated_at`

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) repository.MemberRepository {
	return &memberRepository{pool: pool}
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.ProjectMember, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM project_members WHERE id = $1`, id)
	return scanMember(row)
}

func (r *memberRepository) GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	return scanMember(row)
}

func (r *memberRepository) List(ctx context.Context, filter repository.MemberFilter) ([]domain.ProjectMember, error) {
	query := `SELECT ` + memberColumns + `
	FROM project_members
	WHERE ($1 = '' OR project_id = $1)
	  AND ($2 = '' OR user_id = $2)
	  AND ($3 = '' OR role = $3)
	ORDER BY joined_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, filter.ProjectID, filter.UserID, string(filter.Role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.ProjectMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func (r *memberRepository) Create(ctx context.Context, member *domain.ProjectMember) (*domain.ProjectMember, error) {
	if member == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := insertMember(ctx, r.pool, member); err != nil {
		return nil, memberConstraintError(err)
	}
	return member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.ProjectMember) error {
	if member == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE project_members
	SET email = $3,
		role = $4,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		member.ID,
		member.Version,
		member.Email,
		string(member.Role),
	).Scan(&member.Version, &member.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			exists, existsErr := rowExists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM project_members WHERE id = $1)`, member.ID)
			if existsErr != nil {
				return existsErr
			}
			if !exists {
				return domain.ErrMemberNotFound
			}
			return domain.ErrVersionConflict
		}
		return memberConstraintError(err)
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM project_members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertMember(ctx context.Context, q querier, member *domain.ProjectMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO project_members (id, project_id, user_id, email, role, invited_by, joined_at, version)
	VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()), 1)
	RETURNING joined_at, version, created_at, updated_at
	`
	return q.QueryRow(ctx, query,
		member.ID,
		member.ProjectID,
		member.UserID,
		member.Email,
		string(member.Role),
		member.InvitedBy,
		nullTime(member.JoinedAt),
	).Scan(&member.JoinedAt, &member.Version, &member.CreatedAt, &member.UpdatedAt)
}

func scanMember(row pgx.Row) (*domain.ProjectMember, error) {
	var member domain.ProjectMember
	var role string
	if err := row.Scan(
		&member.ID,
		&member.ProjectID,
		&member.UserID,
		&member.Email,
		&role,
		&member.InvitedBy,
		&member.JoinedAt,
		&member.Version,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	member.Role = domain.Role(role)
	return &member, nil
}
