package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
	SELECT id, name, description, owner_id, created_at, updated_at
	FROM projects
	WHERE id = $1
	`
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.OwnerID,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) CreateWithMembers(ctx context.Context, project *domain.Project, members []domain.ProjectMember) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
		INSERT INTO projects (id, name, description, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
		`
		if err := tx.QueryRow(ctx, query,
			project.ID,
			project.Name,
			project.Description,
			project.OwnerID,
		).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
			return fmt.Errorf("insert project: %w", constraintError(err, nil))
		}

		for i := range members {
			members[i].ProjectID = project.ID
			if err := insertMember(ctx, tx, &members[i]); err != nil {
				return fmt.Errorf("insert member %s: %w", members[i].UserID, memberConstraintError(err))
			}
		}
		return nil
	})
}
