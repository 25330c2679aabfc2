package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

const taskColumns = `id, project_id, assignee_id, name, description, status, priority, progress,
	start_date, deadline, estimated_hours, time_spent_minutes, completed_at, paused_at, resumed_at,
	version, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR project_id = $1)
	  AND ($2 = '' OR assignee_id = $2)
	  AND (cardinality($3::text[]) = 0 OR id = ANY($3::text[]))
	  AND ($4 = '' OR status = $4)
	  AND ($5 = '' OR lower(name) = lower($5))
	ORDER BY created_at ASC, id ASC
	LIMIT $6 OFFSET $7
	`
	ids := filter.IDs
	if ids == nil {
		ids = []string{}
	}
	rows, err := r.pool.Query(ctx, query,
		filter.ProjectID,
		filter.AssigneeID,
		ids,
		string(filter.Status),
		strings.TrimSpace(filter.Name),
		repository.PageLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, project_id, assignee_id, name, description, status, priority, progress,
		start_date, deadline, estimated_hours, time_spent_minutes, completed_at, paused_at, resumed_at, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1)
	RETURNING version, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.ProjectID,
		task.AssigneeID,
		task.Name,
		task.Description,
		string(task.Status),
		string(task.Priority),
		string(task.Progress),
		task.StartDate,
		task.Deadline,
		task.EstimatedHours,
		task.TimeSpentMinutes,
		task.CompletedAt,
		task.PausedAt,
		task.ResumedAt,
	).Scan(&task.Version, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, constraintError(err, domain.ErrDuplicateName)
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET assignee_id = $3,
		name = $4,
		description = $5,
		status = $6,
		priority = $7,
		progress = $8,
		start_date = $9,
		deadline = $10,
		estimated_hours = $11,
		time_spent_minutes = $12,
		completed_at = $13,
		paused_at = $14,
		resumed_at = $15,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Version,
		task.AssigneeID,
		task.Name,
		task.Description,
		string(task.Status),
		string(task.Priority),
		string(task.Progress),
		task.StartDate,
		task.Deadline,
		task.EstimatedHours,
		task.TimeSpentMinutes,
		task.CompletedAt,
		task.PausedAt,
		task.ResumedAt,
	).Scan(&task.Version, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, task.ID)
		}
		return constraintError(err, domain.ErrDuplicateName)
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) missOrConflict(ctx context.Context, id string) error {
	exists, err := rowExists(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return domain.ErrVersionConflict
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var status, priority, progress string

	if err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.AssigneeID,
		&task.Name,
		&task.Description,
		&status,
		&priority,
		&progress,
		&task.StartDate,
		&task.Deadline,
		&task.EstimatedHours,
		&task.TimeSpentMinutes,
		&task.CompletedAt,
		&task.PausedAt,
		&task.ResumedAt,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	task.Progress = domain.TaskProgress(progress)
	return &task, nil
}
