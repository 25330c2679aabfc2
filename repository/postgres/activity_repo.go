package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a Postgres-backed ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, activity domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO activities (id, project_id, entity, entity_id, action, actor_id, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
	`

	_, err := r.pool.Exec(ctx, query,
		activity.ID,
		activity.ProjectID,
		activity.Entity,
		activity.EntityID,
		activity.Action,
		activity.ActorID,
		[]byte(activity.Payload),
		nullTime(activity.CreatedAt),
	)
	return err
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	const query = `
	SELECT id, project_id, entity, entity_id, action, actor_id, payload, created_at
	FROM activities
	WHERE ($1 = '' OR project_id = $1)
	  AND ($2 = '' OR entity_id = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.ProjectID, filter.EntityID, repository.PageLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var (
			a       domain.Activity
			payload []byte
		)
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Entity, &a.EntityID, &a.Action, &a.ActorID, &payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			a.Payload = append([]byte(nil), payload...)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
