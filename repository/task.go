package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

// MaxPageSize caps how many rows one List call returns.
const MaxPageSize = 100

// TaskFilter narrows List. Name matches case-insensitively after trimming.
type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	IDs        []string
	Status     domain.TaskStatus
	Name       string
	Limit      int
	Offset     int
}

// PageLimit is the effective row limit for filter.Limit.
func PageLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// TaskRepository is the record store for tasks. Update is conditional on
// task.Version and returns domain.ErrVersionConflict when the stored row has
// moved on; on success task.Version is advanced.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
