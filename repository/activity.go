package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

type ActivityFilter struct {
	ProjectID string
	EntityID  string
	Limit     int
	Offset    int
}

type ActivityRepository interface {
	Append(ctx context.Context, activity domain.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
}
