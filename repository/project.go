package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// CreateWithMembers stores the project and its initial memberships atomically.
	CreateWithMembers(ctx context.Context, project *domain.Project, members []domain.ProjectMember) error
}
