package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

type MemberFilter struct {
	ProjectID string
	UserID    string
	Role      domain.Role
}

type MemberRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ProjectMember, error)
	GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error)
	List(ctx context.Context, filter MemberFilter) ([]domain.ProjectMember, error)
	Create(ctx context.Context, member *domain.ProjectMember) (*domain.ProjectMember, error)
	Update(ctx context.Context, member *domain.ProjectMember) error
	Delete(ctx context.Context, id string) error
}
