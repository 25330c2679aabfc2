package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

// UserRepository reads accounts. Both lookups return domain.ErrUserNotFound
// when nothing matches; GetByEmail ignores case.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
