package repository

import (
	"context"

	"github.com/fastygo/tasktrack/domain"
)

type InvitationFilter struct {
	ProjectID string
	InviteeID string
	Status    domain.InvitationStatus
}

// InvitationRepository stores pending invitations. Accept and Reject only
// succeed on a row that is still pending and return
// domain.ErrInvitationAnswered otherwise.
type InvitationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	List(ctx context.Context, filter InvitationFilter) ([]domain.Invitation, error)
	Create(ctx context.Context, invitation *domain.Invitation) (*domain.Invitation, error)
	// Accept closes the invitation and inserts member in one transaction.
	Accept(ctx context.Context, invitation *domain.Invitation, member *domain.ProjectMember) error
	Reject(ctx context.Context, invitation *domain.Invitation) error
}
