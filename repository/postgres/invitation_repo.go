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

const invitationColumns = `id, project_id, inviter_id, invitee_id, email, role, status, created_at, responded_at`

type invitationRepository struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository returns a Postgres-backed InvitationRepository.
func NewInvitationRepository(pool *pgxpool.Pool) repository.InvitationRepository {
	return &invitationRepository{pool: pool}
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	return scanInvitation(row)
}

func (r *invitationRepository) List(ctx context.Context, filter repository.InvitationFilter) ([]domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
	FROM invitations
	WHERE ($1 = '' OR project_id = $1)
	  AND ($2 = '' OR invitee_id = $2)
	  AND ($3 = '' OR status = $3)
	ORDER BY created_at DESC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, filter.ProjectID, filter.InviteeID, string(filter.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *invitation)
	}
	return invitations, rows.Err()
}

func (r *invitationRepository) Create(ctx context.Context, invitation *domain.Invitation) (*domain.Invitation, error) {
	if invitation == nil {
		return nil, domain.ErrInvalidPayload
	}
	if invitation.ID == "" {
		invitation.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO invitations (id, project_id, inviter_id, invitee_id, email, role, status)
	VALUES ($1, $2, $3, $4, $5, $6, 'pending')
	RETURNING status, created_at
	`
	var status string
	if err := r.pool.QueryRow(ctx, query,
		invitation.ID,
		invitation.ProjectID,
		invitation.InviterID,
		invitation.InviteeID,
		invitation.Email,
		string(invitation.Role),
	).Scan(&status, &invitation.CreatedAt); err != nil {
		return nil, constraintError(err, domain.ErrInvitationPending)
	}
	invitation.Status = domain.InvitationStatus(status)
	return invitation, nil
}

func (r *invitationRepository) Accept(ctx context.Context, invitation *domain.Invitation, member *domain.ProjectMember) error {
	if invitation == nil || member == nil {
		return domain.ErrInvalidPayload
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := closeInvitation(ctx, tx, invitation, domain.InvitationAccepted); err != nil {
			return err
		}
		if err := insertMember(ctx, tx, member); err != nil {
			return fmt.Errorf("insert member %s: %w", member.UserID, memberConstraintError(err))
		}
		return nil
	})
}

func (r *invitationRepository) Reject(ctx context.Context, invitation *domain.Invitation) error {
	if invitation == nil {
		return domain.ErrInvalidPayload
	}
	return closeInvitation(ctx, r.pool, invitation, domain.InvitationRejected)
}

// closeInvitation flips a pending row to status. A row that is missing or
// already answered leaves nothing to update.
func closeInvitation(ctx context.Context, q querier, invitation *domain.Invitation, status domain.InvitationStatus) error {
	const query = `
	UPDATE invitations
	SET status = $2,
		responded_at = NOW()
	WHERE id = $1 AND status = 'pending'
	RETURNING responded_at
	`
	if err := q.QueryRow(ctx, query, invitation.ID, string(status)).Scan(&invitation.RespondedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInvitationAnswered
		}
		return err
	}
	invitation.Status = status
	return nil
}

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var invitation domain.Invitation
	var role, status string
	if err := row.Scan(
		&invitation.ID,
		&invitation.ProjectID,
		&invitation.InviterID,
		&invitation.InviteeID,
		&invitation.Email,
		&role,
		&status,
		&invitation.CreatedAt,
		&invitation.RespondedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}
	invitation.Role = domain.Role(role)
	invitation.Status = domain.InvitationStatus(status)
	return &invitation, nil
}
