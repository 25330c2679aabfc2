package member

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
	"github.com/fastygo/tasktrack/usecase"
	"github.com/fastygo/tasktrack/usecase/lifecycle"
)

var errInvitationsDisabled = domain.NewError(domain.ErrCodeNotFound, "invitations are not enabled")

// InviteMember issues a pending invitation for inviteeID to join projectID as role.
func (uc *UseCase) InviteMember(ctx context.Context, actorID, projectID, inviteeID string, role domain.Role) (*domain.Invitation, error) {
	if uc.invitations == nil {
		return nil, errInvitationsDisabled
	}
	actor, err := usecase.ResolveActor(ctx, uc.members, projectID, actorID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpInvite, err)
	}
	email := ""
	if inviteeID != "" {
		if email, err = uc.emailOf(ctx, inviteeID); err != nil {
			return nil, usecase.Observe(uc.recorder, OpInvite, err)
		}
	}

	current, err := uc.members.List(ctx, repository.MemberFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	open, err := uc.invitations.List(ctx, repository.InvitationFilter{
		ProjectID: projectID,
		InviteeID: inviteeID,
		Status:    domain.InvitationPending,
	})
	if err != nil {
		return nil, err
	}
	inv, err := uc.engine.RequestInvitation(domain.Invitation{
		ProjectID: projectID,
		InviteeID: inviteeID,
		Email:     email,
		Role:      role,
	}, actor, current, open)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpInvite, err)
	}
	inv.ID = uuid.NewString()

	created, err := uc.invitations.Create(ctx, &inv)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpInvite, err)
	}
	usecase.Observe(uc.recorder, OpInvite, nil)
	usecase.Record(ctx, uc.activities, uc.logger,
		domain.NewActivity(projectID, domain.EntityInvitation, created.ID, "invited", actorID, map[string]interface{}{
			"invitee_id": created.InviteeID,
			"role":       created.Role,
		}))
	return created, nil
}

// InviteByEmail resolves the account behind email and invites it.
func (uc *UseCase) InviteByEmail(ctx context.Context, actorID, projectID, email string, role domain.Role) (*domain.Invitation, error) {
	if uc.users == nil {
		return nil, errInvitationsDisabled
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpInvite, err)
	}
	return uc.InviteMember(ctx, actorID, projectID, user.ID, role)
}

// ListInvitations returns the invitations still waiting on actorID's answer.
func (uc *UseCase) ListInvitations(ctx context.Context, actorID string) ([]domain.Invitation, error) {
	if uc.invitations == nil {
		return nil, errInvitationsDisabled
	}
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.invitations.List(ctx, repository.InvitationFilter{InviteeID: actorID, Status: domain.InvitationPending})
}

// AcceptInvitation admits actorID on the authority of the member who issued
// the invitation, as that member stands now.
func (uc *UseCase) AcceptInvitation(ctx context.Context, actorID, invitationID string) (*domain.ProjectMember, error) {
	if uc.invitations == nil {
		return nil, errInvitationsDisabled
	}
	inv, err := uc.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpAccept, err)
	}
	inviter, err := usecase.ResolveActor(ctx, uc.members, inv.ProjectID, inv.InviterID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotMember) {
			return nil, usecase.Observe(uc.recorder, OpAccept, err)
		}
		inviter = lifecycle.Actor{UserID: inv.InviterID}
	}
	current, err := uc.members.List(ctx, repository.MemberFilter{ProjectID: inv.ProjectID})
	if err != nil {
		return nil, err
	}

	accepted, member, err := uc.engine.RequestInvitationAccept(*inv, inviter, actorID, current)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpAccept, err)
	}
	member.ID = uuid.NewString()
	if err := uc.invitations.Accept(ctx, &accepted, &member); err != nil {
		return nil, usecase.Observe(uc.recorder, OpAccept, err)
	}

	usecase.Observe(uc.recorder, OpAccept, nil)
	usecase.Record(ctx, uc.activities, uc.logger, addedActivity(member, actorID, accepted.ID))
	return &member, nil
}

// RejectInvitation closes the invitation without admitting anyone.
func (uc *UseCase) RejectInvitation(ctx context.Context, actorID, invitationID string) (*domain.Invitation, error) {
	if uc.invitations == nil {
		return nil, errInvitationsDisabled
	}
	inv, err := uc.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpReject, err)
	}
	rejected, err := uc.engine.RequestInvitationReject(*inv, actorID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpReject, err)
	}
	if err := uc.invitations.Reject(ctx, &rejected); err != nil {
		return nil, usecase.Observe(uc.recorder, OpReject, err)
	}

	usecase.Observe(uc.recorder, OpReject, nil)
	usecase.Record(ctx, uc.activities, uc.logger,
		domain.NewActivity(rejected.ProjectID, domain.EntityInvitation, rejected.ID, "rejected", actorID, nil))
	return &rejected, nil
}
