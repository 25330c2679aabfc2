package member

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
	"github.com/fastygo/tasktrack/usecase"
	"github.com/fastygo/tasktrack/usecase/lifecycle"
)

const (
	OpAdd        = "member_add"
	OpRoleChange = "role_change"
	OpRemove     = "member_remove"
	OpInvite     = "member_invite"
	OpAccept     = "invitation_accept"
	OpReject     = "invitation_reject"
)

type UseCase struct {
	engine      *lifecycle.Engine
	members     repository.MemberRepository
	users       repository.UserRepository
	invitations repository.InvitationRepository
	activities  repository.ActivityRepository
	buffer      usecase.OperationBuffer
	recorder    usecase.Recorder
	logger      *zap.Logger
}

type Option func(*UseCase)

func WithBuffer(buffer usecase.OperationBuffer) Option {
	return func(uc *UseCase) { uc.buffer = buffer }
}

func WithActivities(activities repository.ActivityRepository) Option {
	return func(uc *UseCase) { uc.activities = activities }
}

func WithInvitations(invitations repository.InvitationRepository) Option {
	return func(uc *UseCase) { uc.invitations = invitations }
}

func WithRecorder(recorder usecase.Recorder) Option {
	return func(uc *UseCase) {
		if recorder != nil {
			uc.recorder = recorder
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(uc *UseCase) {
		if logger != nil {
			uc.logger = logger
		}
	}
}

func New(engine *lifecycle.Engine, members repository.MemberRepository, users repository.UserRepository, opts ...Option) *UseCase {
	uc := &UseCase{
		engine:   engine,
		members:  members,
		users:    users,
		recorder: usecase.NopRecorder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ListMembers is open to every member of the project.
func (uc *UseCase) ListMembers(ctx context.Context, actorID, projectID string) ([]domain.ProjectMember, error) {
	if _, err := usecase.ResolveActor(ctx, uc.members, projectID, actorID); err != nil {
		return nil, err
	}
	return uc.members.List(ctx, repository.MemberFilter{ProjectID: projectID})
}

// Permissions returns the actor's role and capability set in projectID.
func (uc *UseCase) Permissions(ctx context.Context, actorID, projectID string) (domain.Role, domain.Permissions, error) {
	actor, err := usecase.ResolveActor(ctx, uc.members, projectID, actorID)
	if err != nil {
		return "", domain.Permissions{}, err
	}
	return actor.Role, uc.engine.Permissions(actor.Role), nil
}

// AddMember admits candidate to projectID on the actor's own authority.
func (uc *UseCase) AddMember(ctx context.Context, actorID, projectID string, candidate domain.ProjectMember) (*domain.ProjectMember, error) {
	actor, err := usecase.ResolveActor(ctx, uc.members, projectID, actorID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpAdd, err)
	}
	candidate.ProjectID = projectID
	if candidate.Email == "" && candidate.UserID != "" {
		if candidate.Email, err = uc.emailOf(ctx, candidate.UserID); err != nil {
			return nil, usecase.Observe(uc.recorder, OpAdd, err)
		}
	}

	current, err := uc.members.List(ctx, repository.MemberFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	member, err := uc.engine.RequestMemberAdd(candidate, actor, current)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpAdd, err)
	}
	if member.ID == "" {
		member.ID = uuid.NewString()
	}

	activity := addedActivity(member, actorID, "")
	created, err := uc.members.Create(ctx, &member)
	if err != nil {
		if !usecase.Retryable(err) || !uc.deferWrite(ctx, usecase.OperationCreate, &member, activity) {
			return nil, usecase.Observe(uc.recorder, OpAdd, err)
		}
		uc.recorder.Buffered(OpAdd)
		return &member, nil
	}

	usecase.Observe(uc.recorder, OpAdd, nil)
	usecase.Record(ctx, uc.activities, uc.logger, activity)
	return created, nil
}

func (uc *UseCase) ChangeRole(ctx context.Context, actorID, memberID string, role domain.Role) (*domain.ProjectMember, error) {
	target, err := uc.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	actor, err := usecase.ResolveActor(ctx, uc.members, target.ProjectID, actorID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpRoleChange, err)
	}
	current, err := uc.members.List(ctx, repository.MemberFilter{ProjectID: target.ProjectID})
	if err != nil {
		return nil, err
	}
	next, err := uc.engine.RequestRoleChange(*target, role, actor, current)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpRoleChange, err)
	}
	if next.Role == target.Role {
		return target, usecase.Observe(uc.recorder, OpRoleChange, nil)
	}

	activity := domain.NewActivity(next.ProjectID, domain.EntityMember, next.ID, OpRoleChange, actorID, map[string]domain.Role{
		"from": target.Role,
		"to":   next.Role,
	})
	if err := uc.members.Update(ctx, &next); err != nil {
		if !usecase.Retryable(err) || !uc.deferWrite(ctx, usecase.OperationUpdate, &next, activity) {
			return nil, usecase.Observe(uc.recorder, OpRoleChange, err)
		}
		uc.recorder.Buffered(OpRoleChange)
		return &next, nil
	}

	usecase.Observe(uc.recorder, OpRoleChange, nil)
	usecase.Record(ctx, uc.activities, uc.logger, activity)
	return &next, nil
}

func (uc *UseCase) RemoveMember(ctx context.Context, actorID, memberID string) error {
	target, err := uc.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	actor, err := usecase.ResolveActor(ctx, uc.members, target.ProjectID, actorID)
	if err != nil {
		return usecase.Observe(uc.recorder, OpRemove, err)
	}
	removed, err := uc.engine.RequestMemberRemoval(*target, actor)
	if err != nil {
		return usecase.Observe(uc.recorder, OpRemove, err)
	}

	activity := domain.NewActivity(removed.ProjectID, domain.EntityMember, removed.ID, "removed", actorID, map[string]string{
		"user_id": removed.UserID,
	})
	if err := uc.members.Delete(ctx, removed.ID); err != nil {
		if !usecase.Retryable(err) || !uc.deferWrite(ctx, usecase.OperationDelete, &removed, activity) {
			return usecase.Observe(uc.recorder, OpRemove, err)
		}
		uc.recorder.Buffered(OpRemove)
		return nil
	}

	usecase.Observe(uc.recorder, OpRemove, nil)
	usecase.Record(ctx, uc.activities, uc.logger, activity)
	return nil
}

func (uc *UseCase) deferWrite(ctx context.Context, operation string, member *domain.ProjectMember, activity domain.Activity) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferMember(ctx, operation, member, activity); err != nil {
		uc.logger.Error("failed to buffer member operation",
			zap.String("operation", operation),
			zap.String("member_id", member.ID),
			zap.Error(err))
		return false
	}
	uc.logger.Warn("member operation buffered", zap.String("operation", operation), zap.String("member_id", member.ID))
	return true
}

func (uc *UseCase) emailOf(ctx context.Context, userID string) (string, error) {
	if uc.users == nil {
		return "", nil
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func addedActivity(member domain.ProjectMember, actorID, invitationID string) domain.Activity {
	payload := map[string]interface{}{
		"user_id":    member.UserID,
		"role":       member.Role,
		"invited_by": member.InvitedBy,
	}
	if invitationID != "" {
		payload["invitation_id"] = invitationID
	}
	return domain.NewActivity(member.ProjectID, domain.EntityMember, member.ID, "added", actorID, payload)
}
