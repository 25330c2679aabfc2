package project

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
	"github.com/fastygo/tasktrack/usecase"
	"github.com/fastygo/tasktrack/usecase/lifecycle"
)

const OpCreate = "project_create"

// CreateInput describes a new project. Members without an email get the one on their user record.
type CreateInput struct {
	Name        string
	Description string
	ManagerID   string
	Members     []domain.ProjectMember
}

type UseCase struct {
	engine     *lifecycle.Engine
	projects   repository.ProjectRepository
	members    repository.MemberRepository
	users      repository.UserRepository
	activities repository.ActivityRepository
	recorder   usecase.Recorder
	logger     *zap.Logger
}

func New(
	engine *lifecycle.Engine,
	projects repository.ProjectRepository,
	members repository.MemberRepository,
	users repository.UserRepository,
	activities repository.ActivityRepository,
	recorder usecase.Recorder,
	logger *zap.Logger,
) *UseCase {
	if recorder == nil {
		recorder = usecase.NopRecorder
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		engine:     engine,
		projects:   projects,
		members:    members,
		users:      users,
		activities: activities,
		recorder:   recorder,
		logger:     logger,
	}
}

// CreateProject makes actorID the owner and stores the project with its
// initial memberships in one transaction.
func (uc *UseCase) CreateProject(ctx context.Context, actorID string, in CreateInput) (*lifecycle.ProjectPlan, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	owner, err := uc.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpCreate, err)
	}

	var manager *domain.User
	if in.ManagerID != "" {
		if manager, err = uc.users.GetByID(ctx, in.ManagerID); err != nil {
			return nil, usecase.Observe(uc.recorder, OpCreate, err)
		}
	}

	others := make([]domain.ProjectMember, 0, len(in.Members))
	for _, m := range in.Members {
		if m.Email == "" && m.UserID != "" {
			user, err := uc.users.GetByID(ctx, m.UserID)
			if err != nil {
				return nil, usecase.Observe(uc.recorder, OpCreate, err)
			}
			m.Email = user.Email
		}
		others = append(others, m)
	}

	project := domain.Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	plan, err := uc.engine.RequestProjectCreation(project, *owner, manager, others)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpCreate, err)
	}
	for i := range plan.Members {
		plan.Members[i].ID = uuid.NewString()
	}

	if err := uc.projects.CreateWithMembers(ctx, &plan.Project, plan.Members); err != nil {
		return nil, usecase.Observe(uc.recorder, OpCreate, err)
	}

	usecase.Observe(uc.recorder, OpCreate, nil)
	usecase.Record(ctx, uc.activities, uc.logger,
		domain.NewActivity(plan.Project.ID, domain.EntityProject, plan.Project.ID, "created", actorID, map[string]interface{}{
			"name":    plan.Project.Name,
			"members": len(plan.Members),
		}))
	uc.logger.Info("project created",
		zap.String("project_id", plan.Project.ID),
		zap.String("owner_id", owner.ID),
		zap.Int("members", len(plan.Members)))
	return &plan, nil
}

// GetProject is visible to project members only.
func (uc *UseCase) GetProject(ctx context.Context, actorID, projectID string) (*domain.Project, error) {
	if _, err := usecase.ResolveActor(ctx, uc.members, projectID, actorID); err != nil {
		return nil, err
	}
	return uc.projects.GetByID(ctx, projectID)
}
