package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
	"github.com/fastygo/tasktrack/usecase"
	"github.com/fastygo/tasktrack/usecase/lifecycle"
)

const (
	OpCreate         = "task_create"
	OpUpdate         = "task_update"
	OpStatusChange   = "status_change"
	OpTimeLog        = "time_log"
	OpAssigneeChange = "assignee_change"
	OpDelete         = "task_delete"
)

type UseCase struct {
	engine     *lifecycle.Engine
	tasks      repository.TaskRepository
	members    repository.MemberRepository
	activities repository.ActivityRepository
	buffer     usecase.OperationBuffer
	recorder   usecase.Recorder
	logger     *zap.Logger
}

type Option func(*UseCase)

func WithBuffer(buffer usecase.OperationBuffer) Option {
	return func(uc *UseCase) { uc.buffer = buffer }
}

func WithActivities(activities repository.ActivityRepository) Option {
	return func(uc *UseCase) { uc.activities = activities }
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

func New(engine *lifecycle.Engine, tasks repository.TaskRepository, members repository.MemberRepository, opts ...Option) *UseCase {
	uc := &UseCase{
		engine:   engine,
		tasks:    tasks,
		members:  members,
		recorder: usecase.NopRecorder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ListTasks returns the project's tasks. Members without ViewAllTasks only see their own.
func (uc *UseCase) ListTasks(ctx context.Context, actorID, projectID string, filter repository.TaskFilter) ([]domain.Task, error) {
	actor, err := usecase.ResolveActor(ctx, uc.members, projectID, actorID)
	if err != nil {
		return nil, err
	}
	filter.ProjectID = projectID
	if !uc.engine.Permissions(actor.Role).Has(domain.CapViewAllTasks) {
		filter.AssigneeID = actorID
	}
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, actorID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := usecase.ResolveActor(ctx, uc.members, task.ProjectID, actorID)
	if err != nil {
		return nil, err
	}
	if !uc.engine.Permissions(actor.Role).Has(domain.CapViewAllTasks) && task.AssigneeID != actorID {
		return nil, domain.Forbidden(domain.CapViewAllTasks)
	}
	return task, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, actorID, projectID string, draft domain.Task) (*domain.Task, error) {
	actor, err := usecase.ResolveActor(ctx, uc.members, projectID, actorID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpCreate, err)
	}
	draft.ProjectID = projectID
	task, err := uc.engine.RequestTaskCreate(draft, actor)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, OpCreate, err)
	}
	if err := uc.ensureUniqueName(ctx, projectID, task.Name, ""); err != nil {
		return nil, usecase.Observe(uc.recorder, OpCreate, err)
	}
	if err := uc.ensureAssignable(ctx, projectID, task.AssigneeID); err != nil {
		return nil, usecase.Observe(uc.recorder, OpCreate, err)
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	created, err := uc.tasks.Create(ctx, &task)
	if err != nil {
		activity := domain.NewActivity(projectID, domain.EntityTask, task.ID, "created", actorID, task)
		if !usecase.Retryable(err) || !uc.deferWrite(ctx, usecase.OperationCreate, &task, activity) {
			return nil, usecase.Observe(uc.recorder, OpCreate, err)
		}
		uc.recorder.Buffered(OpCreate)
		return &task, nil
	}

	usecase.Observe(uc.recorder, OpCreate, nil)
	usecase.Record(ctx, uc.activities, uc.logger,
		domain.NewActivity(projectID, domain.EntityTask, created.ID, "created", actorID, created))
	return created, nil
}

// UpdateTask applies the full edit path.
func (uc *UseCase) UpdateTask(ctx context.Context, actorID, id string, patch lifecycle.TaskPatch) (*domain.Task, error) {
	return uc.mutate(ctx, OpUpdate, actorID, id, func(current domain.Task, actor lifecycle.Actor) (domain.Task, error) {
		next, err := uc.engine.RequestTaskUpdate(current, patch, actor)
		if err != nil {
			return domain.Task{}, err
		}
		if next.Name != current.Name {
			if err := uc.ensureUniqueName(ctx, current.ProjectID, next.Name, current.ID); err != nil {
				return domain.Task{}, err
			}
		}
		return next, nil
	})
}

// ChangeStatus is the restricted InProgress/Pending toggle.
func (uc *UseCase) ChangeStatus(ctx context.Context, actorID, id string, status domain.TaskStatus) (*domain.Task, error) {
	return uc.mutate(ctx, OpStatusChange, actorID, id, func(current domain.Task, actor lifecycle.Actor) (domain.Task, error) {
		return uc.engine.RequestStatusChange(current, status, actor)
	})
}

func (uc *UseCase) LogTime(ctx context.Context, actorID, id string, minutes int) (*domain.Task, error) {
	return uc.mutate(ctx, OpTimeLog, actorID, id, func(current domain.Task, actor lifecycle.Actor) (domain.Task, error) {
		return uc.engine.RequestTimeLog(current, minutes, actor)
	})
}

// AssignTask hands the task to assigneeID, who must belong to the task's project.
func (uc *UseCase) AssignTask(ctx context.Context, actorID, id, assigneeID string) (*domain.Task, error) {
	return uc.mutate(ctx, OpAssigneeChange, actorID, id, func(current domain.Task, actor lifecycle.Actor) (domain.Task, error) {
		next, err := uc.engine.RequestAssigneeChange(current, assigneeID, actor)
		if err != nil {
			return domain.Task{}, err
		}
		if err := uc.ensureAssignable(ctx, current.ProjectID, assigneeID); err != nil {
			return domain.Task{}, err
		}
		return next, nil
	})
}

// DeleteTask removes a task. Any project member may delete.
func (uc *UseCase) DeleteTask(ctx context.Context, actorID, id string) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := usecase.ResolveActor(ctx, uc.members, task.ProjectID, actorID); err != nil {
		return usecase.Observe(uc.recorder, OpDelete, err)
	}
	activity := domain.NewActivity(task.ProjectID, domain.EntityTask, id, "deleted", actorID, nil)
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if !usecase.Retryable(err) || !uc.deferWrite(ctx, usecase.OperationDelete, task, activity) {
			return usecase.Observe(uc.recorder, OpDelete, err)
		}
		uc.recorder.Buffered(OpDelete)
		return nil
	}
	usecase.Observe(uc.recorder, OpDelete, nil)
	usecase.Record(ctx, uc.activities, uc.logger, activity)
	return nil
}

type applyFunc func(current domain.Task, actor lifecycle.Actor) (domain.Task, error)

// mutate runs load, authorize, apply and conditional save for one task.
func (uc *UseCase) mutate(ctx context.Context, op, actorID, id string, apply applyFunc) (*domain.Task, error) {
	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := usecase.ResolveActor(ctx, uc.members, current.ProjectID, actorID)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, op, err)
	}
	next, err := apply(*current, actor)
	if err != nil {
		return nil, usecase.Observe(uc.recorder, op, err)
	}
	if next.Equal(*current) {
		return current, usecase.Observe(uc.recorder, op, nil)
	}
	activity := domain.NewActivity(next.ProjectID, domain.EntityTask, next.ID, op, actorID, changes(*current, next))
	if err := uc.tasks.Update(ctx, &next); err != nil {
		if !usecase.Retryable(err) || !uc.deferWrite(ctx, usecase.OperationUpdate, &next, activity) {
			return nil, usecase.Observe(uc.recorder, op, err)
		}
		uc.recorder.Buffered(op)
		return &next, nil
	}

	usecase.Observe(uc.recorder, op, nil)
	usecase.Record(ctx, uc.activities, uc.logger, activity)
	return &next, nil
}

func (uc *UseCase) ensureUniqueName(ctx context.Context, projectID, name, exceptID string) error {
	same, err := uc.tasks.List(ctx, repository.TaskFilter{ProjectID: projectID, Name: name, Limit: 2})
	if err != nil {
		return err
	}
	for _, t := range same {
		if t.ID != exceptID {
			return domain.ErrDuplicateName
		}
	}
	return nil
}

func (uc *UseCase) ensureAssignable(ctx context.Context, projectID, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := uc.members.GetByProjectAndUser(ctx, projectID, userID); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return domain.Invalid("assignee is not a member of the project")
		}
		return err
	}
	return nil
}

// deferWrite hands task to the offline buffer. The activity is appended by
// the buffer once the write lands.
func (uc *UseCase) deferWrite(ctx context.Context, operation string, task *domain.Task, activity domain.Activity) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task, activity); err != nil {
		uc.logger.Error("failed to buffer task operation",
			zap.String("operation", operation),
			zap.String("task_id", task.ID),
			zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", task.ID))
	return true
}

// changes lists the lifecycle fields that differ, as {field: [before, after]}.
func changes(before, after domain.Task) map[string][2]interface{} {
	out := map[string][2]interface{}{}
	add := func(field string, a, b interface{}) { out[field] = [2]interface{}{a, b} }
	if before.Name != after.Name {
		add("name", before.Name, after.Name)
	}
	if before.Status != after.Status {
		add("status", before.Status, after.Status)
	}
	if before.Priority != after.Priority {
		add("priority", before.Priority, after.Priority)
	}
	if before.Progress != after.Progress {
		add("progress", before.Progress, after.Progress)
	}
	if before.AssigneeID != after.AssigneeID {
		add("assignee_id", before.AssigneeID, after.AssigneeID)
	}
	if before.TimeSpentMinutes != after.TimeSpentMinutes {
		add("time_spent_minutes", before.TimeSpentMinutes, after.TimeSpentMinutes)
	}
	if !before.StartDate.Equal(after.StartDate) {
		add("start_date", before.StartDate.Format(time.RFC3339), after.StartDate.Format(time.RFC3339))
	}
	if !before.Deadline.Equal(after.Deadline) {
		add("deadline", before.Deadline.Format(time.RFC3339), after.Deadline.Format(time.RFC3339))
	}
	return out
}
