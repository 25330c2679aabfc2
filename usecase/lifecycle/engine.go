// Package lifecycle validates task and membership mutations against the
// permission matrix and the task state machine, and derives the
// time-dependent task fields. It performs no I/O: every request returns the
// record the caller should persist, or a *domain.Error describing the
// rejection.
package lifecycle

import (
	"strings"
	"time"

	"github.com/fastygo/tasktrack/domain"
)

// Actor is the member performing a request.
type Actor struct {
	UserID string
	Role   domain.Role
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine holds only immutable collaborators and is safe for concurrent use.
type Engine struct {
	matrix *domain.PermissionMatrix
	now    func() time.Time
}

func New(matrix *domain.PermissionMatrix, opts ...Option) *Engine {
	if matrix == nil {
		matrix = domain.DefaultPermissionMatrix()
	}
	e := &Engine{matrix: matrix, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Matrix() *domain.PermissionMatrix { return e.matrix }

func (e *Engine) Now() time.Time { return e.now() }

// Permissions returns the capability set of role.
func (e *Engine) Permissions(role domain.Role) domain.Permissions {
	return e.matrix.Permissions(role)
}

func (e *Engine) canEdit(task domain.Task, actor Actor) bool {
	return e.matrix.CanPerformAction(actor.Role, domain.CapEditAnyTask, task.AssigneeID, actor.UserID)
}

// RequestStatusChange is the assignee's restricted status toggle. The
// transition is checked before the actor so that an out-of-class target is
// always reported as an illegal transition.
func (e *Engine) RequestStatusChange(task domain.Task, status domain.TaskStatus, actor Actor) (domain.Task, error) {
	if err := domain.CheckTransition(domain.TransitionStatusOnly, task.Status, status); err != nil {
		return domain.Task{}, err
	}
	if !e.canEdit(task, actor) {
		return domain.Task{}, domain.Forbidden(domain.CapEditAnyTask)
	}
	now := e.now()
	out := domain.ApplyStatus(task, status, now)
	return derive(out, now, false), nil
}

// TaskPatch lists the fields the full edit path may change. Nil means unchanged.
type TaskPatch struct {
	Name           *string
	Description    *string
	Status         *domain.TaskStatus
	Priority       *domain.TaskPriority
	StartDate      *time.Time
	Deadline       *time.Time
	EstimatedHours *float64
}

// RequestTaskUpdate is the full edit path. A supplied priority is kept as a
// manual override; otherwise priority is re-derived.
func (e *Engine) RequestTaskUpdate(task domain.Task, patch TaskPatch, actor Actor) (domain.Task, error) {
	if !e.canEdit(task, actor) {
		return domain.Task{}, domain.Forbidden(domain.CapEditAnyTask)
	}
	now := e.now()
	out := task.Clone()

	if patch.Name != nil {
		out.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.StartDate != nil {
		if !patch.StartDate.Equal(task.StartDate) && patch.StartDate.Before(startOfDay(now)) {
			return domain.Task{}, domain.ErrStartInPast
		}
		out.StartDate = *patch.StartDate
	}
	if patch.Deadline != nil {
		out.Deadline = *patch.Deadline
	}
	if patch.EstimatedHours != nil {
		hours := *patch.EstimatedHours
		out.EstimatedHours = &hours
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return domain.Task{}, domain.Invalid("unknown priority " + string(*patch.Priority))
		}
		out.Priority = *patch.Priority
	}
	if patch.Status != nil && *patch.Status != task.Status {
		if err := domain.CheckTransition(domain.TransitionFull, task.Status, *patch.Status); err != nil {
			return domain.Task{}, err
		}
		out = domain.ApplyStatus(out, *patch.Status, now)
	}

	if err := out.Validate(); err != nil {
		return domain.Task{}, err
	}
	return derive(out, now, patch.Priority != nil), nil
}

// RequestTaskCreate validates a new task draft.
func (e *Engine) RequestTaskCreate(draft domain.Task, actor Actor) (domain.Task, error) {
	if !e.matrix.HasCapability(actor.Role, domain.CapCreateTask) {
		return domain.Task{}, domain.Forbidden(domain.CapCreateTask)
	}
	now := e.now()
	out := draft.Clone()
	out.Name = strings.TrimSpace(out.Name)
	out.Version = 0
	out.PausedAt, out.ResumedAt, out.CompletedAt = nil, nil, nil
	if out.Status == "" {
		out.Status = domain.StatusToDo
	}
	if err := out.Validate(); err != nil {
		return domain.Task{}, err
	}
	if out.StartDate.Before(startOfDay(now)) {
		return domain.Task{}, domain.ErrStartInPast
	}
	out = domain.ApplyStatus(out, out.Status, now)
	manual := out.Priority != ""
	return derive(out, now, manual), nil
}

// RequestTimeLog adds minutes to the time spent on a task. The total is
// capped at the width of the stored column.
func (e *Engine) RequestTimeLog(task domain.Task, minutes int, actor Actor) (domain.Task, error) {
	if minutes <= 0 {
		return domain.Task{}, domain.ErrNonPositiveDelta
	}
	if minutes > domain.MaxTimeSpentMinutes || task.TimeSpentMinutes > domain.MaxTimeSpentMinutes-minutes {
		return domain.Task{}, domain.ErrTimeSpentOverflow
	}
	if !e.canEdit(task, actor) {
		return domain.Task{}, domain.Forbidden(domain.CapEditAnyTask)
	}
	out := task.Clone()
	out.TimeSpentMinutes += minutes
	return derive(out, e.now(), false), nil
}

// RequestAssigneeChange hands a task to another member.
func (e *Engine) RequestAssigneeChange(task domain.Task, assigneeID string, actor Actor) (domain.Task, error) {
	if !e.matrix.HasCapability(actor.Role, domain.CapAssignTasks) {
		return domain.Task{}, domain.Forbidden(domain.CapAssignTasks)
	}
	if strings.TrimSpace(assigneeID) == "" {
		return domain.Task{}, domain.Invalid("assignee id is required")
	}
	out := task.Clone()
	out.AssigneeID = assigneeID
	return out, nil
}

// Recalculate re-derives progress, priority and lifecycle timestamps at the
// engine's current time. The bool reports whether anything changed.
func (e *Engine) Recalculate(task domain.Task) (domain.Task, bool) {
	return RecalculateAt(task, e.now())
}

// RecalculateAt is the clock-free form used by batch runs that pin "now" once per run.
func RecalculateAt(task domain.Task, now time.Time) (domain.Task, bool) {
	out := domain.NormalizeTimestamps(task, now)
	out = derive(out, now, false)
	return out, !out.Equal(task)
}

// startOfDay truncates now to midnight in its own location.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func derive(t domain.Task, now time.Time, keepPriority bool) domain.Task {
	d := domain.DeriveProgressAndPriority(t, now)
	t.Progress = d.Progress
	if !keepPriority {
		t.Priority = d.Priority
	}
	return t
}
