package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTimeSpentMinutes is the largest total the record store can hold.
const MaxTimeSpentMinutes = math.MaxInt32

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusPending    TaskStatus = "pending"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusPending, StatusDone:
		return true
	}
	return false
}

func (s *TaskStatus) UnmarshalText(text []byte) error {
	v := TaskStatus(text)
	if !v.Valid() {
		return fmt.Errorf("unknown task status %q", text)
	}
	*s = v
	return nil
}

// TaskPriority is the urgency of a task. It is either set by hand or suggested by derivation.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p *TaskPriority) UnmarshalText(text []byte) error {
	v := TaskPriority(text)
	if !v.Valid() {
		return fmt.Errorf("unknown task priority %q", text)
	}
	*p = v
	return nil
}

// TaskProgress classifies time consumption against the estimate.
type TaskProgress string

const (
	ProgressOnTrack         TaskProgress = "on_track"
	ProgressAtRisk          TaskProgress = "at_risk"
	ProgressDelayed         TaskProgress = "delayed"
	ProgressAheadOfSchedule TaskProgress = "ahead_of_schedule"
	ProgressCompleted       TaskProgress = "completed"
)

func (p TaskProgress) Valid() bool {
	switch p {
	case ProgressOnTrack, ProgressAtRisk, ProgressDelayed, ProgressAheadOfSchedule, ProgressCompleted:
		return true
	}
	return false
}

func (p *TaskProgress) UnmarshalText(text []byte) error {
	v := TaskProgress(text)
	if !v.Valid() {
		return fmt.Errorf("unknown task progress %q", text)
	}
	*p = v
	return nil
}

const (
	minTaskNameLen = 3
	maxTaskNameLen = 100
)

// Task represents a unit of work inside a project.
type Task struct {
	ID               string       `json:"id"`
	ProjectID        string       `json:"project_id"`
	AssigneeID       string       `json:"assignee_id"`
	Name             string       `json:"name"`
	Description      string       `json:"description,omitempty"`
	Status           TaskStatus   `json:"status"`
	Priority         TaskPriority `json:"priority"`
	Progress         TaskProgress `json:"progress"`
	StartDate        time.Time    `json:"start_date"`
	Deadline         time.Time    `json:"deadline"`
	EstimatedHours   *float64     `json:"estimated_hours,omitempty"`
	TimeSpentMinutes int          `json:"time_spent_minutes"`
	CompletedAt      *time.Time   `json:"completed_at"`
	PausedAt         *time.Time   `json:"paused_at,omitempty"`
	ResumedAt        *time.Time   `json:"resumed_at,omitempty"`
	Version          int          `json:"version"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// Clone returns a deep copy so callers can mutate the result without aliasing timestamps.
func (t Task) Clone() Task {
	out := t
	out.EstimatedHours = cloneFloat(t.EstimatedHours)
	out.CompletedAt = cloneTime(t.CompletedAt)
	out.PausedAt = cloneTime(t.PausedAt)
	out.ResumedAt = cloneTime(t.ResumedAt)
	return out
}

// Validate checks the field-level rules every stored task must satisfy.
func (t Task) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return Invalid("task name is required")
	}
	if n := utf8.RuneCountInString(name); n < minTaskNameLen || n > maxTaskNameLen {
		return Invalid(fmt.Sprintf("task name must be between %d and %d characters", minTaskNameLen, maxTaskNameLen))
	}
	if t.ProjectID == "" {
		return Invalid("project id is required")
	}
	if !t.Status.Valid() {
		return Invalid(fmt.Sprintf("unknown status %q", t.Status))
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return Invalid(fmt.Sprintf("unknown priority %q", t.Priority))
	}
	if t.StartDate.IsZero() || t.Deadline.IsZero() {
		return Invalid("start date and deadline are required")
	}
	if !t.Deadline.After(t.StartDate) {
		return Invalid("deadline must be after start date")
	}
	if t.EstimatedHours != nil && *t.EstimatedHours <= 0 {
		return Invalid("estimated hours must be positive")
	}
	if t.TimeSpentMinutes < 0 {
		return Invalid("time spent cannot be negative")
	}
	if t.TimeSpentMinutes > MaxTimeSpentMinutes {
		return ErrTimeSpentOverflow
	}
	return nil
}

// Equal reports whether two snapshots carry the same lifecycle state, ignoring bookkeeping columns.
func (t Task) Equal(o Task) bool {
	return t.ID == o.ID &&
		t.ProjectID == o.ProjectID &&
		t.AssigneeID == o.AssigneeID &&
		t.Name == o.Name &&
		t.Description == o.Description &&
		t.Status == o.Status &&
		t.Priority == o.Priority &&
		t.Progress == o.Progress &&
		t.StartDate.Equal(o.StartDate) &&
		t.Deadline.Equal(o.Deadline) &&
		equalFloat(t.EstimatedHours, o.EstimatedHours) &&
		t.TimeSpentMinutes == o.TimeSpentMinutes &&
		equalTime(t.CompletedAt, o.CompletedAt) &&
		equalTime(t.PausedAt, o.PausedAt) &&
		equalTime(t.ResumedAt, o.ResumedAt)
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
