package transport

import (
	"time"

	"github.com/fastygo/tasktrack/domain"
	projectUC "github.com/fastygo/tasktrack/usecase/project"
)

// TaskCreateRequest is the body of POST /projects/{projectId}/tasks.
type TaskCreateRequest struct {
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	AssigneeID     string              `json:"assignee_id"`
	Priority       domain.TaskPriority `json:"priority"`
	StartDate      time.Time           `json:"start_date"`
	Deadline       time.Time           `json:"deadline"`
	EstimatedHours *float64            `json:"estimated_hours"`
}

// Task converts the request into a draft for the lifecycle engine.
func (r TaskCreateRequest) Task() domain.Task {
	return domain.Task{
		Name:           r.Name,
		Description:    r.Description,
		AssigneeID:     r.AssigneeID,
		Priority:       r.Priority,
		StartDate:      r.StartDate,
		Deadline:       r.Deadline,
		EstimatedHours: r.EstimatedHours,
	}
}

// TaskPatchRequest carries the full edit path. Omitted fields stay unchanged.
type TaskPatchRequest struct {
	Name           *string              `json:"name"`
	Description    *string              `json:"description"`
	Status         *domain.TaskStatus   `json:"status"`
	Priority       *domain.TaskPriority `json:"priority"`
	StartDate      *time.Time           `json:"start_date"`
	Deadline       *time.Time           `json:"deadline"`
	EstimatedHours *float64             `json:"estimated_hours"`
}

type StatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

type AssigneeRequest struct {
	AssigneeID string `json:"assignee_id"`
}

type TimeLogRequest struct {
	Minutes int `json:"minutes"`
}

// MemberAddRequest adds a user to a project on the caller's authority.
type MemberAddRequest struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

func (r MemberAddRequest) Member() domain.ProjectMember {
	return domain.ProjectMember{
		UserID: r.UserID,
		Email:  r.Email,
		Role:   r.Role,
	}
}

// InvitationRequest addresses the invitee by user_id or, failing that, email.
type InvitationRequest struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

type RoleChangeRequest struct {
	Role domain.Role `json:"role"`
}

type ProjectMemberRequest struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// Input converts the request for the project use case.
func (r ProjectCreateRequest) Input() projectUC.CreateInput {
	members := make([]domain.ProjectMember, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, domain.ProjectMember{UserID: m.UserID, Email: m.Email, Role: m.Role})
	}
	return projectUC.CreateInput{
		Name:        r.Name,
		Description: r.Description,
		ManagerID:   r.ManagerID,
		Members:     members,
	}
}

type ProjectCreateRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	ManagerID   string                 `json:"manager_id"`
	Members     []ProjectMemberRequest `json:"members"`
}

// PermissionsResponse is the actor's role and capability set inside one project.
type PermissionsResponse struct {
	ProjectID    string          `json:"project_id"`
	Role         domain.Role     `json:"role"`
	Capabilities map[string]bool `json:"capabilities"`
}
