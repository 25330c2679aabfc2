package domain

import "time"

// InvitationStatus tracks an invitation from issue to answer.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// Invitation is a standing offer from a member to a user to join a project
// with a role. Only the invitee can answer it, and only once.
type Invitation struct {
	ID          string           `json:"id"`
	ProjectID   string           `json:"project_id"`
	InviterID   string           `json:"inviter_id"`
	InviteeID   string           `json:"invitee_id"`
	Email       string           `json:"email"`
	Role        Role             `json:"role"`
	Status      InvitationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

func (i Invitation) Pending() bool {
	return i.Status == InvitationPending
}

var (
	ErrInvitationNotFound = NewError(ErrCodeNotFound, "invitation not found")
	ErrInvitationAnswered = NewError(ErrCodeConflict, "invitation was already answered")
	ErrInvitationPending  = NewError(ErrCodeInvalid, "user already has a pending invitation to the project")
	ErrNotInvitee         = NewError(ErrCodeForbidden, "invitation is addressed to another user")
)
