package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Role is a member's function inside one project.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleManager      Role = "manager"
	RoleFrontendDev  Role = "frontend_dev"
	RoleBackendDev   Role = "backend_dev"
	RoleFullstackDev Role = "fullstack_dev"
	RoleDesigner     Role = "designer"
	RoleTester       Role = "tester"
)

// Roles lists every known role in display order.
func Roles() []Role {
	return []Role{RoleOwner, RoleManager, RoleFrontendDev, RoleBackendDev, RoleFullstackDev, RoleDesigner, RoleTester}
}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleFrontendDev, RoleBackendDev, RoleFullstackDev, RoleDesigner, RoleTester:
		return true
	}
	return false
}

func (r *Role) UnmarshalText(text []byte) error {
	v := Role(text)
	if !v.Valid() {
		return fmt.Errorf("unknown role %q", text)
	}
	*r = v
	return nil
}

// ProjectMember binds a user to a project with a role.
type ProjectMember struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	InvitedBy string    `json:"invited_by,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *ProjectMember) IsOwner() bool {
	return m != nil && m.Role == RoleOwner
}

// NormalizedEmail is the comparison key for duplicate detection.
func (m ProjectMember) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(m.Email))
}

// ValidateEmail accepts a single bare address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return Invalid("email is malformed")
	}
	return nil
}

// Project is the container tasks and members belong to.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
