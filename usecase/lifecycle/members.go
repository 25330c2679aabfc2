package lifecycle

import (
	"strings"

	"github.com/fastygo/tasktrack/domain"
)

// RequestRoleChange reassigns member to role. Membership invariants are
// checked before the actor's capability.
func (e *Engine) RequestRoleChange(member domain.ProjectMember, role domain.Role, actor Actor, current []domain.ProjectMember) (domain.ProjectMember, error) {
	if !role.Valid() {
		return domain.ProjectMember{}, domain.Invalid("unknown role " + string(role))
	}
	if member.Role == domain.RoleOwner {
		return domain.ProjectMember{}, domain.ErrOwnerImmutable
	}
	if role == domain.RoleOwner {
		return domain.ProjectMember{}, domain.ErrSecondOwner
	}
	if role == domain.RoleManager && otherManager(member, current) {
		return domain.ProjectMember{}, domain.ErrManagerAssigned
	}
	if !e.matrix.HasCapability(actor.Role, domain.CapChangeRoles) {
		return domain.ProjectMember{}, domain.Forbidden(domain.CapChangeRoles)
	}
	out := member
	out.Role = role
	return out, nil
}

// RequestMemberRemoval returns the membership to delete. The owner can never be removed.
func (e *Engine) RequestMemberRemoval(member domain.ProjectMember, actor Actor) (domain.ProjectMember, error) {
	if member.Role == domain.RoleOwner {
		return domain.ProjectMember{}, domain.ErrOwnerNotRemoval
	}
	if !e.matrix.HasCapability(actor.Role, domain.CapRemoveMembers) {
		return domain.ProjectMember{}, domain.Forbidden(domain.CapRemoveMembers)
	}
	return member, nil
}

// RequestMemberAdd admits a new member on the actor's authority. Adding a
// manager also takes the right to change roles, so only the owner can do it.
// The returned member records the actor as its inviter.
func (e *Engine) RequestMemberAdd(member domain.ProjectMember, actor Actor, current []domain.ProjectMember) (domain.ProjectMember, error) {
	if member.ProjectID == "" || member.UserID == "" {
		return domain.ProjectMember{}, domain.Invalid("project id and user id are required")
	}
	if err := admissible(member.ProjectID, member.UserID, member.Email, member.Role, current); err != nil {
		return domain.ProjectMember{}, err
	}
	if err := e.canAdmit(actor, member.Role); err != nil {
		return domain.ProjectMember{}, err
	}

	out := member
	out.Email = strings.TrimSpace(out.Email)
	out.InvitedBy = actor.UserID
	out.Version = 0
	if out.JoinedAt.IsZero() {
		out.JoinedAt = e.now()
	}
	return out, nil
}

// RequestInvitation issues a pending invitation. It is held to the same
// rules as a direct add, and a user has at most one open invitation per
// project.
func (e *Engine) RequestInvitation(inv domain.Invitation, actor Actor, current []domain.ProjectMember, open []domain.Invitation) (domain.Invitation, error) {
	if inv.ProjectID == "" || inv.InviteeID == "" {
		return domain.Invitation{}, domain.Invalid("project id and invitee id are required")
	}
	if err := admissible(inv.ProjectID, inv.InviteeID, inv.Email, inv.Role, current); err != nil {
		return domain.Invitation{}, err
	}
	for _, o := range open {
		if o.ProjectID == inv.ProjectID && o.InviteeID == inv.InviteeID && o.Pending() {
			return domain.Invitation{}, domain.ErrInvitationPending
		}
	}
	if err := e.canAdmit(actor, inv.Role); err != nil {
		return domain.Invitation{}, err
	}

	out := inv
	out.Email = strings.TrimSpace(out.Email)
	out.InviterID = actor.UserID
	out.Status = domain.InvitationPending
	out.CreatedAt = e.now()
	out.RespondedAt = nil
	return out, nil
}

// RequestInvitationAccept turns a pending invitation into a membership for
// inviteeID. inviter is the issuing member as currently stored: an inviter
// who has since lost the right to invite, or left the project, can no longer
// admit anyone.
func (e *Engine) RequestInvitationAccept(inv domain.Invitation, inviter Actor, inviteeID string, current []domain.ProjectMember) (domain.Invitation, domain.ProjectMember, error) {
	if err := answerable(inv, inviteeID); err != nil {
		return domain.Invitation{}, domain.ProjectMember{}, err
	}
	if inviter.UserID != inv.InviterID {
		return domain.Invitation{}, domain.ProjectMember{}, domain.Forbidden(domain.CapInviteMembers)
	}
	member, err := e.RequestMemberAdd(domain.ProjectMember{
		ProjectID: inv.ProjectID,
		UserID:    inviteeID,
		Email:     inv.Email,
		Role:      inv.Role,
	}, inviter, current)
	if err != nil {
		return domain.Invitation{}, domain.ProjectMember{}, err
	}

	now := e.now()
	accepted := inv
	accepted.Status = domain.InvitationAccepted
	accepted.RespondedAt = &now
	member.JoinedAt = now
	return accepted, member, nil
}

// RequestInvitationReject closes a pending invitation without a membership.
func (e *Engine) RequestInvitationReject(inv domain.Invitation, inviteeID string) (domain.Invitation, error) {
	if err := answerable(inv, inviteeID); err != nil {
		return domain.Invitation{}, err
	}
	now := e.now()
	out := inv
	out.Status = domain.InvitationRejected
	out.RespondedAt = &now
	return out, nil
}

func (e *Engine) canAdmit(actor Actor, role domain.Role) error {
	if !e.matrix.HasCapability(actor.Role, domain.CapInviteMembers) {
		return domain.Forbidden(domain.CapInviteMembers)
	}
	if role == domain.RoleManager && !e.matrix.HasCapability(actor.Role, domain.CapChangeRoles) {
		return domain.Forbidden(domain.CapChangeRoles)
	}
	return nil
}

// admissible checks the membership invariants for userID joining projectID as role.
func admissible(projectID, userID, email string, role domain.Role, current []domain.ProjectMember) error {
	if !role.Valid() {
		return domain.Invalid("unknown role " + string(role))
	}
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	if role == domain.RoleOwner {
		return domain.ErrSecondOwner
	}
	candidate := domain.ProjectMember{ProjectID: projectID, UserID: userID, Email: email, Role: role}
	for _, m := range current {
		if m.ProjectID != projectID {
			continue
		}
		if m.UserID == userID || m.NormalizedEmail() == candidate.NormalizedEmail() {
			return domain.ErrDuplicateMember
		}
	}
	if role == domain.RoleManager && otherManager(candidate, current) {
		return domain.ErrManagerAssigned
	}
	return nil
}

func answerable(inv domain.Invitation, inviteeID string) error {
	if inviteeID == "" {
		return domain.ErrUnauthorized
	}
	if inv.InviteeID != inviteeID {
		return domain.ErrNotInvitee
	}
	if !inv.Pending() {
		return domain.ErrInvitationAnswered
	}
	return nil
}

// ProjectPlan is the project record and its initial memberships.
type ProjectPlan struct {
	Project domain.Project
	Members []domain.ProjectMember
}

// RequestProjectCreation seeds a project with exactly one owner, an optional
// manager and the remaining members. Members without a role default to
// FullstackDev; entries duplicating the owner or manager are skipped.
func (e *Engine) RequestProjectCreation(project domain.Project, owner domain.User, manager *domain.User, others []domain.ProjectMember) (ProjectPlan, error) {
	if strings.TrimSpace(project.Name) == "" {
		return ProjectPlan{}, domain.Invalid("project name is required")
	}
	if owner.ID == "" {
		return ProjectPlan{}, domain.Invalid("owner is required")
	}
	now := e.now()
	project.OwnerID = owner.ID

	members := []domain.ProjectMember{{
		ProjectID: project.ID,
		UserID:    owner.ID,
		Email:     owner.Email,
		Role:      domain.RoleOwner,
		JoinedAt:  now,
	}}
	seen := map[string]bool{owner.ID: true}
	hasManager := false

	if manager != nil && manager.ID != "" && manager.ID != owner.ID {
		members = append(members, domain.ProjectMember{
			ProjectID: project.ID,
			UserID:    manager.ID,
			Email:     manager.Email,
			Role:      domain.RoleManager,
			InvitedBy: owner.ID,
			JoinedAt:  now,
		})
		seen[manager.ID] = true
		hasManager = true
	}

	for _, m := range others {
		if m.UserID == "" || seen[m.UserID] {
			continue
		}
		role := m.Role
		if role == "" {
			role = domain.RoleFullstackDev
		}
		if !role.Valid() {
			return ProjectPlan{}, domain.Invalid("unknown role " + string(role))
		}
		if role == domain.RoleOwner {
			return ProjectPlan{}, domain.ErrSecondOwner
		}
		if role == domain.RoleManager {
			if hasManager {
				return ProjectPlan{}, domain.ErrManagerAssigned
			}
			hasManager = true
		}
		members = append(members, domain.ProjectMember{
			ProjectID: project.ID,
			UserID:    m.UserID,
			Email:     m.Email,
			Role:      role,
			InvitedBy: owner.ID,
			JoinedAt:  now,
		})
		seen[m.UserID] = true
	}

	return ProjectPlan{Project: project, Members: members}, nil
}

func otherManager(member domain.ProjectMember, current []domain.ProjectMember) bool {
	for _, m := range current {
		if m.ProjectID == member.ProjectID && m.Role == domain.RoleManager && m.ID != member.ID {
			return true
		}
	}
	return false
}
