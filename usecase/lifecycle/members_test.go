package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktrack/domain"
)

func roster() []domain.ProjectMember {
	return []domain.ProjectMember{
		{ID: "m-owner", ProjectID: "p1", UserID: "u-owner", Email: "owner@acme.io", Role: domain.RoleOwner},
		{ID: "m-mgr", ProjectID: "p1", UserID: "u-mgr", Email: "mgr@acme.io", Role: domain.RoleManager},
		{ID: "m-dev", ProjectID: "p1", UserID: "u-dev", Email: "dev@acme.io", Role: domain.RoleBackendDev},
		{ID: "m-other", ProjectID: "p2", UserID: "u-x", Email: "x@acme.io", Role: domain.RoleManager},
	}
}

func TestRequestMemberRemoval_OwnerIsPermanent(t *testing.T) {
	e := newEngine()
	owner := roster()[0]
	for _, role := range append(domain.Roles(), domain.Role("ghost")) {
		_, err := e.RequestMemberRemoval(owner, Actor{UserID: "u-any", Role: role})
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvariantViolation), role)
	}
}

func TestRequestMemberRemoval(t *testing.T) {
	e := newEngine()
	dev := roster()[2]

	out, err := e.RequestMemberRemoval(dev, Actor{UserID: "u-owner", Role: domain.RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, "m-dev", out.ID)

	_, err = e.RequestMemberRemoval(dev, Actor{UserID: "u-mgr", Role: domain.RoleManager})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestRequestRoleChange(t *testing.T) {
	e := newEngine()
	owner := Actor{UserID: "u-owner", Role: domain.RoleOwner}
	members := roster()

	_, err := e.RequestRoleChange(members[2], domain.RoleManager, owner, members)
	assert.ErrorIs(t, err, domain.ErrManagerAssigned)

	out, err := e.RequestRoleChange(members[1], domain.RoleManager, owner, members)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, out.Role)

	// managers of other projects do not count
	out, err = e.RequestRoleChange(members[2], domain.RoleManager, owner, []domain.ProjectMember{members[0], members[2], members[3]})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, out.Role)

	_, err = e.RequestRoleChange(members[2], domain.RoleOwner, owner, members)
	assert.ErrorIs(t, err, domain.ErrSecondOwner)

	_, err = e.RequestRoleChange(members[0], domain.RoleDesigner, owner, members)
	assert.ErrorIs(t, err, domain.ErrOwnerImmutable)

	_, err = e.RequestRoleChange(members[2], domain.RoleDesigner, Actor{UserID: "u-mgr", Role: domain.RoleManager}, members)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = e.RequestRoleChange(members[2], domain.Role("lead"), owner, members)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestRequestMemberAdd(t *testing.T) {
	e := newEngine()
	members := roster()
	owner := Actor{UserID: "u-owner", Role: domain.RoleOwner}
	manager := Actor{UserID: "u-mgr", Role: domain.RoleManager}
	candidate := domain.ProjectMember{ProjectID: "p1", UserID: "u-new", Email: " new@acme.io ", Role: domain.RoleDesigner}

	out, err := e.RequestMemberAdd(candidate, owner, members)
	require.NoError(t, err)
	assert.Equal(t, "new@acme.io", out.Email)
	assert.Equal(t, "u-owner", out.InvitedBy)
	assert.Equal(t, now, out.JoinedAt)

	forged := candidate
	forged.InvitedBy = "nobody"
	out, err = e.RequestMemberAdd(forged, manager, members)
	require.NoError(t, err)
	assert.Equal(t, "u-mgr", out.InvitedBy)

	_, err = e.RequestMemberAdd(candidate, Actor{UserID: "u-dev", Role: domain.RoleBackendDev}, members)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = e.RequestMemberAdd(candidate, Actor{UserID: "u-new"}, members)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	dup := candidate
	dup.UserID = "u-other"
	dup.Email = "DEV@acme.io"
	_, err = e.RequestMemberAdd(dup, owner, members)
	assert.ErrorIs(t, err, domain.ErrDuplicateMember)

	mgr := candidate
	mgr.Role = domain.RoleManager
	_, err = e.RequestMemberAdd(mgr, owner, members)
	assert.ErrorIs(t, err, domain.ErrManagerAssigned)

	ownerRole := candidate
	ownerRole.Role = domain.RoleOwner
	_, err = e.RequestMemberAdd(ownerRole, owner, members)
	assert.ErrorIs(t, err, domain.ErrSecondOwner)

	bad := candidate
	bad.Email = "not-an-email"
	_, err = e.RequestMemberAdd(bad, owner, members)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestRequestMemberAdd_ManagerNeedsRoleChangeRight(t *testing.T) {
	e := newEngine()
	members := []domain.ProjectMember{roster()[0], roster()[2]}
	mgr := domain.ProjectMember{ProjectID: "p1", UserID: "u-new", Email: "new@acme.io", Role: domain.RoleManager}

	out, err := e.RequestMemberAdd(mgr, Actor{UserID: "u-owner", Role: domain.RoleOwner}, members)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, out.Role)

	_, err = e.RequestMemberAdd(mgr, Actor{UserID: "u-lead", Role: domain.RoleManager}, members)
	require.Error(t, err)
	assert.Equal(t, domain.Forbidden(domain.CapChangeRoles).Error(), err.Error())
}

func TestRequestInvitation(t *testing.T) {
	e := newEngine()
	members := roster()
	inv := domain.Invitation{ProjectID: "p1", InviteeID: "u-new", Email: "new@acme.io", Role: domain.RoleTester, InviterID: "forged"}

	out, err := e.RequestInvitation(inv, Actor{UserID: "u-mgr", Role: domain.RoleManager}, members, nil)
	require.NoError(t, err)
	assert.Equal(t, "u-mgr", out.InviterID)
	assert.Equal(t, domain.InvitationPending, out.Status)
	assert.Equal(t, now, out.CreatedAt)

	_, err = e.RequestInvitation(inv, Actor{UserID: "u-dev", Role: domain.RoleBackendDev}, members, nil)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = e.RequestInvitation(inv, Actor{UserID: "u-owner", Role: domain.RoleOwner}, members, []domain.Invitation{out})
	assert.ErrorIs(t, err, domain.ErrInvitationPending)

	answered := out
	answered.Status = domain.InvitationRejected
	_, err = e.RequestInvitation(inv, Actor{UserID: "u-owner", Role: domain.RoleOwner}, members, []domain.Invitation{answered})
	assert.NoError(t, err)

	existing := inv
	existing.InviteeID = "u-dev"
	existing.Email = "dev@acme.io"
	_, err = e.RequestInvitation(existing, Actor{UserID: "u-owner", Role: domain.RoleOwner}, members, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateMember)

	asOwner := inv
	asOwner.Role = domain.RoleOwner
	_, err = e.RequestInvitation(asOwner, Actor{UserID: "u-owner", Role: domain.RoleOwner}, members, nil)
	assert.ErrorIs(t, err, domain.ErrSecondOwner)
}

func TestRequestInvitationAccept(t *testing.T) {
	e := newEngine()
	members := roster()
	inv := domain.Invitation{ID: "i1", ProjectID: "p1", InviterID: "u-mgr", InviteeID: "u-new", Email: "new@acme.io", Role: domain.RoleDesigner, Status: domain.InvitationPending}
	inviter := Actor{UserID: "u-mgr", Role: domain.RoleManager}

	accepted, member, err := e.RequestInvitationAccept(inv, inviter, "u-new", members)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)
	assert.Equal(t, now, *accepted.RespondedAt)
	assert.Equal(t, "u-new", member.UserID)
	assert.Equal(t, "u-mgr", member.InvitedBy)
	assert.Equal(t, domain.RoleDesigner, member.Role)

	_, _, err = e.RequestInvitationAccept(inv, inviter, "u-dev", members)
	assert.ErrorIs(t, err, domain.ErrNotInvitee)

	_, _, err = e.RequestInvitationAccept(inv, inviter, "", members)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = e.RequestInvitationAccept(accepted, inviter, "u-new", members)
	assert.ErrorIs(t, err, domain.ErrInvitationAnswered)

	demoted := Actor{UserID: "u-mgr", Role: domain.RoleTester}
	_, _, err = e.RequestInvitationAccept(inv, demoted, "u-new", members)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, _, err = e.RequestInvitationAccept(inv, Actor{UserID: "u-owner", Role: domain.RoleOwner}, "u-new", members)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestRequestInvitationReject(t *testing.T) {
	e := newEngine()
	inv := domain.Invitation{ID: "i1", ProjectID: "p1", InviterID: "u-mgr", InviteeID: "u-new", Status: domain.InvitationPending}

	out, err := e.RequestInvitationReject(inv, "u-new")
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationRejected, out.Status)

	_, err = e.RequestInvitationReject(inv, "u-mgr")
	assert.ErrorIs(t, err, domain.ErrNotInvitee)

	_, err = e.RequestInvitationReject(out, "u-new")
	assert.ErrorIs(t, err, domain.ErrInvitationAnswered)
}

func TestRequestProjectCreation(t *testing.T) {
	e := newEngine()
	owner := domain.User{ID: "u-owner", Email: "owner@acme.io"}
	manager := &domain.User{ID: "u-mgr", Email: "mgr@acme.io"}

	plan, err := e.RequestProjectCreation(domain.Project{ID: "p9", Name: "Launch"}, owner, manager, []domain.ProjectMember{
		{UserID: "u-dev", Email: "dev@acme.io"},
		{UserID: "u-mgr", Email: "mgr@acme.io", Role: domain.RoleDesigner},
		{UserID: "u-owner", Email: "owner@acme.io"},
	})
	require.NoError(t, err)
	assert.Equal(t, "u-owner", plan.Project.OwnerID)
	require.Len(t, plan.Members, 3)
	assert.Equal(t, domain.RoleOwner, plan.Members[0].Role)
	assert.Equal(t, domain.RoleManager, plan.Members[1].Role)
	assert.Equal(t, domain.RoleFullstackDev, plan.Members[2].Role)

	owners := 0
	for _, m := range plan.Members {
		assert.Equal(t, "p9", m.ProjectID)
		if m.Role == domain.RoleOwner {
			owners++
		}
	}
	assert.Equal(t, 1, owners)

	plan, err = e.RequestProjectCreation(domain.Project{Name: "Solo"}, owner, nil,
		[]domain.ProjectMember{{UserID: "u-lead", Email: "lead@acme.io", Role: domain.RoleManager}})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, plan.Members[1].Role)

	_, err = e.RequestProjectCreation(domain.Project{Name: "Crowded"}, owner, manager,
		[]domain.ProjectMember{{UserID: "u-lead", Email: "lead@acme.io", Role: domain.RoleManager}})
	assert.ErrorIs(t, err, domain.ErrManagerAssigned)

	_, err = e.RequestProjectCreation(domain.Project{Name: "Nameless"}, domain.User{}, nil, nil)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
