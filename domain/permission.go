package domain

// Capability is one named permission of the role matrix.
type Capability int

const (
	CapEditProject Capability = iota
	CapDeleteProject
	CapManageMembers
	CapCreateTask
	CapEditAnyTask
	CapDeleteAnyTask
	CapAssignTasks
	CapInviteMembers
	CapRemoveMembers
	CapChangeRoles
	CapViewAllTasks
	CapViewProjectSettings

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	CapEditProject:         "canEditProject",
	CapDeleteProject:       "canDeleteProject",
	CapManageMembers:       "canManageMembers",
	CapCreateTask:          "canCreateTask",
	CapEditAnyTask:         "canEditAnyTask",
	CapDeleteAnyTask:       "canDeleteAnyTask",
	CapAssignTasks:         "canAssignTasks",
	CapInviteMembers:       "canInviteMembers",
	CapRemoveMembers:       "canRemoveMembers",
	CapChangeRoles:         "canChangeRoles",
	CapViewAllTasks:        "canViewAllTasks",
	CapViewProjectSettings: "canViewProjectSettings",
}

func (c Capability) String() string {
	if c < 0 || c >= capabilityCount {
		return "unknownCapability"
	}
	return capabilityNames[c]
}

// Capabilities lists every capability in declaration order.
func Capabilities() []Capability {
	out := make([]Capability, 0, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		out = append(out, c)
	}
	return out
}

// Permissions is the capability set of one role. It is an array so copies never alias.
type Permissions [capabilityCount]bool

func (p Permissions) Has(c Capability) bool {
	if c < 0 || c >= capabilityCount {
		return false
	}
	return p[c]
}

// Map renders the set keyed by capability name, for transport.
func (p Permissions) Map() map[string]bool {
	out := make(map[string]bool, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		out[c.String()] = p[c]
	}
	return out
}

func grant(caps ...Capability) Permissions {
	var p Permissions
	for _, c := range caps {
		p[c] = true
	}
	return p
}

// PermissionMatrix maps roles to capability sets. It has no mutators.
type PermissionMatrix struct {
	roles map[Role]Permissions
}

// DefaultPermissionMatrix builds the project role table.
func DefaultPermissionMatrix() *PermissionMatrix {
	contributor := grant(CapCreateTask, CapViewAllTasks)
	return &PermissionMatrix{roles: map[Role]Permissions{
		RoleOwner: grant(Capabilities()...),
		RoleManager: grant(
			CapEditProject,
			CapManageMembers,
			CapCreateTask,
			CapEditAnyTask,
			CapDeleteAnyTask,
			CapAssignTasks,
			CapInviteMembers,
			CapViewAllTasks,
			CapViewProjectSettings,
		),
		RoleFrontendDev:  contributor,
		RoleBackendDev:   contributor,
		RoleFullstackDev: contributor,
		RoleDesigner:     contributor,
		RoleTester:       contributor,
	}}
}

// Permissions returns the capability set of role. Unknown roles get an empty set.
func (m *PermissionMatrix) Permissions(role Role) Permissions {
	if m == nil {
		return Permissions{}
	}
	return m.roles[role]
}

// HasCapability is a pure table lookup.
func (m *PermissionMatrix) HasCapability(role Role, c Capability) bool {
	return m.Permissions(role).Has(c)
}

// CanPerformAction applies the self-edit override on top of the table lookup.
func (m *PermissionMatrix) CanPerformAction(role Role, c Capability, targetUserID, actingUserID string) bool {
	if SelfEditOverride(c, targetUserID, actingUserID) {
		return true
	}
	return m.HasCapability(role, c)
}

// SelfEditOverride reports whether a user is editing their own task.
// It applies only to CapEditAnyTask and requires both ids to be known.
func SelfEditOverride(c Capability, targetUserID, actingUserID string) bool {
	return c == CapEditAnyTask && targetUserID != "" && targetUserID == actingUserID
}
