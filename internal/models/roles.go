package models

// Role is the membership level of an account. Self-selected tiers map onto
// roles at registration; admin and diamond exist only in the seed set.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleSilver   Role = "silver"
	RoleGold     Role = "gold"
	RolePlatinum Role = "platinum"
	RoleDiamond  Role = "diamond"
)

// Permission is a capability tag attached to an account. Permissions are
// advisory: they are computed once from the role and surfaced to callers for
// UI gating, but no store operation checks them.
type Permission string

const (
	PermCreate             Permission = "create"
	PermRead               Permission = "read"
	PermUpdate             Permission = "update"
	PermDelete             Permission = "delete"
	PermManageUsers        Permission = "manage_users"
	PermExportData         Permission = "export_data"
	PermSystemSettings     Permission = "system_settings"
	PermExportPersonalData Permission = "export_personal_data"
	PermAdvancedSearch     Permission = "advanced_search"
	PermBulkOperations     Permission = "bulk_operations"
	PermPremiumFeatures    Permission = "premium_features"
	PermPrioritySupport    Permission = "priority_support"
)

// rolePermissions is the single source of truth for role capabilities.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {PermCreate, PermRead, PermUpdate, PermDelete,
		PermManageUsers, PermExportData, PermSystemSettings},
	RoleUser:   {PermCreate, PermRead, PermUpdate},
	RoleSilver: {PermCreate, PermRead, PermUpdate, PermExportPersonalData},
	RoleGold: {PermCreate, PermRead, PermUpdate, PermDelete,
		PermExportPersonalData, PermAdvancedSearch},
	RolePlatinum: {PermCreate, PermRead, PermUpdate, PermDelete,
		PermExportPersonalData, PermAdvancedSearch, PermBulkOperations,
		PermPremiumFeatures, PermPrioritySupport},
	RoleDiamond: {PermCreate, PermRead, PermUpdate, PermDelete,
		PermExportPersonalData, PermAdvancedSearch, PermBulkOperations,
		PermPremiumFeatures},
}

// PermissionsForRole returns a fresh copy of the role's permission set.
// Unknown roles get the minimal user set.
func PermissionsForRole(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		perms = rolePermissions[RoleUser]
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleForTier maps a self-selected credential tier onto a role. Only the
// purchasable tiers are recognized; anything else, including attempts to
// self-register as admin or diamond, falls back to the plain user role.
func RoleForTier(tier string) Role {
	switch tier {
	case "silver":
		return RoleSilver
	case "gold":
		return RoleGold
	case "platinum":
		return RolePlatinum
	default:
		return RoleUser
	}
}
