package catalog

// Role represents a user's role within an organization
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleOrgAdmin     Role = "ORG_ADMIN"
	RoleStaff        Role = "STAFF"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleAccountant   Role = "ACCOUNTANT"
	RoleClient       Role = "CLIENT"
)

// fullAccessRoles may use any feature the organization has enabled
var fullAccessRoles = map[Role]bool{
	RoleSuperAdmin: true,
	RoleOrgAdmin:   true,
}

// roleAllowedFeatures restricts the remaining roles to explicit
// allow-lists. A role absent from both tables is denied everything.
var roleAllowedFeatures = map[Role][]Feature{
	RoleStaff: {
		FeatureCRM, FeatureEmailing, FeatureShop, FeatureStock,
		FeatureWhatsApp, FeatureSMS,
	},
	RoleReceptionist: {
		FeatureCRM, FeatureWhatsApp, FeatureSMS,
	},
	RoleAccountant: {
		FeatureShop, FeatureStock,
	},
	RoleClient: {},
}

// Roles returns all known roles
func Roles() []Role {
	return []Role{
		RoleSuperAdmin, RoleOrgAdmin, RoleStaff,
		RoleReceptionist, RoleAccountant, RoleClient,
	}
}

// IsValidRole reports whether r names a known role
func IsValidRole(r Role) bool {
	if fullAccessRoles[r] {
		return true
	}
	_, ok := roleAllowedFeatures[r]
	return ok
}

// FullAccess reports whether the role may use any org-enabled feature
func (r Role) FullAccess() bool {
	return fullAccessRoles[r]
}

// RoleAllows reports whether the role itself permits the feature,
// independent of the organization's entitlements. Unknown roles and
// unknown features are denied.
func RoleAllows(r Role, f Feature) bool {
	if !IsValidFeature(f) {
		return false
	}
	if fullAccessRoles[r] {
		return true
	}
	for _, allowed := range roleAllowedFeatures[r] {
		if allowed == f {
			return true
		}
	}
	return false
}
