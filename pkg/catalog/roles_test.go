package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAllows(t *testing.T) {
	t.Run("admin roles allow everything", func(t *testing.T) {
		for _, f := range Features() {
			assert.True(t, RoleAllows(RoleSuperAdmin, f))
			assert.True(t, RoleAllows(RoleOrgAdmin, f))
		}
	})

	t.Run("restricted roles follow their allow-list", func(t *testing.T) {
		assert.True(t, RoleAllows(RoleStaff, FeatureCRM))
		assert.False(t, RoleAllows(RoleStaff, FeatureBlog))

		assert.True(t, RoleAllows(RoleReceptionist, FeatureSMS))
		assert.False(t, RoleAllows(RoleReceptionist, FeatureStock))

		assert.True(t, RoleAllows(RoleAccountant, FeatureShop))
		assert.False(t, RoleAllows(RoleAccountant, FeatureEmailing))
	})

	t.Run("client is denied everything", func(t *testing.T) {
		for _, f := range Features() {
			assert.False(t, RoleAllows(RoleClient, f))
		}
	})

	t.Run("unknown role fails closed", func(t *testing.T) {
		assert.False(t, RoleAllows("INTERN", FeatureCRM))
	})

	t.Run("unknown feature fails closed", func(t *testing.T) {
		assert.False(t, RoleAllows(RoleSuperAdmin, "teleportation"))
	})
}

func TestIsValidRole(t *testing.T) {
	for _, r := range Roles() {
		assert.True(t, IsValidRole(r), "role %s", r)
	}
	assert.False(t, IsValidRole("INTERN"))
}
