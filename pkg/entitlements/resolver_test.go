package entitlements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/pkg/catalog"
)

func TestActiveFeatures(t *testing.T) {
	t.Run("plan base matrix with no addons", func(t *testing.T) {
		matrix, err := ActiveFeatures(catalog.PlanDuo, &AddonState{})
		require.NoError(t, err)
		assert.True(t, matrix.Enabled(catalog.FeatureBlog))
		assert.False(t, matrix.Enabled(catalog.FeatureShop))
	})

	t.Run("addon unlocks feature on top of plan", func(t *testing.T) {
		state := &AddonState{Recurring: []string{"feature-shop"}}
		matrix, err := ActiveFeatures(catalog.PlanDuo, state)
		require.NoError(t, err)
		assert.True(t, matrix.Enabled(catalog.FeatureShop))
	})

	t.Run("merge is monotonic", func(t *testing.T) {
		// An addon duplicating a plan feature never disables anything
		state := &AddonState{Recurring: []string{"feature-blog"}}
		matrix, err := ActiveFeatures(catalog.PlanDuo, state)
		require.NoError(t, err)
		base, err := catalog.PlanFeatures(catalog.PlanDuo)
		require.NoError(t, err)
		for _, f := range base.EnabledFeatures() {
			assert.True(t, matrix.Enabled(f), "feature %s", f)
		}
	})

	t.Run("unknown addon ids are ignored", func(t *testing.T) {
		state := &AddonState{Recurring: []string{"feature-retired", "feature-stock"}}
		matrix, err := ActiveFeatures(catalog.PlanSolo, state)
		require.NoError(t, err)
		assert.True(t, matrix.Enabled(catalog.FeatureStock))
		assert.Len(t, matrix.EnabledFeatures(), 1)
	})

	t.Run("non-unlocking addons change nothing", func(t *testing.T) {
		state := &AddonState{Recurring: []string{"priority-support"}}
		matrix, err := ActiveFeatures(catalog.PlanSolo, state)
		require.NoError(t, err)
		assert.Empty(t, matrix.EnabledFeatures())
	})

	t.Run("one-time purchases also unlock", func(t *testing.T) {
		// No one-time addon in the current catalog unlocks a feature, but
		// the resolution path treats both sets identically.
		state := &AddonState{OneTime: []string{"feature-crm"}}
		matrix, err := ActiveFeatures(catalog.PlanSolo, state)
		require.NoError(t, err)
		assert.True(t, matrix.Enabled(catalog.FeatureCRM))
	})

	t.Run("legacy plan alias", func(t *testing.T) {
		matrix, err := ActiveFeatures("PROFESSIONAL", &AddonState{})
		require.NoError(t, err)
		assert.True(t, matrix.Enabled(catalog.FeatureShop))
	})

	t.Run("unknown plan fails loudly", func(t *testing.T) {
		matrix, err := ActiveFeatures("GOLD", &AddonState{})
		assert.ErrorIs(t, err, catalog.ErrUnknownPlan)
		assert.Nil(t, matrix)
	})

	t.Run("nil state resolves as empty", func(t *testing.T) {
		matrix, err := ActiveFeatures(catalog.PlanTeam, nil)
		require.NoError(t, err)
		assert.True(t, matrix.Enabled(catalog.FeatureShop))
	})
}

func TestCanAccess(t *testing.T) {
	matrix, err := ActiveFeatures(catalog.PlanTeam, &AddonState{Recurring: []string{"feature-stock"}})
	require.NoError(t, err)

	t.Run("full-access role with enabled feature", func(t *testing.T) {
		assert.True(t, CanAccess(catalog.RoleOrgAdmin, catalog.FeatureShop, matrix))
	})

	t.Run("feature disabled for org denies everyone", func(t *testing.T) {
		solo, err := ActiveFeatures(catalog.PlanSolo, &AddonState{})
		require.NoError(t, err)
		assert.False(t, CanAccess(catalog.RoleSuperAdmin, catalog.FeatureShop, solo))
	})

	t.Run("restricted role outside allow-list", func(t *testing.T) {
		assert.False(t, CanAccess(catalog.RoleReceptionist, catalog.FeatureShop, matrix))
		assert.True(t, CanAccess(catalog.RoleReceptionist, catalog.FeatureSMS, matrix))
	})

	t.Run("unknown role denied", func(t *testing.T) {
		assert.False(t, CanAccess("INTERN", catalog.FeatureShop, matrix))
	})

	t.Run("unknown feature denied", func(t *testing.T) {
		assert.False(t, CanAccess(catalog.RoleSuperAdmin, "teleportation", matrix))
	})
}

func TestAccessibleFeatures(t *testing.T) {
	state := &AddonState{Recurring: []string{"feature-stock"}}

	t.Run("admin sees the full org matrix", func(t *testing.T) {
		got, err := AccessibleFeatures(catalog.PlanTeam, state, catalog.RoleOrgAdmin)
		require.NoError(t, err)
		org, err := ActiveFeatures(catalog.PlanTeam, state)
		require.NoError(t, err)
		assert.Equal(t, org.EnabledFeatures(), got.EnabledFeatures())
	})

	t.Run("accountant sees the intersection", func(t *testing.T) {
		got, err := AccessibleFeatures(catalog.PlanTeam, state, catalog.RoleAccountant)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]catalog.Feature{catalog.FeatureShop, catalog.FeatureStock},
			got.EnabledFeatures())
	})

	t.Run("client sees nothing", func(t *testing.T) {
		got, err := AccessibleFeatures(catalog.PlanPremium, nil, catalog.RoleClient)
		require.NoError(t, err)
		assert.Empty(t, got.EnabledFeatures())
	})
}

func TestMonthlyCost(t *testing.T) {
	t.Run("plan only", func(t *testing.T) {
		total, err := TotalMonthlyCostCents(catalog.PlanDuo, &AddonState{})
		require.NoError(t, err)
		assert.Equal(t, int64(8900), total)
	})

	t.Run("plan plus addons", func(t *testing.T) {
		state := &AddonState{Recurring: []string{"feature-shop", "feature-sms"}}
		total, err := TotalMonthlyCostCents(catalog.PlanDuo, state)
		require.NoError(t, err)
		assert.Equal(t, int64(8900+2500+3000), total)
	})

	t.Run("one-time purchases do not count", func(t *testing.T) {
		state := &AddonState{OneTime: []string{"onboarding-pack"}}
		total, err := TotalMonthlyCostCents(catalog.PlanSolo, state)
		require.NoError(t, err)
		assert.Equal(t, int64(4900), total)
	})

	t.Run("unknown stored ids cost nothing", func(t *testing.T) {
		state := &AddonState{Recurring: []string{"feature-retired"}}
		assert.Equal(t, int64(0), RecurringMonthlyCostCents(state))
	})

	t.Run("unknown plan fails", func(t *testing.T) {
		_, err := TotalMonthlyCostCents("GOLD", &AddonState{})
		assert.ErrorIs(t, err, catalog.ErrUnknownPlan)
	})
}
