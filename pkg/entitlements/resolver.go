package entitlements

import (
	"github.com/atelierhq/atelier/pkg/catalog"
)

// ActiveFeatures resolves the organization's effective feature matrix: the
// plan's base matrix plus every feature unlocked by an active addon. The
// merge is monotonic, addons can only enable features. An unknown plan is
// an error; callers must not degrade to an empty matrix.
func ActiveFeatures(plan catalog.Plan, state *AddonState) (catalog.FeatureMatrix, error) {
	matrix, err := catalog.PlanFeatures(plan)
	if err != nil {
		return nil, err
	}
	for _, id := range state.ActiveAddonIDs() {
		addon, ok := catalog.GetAddon(id)
		if !ok || addon.Unlocks == "" {
			continue
		}
		matrix[addon.Unlocks] = true
	}
	return matrix, nil
}

// CanAccess reports whether a user with the given role can use a feature
// under the resolved matrix. Denied unless the organization has the feature
// enabled and the role permits it.
func CanAccess(role catalog.Role, feature catalog.Feature, matrix catalog.FeatureMatrix) bool {
	return matrix.Enabled(feature) && catalog.RoleAllows(role, feature)
}

// AccessibleFeatures resolves the per-user effective matrix: the
// organization's matrix intersected with the role's permissions.
func AccessibleFeatures(plan catalog.Plan, state *AddonState, role catalog.Role) (catalog.FeatureMatrix, error) {
	matrix, err := ActiveFeatures(plan, state)
	if err != nil {
		return nil, err
	}
	out := catalog.NewFeatureMatrix()
	for f, enabled := range matrix {
		out[f] = enabled && catalog.RoleAllows(role, f)
	}
	return out, nil
}

// RecurringMonthlyCostCents sums the monthly prices of the state's active
// recurring addons. Unknown addon IDs contribute nothing.
func RecurringMonthlyCostCents(state *AddonState) int64 {
	if state == nil {
		return 0
	}
	var total int64
	for _, id := range state.Recurring {
		if addon, ok := catalog.GetAddon(id); ok {
			total += addon.PriceCents
		}
	}
	return total
}

// TotalMonthlyCostCents returns the organization's full monthly price: plan
// base price plus active recurring addons.
func TotalMonthlyCostCents(plan catalog.Plan, state *AddonState) (int64, error) {
	base, err := catalog.PlanPriceCents(plan)
	if err != nil {
		return 0, err
	}
	return base + RecurringMonthlyCostCents(state), nil
}
