package catalog

import (
	"fmt"
	"strings"
)

// Plan represents a subscription plan tier
type Plan string

const (
	PlanSolo    Plan = "SOLO"
	PlanDuo     Plan = "DUO"
	PlanTeam    Plan = "TEAM"
	PlanPremium Plan = "PREMIUM"
)

// legacyPlanAliases maps plan names from before the 2024 repackaging onto
// the current tiers. Aliases resolve silently everywhere a plan is parsed.
var legacyPlanAliases = map[Plan]Plan{
	"STARTER":      PlanSolo,
	"ESSENTIAL":    PlanDuo,
	"PROFESSIONAL": PlanTeam,
	"ENTERPRISE":   PlanPremium,
}

// planOrder ranks tiers from lowest to highest
var planOrder = map[Plan]int{
	PlanSolo:    1,
	PlanDuo:     2,
	PlanTeam:    3,
	PlanPremium: 4,
}

// planPriceCents is the monthly subscription price per tier, EUR cents
var planPriceCents = map[Plan]int64{
	PlanSolo:    4900,
	PlanDuo:     8900,
	PlanTeam:    14900,
	PlanPremium: 24900,
}

// planFeatures lists the features included in each tier's base price.
// Higher tiers are supersets of lower ones.
var planFeatures = map[Plan][]Feature{
	PlanSolo: {},
	PlanDuo: {
		FeatureBlog, FeatureCRM, FeatureEmailing, FeatureMultiUser,
	},
	PlanTeam: {
		FeatureBlog, FeatureCRM, FeatureEmailing, FeatureMultiUser,
		FeatureShop, FeatureWhatsApp, FeatureSMS, FeatureSocialMedia,
		FeatureMultiLocation,
	},
	PlanPremium: allFeatures,
}

// ErrUnknownPlan is returned when a plan name does not resolve to a known
// tier, even after legacy alias resolution.
var ErrUnknownPlan = fmt.Errorf("unknown plan")

// ResolvePlan resolves legacy aliases onto current tiers. Known current
// tiers pass through unchanged.
func ResolvePlan(p Plan) Plan {
	if canonical, ok := legacyPlanAliases[p]; ok {
		return canonical
	}
	return p
}

// ParsePlan parses a plan name, case-insensitively, resolving legacy
// aliases. Unknown names return ErrUnknownPlan.
func ParsePlan(s string) (Plan, error) {
	p := ResolvePlan(Plan(strings.ToUpper(strings.TrimSpace(s))))
	if _, ok := planOrder[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, s)
	}
	return p, nil
}

// Plans returns all current tiers from lowest to highest
func Plans() []Plan {
	return []Plan{PlanSolo, PlanDuo, PlanTeam, PlanPremium}
}

// PlanOrder returns the rank of a tier (1 = lowest). Unknown plans rank 0.
func PlanOrder(p Plan) int {
	return planOrder[ResolvePlan(p)]
}

// PlanPriceCents returns the monthly price of a tier in cents
func PlanPriceCents(p Plan) (int64, error) {
	price, ok := planPriceCents[ResolvePlan(p)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPlan, p)
	}
	return price, nil
}

// PlanFeatures returns the base feature matrix a tier includes. An unknown
// plan is a configuration error and fails loudly; callers must not fall
// back to an empty matrix.
func PlanFeatures(p Plan) (FeatureMatrix, error) {
	included, ok := planFeatures[ResolvePlan(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, p)
	}
	m := NewFeatureMatrix()
	for _, f := range included {
		m[f] = true
	}
	return m, nil
}

// PlanQuotas holds per-tier resource limits. A value of -1 means unlimited.
type PlanQuotas struct {
	MaxUsers      int `json:"max_users"`
	MaxLocations  int `json:"max_locations"`
	MaxMonthlySMS int `json:"max_monthly_sms"`
}

var planQuotas = map[Plan]PlanQuotas{
	PlanSolo:    {MaxUsers: 1, MaxLocations: 1, MaxMonthlySMS: 100},
	PlanDuo:     {MaxUsers: 3, MaxLocations: 1, MaxMonthlySMS: 300},
	PlanTeam:    {MaxUsers: 10, MaxLocations: 3, MaxMonthlySMS: 1000},
	PlanPremium: {MaxUsers: -1, MaxLocations: -1, MaxMonthlySMS: -1},
}

// QuotasForPlan returns the resource limits for a tier
func QuotasForPlan(p Plan) (PlanQuotas, error) {
	q, ok := planQuotas[ResolvePlan(p)]
	if !ok {
		return PlanQuotas{}, fmt.Errorf("%w: %q", ErrUnknownPlan, p)
	}
	return q, nil
}
