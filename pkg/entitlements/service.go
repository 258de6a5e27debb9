package entitlements

import (
	"context"
	"fmt"
	"time"

	"github.com/atelierhq/atelier/pkg/catalog"
	"github.com/atelierhq/atelier/pkg/observability"
)

// ActivationResult reports the outcome of an addon activation
type ActivationResult struct {
	Activated                  []string `json:"activated"`
	Ignored                    []string `json:"ignored,omitempty"`
	AdditionalMonthlyCostCents int64    `json:"additional_monthly_cost_cents"`
	OneTimeCostCents           int64    `json:"one_time_cost_cents,omitempty"`
	TotalMonthlyCostCents      int64    `json:"total_monthly_cost_cents"`
}

// DeactivationResult reports the outcome of an addon deactivation
type DeactivationResult struct {
	Deactivated           []string `json:"deactivated"`
	Remaining             []string `json:"remaining"`
	TotalMonthlyCostCents int64    `json:"total_monthly_cost_cents"`
}

// Service defines the entitlement and addon lifecycle operations
type Service interface {
	Entitlements(ctx context.Context, orgID int64) (catalog.FeatureMatrix, error)
	CheckAccess(ctx context.Context, orgID int64, role catalog.Role, feature catalog.Feature) (bool, error)
	ActivateAddons(ctx context.Context, orgID int64, addonIDs []string) (*ActivationResult, error)
	DeactivateAddons(ctx context.Context, orgID int64, addonIDs []string) (*DeactivationResult, error)
	ActiveAddons(ctx context.Context, orgID int64) ([]catalog.Addon, error)
	TotalMonthlyCost(ctx context.Context, orgID int64) (int64, error)
}

// Manager implements Service over an OrgStore with an optional feature cache
type Manager struct {
	store  OrgStore
	cache  *FeatureCache
	logger *observability.Logger
	now    func() time.Time
}

// NewManager creates a new Manager. The cache may be nil.
func NewManager(store OrgStore, cache *FeatureCache, logger *observability.Logger) *Manager {
	return &Manager{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Entitlements resolves the organization's effective feature matrix,
// consulting the cache first.
func (m *Manager) Entitlements(ctx context.Context, orgID int64) (catalog.FeatureMatrix, error) {
	if m.cache != nil {
		if matrix, ok := m.cache.Get(ctx, orgID); ok {
			return matrix, nil
		}
	}

	org, err := m.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	matrix, err := ActiveFeatures(org.Plan, org.AddonState())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entitlements for org %d: %w", orgID, err)
	}

	if m.cache != nil {
		m.cache.Set(ctx, orgID, matrix)
	}
	return matrix, nil
}

// CheckAccess reports whether a user with the given role can use a feature
func (m *Manager) CheckAccess(ctx context.Context, orgID int64, role catalog.Role, feature catalog.Feature) (bool, error) {
	matrix, err := m.Entitlements(ctx, orgID)
	if err != nil {
		return false, err
	}
	return CanAccess(role, feature, matrix), nil
}

// ActivateAddons activates catalog addons for an organization. Unknown IDs
// and already-active addons are reported back as ignored; activation is
// idempotent. A single history event covers the whole batch.
func (m *Manager) ActivateAddons(ctx context.Context, orgID int64, addonIDs []string) (*ActivationResult, error) {
	org, err := m.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	state := org.AddonState().Clone()
	result := &ActivationResult{}
	for _, id := range addonIDs {
		addon, ok := catalog.GetAddon(id)
		if !ok {
			m.logger.WithFields(map[string]interface{}{
				"org_id":   orgID,
				"addon_id": id,
			}).Warn("ignoring unknown addon")
			result.Ignored = append(result.Ignored, id)
			continue
		}
		if state.HasRecurring(id) || state.HasOneTime(id) {
			result.Ignored = append(result.Ignored, id)
			continue
		}

		switch addon.Recurrence {
		case catalog.RecurrenceOneTime:
			state.OneTime = append(state.OneTime, id)
			result.OneTimeCostCents += addon.PriceCents
		default:
			state.Recurring = append(state.Recurring, id)
			result.AdditionalMonthlyCostCents += addon.PriceCents
		}
		result.Activated = append(result.Activated, id)
	}

	if len(result.Activated) > 0 {
		state.History = append(state.History, HistoryEvent{
			Action:                AddonActionActivate,
			AddonIDs:              result.Activated,
			Timestamp:             m.now().UTC(),
			MonthlyCostDeltaCents: result.AdditionalMonthlyCostCents,
		})

		matrix, err := ActiveFeatures(org.Plan, state)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve entitlements for org %d: %w", orgID, err)
		}
		if err := m.store.UpdateAddonState(ctx, orgID, state, matrix); err != nil {
			return nil, err
		}
		if m.cache != nil {
			m.cache.Invalidate(ctx, orgID)
		}

		m.logger.WithFields(map[string]interface{}{
			"org_id":        orgID,
			"addons":        result.Activated,
			"monthly_delta": result.AdditionalMonthlyCostCents,
			"one_time_cost": result.OneTimeCostCents,
		}).Info("addons activated")
	}

	total, err := TotalMonthlyCostCents(org.Plan, state)
	if err != nil {
		return nil, err
	}
	result.TotalMonthlyCostCents = total

	return result, nil
}

// DeactivateAddons removes recurring addons from an organization. IDs that
// are not active are silently skipped; one-time purchases cannot be
// deactivated. Plan-included features are unaffected, they never live in
// the addon state.
func (m *Manager) DeactivateAddons(ctx context.Context, orgID int64, addonIDs []string) (*DeactivationResult, error) {
	org, err := m.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	state := org.AddonState().Clone()
	result := &DeactivationResult{}
	var delta int64

	remove := make(map[string]bool, len(addonIDs))
	for _, id := range addonIDs {
		remove[id] = true
	}

	remaining := state.Recurring[:0]
	for _, id := range state.Recurring {
		if !remove[id] {
			remaining = append(remaining, id)
			continue
		}
		result.Deactivated = append(result.Deactivated, id)
		if addon, ok := catalog.GetAddon(id); ok {
			delta -= addon.PriceCents
		}
	}
	state.Recurring = remaining

	if len(result.Deactivated) > 0 {
		state.History = append(state.History, HistoryEvent{
			Action:                AddonActionDeactivate,
			AddonIDs:              result.Deactivated,
			Timestamp:             m.now().UTC(),
			MonthlyCostDeltaCents: delta,
		})

		matrix, err := ActiveFeatures(org.Plan, state)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve entitlements for org %d: %w", orgID, err)
		}
		if err := m.store.UpdateAddonState(ctx, orgID, state, matrix); err != nil {
			return nil, err
		}
		if m.cache != nil {
			m.cache.Invalidate(ctx, orgID)
		}

		m.logger.WithFields(map[string]interface{}{
			"org_id":        orgID,
			"addons":        result.Deactivated,
			"monthly_delta": delta,
		}).Info("addons deactivated")
	}

	result.Remaining = append([]string{}, state.Recurring...)
	total, err := TotalMonthlyCostCents(org.Plan, state)
	if err != nil {
		return nil, err
	}
	result.TotalMonthlyCostCents = total

	return result, nil
}

// ActiveAddons returns the catalog entries for the organization's active
// recurring addons, in catalog order. Unknown stored IDs are skipped.
func (m *Manager) ActiveAddons(ctx context.Context, orgID int64) ([]catalog.Addon, error) {
	org, err := m.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	state := org.AddonState()
	var out []catalog.Addon
	for _, a := range catalog.Addons() {
		if state.HasRecurring(a.ID) {
			out = append(out, a)
		}
	}
	return out, nil
}

// TotalMonthlyCost returns the organization's monthly price in cents
func (m *Manager) TotalMonthlyCost(ctx context.Context, orgID int64) (int64, error) {
	org, err := m.store.GetOrganization(ctx, orgID)
	if err != nil {
		return 0, err
	}
	return TotalMonthlyCostCents(org.Plan, org.AddonState())
}
