package billing

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/pkg/catalog"
	"github.com/atelierhq/atelier/pkg/entitlements"
)

func TestNewInvoiceNumber(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	number := NewInvoiceNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^ATL-202609-[0-9A-F]{6}$`), number)

	// Unique across calls
	assert.NotEqual(t, number, NewInvoiceNumber(now))
}

func TestCurrentBillingPeriod(t *testing.T) {
	t.Run("mid-month", func(t *testing.T) {
		now := time.Date(2026, 1, 17, 15, 30, 0, 0, time.UTC)
		period := CurrentBillingPeriod(now)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), period.Start)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), period.End)
	})

	t.Run("year boundary", func(t *testing.T) {
		now := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)
		period := CurrentBillingPeriod(now)
		assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), period.End)
		assert.Equal(t, period.End, NextBillingDate(now))
	})

	t.Run("non-utc input normalizes", func(t *testing.T) {
		paris := time.FixedZone("CET", 3600)
		now := time.Date(2026, 3, 1, 0, 30, 0, 0, paris) // Feb 28 23:30 UTC
		period := CurrentBillingPeriod(now)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), period.Start)
	})
}

func TestGenerateInvoiceMetadata(t *testing.T) {
	period := january2026()

	t.Run("renewal", func(t *testing.T) {
		state := &entitlements.AddonState{Recurring: []string{"feature-shop"}}
		metadata, err := GenerateInvoiceMetadata(catalog.PlanDuo, state, period, nil)
		require.NoError(t, err)

		assert.Equal(t, ChangeTypeRenewal, metadata.ChangeType)
		assert.Equal(t, int64(11400), metadata.TotalCents)
		assert.Len(t, metadata.LineItems, 2)
		assert.Nil(t, metadata.Prorata)
		assert.Empty(t, metadata.PreviousPlan)
	})

	t.Run("plan upgrade carries previous subscription and prorata", func(t *testing.T) {
		changeDate := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)
		previous := &entitlements.AddonState{Recurring: []string{"feature-shop"}}
		current := &entitlements.AddonState{Recurring: []string{"feature-shop"}}

		metadata, err := GenerateInvoiceMetadata(catalog.PlanDuo, current, period, &ChangeContext{
			Type:          ChangeTypeUpgrade,
			PreviousPlan:  catalog.PlanSolo,
			PreviousState: previous,
			ChangeDate:    changeDate,
		})
		require.NoError(t, err)

		assert.Equal(t, ChangeTypeUpgrade, metadata.ChangeType)
		assert.Equal(t, catalog.PlanSolo, metadata.PreviousPlan)
		assert.Equal(t, []string{"feature-shop"}, metadata.PreviousAddons)
		require.NotNil(t, metadata.Prorata)
		assert.Equal(t, 15, metadata.Prorata.DaysRemaining)
		// old: (4900+2500)/30*15 = 3700, new: (8900+2500)/30*15 = 5700
		assert.Equal(t, int64(3700), metadata.Prorata.CreditCents)
		assert.Equal(t, int64(5700), metadata.Prorata.ChargeCents)
		assert.Equal(t, int64(2000), metadata.Prorata.NetCents)
	})

	t.Run("addon change on an unchanged plan", func(t *testing.T) {
		changeDate := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)
		current := &entitlements.AddonState{Recurring: []string{"feature-stock"}}

		metadata, err := GenerateInvoiceMetadata(catalog.PlanTeam, current, period, &ChangeContext{
			Type:         ChangeTypeAddonAdded,
			PreviousPlan: catalog.PlanTeam,
			ChangeDate:   changeDate,
		})
		require.NoError(t, err)

		assert.Equal(t, ChangeTypeAddonAdded, metadata.ChangeType)
		require.NotNil(t, metadata.Prorata)
		// old: 14900/30*15 = 7450, new: 17400/30*15 = 8700
		assert.Equal(t, int64(1250), metadata.Prorata.NetCents)
	})

	t.Run("unknown plan fails", func(t *testing.T) {
		_, err := GenerateInvoiceMetadata("GOLD", nil, period, nil)
		assert.ErrorIs(t, err, catalog.ErrUnknownPlan)
	})
}
