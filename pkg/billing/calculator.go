package billing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atelierhq/atelier/pkg/catalog"
	"github.com/atelierhq/atelier/pkg/entitlements"
)

// daysPerMonth is the fixed proration divisor. See the package comment
// before touching this.
const daysPerMonth = 30

// InvoiceTotalCents returns the recurring monthly total for an
// organization: plan price plus active recurring addons. One-time
// purchases never appear here.
func InvoiceTotalCents(plan catalog.Plan, state *entitlements.AddonState) (int64, error) {
	return entitlements.TotalMonthlyCostCents(plan, state)
}

// LineItems builds the invoice lines for a billing period: the plan line
// first, then one line per active recurring addon in catalog order.
// Unknown stored addon IDs produce no line.
func LineItems(plan catalog.Plan, state *entitlements.AddonState, period BillingPeriod) ([]LineItem, error) {
	planPrice, err := catalog.PlanPriceCents(plan)
	if err != nil {
		return nil, err
	}

	resolved := catalog.ResolvePlan(plan)
	items := []LineItem{{
		Description:    fmt.Sprintf("%s plan subscription (%s)", planTitle(resolved), formatPeriod(period)),
		Quantity:       1,
		UnitPriceCents: planPrice,
		TotalCents:     planPrice,
	}}

	for _, addon := range catalog.Addons() {
		if addon.Recurrence != catalog.RecurrenceRecurring || !state.HasRecurring(addon.ID) {
			continue
		}
		items = append(items, LineItem{
			Description:    fmt.Sprintf("%s (monthly)", addon.Name),
			Quantity:       1,
			UnitPriceCents: addon.PriceCents,
			TotalCents:     addon.PriceCents,
		})
	}

	return items, nil
}

// CalculateProrata computes the prorated credit and charge for a
// mid-period subscription change.
//
// Days remaining are rounded up, so a change at any point during a day
// credits and charges that full day. Credit and charge are each clamped at
// zero; the net may be negative on downgrades.
func CalculateProrata(
	oldPlan catalog.Plan, oldState *entitlements.AddonState,
	newPlan catalog.Plan, newState *entitlements.AddonState,
	changeDate time.Time, periodEnd time.Time,
) (*Prorata, error) {
	oldTotal, err := entitlements.TotalMonthlyCostCents(oldPlan, oldState)
	if err != nil {
		return nil, err
	}
	newTotal, err := entitlements.TotalMonthlyCostCents(newPlan, newState)
	if err != nil {
		return nil, err
	}

	days := int(math.Ceil(periodEnd.Sub(changeDate).Hours() / 24))
	if days < 0 {
		days = 0
	}

	credit := prorate(oldTotal, days)
	charge := prorate(newTotal, days)

	return &Prorata{
		DaysRemaining: days,
		CreditCents:   credit,
		ChargeCents:   charge,
		NetCents:      charge - credit,
	}, nil
}

// prorate computes round(total/30 * days), clamped at zero
func prorate(totalCents int64, days int) int64 {
	amount := int64(math.Round(float64(totalCents) / daysPerMonth * float64(days)))
	if amount < 0 {
		return 0
	}
	return amount
}

// ClassifyPlanChange returns upgrade or downgrade based on tier order
func ClassifyPlanChange(oldPlan, newPlan catalog.Plan) ChangeType {
	if catalog.PlanOrder(newPlan) >= catalog.PlanOrder(oldPlan) {
		return ChangeTypeUpgrade
	}
	return ChangeTypeDowngrade
}

// planTitle renders a tier name for invoice lines, e.g. "Team"
func planTitle(p catalog.Plan) string {
	name := string(p)
	if len(name) == 0 {
		return name
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}

// formatPeriod renders a billing window for invoice lines. End is
// exclusive, so the displayed last day is the day before.
func formatPeriod(period BillingPeriod) string {
	lastDay := period.End.AddDate(0, 0, -1)
	return fmt.Sprintf("%s to %s", period.Start.Format("2 Jan 2006"), lastDay.Format("2 Jan 2006"))
}
