package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/pkg/catalog"
	"github.com/atelierhq/atelier/pkg/entitlements"
)

// invoiceNumberPrefix prefixes every invoice number
const invoiceNumberPrefix = "ATL"

// NewInvoiceNumber generates an invoice number of the form
// ATL-YYYYMM-XXXXXX. The month segment keeps numbers sortable per billing
// period; the random suffix makes them unique.
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", invoiceNumberPrefix, now.UTC().Format("200601"), suffix)
}

// CurrentBillingPeriod returns the calendar-month billing window containing
// the given instant. All organizations share these windows.
func CurrentBillingPeriod(now time.Time) BillingPeriod {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return BillingPeriod{Start: start, End: start.AddDate(0, 1, 0)}
}

// NextBillingDate returns the start of the next billing period
func NextBillingDate(now time.Time) time.Time {
	return CurrentBillingPeriod(now).End
}

// ChangeContext describes the subscription change an invoice documents.
// PreviousState may be nil for organizations that had no addons.
type ChangeContext struct {
	Type          ChangeType
	PreviousPlan  catalog.Plan
	PreviousState *entitlements.AddonState
	ChangeDate    time.Time
}

// GenerateInvoiceMetadata builds the metadata document for an invoice
// covering the given period. A nil change produces a plain renewal
// document; with a change the document additionally carries the previous
// subscription and the prorated amounts.
func GenerateInvoiceMetadata(plan catalog.Plan, state *entitlements.AddonState, period BillingPeriod, change *ChangeContext) (*InvoiceMetadata, error) {
	items, err := LineItems(plan, state, period)
	if err != nil {
		return nil, err
	}
	total, err := InvoiceTotalCents(plan, state)
	if err != nil {
		return nil, err
	}

	metadata := &InvoiceMetadata{
		LineItems:     items,
		BillingPeriod: period,
		ChangeType:    ChangeTypeRenewal,
		TotalCents:    total,
	}

	if change != nil {
		metadata.ChangeType = change.Type
		metadata.PreviousPlan = change.PreviousPlan
		if change.PreviousState != nil {
			metadata.PreviousAddons = append([]string{}, change.PreviousState.Recurring...)
		}

		prorata, err := CalculateProrata(
			change.PreviousPlan, change.PreviousState,
			plan, state,
			change.ChangeDate, period.End,
		)
		if err != nil {
			return nil, err
		}
		metadata.Prorata = prorata
	}

	return metadata, nil
}
