package billing

import (
	"time"

	"github.com/atelierhq/atelier/pkg/catalog"
)

// LineItem is a single invoice line
type LineItem struct {
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPrice"`
	TotalCents     int64  `json:"total"`
}

// BillingPeriod is a calendar-month-aligned billing window. Start is
// inclusive, End exclusive.
type BillingPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ChangeType classifies what triggered an invoice
type ChangeType string

const (
	ChangeTypeUpgrade      ChangeType = "upgrade"
	ChangeTypeDowngrade    ChangeType = "downgrade"
	ChangeTypeAddonAdded   ChangeType = "addon_added"
	ChangeTypeAddonRemoved ChangeType = "addon_removed"
	ChangeTypeRenewal      ChangeType = "renewal"
)

// Prorata holds the prorated amounts of a mid-period change. NetCents may
// be negative on downgrades.
type Prorata struct {
	DaysRemaining int   `json:"daysRemaining"`
	CreditCents   int64 `json:"creditAmount"`
	ChargeCents   int64 `json:"chargeAmount"`
	NetCents      int64 `json:"netAmount"`
}

// InvoiceMetadata is the structured document attached to every invoice
type InvoiceMetadata struct {
	LineItems      []LineItem    `json:"lineItems"`
	BillingPeriod  BillingPeriod `json:"billingPeriod"`
	ChangeType     ChangeType    `json:"changeType,omitempty"`
	PreviousPlan   catalog.Plan  `json:"previousPlan,omitempty"`
	PreviousAddons []string      `json:"previousAddons,omitempty"`
	Prorata        *Prorata      `json:"prorata,omitempty"`
	TotalCents     int64         `json:"totalCents"`
}

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// Invoice is a persisted invoice row
type Invoice struct {
	ID          int64            `json:"id"`
	OrgID       int64            `json:"org_id"`
	Number      string           `json:"number"`
	AmountCents int64            `json:"amount_cents"`
	Currency    string           `json:"currency"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	Status      InvoiceStatus    `json:"status"`
	Metadata    *InvoiceMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
