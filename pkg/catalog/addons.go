package catalog

import "fmt"

// Recurrence distinguishes monthly addons from one-time purchases
type Recurrence string

const (
	RecurrenceRecurring Recurrence = "recurring"
	RecurrenceOneTime   Recurrence = "one_time"
)

// AddonCategory groups addons for presentation
type AddonCategory string

const (
	AddonCategoryModule AddonCategory = "module"
	AddonCategoryOption AddonCategory = "option"
	AddonCategorySetup  AddonCategory = "setup"
)

// Addon is a purchasable catalog entry. Unlocks, when set, names the
// feature the addon enables on top of the plan's base matrix; addons
// without Unlocks are billed but do not change entitlements. MinPlan, when
// set, is the lowest tier that may purchase the addon.
type Addon struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	PriceCents  int64         `json:"price_cents"`
	Recurrence  Recurrence    `json:"recurrence"`
	Category    AddonCategory `json:"category"`
	MinPlan     Plan          `json:"min_plan,omitempty"`
	Unlocks     Feature       `json:"unlocks,omitempty"`
}

// addonCatalog is the full catalog in display order
var addonCatalog = []Addon{
	{
		ID:          "feature-blog",
		Name:        "Blog",
		Description: "Publish articles and news on your booking site",
		PriceCents:  1500,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryModule,
		Unlocks:     FeatureBlog,
	},
	{
		ID:          "feature-crm",
		Name:        "CRM",
		Description: "Client records, visit history and follow-ups",
		PriceCents:  4000,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryModule,
		Unlocks:     FeatureCRM,
	},
	{
		ID:          "feature-emailing",
		Name:        "Emailing",
		Description: "Email campaigns and automated reminders",
		PriceCents:  2000,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryModule,
		Unlocks:     FeatureEmailing,
	},
	{
		ID:          "feature-shop",
		Name:        "Boutique",
		Description: "Online shop for products and gift cards",
		PriceCents:  2500,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryModule,
		Unlocks:     FeatureShop,
	},
	{
		ID:          "feature-whatsapp",
		Name:        "WhatsApp",
		Description: "WhatsApp conversations and notifications",
		PriceCents:  2000,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryModule,
		Unlocks:     FeatureWhatsApp,
	},
	{
		ID:          "feature-sms",
		Name:        "SMS",
		Description: "SMS reminders and marketing campaigns",
		PriceCents:  3000,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryModule,
		Unlocks:     FeatureSMS,
	},
	{
		ID:          "feature-social-media",
		Name:        "Réseaux sociaux",
		Description: "Social media scheduling and publishing",
		PriceCents:  2500,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryModule,
		Unlocks:     FeatureSocialMedia,
	},
	{
		ID:          "feature-stock",
		Name:        "Stock",
		Description: "Inventory tracking and supplier orders",
		PriceCents:  2500,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryModule,
		Unlocks:     FeatureStock,
	},
	{
		ID:          "multi-location",
		Name:        "Multi-établissements",
		Description: "Manage several locations under one account",
		PriceCents:  5000,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryOption,
		MinPlan:     PlanDuo,
		Unlocks:     FeatureMultiLocation,
	},
	{
		ID:          "priority-support",
		Name:        "Support prioritaire",
		Description: "Priority email and phone support",
		PriceCents:  3500,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryOption,
	},
	{
		ID:          "custom-domain",
		Name:        "Domaine personnalisé",
		Description: "Your own domain for the booking site",
		PriceCents:  1000,
		Recurrence:  RecurrenceRecurring,
		Category:    AddonCategoryOption,
	},
	{
		ID:          "onboarding-pack",
		Name:        "Pack de démarrage",
		Description: "Guided setup and data migration, billed once",
		PriceCents:  9900,
		Recurrence:  RecurrenceOneTime,
		Category:    AddonCategorySetup,
	},
}

// addonsByID indexes the catalog for lookup
var addonsByID = func() map[string]*Addon {
	m := make(map[string]*Addon, len(addonCatalog))
	for i := range addonCatalog {
		m[addonCatalog[i].ID] = &addonCatalog[i]
	}
	return m
}()

// Addons returns the full catalog in display order
func Addons() []Addon {
	out := make([]Addon, len(addonCatalog))
	copy(out, addonCatalog)
	return out
}

// GetAddon looks up a catalog entry by ID
func GetAddon(id string) (*Addon, bool) {
	a, ok := addonsByID[id]
	return a, ok
}

// AddonsForPlan returns the catalog entries an organization on the given
// tier can purchase. Addons whose unlocked feature the tier already
// includes are omitted as redundant, as are addons gated to a higher tier.
func AddonsForPlan(p Plan) ([]Addon, error) {
	base, err := PlanFeatures(p)
	if err != nil {
		return nil, err
	}
	order := PlanOrder(p)

	var out []Addon
	for _, a := range addonCatalog {
		if a.Unlocks != "" && base.Enabled(a.Unlocks) {
			continue
		}
		if a.MinPlan != "" && PlanOrder(a.MinPlan) > order {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// FormatPriceCents renders a cent amount for display, e.g. "49,00 €"
func FormatPriceCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d €", sign, cents/100, cents%100)
}
