package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atelierhq/atelier/pkg/catalog"
)

// CatalogHandlers serves the read-only plan and addon catalog
type CatalogHandlers struct{}

// NewCatalogHandlers creates a new CatalogHandlers
func NewCatalogHandlers() *CatalogHandlers {
	return &CatalogHandlers{}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/catalog/plans", h.ListPlans).Methods("GET")
	router.HandleFunc("/catalog/addons", h.ListAddons).Methods("GET")
}

type planResponse struct {
	Plan       catalog.Plan       `json:"plan"`
	PriceCents int64              `json:"price_cents"`
	Price      string             `json:"price"`
	Order      int                `json:"order"`
	Features   []catalog.Feature  `json:"features"`
	Quotas     catalog.PlanQuotas `json:"quotas"`
}

// ListPlans returns every plan tier with price, feature set and quotas
func (h *CatalogHandlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans := catalog.Plans()
	out := make([]planResponse, 0, len(plans))
	for _, plan := range plans {
		price, err := catalog.PlanPriceCents(plan)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		matrix, err := catalog.PlanFeatures(plan)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		quotas, err := catalog.QuotasForPlan(plan)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out = append(out, planResponse{
			Plan:       plan,
			PriceCents: price,
			Price:      catalog.FormatPriceCents(price),
			Order:      catalog.PlanOrder(plan),
			Features:   matrix.EnabledFeatures(),
			Quotas:     quotas,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": out})
}

// ListAddons returns the addon catalog. With ?plan= it filters to the
// addons that make sense to offer on that tier.
func (h *CatalogHandlers) ListAddons(w http.ResponseWriter, r *http.Request) {
	addons := catalog.Addons()
	if raw := r.URL.Query().Get("plan"); raw != "" {
		plan, err := catalog.ParsePlan(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		addons, err = catalog.AddonsForPlan(plan)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"addons": addons})
}
