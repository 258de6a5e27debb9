package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/atelierhq/atelier/pkg/billing"
	"github.com/atelierhq/atelier/pkg/catalog"
	"github.com/atelierhq/atelier/pkg/entitlements"
	"github.com/atelierhq/atelier/pkg/observability"
)

// BillingHandlers handles invoice and prorata preview requests
type BillingHandlers struct {
	invoices billing.InvoiceStore
	orgs     entitlements.OrgStore
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewBillingHandlers creates a new BillingHandlers
func NewBillingHandlers(invoices billing.InvoiceStore, orgs entitlements.OrgStore, metrics *observability.Metrics) *BillingHandlers {
	return &BillingHandlers{
		invoices: invoices,
		orgs:     orgs,
		metrics:  metrics,
		now:      time.Now,
	}
}

// RegisterRoutes registers billing routes
func (h *BillingHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/orgs/{id}/invoices", h.ListInvoices).Methods("GET")
	router.HandleFunc("/orgs/{id}/invoices/preview", h.PreviewChange).Methods("POST")
	router.HandleFunc("/invoices/{number}", h.GetInvoice).Methods("GET")
}

// ListInvoices lists an organization's invoices, newest first
func (h *BillingHandlers) ListInvoices(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	invoices, err := h.invoices.ListOrgInvoices(r.Context(), orgID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"org_id":   orgID,
		"invoices": invoices,
	})
}

// GetInvoice retrieves an invoice by number
func (h *BillingHandlers) GetInvoice(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	invoice, err := h.invoices.GetInvoiceByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, billing.ErrInvoiceNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, invoice)
}

type previewChangeRequest struct {
	NewPlan string `json:"new_plan"`
	// AddonIDs, when present, replaces the recurring addon set for the
	// preview; omitted means the current addons carry over.
	AddonIDs   *[]string `json:"addon_ids,omitempty"`
	ChangeDate string    `json:"change_date,omitempty"`
}

// PreviewChange computes the invoice metadata, including prorated amounts,
// for a prospective plan or addon change without persisting anything.
func (h *BillingHandlers) PreviewChange(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	var req previewChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	org, err := h.orgs.GetOrganization(r.Context(), orgID)
	if err != nil {
		writeEntitlementError(w, err)
		return
	}

	newPlan := org.Plan
	if req.NewPlan != "" {
		newPlan, err = catalog.ParsePlan(req.NewPlan)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	changeDate := h.now().UTC()
	if req.ChangeDate != "" {
		changeDate, err = time.Parse(time.RFC3339, req.ChangeDate)
		if err != nil {
			http.Error(w, "Invalid change_date, expected RFC 3339", http.StatusBadRequest)
			return
		}
	}

	currentState := org.AddonState()
	newState := currentState.Clone()
	changeType := billing.ClassifyPlanChange(org.Plan, newPlan)
	if req.AddonIDs != nil {
		newState.Recurring = append([]string{}, (*req.AddonIDs)...)
		if req.NewPlan == "" {
			if len(newState.Recurring) >= len(currentState.Recurring) {
				changeType = billing.ChangeTypeAddonAdded
			} else {
				changeType = billing.ChangeTypeAddonRemoved
			}
		}
	}

	period := billing.CurrentBillingPeriod(changeDate)
	metadata, err := billing.GenerateInvoiceMetadata(newPlan, newState, period, &billing.ChangeContext{
		Type:          changeType,
		PreviousPlan:  org.Plan,
		PreviousState: currentState,
		ChangeDate:    changeDate,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.metrics.ProrataComputationsTotal.WithLabelValues(string(changeType)).Inc()

	writeJSON(w, http.StatusOK, metadata)
}
