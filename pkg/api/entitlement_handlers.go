package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/atelierhq/atelier/pkg/catalog"
	"github.com/atelierhq/atelier/pkg/entitlements"
	"github.com/atelierhq/atelier/pkg/observability"
)

// EntitlementHandlers handles entitlement and addon lifecycle requests
type EntitlementHandlers struct {
	service entitlements.Service
	metrics *observability.Metrics
}

// NewEntitlementHandlers creates a new EntitlementHandlers
func NewEntitlementHandlers(service entitlements.Service, metrics *observability.Metrics) *EntitlementHandlers {
	return &EntitlementHandlers{
		service: service,
		metrics: metrics,
	}
}

// RegisterRoutes registers entitlement routes
func (h *EntitlementHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/orgs/{id}/entitlements", h.GetEntitlements).Methods("GET")
	router.HandleFunc("/orgs/{id}/entitlements/{feature}", h.CheckAccess).Methods("GET")
	router.HandleFunc("/orgs/{id}/addons", h.ListActiveAddons).Methods("GET")
	router.HandleFunc("/orgs/{id}/addons", h.ActivateAddons).Methods("POST")
	router.HandleFunc("/orgs/{id}/addons", h.DeactivateAddons).Methods("DELETE")
}

// GetEntitlements returns the organization's resolved feature matrix
func (h *EntitlementHandlers) GetEntitlements(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	matrix, err := h.service.Entitlements(r.Context(), orgID)
	if err != nil {
		h.metrics.EntitlementResolutionsTotal.WithLabelValues("error").Inc()
		writeEntitlementError(w, err)
		return
	}
	h.metrics.EntitlementResolutionsTotal.WithLabelValues("ok").Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"org_id":   orgID,
		"features": matrix,
	})
}

// CheckAccess reports whether a role may use a feature in this organization
func (h *EntitlementHandlers) CheckAccess(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	role := catalog.Role(r.URL.Query().Get("role"))
	if role == "" {
		http.Error(w, "role query parameter is required", http.StatusBadRequest)
		return
	}
	feature := catalog.Feature(mux.Vars(r)["feature"])

	allowed, err := h.service.CheckAccess(r.Context(), orgID, role, feature)
	if err != nil {
		writeEntitlementError(w, err)
		return
	}

	result := "denied"
	if allowed {
		result = "allowed"
	}
	h.metrics.AccessChecksTotal.WithLabelValues(result).Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"org_id":  orgID,
		"feature": feature,
		"role":    role,
		"allowed": allowed,
	})
}

// ListActiveAddons returns the organization's active addons and total cost
func (h *EntitlementHandlers) ListActiveAddons(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	addons, err := h.service.ActiveAddons(r.Context(), orgID)
	if err != nil {
		writeEntitlementError(w, err)
		return
	}
	total, err := h.service.TotalMonthlyCost(r.Context(), orgID)
	if err != nil {
		writeEntitlementError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"org_id":                   orgID,
		"addons":                   addons,
		"total_monthly_cost_cents": total,
		"total_monthly_cost":       catalog.FormatPriceCents(total),
	})
}

type addonChangeRequest struct {
	AddonIDs []string `json:"addon_ids"`
}

// ActivateAddons activates addons for an organization
func (h *EntitlementHandlers) ActivateAddons(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	var req addonChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.AddonIDs) == 0 {
		http.Error(w, "addon_ids is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.ActivateAddons(r.Context(), orgID, req.AddonIDs)
	if err != nil {
		writeEntitlementError(w, err)
		return
	}
	for _, id := range result.Activated {
		h.metrics.AddonActivationsTotal.WithLabelValues(id).Inc()
	}

	writeJSON(w, http.StatusOK, result)
}

// DeactivateAddons deactivates addons for an organization
func (h *EntitlementHandlers) DeactivateAddons(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	var req addonChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.AddonIDs) == 0 {
		http.Error(w, "addon_ids is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.DeactivateAddons(r.Context(), orgID, req.AddonIDs)
	if err != nil {
		writeEntitlementError(w, err)
		return
	}
	for _, id := range result.Deactivated {
		h.metrics.AddonDeactivationsTotal.WithLabelValues(id).Inc()
	}

	writeJSON(w, http.StatusOK, result)
}

// orgIDFromRequest parses the {id} path variable; writes a 400 on failure
func orgIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	orgID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid organization ID", http.StatusBadRequest)
		return 0, false
	}
	return orgID, true
}

func writeEntitlementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entitlements.ErrOrganizationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrUnknownPlan):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
