package api

import (
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atelierhq/atelier/pkg/billing"
	"github.com/atelierhq/atelier/pkg/config"
	"github.com/atelierhq/atelier/pkg/entitlements"
	"github.com/atelierhq/atelier/pkg/observability"
)

// ServerDeps carries everything the HTTP surface needs
type ServerDeps struct {
	Entitlements entitlements.Service
	Orgs         entitlements.OrgStore
	Invoices     billing.InvoiceStore
	Logger       *observability.Logger
	Metrics      *observability.Metrics
}

// NewRouter builds the /api/v1 router with all handlers and middleware
func NewRouter(deps ServerDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(deps.Logger))
	router.Use(MetricsMiddleware(deps.Metrics))

	v1 := router.PathPrefix("/api/v1").Subrouter()
	NewEntitlementHandlers(deps.Entitlements, deps.Metrics).RegisterRoutes(v1)
	NewBillingHandlers(deps.Invoices, deps.Orgs, deps.Metrics).RegisterRoutes(v1)
	NewCatalogHandlers().RegisterRoutes(v1)

	return router
}

// NewServer builds the main HTTP server from configuration
func NewServer(cfg config.ServerConfig, deps ServerDeps) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      NewRouter(deps),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
