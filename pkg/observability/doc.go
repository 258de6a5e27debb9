// Package observability provides structured JSON logging, Prometheus
// metrics, and health checks for the atelier services.
//
// Loggers are slog-based and carry request and organization identifiers
// through context. Metrics cover the HTTP surface plus the entitlement and
// billing business events, all under the atelier_ prefix. The health
// checker probes PostgreSQL and Redis; Redis is treated as optional and
// only degrades readiness.
package observability
