// Package api exposes the HTTP surface: entitlement resolution, addon
// lifecycle, invoices and prorata previews, and the read-only product
// catalog, under /api/v1.
package api
