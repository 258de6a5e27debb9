// Package billing computes invoice totals, line items, and prorated
// plan-change amounts, and persists generated invoices.
//
// All amounts are integer EUR cents. Proration uses a fixed 30-day month:
// the daily rate is always monthlyTotal/30 regardless of calendar length.
// This matches the historical billing behavior and slightly over-credits
// in 31-day months; changing the divisor would silently shift every
// customer's prorata, so it stays.
package billing
