// Package catalog defines the static product catalog: plans, features,
// addons, and roles, together with the pricing and access tables that the
// entitlement and billing layers resolve against. All catalog data is
// compile-time constant; there is no runtime catalog administration.
package catalog
