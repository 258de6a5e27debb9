// Package entitlements resolves which product features an organization can
// use and manages the addon purchases that extend them.
//
// Resolution layers three inputs: the plan's base feature matrix, the
// organization's active addons (which can only enable features on top of
// the plan, never disable them), and the requesting user's role. Access
// checks fail closed: an unknown role or feature is denied.
//
// The addon state itself is stored as a JSON document on the organization
// row, alongside denormalized boolean feature columns for cheap querying.
package entitlements
