package entitlements

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/atelier/pkg/catalog"
)

// ErrOrganizationNotFound is returned when an organization does not exist
var ErrOrganizationNotFound = errors.New("organization not found")

// Organization is the tenant row the entitlement layer operates on
type Organization struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Plan       catalog.Plan `json:"plan"`
	AddonsJSON string       `json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// AddonState decodes the organization's stored addon document (fail-soft)
func (o *Organization) AddonState() *AddonState {
	return ParseAddonState(o.AddonsJSON)
}

// OrgStore persists organizations and their addon state.
//
// UpdateAddonState writes a full read-modify-write result. The store does
// not serialize concurrent writers: callers that may race on the same
// organization must hold a per-org lock (advisory lock or transaction)
// around the read-modify-write cycle.
type OrgStore interface {
	GetOrganization(ctx context.Context, id int64) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]*Organization, error)
	UpdateAddonState(ctx context.Context, orgID int64, state *AddonState, matrix catalog.FeatureMatrix) error
}
