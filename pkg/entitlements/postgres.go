package entitlements

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atelierhq/atelier/pkg/catalog"
)

// featureColumns maps each feature to its denormalized boolean column, in
// canonical feature order. Kept in lockstep with the organizations schema.
var featureColumns = []string{
	"feature_blog",
	"feature_crm",
	"feature_emailing",
	"feature_shop",
	"feature_whatsapp",
	"feature_sms",
	"feature_social_media",
	"feature_stock",
	"feature_multi_location",
	"feature_multi_user",
}

// PostgresStore implements OrgStore using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetOrganization retrieves an organization by ID
func (s *PostgresStore) GetOrganization(ctx context.Context, id int64) (*Organization, error) {
	query := `
		SELECT id, name, plan, addons_json, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	org := &Organization{}
	var addonsJSON sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Plan, &addonsJSON,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("organization %d: %w", id, ErrOrganizationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	org.AddonsJSON = addonsJSON.String

	return org, nil
}

// ListOrganizations lists all organizations ordered by ID
func (s *PostgresStore) ListOrganizations(ctx context.Context) ([]*Organization, error) {
	query := `
		SELECT id, name, plan, addons_json, created_at, updated_at
		FROM organizations
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*Organization
	for rows.Next() {
		org := &Organization{}
		var addonsJSON sql.NullString
		if err := rows.Scan(
			&org.ID, &org.Name, &org.Plan, &addonsJSON,
			&org.CreatedAt, &org.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		org.AddonsJSON = addonsJSON.String
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}

	return orgs, nil
}

// UpdateAddonState persists the addon document and the denormalized feature
// columns in a single statement.
func (s *PostgresStore) UpdateAddonState(ctx context.Context, orgID int64, state *AddonState, matrix catalog.FeatureMatrix) error {
	doc, err := state.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal addon state: %w", err)
	}

	query := `
		UPDATE organizations
		SET addons_json = $1,
		    feature_blog = $2, feature_crm = $3, feature_emailing = $4,
		    feature_shop = $5, feature_whatsapp = $6, feature_sms = $7,
		    feature_social_media = $8, feature_stock = $9,
		    feature_multi_location = $10, feature_multi_user = $11,
		    updated_at = NOW()
		WHERE id = $12
	`
	args := make([]interface{}, 0, len(featureColumns)+2)
	args = append(args, doc)
	for _, f := range catalog.Features() {
		args = append(args, matrix.Enabled(f))
	}
	args = append(args, orgID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update addon state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("organization %d: %w", orgID, ErrOrganizationNotFound)
	}

	return nil
}
