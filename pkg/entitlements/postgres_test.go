package entitlements

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/pkg/catalog"
)

func TestPostgresStoreGetOrganization(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "name", "plan", "addons_json", "created_at", "updated_at"}).
			AddRow(1, "Institut Belle Vue", "DUO", `{"recurring":["feature-shop"],"oneTime":[]}`, now, now)
		mock.ExpectQuery("SELECT (.+) FROM organizations").
			WithArgs(int64(1)).
			WillReturnRows(rows)

		org, err := store.GetOrganization(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), org.ID)
		assert.Equal(t, catalog.PlanDuo, org.Plan)
		assert.True(t, org.AddonState().HasRecurring("feature-shop"))
	})

	t.Run("null addons column", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "name", "plan", "addons_json", "created_at", "updated_at"}).
			AddRow(2, "Institut Neuf", "SOLO", nil, now, now)
		mock.ExpectQuery("SELECT (.+) FROM organizations").
			WithArgs(int64(2)).
			WillReturnRows(rows)

		org, err := store.GetOrganization(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, org.AddonState().Recurring)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM organizations").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := store.GetOrganization(ctx, 404)
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListOrganizations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "plan", "addons_json", "created_at", "updated_at"}).
		AddRow(1, "Institut A", "SOLO", nil, now, now).
		AddRow(2, "Institut B", "TEAM", `{"recurring":["feature-stock"],"oneTime":[]}`, now, now)
	mock.ExpectQuery("SELECT (.+) FROM organizations ORDER BY id").
		WillReturnRows(rows)

	orgs, err := store.ListOrganizations(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, catalog.PlanTeam, orgs[1].Plan)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateAddonState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	ctx := context.Background()

	state := &AddonState{Recurring: []string{"feature-shop"}, OneTime: []string{}}
	matrix, err := ActiveFeatures(catalog.PlanDuo, state)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("UPDATE organizations").
			WithArgs(
				sqlmock.AnyArg(), // addons_json
				true,             // blog (plan)
				true,             // crm (plan)
				true,             // emailing (plan)
				true,             // shop (addon)
				false, false, false, false, false,
				true, // multi_user (plan)
				int64(1),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.UpdateAddonState(ctx, 1, state, matrix)
		assert.NoError(t, err)
	})

	t.Run("missing organization", func(t *testing.T) {
		mock.ExpectExec("UPDATE organizations").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.UpdateAddonState(ctx, 404, state, matrix)
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
