package billing

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/pkg/catalog"
	"github.com/atelierhq/atelier/pkg/entitlements"
	"github.com/atelierhq/atelier/pkg/observability"
)

// mockOrgStore is a mock implementation of entitlements.OrgStore
type mockOrgStore struct {
	orgs    []*entitlements.Organization
	listErr error
}

func (m *mockOrgStore) GetOrganization(ctx context.Context, id int64) (*entitlements.Organization, error) {
	for _, org := range m.orgs {
		if org.ID == id {
			return org, nil
		}
	}
	return nil, entitlements.ErrOrganizationNotFound
}

func (m *mockOrgStore) ListOrganizations(ctx context.Context) ([]*entitlements.Organization, error) {
	return m.orgs, m.listErr
}

func (m *mockOrgStore) UpdateAddonState(ctx context.Context, orgID int64, state *entitlements.AddonState, matrix catalog.FeatureMatrix) error {
	return nil
}

// mockInvoiceStore is a mock implementation of InvoiceStore
type mockInvoiceStore struct {
	created   []*Invoice
	createErr map[int64]error
}

func (m *mockInvoiceStore) CreateInvoice(ctx context.Context, invoice *Invoice) error {
	if err := m.createErr[invoice.OrgID]; err != nil {
		return err
	}
	m.created = append(m.created, invoice)
	return nil
}

func (m *mockInvoiceStore) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	return nil, ErrInvoiceNotFound
}

func (m *mockInvoiceStore) ListOrgInvoices(ctx context.Context, orgID int64, limit int) ([]*Invoice, error) {
	return nil, nil
}

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestSchedulerRunRenewals(t *testing.T) {
	ctx := context.Background()

	t.Run("generates one renewal invoice per organization", func(t *testing.T) {
		orgs := &mockOrgStore{orgs: []*entitlements.Organization{
			{ID: 1, Plan: catalog.PlanSolo},
			{ID: 2, Plan: catalog.PlanDuo, AddonsJSON: `{"recurring":["feature-shop"],"oneTime":[]}`},
		}}
		invoices := &mockInvoiceStore{}

		s := NewScheduler(orgs, invoices, testLogger(), nil)
		s.now = func() time.Time { return time.Date(2026, 2, 1, 2, 0, 0, 0, time.UTC) }

		err := s.RunRenewals(ctx)
		require.NoError(t, err)
		require.Len(t, invoices.created, 2)

		first := invoices.created[0]
		assert.Equal(t, int64(1), first.OrgID)
		assert.Equal(t, int64(4900), first.AmountCents)
		assert.Equal(t, "eur", first.Currency)
		assert.Equal(t, InvoiceStatusPending, first.Status)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), first.PeriodStart)
		assert.Regexp(t, `^ATL-202602-`, first.Number)
		assert.Equal(t, ChangeTypeRenewal, first.Metadata.ChangeType)

		second := invoices.created[1]
		assert.Equal(t, int64(11400), second.AmountCents)
		assert.Len(t, second.Metadata.LineItems, 2)
	})

	t.Run("one failing organization does not abort the run", func(t *testing.T) {
		orgs := &mockOrgStore{orgs: []*entitlements.Organization{
			{ID: 1, Plan: "GOLD"}, // unknown plan, metadata generation fails
			{ID: 2, Plan: catalog.PlanTeam},
			{ID: 3, Plan: catalog.PlanSolo},
		}}
		invoices := &mockInvoiceStore{createErr: map[int64]error{3: errors.New("insert failed")}}

		s := NewScheduler(orgs, invoices, testLogger(), nil)
		s.now = func() time.Time { return time.Date(2026, 2, 1, 2, 0, 0, 0, time.UTC) }

		err := s.RunRenewals(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 of 3")
		require.Len(t, invoices.created, 1)
		assert.Equal(t, int64(2), invoices.created[0].OrgID)
	})

	t.Run("list failure aborts", func(t *testing.T) {
		orgs := &mockOrgStore{listErr: errors.New("db down")}
		s := NewScheduler(orgs, &mockInvoiceStore{}, testLogger(), nil)

		err := s.RunRenewals(ctx)
		assert.Error(t, err)
	})
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(&mockOrgStore{}, &mockInvoiceStore{}, testLogger(), nil)

	require.NoError(t, s.Start(DefaultRenewalSchedule))
	<-s.Stop().Done()
}

func TestSchedulerStartInvalidSchedule(t *testing.T) {
	s := NewScheduler(&mockOrgStore{}, &mockInvoiceStore{}, testLogger(), nil)
	assert.Error(t, s.Start("not a cron spec"))
}
