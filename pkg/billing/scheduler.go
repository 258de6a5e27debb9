package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/atelierhq/atelier/pkg/entitlements"
	"github.com/atelierhq/atelier/pkg/observability"
)

// DefaultRenewalSchedule runs renewals on the 1st of each month at 02:00 UTC
const DefaultRenewalSchedule = "0 2 1 * *"

// Scheduler generates monthly renewal invoices for every organization
type Scheduler struct {
	orgs     entitlements.OrgStore
	invoices InvoiceStore
	cron     *cron.Cron
	logger   *observability.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewScheduler creates a new Scheduler. Metrics may be nil.
func NewScheduler(orgs entitlements.OrgStore, invoices InvoiceStore, logger *observability.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		orgs:     orgs,
		invoices: invoices,
		cron:     cron.New(),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Start schedules the renewal run and starts the cron loop
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunRenewals(context.Background()); err != nil {
			s.logger.WithError(err).Error("renewal run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule renewal run: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", schedule).Info("billing scheduler started")
	return nil
}

// Stop stops the cron loop; the returned context is done once running jobs
// have drained.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunRenewals generates one renewal invoice per organization for the
// current billing period. A failure on one organization is logged and the
// run continues; the error reports how many failed.
func (s *Scheduler) RunRenewals(ctx context.Context) error {
	period := CurrentBillingPeriod(s.now())
	orgs, err := s.orgs.ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list organizations: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"orgs":         len(orgs),
		"period_start": period.Start.Format("2006-01-02"),
	}).Info("starting renewal run")

	var failed int
	for _, org := range orgs {
		if err := s.renewOrg(ctx, org, period); err != nil {
			failed++
			s.logger.WithError(err).WithField("org_id", org.ID).Error("failed to renew organization")
		}
	}

	if failed > 0 {
		return fmt.Errorf("renewal run: %d of %d organizations failed", failed, len(orgs))
	}

	s.logger.WithField("orgs", len(orgs)).Info("renewal run completed")
	return nil
}

func (s *Scheduler) renewOrg(ctx context.Context, org *entitlements.Organization, period BillingPeriod) error {
	metadata, err := GenerateInvoiceMetadata(org.Plan, org.AddonState(), period, nil)
	if err != nil {
		return err
	}

	invoice := &Invoice{
		OrgID:       org.ID,
		Number:      NewInvoiceNumber(s.now()),
		AmountCents: metadata.TotalCents,
		Currency:    "eur",
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Status:      InvoiceStatusPending,
		Metadata:    metadata,
	}
	if err := s.invoices.CreateInvoice(ctx, invoice); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.InvoicesGeneratedTotal.WithLabelValues(string(ChangeTypeRenewal)).Inc()
	}
	return nil
}
