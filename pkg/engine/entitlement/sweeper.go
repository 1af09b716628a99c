// FILE: pkg/engine/entitlement/sweeper.go
package entitlement

import (
	"context"
	"time"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/pkg/mailer"
	"blicktrack-entitlement-be/internal/repository/specification"
	"blicktrack-entitlement-be/internal/repository/unitofwork"
	"blicktrack-entitlement-be/pkg/billing"
	"blicktrack-entitlement-be/pkg/engine/events"

	"github.com/google/uuid"
)

// SweepResult summarizes one ExpireTrials pass.
type SweepResult struct {
	Scanned  int
	Expired  int
	Disabled int
}

// Sweeper runs the trial-expiry batch. It is the only writer that mutates
// entitlements without an actor-initiated command, and it is idempotent: an
// entitlement it has already transitioned no longer matches the expiry
// predicate on the next pass.
type Sweeper struct {
	uowFactory unitofwork.RepositoryFactory
	plans      billing.PlanProvider
	publisher  events.Publisher
	mailer     mailer.IEmailService // nil disables notices
	logger     logger.ILogger
}

func NewSweeper(uowFactory unitofwork.RepositoryFactory, plans billing.PlanProvider, publisher events.Publisher, emailService mailer.IEmailService, logger logger.ILogger) *Sweeper {
	return &Sweeper{
		uowFactory: uowFactory,
		plans:      plans,
		publisher:  publisher,
		mailer:     emailService,
		logger:     logger,
	}
}

// ExpireTrials clears isTrial on every entitlement whose window has closed at
// the given instant, and disables the ones whose feature gates on a plan tier
// the tenant lacks.
func (s *Sweeper) ExpireTrials(ctx context.Context, now time.Time) (*SweepResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	expired, err := uow.EntitlementRepository().FindAll(ctx, specification.TrialExpiredBy{Now: now})
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Scanned: len(expired)}
	featureCache := make(map[uuid.UUID]*entity.Feature)
	tierCache := make(map[uuid.UUID]int)
	var notices []notice

	for _, record := range expired {
		record.IsTrial = false

		disable, err := s.planGateLost(ctx, uow, record, featureCache, tierCache)
		if err != nil {
			return nil, err
		}
		if disable && record.IsEnabled {
			record.IsEnabled = false
			record.DisabledAt = &now
			record.EnabledAt = nil
			result.Disabled++
		}

		if err := uow.EntitlementRepository().Update(ctx, record); err != nil {
			return nil, err
		}
		result.Expired++

		notices = append(notices, notice{
			tenantId:  record.TenantId,
			featureId: record.FeatureId,
			disabled:  disable,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	for _, n := range notices {
		s.publisher.PublishTrialExpired(ctx, n.tenantId, n.featureId, n.disabled)
		s.sendNotice(ctx, n, featureCache)
	}

	s.logger.Info("SWEEP", "Trial expiry sweep completed", map[string]interface{}{
		"scanned":  result.Scanned,
		"expired":  result.Expired,
		"disabled": result.Disabled,
	})
	return result, nil
}

type notice struct {
	tenantId  uuid.UUID
	featureId uuid.UUID
	disabled  bool
}

// planGateLost reports whether the record's feature gates on a plan tier the
// tenant does not hold.
func (s *Sweeper) planGateLost(ctx context.Context, uow unitofwork.UnitOfWork, record *entity.TenantEntitlement, featureCache map[uuid.UUID]*entity.Feature, tierCache map[uuid.UUID]int) (bool, error) {
	feature, ok := featureCache[record.FeatureId]
	if !ok {
		var err error
		feature, err = uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: record.FeatureId})
		if err != nil {
			return false, err
		}
		featureCache[record.FeatureId] = feature
	}
	if feature == nil || feature.SubscriptionPlanId == nil {
		// Orphaned or ungated feature: trial ends, access stays.
		return false, nil
	}

	plan, err := s.plans.GetPlan(ctx, *feature.SubscriptionPlanId)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Plan no longer exists; nothing to gate on.
			return false, nil
		}
		return false, err
	}

	tier, ok := tierCache[record.TenantId]
	if !ok {
		tier, err = s.plans.GetTenantPlanTier(ctx, record.TenantId)
		if err != nil {
			return false, err
		}
		tierCache[record.TenantId] = tier
	}

	return tier < plan.Tier, nil
}

func (s *Sweeper) sendNotice(ctx context.Context, n notice, featureCache map[uuid.UUID]*entity.Feature) {
	if s.mailer == nil {
		return
	}

	tenant, err := s.plans.GetTenant(ctx, n.tenantId)
	if err != nil || tenant.ContactEmail == "" {
		return
	}

	featureName := n.featureId.String()
	if feature := featureCache[n.featureId]; feature != nil {
		featureName = feature.DisplayName
	}

	if err := s.mailer.SendTrialExpiredNotice(tenant.ContactEmail, tenant.Name, featureName, n.disabled); err != nil {
		s.logger.Warn("SWEEP", "Failed to send trial expiry notice", map[string]interface{}{
			"tenant_id": n.tenantId,
			"error":     err.Error(),
		})
	}
}
