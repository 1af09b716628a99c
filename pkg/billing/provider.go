// FILE: pkg/billing/provider.go
package billing

import (
	"context"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/repository/specification"
	"blicktrack-entitlement-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// PlanProvider exposes read-only access to subscription data owned by the
// billing system. The engine never writes plans or tenants.
type PlanProvider interface {
	GetPlan(ctx context.Context, planId uuid.UUID) (*entity.SubscriptionPlan, error)
	GetTenant(ctx context.Context, tenantId uuid.UUID) (*entity.Tenant, error)
	GetTenantPlanTier(ctx context.Context, tenantId uuid.UUID) (int, error)
}

type PlanProviderImpl struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPlanProvider(uowFactory unitofwork.RepositoryFactory) *PlanProviderImpl {
	return &PlanProviderImpl{uowFactory: uowFactory}
}

func (p *PlanProviderImpl) GetPlan(ctx context.Context, planId uuid.UUID) (*entity.SubscriptionPlan, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: planId})
	if err != nil {
		return nil, apperror.NewUpstream("billing", err)
	}
	if plan == nil {
		return nil, apperror.NewNotFound("subscription plan", planId.String())
	}
	return plan, nil
}

func (p *PlanProviderImpl) GetTenant(ctx context.Context, tenantId uuid.UUID) (*entity.Tenant, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	tenant, err := uow.TenantRepository().FindOne(ctx, specification.ByID{ID: tenantId})
	if err != nil {
		return nil, apperror.NewUpstream("billing", err)
	}
	if tenant == nil {
		return nil, apperror.NewNotFound("tenant", tenantId.String())
	}
	return tenant, nil
}

// GetTenantPlanTier resolves a tenant's plan tier. Tenants without an active
// plan resolve to tier 0.
func (p *PlanProviderImpl) GetTenantPlanTier(ctx context.Context, tenantId uuid.UUID) (int, error) {
	tenant, err := p.GetTenant(ctx, tenantId)
	if err != nil {
		return 0, err
	}
	if tenant.PlanId == nil {
		return 0, nil
	}

	plan, err := p.GetPlan(ctx, *tenant.PlanId)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	if !plan.IsActive {
		return 0, nil
	}
	return plan.Tier, nil
}
