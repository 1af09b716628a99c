// FILE: internal/service/tenant_service.go
package service

import (
	"context"

	"blicktrack-entitlement-be/internal/dto"
	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/repository/specification"
	"blicktrack-entitlement-be/internal/repository/unitofwork"
	"blicktrack-entitlement-be/pkg/billing"

	"github.com/google/uuid"
)

// ITenantService serves read-only tenant/plan reference data to the console.
// Tenant CRUD is owned by another service.
type ITenantService interface {
	GetAll(ctx context.Context) ([]*dto.TenantResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.TenantResponse, error)
	GetPlans(ctx context.Context) ([]*dto.PlanResponse, error)
}

type tenantService struct {
	uowFactory unitofwork.RepositoryFactory
	plans      billing.PlanProvider
}

func NewTenantService(uowFactory unitofwork.RepositoryFactory, plans billing.PlanProvider) ITenantService {
	return &tenantService{
		uowFactory: uowFactory,
		plans:      plans,
	}
}

func (c *tenantService) GetAll(ctx context.Context) ([]*dto.TenantResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	tenants, err := uow.TenantRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, err
	}

	planTiers, err := c.allPlanTiers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.TenantResponse, 0, len(tenants))
	for _, tenant := range tenants {
		result = append(result, tenantToResponse(tenant, planTiers))
	}
	return result, nil
}

func (c *tenantService) Show(ctx context.Context, id uuid.UUID) (*dto.TenantResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	tenant, err := uow.TenantRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFound("tenant", id.String())
	}

	tier := 0
	if tenant.PlanId != nil {
		tier, err = c.plans.GetTenantPlanTier(ctx, tenant.Id)
		if err != nil {
			return nil, err
		}
	}

	res := tenantToResponse(tenant, nil)
	res.PlanTier = tier
	return res, nil
}

func (c *tenantService) GetPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.PlanRepository().FindAll(ctx, specification.OrderBy{Field: "tier"})
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		result = append(result, &dto.PlanResponse{
			Id:           plan.Id,
			DisplayName:  plan.DisplayName,
			Tier:         plan.Tier,
			Price:        plan.Price,
			Currency:     plan.Currency,
			BillingCycle: string(plan.BillingCycle),
			IsActive:     plan.IsActive,
		})
	}
	return result, nil
}

func (c *tenantService) allPlanTiers(ctx context.Context) (map[uuid.UUID]int, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.PlanRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	tiers := make(map[uuid.UUID]int, len(plans))
	for _, plan := range plans {
		if plan.IsActive {
			tiers[plan.Id] = plan.Tier
		}
	}
	return tiers, nil
}

func tenantToResponse(tenant *entity.Tenant, planTiers map[uuid.UUID]int) *dto.TenantResponse {
	res := &dto.TenantResponse{
		Id:           tenant.Id,
		Name:         tenant.Name,
		Slug:         tenant.Slug,
		ContactEmail: tenant.ContactEmail,
		PlanId:       tenant.PlanId,
		IsActive:     tenant.IsActive,
		CreatedAt:    tenant.CreatedAt,
		UpdatedAt:    tenant.UpdatedAt,
	}
	if tenant.PlanId != nil && planTiers != nil {
		res.PlanTier = planTiers[*tenant.PlanId]
	}
	return res
}
