// FILE: internal/mapper/subscription_mapper.go
// Mappers for SubscriptionPlan and Tenant reference data
package mapper

import (
	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(mdl *model.SubscriptionPlan) *entity.SubscriptionPlan {
	if mdl == nil {
		return nil
	}
	return &entity.SubscriptionPlan{
		Id:           mdl.Id,
		DisplayName:  mdl.DisplayName,
		Tier:         mdl.Tier,
		Price:        mdl.Price,
		Currency:     mdl.Currency,
		BillingCycle: entity.BillingCycle(mdl.BillingCycle),
		IsActive:     mdl.IsActive,
		CreatedAt:    mdl.CreatedAt,
		UpdatedAt:    mdl.UpdatedAt,
	}
}

func (m *SubscriptionMapper) PlansToEntities(models []*model.SubscriptionPlan) []*entity.SubscriptionPlan {
	entities := make([]*entity.SubscriptionPlan, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.PlanToEntity(mdl))
	}
	return entities
}

func (m *SubscriptionMapper) TenantToEntity(mdl *model.Tenant) *entity.Tenant {
	if mdl == nil {
		return nil
	}
	return &entity.Tenant{
		Id:           mdl.Id,
		Name:         mdl.Name,
		Slug:         mdl.Slug,
		ContactEmail: mdl.ContactEmail,
		PlanId:       mdl.PlanId,
		IsActive:     mdl.IsActive,
		CreatedAt:    mdl.CreatedAt,
		UpdatedAt:    mdl.UpdatedAt,
	}
}

func (m *SubscriptionMapper) TenantsToEntities(models []*model.Tenant) []*entity.Tenant {
	entities := make([]*entity.Tenant, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.TenantToEntity(mdl))
	}
	return entities
}
