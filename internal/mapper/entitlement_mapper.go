// FILE: internal/mapper/entitlement_mapper.go
// Mapper for TenantEntitlement entity <-> model conversion
package mapper

import (
	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/model"
)

type EntitlementMapper struct{}

func NewEntitlementMapper() *EntitlementMapper {
	return &EntitlementMapper{}
}

func (m *EntitlementMapper) ToEntity(mdl *model.TenantEntitlement) *entity.TenantEntitlement {
	if mdl == nil {
		return nil
	}
	return &entity.TenantEntitlement{
		Id:               mdl.Id,
		TenantId:         mdl.TenantId,
		FeatureId:        mdl.FeatureId,
		IsEnabled:        mdl.IsEnabled,
		IsActive:         mdl.IsActive,
		IsTrial:          mdl.IsTrial,
		EnabledAt:        mdl.EnabledAt,
		DisabledAt:       mdl.DisabledAt,
		TrialExpiresAt:   mdl.TrialExpiresAt,
		UsageCount:       mdl.UsageCount,
		LastUsedAt:       mdl.LastUsedAt,
		AssignedBy:       mdl.AssignedBy,
		AssignedAt:       mdl.AssignedAt,
		AssignmentReason: mdl.AssignmentReason,
		CreatedAt:        mdl.CreatedAt,
		UpdatedAt:        mdl.UpdatedAt,
	}
}

func (m *EntitlementMapper) ToModel(ent *entity.TenantEntitlement) *model.TenantEntitlement {
	if ent == nil {
		return nil
	}
	return &model.TenantEntitlement{
		Id:               ent.Id,
		TenantId:         ent.TenantId,
		FeatureId:        ent.FeatureId,
		IsEnabled:        ent.IsEnabled,
		IsActive:         ent.IsActive,
		IsTrial:          ent.IsTrial,
		EnabledAt:        ent.EnabledAt,
		DisabledAt:       ent.DisabledAt,
		TrialExpiresAt:   ent.TrialExpiresAt,
		UsageCount:       ent.UsageCount,
		LastUsedAt:       ent.LastUsedAt,
		AssignedBy:       ent.AssignedBy,
		AssignedAt:       ent.AssignedAt,
		AssignmentReason: ent.AssignmentReason,
		CreatedAt:        ent.CreatedAt,
		UpdatedAt:        ent.UpdatedAt,
	}
}

func (m *EntitlementMapper) ToEntities(models []*model.TenantEntitlement) []*entity.TenantEntitlement {
	entities := make([]*entity.TenantEntitlement, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}
