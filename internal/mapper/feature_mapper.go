// FILE: internal/mapper/feature_mapper.go
// Mapper for Feature entity <-> model conversion
package mapper

import (
	"encoding/json"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/model"

	"gorm.io/datatypes"
)

type FeatureMapper struct{}

func NewFeatureMapper() *FeatureMapper {
	return &FeatureMapper{}
}

func (m *FeatureMapper) ToEntity(mdl *model.Feature) *entity.Feature {
	if mdl == nil {
		return nil
	}

	var tags []string
	if len(mdl.Tags) > 0 {
		// Tags are stored as a jsonb array; ignore malformed rows.
		_ = json.Unmarshal(mdl.Tags, &tags)
	}

	return &entity.Feature{
		Id:                 mdl.Id,
		Name:               mdl.Name,
		DisplayName:        mdl.DisplayName,
		Description:        mdl.Description,
		ParentId:           mdl.ParentId,
		SubscriptionPlanId: mdl.SubscriptionPlanId,
		SortOrder:          mdl.SortOrder,
		IsActive:           mdl.IsActive,
		IsVisible:          mdl.IsVisible,
		IsPremium:          mdl.IsPremium,
		RequiresLicense:    mdl.RequiresLicense,
		IsDeprecated:       mdl.IsDeprecated,
		Metadata:           mdl.Metadata,
		Tags:               tags,
		CreatedAt:          mdl.CreatedAt,
		UpdatedAt:          mdl.UpdatedAt,
	}
}

func (m *FeatureMapper) ToModel(ent *entity.Feature) *model.Feature {
	if ent == nil {
		return nil
	}

	var tags datatypes.JSON
	if len(ent.Tags) > 0 {
		raw, err := json.Marshal(ent.Tags)
		if err == nil {
			tags = raw
		}
	}

	return &model.Feature{
		Id:                 ent.Id,
		Name:               ent.Name,
		DisplayName:        ent.DisplayName,
		Description:        ent.Description,
		ParentId:           ent.ParentId,
		SubscriptionPlanId: ent.SubscriptionPlanId,
		SortOrder:          ent.SortOrder,
		IsActive:           ent.IsActive,
		IsVisible:          ent.IsVisible,
		IsPremium:          ent.IsPremium,
		RequiresLicense:    ent.RequiresLicense,
		IsDeprecated:       ent.IsDeprecated,
		Metadata:           ent.Metadata,
		Tags:               tags,
		CreatedAt:          ent.CreatedAt,
		UpdatedAt:          ent.UpdatedAt,
	}
}

func (m *FeatureMapper) ToEntities(models []*model.Feature) []*entity.Feature {
	entities := make([]*entity.Feature, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

func (m *FeatureMapper) AssociationToEntity(mdl *model.FeatureCategoryFeature) *entity.CategoryAssociation {
	if mdl == nil {
		return nil
	}
	return &entity.CategoryAssociation{
		Id:         mdl.Id,
		FeatureId:  mdl.FeatureId,
		CategoryId: mdl.CategoryId,
		Order:      mdl.SortOrder,
		IsPrimary:  mdl.IsPrimary,
		CreatedAt:  mdl.CreatedAt,
	}
}

func (m *FeatureMapper) AssociationToModel(ent *entity.CategoryAssociation) *model.FeatureCategoryFeature {
	if ent == nil {
		return nil
	}
	return &model.FeatureCategoryFeature{
		Id:         ent.Id,
		FeatureId:  ent.FeatureId,
		CategoryId: ent.CategoryId,
		SortOrder:  ent.Order,
		IsPrimary:  ent.IsPrimary,
		CreatedAt:  ent.CreatedAt,
	}
}
