// FILE: internal/mapper/category_mapper.go
// Mapper for Category entity <-> model conversion
package mapper

import (
	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/model"
)

type CategoryMapper struct{}

func NewCategoryMapper() *CategoryMapper {
	return &CategoryMapper{}
}

func (m *CategoryMapper) ToEntity(model *model.FeatureCategory) *entity.Category {
	if model == nil {
		return nil
	}
	return &entity.Category{
		Id:          model.Id,
		Name:        model.Name,
		DisplayName: model.DisplayName,
		Description: model.Description,
		Icon:        model.Icon,
		Color:       model.Color,
		Order:       model.SortOrder,
		Priority:    model.Priority,
		IsActive:    model.IsActive,
		IsVisible:   model.IsVisible,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func (m *CategoryMapper) ToModel(entity *entity.Category) *model.FeatureCategory {
	if entity == nil {
		return nil
	}
	return &model.FeatureCategory{
		Id:          entity.Id,
		Name:        entity.Name,
		DisplayName: entity.DisplayName,
		Description: entity.Description,
		Icon:        entity.Icon,
		Color:       entity.Color,
		SortOrder:   entity.Order,
		Priority:    entity.Priority,
		IsActive:    entity.IsActive,
		IsVisible:   entity.IsVisible,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (m *CategoryMapper) ToEntities(models []*model.FeatureCategory) []*entity.Category {
	entities := make([]*entity.Category, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}
