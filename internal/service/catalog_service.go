// FILE: internal/service/catalog_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"blicktrack-entitlement-be/internal/dto"
	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/pkg/engine/catalog"

	"github.com/google/uuid"
)

type ICatalogService interface {
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategory(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context, query *dto.CatalogListQuery) ([]*dto.CategoryResponse, error)

	CreateFeature(ctx context.Context, req *dto.CreateFeatureRequest) (*dto.FeatureResponse, error)
	UpdateFeature(ctx context.Context, id uuid.UUID, req *dto.UpdateFeatureRequest) (*dto.FeatureResponse, error)
	DeleteFeature(ctx context.Context, id uuid.UUID) error
	GetFeature(ctx context.Context, id uuid.UUID) (*dto.FeatureResponse, error)
	ListFeatures(ctx context.Context, query *dto.CatalogListQuery) ([]*dto.FeatureResponse, error)
}

type catalogService struct {
	manager          *catalog.Manager
	publisherService IPublisherService
}

func NewCatalogService(manager *catalog.Manager, publisherService IPublisherService) ICatalogService {
	return &catalogService{
		manager:          manager,
		publisherService: publisherService,
	}
}

// invalidate tells consumer-side caches the collection changed. Best effort;
// a lost signal only delays the next refresh until the TTL fires.
func (c *catalogService) invalidate(ctx context.Context, collection string) {
	msg := dto.CacheInvalidationMessage{Collection: collection, At: time.Now()}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = c.publisherService.Publish(ctx, payload)
}

// --- Categories ---

func (c *catalogService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := c.manager.CreateCategory(ctx, catalog.CreateCategoryInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Order:       req.Order,
		Priority:    req.Priority,
		IsActive:    req.IsActive,
		IsVisible:   req.IsVisible,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "categories")
	return categoryToResponse(category), nil
}

func (c *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := c.manager.UpdateCategory(ctx, id, catalog.UpdateCategoryInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Order:       req.Order,
		Priority:    req.Priority,
		IsActive:    req.IsActive,
		IsVisible:   req.IsVisible,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "categories")
	return categoryToResponse(category), nil
}

func (c *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := c.manager.DeleteCategory(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, "categories")
	return nil
}

func (c *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	category, err := c.manager.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return categoryToResponse(category), nil
}

func (c *catalogService) ListCategories(ctx context.Context, query *dto.CatalogListQuery) ([]*dto.CategoryResponse, error) {
	categories, err := c.manager.ListCategories(ctx, listFilterFromQuery(query))
	if err != nil {
		return nil, err
	}
	result := make([]*dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		result = append(result, categoryToResponse(category))
	}
	return result, nil
}

// --- Features ---

func (c *catalogService) CreateFeature(ctx context.Context, req *dto.CreateFeatureRequest) (*dto.FeatureResponse, error) {
	feature, err := c.manager.CreateFeature(ctx, catalog.CreateFeatureInput{
		Name:               req.Name,
		DisplayName:        req.DisplayName,
		Description:        req.Description,
		ParentId:           req.ParentId,
		SubscriptionPlanId: req.SubscriptionPlanId,
		CategoryId:         req.CategoryId,
		SortOrder:          req.SortOrder,
		IsActive:           req.IsActive,
		IsVisible:          req.IsVisible,
		IsPremium:          req.IsPremium,
		RequiresLicense:    req.RequiresLicense,
		Metadata:           req.Metadata,
		Tags:               req.Tags,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "features")
	return featureToResponse(feature), nil
}

func (c *catalogService) UpdateFeature(ctx context.Context, id uuid.UUID, req *dto.UpdateFeatureRequest) (*dto.FeatureResponse, error) {
	feature, err := c.manager.UpdateFeature(ctx, id, catalog.UpdateFeatureInput{
		Name:               req.Name,
		DisplayName:        req.DisplayName,
		Description:        req.Description,
		ParentId:           req.ParentId,
		ClearParent:        req.ClearParent,
		SubscriptionPlanId: req.SubscriptionPlanId,
		SortOrder:          req.SortOrder,
		IsActive:           req.IsActive,
		IsVisible:          req.IsVisible,
		IsPremium:          req.IsPremium,
		RequiresLicense:    req.RequiresLicense,
		IsDeprecated:       req.IsDeprecated,
		Metadata:           req.Metadata,
		Tags:               req.Tags,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "features")
	return featureToResponse(feature), nil
}

func (c *catalogService) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	if err := c.manager.DeleteFeature(ctx, id); err != nil {
		return err
	}
	// The cascade also removes entitlements, so both collections go stale.
	c.invalidate(ctx, "features")
	c.invalidate(ctx, "entitlements")
	return nil
}

func (c *catalogService) GetFeature(ctx context.Context, id uuid.UUID) (*dto.FeatureResponse, error) {
	feature, err := c.manager.GetFeature(ctx, id)
	if err != nil {
		return nil, err
	}
	return featureToResponse(feature), nil
}

func (c *catalogService) ListFeatures(ctx context.Context, query *dto.CatalogListQuery) ([]*dto.FeatureResponse, error) {
	features, err := c.manager.ListFeatures(ctx, listFilterFromQuery(query))
	if err != nil {
		return nil, err
	}
	result := make([]*dto.FeatureResponse, 0, len(features))
	for _, feature := range features {
		result = append(result, featureToResponse(feature))
	}
	return result, nil
}

// --- Mapping helpers ---

func listFilterFromQuery(query *dto.CatalogListQuery) catalog.ListFilter {
	if query == nil {
		return catalog.ListFilter{}
	}
	return catalog.ListFilter{
		ActiveOnly: query.ActiveOnly,
		CategoryId: query.CategoryId,
		Search:     query.Search,
		TopLevel:   query.TopLevel,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
}

func categoryToResponse(category *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		Id:          category.Id,
		Name:        category.Name,
		DisplayName: category.DisplayName,
		Description: category.Description,
		Icon:        category.Icon,
		Color:       category.Color,
		Order:       category.Order,
		Priority:    category.Priority,
		IsActive:    category.IsActive,
		IsVisible:   category.IsVisible,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func featureToResponse(feature *entity.Feature) *dto.FeatureResponse {
	res := &dto.FeatureResponse{
		Id:                 feature.Id,
		Name:               feature.Name,
		DisplayName:        feature.DisplayName,
		Description:        feature.Description,
		Kind:               string(feature.Kind()),
		Level:              feature.Level(),
		ParentId:           feature.ParentId,
		SubscriptionPlanId: feature.SubscriptionPlanId,
		SortOrder:          feature.SortOrder,
		IsActive:           feature.IsActive,
		IsVisible:          feature.IsVisible,
		IsPremium:          feature.IsPremium,
		RequiresLicense:    feature.RequiresLicense,
		IsDeprecated:       feature.IsDeprecated,
		Metadata:           feature.Metadata,
		Tags:               feature.Tags,
		CreatedAt:          feature.CreatedAt,
		UpdatedAt:          feature.UpdatedAt,
	}
	for _, assoc := range feature.Categories {
		res.Categories = append(res.Categories, dto.CategoryAssociationResponse{
			CategoryId: assoc.CategoryId,
			Order:      assoc.Order,
			IsPrimary:  assoc.IsPrimary,
		})
	}
	for _, child := range feature.Children {
		res.Children = append(res.Children, featureToResponse(child))
	}
	return res
}
