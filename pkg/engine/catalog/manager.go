// FILE: pkg/engine/catalog/manager.go
package catalog

import (
	"context"
	"fmt"
	"regexp"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/repository/specification"
	"blicktrack-entitlement-be/internal/repository/unitofwork"
	"blicktrack-entitlement-be/pkg/engine/events"

	"github.com/google/uuid"
)

// machine keys are lowercase-kebab: threat-modeling, sbom-export
var nameKeyPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Manager owns the category/feature hierarchy. All structural mutations to
// the catalog go through here; entitlement state is owned elsewhere and is
// only touched by the explicit feature-delete cascade.
type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewManager(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, logger logger.ILogger) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateCategoryInput carries the writable category fields.
type CreateCategoryInput struct {
	Name        string
	DisplayName string
	Description string
	Icon        string
	Color       string
	Order       int
	Priority    *int
	IsActive    *bool
	IsVisible   *bool
}

// UpdateCategoryInput is a partial update; nil fields are left untouched.
type UpdateCategoryInput struct {
	Name        *string
	DisplayName *string
	Description *string
	Icon        *string
	Color       *string
	Order       *int
	Priority    *int
	IsActive    *bool
	IsVisible   *bool
}

// CreateFeatureInput carries the writable feature fields. CategoryId, when
// set, becomes the primary category association.
type CreateFeatureInput struct {
	Name               string
	DisplayName        string
	Description        string
	ParentId           *uuid.UUID
	SubscriptionPlanId *uuid.UUID
	CategoryId         *uuid.UUID
	SortOrder          int
	IsActive           *bool
	IsVisible          *bool
	IsPremium          bool
	RequiresLicense    bool
	Metadata           map[string]interface{}
	Tags               []string
}

type UpdateFeatureInput struct {
	Name               *string
	DisplayName        *string
	Description        *string
	ParentId           *uuid.UUID
	ClearParent        bool
	SubscriptionPlanId *uuid.UUID
	SortOrder          *int
	IsActive           *bool
	IsVisible          *bool
	IsPremium          *bool
	RequiresLicense    *bool
	IsDeprecated       *bool
	Metadata           map[string]interface{}
	Tags               []string
}

// ListFilter narrows catalog listings. PageSize 0 disables pagination.
type ListFilter struct {
	ActiveOnly bool
	CategoryId *uuid.UUID // features only
	Search     string     // case-insensitive substring on displayName/description
	TopLevel   bool       // features only
	Page       int        // 1-based
	PageSize   int
}

func (f ListFilter) pagination() []specification.Specification {
	if f.PageSize <= 0 {
		return nil
	}
	return []specification.Specification{specification.Pagination{Page: f.Page, PageSize: f.PageSize}}
}

func validateNameKey(name string) error {
	if name == "" {
		return apperror.NewValidation("name", "name is required")
	}
	if !nameKeyPattern.MatchString(name) {
		return apperror.NewValidation("name", "name must be a lowercase-kebab machine key")
	}
	return nil
}

// --- Categories ---

func (m *Manager) CreateCategory(ctx context.Context, input CreateCategoryInput) (*entity.Category, error) {
	if err := validateNameKey(input.Name); err != nil {
		return nil, err
	}
	if input.DisplayName == "" {
		return nil, apperror.NewValidation("displayName", "displayName is required")
	}

	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.CategoryRepository().FindByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewValidation("name", "a category named '"+input.Name+"' already exists")
	}

	category := &entity.Category{
		Id:          uuid.New(),
		Name:        input.Name,
		DisplayName: input.DisplayName,
		Description: input.Description,
		Icon:        input.Icon,
		Color:       input.Color,
		Order:       input.Order,
		Priority:    input.Priority,
		IsActive:    boolOrDefault(input.IsActive, true),
		IsVisible:   boolOrDefault(input.IsVisible, true),
	}
	if err := uow.CategoryRepository().Create(ctx, category); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.logger.Info("CATALOG", "Category created", map[string]interface{}{"id": category.Id, "name": category.Name})
	m.publisher.PublishCategoryChanged(ctx, "created", category.Id, category.Name)
	return category, nil
}

func (m *Manager) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*entity.Category, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	category, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFound("category", id.String())
	}

	if input.Name != nil && *input.Name != category.Name {
		if err := validateNameKey(*input.Name); err != nil {
			return nil, err
		}
		existing, err := uow.CategoryRepository().FindByName(ctx, *input.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Id != id {
			return nil, apperror.NewValidation("name", "a category named '"+*input.Name+"' already exists")
		}
		category.Name = *input.Name
	}
	if input.DisplayName != nil {
		if *input.DisplayName == "" {
			return nil, apperror.NewValidation("displayName", "displayName is required")
		}
		category.DisplayName = *input.DisplayName
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.Icon != nil {
		category.Icon = *input.Icon
	}
	if input.Color != nil {
		category.Color = *input.Color
	}
	if input.Order != nil {
		category.Order = *input.Order
	}
	if input.Priority != nil {
		category.Priority = input.Priority
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.IsVisible != nil {
		category.IsVisible = *input.IsVisible
	}

	if err := uow.CategoryRepository().Update(ctx, category); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.publisher.PublishCategoryChanged(ctx, "updated", category.Id, category.Name)
	return category, nil
}

// DeleteCategory removes a category and its orphaned associations. Categories
// with attached features are protected; callers get the blocking count so the
// console can tell the user how many features to detach first.
func (m *Manager) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	category, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFound("category", id.String())
	}

	blocking, err := uow.FeatureRepository().CountAssociationsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if blocking > 0 {
		return apperror.NewConflict(fmt.Sprintf("%d feature(s) must be detached before deleting this category", blocking), int(blocking))
	}

	if err := uow.FeatureRepository().DeleteAssociationsByCategory(ctx, id); err != nil {
		return err
	}
	if err := uow.CategoryRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	m.logger.Info("CATALOG", "Category deleted", map[string]interface{}{"id": id, "name": category.Name})
	m.publisher.PublishCategoryChanged(ctx, "deleted", id, category.Name)
	return nil
}

func (m *Manager) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	category, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFound("category", id.String())
	}
	return category, nil
}

func (m *Manager) ListCategories(ctx context.Context, filter ListFilter) ([]*entity.Category, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.CatalogOrder{}}
	if filter.ActiveOnly {
		specs = append(specs, specification.ActiveOnly{})
	}
	if filter.Search != "" {
		specs = append(specs, specification.SearchText{Query: filter.Search})
	}
	specs = append(specs, filter.pagination()...)
	return uow.CategoryRepository().FindAll(ctx, specs...)
}

// --- Features ---

func (m *Manager) CreateFeature(ctx context.Context, input CreateFeatureInput) (*entity.Feature, error) {
	if err := validateNameKey(input.Name); err != nil {
		return nil, err
	}
	if input.DisplayName == "" {
		return nil, apperror.NewValidation("displayName", "displayName is required")
	}

	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.FeatureRepository().FindByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewValidation("name", "a feature named '"+input.Name+"' already exists")
	}

	if input.ParentId != nil {
		if err := m.validateParent(ctx, uow, *input.ParentId, uuid.Nil); err != nil {
			return nil, err
		}
	}

	feature := &entity.Feature{
		Id:                 uuid.New(),
		Name:               input.Name,
		DisplayName:        input.DisplayName,
		Description:        input.Description,
		ParentId:           input.ParentId,
		SubscriptionPlanId: input.SubscriptionPlanId,
		SortOrder:          input.SortOrder,
		IsActive:           boolOrDefault(input.IsActive, true),
		IsVisible:          boolOrDefault(input.IsVisible, true),
		IsPremium:          input.IsPremium,
		RequiresLicense:    input.RequiresLicense,
		Metadata:           input.Metadata,
		Tags:               input.Tags,
	}
	if err := uow.FeatureRepository().Create(ctx, feature); err != nil {
		return nil, err
	}

	if input.CategoryId != nil {
		category, err := uow.CategoryRepository().FindOne(ctx, specification.ByID{ID: *input.CategoryId})
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFound("category", input.CategoryId.String())
		}
		order, err := uow.FeatureRepository().NextAssociationOrder(ctx, *input.CategoryId)
		if err != nil {
			return nil, err
		}
		assoc := &entity.CategoryAssociation{
			Id:         uuid.New(),
			FeatureId:  feature.Id,
			CategoryId: *input.CategoryId,
			Order:      order,
			IsPrimary:  true,
		}
		if err := uow.FeatureRepository().CreateAssociation(ctx, assoc); err != nil {
			return nil, err
		}
		feature.Categories = []*entity.CategoryAssociation{assoc}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.logger.Info("CATALOG", "Feature created", map[string]interface{}{
		"id":   feature.Id,
		"name": feature.Name,
		"kind": feature.Kind(),
	})
	m.publisher.PublishFeatureChanged(ctx, "created", feature.Id, feature.Name)
	return feature, nil
}

func (m *Manager) UpdateFeature(ctx context.Context, id uuid.UUID, input UpdateFeatureInput) (*entity.Feature, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if feature == nil {
		return nil, apperror.NewNotFound("feature", id.String())
	}

	if input.Name != nil && *input.Name != feature.Name {
		if err := validateNameKey(*input.Name); err != nil {
			return nil, err
		}
		existing, err := uow.FeatureRepository().FindByName(ctx, *input.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Id != id {
			return nil, apperror.NewValidation("name", "a feature named '"+*input.Name+"' already exists")
		}
		feature.Name = *input.Name
	}
	if input.DisplayName != nil {
		if *input.DisplayName == "" {
			return nil, apperror.NewValidation("displayName", "displayName is required")
		}
		feature.DisplayName = *input.DisplayName
	}
	if input.Description != nil {
		feature.Description = *input.Description
	}
	if input.ClearParent {
		feature.ParentId = nil
	} else if input.ParentId != nil {
		if err := m.validateParent(ctx, uow, *input.ParentId, id); err != nil {
			return nil, err
		}
		feature.ParentId = input.ParentId
	}
	if input.SubscriptionPlanId != nil {
		feature.SubscriptionPlanId = input.SubscriptionPlanId
	}
	if input.SortOrder != nil {
		feature.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		feature.IsActive = *input.IsActive
	}
	if input.IsVisible != nil {
		feature.IsVisible = *input.IsVisible
	}
	if input.IsPremium != nil {
		feature.IsPremium = *input.IsPremium
	}
	if input.RequiresLicense != nil {
		feature.RequiresLicense = *input.RequiresLicense
	}
	if input.IsDeprecated != nil {
		feature.IsDeprecated = *input.IsDeprecated
	}
	if input.Metadata != nil {
		feature.Metadata = input.Metadata
	}
	if input.Tags != nil {
		feature.Tags = input.Tags
	}

	if err := uow.FeatureRepository().Update(ctx, feature); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.publisher.PublishFeatureChanged(ctx, "updated", feature.Id, feature.Name)
	return feature, nil
}

// DeleteFeature removes a feature together with its children, category
// associations, and tenant entitlements. The cascade is the operation's
// contract; callers confirm the blast radius before invoking.
func (m *Manager) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if feature == nil {
		return apperror.NewNotFound("feature", id.String())
	}

	if err := m.deleteFeatureTree(ctx, uow, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	m.logger.Info("CATALOG", "Feature deleted", map[string]interface{}{"id": id, "name": feature.Name})
	m.publisher.PublishFeatureChanged(ctx, "deleted", id, feature.Name)
	return nil
}

func (m *Manager) deleteFeatureTree(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) error {
	children, err := uow.FeatureRepository().FindAll(ctx, specification.ByParent{ParentID: id})
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := m.deleteFeatureTree(ctx, uow, child.Id); err != nil {
			return err
		}
	}

	if err := uow.FeatureRepository().DeleteAssociationsByFeature(ctx, id); err != nil {
		return err
	}
	if err := uow.EntitlementRepository().DeleteByFeature(ctx, id); err != nil {
		return err
	}
	return uow.FeatureRepository().Delete(ctx, id)
}

func (m *Manager) GetFeature(ctx context.Context, id uuid.UUID) (*entity.Feature, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if feature == nil {
		return nil, apperror.NewNotFound("feature", id.String())
	}
	feature.Categories, err = uow.FeatureRepository().FindAssociationsByFeature(ctx, id)
	if err != nil {
		return nil, err
	}
	feature.Children, err = uow.FeatureRepository().FindAll(ctx, specification.ByParent{ParentID: id})
	if err != nil {
		return nil, err
	}
	return feature, nil
}

// ListFeatures returns features ordered by sort order then display name, with
// associations attached (duplicates already dropped on read).
func (m *Manager) ListFeatures(ctx context.Context, filter ListFilter) ([]*entity.Feature, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	var specs []specification.Specification
	if filter.ActiveOnly {
		specs = append(specs, specification.ActiveOnly{})
	}
	if filter.CategoryId != nil {
		specs = append(specs, specification.InCategory{CategoryID: *filter.CategoryId})
	}
	if filter.Search != "" {
		specs = append(specs, specification.SearchText{Query: filter.Search})
	}
	if filter.TopLevel {
		specs = append(specs, specification.TopLevelOnly{})
	}
	specs = append(specs, filter.pagination()...)

	features, err := uow.FeatureRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	for _, feature := range features {
		feature.Categories, err = uow.FeatureRepository().FindAssociationsByFeature(ctx, feature.Id)
		if err != nil {
			return nil, err
		}
	}
	return features, nil
}

// Snapshot loads the full catalog for the resolver: all features with
// associations, children wired onto their parents.
func (m *Manager) Snapshot(ctx context.Context) ([]*entity.Feature, error) {
	features, err := m.ListFeatures(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	byId := make(map[uuid.UUID]*entity.Feature, len(features))
	for _, f := range features {
		byId[f.Id] = f
	}
	var roots []*entity.Feature
	for _, f := range features {
		if f.ParentId == nil {
			roots = append(roots, f)
			continue
		}
		if parent, ok := byId[*f.ParentId]; ok {
			parent.Children = append(parent.Children, f)
		} else {
			// Orphaned sub-feature; surface it at the top rather than drop it.
			roots = append(roots, f)
		}
	}
	return roots, nil
}

// validateParent enforces the two-level hierarchy: the parent must exist,
// must itself be top-level, and must not be the feature or one of its
// children (no cycles).
func (m *Manager) validateParent(ctx context.Context, uow unitofwork.UnitOfWork, parentId, featureId uuid.UUID) error {
	if featureId != uuid.Nil && parentId == featureId {
		return apperror.NewValidation("parentId", "a feature cannot be its own parent")
	}

	parent, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: parentId})
	if err != nil {
		return err
	}
	if parent == nil {
		return apperror.NewNotFound("feature", parentId.String())
	}
	if parent.ParentId != nil {
		return apperror.NewValidation("parentId", "sub-features cannot own children")
	}
	if featureId != uuid.Nil {
		children, err := uow.FeatureRepository().Count(ctx, specification.ByParent{ParentID: featureId})
		if err != nil {
			return err
		}
		if children > 0 {
			return apperror.NewValidation("parentId", "a feature with children cannot become a sub-feature")
		}
	}
	return nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
