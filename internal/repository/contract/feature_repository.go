// FILE: internal/repository/contract/feature_repository.go
// Repository interface for the feature catalog
package contract

import (
	"context"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FeatureRepository interface {
	Create(ctx context.Context, feature *entity.Feature) error
	Update(ctx context.Context, feature *entity.Feature) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error)
	FindByName(ctx context.Context, name string) (*entity.Feature, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Category associations
	CreateAssociation(ctx context.Context, assoc *entity.CategoryAssociation) error
	DeleteAssociationsByFeature(ctx context.Context, featureId uuid.UUID) error
	DeleteAssociationsByCategory(ctx context.Context, categoryId uuid.UUID) error
	FindAssociationsByFeature(ctx context.Context, featureId uuid.UUID) ([]*entity.CategoryAssociation, error)
	CountAssociationsByCategory(ctx context.Context, categoryId uuid.UUID) (int64, error)
	NextAssociationOrder(ctx context.Context, categoryId uuid.UUID) (int, error)
}
