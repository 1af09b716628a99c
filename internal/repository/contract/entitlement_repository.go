// FILE: internal/repository/contract/entitlement_repository.go
// Repository interface for tenant entitlements
package contract

import (
	"context"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EntitlementRepository interface {
	Create(ctx context.Context, entitlement *entity.TenantEntitlement) error
	Update(ctx context.Context, entitlement *entity.TenantEntitlement) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TenantEntitlement, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TenantEntitlement, error)
	FindByTenantAndFeature(ctx context.Context, tenantId, featureId uuid.UUID) (*entity.TenantEntitlement, error)
	// DeleteByFeature is only reached through the explicit feature-delete
	// cascade; toggles never remove records.
	DeleteByFeature(ctx context.Context, featureId uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
