// FILE: internal/repository/contract/plan_repository.go
// Read-only repository interfaces for billing reference data
package contract

import (
	"context"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/repository/specification"
)

// PlanRepository reads the subscription_plans reference table. The billing
// service owns writes; the engine never mutates plans.
type PlanRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPlan, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPlan, error)
}

type TenantRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tenant, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tenant, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
