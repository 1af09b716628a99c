package unitofwork

import (
	"context"

	"blicktrack-entitlement-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CategoryRepository() contract.CategoryRepository
	FeatureRepository() contract.FeatureRepository
	EntitlementRepository() contract.EntitlementRepository
	PlanRepository() contract.PlanRepository
	TenantRepository() contract.TenantRepository
}
