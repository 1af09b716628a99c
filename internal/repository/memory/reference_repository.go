// FILE: internal/repository/memory/reference_repository.go
// In-memory plan/tenant reference data plus a memory-backed unit of work.
package memory

import (
	"context"
	"sort"
	"sync"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/repository/contract"
	"blicktrack-entitlement-be/internal/repository/specification"
	"blicktrack-entitlement-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type PlanRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.SubscriptionPlan
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{items: make(map[uuid.UUID]*entity.SubscriptionPlan)}
}

var _ contract.PlanRepository = (*PlanRepository)(nil)

// Put seeds reference data; the contract itself is read-only.
func (r *PlanRepository) Put(plan *entity.SubscriptionPlan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *plan
	r.items[plan.Id] = &cp
}

func (r *PlanRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if matchPlan(p, specs) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *PlanRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.SubscriptionPlan, 0, len(r.items))
	for _, p := range r.items {
		if matchPlan(p, specs) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out, nil
}

func matchPlan(p *entity.SubscriptionPlan, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			if p.Id != v.ID {
				return false
			}
		case specification.ActiveOnly:
			if !p.IsActive {
				return false
			}
		}
	}
	return true
}

type TenantRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.Tenant
}

func NewTenantRepository() *TenantRepository {
	return &TenantRepository{items: make(map[uuid.UUID]*entity.Tenant)}
}

var _ contract.TenantRepository = (*TenantRepository)(nil)

func (r *TenantRepository) Put(tenant *entity.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tenant
	r.items[tenant.Id] = &cp
}

func (r *TenantRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.items {
		if matchTenant(t, specs) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *TenantRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Tenant, 0, len(r.items))
	for _, t := range r.items {
		if matchTenant(t, specs) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TenantRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func matchTenant(t *entity.Tenant, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			if t.Id != v.ID {
				return false
			}
		case specification.ActiveOnly:
			if !t.IsActive {
				return false
			}
		}
	}
	return true
}

// UnitOfWork binds the memory repositories behind the unitofwork contract.
// Begin/Commit/Rollback are no-ops: there is no transaction to manage.
type UnitOfWork struct {
	Categories   *CategoryRepository
	Features     *FeatureRepository
	Entitlements *EntitlementRepository
	Plans        *PlanRepository
	Tenants      *TenantRepository
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		Categories:   NewCategoryRepository(),
		Features:     NewFeatureRepository(),
		Entitlements: NewEntitlementRepository(),
		Plans:        NewPlanRepository(),
		Tenants:      NewTenantRepository(),
	}
}

var _ unitofwork.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *UnitOfWork) Commit() error                   { return nil }
func (u *UnitOfWork) Rollback() error                 { return nil }

func (u *UnitOfWork) CategoryRepository() contract.CategoryRepository {
	return u.Categories
}

func (u *UnitOfWork) FeatureRepository() contract.FeatureRepository {
	return u.Features
}

func (u *UnitOfWork) EntitlementRepository() contract.EntitlementRepository {
	return u.Entitlements
}

func (u *UnitOfWork) PlanRepository() contract.PlanRepository {
	return u.Plans
}

func (u *UnitOfWork) TenantRepository() contract.TenantRepository {
	return u.Tenants
}

// Factory returns the same unit of work for every request, which is what
// tests want: one shared in-memory store.
type Factory struct {
	UoW *UnitOfWork
}

func NewFactory() *Factory {
	return &Factory{UoW: NewUnitOfWork()}
}

var _ unitofwork.RepositoryFactory = (*Factory)(nil)

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.UoW
}
