// FILE: internal/repository/memory/entitlement_repository.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/repository/contract"
	"blicktrack-entitlement-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EntitlementRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.TenantEntitlement
}

func NewEntitlementRepository() *EntitlementRepository {
	return &EntitlementRepository{items: make(map[uuid.UUID]*entity.TenantEntitlement)}
}

var _ contract.EntitlementRepository = (*EntitlementRepository)(nil)

func (r *EntitlementRepository) Create(ctx context.Context, entitlement *entity.TenantEntitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entitlement.Id == uuid.Nil {
		entitlement.Id = uuid.New()
	}
	now := time.Now()
	entitlement.CreatedAt = now
	entitlement.UpdatedAt = now
	cp := *entitlement
	r.items[entitlement.Id] = &cp
	return nil
}

func (r *EntitlementRepository) Update(ctx context.Context, entitlement *entity.TenantEntitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entitlement.UpdatedAt = time.Now()
	cp := *entitlement
	r.items[entitlement.Id] = &cp
	return nil
}

func (r *EntitlementRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TenantEntitlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.items {
		if matchEntitlement(e, specs) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *EntitlementRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TenantEntitlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.TenantEntitlement, 0)
	for _, e := range r.items {
		if matchEntitlement(e, specs) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *EntitlementRepository) FindByTenantAndFeature(ctx context.Context, tenantId, featureId uuid.UUID) (*entity.TenantEntitlement, error) {
	return r.FindOne(ctx,
		specification.ByTenant{TenantID: tenantId},
		specification.ByFeature{FeatureID: featureId},
	)
}

func (r *EntitlementRepository) DeleteByFeature(ctx context.Context, featureId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.items {
		if e.FeatureId == featureId {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *EntitlementRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func matchEntitlement(e *entity.TenantEntitlement, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			if e.Id != v.ID {
				return false
			}
		case specification.ByTenant:
			if e.TenantId != v.TenantID {
				return false
			}
		case specification.ByFeature:
			if e.FeatureId != v.FeatureID {
				return false
			}
		case specification.ByFeatures:
			found := false
			for _, id := range v.FeatureIDs {
				if e.FeatureId == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.TrialExpiredBy:
			if !e.IsTrial || e.TrialExpiresAt == nil || e.TrialExpiresAt.After(v.Now) {
				return false
			}
		case specification.EnabledOnly:
			if !e.IsEnabled {
				return false
			}
		}
	}
	return true
}
