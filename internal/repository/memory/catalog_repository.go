// FILE: internal/repository/memory/catalog_repository.go
// In-memory implementations of the catalog repositories. Used by unit tests
// and by the simulation tooling; they interpret the same specifications the
// GORM implementations receive.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/repository/contract"
	"blicktrack-entitlement-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CategoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{items: make(map[uuid.UUID]*entity.Category)}
}

var _ contract.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if category.Id == uuid.Nil {
		category.Id = uuid.New()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	cp := *category
	r.items[category.Id] = &cp
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.UpdatedAt = time.Now()
	cp := *category
	r.items[category.Id] = &cp
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *CategoryRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if matchCategory(c, specs) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Category, 0, len(r.items))
	for _, c := range r.items {
		if matchCategory(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return paginate(out, specs), nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	return r.FindOne(ctx, specification.ByName{Name: name})
}

func (r *CategoryRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func matchCategory(c *entity.Category, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			if c.Id != v.ID {
				return false
			}
		case specification.ByName:
			if c.Name != v.Name {
				return false
			}
		case specification.ActiveOnly:
			if !c.IsActive {
				return false
			}
		case specification.VisibleOnly:
			if !c.IsVisible {
				return false
			}
		case specification.SearchText:
			if !containsFold(c.DisplayName, v.Query) && !containsFold(c.Description, v.Query) {
				return false
			}
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// paginate applies a Pagination spec after sorting, mirroring the SQL
// LIMIT/OFFSET the GORM implementations produce.
func paginate[T any](items []T, specs []specification.Specification) []T {
	for _, s := range specs {
		p, ok := s.(specification.Pagination)
		if !ok || p.PageSize <= 0 {
			continue
		}
		page := p.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * p.PageSize
		if start >= len(items) {
			return items[:0]
		}
		end := start + p.PageSize
		if end > len(items) {
			end = len(items)
		}
		return items[start:end]
	}
	return items
}

type FeatureRepository struct {
	mu     sync.RWMutex
	items  map[uuid.UUID]*entity.Feature
	assocs []*entity.CategoryAssociation
}

func NewFeatureRepository() *FeatureRepository {
	return &FeatureRepository{items: make(map[uuid.UUID]*entity.Feature)}
}

var _ contract.FeatureRepository = (*FeatureRepository)(nil)

func (r *FeatureRepository) Create(ctx context.Context, feature *entity.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if feature.Id == uuid.Nil {
		feature.Id = uuid.New()
	}
	now := time.Now()
	feature.CreatedAt = now
	feature.UpdatedAt = now
	cp := *feature
	cp.Children = nil
	cp.Categories = nil
	r.items[feature.Id] = &cp
	return nil
}

func (r *FeatureRepository) Update(ctx context.Context, feature *entity.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	feature.UpdatedAt = time.Now()
	cp := *feature
	cp.Children = nil
	cp.Categories = nil
	r.items[feature.Id] = &cp
	return nil
}

func (r *FeatureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *FeatureRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.items {
		if r.matchFeature(f, specs) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FeatureRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Feature, 0, len(r.items))
	for _, f := range r.items {
		if r.matchFeature(f, specs) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return paginate(out, specs), nil
}

func (r *FeatureRepository) FindByName(ctx context.Context, name string) (*entity.Feature, error) {
	return r.FindOne(ctx, specification.ByName{Name: name})
}

func (r *FeatureRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *FeatureRepository) matchFeature(f *entity.Feature, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			if f.Id != v.ID {
				return false
			}
		case specification.ByName:
			if f.Name != v.Name {
				return false
			}
		case specification.ActiveOnly:
			if !f.IsActive {
				return false
			}
		case specification.VisibleOnly:
			if !f.IsVisible {
				return false
			}
		case specification.TopLevelOnly:
			if f.ParentId != nil {
				return false
			}
		case specification.ByParent:
			if f.ParentId == nil || *f.ParentId != v.ParentID {
				return false
			}
		case specification.SearchText:
			if !containsFold(f.DisplayName, v.Query) && !containsFold(f.Description, v.Query) {
				return false
			}
		case specification.InCategory:
			found := false
			for _, a := range r.assocs {
				if a.FeatureId == f.Id && a.CategoryId == v.CategoryID {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func (r *FeatureRepository) CreateAssociation(ctx context.Context, assoc *entity.CategoryAssociation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if assoc.Id == uuid.Nil {
		assoc.Id = uuid.New()
	}
	assoc.CreatedAt = time.Now()
	cp := *assoc
	cp.Category = nil
	r.assocs = append(r.assocs, &cp)
	return nil
}

func (r *FeatureRepository) DeleteAssociationsByFeature(ctx context.Context, featureId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.assocs[:0]
	for _, a := range r.assocs {
		if a.FeatureId != featureId {
			kept = append(kept, a)
		}
	}
	r.assocs = kept
	return nil
}

func (r *FeatureRepository) DeleteAssociationsByCategory(ctx context.Context, categoryId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.assocs[:0]
	for _, a := range r.assocs {
		if a.CategoryId != categoryId {
			kept = append(kept, a)
		}
	}
	r.assocs = kept
	return nil
}

func (r *FeatureRepository) FindAssociationsByFeature(ctx context.Context, featureId uuid.UUID) ([]*entity.CategoryAssociation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[uuid.UUID]bool)
	out := make([]*entity.CategoryAssociation, 0)
	for _, a := range r.assocs {
		if a.FeatureId != featureId || seen[a.CategoryId] {
			continue
		}
		seen[a.CategoryId] = true
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *FeatureRepository) CountAssociationsByCategory(ctx context.Context, categoryId uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, a := range r.assocs {
		if a.CategoryId == categoryId {
			count++
		}
	}
	return count, nil
}

func (r *FeatureRepository) NextAssociationOrder(ctx context.Context, categoryId uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	next := 0
	for _, a := range r.assocs {
		if a.CategoryId == categoryId && a.Order >= next {
			next = a.Order + 1
		}
	}
	return next, nil
}
