// FILE: pkg/clientcache/client.go
// Session-scoped cache over the catalog/tenant/entitlement services.
package clientcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"blicktrack-entitlement-be/internal/dto"
	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/service"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const DefaultTTL = 30 * time.Second

var errNoTenantSelected = apperror.NewValidation("tenant_id", "no tenant selected")

// Client owns one cache instance per collection for a single logical admin
// session. It is explicitly instantiated rather than shared process-wide, so
// two sessions never see each other's optimistic state.
type Client struct {
	Categories   *Collection[*dto.CategoryResponse]
	Features     *Collection[*dto.FeatureResponse]
	Tenants      *Collection[*dto.TenantResponse]
	Entitlements *Collection[*dto.EntitlementResponse]

	categoryWrites    *Reconciler[*dto.CategoryResponse]
	featureWrites     *Reconciler[*dto.FeatureResponse]
	entitlementWrites *Reconciler[*dto.EntitlementResponse]

	catalogSvc     service.ICatalogService
	entitlementSvc service.IEntitlementService

	mu             sync.RWMutex
	selectedTenant uuid.UUID

	logger logger.ILogger
}

func NewClient(
	catalogSvc service.ICatalogService,
	tenantSvc service.ITenantService,
	entitlementSvc service.IEntitlementService,
	ttl time.Duration,
	log logger.ILogger,
) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	freshness := gocache.New(ttl, time.Minute)

	c := &Client{
		catalogSvc:     catalogSvc,
		entitlementSvc: entitlementSvc,
		logger:         log,
	}

	c.Categories = NewCollection("categories", ttl, freshness, func(ctx context.Context) ([]*dto.CategoryResponse, error) {
		return catalogSvc.ListCategories(ctx, &dto.CatalogListQuery{})
	}, log)
	c.Features = NewCollection("features", ttl, freshness, func(ctx context.Context) ([]*dto.FeatureResponse, error) {
		return catalogSvc.ListFeatures(ctx, &dto.CatalogListQuery{TopLevel: true})
	}, log)
	c.Tenants = NewCollection("tenants", ttl, freshness, func(ctx context.Context) ([]*dto.TenantResponse, error) {
		return tenantSvc.GetAll(ctx)
	}, log)
	c.Entitlements = NewCollection("entitlements", ttl, freshness, func(ctx context.Context) ([]*dto.EntitlementResponse, error) {
		tenantId := c.SelectedTenant()
		if tenantId == uuid.Nil {
			return []*dto.EntitlementResponse{}, nil
		}
		return entitlementSvc.ListForTenant(ctx, tenantId)
	}, log)

	c.categoryWrites = NewReconciler(c.Categories, log)
	c.featureWrites = NewReconciler(c.Features, log)
	c.entitlementWrites = NewReconciler(c.Entitlements, log)

	return c
}

// SelectTenant switches the session's tenant focus. The entitlement
// collection is reset, not just invalidated, because its contents belong to
// the previous tenant.
func (c *Client) SelectTenant(tenantId uuid.UUID) {
	c.mu.Lock()
	changed := c.selectedTenant != tenantId
	c.selectedTenant = tenantId
	c.mu.Unlock()
	if changed {
		c.Entitlements.Reset()
	}
}

func (c *Client) SelectedTenant() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedTenant
}

// ListenInvalidations consumes the in-process invalidation topic and marks
// the named collection stale. Entitlement invalidations for other tenants are
// ignored. Blocks until ctx is cancelled or the subscription closes.
func (c *Client) ListenInvalidations(ctx context.Context, subscriber message.Subscriber, topic string) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return err
	}
	for msg := range messages {
		var payload dto.CacheInvalidationMessage
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.logger.Warn("clientcache", "Dropping malformed invalidation message", map[string]interface{}{
				"error": err.Error(),
			})
			msg.Ack()
			continue
		}
		c.handleInvalidation(payload)
		msg.Ack()
	}
	return nil
}

func (c *Client) handleInvalidation(payload dto.CacheInvalidationMessage) {
	switch payload.Collection {
	case "categories":
		c.Categories.Invalidate()
	case "features":
		c.Features.Invalidate()
	case "tenants":
		c.Tenants.Invalidate()
	case "entitlements":
		if payload.TenantId == "" || payload.TenantId == c.SelectedTenant().String() {
			c.Entitlements.Invalidate()
		}
	default:
		c.logger.Warn("clientcache", "Unknown invalidation collection", map[string]interface{}{
			"collection": payload.Collection,
		})
	}
}

// --- Category writes ---

func (c *Client) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	tempId := uuid.New()
	optimistic := &dto.CategoryResponse{
		Id:          tempId,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Order:       req.Order,
		Priority:    req.Priority,
		IsActive:    req.IsActive == nil || *req.IsActive,
		IsVisible:   req.IsVisible == nil || *req.IsVisible,
	}
	return c.categoryWrites.Do(ctx, Mutation[*dto.CategoryResponse]{
		Name: "create_category",
		Apply: func(snapshot []*dto.CategoryResponse) []*dto.CategoryResponse {
			return append(snapshot, optimistic)
		},
		Execute: func(ctx context.Context) (*dto.CategoryResponse, error) {
			return c.catalogSvc.CreateCategory(ctx, req)
		},
		Reconcile: func(snapshot []*dto.CategoryResponse, server *dto.CategoryResponse) []*dto.CategoryResponse {
			return replaceById(snapshot, tempId, server, func(r *dto.CategoryResponse) uuid.UUID { return r.Id })
		},
	})
}

func (c *Client) UpdateCategory(ctx context.Context, id uuid.UUID, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	return c.categoryWrites.Do(ctx, Mutation[*dto.CategoryResponse]{
		Name: "update_category",
		Apply: func(snapshot []*dto.CategoryResponse) []*dto.CategoryResponse {
			for _, item := range snapshot {
				if item.Id != id {
					continue
				}
				if req.Name != nil {
					item.Name = *req.Name
				}
				if req.DisplayName != nil {
					item.DisplayName = *req.DisplayName
				}
				if req.Description != nil {
					item.Description = *req.Description
				}
				if req.IsActive != nil {
					item.IsActive = *req.IsActive
				}
				if req.IsVisible != nil {
					item.IsVisible = *req.IsVisible
				}
				if req.Order != nil {
					item.Order = *req.Order
				}
			}
			return snapshot
		},
		Execute: func(ctx context.Context) (*dto.CategoryResponse, error) {
			return c.catalogSvc.UpdateCategory(ctx, id, req)
		},
		Reconcile: func(snapshot []*dto.CategoryResponse, server *dto.CategoryResponse) []*dto.CategoryResponse {
			return replaceById(snapshot, id, server, func(r *dto.CategoryResponse) uuid.UUID { return r.Id })
		},
	})
}

func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	_, err := c.categoryWrites.Do(ctx, Mutation[*dto.CategoryResponse]{
		Name: "delete_category",
		Apply: func(snapshot []*dto.CategoryResponse) []*dto.CategoryResponse {
			return removeById(snapshot, id, func(r *dto.CategoryResponse) uuid.UUID { return r.Id })
		},
		Execute: func(ctx context.Context) (*dto.CategoryResponse, error) {
			return nil, c.catalogSvc.DeleteCategory(ctx, id)
		},
	})
	return err
}

// --- Feature writes ---

func (c *Client) CreateFeature(ctx context.Context, req *dto.CreateFeatureRequest) (*dto.FeatureResponse, error) {
	tempId := uuid.New()
	optimistic := &dto.FeatureResponse{
		Id:                 tempId,
		Name:               req.Name,
		DisplayName:        req.DisplayName,
		Description:        req.Description,
		ParentId:           req.ParentId,
		SubscriptionPlanId: req.SubscriptionPlanId,
		IsActive:           req.IsActive == nil || *req.IsActive,
		IsVisible:          req.IsVisible == nil || *req.IsVisible,
		IsPremium:          req.IsPremium,
		RequiresLicense:    req.RequiresLicense,
	}
	if req.ParentId != nil {
		optimistic.Kind = "sub-feature"
		optimistic.Level = 2
	} else {
		optimistic.Kind = "top-level"
		optimistic.Level = 1
	}
	return c.featureWrites.Do(ctx, Mutation[*dto.FeatureResponse]{
		Name: "create_feature",
		Apply: func(snapshot []*dto.FeatureResponse) []*dto.FeatureResponse {
			if req.ParentId != nil {
				for _, item := range snapshot {
					if item.Id == *req.ParentId {
						item.Children = append(item.Children, optimistic)
					}
				}
				return snapshot
			}
			return append(snapshot, optimistic)
		},
		Execute: func(ctx context.Context) (*dto.FeatureResponse, error) {
			return c.catalogSvc.CreateFeature(ctx, req)
		},
		Reconcile: func(snapshot []*dto.FeatureResponse, server *dto.FeatureResponse) []*dto.FeatureResponse {
			if req.ParentId != nil {
				for _, item := range snapshot {
					if item.Id == *req.ParentId {
						item.Children = replaceById(item.Children, tempId, server, func(r *dto.FeatureResponse) uuid.UUID { return r.Id })
					}
				}
				return snapshot
			}
			return replaceById(snapshot, tempId, server, func(r *dto.FeatureResponse) uuid.UUID { return r.Id })
		},
	})
}

func (c *Client) UpdateFeature(ctx context.Context, id uuid.UUID, req *dto.UpdateFeatureRequest) (*dto.FeatureResponse, error) {
	return c.featureWrites.Do(ctx, Mutation[*dto.FeatureResponse]{
		Name: "update_feature",
		Apply: func(snapshot []*dto.FeatureResponse) []*dto.FeatureResponse {
			applyFeatureUpdate(snapshot, id, req)
			return snapshot
		},
		Execute: func(ctx context.Context) (*dto.FeatureResponse, error) {
			return c.catalogSvc.UpdateFeature(ctx, id, req)
		},
		Reconcile: func(snapshot []*dto.FeatureResponse, server *dto.FeatureResponse) []*dto.FeatureResponse {
			// Reparenting moves nodes between subtrees; a targeted merge
			// cannot express that, so fall back to replace-in-place and let
			// the next refresh true up tree shape.
			replaceInTree(snapshot, id, server)
			return snapshot
		},
	})
}

func (c *Client) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	_, err := c.featureWrites.Do(ctx, Mutation[*dto.FeatureResponse]{
		Name: "delete_feature",
		Apply: func(snapshot []*dto.FeatureResponse) []*dto.FeatureResponse {
			snapshot = removeById(snapshot, id, func(r *dto.FeatureResponse) uuid.UUID { return r.Id })
			for _, item := range snapshot {
				item.Children = removeById(item.Children, id, func(r *dto.FeatureResponse) uuid.UUID { return r.Id })
			}
			return snapshot
		},
		Execute: func(ctx context.Context) (*dto.FeatureResponse, error) {
			return nil, c.catalogSvc.DeleteFeature(ctx, id)
		},
	})
	if err == nil {
		// Cascade also removed the feature's entitlements server-side.
		c.Entitlements.Invalidate()
	}
	return err
}

// --- Entitlement writes ---

func (c *Client) SetEnabled(ctx context.Context, featureId uuid.UUID, req *dto.SetEnabledRequest) (*dto.EntitlementResponse, error) {
	tenantId := c.SelectedTenant()
	if tenantId == uuid.Nil {
		return nil, errNoTenantSelected
	}
	enabled := req.Enabled != nil && *req.Enabled
	return c.entitlementWrites.Do(ctx, Mutation[*dto.EntitlementResponse]{
		Name: "set_enabled",
		Apply: func(snapshot []*dto.EntitlementResponse) []*dto.EntitlementResponse {
			for _, item := range snapshot {
				if item.FeatureId == featureId {
					item.IsEnabled = enabled
					return snapshot
				}
			}
			return append(snapshot, &dto.EntitlementResponse{
				TenantId:  tenantId,
				FeatureId: featureId,
				IsEnabled: enabled,
				IsActive:  true,
			})
		},
		Execute: func(ctx context.Context) (*dto.EntitlementResponse, error) {
			return c.entitlementSvc.SetEnabled(ctx, tenantId, featureId, req)
		},
		Reconcile: func(snapshot []*dto.EntitlementResponse, server *dto.EntitlementResponse) []*dto.EntitlementResponse {
			for i, item := range snapshot {
				if item.FeatureId == featureId {
					snapshot[i] = server
					return snapshot
				}
			}
			return append(snapshot, server)
		},
	})
}

// --- helpers ---

func replaceById[T any](snapshot []T, id uuid.UUID, server T, idOf func(T) uuid.UUID) []T {
	for i, item := range snapshot {
		if idOf(item) == id {
			snapshot[i] = server
			return snapshot
		}
	}
	return append(snapshot, server)
}

func removeById[T any](snapshot []T, id uuid.UUID, idOf func(T) uuid.UUID) []T {
	out := snapshot[:0]
	for _, item := range snapshot {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

func applyFeatureUpdate(snapshot []*dto.FeatureResponse, id uuid.UUID, req *dto.UpdateFeatureRequest) {
	for _, item := range snapshot {
		if item.Id == id {
			if req.Name != nil {
				item.Name = *req.Name
			}
			if req.DisplayName != nil {
				item.DisplayName = *req.DisplayName
			}
			if req.Description != nil {
				item.Description = *req.Description
			}
			if req.IsActive != nil {
				item.IsActive = *req.IsActive
			}
			if req.IsVisible != nil {
				item.IsVisible = *req.IsVisible
			}
			if req.IsPremium != nil {
				item.IsPremium = *req.IsPremium
			}
		}
		applyFeatureUpdate(item.Children, id, req)
	}
}

func replaceInTree(snapshot []*dto.FeatureResponse, id uuid.UUID, server *dto.FeatureResponse) {
	for i, item := range snapshot {
		if item.Id == id {
			snapshot[i] = server
			return
		}
		replaceInTree(item.Children, id, server)
	}
}
