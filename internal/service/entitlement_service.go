// FILE: internal/service/entitlement_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"blicktrack-entitlement-be/internal/dto"
	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/repository/specification"
	"blicktrack-entitlement-be/internal/repository/unitofwork"
	"blicktrack-entitlement-be/pkg/billing"
	"blicktrack-entitlement-be/pkg/engine/catalog"
	"blicktrack-entitlement-be/pkg/engine/entitlement"
	"blicktrack-entitlement-be/pkg/engine/resolver"
	"blicktrack-entitlement-be/pkg/identity"

	"github.com/google/uuid"
)

type IEntitlementService interface {
	GetEntitlement(ctx context.Context, tenantId, featureId uuid.UUID) (*dto.EntitlementResponse, error)
	ListForTenant(ctx context.Context, tenantId uuid.UUID) ([]*dto.EntitlementResponse, error)
	SetEnabled(ctx context.Context, tenantId, featureId uuid.UUID, req *dto.SetEnabledRequest) (*dto.EntitlementResponse, error)
	RecordUsage(ctx context.Context, tenantId, featureId uuid.UUID) (*dto.EntitlementResponse, error)
	ExpireTrials(ctx context.Context, now time.Time) (*dto.SweepResponse, error)
	ResolveForTenant(ctx context.Context, tenantId uuid.UUID) (*dto.ResolveResponse, error)
}

type entitlementService struct {
	manager          *entitlement.Manager
	sweeper          *entitlement.Sweeper
	catalogManager   *catalog.Manager
	plans            billing.PlanProvider
	actors           identity.Provider
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewEntitlementService(
	manager *entitlement.Manager,
	sweeper *entitlement.Sweeper,
	catalogManager *catalog.Manager,
	plans billing.PlanProvider,
	actors identity.Provider,
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IEntitlementService {
	return &entitlementService{
		manager:          manager,
		sweeper:          sweeper,
		catalogManager:   catalogManager,
		plans:            plans,
		actors:           actors,
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (c *entitlementService) invalidate(ctx context.Context, tenantId uuid.UUID) {
	msg := dto.CacheInvalidationMessage{Collection: "entitlements", TenantId: tenantId.String(), At: time.Now()}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = c.publisherService.Publish(ctx, payload)
}

func (c *entitlementService) GetEntitlement(ctx context.Context, tenantId, featureId uuid.UUID) (*dto.EntitlementResponse, error) {
	record, err := c.manager.GetEntitlement(ctx, tenantId, featureId)
	if err != nil {
		return nil, err
	}
	return entitlementToResponse(record), nil
}

func (c *entitlementService) ListForTenant(ctx context.Context, tenantId uuid.UUID) ([]*dto.EntitlementResponse, error) {
	records, err := c.manager.ListForTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	result := make([]*dto.EntitlementResponse, 0, len(records))
	for _, record := range records {
		result = append(result, entitlementToResponse(record))
	}
	return result, nil
}

func (c *entitlementService) SetEnabled(ctx context.Context, tenantId, featureId uuid.UUID, req *dto.SetEnabledRequest) (*dto.EntitlementResponse, error) {
	actorId, err := c.actors.CurrentActorID(ctx)
	if err != nil {
		return nil, err
	}

	record, err := c.manager.SetEnabled(ctx, tenantId, featureId, *req.Enabled, actorId, req.Reason)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, tenantId)
	return entitlementToResponse(record), nil
}

func (c *entitlementService) RecordUsage(ctx context.Context, tenantId, featureId uuid.UUID) (*dto.EntitlementResponse, error) {
	record, err := c.manager.RecordUsage(ctx, tenantId, featureId)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, tenantId)
	return entitlementToResponse(record), nil
}

func (c *entitlementService) ExpireTrials(ctx context.Context, now time.Time) (*dto.SweepResponse, error) {
	result, err := c.sweeper.ExpireTrials(ctx, now)
	if err != nil {
		return nil, err
	}
	if result.Expired > 0 {
		c.invalidate(ctx, uuid.Nil)
	}
	return &dto.SweepResponse{
		Scanned:  result.Scanned,
		Expired:  result.Expired,
		Disabled: result.Disabled,
	}, nil
}

// ResolveForTenant assembles the catalog, entitlement, and plan snapshots and
// hands them to the pure resolver.
func (c *entitlementService) ResolveForTenant(ctx context.Context, tenantId uuid.UUID) (*dto.ResolveResponse, error) {
	roots, err := c.catalogManager.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	records, err := c.manager.ListForTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}

	tier, err := c.plans.GetTenantPlanTier(ctx, tenantId)
	if err != nil {
		return nil, err
	}

	planTiers, err := c.loadPlanTiers(ctx, roots)
	if err != nil {
		return nil, err
	}

	tree := resolver.Resolve(resolver.Input{
		TenantId:       tenantId,
		Catalog:        roots,
		Entitlements:   records,
		TenantPlanTier: tier,
		PlanTiers:      planTiers,
		Now:            time.Now(),
	})
	return resolveTreeToResponse(tree), nil
}

// loadPlanTiers fetches the tier of every plan the catalog gates on, in one
// query.
func (c *entitlementService) loadPlanTiers(ctx context.Context, roots []*entity.Feature) (map[uuid.UUID]int, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	var collect func(features []*entity.Feature)
	collect = func(features []*entity.Feature) {
		for _, f := range features {
			if f.SubscriptionPlanId != nil && !seen[*f.SubscriptionPlanId] {
				seen[*f.SubscriptionPlanId] = true
				ids = append(ids, *f.SubscriptionPlanId)
			}
			collect(f.Children)
		}
	}
	collect(roots)

	tiers := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return tiers, nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	plans, err := uow.PlanRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, plan := range plans {
		tiers[plan.Id] = plan.Tier
	}
	return tiers, nil
}

// --- Mapping helpers ---

func entitlementToResponse(record *entity.TenantEntitlement) *dto.EntitlementResponse {
	res := &dto.EntitlementResponse{
		TenantId:         record.TenantId,
		FeatureId:        record.FeatureId,
		IsEnabled:        record.IsEnabled,
		IsActive:         record.IsActive,
		IsTrial:          record.IsTrial,
		EnabledAt:        record.EnabledAt,
		DisabledAt:       record.DisabledAt,
		TrialExpiresAt:   record.TrialExpiresAt,
		UsageCount:       record.UsageCount,
		LastUsedAt:       record.LastUsedAt,
		AssignedBy:       record.AssignedBy,
		AssignedAt:       record.AssignedAt,
		AssignmentReason: record.AssignmentReason,
	}
	if !record.IsSynthesized() {
		id := record.Id
		res.Id = &id
	}
	return res
}

func resolveTreeToResponse(tree *resolver.ResolvedFeatureTree) *dto.ResolveResponse {
	res := &dto.ResolveResponse{
		TenantId:       tree.TenantId,
		PlanTier:       tree.PlanTier,
		Features:       make([]*dto.ResolvedFeatureResponse, 0, len(tree.Features)),
		CategoryCounts: make(map[string]int, len(tree.CategoryCounts)),
	}
	for _, node := range tree.Features {
		res.Features = append(res.Features, resolvedNodeToResponse(node))
	}
	for categoryId, count := range tree.CategoryCounts {
		res.CategoryCounts[categoryId.String()] = count
	}
	return res
}

func resolvedNodeToResponse(node *resolver.ResolvedFeature) *dto.ResolvedFeatureResponse {
	res := &dto.ResolvedFeatureResponse{
		Id:               node.Feature.Id,
		Name:             node.Feature.Name,
		DisplayName:      node.Feature.DisplayName,
		Kind:             string(node.Feature.Kind()),
		EffectiveEnabled: node.EffectiveEnabled,
		TrialExpired:     node.TrialExpired,
		PlanGated:        node.PlanGated,
		Entitlement:      entitlementToResponse(node.Entitlement),
	}
	for _, child := range node.Children {
		res.Children = append(res.Children, resolvedNodeToResponse(child))
	}
	return res
}
