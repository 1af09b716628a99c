// FILE: pkg/engine/resolver/resolver.go
// Pure computation of effective per-tenant access state. No I/O: callers
// gather the catalog, entitlement, and plan snapshots and hand them in.
package resolver

import (
	"time"

	"blicktrack-entitlement-be/internal/entity"

	"github.com/google/uuid"
)

// Input is everything Resolve needs: a catalog snapshot (top-level features
// with children attached), the tenant's persisted entitlements, and the plan
// data for tier gating.
type Input struct {
	TenantId       uuid.UUID
	Catalog        []*entity.Feature
	Entitlements   []*entity.TenantEntitlement
	TenantPlanTier int
	PlanTiers      map[uuid.UUID]int // planId -> tier; missing plan = no gate
	Now            time.Time         // zero = time-insensitive resolution
}

// ResolvedFeature is one node of the effective-access tree.
type ResolvedFeature struct {
	Feature          *entity.Feature
	Entitlement      *entity.TenantEntitlement // synthesized default when no record exists
	EffectiveEnabled bool
	TrialExpired     bool
	PlanGated        bool // tenant tier below the feature's required tier
	Children         []*ResolvedFeature
}

// ResolvedFeatureTree is the full effective view for one tenant. A feature
// with several category associations appears under every one of them in
// ByCategory; category counts use only the primary (home) association so a
// feature is counted once.
type ResolvedFeatureTree struct {
	TenantId       uuid.UUID
	PlanTier       int
	Features       []*ResolvedFeature
	ByCategory     map[uuid.UUID][]*ResolvedFeature
	CategoryCounts map[uuid.UUID]int
}

// Resolve merges catalog defaults with entitlement overrides and plan gating.
// A disabled parent does not force its children disabled here; children keep
// their own entitlement state and the caller decides whether to hide them.
func Resolve(in Input) *ResolvedFeatureTree {
	byPair := make(map[uuid.UUID]*entity.TenantEntitlement, len(in.Entitlements))
	for _, e := range in.Entitlements {
		byPair[e.FeatureId] = e
	}

	tree := &ResolvedFeatureTree{
		TenantId:       in.TenantId,
		PlanTier:       in.TenantPlanTier,
		ByCategory:     make(map[uuid.UUID][]*ResolvedFeature),
		CategoryCounts: make(map[uuid.UUID]int),
	}

	for _, feature := range in.Catalog {
		tree.Features = append(tree.Features, resolveNode(feature, byPair, in, tree))
	}
	return tree
}

func resolveNode(feature *entity.Feature, byPair map[uuid.UUID]*entity.TenantEntitlement, in Input, tree *ResolvedFeatureTree) *ResolvedFeature {
	record := byPair[feature.Id]
	if record == nil {
		record = entity.NewDefaultEntitlement(in.TenantId, feature.Id)
	}

	gated := false
	if feature.SubscriptionPlanId != nil {
		if tier, ok := in.PlanTiers[*feature.SubscriptionPlanId]; ok {
			gated = in.TenantPlanTier < tier
		}
	}

	// TrialExpired is display state only. Reconciling an expired trial
	// (clearing isTrial, disabling when the plan gate is lost) belongs to the
	// sweep; folding it into the access bit here would flip access the other
	// way once the sweep runs.
	trialExpired := !in.Now.IsZero() && record.TrialExpired(in.Now)

	node := &ResolvedFeature{
		Feature:          feature,
		Entitlement:      record,
		EffectiveEnabled: record.IsEnabled && record.IsActive && feature.IsActive && !gated,
		TrialExpired:     trialExpired,
		PlanGated:        gated,
	}

	for _, assoc := range feature.Categories {
		tree.ByCategory[assoc.CategoryId] = append(tree.ByCategory[assoc.CategoryId], node)
	}
	if home := feature.PrimaryCategoryId(); home != nil {
		tree.CategoryCounts[*home]++
	}

	for _, child := range feature.Children {
		node.Children = append(node.Children, resolveNode(child, byPair, in, tree))
	}
	return node
}

// Find walks the tree for the feature with the given id.
func (t *ResolvedFeatureTree) Find(featureId uuid.UUID) *ResolvedFeature {
	var walk func(nodes []*ResolvedFeature) *ResolvedFeature
	walk = func(nodes []*ResolvedFeature) *ResolvedFeature {
		for _, n := range nodes {
			if n.Feature.Id == featureId {
				return n
			}
			if found := walk(n.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(t.Features)
}

// FindByName walks the tree for the feature with the given machine key.
func (t *ResolvedFeatureTree) FindByName(name string) *ResolvedFeature {
	var walk func(nodes []*ResolvedFeature) *ResolvedFeature
	walk = func(nodes []*ResolvedFeature) *ResolvedFeature {
		for _, n := range nodes {
			if n.Feature.Name == name {
				return n
			}
			if found := walk(n.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(t.Features)
}

// EnabledCount counts effectively enabled features across the whole tree.
func (t *ResolvedFeatureTree) EnabledCount() int {
	count := 0
	var walk func(nodes []*ResolvedFeature)
	walk = func(nodes []*ResolvedFeature) {
		for _, n := range nodes {
			if n.EffectiveEnabled {
				count++
			}
			walk(n.Children)
		}
	}
	walk(t.Features)
	return count
}
