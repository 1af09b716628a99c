package resolver

import (
	"testing"
	"time"

	"blicktrack-entitlement-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func topLevelFeature(name string) *entity.Feature {
	return &entity.Feature{
		Id:          uuid.New(),
		Name:        name,
		DisplayName: name,
		IsActive:    true,
		IsVisible:   true,
	}
}

func enabledRecord(tenantId, featureId uuid.UUID) *entity.TenantEntitlement {
	now := time.Now()
	return &entity.TenantEntitlement{
		Id:        uuid.New(),
		TenantId:  tenantId,
		FeatureId: featureId,
		IsEnabled: true,
		IsActive:  true,
		EnabledAt: &now,
	}
}

func TestResolveEffectiveEnabled(t *testing.T) {
	tenantId := uuid.New()
	feature := topLevelFeature("threat-modeling")

	tests := []struct {
		name        string
		mutate      func(f *entity.Feature, e *entity.TenantEntitlement)
		wantEnabled bool
	}{
		{
			name:        "all conditions met",
			mutate:      func(f *entity.Feature, e *entity.TenantEntitlement) {},
			wantEnabled: true,
		},
		{
			name:        "entitlement disabled",
			mutate:      func(f *entity.Feature, e *entity.TenantEntitlement) { e.IsEnabled = false },
			wantEnabled: false,
		},
		{
			name:        "entitlement administratively inactive",
			mutate:      func(f *entity.Feature, e *entity.TenantEntitlement) { e.IsActive = false },
			wantEnabled: false,
		},
		{
			name:        "feature inactive",
			mutate:      func(f *entity.Feature, e *entity.TenantEntitlement) { f.IsActive = false },
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := *feature
			e := enabledRecord(tenantId, feature.Id)
			tt.mutate(&f, e)

			tree := Resolve(Input{
				TenantId:     tenantId,
				Catalog:      []*entity.Feature{&f},
				Entitlements: []*entity.TenantEntitlement{e},
			})

			node := tree.Find(feature.Id)
			assert.NotNil(t, node)
			assert.Equal(t, tt.wantEnabled, node.EffectiveEnabled)
		})
	}
}

func TestResolvePlanGating(t *testing.T) {
	tenantId := uuid.New()
	planId := uuid.New()
	feature := topLevelFeature("compliance-reporting")
	feature.SubscriptionPlanId = &planId

	record := enabledRecord(tenantId, feature.Id)

	// Tenant tier below the required tier: gated.
	tree := Resolve(Input{
		TenantId:       tenantId,
		Catalog:        []*entity.Feature{feature},
		Entitlements:   []*entity.TenantEntitlement{record},
		TenantPlanTier: 1,
		PlanTiers:      map[uuid.UUID]int{planId: 2},
	})
	node := tree.Find(feature.Id)
	assert.True(t, node.PlanGated)
	assert.False(t, node.EffectiveEnabled)

	// Tier meets the requirement: not gated.
	tree = Resolve(Input{
		TenantId:       tenantId,
		Catalog:        []*entity.Feature{feature},
		Entitlements:   []*entity.TenantEntitlement{record},
		TenantPlanTier: 2,
		PlanTiers:      map[uuid.UUID]int{planId: 2},
	})
	node = tree.Find(feature.Id)
	assert.False(t, node.PlanGated)
	assert.True(t, node.EffectiveEnabled)

	// Unknown plan id: no gate applies.
	tree = Resolve(Input{
		TenantId:       tenantId,
		Catalog:        []*entity.Feature{feature},
		Entitlements:   []*entity.TenantEntitlement{record},
		TenantPlanTier: 0,
		PlanTiers:      map[uuid.UUID]int{},
	})
	node = tree.Find(feature.Id)
	assert.False(t, node.PlanGated)
	assert.True(t, node.EffectiveEnabled)
}

func TestResolveTrialExpiry(t *testing.T) {
	tenantId := uuid.New()
	feature := topLevelFeature("sbom-export")
	now := time.Now()

	expired := now.Add(-time.Second)
	record := enabledRecord(tenantId, feature.Id)
	record.IsTrial = true
	record.TrialExpiresAt = &expired

	// The expired trial is surfaced as display state, but access stays on:
	// trial reconciliation is the sweep's job, and the sweep only disables
	// when the plan gate is lost. The resolved answer must not change when
	// the sweep later clears isTrial on this ungated feature.
	tree := Resolve(Input{
		TenantId:     tenantId,
		Catalog:      []*entity.Feature{feature},
		Entitlements: []*entity.TenantEntitlement{record},
		Now:          now,
	})
	node := tree.Find(feature.Id)
	assert.True(t, node.TrialExpired)
	assert.True(t, node.EffectiveEnabled)

	// Zero Now means time-insensitive resolution: the trial is not examined.
	tree = Resolve(Input{
		TenantId:     tenantId,
		Catalog:      []*entity.Feature{feature},
		Entitlements: []*entity.TenantEntitlement{record},
	})
	node = tree.Find(feature.Id)
	assert.False(t, node.TrialExpired)
	assert.True(t, node.EffectiveEnabled)
}

func TestResolveExpiredTrialOnGatedFeature(t *testing.T) {
	tenantId := uuid.New()
	planId := uuid.New()
	feature := topLevelFeature("attack-simulation")
	feature.SubscriptionPlanId = &planId
	now := time.Now()

	expired := now.Add(-time.Hour)
	record := enabledRecord(tenantId, feature.Id)
	record.IsTrial = true
	record.TrialExpiresAt = &expired

	// Below the required tier the gate term alone blocks access, so the
	// answer already matches what the sweep will persist.
	tree := Resolve(Input{
		TenantId:       tenantId,
		Catalog:        []*entity.Feature{feature},
		Entitlements:   []*entity.TenantEntitlement{record},
		TenantPlanTier: 1,
		PlanTiers:      map[uuid.UUID]int{planId: 2},
		Now:            now,
	})
	node := tree.Find(feature.Id)
	assert.True(t, node.TrialExpired)
	assert.True(t, node.PlanGated)
	assert.False(t, node.EffectiveEnabled)
}

func TestResolveSynthesizesDefaults(t *testing.T) {
	tenantId := uuid.New()
	feature := topLevelFeature("risk-assessment")

	tree := Resolve(Input{
		TenantId: tenantId,
		Catalog:  []*entity.Feature{feature},
	})

	node := tree.Find(feature.Id)
	assert.NotNil(t, node.Entitlement)
	assert.True(t, node.Entitlement.IsSynthesized())
	assert.False(t, node.EffectiveEnabled)
	assert.Equal(t, int64(0), node.Entitlement.UsageCount)
}

func TestResolveChildrenIndependentOfParent(t *testing.T) {
	tenantId := uuid.New()
	parent := topLevelFeature("product-threat-modeling")
	child := topLevelFeature("stride-analysis")
	child.ParentId = &parent.Id
	parent.Children = []*entity.Feature{child}

	// Parent has no entitlement (disabled), child is enabled.
	tree := Resolve(Input{
		TenantId:     tenantId,
		Catalog:      []*entity.Feature{parent},
		Entitlements: []*entity.TenantEntitlement{enabledRecord(tenantId, child.Id)},
	})

	parentNode := tree.Find(parent.Id)
	assert.False(t, parentNode.EffectiveEnabled)
	assert.Len(t, parentNode.Children, 1)
	assert.True(t, parentNode.Children[0].EffectiveEnabled)
}

func TestResolveCategoryGrouping(t *testing.T) {
	tenantId := uuid.New()
	securityId := uuid.New()
	complianceId := uuid.New()

	feature := topLevelFeature("compliance-reporting")
	feature.Categories = []*entity.CategoryAssociation{
		{CategoryId: securityId, IsPrimary: false},
		{CategoryId: complianceId, IsPrimary: true},
	}

	tree := Resolve(Input{
		TenantId: tenantId,
		Catalog:  []*entity.Feature{feature},
	})

	// Reported under every associated category.
	assert.Len(t, tree.ByCategory[securityId], 1)
	assert.Len(t, tree.ByCategory[complianceId], 1)

	// Counted only under the primary one.
	assert.Equal(t, 0, tree.CategoryCounts[securityId])
	assert.Equal(t, 1, tree.CategoryCounts[complianceId])
}

func TestFindByNameAndEnabledCount(t *testing.T) {
	tenantId := uuid.New()
	a := topLevelFeature("feature-a")
	b := topLevelFeature("feature-b")

	tree := Resolve(Input{
		TenantId:     tenantId,
		Catalog:      []*entity.Feature{a, b},
		Entitlements: []*entity.TenantEntitlement{enabledRecord(tenantId, a.Id)},
	})

	assert.NotNil(t, tree.FindByName("feature-a"))
	assert.Nil(t, tree.FindByName("feature-z"))
	assert.Equal(t, 1, tree.EnabledCount())
}
