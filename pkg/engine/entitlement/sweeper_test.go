package entitlement

import (
	"context"
	"testing"
	"time"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/repository/memory"
	"blicktrack-entitlement-be/pkg/billing"
	"blicktrack-entitlement-be/pkg/engine/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type sweepFixture struct {
	sweeper *Sweeper
	factory *memory.Factory
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()
	factory := memory.NewFactory()
	log := logger.NewZapLogger(t.TempDir()+"/test.log", false)
	plans := billing.NewPlanProvider(factory)
	return &sweepFixture{
		sweeper: NewSweeper(factory, plans, events.NopPublisher{}, nil, log),
		factory: factory,
	}
}

func (f *sweepFixture) seedPlan(t *testing.T, tier int) uuid.UUID {
	t.Helper()
	plan := &entity.SubscriptionPlan{
		Id:           uuid.New(),
		DisplayName:  "Plan",
		Tier:         tier,
		BillingCycle: entity.BillingCycleMonthly,
		IsActive:     true,
	}
	f.factory.UoW.Plans.Put(plan)
	return plan.Id
}

func (f *sweepFixture) seedTenant(t *testing.T, planId *uuid.UUID) uuid.UUID {
	t.Helper()
	tenant := &entity.Tenant{
		Id:       uuid.New(),
		Name:     "Tenant",
		Slug:     uuid.NewString()[:8],
		PlanId:   planId,
		IsActive: true,
	}
	f.factory.UoW.Tenants.Put(tenant)
	return tenant.Id
}

func (f *sweepFixture) seedGatedFeature(t *testing.T, planId uuid.UUID) uuid.UUID {
	t.Helper()
	feature := &entity.Feature{
		Name:               "gated-" + uuid.NewString()[:8],
		DisplayName:        "Gated",
		SubscriptionPlanId: &planId,
		IsActive:           true,
		IsVisible:          true,
	}
	if err := f.factory.UoW.Features.Create(context.Background(), feature); err != nil {
		t.Fatalf("seed feature: %v", err)
	}
	return feature.Id
}

func (f *sweepFixture) seedTrial(t *testing.T, tenantId, featureId uuid.UUID, expiresAt time.Time) *entity.TenantEntitlement {
	t.Helper()
	enabledAt := expiresAt.Add(-24 * time.Hour)
	record := &entity.TenantEntitlement{
		TenantId:       tenantId,
		FeatureId:      featureId,
		IsEnabled:      true,
		IsActive:       true,
		IsTrial:        true,
		EnabledAt:      &enabledAt,
		TrialExpiresAt: &expiresAt,
	}
	if err := f.factory.UoW.Entitlements.Create(context.Background(), record); err != nil {
		t.Fatalf("seed entitlement: %v", err)
	}
	return record
}

func TestExpireTrialsDisablesPlanGatedFeature(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()
	now := time.Now()

	// Feature requires tier 2, tenant holds tier 1: trial ends, access lost.
	requiredPlan := f.seedPlan(t, 2)
	tenantPlan := f.seedPlan(t, 1)
	tenantId := f.seedTenant(t, &tenantPlan)
	featureId := f.seedGatedFeature(t, requiredPlan)
	f.seedTrial(t, tenantId, featureId, now.Add(-time.Second))

	result, err := f.sweeper.ExpireTrials(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Disabled)

	stored, err := f.factory.UoW.Entitlements.FindByTenantAndFeature(ctx, tenantId, featureId)
	assert.NoError(t, err)
	assert.False(t, stored.IsTrial)
	assert.False(t, stored.IsEnabled)
	assert.NotNil(t, stored.DisabledAt)
	assert.Nil(t, stored.EnabledAt)
}

func TestExpireTrialsKeepsAccessWhenTierSuffices(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()
	now := time.Now()

	requiredPlan := f.seedPlan(t, 1)
	tenantPlan := f.seedPlan(t, 2)
	tenantId := f.seedTenant(t, &tenantPlan)
	featureId := f.seedGatedFeature(t, requiredPlan)
	f.seedTrial(t, tenantId, featureId, now.Add(-time.Second))

	result, err := f.sweeper.ExpireTrials(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 0, result.Disabled)

	stored, _ := f.factory.UoW.Entitlements.FindByTenantAndFeature(ctx, tenantId, featureId)
	assert.False(t, stored.IsTrial)
	assert.True(t, stored.IsEnabled)
}

func TestExpireTrialsIgnoresUngatedAndFutureTrials(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()
	now := time.Now()

	tenantId := f.seedTenant(t, nil)

	// Ungated feature: trial ends but access stays.
	ungated := &entity.Feature{Name: "ungated", DisplayName: "Ungated", IsActive: true, IsVisible: true}
	assert.NoError(t, f.factory.UoW.Features.Create(ctx, ungated))
	f.seedTrial(t, tenantId, ungated.Id, now.Add(-time.Minute))

	// Still-running trial: untouched.
	running := &entity.Feature{Name: "running", DisplayName: "Running", IsActive: true, IsVisible: true}
	assert.NoError(t, f.factory.UoW.Features.Create(ctx, running))
	f.seedTrial(t, tenantId, running.Id, now.Add(time.Hour))

	result, err := f.sweeper.ExpireTrials(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 0, result.Disabled)

	ended, _ := f.factory.UoW.Entitlements.FindByTenantAndFeature(ctx, tenantId, ungated.Id)
	assert.False(t, ended.IsTrial)
	assert.True(t, ended.IsEnabled)

	still, _ := f.factory.UoW.Entitlements.FindByTenantAndFeature(ctx, tenantId, running.Id)
	assert.True(t, still.IsTrial)
}

func TestExpireTrialsIdempotent(t *testing.T) {
	f := newSweepFixture(t)
	ctx := context.Background()
	now := time.Now()

	requiredPlan := f.seedPlan(t, 2)
	tenantId := f.seedTenant(t, nil) // no plan, tier 0
	featureId := f.seedGatedFeature(t, requiredPlan)
	f.seedTrial(t, tenantId, featureId, now.Add(-time.Second))

	first, err := f.sweeper.ExpireTrials(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Expired)

	afterFirst, _ := f.factory.UoW.Entitlements.FindByTenantAndFeature(ctx, tenantId, featureId)

	second, err := f.sweeper.ExpireTrials(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Scanned)
	assert.Equal(t, 0, second.Expired)

	afterSecond, _ := f.factory.UoW.Entitlements.FindByTenantAndFeature(ctx, tenantId, featureId)
	assert.Equal(t, afterFirst.IsTrial, afterSecond.IsTrial)
	assert.Equal(t, afterFirst.IsEnabled, afterSecond.IsEnabled)
	assert.Equal(t, afterFirst.UpdatedAt, afterSecond.UpdatedAt)
}
