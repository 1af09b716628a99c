package entitlement

import (
	"context"
	"testing"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/repository/memory"
	"blicktrack-entitlement-be/pkg/engine/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestManager(t *testing.T) (*Manager, *memory.Factory) {
	t.Helper()
	factory := memory.NewFactory()
	log := logger.NewZapLogger(t.TempDir()+"/test.log", false)
	return NewManager(factory, events.NopPublisher{}, log), factory
}

func seedFeature(t *testing.T, factory *memory.Factory, name string) *entity.Feature {
	t.Helper()
	f := &entity.Feature{Name: name, DisplayName: name, IsActive: true, IsVisible: true}
	if err := factory.UoW.Features.Create(context.Background(), f); err != nil {
		t.Fatalf("seed feature: %v", err)
	}
	return f
}

func TestGetEntitlementDefault(t *testing.T) {
	m, factory := newTestManager(t)
	ctx := context.Background()
	feature := seedFeature(t, factory, "threat-modeling")
	tenantId := uuid.New()

	record, err := m.GetEntitlement(ctx, tenantId, feature.Id)
	assert.NoError(t, err)
	assert.True(t, record.IsSynthesized())
	assert.False(t, record.IsEnabled)
	assert.True(t, record.IsActive)
	assert.Equal(t, int64(0), record.UsageCount)
	assert.Nil(t, record.EnabledAt)
	assert.Nil(t, record.DisabledAt)
}

func TestSetEnabledCreatesRecord(t *testing.T) {
	m, factory := newTestManager(t)
	ctx := context.Background()
	feature := seedFeature(t, factory, "threat-modeling")
	tenantId := uuid.New()
	actorId := uuid.New()

	record, err := m.SetEnabled(ctx, tenantId, feature.Id, true, actorId, "pilot rollout")
	assert.NoError(t, err)
	assert.False(t, record.IsSynthesized())
	assert.True(t, record.IsEnabled)
	assert.NotNil(t, record.EnabledAt)
	assert.Nil(t, record.DisabledAt)
	assert.Equal(t, actorId, *record.AssignedBy)
	assert.Equal(t, "pilot rollout", record.AssignmentReason)
}

func TestSetEnabledUnknownFeature(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.SetEnabled(ctx, uuid.New(), uuid.New(), true, uuid.New(), "")
	assert.True(t, apperror.IsNotFound(err))
}

func TestSetEnabledDisableWithoutRecordIsNoop(t *testing.T) {
	m, factory := newTestManager(t)
	ctx := context.Background()
	feature := seedFeature(t, factory, "threat-modeling")
	tenantId := uuid.New()

	record, err := m.SetEnabled(ctx, tenantId, feature.Id, false, uuid.New(), "")
	assert.NoError(t, err)
	assert.True(t, record.IsSynthesized())
	assert.False(t, record.IsEnabled)

	// Nothing was persisted.
	stored, err := factory.UoW.Entitlements.FindByTenantAndFeature(ctx, tenantId, feature.Id)
	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestToggleIdempotence(t *testing.T) {
	m, factory := newTestManager(t)
	ctx := context.Background()
	feature := seedFeature(t, factory, "threat-modeling")
	tenantId := uuid.New()
	actorId := uuid.New()

	first, err := m.SetEnabled(ctx, tenantId, feature.Id, true, actorId, "initial")
	assert.NoError(t, err)

	second, err := m.SetEnabled(ctx, tenantId, feature.Id, true, actorId, "repeat")
	assert.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.True(t, second.IsEnabled)
	// Unchanged state no-ops: the original stamp survives.
	assert.Equal(t, *first.EnabledAt, *second.EnabledAt)
	assert.Equal(t, "initial", second.AssignmentReason)
}

func TestEnabledDisabledMutualExclusion(t *testing.T) {
	m, factory := newTestManager(t)
	ctx := context.Background()
	feature := seedFeature(t, factory, "threat-modeling")
	tenantId := uuid.New()
	actorId := uuid.New()

	record, err := m.SetEnabled(ctx, tenantId, feature.Id, true, actorId, "")
	assert.NoError(t, err)
	assert.NotNil(t, record.EnabledAt)
	assert.Nil(t, record.DisabledAt)

	record, err = m.SetEnabled(ctx, tenantId, feature.Id, false, actorId, "offboarding")
	assert.NoError(t, err)
	assert.Nil(t, record.EnabledAt)
	assert.NotNil(t, record.DisabledAt)

	record, err = m.SetEnabled(ctx, tenantId, feature.Id, true, actorId, "back on")
	assert.NoError(t, err)
	assert.NotNil(t, record.EnabledAt)
	assert.Nil(t, record.DisabledAt)
}

func TestRecordUsage(t *testing.T) {
	m, factory := newTestManager(t)
	ctx := context.Background()
	feature := seedFeature(t, factory, "threat-modeling")
	tenantId := uuid.New()

	// Usage without an enabled entitlement is rejected.
	_, err := m.RecordUsage(ctx, tenantId, feature.Id)
	assert.True(t, apperror.IsNotFound(err))

	_, err = m.SetEnabled(ctx, tenantId, feature.Id, true, uuid.New(), "")
	assert.NoError(t, err)

	record, err := m.RecordUsage(ctx, tenantId, feature.Id)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), record.UsageCount)
	assert.NotNil(t, record.LastUsedAt)

	record, err = m.RecordUsage(ctx, tenantId, feature.Id)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), record.UsageCount)

	// Disabling stops the counter.
	_, err = m.SetEnabled(ctx, tenantId, feature.Id, false, uuid.New(), "")
	assert.NoError(t, err)
	_, err = m.RecordUsage(ctx, tenantId, feature.Id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestListForTenant(t *testing.T) {
	m, factory := newTestManager(t)
	ctx := context.Background()
	a := seedFeature(t, factory, "feature-a")
	b := seedFeature(t, factory, "feature-b")
	tenantId := uuid.New()
	otherTenant := uuid.New()

	m.SetEnabled(ctx, tenantId, a.Id, true, uuid.New(), "")
	m.SetEnabled(ctx, tenantId, b.Id, true, uuid.New(), "")
	m.SetEnabled(ctx, otherTenant, a.Id, true, uuid.New(), "")

	records, err := m.ListForTenant(ctx, tenantId)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, tenantId, r.TenantId)
	}
}
