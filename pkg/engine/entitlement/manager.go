// FILE: pkg/engine/entitlement/manager.go
package entitlement

import (
	"context"
	"sync"
	"time"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/repository/specification"
	"blicktrack-entitlement-be/internal/repository/unitofwork"
	"blicktrack-entitlement-be/pkg/engine/events"

	"github.com/google/uuid"
)

// keyedMutex serializes work per (tenant, feature) pair. Locks are never
// reclaimed; the key space is bounded by tenants x features.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if l, ok := k.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	k.locks[key] = l
	return l
}

func pairKey(tenantId, featureId uuid.UUID) string {
	return tenantId.String() + ":" + featureId.String()
}

// Manager owns per-(tenant, feature) assignment records. Toggles for the same
// pair are serialized through a keyed mutex on top of the row transaction so
// the enabledAt/disabledAt exclusion holds under concurrent calls; distinct
// pairs and distinct tenants proceed fully in parallel.
type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
	pairLocks  *keyedMutex
	now        func() time.Time
}

func NewManager(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, logger logger.ILogger) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
		pairLocks:  newKeyedMutex(),
		now:        time.Now,
	}
}

// GetEntitlement returns the record for the pair, or a synthesized default
// when none was ever written. Absence is not an error.
func (m *Manager) GetEntitlement(ctx context.Context, tenantId, featureId uuid.UUID) (*entity.TenantEntitlement, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.EntitlementRepository().FindByTenantAndFeature(ctx, tenantId, featureId)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return entity.NewDefaultEntitlement(tenantId, featureId), nil
	}
	return record, nil
}

// ListForTenant returns every persisted entitlement for the tenant. Pairs
// with no record are absent; callers synthesize defaults as needed.
func (m *Manager) ListForTenant(ctx context.Context, tenantId uuid.UUID) ([]*entity.TenantEntitlement, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	return uow.EntitlementRepository().FindAll(ctx, specification.ByTenant{TenantID: tenantId})
}

// SetEnabled toggles the access bit. Idempotent: when the current state
// already matches, nothing is written and the current record (or synthesized
// default) is returned. First enable lazily creates the record; disable of a
// pair with no record is a no-op.
func (m *Manager) SetEnabled(ctx context.Context, tenantId, featureId uuid.UUID, enabled bool, actorId uuid.UUID, reason string) (*entity.TenantEntitlement, error) {
	lock := m.pairLocks.get(pairKey(tenantId, featureId))
	lock.Lock()
	defer lock.Unlock()

	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	feature, err := uow.FeatureRepository().FindOne(ctx, specification.ByID{ID: featureId})
	if err != nil {
		return nil, err
	}
	if feature == nil {
		return nil, apperror.NewNotFound("feature", featureId.String())
	}

	record, err := uow.EntitlementRepository().FindByTenantAndFeature(ctx, tenantId, featureId)
	if err != nil {
		return nil, err
	}

	now := m.now()

	if record == nil {
		if !enabled {
			// Nothing to disable; absence already means disabled.
			return entity.NewDefaultEntitlement(tenantId, featureId), nil
		}
		record = entity.NewDefaultEntitlement(tenantId, featureId)
		record.Id = uuid.New()
		record.IsEnabled = true
		record.EnabledAt = &now
		record.AssignedBy = actorRef(actorId)
		record.AssignedAt = &now
		record.AssignmentReason = reason
		if err := uow.EntitlementRepository().Create(ctx, record); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		m.logger.Info("ENTITLEMENT", "Entitlement created", map[string]interface{}{
			"tenant_id":  tenantId,
			"feature_id": featureId,
		})
		m.publisher.PublishEntitlementToggled(ctx, tenantId, featureId, true, actorId, reason)
		return record, nil
	}

	if record.IsEnabled == enabled {
		return record, nil
	}

	record.IsEnabled = enabled
	if enabled {
		record.EnabledAt = &now
		record.DisabledAt = nil
	} else {
		record.DisabledAt = &now
		record.EnabledAt = nil
	}
	record.AssignedBy = actorRef(actorId)
	record.AssignedAt = &now
	record.AssignmentReason = reason

	if err := uow.EntitlementRepository().Update(ctx, record); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.logger.Info("ENTITLEMENT", "Entitlement toggled", map[string]interface{}{
		"tenant_id":  tenantId,
		"feature_id": featureId,
		"enabled":    enabled,
	})
	m.publisher.PublishEntitlementToggled(ctx, tenantId, featureId, enabled, actorId, reason)
	return record, nil
}

// RecordUsage bumps the monotonic usage counter. Usage against a pair with
// no record, or a disabled one, is rejected.
func (m *Manager) RecordUsage(ctx context.Context, tenantId, featureId uuid.UUID) (*entity.TenantEntitlement, error) {
	lock := m.pairLocks.get(pairKey(tenantId, featureId))
	lock.Lock()
	defer lock.Unlock()

	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	record, err := uow.EntitlementRepository().FindByTenantAndFeature(ctx, tenantId, featureId)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsEnabled {
		return nil, apperror.NewNotFound("entitlement", pairKey(tenantId, featureId))
	}

	now := m.now()
	record.UsageCount++
	record.LastUsedAt = &now

	if err := uow.EntitlementRepository().Update(ctx, record); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.publisher.PublishUsageRecorded(ctx, tenantId, featureId, record.UsageCount)
	return record, nil
}

func actorRef(actorId uuid.UUID) *uuid.UUID {
	if actorId == uuid.Nil {
		return nil
	}
	id := actorId
	return &id
}
