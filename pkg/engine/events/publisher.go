package events

import (
	"context"
	"time"

	"blicktrack-entitlement-be/internal/pkg/logger"
	pkgEvents "blicktrack-entitlement-be/pkg/events"
	pktNats "blicktrack-entitlement-be/pkg/nats"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for engine operations.
type Publisher interface {
	PublishCategoryChanged(ctx context.Context, action string, categoryId uuid.UUID, name string)
	PublishFeatureChanged(ctx context.Context, action string, featureId uuid.UUID, name string)
	PublishEntitlementToggled(ctx context.Context, tenantId, featureId uuid.UUID, enabled bool, actorId uuid.UUID, reason string)
	PublishUsageRecorded(ctx context.Context, tenantId, featureId uuid.UUID, usageCount int64)
	PublishTrialExpired(ctx context.Context, tenantId, featureId uuid.UUID, disabled bool)
}

// NatsPublisher implements Publisher using NATS.
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

// NewNatsPublisher creates a new NATS-based event publisher.
func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("ENGINE", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishCategoryChanged emits CATEGORY_CHANGED after category CRUD.
func (p *NatsPublisher) PublishCategoryChanged(ctx context.Context, action string, categoryId uuid.UUID, name string) {
	p.emit(ctx, "CATEGORY_CHANGED", map[string]interface{}{
		"action":      action,
		"category_id": categoryId,
		"name":        name,
	})
}

// PublishFeatureChanged emits FEATURE_CHANGED after feature CRUD.
func (p *NatsPublisher) PublishFeatureChanged(ctx context.Context, action string, featureId uuid.UUID, name string) {
	p.emit(ctx, "FEATURE_CHANGED", map[string]interface{}{
		"action":     action,
		"feature_id": featureId,
		"name":       name,
	})
}

// PublishEntitlementToggled emits ENTITLEMENT_TOGGLED after a successful
// setEnabled transition.
func (p *NatsPublisher) PublishEntitlementToggled(ctx context.Context, tenantId, featureId uuid.UUID, enabled bool, actorId uuid.UUID, reason string) {
	p.emit(ctx, "ENTITLEMENT_TOGGLED", map[string]interface{}{
		"tenant_id":  tenantId,
		"feature_id": featureId,
		"enabled":    enabled,
		"actor_id":   actorId,
		"reason":     reason,
	})
}

// PublishUsageRecorded emits USAGE_RECORDED after a usage event.
func (p *NatsPublisher) PublishUsageRecorded(ctx context.Context, tenantId, featureId uuid.UUID, usageCount int64) {
	p.emit(ctx, "USAGE_RECORDED", map[string]interface{}{
		"tenant_id":   tenantId,
		"feature_id":  featureId,
		"usage_count": usageCount,
	})
}

// PublishTrialExpired emits TRIAL_EXPIRED for every entitlement the sweep
// transitions.
func (p *NatsPublisher) PublishTrialExpired(ctx context.Context, tenantId, featureId uuid.UUID, disabled bool) {
	p.emit(ctx, "TRIAL_EXPIRED", map[string]interface{}{
		"tenant_id":  tenantId,
		"feature_id": featureId,
		"disabled":   disabled,
	})
}

// NopPublisher discards all events. Used by tests and offline tooling.
type NopPublisher struct{}

func (NopPublisher) PublishCategoryChanged(ctx context.Context, action string, categoryId uuid.UUID, name string) {
}
func (NopPublisher) PublishFeatureChanged(ctx context.Context, action string, featureId uuid.UUID, name string) {
}
func (NopPublisher) PublishEntitlementToggled(ctx context.Context, tenantId, featureId uuid.UUID, enabled bool, actorId uuid.UUID, reason string) {
}
func (NopPublisher) PublishUsageRecorded(ctx context.Context, tenantId, featureId uuid.UUID, usageCount int64) {
}
func (NopPublisher) PublishTrialExpired(ctx context.Context, tenantId, featureId uuid.UUID, disabled bool) {
}
