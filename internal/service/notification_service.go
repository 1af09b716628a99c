package service

import (
	"context"
	"fmt"
	"strings"

	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/websocket"
	"blicktrack-entitlement-be/pkg/events"
	pktNats "blicktrack-entitlement-be/pkg/nats" // Renamed to avoid collision
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Broadcast(notification websocket.Notification)
}

// NotificationService relays engine events from the NATS bus to connected
// admin sessions. Nothing is persisted; the event stream itself is the
// record.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	// Subscribe to all engine events with a durable consumer
	err := s.subscriber.Subscribe("entitlements.>", "console-notifier", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to entitlements.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	// NATS subjects include the stream prefix; the code after it is the kind
	// the console switches on.
	kind := strings.TrimPrefix(event.EventType(), "entitlements.")

	s.delivery.Broadcast(websocket.Notification{
		Kind: strings.ToLower(kind),
		Data: event.Payload(),
	})
	return nil
}
