package bootstrap

import (
	"context"
	"log"

	"blicktrack-entitlement-be/internal/config"
	"blicktrack-entitlement-be/internal/controller"
	"blicktrack-entitlement-be/internal/handler"
	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/pkg/mailer"
	"blicktrack-entitlement-be/internal/repository/unitofwork"
	"blicktrack-entitlement-be/internal/service"
	"blicktrack-entitlement-be/internal/websocket"
	"blicktrack-entitlement-be/pkg/billing"
	"blicktrack-entitlement-be/pkg/engine/catalog"
	"blicktrack-entitlement-be/pkg/engine/entitlement"
	engineEvents "blicktrack-entitlement-be/pkg/engine/events"
	"blicktrack-entitlement-be/pkg/identity"

	pktNats "blicktrack-entitlement-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CatalogController     controller.ICatalogController
	EntitlementController controller.IEntitlementController
	TenantController      controller.ITenantController

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Shared infrastructure (exposed for consumer-side wiring and shutdown)
	PubSub     *gochannel.GoChannel
	Logger     logger.ILogger
	UowFactory unitofwork.RepositoryFactory
	Sweeper    *entitlement.Sweeper
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var emailService mailer.IEmailService
	if cfg.Sweep.Notify && cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Engine
	eventPublisher := engineEvents.NewNatsPublisher(natsPub, sysLogger)
	planProvider := billing.NewPlanProvider(uowFactory)
	actorProvider := identity.NewContextProvider()

	catalogManager := catalog.NewManager(uowFactory, eventPublisher, sysLogger)
	entitlementManager := entitlement.NewManager(uowFactory, eventPublisher, sysLogger)
	sweeper := entitlement.NewSweeper(uowFactory, planProvider, eventPublisher, emailService, sysLogger)

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.InvalidationTopic)

	catalogService := service.NewCatalogService(catalogManager, publisherService)
	entitlementService := service.NewEntitlementService(
		entitlementManager,
		sweeper,
		catalogManager,
		planProvider,
		actorProvider,
		uowFactory,
		publisherService,
	)
	tenantService := service.NewTenantService(uowFactory, planProvider)

	// Notification relay (NATS -> WebSocket)
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(natsPub, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		NotificationHandler:   notifHandler,
		WebSocketHub:          wsHub,
		CatalogController:     controller.NewCatalogController(catalogService),
		EntitlementController: controller.NewEntitlementController(entitlementService),
		TenantController:      controller.NewTenantController(tenantService),

		PubSub:     pubSub,
		Logger:     sysLogger,
		UowFactory: uowFactory,
		Sweeper:    sweeper,
	}
}
