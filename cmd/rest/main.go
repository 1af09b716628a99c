package main

import (
	"context"
	"log"
	"time"

	"blicktrack-entitlement-be/internal/bootstrap"
	"blicktrack-entitlement-be/internal/config"
	"blicktrack-entitlement-be/internal/server"
	"blicktrack-entitlement-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer - DISABLED
	// shutdownTracer := tracer.InitTracer()
	// defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Printf("Background: Trial sweep every %s", cfg.Sweep.Interval)
		ticker := time.NewTicker(cfg.Sweep.Interval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Sweep.Timeout)
			if _, err := container.Sweeper.ExpireTrials(ctx, time.Now()); err != nil {
				log.Printf("Background Sweep Error: %v", err)
			}
			cancel()
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
