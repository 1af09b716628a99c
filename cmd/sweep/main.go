// FILE: cmd/sweep/main.go
// One-shot trial expiry sweep, meant for cron or manual runs.
package main

import (
	"context"
	"log"
	"time"

	"blicktrack-entitlement-be/internal/bootstrap"
	"blicktrack-entitlement-be/internal/config"
	"blicktrack-entitlement-be/pkg/database"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Sweep.Timeout)
	defer cancel()

	result, err := container.Sweeper.ExpireTrials(ctx, time.Now())
	if err != nil {
		log.Fatalf("Error: Trial sweep failed: %v", err)
	}

	log.Printf("✅ Sweep done: scanned=%d expired=%d disabled=%d", result.Scanned, result.Expired, result.Disabled)
}
