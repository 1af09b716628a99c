// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// SubscriptionPlan is reference data owned by the billing collaborator. The
// engine looks plans up for tier gating but never mutates them.
type SubscriptionPlan struct {
	Id           uuid.UUID
	DisplayName  string
	Tier         int // Ordinal; higher tier unlocks lower-tier gates
	Price        float64
	Currency     string
	BillingCycle BillingCycle
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tenant is the organization entitlements are scoped to. The console owns
// tenant CRUD; the engine only reads identity and plan linkage.
type Tenant struct {
	Id           uuid.UUID
	Name         string
	Slug         string
	ContactEmail string     // Where trial-expiry notices go; empty = no mail
	PlanId       *uuid.UUID // nil = no subscription, tier 0
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
