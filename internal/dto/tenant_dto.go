// FILE: internal/dto/tenant_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// TenantResponse is read-only reference data for the console; tenant CRUD is
// owned elsewhere.
type TenantResponse struct {
	Id           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	ContactEmail string     `json:"contact_email,omitempty"`
	PlanId       *uuid.UUID `json:"plan_id,omitempty"`
	PlanTier     int        `json:"plan_tier"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type PlanResponse struct {
	Id           uuid.UUID `json:"id"`
	DisplayName  string    `json:"display_name"`
	Tier         int       `json:"tier"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	BillingCycle string    `json:"billing_cycle"`
	IsActive     bool      `json:"is_active"`
}
