// FILE: internal/dto/entitlement_dto.go
// DTOs for per-tenant entitlement state
package dto

import (
	"time"

	"github.com/google/uuid"
)

type SetEnabledRequest struct {
	Enabled *bool  `json:"enabled" validate:"required"`
	Reason  string `json:"reason,omitempty"`
}

type EntitlementResponse struct {
	Id               *uuid.UUID `json:"id,omitempty"` // nil for synthesized defaults
	TenantId         uuid.UUID  `json:"tenant_id"`
	FeatureId        uuid.UUID  `json:"feature_id"`
	IsEnabled        bool       `json:"is_enabled"`
	IsActive         bool       `json:"is_active"`
	IsTrial          bool       `json:"is_trial"`
	EnabledAt        *time.Time `json:"enabled_at,omitempty"`
	DisabledAt       *time.Time `json:"disabled_at,omitempty"`
	TrialExpiresAt   *time.Time `json:"trial_expires_at,omitempty"`
	UsageCount       int64      `json:"usage_count"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`
	AssignedBy       *uuid.UUID `json:"assigned_by,omitempty"`
	AssignedAt       *time.Time `json:"assigned_at,omitempty"`
	AssignmentReason string     `json:"assignment_reason,omitempty"`
}

type SweepResponse struct {
	Scanned  int `json:"scanned"`
	Expired  int `json:"expired"`
	Disabled int `json:"disabled"`
}

// --- Resolved tree DTOs ---

type ResolvedFeatureResponse struct {
	Id               uuid.UUID                  `json:"id"`
	Name             string                     `json:"name"`
	DisplayName      string                     `json:"display_name"`
	Kind             string                     `json:"kind"`
	EffectiveEnabled bool                       `json:"effective_enabled"`
	TrialExpired     bool                       `json:"trial_expired"`
	PlanGated        bool                       `json:"plan_gated"`
	Entitlement      *EntitlementResponse       `json:"entitlement"`
	Children         []*ResolvedFeatureResponse `json:"children,omitempty"`
}

type ResolveResponse struct {
	TenantId       uuid.UUID                  `json:"tenant_id"`
	PlanTier       int                        `json:"plan_tier"`
	Features       []*ResolvedFeatureResponse `json:"features"`
	CategoryCounts map[string]int             `json:"category_counts"`
}
