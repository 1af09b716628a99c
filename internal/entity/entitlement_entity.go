// FILE: internal/entity/entitlement_entity.go
// Domain entity for per-tenant feature entitlements
package entity

import (
	"time"

	"github.com/google/uuid"
)

// TenantEntitlement is the assignment record for one (tenant, feature) pair.
// At most one record exists per pair; absence is equivalent to the default
// returned by NewDefaultEntitlement. Records are never physically deleted by
// toggles, only transitioned.
//
// Invariant: after any toggle exactly one of EnabledAt/DisabledAt is non-nil.
// Both are nil only on a synthesized default that was never toggled.
type TenantEntitlement struct {
	Id               uuid.UUID
	TenantId         uuid.UUID
	FeatureId        uuid.UUID
	IsEnabled        bool // The authoritative access bit
	IsActive         bool // Administrative kill-switch, independent of IsEnabled
	IsTrial          bool
	EnabledAt        *time.Time
	DisabledAt       *time.Time
	TrialExpiresAt   *time.Time
	UsageCount       int64 // Monotonic, incremented only by usage events
	LastUsedAt       *time.Time
	AssignedBy       *uuid.UUID // Weak reference to an actor id
	AssignedAt       *time.Time
	AssignmentReason string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewDefaultEntitlement synthesizes the state of a pair that was never
// written: disabled, administratively active, no trial, no usage.
func NewDefaultEntitlement(tenantId, featureId uuid.UUID) *TenantEntitlement {
	return &TenantEntitlement{
		TenantId:  tenantId,
		FeatureId: featureId,
		IsEnabled: false,
		IsActive:  true,
	}
}

// IsSynthesized reports whether the record is a default that has never been
// persisted.
func (e *TenantEntitlement) IsSynthesized() bool {
	return e.Id == uuid.Nil
}

// TrialExpired reports whether the trial window has passed at the given
// instant.
func (e *TenantEntitlement) TrialExpired(now time.Time) bool {
	return e.IsTrial && e.TrialExpiresAt != nil && !e.TrialExpiresAt.After(now)
}
