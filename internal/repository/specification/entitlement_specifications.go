package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByTenant filters entitlements for one tenant
type ByTenant struct {
	TenantID uuid.UUID
}

func (s ByTenant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", s.TenantID)
}

// ByFeature filters entitlements for one feature
type ByFeature struct {
	FeatureID uuid.UUID
}

func (s ByFeature) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("feature_id = ?", s.FeatureID)
}

// ByFeatures filters entitlements for a set of features
type ByFeatures struct {
	FeatureIDs []uuid.UUID
}

func (s ByFeatures) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("feature_id IN ?", s.FeatureIDs)
}

// TrialExpiredBy filters trial entitlements whose window has closed at the
// given instant
type TrialExpiredBy struct {
	Now time.Time
}

func (s TrialExpiredBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_trial = ? AND trial_expires_at IS NOT NULL AND trial_expires_at <= ?", true, s.Now)
}

// EnabledOnly filters entitlements with the access bit set
type EnabledOnly struct{}

func (s EnabledOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_enabled = ?", true)
}
