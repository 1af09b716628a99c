// FILE: internal/model/entitlement_model.go
// GORM model for the tenant_entitlements table
package model

import (
	"time"

	"github.com/google/uuid"
)

type TenantEntitlement struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_feature"`
	FeatureId        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_feature"`
	IsEnabled        bool       `gorm:"default:false"`
	IsActive         bool       `gorm:"default:true"`
	IsTrial          bool       `gorm:"default:false"`
	EnabledAt        *time.Time `gorm:"default:null"`
	DisabledAt       *time.Time `gorm:"default:null"`
	TrialExpiresAt   *time.Time `gorm:"default:null;index"`
	UsageCount       int64      `gorm:"default:0"`
	LastUsedAt       *time.Time `gorm:"default:null"`
	AssignedBy       *uuid.UUID `gorm:"type:uuid"`
	AssignedAt       *time.Time `gorm:"default:null"`
	AssignmentReason string     `gorm:"type:text"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

func (TenantEntitlement) TableName() string {
	return "tenant_entitlements"
}
