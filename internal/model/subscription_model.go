package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionPlan is read-only reference data synced in by the billing
// service. The engine never writes this table.
type SubscriptionPlan struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayName  string    `gorm:"type:varchar(255);not null"`
	Tier         int       `gorm:"default:0;index"`
	Price        float64   `gorm:"type:decimal(10,2);not null"`
	Currency     string    `gorm:"type:varchar(10);default:'USD'"`
	BillingCycle string    `gorm:"type:varchar(50);not null"`
	IsActive     bool      `gorm:"default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type Tenant struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string     `gorm:"type:varchar(255);not null"`
	Slug         string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	ContactEmail string     `gorm:"type:varchar(255)"`
	PlanId       *uuid.UUID `gorm:"type:uuid;index"`
	IsActive     bool       `gorm:"default:true"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

func (Tenant) TableName() string {
	return "tenants"
}
