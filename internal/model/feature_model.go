// FILE: internal/model/feature_model.go
// GORM model for the features (catalog) table
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Feature represents a catalog feature row. Sub-features live in the same
// table with parent_id set.
type Feature struct {
	Id                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string            `gorm:"type:varchar(100);uniqueIndex;not null"`
	DisplayName        string            `gorm:"type:varchar(255);not null"`
	Description        string            `gorm:"type:text"`
	ParentId           *uuid.UUID        `gorm:"type:uuid;index"`
	SubscriptionPlanId *uuid.UUID        `gorm:"type:uuid;index"`
	SortOrder          int               `gorm:"column:sort_order;default:0"`
	IsActive           bool              `gorm:"default:true"`
	IsVisible          bool              `gorm:"default:true"`
	IsPremium          bool              `gorm:"default:false"`
	RequiresLicense    bool              `gorm:"default:false"`
	IsDeprecated       bool              `gorm:"default:false"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb"`
	Tags               datatypes.JSON    `gorm:"type:jsonb"`
	CreatedAt          time.Time         `gorm:"autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime"`
}

func (Feature) TableName() string {
	return "features"
}
