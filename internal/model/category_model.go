// FILE: internal/model/category_model.go
// GORM model for the feature_categories table
package model

import (
	"time"

	"github.com/google/uuid"
)

type FeatureCategory struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	DisplayName string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Icon        string    `gorm:"type:varchar(100)"`
	Color       string    `gorm:"type:varchar(50)"`
	SortOrder   int       `gorm:"column:sort_order;default:0"`
	Priority    *int      `gorm:"default:null"`
	IsActive    bool      `gorm:"default:true"`
	IsVisible   bool      `gorm:"default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (FeatureCategory) TableName() string {
	return "feature_categories"
}
