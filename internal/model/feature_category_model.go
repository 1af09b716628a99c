// FILE: internal/model/feature_category_model.go
// GORM model for the feature_category_features association table
package model

import (
	"time"

	"github.com/google/uuid"
)

type FeatureCategoryFeature struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FeatureId  uuid.UUID `gorm:"type:uuid;not null;index"`
	CategoryId uuid.UUID `gorm:"type:uuid;not null;index"`
	SortOrder  int       `gorm:"column:sort_order;default:0"`
	IsPrimary  bool      `gorm:"default:false"`
	CreatedAt  time.Time `gorm:"default:now()"`
}

func (FeatureCategoryFeature) TableName() string {
	return "feature_category_features"
}
