// FILE: internal/entity/feature_entity.go
// Domain entity for catalog features
package entity

import (
	"time"

	"github.com/google/uuid"
)

type FeatureKind string

const (
	FeatureKindTopLevel   FeatureKind = "top-level"
	FeatureKindSubFeature FeatureKind = "sub-feature"
)

// Feature is a sellable capability in the catalog. A sub-feature is a Feature
// with ParentId set; kind and level are derived from ParentId so the three can
// never disagree. Sub-features cannot own children.
type Feature struct {
	Id                 uuid.UUID
	Name               string // Unique key: threat-modeling, sbom-export
	DisplayName        string
	Description        string
	ParentId           *uuid.UUID // nil for top-level features
	SubscriptionPlanId *uuid.UUID // nil when no plan gate applies
	SortOrder          int        // display position within a listing
	IsActive           bool
	IsVisible          bool
	IsPremium          bool
	RequiresLicense    bool
	IsDeprecated       bool
	Metadata           map[string]interface{}
	Tags               []string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Relations (populated on read, never persisted from here)
	Children   []*Feature
	Categories []*CategoryAssociation
}

func (f *Feature) Kind() FeatureKind {
	if f.ParentId != nil {
		return FeatureKindSubFeature
	}
	return FeatureKindTopLevel
}

// Level is 1 for top-level features and 2 for sub-features. Kept for display
// nesting in the console.
func (f *Feature) Level() int {
	if f.ParentId != nil {
		return 2
	}
	return 1
}

// PrimaryCategoryId returns the home category when one is marked primary,
// falling back to the first association.
func (f *Feature) PrimaryCategoryId() *uuid.UUID {
	for _, assoc := range f.Categories {
		if assoc.IsPrimary {
			id := assoc.CategoryId
			return &id
		}
	}
	if len(f.Categories) > 0 {
		id := f.Categories[0].CategoryId
		return &id
	}
	return nil
}

// CategoryAssociation links a feature to a category. A feature may belong to
// several categories; each association carries its own display order and at
// most one per (feature, category) pair is primary.
type CategoryAssociation struct {
	Id         uuid.UUID
	FeatureId  uuid.UUID
	CategoryId uuid.UUID
	Order      int
	IsPrimary  bool
	CreatedAt  time.Time

	Category *Category // Expanded on read when requested
}
