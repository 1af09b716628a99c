package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByName filters by the unique machine key
type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

// ActiveOnly filters out administratively disabled records
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// VisibleOnly filters out hidden records
type VisibleOnly struct{}

func (s VisibleOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_visible = ?", true)
}

// TopLevelOnly filters features that have no parent
type TopLevelOnly struct{}

func (s TopLevelOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NULL")
}

// ByParent filters sub-features of a given feature
type ByParent struct {
	ParentID uuid.UUID
}

func (s ByParent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id = ?", s.ParentID)
}

// SearchText matches display_name or description, case-insensitive substring
type SearchText struct {
	Query string
}

func (s SearchText) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	// ILIKE for Postgres case-insensitivity
	return db.Where("display_name ILIKE ? OR description ILIKE ?", pattern, pattern)
}

// InCategory filters features associated with a category
type InCategory struct {
	CategoryID uuid.UUID
}

func (s InCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN feature_category_features fcf ON fcf.feature_id = features.id").
		Where("fcf.category_id = ?", s.CategoryID)
}

// CatalogOrder applies the canonical listing order: sort_order then display_name
type CatalogOrder struct{}

func (s CatalogOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("display_name ASC")
}
