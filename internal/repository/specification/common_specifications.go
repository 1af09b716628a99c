// FILE: internal/repository/specification/common_specifications.go
// Specifications shared by every repository.
package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by primary key.
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByIDs filters by a set of primary keys.
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

// OrderBy sorts by a single column. Field comes from code, never from request
// input.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination limits a listing to one page. PageSize <= 0 means unpaginated;
// callers skip the spec in that case.
type Pagination struct {
	Page     int // 1-based
	PageSize int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	page := s.Page
	if page < 1 {
		page = 1
	}
	return db.Limit(s.PageSize).Offset((page - 1) * s.PageSize)
}
