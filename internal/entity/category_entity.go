// FILE: internal/entity/category_entity.go
// Domain entity for feature categories
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category groups features in the catalog. Name is the machine key
// (lowercase-kebab, unique); DisplayName is what the console renders.
type Category struct {
	Id          uuid.UUID
	Name        string // Unique key: security, compliance, reporting
	DisplayName string
	Description string
	Icon        string // Symbolic reference, opaque to the engine
	Color       string // Advisory, opaque
	Order       int    // Display order, not unique
	Priority    *int   // Optional, lower = higher priority
	IsActive    bool
	IsVisible   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
