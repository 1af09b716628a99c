// FILE: internal/dto/catalog_dto.go
// DTOs for catalog CRUD (categories, features, sub-features)
package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Category DTOs ---

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	Order       int    `json:"order"`
	Priority    *int   `json:"priority,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
	IsVisible   *bool  `json:"is_visible,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	Order       *int    `json:"order,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsVisible   *bool   `json:"is_visible,omitempty"`
}

type CategoryResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Order       int       `json:"order"`
	Priority    *int      `json:"priority,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsVisible   bool      `json:"is_visible"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Feature DTOs ---

type CreateFeatureRequest struct {
	Name               string                 `json:"name" validate:"required"`
	DisplayName        string                 `json:"display_name" validate:"required"`
	Description        string                 `json:"description,omitempty"`
	ParentId           *uuid.UUID             `json:"parent_id,omitempty"`
	SubscriptionPlanId *uuid.UUID             `json:"subscription_plan_id,omitempty"`
	CategoryId         *uuid.UUID             `json:"category_id,omitempty"` // Becomes the primary association
	SortOrder          int                    `json:"sort_order"`
	IsActive           *bool                  `json:"is_active,omitempty"`
	IsVisible          *bool                  `json:"is_visible,omitempty"`
	IsPremium          bool                   `json:"is_premium"`
	RequiresLicense    bool                   `json:"requires_license"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
	Tags               []string               `json:"tags,omitempty"`
}

type UpdateFeatureRequest struct {
	Name               *string                `json:"name,omitempty"`
	DisplayName        *string                `json:"display_name,omitempty"`
	Description        *string                `json:"description,omitempty"`
	ParentId           *uuid.UUID             `json:"parent_id,omitempty"`
	ClearParent        bool                   `json:"clear_parent,omitempty"` // Promote a sub-feature to top-level
	SubscriptionPlanId *uuid.UUID             `json:"subscription_plan_id,omitempty"`
	SortOrder          *int                   `json:"sort_order,omitempty"`
	IsActive           *bool                  `json:"is_active,omitempty"`
	IsVisible          *bool                  `json:"is_visible,omitempty"`
	IsPremium          *bool                  `json:"is_premium,omitempty"`
	RequiresLicense    *bool                  `json:"requires_license,omitempty"`
	IsDeprecated       *bool                  `json:"is_deprecated,omitempty"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
	Tags               []string               `json:"tags,omitempty"`
}

type CategoryAssociationResponse struct {
	CategoryId uuid.UUID `json:"category_id"`
	Order      int       `json:"order"`
	IsPrimary  bool      `json:"is_primary"`
}

type FeatureResponse struct {
	Id                 uuid.UUID                     `json:"id"`
	Name               string                        `json:"name"`
	DisplayName        string                        `json:"display_name"`
	Description        string                        `json:"description"`
	Kind               string                        `json:"kind"` // top-level | sub-feature
	Level              int                           `json:"level"`
	ParentId           *uuid.UUID                    `json:"parent_id,omitempty"`
	SubscriptionPlanId *uuid.UUID                    `json:"subscription_plan_id,omitempty"`
	SortOrder          int                           `json:"sort_order"`
	IsActive           bool                          `json:"is_active"`
	IsVisible          bool                          `json:"is_visible"`
	IsPremium          bool                          `json:"is_premium"`
	RequiresLicense    bool                          `json:"requires_license"`
	IsDeprecated       bool                          `json:"is_deprecated"`
	Metadata           map[string]interface{}        `json:"metadata,omitempty"`
	Tags               []string                      `json:"tags,omitempty"`
	Categories         []CategoryAssociationResponse `json:"categories,omitempty"`
	Children           []*FeatureResponse            `json:"children,omitempty"`
	CreatedAt          time.Time                     `json:"created_at"`
	UpdatedAt          time.Time                     `json:"updated_at"`
}

// CatalogListQuery narrows category/feature listings. Page is 1-based;
// page_size 0 returns everything.
type CatalogListQuery struct {
	ActiveOnly bool       `query:"active_only"`
	CategoryId *uuid.UUID `query:"category_id"`
	Search     string     `query:"search"`
	TopLevel   bool       `query:"top_level"`
	Page       int        `query:"page"`
	PageSize   int        `query:"page_size"`
}
