package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/toychauz/toycha-backend/pkg/enums"
)

// CreateInput captures a new catalog entry.
type CreateInput struct {
	Name       string          `json:"name" validate:"required,min=1,max=255"`
	Unit       enums.Unit      `json:"unit" validate:"required"`
	Price      decimal.Decimal `json:"price" validate:"required"`
	CategoryID *uuid.UUID      `json:"categoryId,omitempty"`
}

// UpdateInput carries a partial product update; nil fields are left alone.
type UpdateInput struct {
	Name       *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Unit       *enums.Unit      `json:"unit,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	CategoryID *uuid.UUID       `json:"categoryId,omitempty"`
	IsActive   *bool            `json:"isActive,omitempty"`
}

// ListFilters narrow the catalog listing.
type ListFilters struct {
	CategoryID *uuid.UUID
	ActiveOnly bool
	Query      string
}
