package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/pkg/enums"
)

// LineInput is one requested product line.
type LineInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateInput captures a market's new order request. Duplicate product lines
// are accumulated into one before any validation runs.
type CreateInput struct {
	MarketID uuid.UUID
	Lines    []LineInput
}

// ReplaceLinesInput carries a full revised line list for one order; the list
// replaces the stored items wholesale, never as a diff.
type ReplaceLinesInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Role    enums.Role
	Lines   []LineInput
}

// ListFilters narrow the deliver-side order list. Market listings only filter
// by status.
type ListFilters struct {
	MarketID *uuid.UUID
	Status   *enums.OrderStatus
	From     *time.Time
	To       *time.Time
}
