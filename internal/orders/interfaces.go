package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*pagination.Page[models.Order], error)
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, orderID uuid.UUID) error
	OrderedQuantitySince(ctx context.Context, marketID, productID uuid.UUID, since time.Time) (int, error)
}
