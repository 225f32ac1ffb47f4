package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/enums"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("Market").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*pagination.Page[models.Order], error) {
	params = params.Normalize()
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.MarketID != nil {
		query = query.Where("market_id = ?", *filters.MarketID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("created_at <= ?", *filters.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("Market").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	page := pagination.NewPage(rows, total, params)
	return &page, nil
}

func (r *repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *repository) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, orderID uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", orderID).Delete(&models.Order{}).Error
}

// OrderedQuantitySince sums a market's ordered quantity of one product across
// orders created inside the rolling window. Rejected and cancelled orders do
// not consume the limit.
func (r *repository) OrderedQuantitySince(ctx context.Context, marketID, productID uuid.UUID, since time.Time) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.market_id = ?", marketID).
		Where("order_items.product_id = ?", productID).
		Where("orders.created_at >= ?", since).
		Where("orders.status NOT IN ?", []enums.OrderStatus{enums.OrderStatusRejected, enums.OrderStatusCancelled}).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
