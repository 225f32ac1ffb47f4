package limits

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

// Repository defines persistence operations for per-market product quotas.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, limit *models.ProductLimit) (*models.ProductLimit, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ProductLimit, error)
	FindForMarketProduct(ctx context.Context, marketID, productID uuid.UUID) (*models.ProductLimit, error)
	List(ctx context.Context, params pagination.Params, marketID *uuid.UUID) (*pagination.Page[models.ProductLimit], error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a product limit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, limit *models.ProductLimit) (*models.ProductLimit, error) {
	if err := r.db.WithContext(ctx).Create(limit).Error; err != nil {
		return nil, err
	}
	return limit, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductLimit, error) {
	var limit models.ProductLimit
	err := r.db.WithContext(ctx).
		Preload("Market").
		Preload("Product").
		Where("id = ?", id).
		First(&limit).Error
	if err != nil {
		return nil, err
	}
	return &limit, nil
}

func (r *repository) FindForMarketProduct(ctx context.Context, marketID, productID uuid.UUID) (*models.ProductLimit, error) {
	var limit models.ProductLimit
	err := r.db.WithContext(ctx).
		Where("market_id = ? AND product_id = ?", marketID, productID).
		First(&limit).Error
	if err != nil {
		return nil, err
	}
	return &limit, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, marketID *uuid.UUID) (*pagination.Page[models.ProductLimit], error) {
	params = params.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ProductLimit{})
	if marketID != nil {
		query = query.Where("market_id = ?", *marketID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.ProductLimit
	err := query.
		Preload("Market").
		Preload("Product").
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

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductLimit{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ProductLimit{}).Error
}
