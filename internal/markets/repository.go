package market

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

// Repository defines persistence operations for market tenants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, market *models.Market) (*models.Market, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Market, error)
	FindByPhone(ctx context.Context, phone string) (*models.Market, error)
	List(ctx context.Context, params pagination.Params, query string) (*pagination.Page[models.Market], error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a market repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, market *models.Market) (*models.Market, error) {
	if err := r.db.WithContext(ctx).Create(market).Error; err != nil {
		return nil, err
	}
	return market, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, query string) (*pagination.Page[models.Market], error) {
	params = params.Normalize()
	q := r.db.WithContext(ctx).Model(&models.Market{})
	if query != "" {
		q = q.Where("name LIKE ?", "%"+query+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Market
	err := q.
		Order("name ASC").
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
		Model(&models.Market{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Market{}).Error
}
