package deliver

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
	"github.com/toychauz/toycha-backend/pkg/pagination"
)

// Repository defines persistence operations for deliver staff accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, deliver *models.Deliver) (*models.Deliver, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deliver, error)
	FindByPhone(ctx context.Context, phone string) (*models.Deliver, error)
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Deliver], error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deliver repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, deliver *models.Deliver) (*models.Deliver, error) {
	if err := r.db.WithContext(ctx).Create(deliver).Error; err != nil {
		return nil, err
	}
	return deliver, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deliver, error) {
	var deliver models.Deliver
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&deliver).Error
	if err != nil {
		return nil, err
	}
	return &deliver, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Deliver, error) {
	var deliver models.Deliver
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&deliver).Error
	if err != nil {
		return nil, err
	}
	return &deliver, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Deliver], error) {
	params = params.Normalize()
	query := r.db.WithContext(ctx).Model(&models.Deliver{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Deliver
	err := query.
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
		Model(&models.Deliver{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Deliver{}).Error
}
