package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/toychauz/toycha-backend/pkg/db/models"
)

// Repository defines persistence operations for chat threads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error)
	ListByMarket(ctx context.Context, marketID uuid.UUID, limit int) ([]models.ChatMessage, error)
	ListByMarketSince(ctx context.Context, marketID uuid.UUID, since time.Time) ([]models.ChatMessage, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a chat repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *repository) ListByMarket(ctx context.Context, marketID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	query := r.db.WithContext(ctx).
		Where("market_id = ?", marketID).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *repository) ListByMarketSince(ctx context.Context, marketID uuid.UUID, since time.Time) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("market_id = ?", marketID).
		Where("created_at > ?", since).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
