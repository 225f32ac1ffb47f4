package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductLimit caps how much of a product a market may order over a rolling
// day window.
type ProductLimit struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MarketID    uuid.UUID `gorm:"column:market_id;type:uuid;not null;uniqueIndex:idx_product_limits_market_product"`
	Market      *Market   `gorm:"foreignKey:MarketID"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_limits_market_product"`
	Product     *Product  `gorm:"foreignKey:ProductID"`
	MaxQuantity int       `gorm:"column:max_quantity;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
