package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/toychauz/toycha-backend/pkg/enums"
)

// Product is a catalog entry markets order from. Reference data: read-mostly,
// managed by delivers.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	Unit       enums.Unit      `gorm:"column:unit;type:text;not null;default:'piece'"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null;default:0"`
	CategoryID *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Category   *Category       `gorm:"foreignKey:CategoryID"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
