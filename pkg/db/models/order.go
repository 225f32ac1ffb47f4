package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/toychauz/toycha-backend/pkg/enums"
)

// Order is a market's product request. Status is server-assigned and monotonic.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MarketID    uuid.UUID         `gorm:"column:market_id;type:uuid;not null;index"`
	Market      *Market           `gorm:"foreignKey:MarketID"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'new'"`
	Total       decimal.Decimal   `gorm:"column:total;type:numeric(14,2);not null;default:0"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	AcceptedAt  *time.Time        `gorm:"column:accepted_at"`
	DeliveredAt *time.Time        `gorm:"column:delivered_at"`
	ClosedAt    *time.Time        `gorm:"column:closed_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one product line inside an order. Quantity is always a positive
// integer in persisted state.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
