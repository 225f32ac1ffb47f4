package models

import (
	"time"

	"github.com/google/uuid"
)

// Deliver is a delivery-side staff account. Delivers fulfill orders and manage
// the catalog, markets and per-market quotas.
type Deliver struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Phone        string    `gorm:"column:phone;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
