package models

import (
	"time"

	"github.com/google/uuid"
)

// Market is a tenant that places orders against the shared catalog.
type Market struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Phone        string    `gorm:"column:phone;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Address      *string   `gorm:"column:address"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
