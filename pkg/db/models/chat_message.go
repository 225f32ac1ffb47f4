package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/pkg/enums"
)

// ChatMessage is one entry in a market/deliver thread. Threads are keyed by
// market; the deliver side is shared staff.
type ChatMessage struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MarketID  uuid.UUID        `gorm:"column:market_id;type:uuid;not null;index"`
	Sender    enums.ChatSender `gorm:"column:sender;type:text;not null"`
	Body      string           `gorm:"column:body;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime;index"`
}
