package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitaxdev/litescripts/pkg/enums"
	"github.com/mitaxdev/litescripts/pkg/types"
)

// Order is the durable ledger entry for one provider transaction. The unique
// index on tebex_transaction_id is the idempotency key for the whole
// reconciliation pipeline; rows are created once and never deleted.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	TebexTransactionID string              `gorm:"column:tebex_transaction_id;type:text;not null;uniqueIndex:idx_orders_tebex_transaction_id"`
	Products           types.OrderProducts `gorm:"column:products;type:jsonb;serializer:json;not null"`
	TotalPrice         decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	Currency           enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending';index"`
	PaymentMethod      *string             `gorm:"column:payment_method"`
	CustomerEmail      string              `gorm:"column:customer_email;not null"`
	RawEvent           types.JSONMap       `gorm:"column:raw_event;type:jsonb;serializer:json"`
	CompletedAt        *time.Time          `gorm:"column:completed_at"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
