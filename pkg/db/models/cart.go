package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitaxdev/litescripts/pkg/enums"
)

// Cart is a user's in-progress selection. A partial unique index on
// (user_id) WHERE status = 'active' guarantees at most one active cart per
// user; totals are never stored, they are derived from Items on every read.
type Cart struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Status        enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	TebexBasketID *string          `gorm:"column:tebex_basket_id"`
	Items         []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is one line of an active cart. (cart_id, product_id) is unique;
// adding the same product again merges quantities instead of appending.
type CartItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID      uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:1"`
	ProductID   string          `gorm:"column:product_id;type:text;not null;uniqueIndex:idx_cart_items_cart_product,priority:2"`
	ProductName string          `gorm:"column:product_name;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;default:1"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
