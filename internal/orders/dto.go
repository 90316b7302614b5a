package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitaxdev/litescripts/pkg/db/models"
	"github.com/mitaxdev/litescripts/pkg/enums"
	"github.com/mitaxdev/litescripts/pkg/types"
)

// View is the order representation returned to buyers. The raw provider
// payload archived on the row is never exposed here.
type View struct {
	ID            uuid.UUID           `json:"id"`
	TransactionID string              `json:"transaction_id"`
	Products      types.OrderProducts `json:"products"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Currency      enums.Currency      `json:"currency"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod *string             `json:"payment_method,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// HistoryPage is one page of a buyer's order history. NextCursor is set only
// when another page exists.
type HistoryPage struct {
	Orders     []View  `json:"orders"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

func viewFromModel(order *models.Order) *View {
	return &View{
		ID:            order.ID,
		TransactionID: order.TebexTransactionID,
		Products:      order.Products,
		TotalPrice:    order.TotalPrice,
		Currency:      order.Currency,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		CompletedAt:   order.CompletedAt,
		CreatedAt:     order.CreatedAt,
	}
}
