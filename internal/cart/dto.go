package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitaxdev/litescripts/pkg/db/models"
	"github.com/mitaxdev/litescripts/pkg/enums"
)

// ItemView is one cart line as returned to the API.
type ItemView struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// View is the cart snapshot returned to the API. Totals are computed from the
// items on every read and never persisted.
type View struct {
	CartID   uuid.UUID        `json:"cart_id"`
	Status   enums.CartStatus `json:"status"`
	Items    []ItemView       `json:"items"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Currency enums.Currency   `json:"currency"`
}

// CheckoutResult carries the provider handle the buyer is redirected to.
type CheckoutResult struct {
	BasketID    string `json:"basket_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Subtotal derives the cart total from its lines.
func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func viewFromModel(record *models.Cart) *View {
	view := &View{
		Status:   enums.CartStatusActive,
		Items:    []ItemView{},
		Subtotal: decimal.Zero,
		Currency: enums.CurrencyUSD,
	}
	if record == nil {
		return view
	}

	view.CartID = record.ID
	if record.Status != "" {
		view.Status = record.Status
	}
	for _, item := range record.Items {
		view.Items = append(view.Items, ItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			LineTotal:   item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	view.Subtotal = Subtotal(record.Items)
	return view
}
