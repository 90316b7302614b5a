package products

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mitaxdev/litescripts/pkg/enums"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
)

// Product is one purchasable Tebex package. The catalog is compiled in: the
// storefront is the source of truth and this service only mirrors what buyers
// can put into a cart.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    enums.Currency  `json:"currency"`
	Category    string          `json:"category"`
}

// Catalog answers read-only product lookups.
type Catalog interface {
	List(ctx context.Context) []Product
	Get(ctx context.Context, productID string) (*Product, error)
}

type catalog struct {
	products []Product
	byID     map[string]Product
}

// NewCatalog builds a catalog over the provided products; when none are given
// the default storefront packages are used.
func NewCatalog(products []Product) Catalog {
	if len(products) == 0 {
		products = defaultProducts()
	}
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &catalog{products: products, byID: byID}
}

func (c *catalog) List(ctx context.Context) []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *catalog) Get(ctx context.Context, productID string) (*Product, error) {
	p, ok := c.byID[productID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &p, nil
}

func defaultProducts() []Product {
	return []Product{
		{
			ID:          "6479302",
			Name:        "Core Scripts Bundle",
			Description: "Full access to the core script pack with lifetime updates.",
			Price:       decimal.NewFromFloat(24.99),
			Currency:    enums.CurrencyUSD,
			Category:    "bundles",
		},
		{
			ID:          "6479303",
			Name:        "Garage Manager",
			Description: "Vehicle garage management with shared keys and impound flows.",
			Price:       decimal.NewFromFloat(14.99),
			Currency:    enums.CurrencyUSD,
			Category:    "scripts",
		},
		{
			ID:          "6479304",
			Name:        "Advanced HUD",
			Description: "Configurable status HUD with voice and vehicle widgets.",
			Price:       decimal.NewFromFloat(9.99),
			Currency:    enums.CurrencyUSD,
			Category:    "scripts",
		},
		{
			ID:          "6479305",
			Name:        "Dealership Suite",
			Description: "Player-run dealerships with financing and test drives.",
			Price:       decimal.NewFromFloat(19.99),
			Currency:    enums.CurrencyUSD,
			Category:    "scripts",
		},
	}
}
