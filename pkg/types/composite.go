package types

// JSONMap stores loosely-typed JSON documents (webhook payload archives).
type JSONMap map[string]any

// OrderProduct is the immutable per-line snapshot captured when a payment
// completes. It never references live cart or catalog rows.
type OrderProduct struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// OrderProducts is persisted as a JSONB snapshot on the order row.
type OrderProducts []OrderProduct
