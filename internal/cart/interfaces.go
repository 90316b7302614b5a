package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mitaxdev/litescripts/pkg/db/models"
)

// Repository encapsulates cart persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	CreateActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID uuid.UUID, productID string) (int64, error)
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
	MarkCheckedOut(ctx context.Context, cartID uuid.UUID, basketID string) error
	MarkAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
