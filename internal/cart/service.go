package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mitaxdev/litescripts/internal/products"
	"github.com/mitaxdev/litescripts/pkg/db/models"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/metrics"
	"github.com/mitaxdev/litescripts/pkg/tebex"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type basketCreator interface {
	CreateBasket(ctx context.Context, params tebex.CreateBasketParams) (*tebex.Basket, error)
}

// Service exposes the cart mutations and the checkout handoff.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*View, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	catalog     products.Catalog
	gateway     basketCreator
	pipeline    *metrics.PipelineMetrics
	frontendURL string
}

// Params collects the service dependencies.
type Params struct {
	Repo        Repository
	Tx          txRunner
	Catalog     products.Catalog
	Gateway     basketCreator
	Pipeline    *metrics.PipelineMetrics
	FrontendURL string
}

// NewService builds a cart service backed by the provided stack.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if p.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:        p.Repo,
		tx:          p.Tx,
		catalog:     p.Catalog,
		gateway:     p.Gateway,
		pipeline:    p.Pipeline,
		frontendURL: strings.TrimRight(p.FrontendURL, "/"),
	}, nil
}

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	ProductID string
	Quantity  int
}

// CheckoutInput carries the buyer identity forwarded to the provider basket.
type CheckoutInput struct {
	Username string
}

// AddItem puts a product into the user's active cart, creating the cart when
// none exists and merging quantities when the product is already present.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.catalog.Get(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	var view *View
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record, err = repo.CreateActive(ctx, userID)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
		}

		merged := false
		for i := range record.Items {
			if record.Items[i].ProductID == input.ProductID {
				record.Items[i].Quantity += input.Quantity
				if err := repo.UpdateItemQuantity(ctx, record.Items[i].ID, record.Items[i].Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item quantity")
				}
				merged = true
				break
			}
		}

		if !merged {
			item := models.CartItem{
				CartID:      record.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Price:       product.Price,
				Quantity:    input.Quantity,
			}
			if err := repo.CreateItem(ctx, &item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
			record.Items = append(record.Items, item)
		}

		view = viewFromModel(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetCart returns the user's active cart. A user without one gets an empty
// cart, never an error.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	record, err := s.repo.FindActiveByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return viewFromModel(nil), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
	}
	return viewFromModel(record), nil
}

// RemoveItem drops one product line from the active cart. Removing a product
// the cart does not hold is a no-op; only a missing cart is an error.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
		}

		if _, err := repo.DeleteItem(ctx, record.ID, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}

		remaining := record.Items[:0]
		for _, item := range record.Items {
			if item.ProductID != productID {
				remaining = append(remaining, item)
			}
		}
		record.Items = remaining

		view = viewFromModel(record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Clear empties the active cart. Clearing a user without a cart is a no-op.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindActiveByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
		}
		if err := repo.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart items")
		}
		return nil
	})
}

// Checkout opens a provider basket for the active cart and, only after the
// provider accepts it, flips the cart to checked_out with the basket handle.
// A gateway failure leaves the cart exactly as it was.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	record, err := s.repo.FindActiveByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(record.Items) == 0) {
		s.pipeline.IncCheckoutAttempt(metrics.OutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
	}

	lines := make([]tebex.BasketLine, 0, len(record.Items))
	for _, item := range record.Items {
		lines = append(lines, tebex.BasketLine{
			PackageID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	basket, err := s.gateway.CreateBasket(ctx, tebex.CreateBasketParams{
		Username:    input.Username,
		CompleteURL: s.frontendURL + "/checkout/complete",
		CancelURL:   s.frontendURL + "/checkout/cancel",
		Lines:       lines,
	})
	if err != nil {
		s.pipeline.IncCheckoutAttempt(metrics.OutcomeFailed)
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).MarkCheckedOut(ctx, record.ID, basket.Ident); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark cart checked out")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pipeline.IncCheckoutAttempt(metrics.OutcomeProcessed)
	return &CheckoutResult{
		BasketID:    basket.Ident,
		CheckoutURL: basket.CheckoutURL,
	}, nil
}
