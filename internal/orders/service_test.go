package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mitaxdev/litescripts/pkg/db/models"
	"github.com/mitaxdev/litescripts/pkg/enums"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/pagination"
	"github.com/mitaxdev/litescripts/pkg/types"
)

type fakeRepo struct {
	orders     []models.Order
	listErr    error
	lastParams pagination.Params
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (f *fakeRepo) FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id && f.orders[i].UserID == userID {
			return &f.orders[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	f.lastParams = params
	if f.listErr != nil {
		return nil, f.listErr
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, err
	}
	limit := pagination.LimitWithBuffer(params.Limit)
	if len(f.orders) > limit {
		return f.orders[:limit], nil
	}
	return f.orders, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return nil
}

func makeOrders(userID uuid.UUID, n int) []models.Order {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	list := make([]models.Order, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, models.Order{
			ID:                 uuid.New(),
			UserID:             userID,
			TebexTransactionID: uuid.NewString(),
			Products: types.OrderProducts{
				{ProductID: "6479302", ProductName: "Starter Pack", Price: 9.99, Quantity: 1},
			},
			TotalPrice: decimal.RequireFromString("9.99"),
			Currency:   enums.CurrencyUSD,
			Status:     enums.OrderStatusCompleted,
			CreatedAt:  base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return list
}

func TestListForUserReturnsSinglePageWithoutCursor(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{orders: makeOrders(userID, 3)}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	page, err := svc.ListForUser(context.Background(), userID, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(page.Orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(page.Orders))
	}
	if page.NextCursor != nil {
		t.Fatalf("expected no next cursor for a single page")
	}
}

func TestListForUserEmitsCursorWhenMoreRowsExist(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{orders: makeOrders(userID, 5)}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	page, err := svc.ListForUser(context.Background(), userID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(page.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(page.Orders))
	}
	if page.NextCursor == nil {
		t.Fatalf("expected a next cursor")
	}

	cursor, err := pagination.ParseCursor(*page.NextCursor)
	if err != nil {
		t.Fatalf("parse emitted cursor: %v", err)
	}
	if cursor.ID != page.Orders[1].ID {
		t.Fatalf("cursor should point at the last returned row")
	}
}

func TestListForUserRejectsMalformedCursor(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepo{orders: makeOrders(userID, 1)}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.ListForUser(context.Background(), userID, pagination.Params{Cursor: "%%%not-base64%%%"})
	if err == nil {
		t.Fatal("expected error for malformed cursor")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListForUserRequiresIdentity(t *testing.T) {
	svc, err := NewService(&fakeRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.ListForUser(context.Background(), uuid.Nil, pagination.Params{}); err == nil {
		t.Fatal("expected error for missing identity")
	}
}

func TestGetForUserMapsMissingOrder(t *testing.T) {
	svc, err := NewService(&fakeRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	_, err = svc.GetForUser(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetForUserScopesToOwner(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepo{orders: makeOrders(owner, 1)}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.GetForUser(context.Background(), owner, repo.orders[0].ID); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	_, err = svc.GetForUser(context.Background(), uuid.New(), repo.orders[0].ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for non-owner, got %v", err)
	}
}

func TestListForUserWrapsRepoErrors(t *testing.T) {
	repo := &fakeRepo{listErr: gorm.ErrInvalidDB}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	_, err = svc.ListForUser(context.Background(), uuid.New(), pagination.Params{})
	if err == nil || !errors.Is(err, gorm.ErrInvalidDB) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}
