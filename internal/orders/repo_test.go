package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mitaxdev/litescripts/pkg/db/models"
	"github.com/mitaxdev/litescripts/pkg/enums"
	"github.com/mitaxdev/litescripts/pkg/pagination"
	"github.com/mitaxdev/litescripts/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  tebex_transaction_id TEXT NOT NULL UNIQUE,
  products TEXT NOT NULL,
  total_price NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT,
  customer_email TEXT NOT NULL,
  raw_event TEXT,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	return db
}

func createLedgerOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:                 uuid.New(),
		UserID:             userID,
		TebexTransactionID: "tbx-" + uuid.NewString(),
		Products: types.OrderProducts{
			{ProductID: "6479302", ProductName: "Starter Pack", Price: 9.99, Quantity: 1},
		},
		TotalPrice:    decimal.RequireFromString("9.99"),
		Currency:      enums.CurrencyUSD,
		Status:        enums.OrderStatusCompleted,
		CustomerEmail: "buyer@example.com",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateRejectsDuplicateTransaction(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	first := &models.Order{
		UserID:             uuid.New(),
		TebexTransactionID: "tbx-" + uuid.NewString(),
		Products:           types.OrderProducts{},
		TotalPrice:         decimal.RequireFromString("1.00"),
		Currency:           enums.CurrencyUSD,
		Status:             enums.OrderStatusCompleted,
		CustomerEmail:      "buyer@example.com",
	}
	created, err := repo.Create(context.Background(), first)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	dup := &models.Order{
		UserID:             first.UserID,
		TebexTransactionID: first.TebexTransactionID,
		Products:           types.OrderProducts{},
		TotalPrice:         decimal.RequireFromString("1.00"),
		Currency:           enums.CurrencyUSD,
		Status:             enums.OrderStatusCompleted,
		CustomerEmail:      "buyer@example.com",
	}
	_, err = repo.Create(context.Background(), dup)
	require.Error(t, err)

	found, err := repo.FindByTransactionID(context.Background(), first.TebexTransactionID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestRepositoryListByUser_pagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	older := createLedgerOrder(t, db, userID, now.Add(-time.Hour))
	newer := createLedgerOrder(t, db, userID, now)
	createLedgerOrder(t, db, uuid.New(), now) // someone else's order

	first, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, first, 2) // limit+1 buffer row signals another page
	assert.Equal(t, newer.ID, first[0].ID)

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: first[0].CreatedAt, ID: first[0].ID})
	second, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 1, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.ID, second[0].ID)
}

func TestRepositoryUpdateStatusStampsCompletion(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createLedgerOrder(t, db, uuid.New(), time.Now().UTC())
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]any{"status": enums.OrderStatusPending, "completed_at": nil}).Error)

	require.NoError(t, repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusCompleted))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.CompletedAt)

	require.NoError(t, repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusRefunded))
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusRefunded, reloaded.Status)
}

func TestRepositoryFindByIDAndUserScopesOwnership(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createLedgerOrder(t, db, uuid.New(), time.Now().UTC())

	found, err := repo.FindByIDAndUser(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)
	assert.Equal(t, order.TebexTransactionID, found.TebexTransactionID)

	_, err = repo.FindByIDAndUser(context.Background(), order.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
