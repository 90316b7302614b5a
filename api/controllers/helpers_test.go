package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitaxdev/litescripts/api/middleware"
	cartsvc "github.com/mitaxdev/litescripts/internal/cart"
	ordersvc "github.com/mitaxdev/litescripts/internal/orders"
	"github.com/mitaxdev/litescripts/pkg/db/models"
	"github.com/mitaxdev/litescripts/pkg/logger"
	"github.com/mitaxdev/litescripts/pkg/pagination"
)

func discardLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func authedRequest(method, target string, body io.Reader, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithEmail(ctx, "buyer@example.com")
	return req.WithContext(ctx)
}

type fakeCartService struct {
	view        *cartsvc.View
	result      *cartsvc.CheckoutResult
	err         error
	lastAdd     cartsvc.AddItemInput
	lastRemoved string
	cleared     bool
}

func (f *fakeCartService) AddItem(_ context.Context, _ uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.View, error) {
	f.lastAdd = input
	return f.view, f.err
}

func (f *fakeCartService) GetCart(_ context.Context, _ uuid.UUID) (*cartsvc.View, error) {
	return f.view, f.err
}

func (f *fakeCartService) RemoveItem(_ context.Context, _ uuid.UUID, productID string) (*cartsvc.View, error) {
	f.lastRemoved = productID
	return f.view, f.err
}

func (f *fakeCartService) Clear(_ context.Context, _ uuid.UUID) error {
	f.cleared = true
	return f.err
}

func (f *fakeCartService) Checkout(_ context.Context, _ uuid.UUID, _ cartsvc.CheckoutInput) (*cartsvc.CheckoutResult, error) {
	return f.result, f.err
}

type fakeOrdersService struct {
	page       *ordersvc.HistoryPage
	view       *ordersvc.View
	err        error
	lastParams pagination.Params
}

func (f *fakeOrdersService) ListForUser(_ context.Context, _ uuid.UUID, params pagination.Params) (*ordersvc.HistoryPage, error) {
	f.lastParams = params
	return f.page, f.err
}

func (f *fakeOrdersService) GetForUser(_ context.Context, _, _ uuid.UUID) (*ordersvc.View, error) {
	return f.view, f.err
}

type fakeUsers struct {
	user       *models.User
	findErr    error
	linkErr    error
	lastLinked string
}

func (f *fakeUsers) FindByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.user, nil
}

func (f *fakeUsers) LinkGameLicense(_ context.Context, _ uuid.UUID, license string, _ *string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.lastLinked = license
	if f.user != nil {
		f.user.GameLicense = &license
	}
	return nil
}
