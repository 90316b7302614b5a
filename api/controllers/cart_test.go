package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/mitaxdev/litescripts/internal/cart"
	"github.com/mitaxdev/litescripts/pkg/enums"
)

func sampleCartView() *cartsvc.View {
	return &cartsvc.View{
		CartID: uuid.New(),
		Status: enums.CartStatusActive,
		Items: []cartsvc.ItemView{
			{
				ProductID:   "6479302",
				ProductName: "Starter Pack",
				Price:       decimal.RequireFromString("9.99"),
				Quantity:    2,
				LineTotal:   decimal.RequireFromString("19.98"),
			},
		},
		Subtotal: decimal.RequireFromString("19.98"),
		Currency: enums.CurrencyUSD,
	}
}

func TestCartFetchReturnsView(t *testing.T) {
	svc := &fakeCartService{view: sampleCartView()}
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/v1/cart", nil, uuid.New())

	CartFetch(svc, discardLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.Subtotal.StringFixed(2) != "19.98" {
		t.Fatalf("unexpected subtotal %s", body.Data.Subtotal)
	}
}

func TestCartFetchRequiresIdentity(t *testing.T) {
	svc := &fakeCartService{view: sampleCartView()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)

	CartFetch(svc, discardLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCartAddItemForwardsPayload(t *testing.T) {
	svc := &fakeCartService{view: sampleCartView()}
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":"6479302","quantity":2}`), uuid.New())
	req.Header.Set("Content-Type", "application/json")

	CartAddItem(svc, discardLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastAdd.ProductID != "6479302" || svc.lastAdd.Quantity != 2 {
		t.Fatalf("unexpected add input %+v", svc.lastAdd)
	}
}

func TestCartAddItemRejectsBadPayload(t *testing.T) {
	cases := map[string]string{
		"missing product": `{"quantity":1}`,
		"zero quantity":   `{"product_id":"6479302","quantity":0}`,
		"unknown field":   `{"product_id":"6479302","quantity":1,"price":"0.01"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeCartService{view: sampleCartView()}
			rec := httptest.NewRecorder()
			req := authedRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(payload), uuid.New())
			req.Header.Set("Content-Type", "application/json")

			CartAddItem(svc, discardLogger()).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCartRemoveItemUsesRouteParam(t *testing.T) {
	svc := &fakeCartService{view: sampleCartView()}
	router := chi.NewRouter()
	router.Delete("/api/v1/cart/items/{productId}", CartRemoveItem(svc, discardLogger()))

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodDelete, "/api/v1/cart/items/6479302", nil, uuid.New())
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastRemoved != "6479302" {
		t.Fatalf("expected product 6479302 removed, got %q", svc.lastRemoved)
	}
}

func TestCartClearAcknowledges(t *testing.T) {
	svc := &fakeCartService{}
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodDelete, "/api/v1/cart", nil, uuid.New())

	CartClear(svc, discardLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.cleared {
		t.Fatalf("expected clear to reach the service")
	}
}

func TestCartCheckoutReturnsRedirect(t *testing.T) {
	svc := &fakeCartService{result: &cartsvc.CheckoutResult{
		BasketID:    "bskt-1",
		CheckoutURL: "https://checkout.tebex.io/bskt-1",
	}}
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/v1/cart/checkout", nil, uuid.New())

	CartCheckout(svc, discardLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data cartsvc.CheckoutResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.CheckoutURL != "https://checkout.tebex.io/bskt-1" {
		t.Fatalf("unexpected checkout url %q", body.Data.CheckoutURL)
	}
}

func TestCartControllersGuardNilService(t *testing.T) {
	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/v1/cart", nil, uuid.New())

	CartFetch(nil, discardLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
