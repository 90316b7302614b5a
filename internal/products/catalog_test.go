package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mitaxdev/litescripts/pkg/enums"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
)

func TestCatalogListReturnsCopy(t *testing.T) {
	catalog := NewCatalog(nil)

	first := catalog.List(context.Background())
	if len(first) == 0 {
		t.Fatal("expected default products")
	}
	first[0].Name = "mutated"

	second := catalog.List(context.Background())
	if second[0].Name == "mutated" {
		t.Fatal("List must not expose internal state")
	}
}

func TestCatalogGet(t *testing.T) {
	catalog := NewCatalog([]Product{{
		ID:       "pkg-1",
		Name:     "Test Pack",
		Price:    decimal.NewFromFloat(5),
		Currency: enums.CurrencyUSD,
	}})

	got, err := catalog.Get(context.Background(), "pkg-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Test Pack" {
		t.Fatalf("unexpected product %+v", got)
	}

	_, err = catalog.Get(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
