package cart_test

import (
	"errors"
	"testing"
	"time"

	"github.com/elfarodelsaber/storefront/internal/domain"
	"github.com/elfarodelsaber/storefront/internal/service/cart"
	"github.com/elfarodelsaber/storefront/internal/storage/memory"
)

func newCartService(t *testing.T, products ...domain.Product) (*cart.Service, domain.ProductRepository) {
	t.Helper()

	productRepo := memory.NewProductRepository()
	for _, product := range products {
		if err := productRepo.Create(product); err != nil {
			t.Fatalf("seed product %s: %v", product.ID, err)
		}
	}
	return cart.NewService(memory.NewCartRepository(), productRepo, nil), productRepo
}

func sampleProduct(id string, priceCents int64, stock int) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:         id,
		Name:       "Producto " + id,
		PriceCents: priceCents,
		Stock:      stock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestGet_EmptyCartOnFirstAccess(t *testing.T) {
	svc, _ := newCartService(t)

	got, err := svc.Get("user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UserID != "user-1" || len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}
}

func TestAddItem_SnapshotsProduct(t *testing.T) {
	svc, _ := newCartService(t, sampleProduct("p1", 2500, 10))

	got, err := svc.AddItem("user-1", "p1", 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 line, got %+v", got)
	}
	line := got.Items[0]
	if line.Qty != 2 || line.Product.PriceCents != 2500 {
		t.Fatalf("unexpected line: %+v", line)
	}
	if got.TotalCents() != 5000 {
		t.Fatalf("expected total 5000, got %d", got.TotalCents())
	}
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	svc, _ := newCartService(t, sampleProduct("p1", 1000, 5))

	if _, err := svc.AddItem("user-1", "p1", 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	got, err := svc.AddItem("user-1", "p1", 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Qty != 5 {
		t.Fatalf("expected one merged line with qty 5, got %+v", got.Items)
	}

	// Stock is exhausted by the merged line; one more unit must fail.
	if _, err := svc.AddItem("user-1", "p1", 1); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestAddItem_Failures(t *testing.T) {
	svc, _ := newCartService(t, sampleProduct("p1", 1000, 0), sampleProduct("p2", 1000, 3))

	tests := []struct {
		name      string
		productID string
		qty       int
		wantErr   error
	}{
		{"unknown product", "missing", 1, domain.ErrProductNotFound},
		{"zero stock", "p1", 1, domain.ErrOutOfStock},
		{"over stock", "p2", 4, domain.ErrInsufficientStock},
		{"non-positive qty", "p2", 0, domain.ErrItemQtyInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddItem("user-1", tc.productID, tc.qty); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	got, err := svc.Get("user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("failed adds must not write, got %+v", got.Items)
	}
}

func TestAddItem_KeepsSnapshotPriceAfterCatalogChange(t *testing.T) {
	svc, products := newCartService(t, sampleProduct("p1", 2000, 10))

	if _, err := svc.AddItem("user-1", "p1", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Catalog price changes after the line was added.
	product, err := products.Get("p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	product.PriceCents = 9900
	product.UpdatedAt = time.Now().UTC()
	if err := products.Save(product); err != nil {
		t.Fatalf("save product: %v", err)
	}

	got, err := svc.Get("user-1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if got.Items[0].Product.PriceCents != 2000 || got.TotalCents() != 2000 {
		t.Fatalf("cart must keep the add-time price, got %+v", got.Items[0].Product)
	}
}

func TestSetQuantity(t *testing.T) {
	svc, _ := newCartService(t, sampleProduct("p1", 1000, 5))

	if _, err := svc.AddItem("user-1", "p1", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	got, err := svc.SetQuantity("user-1", "p1", 4)
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got.Items[0].Qty != 4 {
		t.Fatalf("expected qty 4, got %d", got.Items[0].Qty)
	}

	if _, err := svc.SetQuantity("user-1", "p1", 6); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := svc.SetQuantity("user-1", "missing", 1); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound, got %v", err)
	}

	// Zero or negative removes the line instead of failing.
	got, err = svc.SetQuantity("user-1", "p1", 0)
	if err != nil {
		t.Fatalf("set to zero failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected removed line, got %+v", got.Items)
	}
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	svc, _ := newCartService(t, sampleProduct("p1", 1000, 5))

	if _, err := svc.AddItem("user-1", "p1", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	got, err := svc.RemoveItem("user-1", "p1")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", got.Items)
	}

	got, err = svc.RemoveItem("user-1", "p1")
	if err != nil {
		t.Fatalf("second remove must be a no-op: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", got.Items)
	}
}
