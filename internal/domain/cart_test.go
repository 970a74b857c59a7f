package domain_test

import (
	"testing"
	"time"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

func makeCart() domain.Cart {
	now := time.Now().UTC()
	return domain.Cart{
		UserID: "user-1",
		Items: []domain.CartLine{
			{ProductID: "p1", Qty: 2, Product: domain.Product{ID: "p1", PriceCents: 1050}, AddedAt: now},
			{ProductID: "p2", Qty: 1, Product: domain.Product{ID: "p2", PriceCents: 500}, AddedAt: now},
		},
		UpdatedAt: now,
	}
}

func TestCartTotalCents(t *testing.T) {
	cart := makeCart()
	if got := cart.TotalCents(); got != 2600 {
		t.Fatalf("expected total 2600, got %d", got)
	}

	empty := domain.Cart{UserID: "user-2"}
	if got := empty.TotalCents(); got != 0 {
		t.Fatalf("expected empty cart total 0, got %d", got)
	}
	if !empty.Empty() {
		t.Fatal("expected cart without lines to be empty")
	}
}

func TestCartLineLookup(t *testing.T) {
	cart := makeCart()
	if idx := cart.Line("p2"); idx != 1 {
		t.Fatalf("expected index 1 for p2, got %d", idx)
	}
	if idx := cart.Line("missing"); idx != -1 {
		t.Fatalf("expected -1 for missing product, got %d", idx)
	}
}

func TestUserCanViewOrder(t *testing.T) {
	order := domain.Order{ID: "o1", UserID: "user-1"}

	owner := domain.User{ID: "user-1", Role: domain.RoleCustomer}
	admin := domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	stranger := domain.User{ID: "user-2", Role: domain.RoleCustomer}

	if !owner.CanViewOrder(order) {
		t.Fatal("owner must view own order")
	}
	if !admin.CanViewOrder(order) {
		t.Fatal("admin must view any order")
	}
	if stranger.CanViewOrder(order) {
		t.Fatal("stranger must not view another user's order")
	}
}
