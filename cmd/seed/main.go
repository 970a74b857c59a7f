package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elfarodelsaber/storefront/internal/domain"
	"github.com/elfarodelsaber/storefront/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

// sampleProducts returns the demo catalog. Prices are in cents.
func sampleProducts() []domain.Product {
	now := time.Now().UTC()
	items := []domain.Product{
		{Name: "Camiseta clásica", Description: "Camiseta de algodón, corte regular", PriceCents: 1999, Stock: 50},
		{Name: "Sudadera con capucha", Description: "Sudadera gruesa con bolsillo canguro", PriceCents: 4599, Stock: 30},
		{Name: "Gorra bordada", Description: "Gorra ajustable con logo bordado", PriceCents: 1499, Stock: 80},
		{Name: "Botella térmica", Description: "Botella de acero inoxidable, 750 ml", PriceCents: 2499, Stock: 40},
		{Name: "Mochila urbana", Description: "Mochila con compartimento acolchado para portátil", PriceCents: 6999, Stock: 15},
		{Name: "Taza esmaltada", Description: "Taza de 350 ml apta para lavavajillas", PriceCents: 999, Stock: 120},
	}

	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}
	return items
}

func main() {
	var (
		dsn   string
		force bool
	)

	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: STOREFRONT_POSTGRES_DSN)")
	flag.BoolVar(&force, "force", false, "seed even when the catalog is not empty")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("STOREFRONT_POSTGRES_DSN"))
	}
	if dsn == "" {
		fail("STOREFRONT_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		fail("apply migrations: %v", err)
	}

	products := postgres.NewProductRepository(store)

	existing, err := products.List()
	if err != nil {
		fail("list catalog: %v", err)
	}
	if len(existing) > 0 && !force {
		fmt.Printf("catalog already has %d products, nothing to do (use -force to seed anyway)\n", len(existing))
		return
	}

	created := 0
	for _, product := range sampleProducts() {
		if err := products.Create(product); err != nil {
			fail("create product %q: %v", product.Name, err)
		}
		created++
	}

	fmt.Printf("seed ok: created %d products\n", created)
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
