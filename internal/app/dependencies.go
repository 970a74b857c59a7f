package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/domain"
	"github.com/elfarodelsaber/storefront/internal/metrics"
	"github.com/elfarodelsaber/storefront/internal/service/auth"
	"github.com/elfarodelsaber/storefront/internal/service/blob"
	"github.com/elfarodelsaber/storefront/internal/service/cart"
	"github.com/elfarodelsaber/storefront/internal/service/catalog"
	"github.com/elfarodelsaber/storefront/internal/service/mailer"
	"github.com/elfarodelsaber/storefront/internal/service/order"
	"github.com/elfarodelsaber/storefront/internal/storage/memory"
	"github.com/elfarodelsaber/storefront/internal/storage/postgres"
)

// Dependencies holds the wired storage, platform adapters and services.
type Dependencies struct {
	// Store is nil when running on in-memory storage.
	Store *postgres.Store

	Products    domain.ProductRepository
	Carts       domain.CartRepository
	Orders      domain.OrderRepository
	Tracking    domain.TrackingRepository
	Outbox      domain.OutboxRepository
	Idempotency domain.IdempotencyRepository

	Auth  domain.AuthProvider
	Blobs domain.BlobStore
	Mail  domain.Mailer

	Catalog  *catalog.Service
	CartSvc  *cart.Service
	OrderSvc *order.Service

	Logger *log.Entry
}

// NewDependencies builds the dependency graph for the given config.
// Storage is PostgreSQL when a DSN is configured, otherwise in-memory.
// Platform adapters fall back to local stand-ins when their endpoints
// are empty.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		deps.Store = store
		deps.Products = postgres.NewProductRepository(store)
		deps.Carts = postgres.NewCartRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Tracking = postgres.NewTrackingRepository(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		deps.Idempotency = postgres.NewIdempotencyRepository(store)
		logger.Info("storage: postgres")
	} else {
		deps.Products = memory.NewProductRepository()
		deps.Carts = memory.NewCartRepository()
		deps.Orders = memory.NewOrderRepository()
		deps.Tracking = memory.NewTrackingRepository()
		deps.Outbox = memory.NewOutboxRepository()
		deps.Idempotency = memory.NewIdempotencyRepository()
		logger.Info("storage: in-memory")
	}

	if cfg.AuthBaseURL != "" {
		deps.Auth = auth.NewHTTPProvider(cfg.AuthBaseURL, cfg.AuthAPIKey, nil)
	} else {
		deps.Auth = auth.NewStaticProvider(nil)
		logger.Warn("auth platform not configured, using static provider")
	}

	if cfg.BlobBaseURL != "" {
		deps.Blobs = blob.NewHTTPStore(cfg.BlobBaseURL, cfg.BlobAPIKey, nil)
	} else {
		deps.Blobs = blob.NewMemoryStore()
	}

	if cfg.MailBaseURL != "" {
		deps.Mail = mailer.NewHTTPMailer(cfg.MailBaseURL, cfg.MailAPIKey, nil)
	} else {
		deps.Mail = mailer.NewLogMailer(logger)
	}

	orderMetrics := metrics.NewOrderMetrics()
	deps.Catalog = catalog.NewService(deps.Products, deps.Blobs, logger.WithField("component", "catalog"))
	deps.CartSvc = cart.NewService(deps.Carts, deps.Products, logger.WithField("component", "cart"))
	deps.OrderSvc = order.NewService(
		deps.Orders,
		deps.Products,
		deps.Carts,
		deps.Tracking,
		order.WithOutbox(deps.Outbox),
		order.WithIdempotency(deps.Idempotency),
		order.WithMailer(deps.Mail),
		order.WithMetrics(orderMetrics),
		order.WithLogger(logger.WithField("component", "order")),
	)

	return deps, nil
}

// Close releases storage resources.
func (d *Dependencies) Close() {
	if d == nil || d.Store == nil {
		return
	}
	if err := d.Store.Close(); err != nil {
		d.Logger.WithError(err).Warn("failed to close postgres store")
	}
}
