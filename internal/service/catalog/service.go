package catalog

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

const (
	// Signed image URLs live for a year; the catalog stores the URL, not
	// the bytes.
	signedURLTTL = 365 * 24 * time.Hour

	maxSaveAttempts    = 3
	saveRetryBaseDelay = 10 * time.Millisecond
)

// Service implements the product catalog operations.
type Service struct {
	products domain.ProductRepository
	blobs    domain.BlobStore
	logger   *log.Entry
}

// NewService creates the catalog service.
func NewService(products domain.ProductRepository, blobs domain.BlobStore, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog-service")
	}
	return &Service{
		products: products,
		blobs:    blobs,
		logger:   logger,
	}
}

// CreateInput holds the fields for a new product. Image may be a plain URL
// or a base64 data URL; data URLs are uploaded to object storage and
// replaced by a signed URL.
type CreateInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Image       string
}

// UpdateInput holds a partial product update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Stock       *int
	Image       *string
}

// List returns the whole catalog, newest first.
func (s *Service) List() ([]domain.Product, error) {
	return s.products.List()
}

// Get returns one product or ErrProductNotFound.
func (s *Service) Get(id string) (domain.Product, error) {
	return s.products.Get(id)
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Product, error) {
	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	imageURL, err := s.resolveImage(ctx, product.ID, input.Image)
	if err != nil {
		return domain.Product{}, err
	}
	product.ImageURL = imageURL

	if err := s.products.Create(product); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("product created")

	return product, nil
}

// Update applies a partial update with optimistic locking, retrying lost
// races against a fresh read.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (domain.Product, error) {
	var updated domain.Product

	err := s.withSaveRetry(func() error {
		product, err := s.products.Get(id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			product.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.PriceCents != nil {
			product.PriceCents = *input.PriceCents
		}
		if input.Stock != nil {
			product.Stock = *input.Stock
		}

		if errs := product.ValidateInvariants(); len(errs) > 0 {
			return errors.Join(errs...)
		}

		if input.Image != nil {
			imageURL, err := s.resolveImage(ctx, product.ID, *input.Image)
			if err != nil {
				return err
			}
			product.ImageURL = imageURL
		}

		product.UpdatedAt = time.Now().UTC()
		if err := s.products.Save(product); err != nil {
			return err
		}

		product.Version++
		updated = product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return updated, nil
}

// Delete removes a product. Deleting an absent product is a no-op.
func (s *Service) Delete(id string) error {
	if err := s.products.Delete(id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// AdjustStock shifts the stock by delta, flooring at zero. It returns the
// updated product and the delta actually applied, which can be smaller in
// magnitude than the requested one when the floor clamps it.
func (s *Service) AdjustStock(id string, delta int) (domain.Product, int, error) {
	var (
		updated domain.Product
		applied int
	)

	err := s.withSaveRetry(func() error {
		product, err := s.products.Get(id)
		if err != nil {
			return err
		}

		newStock := product.Stock + delta
		if newStock < 0 {
			newStock = 0
		}
		applied = newStock - product.Stock

		if applied == 0 {
			updated = product
			return nil
		}

		product.Stock = newStock
		product.UpdatedAt = time.Now().UTC()
		if err := s.products.Save(product); err != nil {
			return err
		}

		product.Version++
		updated = product
		return nil
	})
	if err != nil {
		return domain.Product{}, 0, err
	}

	return updated, applied, nil
}

// withSaveRetry runs fn, retrying with exponential backoff while it loses
// optimistic-locking races. Each attempt re-reads the current state.
func (s *Service) withSaveRetry(fn func() error) error {
	var lastErr error
	delay := saveRetryBaseDelay

	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !domain.IsVersionConflict(err) {
			return err
		}

		lastErr = err
		if attempt < maxSaveAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return lastErr
}

func (s *Service) resolveImage(ctx context.Context, productID, image string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return "", nil
	}
	if !strings.HasPrefix(image, "data:") {
		return image, nil
	}
	if s.blobs == nil {
		return "", fmt.Errorf("image upload is not configured")
	}

	header, encoded, ok := strings.Cut(image, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", fmt.Errorf("invalid image data url")
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode image data url: %w", err)
	}

	key := "products/" + productID
	if err := s.blobs.Upload(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("upload product image: %w", err)
	}

	signedURL, err := s.blobs.SignedURL(ctx, key, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("sign product image url: %w", err)
	}

	return signedURL, nil
}
