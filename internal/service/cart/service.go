package cart

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// Service implements the per-user cart operations. Every line carries a
// snapshot of the product taken when it was added; checkout charges the
// snapshot price, not the live one.
type Service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService creates the cart service.
func NewService(carts domain.CartRepository, products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "cart-service")
	}
	return &Service{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// Get returns the user's cart. A user who never touched their cart gets an
// empty one, never an error.
func (s *Service) Get(userID string) (domain.Cart, error) {
	return s.carts.Get(userID)
}

// AddItem puts qty units of the product into the cart, merging with an
// existing line. The product is re-fetched so the snapshot is fresh at add
// time. Stock is checked against the total line quantity but not reserved.
func (s *Service) AddItem(userID, productID string, qty int) (domain.Cart, error) {
	if qty <= 0 {
		return domain.Cart{}, domain.ErrItemQtyInvalid
	}

	product, err := s.products.Get(productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if product.Stock == 0 {
		return domain.Cart{}, domain.ErrOutOfStock
	}

	cart, err := s.carts.Get(userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	now := time.Now().UTC()
	if idx := cart.Line(productID); idx >= 0 {
		total := cart.Items[idx].Qty + qty
		if total > product.Stock {
			return domain.Cart{}, domain.ErrInsufficientStock
		}
		cart.Items[idx].Qty = total
		cart.Items[idx].Product = product
		cart.Items[idx].AddedAt = now
	} else {
		if qty > product.Stock {
			return domain.Cart{}, domain.ErrInsufficientStock
		}
		cart.Items = append(cart.Items, domain.CartLine{
			ProductID: productID,
			Qty:       qty,
			Product:   product,
			AddedAt:   now,
		})
	}

	cart.UpdatedAt = now
	if err := s.carts.Put(cart); err != nil {
		return domain.Cart{}, fmt.Errorf("store cart: %w", err)
	}

	return cart, nil
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero
// or less removes the line.
func (s *Service) SetQuantity(userID, productID string, qty int) (domain.Cart, error) {
	cart, err := s.carts.Get(userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	idx := cart.Line(productID)
	if idx < 0 {
		return domain.Cart{}, domain.ErrCartLineNotFound
	}

	if qty <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		product, err := s.products.Get(productID)
		if err != nil {
			return domain.Cart{}, err
		}
		if qty > product.Stock {
			return domain.Cart{}, domain.ErrInsufficientStock
		}
		cart.Items[idx].Qty = qty
	}

	cart.UpdatedAt = time.Now().UTC()
	if err := s.carts.Put(cart); err != nil {
		return domain.Cart{}, fmt.Errorf("store cart: %w", err)
	}

	return cart, nil
}

// RemoveItem drops the line for productID. Removing an absent line is a
// no-op.
func (s *Service) RemoveItem(userID, productID string) (domain.Cart, error) {
	cart, err := s.carts.Get(userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	idx := cart.Line(productID)
	if idx < 0 {
		return cart, nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	cart.UpdatedAt = time.Now().UTC()
	if err := s.carts.Put(cart); err != nil {
		return domain.Cart{}, fmt.Errorf("store cart: %w", err)
	}

	return cart, nil
}
