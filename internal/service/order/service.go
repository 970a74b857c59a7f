package order

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/domain"
	"github.com/elfarodelsaber/storefront/internal/metrics"
)

const (
	maxSaveAttempts    = 3
	saveRetryBaseDelay = 10 * time.Millisecond

	mailTimeout = 10 * time.Second

	idempotencyTTL = 24 * time.Hour

	// Outbox event types.
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCanceled      = "order.canceled"
)

// Service drives the order lifecycle: checkout, status transitions with
// cancellation compensation, and the tracking ledger reads.
type Service struct {
	orders      domain.OrderRepository
	products    domain.ProductRepository
	carts       domain.CartRepository
	tracking    domain.TrackingRepository
	outbox      domain.OutboxRepository
	idempotency domain.IdempotencyRepository
	mailer      domain.Mailer
	metrics     *metrics.OrderMetrics
	logger      *log.Entry
}

// Option configures the Service.
type Option func(*Service)

// WithOutbox wires the transactional outbox. Without it events are skipped.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(s *Service) { s.outbox = outbox }
}

// WithIdempotency wires the checkout idempotency store.
func WithIdempotency(repo domain.IdempotencyRepository) Option {
	return func(s *Service) { s.idempotency = repo }
}

// WithMailer wires the transactional mailer.
func WithMailer(mailer domain.Mailer) Option {
	return func(s *Service) { s.mailer = mailer }
}

// WithMetrics wires the order metrics.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates the order service.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	carts domain.CartRepository,
	tracking domain.TrackingRepository,
	options ...Option,
) *Service {
	s := &Service{
		orders:   orders,
		products: products,
		carts:    carts,
		tracking: tracking,
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "order-service")
	}
	return s
}

// PlaceResult is the outcome of a checkout.
type PlaceResult struct {
	Order domain.Order
	// Replayed reports that an idempotency key matched an earlier
	// checkout and the stored order was returned without mutating stock.
	Replayed bool
}

// PlaceOrder checks out the user's cart. The total is the sum of the
// snapshot prices taken when each line was added. Stock is decremented per
// line with the floor clamped at zero; the units actually removed are
// recorded on the order item so cancellation can restore them exactly.
// An optional idempotency key makes retried checkouts replay the stored
// order instead of decrementing stock again.
func (s *Service) PlaceOrder(ctx context.Context, user domain.User, paymentMethod, shippingAddress, idempotencyKey string) (PlaceResult, error) {
	started := time.Now()

	// The key is claimed before the cart is even looked at: a successful
	// checkout empties the cart, so a retried request must short-circuit
	// on the stored record or it would see an empty cart and fail.
	useIdempotency := idempotencyKey != "" && s.idempotency != nil
	if useIdempotency {
		requestHash := checkoutRequestHash(user.ID, paymentMethod, shippingAddress)
		replay, done, err := s.claimIdempotencyKey(idempotencyKey, requestHash)
		if err != nil {
			return PlaceResult{}, err
		}
		if done {
			return replay, nil
		}
	}

	var result PlaceResult
	cart, err := s.carts.Get(user.ID)
	switch {
	case err != nil:
		err = fmt.Errorf("load cart: %w", err)
	case cart.Empty():
		err = domain.ErrEmptyCart
	default:
		result, err = s.checkout(ctx, user, cart, paymentMethod, shippingAddress)
	}
	if useIdempotency {
		s.settleIdempotencyKey(idempotencyKey, result, err)
	}
	if err != nil {
		return PlaceResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordCheckoutDuration(time.Since(started))
	}

	return result, nil
}

func (s *Service) checkout(ctx context.Context, user domain.User, cart domain.Cart, paymentMethod, shippingAddress string) (PlaceResult, error) {
	now := time.Now().UTC()

	items, err := s.deductStock(cart)
	if err != nil {
		return PlaceResult{}, err
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		UserEmail:       user.Email,
		Items:           items,
		TotalCents:      cart.TotalCents(),
		PaymentMethod:   paymentMethod,
		ShippingAddress: shippingAddress,
		Status:          domain.OrderStatusPending,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(order); err != nil {
		s.restoreDeducted(items)
		return PlaceResult{}, fmt.Errorf("persist order: %w", err)
	}

	s.appendTracking(domain.TrackingEvent{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		Status:      domain.OrderStatusPending,
		Description: domain.StatusDescription(domain.OrderStatusPending),
		Timestamp:   now,
	})

	// Checkout empties the cart; the cart itself survives.
	cart.Items = []domain.CartLine{}
	cart.UpdatedAt = now
	if err := s.carts.Put(cart); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to clear cart after checkout")
	}

	s.enqueueEvent(EventOrderCreated, order)
	s.dispatchMail(user.Email, domain.MailTemplateOrderCreated, map[string]any{
		"order_id":    order.ID,
		"total_cents": order.TotalCents,
		"item_count":  len(order.Items),
		"name":        user.Name,
	})

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"user_id":     user.ID,
		"total_cents": order.TotalCents,
	}).Info("order placed")

	return PlaceResult{Order: order}, nil
}

// deductStock removes each cart line's quantity from stock, clamping at
// zero and recording the units actually removed.
func (s *Service) deductStock(cart domain.Cart) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(cart.Items))

	for _, line := range cart.Items {
		deducted, err := s.deductLine(line)
		if err != nil {
			s.restoreDeducted(items)
			return nil, err
		}

		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			Qty:         line.Qty,
			DeductedQty: deducted,
			Product:     line.Product,
			AddedAt:     line.AddedAt,
		})
	}

	return items, nil
}

func (s *Service) deductLine(line domain.CartLine) (int, error) {
	var deducted int

	err := s.withSaveRetry(func() error {
		product, err := s.products.Get(line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				// The product left the catalog after it was added to
				// the cart. Nothing to deduct; the snapshot still
				// prices the line.
				deducted = 0
				return nil
			}
			return err
		}

		deducted = line.Qty
		if deducted > product.Stock {
			deducted = product.Stock
			if s.metrics != nil {
				s.metrics.RecordStockClamped()
			}
		}
		if deducted == 0 {
			return nil
		}

		product.Stock -= deducted
		product.UpdatedAt = time.Now().UTC()
		if err := s.products.Save(product); err != nil {
			if domain.IsVersionConflict(err) && s.metrics != nil {
				s.metrics.RecordStockConflict()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deduct stock for %s: %w", line.ProductID, err)
	}

	return deducted, nil
}

// restoreDeducted undoes stock removals of a checkout that failed halfway.
// Best effort: failures are logged, the caller already returns an error.
func (s *Service) restoreDeducted(items []domain.OrderItem) {
	for _, item := range items {
		if item.DeductedQty == 0 {
			continue
		}
		if err := s.restoreLine(item.ProductID, item.DeductedQty); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"product_id": item.ProductID,
				"qty":        item.DeductedQty,
			}).Error("failed to restore stock after aborted checkout")
		}
	}
}

func (s *Service) restoreLine(productID string, qty int) error {
	return s.withSaveRetry(func() error {
		product, err := s.products.Get(productID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil
			}
			return err
		}

		product.Stock += qty
		product.UpdatedAt = time.Now().UTC()
		return s.products.Save(product)
	})
}

// SetStatus transitions an order to newStatus. Only admins may call it.
// Entering cancelado restores the stock the checkout actually removed,
// exactly once: repeating the cancellation is a plain status write.
func (s *Service) SetStatus(_ context.Context, actor domain.User, orderID string, newStatus domain.OrderStatus, description, location string) (domain.Order, error) {
	if !actor.IsAdmin() {
		return domain.Order{}, domain.ErrForbidden
	}
	if !newStatus.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	updated, _, err := s.applyStatus(actor, orderID, newStatus, description, location)
	return updated, err
}

// applyStatus is the single transition path: CAS status write, cancellation
// compensation, ledger append, outbox event and mail. It returns the updated
// order and the appended ledger event.
func (s *Service) applyStatus(actor domain.User, orderID string, newStatus domain.OrderStatus, description, location string) (domain.Order, domain.TrackingEvent, error) {
	var (
		updated     domain.Order
		wasCanceled bool
	)

	err := s.withSaveRetry(func() error {
		order, err := s.orders.Get(orderID)
		if err != nil {
			return err
		}

		wasCanceled = order.Status == domain.OrderStatusCanceled

		order.Status = newStatus
		order.UpdatedAt = time.Now().UTC()
		if err := s.orders.Save(order); err != nil {
			return err
		}

		order.Version++
		updated = order
		return nil
	})
	if err != nil {
		return domain.Order{}, domain.TrackingEvent{}, err
	}

	// The CAS above decided the winner; only the transition into
	// cancelado compensates, and only if the order was not already there.
	if newStatus == domain.OrderStatusCanceled && !wasCanceled {
		for _, item := range updated.Items {
			if item.DeductedQty == 0 {
				continue
			}
			if err := s.restoreLine(item.ProductID, item.DeductedQty); err != nil {
				s.logger.WithError(err).WithFields(log.Fields{
					"order_id":   orderID,
					"product_id": item.ProductID,
					"qty":        item.DeductedQty,
				}).Error("failed to restore stock on cancellation")
			}
		}
		if s.metrics != nil {
			s.metrics.RecordOrderCanceled()
		}
	}

	if description == "" {
		description = domain.StatusDescription(newStatus)
	}
	event := domain.TrackingEvent{
		ID:          uuid.NewString(),
		OrderID:     updated.ID,
		Status:      newStatus,
		Description: description,
		Location:    location,
		Timestamp:   updated.UpdatedAt,
	}
	s.appendTracking(event)

	eventType := EventOrderStatusChanged
	if newStatus == domain.OrderStatusCanceled && !wasCanceled {
		eventType = EventOrderCanceled
	}
	s.enqueueEvent(eventType, updated)

	s.dispatchMail(updated.UserEmail, domain.MailTemplateOrderUpdated, map[string]any{
		"order_id":    updated.ID,
		"status":      string(newStatus),
		"description": description,
	})

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(newStatus))
	}

	s.logger.WithFields(log.Fields{
		"order_id": updated.ID,
		"status":   string(newStatus),
		"actor_id": actor.ID,
	}).Info("order status updated")

	return updated, event, nil
}

// AppendTrackingEvent adds a manual ledger entry. Admin only. An event whose
// status differs from the order's moves the order through the regular
// transition path, so the ledger and the order never disagree and a manual
// cancelado entry still compensates stock.
func (s *Service) AppendTrackingEvent(actor domain.User, orderID string, status domain.OrderStatus, description, location string) (domain.TrackingEvent, error) {
	if !actor.IsAdmin() {
		return domain.TrackingEvent{}, domain.ErrForbidden
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.TrackingEvent{}, err
	}

	if status == "" {
		status = order.Status
	}
	if !status.Valid() {
		return domain.TrackingEvent{}, domain.ErrInvalidStatus
	}

	if status != order.Status {
		_, event, err := s.applyStatus(actor, orderID, status, description, location)
		return event, err
	}

	if description == "" {
		description = domain.StatusDescription(status)
	}

	event := domain.TrackingEvent{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		Status:      status,
		Description: description,
		Location:    location,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.tracking.Append(event); err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("append tracking event: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordTrackingEvent()
	}

	return event, nil
}

// Get returns the order if the actor owns it or is an admin.
func (s *Service) Get(actor domain.User, orderID string) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !actor.CanViewOrder(order) {
		return domain.Order{}, domain.ErrForbidden
	}
	return order, nil
}

// List returns all orders for admins and the actor's own otherwise,
// newest first.
func (s *Service) List(actor domain.User) ([]domain.Order, error) {
	if actor.IsAdmin() {
		return s.orders.List()
	}
	return s.orders.ListByUser(actor.ID)
}

// GetTracking returns the order and its ledger, newest event first.
func (s *Service) GetTracking(actor domain.User, orderID string) (domain.Order, []domain.TrackingEvent, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	if !actor.CanViewOrder(order) {
		return domain.Order{}, nil, domain.ErrForbidden
	}

	events, err := s.tracking.ListByOrder(orderID)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("list tracking events: %w", err)
	}

	return order, events, nil
}

func (s *Service) appendTracking(event domain.TrackingEvent) {
	if err := s.tracking.Append(event); err != nil {
		s.logger.WithError(err).WithField("order_id", event.OrderID).Error("failed to append tracking event")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTrackingEvent()
	}
}

type orderEventPayload struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
	OccurredAt string `json:"occurred_at"`
}

func (s *Service) enqueueEvent(eventType string, order domain.Order) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(orderEventPayload{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalCents: order.TotalCents,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to encode outbox payload")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id":   order.ID,
			"event_type": eventType,
		}).Error("failed to enqueue outbox event")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

// dispatchMail sends asynchronously. Mail never blocks or fails the
// lifecycle operation that triggered it.
func (s *Service) dispatchMail(to string, template domain.MailTemplate, data map[string]any) {
	if s.mailer == nil || to == "" {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordEmailQueued()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := s.mailer.Send(ctx, to, template, data); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"to":       to,
				"template": string(template),
			}).Warn("failed to send mail")
			if s.metrics != nil {
				s.metrics.RecordEmailFailed()
			}
		}
	}()
}

func (s *Service) claimIdempotencyKey(key, requestHash string) (PlaceResult, bool, error) {
	_, err := s.idempotency.CreateProcessing(key, requestHash, time.Now().UTC().Add(idempotencyTTL))
	if err == nil {
		return PlaceResult{}, false, nil
	}

	switch {
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		record, getErr := s.idempotency.Get(key)
		if getErr != nil {
			return PlaceResult{}, false, fmt.Errorf("load idempotency record: %w", getErr)
		}
		if record.Status == domain.IdempotencyStatusDone {
			var stored struct {
				OrderID string `json:"order_id"`
			}
			if err := json.Unmarshal(record.ResponseBody, &stored); err != nil || stored.OrderID == "" {
				return PlaceResult{}, false, fmt.Errorf("decode stored checkout result: %w", err)
			}
			order, err := s.orders.Get(stored.OrderID)
			if err != nil {
				return PlaceResult{}, false, fmt.Errorf("load replayed order: %w", err)
			}
			return PlaceResult{Order: order, Replayed: true}, true, nil
		}
		// Processing or failed: the original request is still in flight
		// or already failed. Surface the conflict to the caller.
		return PlaceResult{}, false, domain.ErrIdempotencyKeyAlreadyExists
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return PlaceResult{}, false, err
	default:
		return PlaceResult{}, false, fmt.Errorf("claim idempotency key: %w", err)
	}
}

func (s *Service) settleIdempotencyKey(key string, result PlaceResult, checkoutErr error) {
	if checkoutErr != nil {
		body, _ := json.Marshal(map[string]string{"error": checkoutErr.Error()})
		if err := s.idempotency.MarkFailed(key, body, 0); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("failed to mark idempotency record failed")
		}
		return
	}

	body, _ := json.Marshal(map[string]string{"order_id": result.Order.ID})
	if err := s.idempotency.MarkDone(key, body, 201); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to mark idempotency record done")
	}
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

func checkoutRequestHash(userID, paymentMethod, shippingAddress string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + paymentMethod + "\x00" + shippingAddress))
	return hex.EncodeToString(sum[:])
}
