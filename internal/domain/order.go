package domain

import "time"

// OrderStatus is the lifecycle state of an order. The values are the
// storefront's customer-facing Spanish states.
type OrderStatus string

const (
	// OrderStatusPending: order placed, awaiting confirmation.
	OrderStatusPending OrderStatus = "pendiente"
	// OrderStatusConfirmed: order confirmed and being prepared.
	OrderStatusConfirmed OrderStatus = "confirmado"
	// OrderStatusProcessing: order being processed for shipment.
	OrderStatusProcessing OrderStatus = "procesando"
	// OrderStatusShipped: order handed to the carrier.
	OrderStatusShipped OrderStatus = "enviado"
	// OrderStatusDelivered: order delivered to the customer.
	OrderStatusDelivered OrderStatus = "entregado"
	// OrderStatusCanceled: order canceled; stock is restored exactly once.
	OrderStatusCanceled OrderStatus = "cancelado"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// StatusDescription returns the default customer-facing description for a
// tracking event of the given status.
func StatusDescription(status OrderStatus) string {
	switch status {
	case OrderStatusPending:
		return "Pedido recibido y en espera de confirmación"
	case OrderStatusConfirmed:
		return "Pedido confirmado y en proceso de preparación"
	case OrderStatusProcessing:
		return "Pedido en preparación"
	case OrderStatusShipped:
		return "Pedido enviado a la dirección de entrega"
	case OrderStatusDelivered:
		return "Pedido entregado satisfactoriamente"
	case OrderStatusCanceled:
		return "Pedido cancelado"
	default:
		return "Estado actualizado"
	}
}

// OrderItem is one snapshotted cart line inside an order. DeductedQty is the
// number of units the checkout decrement actually removed from stock; a
// concurrent sell-out can clamp the decrement below Qty, and cancellation
// restores DeductedQty rather than Qty so compensation never over-restores.
type OrderItem struct {
	ProductID   string
	Qty         int
	DeductedQty int
	Product     Product
	AddedAt     time.Time
}

// Order is an immutable snapshot of a cart at checkout time. Only Status,
// UpdatedAt and Version change afterwards; orders are never deleted.
type Order struct {
	ID              string
	UserID          string
	UserEmail       string
	Items           []OrderItem
	TotalCents      int64
	PaymentMethod   string
	ShippingAddress string
	Status          OrderStatus
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidateInvariants checks the basic order invariants and returns every
// violation found.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalCents < 0 {
		errs = append(errs, ErrTotalNegative)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrInvalidStatus)
	}

	// The total must match the snapshotted lines: qty * add-time price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Product.PriceCents < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.Product.PriceCents
	}
	if calc != o.TotalCents {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
