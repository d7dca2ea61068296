package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoiceflow/backend/internal/domain/ingest"
	"github.com/invoiceflow/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	// OrderStatusNew is an order as received from the webhook
	OrderStatusNew OrderStatus = "new"
	// OrderStatusFilled is an order with buyer registration details attached
	OrderStatusFilled OrderStatus = "filled"
	// OrderStatusRendered is an order whose invoice document has been produced
	OrderStatusRendered OrderStatus = "rendered"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusFilled, OrderStatusRendered:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions are monotonic: a status never reverts.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusNew:
		return target == OrderStatusFilled
	case OrderStatusFilled:
		return target == OrderStatusRendered
	case OrderStatusRendered:
		return false
	}
	return false
}

// Buyer holds the buyer registration details filled in after the order
// arrives. TaxSubID is the secondary registration code some jurisdictions
// require (KPP); legal entities have one, sole proprietors do not.
type Buyer struct {
	Name     string
	TaxID    string
	TaxSubID string
	Address  string
}

// Order is a persisted customer order with an assigned invoice number.
// It is the durable form of ingest.IncomingOrder.
type Order struct {
	ID            uuid.UUID
	InvoiceNumber string
	Status        OrderStatus
	Items         []ingest.LineItem
	TotalAmount   decimal.Decimal
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ExternalRef   string
	Buyer         Buyer
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder creates an Order from a normalized incoming order and an
// assigned invoice number.
func NewOrder(invoiceNumber string, incoming *ingest.IncomingOrder) (*Order, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if incoming == nil || len(incoming.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order must have at least one line item")
	}
	if !incoming.TotalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Order total must be positive")
	}

	now := time.Now()
	return &Order{
		ID:            uuid.New(),
		InvoiceNumber: invoiceNumber,
		Status:        OrderStatusNew,
		Items:         incoming.Items,
		TotalAmount:   incoming.TotalAmount,
		CustomerName:  incoming.CustomerName,
		CustomerEmail: incoming.CustomerEmail,
		CustomerPhone: incoming.CustomerPhone,
		ExternalRef:   incoming.ExternalRef,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// HasBuyer reports whether buyer registration details have been attached
func (o *Order) HasBuyer() bool {
	return o.Buyer.Name != "" && o.Buyer.TaxID != ""
}

// AttachBuyer attaches buyer registration details. Attaching again updates
// the details; the status only ever advances.
func (o *Order) AttachBuyer(buyer Buyer) error {
	if buyer.Name == "" {
		return shared.NewDomainError("INVALID_BUYER_NAME", "Buyer name cannot be empty")
	}
	if buyer.TaxID == "" {
		return shared.NewDomainError("INVALID_BUYER_TAX_ID", "Buyer tax id cannot be empty")
	}

	o.Buyer = buyer
	if o.Status.CanTransitionTo(OrderStatusFilled) {
		o.Status = OrderStatusFilled
	}
	o.UpdatedAt = time.Now()
	return nil
}

// MarkRendered records that the invoice document has been produced.
// Rendering an already rendered order is a no-op.
func (o *Order) MarkRendered() error {
	if o.Status == OrderStatusRendered {
		return nil
	}
	if !o.HasBuyer() {
		return shared.ErrBuyerDetailsRequired
	}
	if !o.Status.CanTransitionTo(OrderStatusRendered) {
		return shared.ErrInvalidState
	}
	o.Status = OrderStatusRendered
	o.UpdatedAt = time.Now()
	return nil
}
