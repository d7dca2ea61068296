package billing

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the persistence interface for orders
type OrderRepository interface {
	// Create persists a new order
	Create(ctx context.Context, order *Order) error
	// Save updates an existing order
	Save(ctx context.Context, order *Order) error
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindAll returns all orders, newest first
	FindAll(ctx context.Context) ([]Order, error)
	// NextInvoiceNumber issues the next invoice number for the given prefix.
	// Numbers are strictly increasing per prefix and survive restarts; the
	// counter starts at startNumber for a prefix that has never issued one.
	NextInvoiceNumber(ctx context.Context, prefix string, startNumber int64) (string, error)
}
