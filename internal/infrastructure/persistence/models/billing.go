package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the database model for a persisted order. Line items are kept
// as a JSON document on the row; the order is always read and written as
// a whole.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceNumber string          `gorm:"uniqueIndex;not null"`
	Status        string          `gorm:"not null;default:'new'"`
	Items         string          `gorm:"type:text;not null"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ExternalRef   string
	BuyerName     string
	BuyerTaxID    string `gorm:"column:buyer_tax_id"`
	BuyerTaxSubID string `gorm:"column:buyer_tax_sub_id"`
	BuyerAddress  string
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// InvoiceSequence is the persisted per-prefix invoice number counter.
// NextNumber is the number the next invoice will receive.
type InvoiceSequence struct {
	Prefix     string `gorm:"primaryKey"`
	NextNumber int64  `gorm:"not null"`
}

// TableName specifies the table name for InvoiceSequence
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}
