package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/ingest"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements billing.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists a new order
func (r *GormOrderRepository) Create(ctx context.Context, order *billing.Order) error {
	model, err := toOrderModel(order)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// Save updates an existing order
func (r *GormOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	model, err := toOrderModel(order)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	var model models.Order
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return toDomainOrder(&model)
}

// FindAll returns all orders, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]billing.Order, error) {
	var rows []models.Order
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]billing.Order, 0, len(rows))
	for i := range rows {
		order, err := toDomainOrder(&rows[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// NextInvoiceNumber issues the next invoice number for a prefix.
// The counter row is created on first use and incremented with a single
// UPDATE inside one transaction, so concurrent callers are serialized on
// the row lock and never receive the same number.
func (r *GormOrderRepository) NextInvoiceNumber(ctx context.Context, prefix string, startNumber int64) (string, error) {
	var number int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.InvoiceSequence{Prefix: prefix, NextNumber: startNumber}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "prefix"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.InvoiceSequence{}).
			Where("prefix = ?", prefix).
			Update("next_number", gorm.Expr("next_number + 1")).Error; err != nil {
			return err
		}

		var seq models.InvoiceSequence
		if err := tx.Where("prefix = ?", prefix).First(&seq).Error; err != nil {
			return err
		}
		number = seq.NextNumber - 1
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue invoice number: %w", err)
	}

	return FormatInvoiceNumber(prefix, time.Now(), number), nil
}

// FormatInvoiceNumber formats an invoice number as PREFIX-YYYYMMDD-NNN.
// The counter part is zero-padded to three digits and widens beyond 999.
func FormatInvoiceNumber(prefix string, date time.Time, number int64) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, date.Format("20060102"), number)
}

// toOrderModel converts a domain order to its database model
func toOrderModel(order *billing.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}

	return &models.Order{
		ID:            order.ID,
		InvoiceNumber: order.InvoiceNumber,
		Status:        order.Status.String(),
		Items:         string(items),
		TotalAmount:   order.TotalAmount,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		ExternalRef:   order.ExternalRef,
		BuyerName:     order.Buyer.Name,
		BuyerTaxID:    order.Buyer.TaxID,
		BuyerTaxSubID: order.Buyer.TaxSubID,
		BuyerAddress:  order.Buyer.Address,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

// toDomainOrder converts a database model to a domain order
func toDomainOrder(model *models.Order) (*billing.Order, error) {
	var items []ingest.LineItem
	if model.Items != "" {
		if err := json.Unmarshal([]byte(model.Items), &items); err != nil {
			return nil, fmt.Errorf("failed to decode line items: %w", err)
		}
	}

	return &billing.Order{
		ID:            model.ID,
		InvoiceNumber: model.InvoiceNumber,
		Status:        billing.OrderStatus(model.Status),
		Items:         items,
		TotalAmount:   model.TotalAmount,
		CustomerName:  model.CustomerName,
		CustomerEmail: model.CustomerEmail,
		CustomerPhone: model.CustomerPhone,
		ExternalRef:   model.ExternalRef,
		Buyer: billing.Buyer{
			Name:     model.BuyerName,
			TaxID:    model.BuyerTaxID,
			TaxSubID: model.BuyerTaxSubID,
			Address:  model.BuyerAddress,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Ensure GormOrderRepository implements billing.OrderRepository
var _ billing.OrderRepository = (*GormOrderRepository)(nil)
