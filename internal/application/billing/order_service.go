package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// lookupTimeout bounds the advisory registry call during buyer completion
// so a slow registry never blocks the user-facing request.
const lookupTimeout = 5 * time.Second

// OrderService handles order queries, buyer completion and registry lookups
type OrderService struct {
	orderRepo billing.OrderRepository
	lookup    billing.EntityLookup
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo billing.OrderRepository, lookup billing.EntityLookup, logger *zap.Logger) *OrderService {
	if lookup == nil {
		lookup = billing.NopLookup{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		lookup:    lookup,
		logger:    logger,
	}
}

// GetOrder returns a single order by id
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// ListOrders returns all orders, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *toOrderResponse(&orders[i]))
	}
	return responses, nil
}

// AttachBuyer completes an order with buyer details. Blank name and address
// are filled from the registry when the tax id resolves there; values the
// caller supplied are never overwritten.
func (s *OrderService) AttachBuyer(ctx context.Context, orderID uuid.UUID, req AttachBuyerRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	buyer := billing.Buyer{
		Name:     req.Name,
		TaxID:    req.TaxID,
		TaxSubID: req.TaxSubID,
		Address:  req.Address,
	}

	if buyer.TaxSubID == "" || buyer.Address == "" {
		if entity := s.lookupEntity(ctx, buyer.TaxID); entity != nil {
			if buyer.TaxSubID == "" {
				buyer.TaxSubID = entity.TaxSubID
			}
			if buyer.Address == "" {
				buyer.Address = entity.Address
			}
		}
	}

	if err := order.AttachBuyer(buyer); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("buyer attached to order",
		zap.String("id", order.ID.String()),
		zap.String("invoiceNumber", order.InvoiceNumber),
		zap.String("buyerTaxID", buyer.TaxID))

	return toOrderResponse(order), nil
}

// LookupEntity resolves a tax id against the registry. A tax id that does
// not resolve is a normal answer, not an error.
func (s *OrderService) LookupEntity(ctx context.Context, taxID string) (*EntityResponse, error) {
	if taxID == "" {
		return nil, shared.NewDomainError("INVALID_TAX_ID", "Tax id cannot be empty")
	}

	entity := s.lookupEntity(ctx, taxID)
	if entity == nil {
		return &EntityResponse{Found: false}, nil
	}
	return &EntityResponse{
		Found:    true,
		Name:     entity.Name,
		TaxID:    entity.TaxID,
		TaxSubID: entity.TaxSubID,
		RegNum:   entity.RegNum,
		Address:  entity.Address,
	}, nil
}

// lookupEntity wraps the advisory registry call: bounded timeout, errors
// logged and reported as no match.
func (s *OrderService) lookupEntity(ctx context.Context, taxID string) *billing.EntityInfo {
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	entity, err := s.lookup.LookupByTaxID(lookupCtx, taxID)
	if err != nil {
		s.logger.Warn("registry lookup failed",
			zap.String("taxID", taxID),
			zap.Error(err))
		return nil
	}
	return entity
}
