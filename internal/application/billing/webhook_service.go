package billing

import (
	"context"
	"fmt"

	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/ingest"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// WebhookService turns raw webhook payloads into persisted orders.
// It is success-biased: the caller always gets an acknowledgement, and
// internal failures are logged rather than returned, so the payment
// platform never retries or disables the webhook over our own errors.
type WebhookService struct {
	orderRepo  billing.OrderRepository
	invoiceCfg config.InvoiceConfig
	formURL    string
	logger     *zap.Logger
}

// NewWebhookService creates a new WebhookService. formURL, when set, is the
// base address of the buyer-details form included in order acknowledgements.
func NewWebhookService(
	orderRepo billing.OrderRepository,
	invoiceCfg config.InvoiceConfig,
	formURL string,
	logger *zap.Logger,
) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		orderRepo:  orderRepo,
		invoiceCfg: invoiceCfg,
		formURL:    formURL,
		logger:     logger,
	}
}

// Ingest normalizes a webhook payload and, when it carries an order,
// assigns an invoice number and persists it. Test pings and payloads with
// no recognizable order are acknowledged without creating anything.
func (s *WebhookService) Ingest(ctx context.Context, payload map[string]string) *WebhookResult {
	incoming, outcome := ingest.Normalize(payload)

	switch outcome {
	case ingest.OutcomeTestPing:
		s.logger.Info("webhook test ping received")
		return &WebhookResult{Outcome: outcome.String(), Message: "Webhook is working"}

	case ingest.OutcomeNoOrder:
		s.logger.Warn("webhook payload carried no recognizable order",
			zap.Int("fields", len(payload)))
		return &WebhookResult{Outcome: outcome.String(), Message: "No order data found"}
	}

	number, err := s.orderRepo.NextInvoiceNumber(ctx, s.invoiceCfg.Prefix, s.invoiceCfg.StartNumber)
	if err != nil {
		s.logger.Error("failed to issue invoice number", zap.Error(err))
		return &WebhookResult{Outcome: outcome.String(), Message: "Order received"}
	}

	order, err := billing.NewOrder(number, incoming)
	if err != nil {
		s.logger.Error("failed to build order from webhook payload",
			zap.String("invoiceNumber", number),
			zap.Error(err))
		return &WebhookResult{Outcome: outcome.String(), Message: "Order received"}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("failed to persist order",
			zap.String("invoiceNumber", number),
			zap.Error(err))
		return &WebhookResult{Outcome: outcome.String(), Message: "Order received"}
	}

	s.logger.Info("order created from webhook",
		zap.String("id", order.ID.String()),
		zap.String("invoiceNumber", order.InvoiceNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.String("externalRef", order.ExternalRef))

	result := &WebhookResult{
		Outcome:       outcome.String(),
		OrderID:       order.ID.String(),
		InvoiceNumber: order.InvoiceNumber,
		Message:       "Order created",
	}
	if s.formURL != "" {
		result.BuyerFormURL = fmt.Sprintf("%s?order_id=%s", s.formURL, order.ID.String())
	}
	return result
}
