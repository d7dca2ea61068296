package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/invoiceflow/backend/internal/infrastructure/render"
	"go.uber.org/zap"
)

// InvoiceService renders invoice documents for completed orders
type InvoiceService struct {
	orderRepo      billing.OrderRepository
	templateEngine *render.TemplateEngine
	pdfRenderer    render.PDFRenderer
	company        config.CompanyConfig
	invoiceCfg     config.InvoiceConfig
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	orderRepo billing.OrderRepository,
	templateEngine *render.TemplateEngine,
	pdfRenderer render.PDFRenderer,
	company config.CompanyConfig,
	invoiceCfg config.InvoiceConfig,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		orderRepo:      orderRepo,
		templateEngine: templateEngine,
		pdfRenderer:    pdfRenderer,
		company:        company,
		invoiceCfg:     invoiceCfg,
		logger:         logger,
	}
}

// RenderInvoice produces the invoice PDF for an order. The order must have
// buyer details attached; rendering an already rendered order produces the
// document again.
func (s *InvoiceService) RenderInvoice(ctx context.Context, orderID uuid.UUID) (*InvoiceFile, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasBuyer() {
		return nil, shared.ErrBuyerDetailsRequired
	}

	html, err := render.BuildInvoiceHTML(s.templateEngine, s.buildInvoiceData(order))
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice html: %w", err)
	}

	result, err := s.pdfRenderer.Render(ctx, &render.RenderRequest{
		HTML:  html,
		Title: fmt.Sprintf("Счёт-оферта %s", order.InvoiceNumber),
	})
	if err != nil {
		s.logger.Error("invoice rendering failed",
			zap.String("id", order.ID.String()),
			zap.String("invoiceNumber", order.InvoiceNumber),
			zap.Error(err))
		return nil, err
	}

	// A rendered document is already in the caller's hands; a failed status
	// update must not discard it.
	if err := order.MarkRendered(); err != nil {
		s.logger.Warn("failed to mark order rendered",
			zap.String("id", order.ID.String()),
			zap.Error(err))
	} else if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.Warn("failed to save rendered order",
			zap.String("id", order.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("invoice rendered",
		zap.String("id", order.ID.String()),
		zap.String("invoiceNumber", order.InvoiceNumber),
		zap.Int("bytes", len(result.PDFData)),
		zap.Duration("duration", result.RenderDuration))

	return &InvoiceFile{
		Filename:    fmt.Sprintf("%s.pdf", order.InvoiceNumber),
		ContentType: "application/pdf",
		Data:        result.PDFData,
	}, nil
}

// buildInvoiceData assembles the template data for an order
func (s *InvoiceService) buildInvoiceData(order *billing.Order) render.InvoiceData {
	lines := make([]render.InvoiceLine, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.Name
		if item.Quantity > 1 {
			name = fmt.Sprintf("%s × %d", item.Name, item.Quantity)
		}
		lines = append(lines, render.InvoiceLine{
			Name:   name,
			Period: item.Period,
			Amount: item.Amount,
		})
	}

	paymentDays := s.invoiceCfg.PaymentDays
	if paymentDays <= 0 {
		paymentDays = 3
	}

	return render.InvoiceData{
		Number:    order.InvoiceNumber,
		IssueDate: order.CreatedAt,
		DueDate:   order.CreatedAt.Add(time.Duration(paymentDays) * 24 * time.Hour),
		Seller: render.SellerInfo{
			Name:        s.company.Name,
			NameFull:    s.company.NameFull,
			TaxID:       s.company.TaxID,
			TaxSubID:    s.company.TaxSubID,
			RegNum:      s.company.RegNum,
			Address:     s.company.Address,
			Phone:       s.company.Phone,
			Email:       s.company.Email,
			BankName:    s.company.BankName,
			BankCode:    s.company.BankCode,
			Account:     s.company.Account,
			CorrAccount: s.company.CorrAccount,
		},
		Buyer: render.BuyerInfo{
			Name:     order.Buyer.Name,
			TaxID:    order.Buyer.TaxID,
			TaxSubID: order.Buyer.TaxSubID,
			Address:  order.Buyer.Address,
		},
		Lines:       lines,
		TotalAmount: order.TotalAmount,
	}
}
