package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	app "github.com/invoiceflow/backend/internal/application/billing"
	domain "github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/invoiceflow/backend/internal/infrastructure/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCompanyConfig() config.CompanyConfig {
	return config.CompanyConfig{
		Name:        "ИП Иванов",
		NameFull:    "ИП Иванов Иван Иванович",
		TaxID:       "123456789012",
		RegNum:      "312345678901234",
		Address:     "г. Москва, ул. Примерная, д. 1",
		BankName:    "АО Банк",
		BankCode:    "044525225",
		Account:     "40802810000000000001",
		CorrAccount: "30101810400000000225",
	}
}

func newInvoiceService(repo *MockOrderRepository, renderer *MockPDFRenderer) *app.InvoiceService {
	return app.NewInvoiceService(
		repo,
		render.NewTemplateEngine(),
		renderer,
		testCompanyConfig(),
		config.InvoiceConfig{Prefix: "СЧ", StartNumber: 1, PaymentDays: 3},
		zap.NewNop(),
	)
}

func TestInvoiceService_RenderInvoice(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.AttachBuyer(domain.Buyer{
		Name:  "ООО Ромашка",
		TaxID: "7707083893",
	}))

	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	repo.On("Save", mock.Anything, order).Return(nil)

	renderer := new(MockPDFRenderer)
	renderer.On("Render", mock.Anything, mock.AnythingOfType("*render.RenderRequest")).
		Return(&render.RenderResult{PDFData: []byte("%PDF-1.4"), RenderDuration: 50 * time.Millisecond}, nil)

	svc := newInvoiceService(repo, renderer)

	file, err := svc.RenderInvoice(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "СЧ-20240307-001.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), file.Data)

	// status advanced and was persisted
	assert.Equal(t, domain.OrderStatusRendered, order.Status)
	repo.AssertExpectations(t)

	// the rendered html carries the invoice content
	req := renderer.Calls[0].Arguments.Get(1).(*render.RenderRequest)
	assert.Contains(t, req.HTML, "Счёт-оферта № СЧ-20240307-001")
	assert.Contains(t, req.HTML, "ООО Ромашка")
	assert.Contains(t, req.HTML, "Пять тысяч рублей 00 копеек")
}

func TestInvoiceService_RenderInvoice_RequiresBuyer(t *testing.T) {
	order := newTestOrder(t)

	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	renderer := new(MockPDFRenderer)

	svc := newInvoiceService(repo, renderer)

	_, err := svc.RenderInvoice(context.Background(), order.ID)
	assert.ErrorIs(t, err, shared.ErrBuyerDetailsRequired)
	renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestInvoiceService_RenderInvoice_NotFound(t *testing.T) {
	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	svc := newInvoiceService(repo, new(MockPDFRenderer))

	_, err := svc.RenderInvoice(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceService_RenderInvoice_Repeatable(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.AttachBuyer(domain.Buyer{Name: "ООО Ромашка", TaxID: "7707083893"}))
	require.NoError(t, order.MarkRendered())

	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	repo.On("Save", mock.Anything, order).Return(nil)

	renderer := new(MockPDFRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).
		Return(&render.RenderResult{PDFData: []byte("%PDF-1.4")}, nil)

	svc := newInvoiceService(repo, renderer)

	file, err := svc.RenderInvoice(context.Background(), order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, file.Data)
	assert.Equal(t, domain.OrderStatusRendered, order.Status)
}

func TestInvoiceService_RenderInvoice_RendererError(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.AttachBuyer(domain.Buyer{Name: "ООО Ромашка", TaxID: "7707083893"}))

	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	renderer := new(MockPDFRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).
		Return(nil, &render.RenderError{Code: render.ErrCodeRenderTimeout, Message: "rendering timed out"})

	svc := newInvoiceService(repo, renderer)

	_, err := svc.RenderInvoice(context.Background(), order.ID)
	require.Error(t, err)

	var renderErr *render.RenderError
	assert.ErrorAs(t, err, &renderErr)
	// the order stays filled when rendering fails
	assert.Equal(t, domain.OrderStatusFilled, order.Status)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
