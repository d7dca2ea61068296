package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceflow/backend/internal/domain/ingest"
	"github.com/invoiceflow/backend/internal/domain/shared"
)

func testIncoming() *ingest.IncomingOrder {
	return &ingest.IncomingOrder{
		Items: []ingest.LineItem{
			{Name: "Размещение", Quantity: 1, Price: decimal.NewFromInt(1000), Amount: decimal.NewFromInt(1000)},
		},
		TotalAmount:   decimal.NewFromInt(1000),
		CustomerName:  "Иван Петров",
		CustomerEmail: "ivan@example.com",
	}
}

func TestNewOrder(t *testing.T) {
	order, err := NewOrder("СЧ-20260830-001", testIncoming())
	require.NoError(t, err)

	assert.Equal(t, OrderStatusNew, order.Status)
	assert.Equal(t, "СЧ-20260830-001", order.InvoiceNumber)
	assert.Len(t, order.Items, 1)
	assert.False(t, order.HasBuyer())
}

func TestNewOrder_Invalid(t *testing.T) {
	_, err := NewOrder("", testIncoming())
	assert.Error(t, err)

	empty := &ingest.IncomingOrder{TotalAmount: decimal.NewFromInt(100)}
	_, err = NewOrder("СЧ-20260830-001", empty)
	assert.Error(t, err)

	zeroTotal := testIncoming()
	zeroTotal.TotalAmount = decimal.Zero
	_, err = NewOrder("СЧ-20260830-001", zeroTotal)
	assert.Error(t, err)
}

func TestOrder_AttachBuyer(t *testing.T) {
	order, err := NewOrder("СЧ-20260830-001", testIncoming())
	require.NoError(t, err)

	err = order.AttachBuyer(Buyer{Name: "ООО Ромашка", TaxID: "7701234567", TaxSubID: "770101001", Address: "г. Москва"})
	require.NoError(t, err)

	assert.Equal(t, OrderStatusFilled, order.Status)
	assert.True(t, order.HasBuyer())

	// Re-attaching updates the details without reverting the status.
	err = order.AttachBuyer(Buyer{Name: "ООО Лютик", TaxID: "7707654321"})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusFilled, order.Status)
	assert.Equal(t, "ООО Лютик", order.Buyer.Name)
}

func TestOrder_AttachBuyer_Validation(t *testing.T) {
	order, _ := NewOrder("СЧ-20260830-001", testIncoming())

	assert.Error(t, order.AttachBuyer(Buyer{TaxID: "7701234567"}))
	assert.Error(t, order.AttachBuyer(Buyer{Name: "ООО Ромашка"}))
	assert.Equal(t, OrderStatusNew, order.Status)
}

func TestOrder_MarkRendered(t *testing.T) {
	order, _ := NewOrder("СЧ-20260830-001", testIncoming())

	// Rendering before buyer details exist is a precondition violation.
	err := order.MarkRendered()
	assert.ErrorIs(t, err, shared.ErrBuyerDetailsRequired)
	assert.Equal(t, OrderStatusNew, order.Status)

	require.NoError(t, order.AttachBuyer(Buyer{Name: "ООО Ромашка", TaxID: "7701234567"}))
	require.NoError(t, order.MarkRendered())
	assert.Equal(t, OrderStatusRendered, order.Status)

	// Rendering again keeps the terminal status.
	require.NoError(t, order.MarkRendered())
	assert.Equal(t, OrderStatusRendered, order.Status)
}

func TestOrderStatus_Transitions(t *testing.T) {
	assert.True(t, OrderStatusNew.CanTransitionTo(OrderStatusFilled))
	assert.True(t, OrderStatusFilled.CanTransitionTo(OrderStatusRendered))

	assert.False(t, OrderStatusNew.CanTransitionTo(OrderStatusRendered))
	assert.False(t, OrderStatusFilled.CanTransitionTo(OrderStatusNew))
	assert.False(t, OrderStatusRendered.CanTransitionTo(OrderStatusFilled))
	assert.False(t, OrderStatusRendered.CanTransitionTo(OrderStatusNew))
}
