package billing

import (
	"time"

	"github.com/invoiceflow/backend/internal/domain/billing"
)

// =============================================================================
// Webhook DTOs
// =============================================================================

// WebhookResult is the acknowledgement returned to the webhook caller
type WebhookResult struct {
	Outcome       string `json:"outcome"`
	OrderID       string `json:"order_id,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	BuyerFormURL  string `json:"buyer_form_url,omitempty"`
	Message       string `json:"message,omitempty"`
}

// =============================================================================
// Order DTOs
// =============================================================================

// LineItemDTO is a single order line in API responses
type LineItemDTO struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Period   string `json:"period,omitempty"`
	Amount   string `json:"amount"`
}

// BuyerDTO is the buyer block in API responses
type BuyerDTO struct {
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	TaxSubID string `json:"tax_sub_id,omitempty"`
	Address  string `json:"address,omitempty"`
}

// OrderResponse is an order in API responses
type OrderResponse struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	Status        string        `json:"status"`
	Items         []LineItemDTO `json:"items"`
	TotalAmount   string        `json:"total_amount"`
	CustomerName  string        `json:"customer_name,omitempty"`
	CustomerEmail string        `json:"customer_email,omitempty"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	ExternalRef   string        `json:"external_ref,omitempty"`
	Buyer         *BuyerDTO     `json:"buyer,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// AttachBuyerRequest is a request to complete an order with buyer details
type AttachBuyerRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	TaxID    string `json:"tax_id" binding:"required,taxid"`
	TaxSubID string `json:"tax_sub_id" binding:"omitempty,len=9"`
	Address  string `json:"address" binding:"max=500"`
}

// EntityResponse is a registry lookup result in API responses
type EntityResponse struct {
	Found    bool   `json:"found"`
	Name     string `json:"name,omitempty"`
	TaxID    string `json:"tax_id,omitempty"`
	TaxSubID string `json:"tax_sub_id,omitempty"`
	RegNum   string `json:"reg_num,omitempty"`
	Address  string `json:"address,omitempty"`
}

// InvoiceFile is a rendered invoice document ready for download
type InvoiceFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// toOrderResponse converts a domain order to its API representation
func toOrderResponse(order *billing.Order) *OrderResponse {
	items := make([]LineItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItemDTO{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
			Period:   item.Period,
			Amount:   item.Amount.StringFixed(2),
		})
	}

	resp := &OrderResponse{
		ID:            order.ID.String(),
		InvoiceNumber: order.InvoiceNumber,
		Status:        order.Status.String(),
		Items:         items,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		ExternalRef:   order.ExternalRef,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.HasBuyer() {
		resp.Buyer = &BuyerDTO{
			Name:     order.Buyer.Name,
			TaxID:    order.Buyer.TaxID,
			TaxSubID: order.Buyer.TaxSubID,
			Address:  order.Buyer.Address,
		}
	}
	return resp
}
