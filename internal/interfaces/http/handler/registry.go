package handler

import (
	"github.com/gin-gonic/gin"
	app "github.com/invoiceflow/backend/internal/application/billing"
)

// RegistryHandler serves legal-entity registry lookups for the buyer form
type RegistryHandler struct {
	BaseHandler
	orderService *app.OrderService
}

// NewRegistryHandler creates a new RegistryHandler
func NewRegistryHandler(orderService *app.OrderService) *RegistryHandler {
	return &RegistryHandler{orderService: orderService}
}

// RegisterRoutes registers registry routes on the given group
func (h *RegistryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/registry/party", h.Lookup)
}

// Lookup handles GET /api/v1/registry/party?tax_id=...
// A tax id that does not resolve is a normal answer with found=false,
// never an HTTP error.
func (h *RegistryHandler) Lookup(c *gin.Context) {
	taxID := c.Query("tax_id")

	entity, err := h.orderService.LookupEntity(c.Request.Context(), taxID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entity)
}
