package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	app "github.com/invoiceflow/backend/internal/application/billing"
	domain "github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/ingest"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHandlerTestOrder(t *testing.T) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("СЧ-20240307-001", &ingest.IncomingOrder{
		Items: []ingest.LineItem{
			{Name: "Консультация", Quantity: 1, Price: decimal.NewFromInt(5000), Amount: decimal.NewFromInt(5000)},
		},
		TotalAmount: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	return order
}

func setupOrderRouter(repo *MockOrderRepository, lookup *MockEntityLookup) *gin.Engine {
	var entityLookup domain.EntityLookup
	if lookup != nil {
		entityLookup = lookup
	}
	svc := app.NewOrderService(repo, entityLookup, zap.NewNop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewOrderHandler(svc).RegisterRoutes(api)
	NewRegistryHandler(svc).RegisterRoutes(api)
	return engine
}

func TestOrderHandler_List(t *testing.T) {
	order := newHandlerTestOrder(t)

	repo := new(MockOrderRepository)
	repo.On("FindAll", mock.Anything).Return([]domain.Order{*order}, nil)

	engine := setupOrderRouter(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	orders := resp.Data.([]any)
	require.Len(t, orders, 1)
	assert.Equal(t, "СЧ-20240307-001", orders[0].(map[string]any)["invoice_number"])
}

func TestOrderHandler_Get(t *testing.T) {
	order := newHandlerTestOrder(t)

	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	engine := setupOrderRouter(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+order.ID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, order.ID.String(), data["id"])
	assert.Equal(t, "new", data["status"])
}

func TestOrderHandler_Get_InvalidID(t *testing.T) {
	engine := setupOrderRouter(new(MockOrderRepository), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "ERR_BAD_REQUEST", resp.Error.Code)
}

func TestOrderHandler_Get_NotFound(t *testing.T) {
	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	engine := setupOrderRouter(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestOrderHandler_AttachBuyer(t *testing.T) {
	order := newHandlerTestOrder(t)

	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	repo.On("Save", mock.Anything, order).Return(nil)

	lookup := new(MockEntityLookup)
	lookup.On("LookupByTaxID", mock.Anything, "7707083893").Return(nil, nil)

	engine := setupOrderRouter(repo, lookup)

	body := `{"name": "ООО Ромашка", "tax_id": "7707083893"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+order.ID.String()+"/buyer", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "filled", data["status"])
	repo.AssertExpectations(t)
}

func TestOrderHandler_AttachBuyer_ValidationFails(t *testing.T) {
	engine := setupOrderRouter(new(MockOrderRepository), nil)

	// tax_id too short for binding rules
	body := `{"name": "ООО Ромашка", "tax_id": "123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/buyer", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistryHandler_Lookup(t *testing.T) {
	lookup := new(MockEntityLookup)
	lookup.On("LookupByTaxID", mock.Anything, "7707083893").Return(&domain.EntityInfo{
		Name:  "ООО Ромашка",
		TaxID: "7707083893",
	}, nil)

	engine := setupOrderRouter(new(MockOrderRepository), lookup)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registry/party?tax_id=7707083893", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, true, data["found"])
	assert.Equal(t, "ООО Ромашка", data["name"])
}

func TestRegistryHandler_Lookup_NoMatch(t *testing.T) {
	lookup := new(MockEntityLookup)
	lookup.On("LookupByTaxID", mock.Anything, "0000000000").Return(nil, nil)

	engine := setupOrderRouter(new(MockOrderRepository), lookup)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registry/party?tax_id=0000000000", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	// no match is a normal answer
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, false, data["found"])
}

func TestRegistryHandler_Lookup_MissingTaxID(t *testing.T) {
	engine := setupOrderRouter(new(MockOrderRepository), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registry/party", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_VALIDATION", decodeResponse(t, w).Error.Code)
}
