package handler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	app "github.com/invoiceflow/backend/internal/application/billing"
	"go.uber.org/zap"
)

// WebhookHandler receives order notifications from the payment platform.
// It is deliberately forgiving: whatever arrives is acknowledged with 200
// so the platform never disables the webhook, and anything unusual is
// logged instead of rejected.
type WebhookHandler struct {
	BaseHandler
	webhookService *app.WebhookService
	logger         *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *app.WebhookService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// RegisterRoutes registers webhook routes on the given group
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tilda", h.Receive)
}

// Receive handles POST /webhook/tilda
func (h *WebhookHandler) Receive(c *gin.Context) {
	payload := h.extractPayload(c)

	result := h.webhookService.Ingest(c.Request.Context(), payload)
	h.Success(c, result)
}

// extractPayload flattens the request body into a string key-value map,
// accepting form, multipart and JSON bodies. An unreadable body yields an
// empty map rather than an error.
func (h *WebhookHandler) extractPayload(c *gin.Context) map[string]string {
	contentType := c.ContentType()

	if strings.Contains(contentType, "application/json") {
		return h.extractJSONPayload(c)
	}

	// ParseMultipartForm also parses url-encoded bodies and query params
	if err := c.Request.ParseMultipartForm(1 << 20); err != nil {
		if err := c.Request.ParseForm(); err != nil {
			h.logger.Warn("failed to parse webhook form body", zap.Error(err))
			return map[string]string{}
		}
	}

	payload := make(map[string]string, len(c.Request.Form))
	for key, values := range c.Request.Form {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	return payload
}

// extractJSONPayload flattens a JSON body into the same bracketed key
// convention the form encoding uses, so both arrive at the normalizer in
// one shape.
func (h *WebhookHandler) extractJSONPayload(c *gin.Context) map[string]string {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn("failed to parse webhook json body", zap.Error(err))
		return map[string]string{}
	}

	payload := make(map[string]string)
	for key, value := range body {
		flattenValue(payload, key, value)
	}
	return payload
}

// flattenValue writes a JSON value into the payload map under bracketed
// keys: {"payment": {"products": [{"name": "x"}]}} becomes
// payment[products][0][name] = "x".
func flattenValue(payload map[string]string, key string, value any) {
	switch v := value.(type) {
	case nil:
		payload[key] = ""
	case string:
		payload[key] = v
	case bool:
		payload[key] = strconv.FormatBool(v)
	case float64:
		payload[key] = formatJSONNumber(v)
	case map[string]any:
		for childKey, childValue := range v {
			flattenValue(payload, fmt.Sprintf("%s[%s]", key, childKey), childValue)
		}
	case []any:
		for i, childValue := range v {
			flattenValue(payload, fmt.Sprintf("%s[%d]", key, i), childValue)
		}
	default:
		payload[key] = fmt.Sprintf("%v", v)
	}
}

// formatJSONNumber renders a JSON number without a trailing ".0" for
// integral values
func formatJSONNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	b, _ := json.Marshal(f)
	return string(b)
}
