package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRegistrar struct {
	path string
}

func (s *stubRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(s.path, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()

	r := NewRouter(engine)
	r.RegisterAPI(&stubRegistrar{path: "/orders"})
	r.RegisterWebhook(&stubRegistrar{path: "/tilda"})
	r.Setup()

	tests := []struct {
		name string
		path string
		want int
	}{
		{"health endpoint", "/health", http.StatusOK},
		{"api route under version prefix", "/api/v1/orders", http.StatusOK},
		{"webhook route outside api prefix", "/webhook/tilda", http.StatusOK},
		{"unknown route", "/api/v2/orders", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_WithAPIVersion(t *testing.T) {
	engine := gin.New()

	r := NewRouter(engine, WithAPIVersion("v2"))
	r.RegisterAPI(&stubRegistrar{path: "/orders"})
	r.Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v2/orders", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
