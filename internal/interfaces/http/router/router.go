package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration. Webhook routes live outside the
// versioned API prefix because the payment platform's callback URL is fixed
// once configured.
type Router struct {
	engine            *gin.Engine
	apiVersion        string
	apiRegistrars     []RouteRegistrar
	webhookRegistrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g. "v1")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterAPI adds a registrar under the versioned API prefix
func (r *Router) RegisterAPI(registrar RouteRegistrar) *Router {
	r.apiRegistrars = append(r.apiRegistrars, registrar)
	return r
}

// RegisterWebhook adds a registrar under the /webhook prefix
func (r *Router) RegisterWebhook(registrar RouteRegistrar) *Router {
	r.webhookRegistrars = append(r.webhookRegistrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	webhook := r.engine.Group("/webhook")
	for _, registrar := range r.webhookRegistrars {
		registrar.RegisterRoutes(webhook)
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.apiRegistrars {
		registrar.RegisterRoutes(api)
	}
}
