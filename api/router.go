package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/skulookup/api/handler"
	"github.com/use-agent/skulookup/api/middleware"
	"github.com/use-agent/skulookup/config"
	"github.com/use-agent/skulookup/lookup"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// The HTML form and the health endpoint sit outside auth. Background work
// started by the middleware stops when ctx is done.
func NewRouter(ctx context.Context, svc *lookup.Service, cfg *config.Config, engines []string, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.SetHTMLTemplate(handler.Templates)

	// Form UI
	r.GET("/", handler.Home())
	r.GET("/lookup", handler.LookupPage(svc))

	v1 := r.Group("/api/v1")

	// Health, no auth required.
	v1.GET("/health", handler.Health(svc, engines, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	// Products
	protected.GET("/products/:sku", handler.GetProduct(svc))
	protected.GET("/products/:sku/msrp", handler.GetMSRP(svc))
	protected.GET("/products/:sku/spec", handler.GetSpec(svc))

	// MSRP by URL
	protected.POST("/msrp", handler.PostMSRP(svc))

	// Index
	protected.GET("/index", handler.GetIndex(svc))
	protected.POST("/index/refresh", handler.RefreshIndex(svc))

	return r
}
