package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/api/handler"
	"github.com/use-agent/pagegrab/api/middleware"
	"github.com/use-agent/pagegrab/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	Crawl:   Auth (if enabled) → RateLimit → Concurrency
//
// /health stays outside auth for monitoring probes.
func NewRouter(cr handler.Crawler, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	// Health: no auth required.
	r.GET("/health", handler.Health(cr, cfg.Server.MaxConcurrent, startTime))

	// Crawl endpoints.
	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))
	protected.Use(middleware.Concurrency(cfg.Server.MaxConcurrent, cfg.Server.QueueWait))

	protected.POST("/crawl", handler.Crawl(cr, cfg.Server.Env))
	protected.POST("/crawlHtml", handler.CrawlHTML(cr, cfg.Server.Env))

	return r
}
