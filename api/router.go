package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serpscout/serpscout/api/handler"
	"github.com/serpscout/serpscout/api/middleware"
	"github.com/serpscout/serpscout/cache"
	"github.com/serpscout/serpscout/config"
	"github.com/serpscout/serpscout/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(ps *scraper.PageScraper, ss *scraper.SearchScraper, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/scrape/webpage", handler.Webpage(ps, cc))
	protected.POST("/scrape/search", handler.Search(ss))

	return r
}
