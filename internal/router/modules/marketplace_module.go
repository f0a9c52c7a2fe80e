package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/rcmp123/marketplace/internal/interface/http"
	"github.com/rcmp123/marketplace/internal/interface/middleware"
)

// Limits are per client IP per minute; zero disables a limiter.
type Limits struct {
	RegisterPerMinute int
	ListingPerMinute  int
	MaxUploadBytes    int64
}

// MarketplaceModule wires registration and listing routes:
// POST /register, POST /create_listing, GET /listings/:id
type MarketplaceModule struct {
	Handler *handlers.MarketplaceHandler
	Redis   *redis.Client
	Limits  Limits
}

func NewMarketplaceModule(h *handlers.MarketplaceHandler, rdb *redis.Client, limits Limits) *MarketplaceModule {
	return &MarketplaceModule{Handler: h, Redis: rdb, Limits: limits}
}

func (m *MarketplaceModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, m.Limits.RegisterPerMinute, time.Minute, middleware.KeyByIPAndPath(), nil)
	listingLimiter := middleware.RateLimit(m.Redis, m.Limits.ListingPerMinute, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, middleware.BodyLimit(64<<10), m.Handler.Register)
	// multipart overhead on top of the image itself
	rg.POST("/create_listing", listingLimiter, middleware.BodyLimit(m.Limits.MaxUploadBytes+64<<10), m.Handler.CreateListing)
	rg.GET("/listings/:id", m.Handler.GetListing)
}
