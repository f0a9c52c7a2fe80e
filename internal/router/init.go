package router

import (
	"github.com/rcmp123/marketplace/config"
	"github.com/rcmp123/marketplace/internal/container"
	"github.com/rcmp123/marketplace/internal/router/modules"
)

// InitModules adds every feature module built from c to the registry.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	r.Add(modules.NewHealthModule(c.HealthHandler))
	r.Add(modules.NewMarketplaceModule(c.MarketplaceHandler, c.Redis, modules.Limits{
		RegisterPerMinute: cfg.RateLimitRegister,
		ListingPerMinute:  cfg.RateLimitListing,
		MaxUploadBytes:    cfg.MaxUploadBytes,
	}))
	if cfg.ImageBackend == config.ImageBackendLocal {
		r.Add(modules.NewImagesModule(cfg.ImagesURLPrefix, cfg.ImagesDir))
	}
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
