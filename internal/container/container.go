package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/config"
	"github.com/rcmp123/marketplace/internal/application"
	"github.com/rcmp123/marketplace/internal/domain/repository"
	"github.com/rcmp123/marketplace/internal/infrastructure/imagestore"
	"github.com/rcmp123/marketplace/internal/infrastructure/migrations"
	pginfra "github.com/rcmp123/marketplace/internal/infrastructure/postgres"
	"github.com/rcmp123/marketplace/internal/infrastructure/sqlite"
	handlers "github.com/rcmp123/marketplace/internal/interface/http"
	"github.com/rcmp123/marketplace/pkg/helpers"
)

// Container holds the components constructed once at startup and shared by
// the router modules. Build it with New and release it with Close.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Store     repository.Store
	Images    repository.ImageStore
	Redis     *redis.Client
	Publisher *helpers.RabbitPublisher

	Users    *application.UserService
	Listings *application.ListingService

	MarketplaceHandler *handlers.MarketplaceHandler
	HealthHandler      *handlers.HealthHandler

	closers []func()
}

// New connects every backing service named by cfg, applies migrations and wires the services.
// Optional integrations (Redis, RabbitMQ) are skipped when unconfigured.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Store = store
	c.closers = append(c.closers, store.Close)

	images, err := openImages(ctx, cfg, logger, c)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if c.Redis != nil {
		rdb := c.Redis
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			// limiter fails open, so an unreachable redis only disables limiting
			helpers.LogWarn(logger, "redis unreachable; rate limiting degraded", err, logrus.Fields{"addr": cfg.RedisAddr})
		}
	}

	var events application.EventPublisher
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable; events disabled", err, nil)
		} else {
			c.Publisher = pub
			c.closers = append(c.closers, pub.Close)
			events = pub
		}
	}

	c.Images = images
	c.Users = application.NewUserService(store, events, logger)
	c.Listings = application.NewListingService(store, images, events, logger)
	c.MarketplaceHandler = handlers.NewMarketplaceHandler(c.Users, c.Listings, logger)
	c.HealthHandler = handlers.NewHealthHandler(store)
	return c, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
			AppName:     cfg.AppName,
		})
		if err != nil {
			return nil, err
		}
		if err := migrations.UpPostgres(cfg.PostgresDSN(), logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return pginfra.NewStore(pool), nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.UpSQLite(db, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqlite.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func openImages(ctx context.Context, cfg *config.Config, logger *logrus.Logger, c *Container) (repository.ImageStore, error) {
	switch cfg.ImageBackend {
	case config.ImageBackendLocal:
		return imagestore.NewLocal(cfg.ImagesDir, cfg.ImagesURLPrefix)
	case config.ImageBackendGCS:
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		c.closers = append(c.closers, func() { _ = client.Close() })
		return imagestore.NewGCS(client, cfg.GCSBucket), nil
	case config.ImageBackendS3:
		return imagestore.NewS3(ctx, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL, logger)
	default:
		return nil, fmt.Errorf("unsupported IMAGE_BACKEND %q", cfg.ImageBackend)
	}
}

// Close releases everything New opened, in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
