package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/core/port"
	"github.com/commercekit/shop-platform/internal/infra/catalog"
	"github.com/commercekit/shop-platform/internal/infra/config"
	"github.com/commercekit/shop-platform/internal/infra/database"
	kafkainfra "github.com/commercekit/shop-platform/internal/infra/kafka"
	"github.com/commercekit/shop-platform/internal/infra/logger"
	redisinfra "github.com/commercekit/shop-platform/internal/infra/redis"
	postgresrepo "github.com/commercekit/shop-platform/internal/repository/postgres"
	redisrepo "github.com/commercekit/shop-platform/internal/repository/redis"
	"github.com/commercekit/shop-platform/internal/transport/http/gateway"
	"github.com/commercekit/shop-platform/internal/transport/http/routes"
	"github.com/commercekit/shop-platform/internal/usecase"
)

// Application packages a configured service: its HTTP engine plus the
// infrastructure handles it must release on shutdown.
type Application struct {
	name     string
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

// NewIdentity wires the identity service: the credential store, the token
// issuer, and the bootstrap admin seed.
func NewIdentity(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	publisher, producer := newPublisher(cfg, "identity-service", log)

	users := postgresrepo.NewUserRepository(pool)
	identity := usecase.NewIdentityService(users, codec, nil, publisher, log)

	if err := identity.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed admin account: %w", err)
	}

	engine := routes.Identity(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Codec:    codec,
		Database: pool,
	}, identity)

	return &Application{
		name:     "identity-service",
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		producer: producer,
	}, nil
}

// NewOrders wires the orders service: the order store, the product catalog
// client used to validate line items, and the event publisher.
func NewOrders(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	publisher, producer := newPublisher(cfg, "orders-service", log)

	products := catalog.NewClient(cfg.Services.ProductsURL, cfg.Services.HTTPTimeout, log)
	orders := usecase.NewOrderService(postgresrepo.NewOrderRepository(pool), products, publisher, log)

	engine := routes.Orders(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Codec:    codec,
		Database: pool,
	}, orders)

	return &Application{
		name:     "orders-service",
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		producer: producer,
	}, nil
}

// NewProducts wires the products service: the catalog store, its Redis
// read-through cache, and the event publisher.
func NewProducts(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	publisher, producer := newPublisher(cfg, "products-service", log)

	cache := redisrepo.NewProductCache(redisClient.Client(), cfg.Redis.ProductPrefix, cfg.Redis.ProductTTL)
	products := usecase.NewProductService(postgresrepo.NewProductRepository(pool), cache, publisher, log)

	engine := routes.Products(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Codec:    codec,
		Database: pool,
		Cache:    redisClient,
	}, products)

	return &Application{
		name:     "products-service",
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

// NewGateway wires the edge gateway. It holds no storage; only the shared
// signing secret for edge verification and the downstream base URLs.
func NewGateway(_ context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(cfg.Gateway, log)
	if err != nil {
		return nil, fmt.Errorf("init gateway: %w", err)
	}

	return &Application{
		name:   "gateway",
		cfg:    cfg,
		engine: gw.Router(cfg, codec),
		logger: log,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully
// and releases every infrastructure handle.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting service",
		zap.String("service", a.name),
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func newCodec(cfg *config.AppConfig) (*auth.Codec, error) {
	codec, err := auth.NewCodec(cfg.Auth.Secret, cfg.Auth.TokenTTL, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}
	return codec, nil
}

// newPublisher returns a Kafka-backed publisher when brokers are configured
// and the stub otherwise. The producer is returned alongside so Run can
// close it.
func newPublisher(cfg *config.AppConfig, service string, log *zap.Logger) (port.EventPublisher, *kafkainfra.Producer) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(log), nil
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(log), nil
	}

	appCfg := cfg.App
	appCfg.Name = service
	log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	return kafkainfra.NewEventPublisher(producer, appCfg, log), producer
}
