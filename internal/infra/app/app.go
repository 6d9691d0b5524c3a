package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/config"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/database"
	kafkainfra "github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/kafka"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/logger"
	redisinfra "github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/redis"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/security"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/telemetry"
	postgresrepo "github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository/postgres"
	redisrepo "github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/repository/redis"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/transport/http/middleware"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/transport/http/routes"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

// Services exposes the wired use cases for tooling that runs outside the
// HTTP server.
type Services struct {
	Principals *usecase.PrincipalService
	Roles      *usecase.RoleService
	Catalog    *usecase.CatalogService
	Cart       *usecase.CartService
	Authorizer *usecase.AuthorizationGate
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	a.tracer = tracer

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		a.release(ctx)
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	a.pool = pool

	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		a.release(ctx)
		return nil, fmt.Errorf("init redis: %w", err)
	}
	a.redis = redisClient

	services, err := a.buildServices(cfg, log, a.buildEventPublisher(cfg, log))
	if err != nil {
		a.release(ctx)
		return nil, err
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		a.release(ctx)
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitWindow * 2,
	})

	a.engine = routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: middleware.NewRateLimiter(rateLimitStore, log),
		Metrics:     httpMetrics,
		Authorizer:  services.Authorizer,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Catalog:    services.Catalog,
			Cart:       services.Cart,
			Roles:      services.Roles,
			Principals: services.Principals,
		},
	})

	return a, nil
}

// NewServices wires the use cases against an existing pool and Redis client
// without starting the HTTP server. Events always go to the stub publisher,
// whatever the Kafka settings, so nothing is left for the caller to close
// beyond the pool and client it passed in.
func NewServices(cfg *config.AppConfig, pool *pgxpool.Pool, redisClient *redisinfra.Client, log *zap.Logger) (*Services, error) {
	a := &Application{cfg: cfg, logger: log, pool: pool, redis: redisClient}
	return a.buildServices(cfg, log, kafkainfra.NewStubPublisher(log))
}

func (a *Application) buildServices(cfg *config.AppConfig, log *zap.Logger, events port.EventPublisher) (*Services, error) {
	repos := postgresrepo.NewRepositories(a.pool)
	versions := redisrepo.NewClaimsVersionCache(a.redis.Client(), cfg.Redis.ClaimsVersionPrefix)

	codec, err := security.NewJWTManager(security.JWTOptions{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init jwt manager: %w", err)
	}

	domainMetrics, err := telemetry.NewDomainMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init domain metrics: %w", err)
	}

	augmenter := usecase.NewClaimsAugmenter(repos.Identity, repos.Permissions).WithLogger(log)

	return &Services{
		Principals: usecase.NewPrincipalService(repos.Identity, augmenter, codec, versions).WithLogger(log),
		Roles:      usecase.NewRoleService(repos.Roles, repos.Permissions, repos.Identity, versions, events).WithLogger(log),
		Catalog:    usecase.NewCatalogService(repos.Products, repos.Categories).WithLogger(log),
		Cart: usecase.NewCartService(repos.Inventory, repos.Carts, events).
			WithLogger(log).
			WithMetrics(domainMetrics),
		Authorizer: usecase.NewAuthorizationGate(repos.Identity, repos.Permissions).
			WithLogger(log).
			WithMetrics(domainMetrics),
	}, nil
}

func (a *Application) buildEventPublisher(cfg *config.AppConfig, log *zap.Logger) port.EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(log)
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(log)
	}

	a.producer = producer
	log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	return kafkainfra.NewEventPublisher(producer, cfg.App, log)
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.release(context.Background())

	srv := &http.Server{
		Addr:              a.cfg.App.Addr(),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting shop API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		timeout := a.cfg.App.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.logger.Info("shutting down shop API", zap.Duration("timeout", timeout))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// release closes whatever was opened, in reverse order of construction.
func (a *Application) release(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("failed to close kafka producer", zap.Error(err))
		}
		a.producer = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.tracer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("failed to flush traces", zap.Error(err))
		}
		a.tracer = nil
	}
}
