package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/infra/config"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/transport/http/handlers"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/transport/http/middleware"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

const refreshIPMultiplier = 5

// PrincipalService parses bearer tokens and re-issues them.
type PrincipalService interface {
	middleware.PrincipalParser
	handlers.PrincipalRefresher
}

var (
	_ handlers.Catalog            = (*usecase.CatalogService)(nil)
	_ handlers.CartCoordinator    = (*usecase.CartService)(nil)
	_ handlers.RoleAdministration = (*usecase.RoleService)(nil)
	_ PrincipalService            = (*usecase.PrincipalService)(nil)
	_ middleware.Authorizer       = (*usecase.AuthorizationGate)(nil)
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Catalog    handlers.Catalog
	Cart       handlers.CartCoordinator
	Roles      handlers.RoleAdministration
	Principals PrincipalService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Authorizer  middleware.Authorizer
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Tracing())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if len(deps.Config.App.CORSOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSOrigins))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	if deps.Services.Catalog != nil {
		handlers.NewProductHandler(deps.Services.Catalog).RegisterPublicRoutes(api)
	}

	if deps.Services.Principals == nil || deps.Authorizer == nil {
		deps.Logger.Warn("principal service or authorizer missing; protected routes disabled")
		return r
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Principals)
	can := func(permission string) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Authorizer, permission)
	}

	protected := api.Group("")
	protected.Use(authMiddleware)

	authHandler := handlers.NewAuthHandler(deps.Services.Principals)
	refreshHandlers := append(buildRefreshMiddlewares(deps), authHandler.Refresh)
	protected.POST("/auth/refresh", refreshHandlers...)

	if deps.Services.Catalog != nil {
		productHandler := handlers.NewProductHandler(deps.Services.Catalog)
		protected.POST("/products", can(domain.PermissionAddProduct), productHandler.CreateProduct)
		protected.PUT("/products/:id", can(domain.PermissionEditProduct), productHandler.UpdateProduct)
		protected.DELETE("/products/:id", can(domain.PermissionDeleteProduct), productHandler.DeleteProduct)
		protected.POST("/categories", can(domain.PermissionAddProduct), productHandler.CreateCategory)
		protected.PUT("/categories/:id", can(domain.PermissionEditProduct), productHandler.UpdateCategory)
		protected.DELETE("/categories/:id", can(domain.PermissionDeleteProduct), productHandler.DeleteCategory)
	}

	if deps.Services.Cart != nil {
		cartHandler := handlers.NewCartHandler(deps.Services.Cart)
		protected.GET("/cart", cartHandler.GetCart)

		mutations := protected.Group("/cart/items")
		mutations.Use(can(domain.PermissionAddToCart))
		mutations.Use(buildCartMutationMiddlewares(deps)...)
		mutations.POST("", cartHandler.AddItem)
		mutations.PATCH("/:id", cartHandler.UpdateItem)
		mutations.DELETE("/:id", cartHandler.RemoveItem)
	}

	if deps.Services.Roles != nil {
		admin := protected.Group("")
		admin.Use(middleware.RequireRole(deps.Authorizer, domain.RoleAdmin))
		handlers.NewRoleHandler(deps.Services.Roles).RegisterRoutes(admin)
	}

	return r
}

func buildCartMutationMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil {
		return nil
	}

	limit := deps.Config.RateLimit.CartMaxMutations
	if limit <= 0 {
		return nil
	}

	rule := middleware.RateLimitRule{
		Name:       "cart_mutation",
		Limit:      limit,
		Window:     rateLimitWindow(deps.Config),
		Identifier: middleware.UserIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}

func buildRefreshMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil {
		return nil
	}

	limit := deps.Config.RateLimit.RefreshMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := rateLimitWindow(deps.Config)
	perUser := middleware.RateLimitRule{
		Name:       "auth_refresh_user",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.UserIdentifier(),
	}
	// Shared NATs put several users behind one address.
	perIP := middleware.RateLimitRule{
		Name:       "auth_refresh_ip",
		Limit:      limit * refreshIPMultiplier,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(perUser, perIP)}
}

func rateLimitWindow(cfg *config.AppConfig) time.Duration {
	if cfg.RateLimit.WindowDuration <= 0 {
		return time.Minute
	}
	return cfg.RateLimit.WindowDuration
}
