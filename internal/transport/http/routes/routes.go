package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/core/domain"
	"github.com/commercekit/shop-platform/internal/infra/config"
	"github.com/commercekit/shop-platform/internal/transport/http/handlers"
	"github.com/commercekit/shop-platform/internal/transport/http/middleware"
	"github.com/commercekit/shop-platform/internal/usecase"
)

// Dependencies encapsulates the objects shared by every service router.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Codec    *auth.Codec
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Identity configures the Gin engine for the identity service.
func Identity(deps Dependencies, identity *usecase.IdentityService) *gin.Engine {
	rules := []auth.Rule{
		{Method: http.MethodPost, Path: "/users/register", Access: auth.AccessPublic},
		{Method: http.MethodPost, Path: "/users/login", Access: auth.AccessPublic},
	}

	r := newEngine(deps, "identity", auth.NewGate(systemRules(rules), nil))

	handler := handlers.NewIdentityHandler(identity, deps.Codec)
	handler.RegisterRoutes(r.Group("/users"))

	return r
}

// Orders configures the Gin engine for the orders service. Order detail
// routes admit the order's owner and administrators; ownership is resolved
// against the order store before the handler runs.
func Orders(deps Dependencies, orders *usecase.OrderService) *gin.Engine {
	admin := []domain.Role{domain.RoleAdmin}
	rules := []auth.Rule{
		{Method: http.MethodPost, Path: "/orders", Access: auth.AccessRoleIn, Roles: []domain.Role{domain.RoleUser, domain.RoleAdmin}},
		{Method: http.MethodGet, Path: "/orders", Access: auth.AccessAuthenticated},
		{Method: http.MethodGet, Path: "/orders/user/:username", Access: auth.AccessOwnerOrRole, Roles: admin, Owner: auth.OwnerFromPath, Param: "username"},
		{Method: http.MethodGet, Path: "/orders/:id", Access: auth.AccessOwnerOrRole, Roles: admin, Owner: auth.OwnerFromStore, Param: "id"},
		{Method: http.MethodPut, Path: "/orders/:id", Access: auth.AccessOwnerOrRole, Roles: admin, Owner: auth.OwnerFromStore, Param: "id"},
		{Method: http.MethodDelete, Path: "/orders/:id", Access: auth.AccessOwnerOrRole, Roles: admin, Owner: auth.OwnerFromStore, Param: "id"},
	}

	gate := auth.NewGate(systemRules(rules), auth.NewOwnershipResolver(orders))
	r := newEngine(deps, "orders", gate)

	handler := handlers.NewOrderHandler(orders)
	handler.RegisterRoutes(r.Group("/orders"))

	return r
}

// Products configures the Gin engine for the products service. Catalog reads
// are public; mutations require the ADMIN role.
func Products(deps Dependencies, products *usecase.ProductService) *gin.Engine {
	admin := []domain.Role{domain.RoleAdmin}
	rules := []auth.Rule{
		{Method: http.MethodGet, Path: "/products", Access: auth.AccessPublic},
		{Method: http.MethodGet, Path: "/products/:id", Access: auth.AccessPublic},
		{Method: http.MethodPost, Path: "/products", Access: auth.AccessRoleIn, Roles: admin},
		{Method: http.MethodPut, Path: "/products/:id", Access: auth.AccessRoleIn, Roles: admin},
		{Method: http.MethodDelete, Path: "/products/:id", Access: auth.AccessRoleIn, Roles: admin},
	}

	r := newEngine(deps, "products", auth.NewGate(systemRules(rules), nil))

	handler := handlers.NewProductHandler(products)
	handler.RegisterRoutes(r.Group("/products"))

	return r
}

// newEngine assembles the middleware chain and operational endpoints common
// to every service.
func newEngine(deps Dependencies, service string, gate *auth.Gate) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Subsystem: service}); err == nil {
		r.Use(metrics.Handler())
	} else if deps.Logger != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	}

	if deps.Config != nil && len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}

	r.Use(middleware.Gate(deps.Codec, gate))

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

	return r
}

// systemRules prepends public rules for the operational endpoints so probes
// and scrapers never need credentials.
func systemRules(rules []auth.Rule) []auth.Rule {
	system := []auth.Rule{
		{Method: http.MethodGet, Path: "/healthz", Access: auth.AccessPublic},
		{Method: http.MethodGet, Path: "/readyz", Access: auth.AccessPublic},
		{Method: http.MethodGet, Path: "/metrics", Access: auth.AccessPublic},
	}
	return append(system, rules...)
}
