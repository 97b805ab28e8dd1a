package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/commercekit/shop-platform/internal/auth"
	"github.com/commercekit/shop-platform/internal/infra/config"
	"github.com/commercekit/shop-platform/internal/transport/http/handlers"
	"github.com/commercekit/shop-platform/internal/transport/http/middleware"
)

// Gateway fronts the platform services with a single entry point. It checks
// the bearer token at the edge using the shared signing secret and forwards
// the request, header intact, to the service that owns the path. Downstream
// services verify the token again; the gateway only keeps unauthenticated
// traffic away from them.
type Gateway struct {
	proxies map[string]*httputil.ReverseProxy
	logger  *zap.Logger
}

// New builds a gateway from the configured downstream base URLs.
func New(cfg config.GatewaySettings, logger *zap.Logger) (*Gateway, error) {
	targets := map[string]string{
		"users":    cfg.UsersURL,
		"orders":   cfg.OrdersURL,
		"products": cfg.ProductsURL,
	}

	g := &Gateway{
		proxies: make(map[string]*httputil.ReverseProxy, len(targets)),
		logger:  logger,
	}

	for segment, raw := range targets {
		target, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s upstream url %q: %w", segment, raw, err)
		}
		if target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("%s upstream url %q must be absolute", segment, raw)
		}
		g.proxies[segment] = g.newProxy(segment, target)
	}

	return g, nil
}

// Router assembles the gin engine for the gateway: the shared middleware
// chain, the edge gate, and a catch-all that forwards by first path segment.
func (g *Gateway) Router(cfg *config.AppConfig, codec *auth.Codec) *gin.Engine {
	if cfg != nil && cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(g.logger))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Subsystem: "gateway"}); err == nil {
		r.Use(metrics.Handler())
	} else if g.logger != nil {
		g.logger.Warn("http metrics disabled", zap.Error(err))
	}

	if cfg != nil && len(cfg.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.App.CORSAllowedOrigins))
	}

	// Anything not matched by a rule requires a valid token; the gateway
	// never consults ownership, that stays with the owning service.
	rules := []auth.Rule{
		{Method: http.MethodGet, Path: "/healthz", Access: auth.AccessPublic},
		{Method: http.MethodGet, Path: "/readyz", Access: auth.AccessPublic},
		{Method: http.MethodGet, Path: "/metrics", Access: auth.AccessPublic},
		{Method: http.MethodPost, Path: "/users/register", Access: auth.AccessPublic},
		{Method: http.MethodPost, Path: "/users/login", Access: auth.AccessPublic},
		{Method: http.MethodGet, Path: "/products", Access: auth.AccessPublic},
		{Method: http.MethodGet, Path: "/products/*rest", Access: auth.AccessPublic},
	}
	r.Use(middleware.Gate(codec, auth.NewGate(rules, nil)))

	healthHandler := handlers.NewHealthHandler()
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(g.forward)

	return r
}

// forward picks the upstream by the first path segment and hands the request
// to its reverse proxy.
func (g *Gateway) forward(c *gin.Context) {
	segment := firstSegment(c.Request.URL.Path)

	proxy, ok := g.proxies[segment]
	if !ok {
		c.JSON(http.StatusNotFound, handlers.NewErrorResponse(c, "no such route"))
		return
	}

	proxy.ServeHTTP(c.Writer, c.Request)
}

func (g *Gateway) newProxy(segment string, target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if g.logger != nil {
			g.logger.Error("upstream unreachable",
				zap.String("upstream", segment),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
	}

	return proxy
}

func firstSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
