package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/snippetvault/snippetvault/internal/app"
	"github.com/snippetvault/snippetvault/internal/handlers"
	"github.com/snippetvault/snippetvault/internal/middleware"
	"github.com/snippetvault/snippetvault/internal/monitoring"
	"github.com/snippetvault/snippetvault/internal/monitoring/checks"
	"github.com/snippetvault/snippetvault/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	gin.SetMode(ginMode(cfg.Server.Mode))

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.Origin))

	var audit *services.AuditService
	if cfg.Audit.Enabled {
		svc, err := services.NewAuditService(db)
		if err != nil {
			return nil, err
		}
		audit = svc
	}

	snippetSvc, err := services.NewSnippetService(db, audit)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	registerSnippetRoutes(api, handlers.NewSnippetHandler(snippetSvc))

	health := monitoring.NewHealthManager()
	health.RegisterReadiness(checks.Database(db, cfg.Monitoring.Health.Timeout))
	registerHealthRoutes(r, cfg, health)

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func ginMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "debug", "development":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
