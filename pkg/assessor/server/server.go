// Package server exposes the assessment pipelines over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/elevated-systems/renewable-assessor/pkg/assessor/config"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/electricitymaps"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/nrel"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/providers/windatlas"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/store"
	"github.com/elevated-systems/renewable-assessor/pkg/assessor/wind"
)

// PVProvider is the photovoltaic simulation and utility-rate source.
type PVProvider interface {
	GetPVWattsData(ctx context.Context, req nrel.PVWattsRequest) (*nrel.PVWattsOutput, error)
	GetUtilityRates(ctx context.Context, lat, lon float64) (*nrel.UtilityRatesOutput, error)
}

// CarbonProvider is the grid carbon-intensity source.
type CarbonProvider interface {
	GetCarbonIntensity(ctx context.Context, lat, lon float64) (*electricitymaps.CarbonIntensityData, error)
}

// WindProvider is the hourly wind-speed series source.
type WindProvider interface {
	GetWindSeries(ctx context.Context, req windatlas.SeriesRequest) ([]wind.RawObservation, error)
}

// AssessmentStore persists results and serves nearby recent ones for reuse.
type AssessmentStore interface {
	Save(kind string, lat, lon float64, result interface{}) error
	Nearby(kind string, lat, lon, radiusKm float64, maxAge time.Duration) (*store.Record, bool, error)
	Latest(limit int) ([]store.Record, error)
}

// Server wires the providers and pipelines to the HTTP routes.
type Server struct {
	cfg    config.Config
	pv     PVProvider
	carbon CarbonProvider
	wind   WindProvider
	store  AssessmentStore

	httpServer *http.Server
}

// New builds the server with its routes registered.
func New(cfg config.Config, pv PVProvider, carbon CarbonProvider, windProvider WindProvider, st AssessmentStore) *Server {
	s := &Server{
		cfg:    cfg,
		pv:     pv,
		carbon: carbon,
		wind:   windProvider,
		store:  st,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/healthz", s.handleHealthz)
	if cfg.Server.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/solar_assessment", s.handleSolarAssessment)
		api.POST("/wind_assessment", s.handleWindAssessment)
		api.GET("/assessments/recent", s.handleRecentAssessments)
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	klog.InfoS("Starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		klog.V(2).InfoS("Handled request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String())
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
