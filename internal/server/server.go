// Package server is the HTTP shell around the grading core: an HTML
// calculator form plus a JSON API. It keeps no state between requests.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ZanzyTHEbar/cgpa-calculator/docs"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/config"
	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/frontend"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/middleware"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/monitoring"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/report"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/security"
)

const Version = "1.0.0"

// Server holds everything a request handler needs. All fields are
// read-only after New returns.
type Server struct {
	cfg    config.Config
	scale  grading.Scale
	policy grading.Policy

	logger   *monitoring.Logger
	metrics  *monitoring.Metrics
	memory   *monitoring.MemoryMonitor
	security *security.SecurityMiddleware
	gzip     *middleware.CompressionMiddleware
	pages    *frontend.Renderer
	reports  *report.Renderer

	engine *gin.Engine
}

// New validates cfg, loads the grade scale and builds the router.
func New(cfg config.Config, logger *monitoring.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	scale, err := grading.LoadScale(cfg.GradeScalePath)
	if err != nil {
		return nil, err
	}
	pages, err := frontend.Load()
	if err != nil {
		return nil, apperrors.NewConfigurationError("failed to load page templates", err)
	}

	metrics := monitoring.NewMetrics()

	secConfig := security.DefaultSecurityConfig()
	secConfig.AllowedOrigins = cfg.AllowedOrigins
	secConfig.MaxRequestsPerMin = cfg.MaxRequestsPerMin
	secConfig.RequestTimeout = cfg.RequestTimeout()

	s := &Server{
		cfg:      cfg,
		scale:    scale,
		policy:   policy,
		logger:   logger,
		metrics:  metrics,
		memory:   monitoring.NewMemoryMonitor(5*time.Minute, logger),
		security: security.NewSecurityMiddleware(secConfig, metrics),
		gzip:     middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
		pages:    pages,
		reports:  report.NewRenderer(),
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Security exposes the limiter set so the caller can schedule cleanup.
func (s *Server) Security() *security.SecurityMiddleware { return s.security }

// Memory returns the runtime sampler; the caller decides whether to Run it.
func (s *Server) Memory() *monitoring.MemoryMonitor { return s.memory }

// Metrics returns the server's counters.
func (s *Server) Metrics() *monitoring.Metrics { return s.metrics }

func (s *Server) routes() *gin.Engine {
	r := gin.New()

	r.Use(apperrors.RecoveryHandler())
	r.Use(monitoring.RequestIDMiddleware())
	r.Use(s.gzip.Handler())
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger, security.DefaultSecurityConfig().MaxBodyBytes))
	r.Use(apperrors.ErrorHandler())
	r.Use(security.SecurityHeadersMiddleware())
	r.Use(s.security.CORS())
	r.Use(s.security.RateLimitByIP)
	r.Use(s.security.LimitBody)
	r.Use(s.security.RequestTimeout)

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)

	pages := r.Group("/")
	pages.Use(security.CSPMiddleware())
	{
		pages.GET("/", s.handleIndex)
		pages.POST("/sgpa", s.handleSGPAForm)
		pages.POST("/cgpa", s.handleCGPAForm)
		pages.POST("/report", s.handleReportForm)
	}

	api := r.Group("/api/v1")
	{
		api.POST("/sgpa", s.handleSGPA)
		api.POST("/cgpa", s.handleCGPA)
		api.POST("/report", s.handleReport)
		api.GET("/scale", s.handleScale)
	}

	if s.cfg.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Scale     string `json:"scale"`
	Policy    string `json:"policy"`
}

// handleHealth godoc
// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
		Scale:     s.scale.Name,
		Policy:    string(s.policy),
	})
}

// handleMetrics godoc
// @Summary      Request and calculation counters
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /metrics [get]
func (s *Server) handleMetrics(c *gin.Context) {
	stats := s.metrics.GetStats()
	stats["compression"] = s.gzip.GetStats()
	stats["memory"] = s.memory.GetStats()
	c.JSON(http.StatusOK, stats)
}

// reject records a refused calculation and returns err for the caller.
func (s *Server) reject(kind string, entries int, err error) error {
	s.metrics.IncrementRejected()
	s.logger.CalculationRejected(kind, entries, err)
	return err
}
