// Package server exposes the UV and wind tools over HTTP for a local upload UI.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KaramelBytes/uvmed-cli/internal/config"
	"github.com/KaramelBytes/uvmed-cli/internal/observability"
	"github.com/KaramelBytes/uvmed-cli/internal/pipeline"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	// formOverhead is the body allowance for multipart framing and form fields.
	formOverhead = 1 << 20
)

// Server handles uploads. Each request is processed on its own; nothing is
// kept between requests.
type Server struct {
	cfg      *config.Global
	logger   *slog.Logger
	metrics  *observability.Metrics
	pipeline *pipeline.Pipeline
}

// New creates a Server. metrics may be nil, in which case a private set is created.
func New(cfg *config.Global, logger *slog.Logger, metrics *observability.Metrics) *Server {
	if logger == nil {
		logger = observability.Discard()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		pipeline: pipeline.New(logger, metrics),
	}
}

// Router wires up the HTTP handlers.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = s.maxUpload()
	router.Use(
		gin.Recovery(),
		requestID(),
		accessLog(s.logger),
		errorHandlingMiddleware(s.logger),
	)

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := router.Group("/api", s.limitBody())
	{
		api.GET("/skin-types", s.SkinTypes)
		api.POST("/uv/convert", s.ConvertUV)
		api.POST("/wind/rose", s.WindRose)
	}
	return router
}

// HTTPServer returns a configured http.Server listening on cfg.ServerAddr.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}
}

func (s *Server) maxUpload() int64 {
	mb := s.cfg.MaxUploadMB
	if mb <= 0 {
		mb = config.Defaults().MaxUploadMB
	}
	return int64(mb) << 20
}

// limitBody caps request bodies at the upload limit plus room for the other
// form fields, so oversized uploads stop while they are read.
func (s *Server) limitBody() gin.HandlerFunc {
	limit := s.maxUpload() + formOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abortWithError(c, s.errTooLarge(nil))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(c *gin.Context, logger *slog.Logger) *slog.Logger {
	return logger.With(requestIDKey, c.GetString(requestIDKey))
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		requestLogger(c, logger).Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
