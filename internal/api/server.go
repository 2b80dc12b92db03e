// Package api exposes the verification pipeline over HTTP
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pverdier/veracite/internal/llm"
	"github.com/pverdier/veracite/internal/pipeline"
	"github.com/pverdier/veracite/internal/store"
)

// Server wires the HTTP routes to the pipeline. The repository and the
// reformulator are optional; the corresponding features degrade when they
// are absent.
type Server struct {
	checker      *pipeline.Checker
	repo         store.Repository
	reformulator llm.Provider
	logger       *slog.Logger
	engine       *gin.Engine
}

// NewServer builds the router. repo and reformulator may be nil.
func NewServer(checker *pipeline.Checker, repo store.Repository, reformulator llm.Provider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		checker:      checker,
		repo:         repo,
		reformulator: reformulator,
		logger:       logger.With("component", "api"),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.POST("/verify", s.handleVerify)
	engine.GET("/status", s.handleStatus)
	engine.POST("/clear-cache", s.handleClearCache)
	engine.POST("/improve-content", s.handleImproveContent)

	s.engine = engine
	return s
}

// Handler returns the underlying http.Handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on addr until the listener fails
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
