// Package httpapi exposes the radar pipeline and the prospect registry over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/usecase"
)

// RadarRunner executes one pipeline run.
type RadarRunner interface {
	Run(ctx context.Context, req usecase.RunRequest) (usecase.RunResult, error)
}

// ProspectService backs the registry endpoints.
type ProspectService interface {
	List(ctx context.Context) ([]domain.ProspectRecord, error)
	AddManual(ctx context.Context, candidate domain.ProspectCandidate) (domain.ProspectRecord, error)
	UpdateStatus(ctx context.Context, id, status string) (domain.ProspectRecord, error)
	Documents(ctx context.Context, window time.Duration) ([]domain.SourceDocument, error)
	Clients(ctx context.Context) ([]domain.ClientProfile, error)
}

// Deps holds everything the router needs.
type Deps struct {
	Radar       RadarRunner
	Prospects   ProspectService
	RunTimeout  time.Duration
	CORSOrigins []string
	Logger      *slog.Logger
}

// Server holds the state for the REST API server.
type Server struct {
	radar      RadarRunner
	prospects  ProspectService
	runTimeout time.Duration
	logger     *slog.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new Server instance.
func NewServer(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}))
	}

	s := &Server{
		radar:      deps.Radar,
		prospects:  deps.Prospects,
		runTimeout: deps.RunTimeout,
		logger:     logger,
		router:     r,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/v1")
	{
		v1.GET("/prospects", s.handleListProspects)
		v1.POST("/prospects", s.handleAddProspect)
		v1.POST("/prospects/radar", s.handleRunRadar)
		v1.PATCH("/prospects/:id/status", s.handleUpdateStatus)
		v1.GET("/documents", s.handleDocuments)
		v1.GET("/clients", s.handleClients)
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
