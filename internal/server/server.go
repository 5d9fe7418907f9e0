package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/commercial-manager/internal/errs"
	"github.com/matthieukhl/commercial-manager/internal/metrics"
	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/orders"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// OrderService is the part of orders.Manager the HTTP surface needs.
type OrderService interface {
	Create(ctx context.Context, in orders.Input) (int64, error)
	Get(ctx context.Context, id string) (*models.PurchaseOrder, error)
	List(ctx context.Context) ([]models.PurchaseOrder, error)
	Update(ctx context.Context, id string, in orders.Input) error
	Delete(ctx context.Context, id string) error
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Server is the HTTP API over the order manager.
type Server struct {
	router *gin.Engine
	db     Pinger
	orders OrderService
	log    zerolog.Logger
}

// NewServer creates a new server instance
func NewServer(db Pinger, svc OrderService, log zerolog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), metrics.GinMiddleware())

	server := &Server{
		router: router,
		db:     db,
		orders: svc,
		log:    log,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)

		api.GET("/orders", s.listOrders)
		api.GET("/orders/:id", s.getOrder)
		api.POST("/orders", s.createOrder)
		api.PUT("/orders/:id", s.updateOrder)
		api.DELETE("/orders/:id", s.deleteOrder)
	}
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.HealthCheck(ctx); err != nil {
		s.log.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "commercial-manager",
	})
}

func (s *Server) listOrders(c *gin.Context) {
	list, err := s.orders.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) createOrder(c *gin.Context) {
	var in orders.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.orders.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) updateOrder(c *gin.Context) {
	var in orders.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.orders.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteOrder(c *gin.Context) {
	if err := s.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail writes err with the status its kind maps to. Storage details stay
// in the log.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrReferenceNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrReferentialConflict), errors.Is(err, errs.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Start starts the HTTP server and stops it gracefully when ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
