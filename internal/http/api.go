package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "topstore/internal/errors"
	"topstore/internal/health"
	"topstore/internal/logger"
	"topstore/internal/ratelimit"
	"topstore/internal/storefront"
)

// Server JSON API магазина поверх состояния storefront
type Server struct {
	state   *storefront.State
	health  *health.Health
	limiter *ratelimit.TokenBucket
	log     *logrus.Entry
	router  *gin.Engine
}

// Option настройка сервера
type Option func(*Server)

// WithRateLimiter включает ограничение частоты запросов к /api
func WithRateLimiter(tb *ratelimit.TokenBucket) Option {
	return func(s *Server) { s.limiter = tb }
}

// NewServer собирает роутер. h может быть nil, тогда /health
// проверяет только хранилище.
func NewServer(st *storefront.State, h *health.Health, log *logger.Logger, opts ...Option) *Server {
	if h == nil {
		h = health.New()
		h.AddChecker(health.NewStoreChecker(st.Store))
	}
	s := &Server{
		state:  st,
		health: h,
		log:    logger.OrDiscard(log).Component("http"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes(log)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	m := s.state.Metrics
	cfg := s.state.Config
	if m != nil {
		router.Use(m.HTTPMiddleware())
		if cfg.Metrics.Enabled {
			path := cfg.Metrics.Path
			if path == "" {
				path = "/metrics"
			}
			router.GET(path, gin.WrapH(m.Handler()))
		}
	}
	router.GET("/health", s.health.Handler())

	api := router.Group("/api")
	if s.limiter != nil {
		api.Use(ratelimit.NewMiddleware(s.limiter, log).Handler())
	}

	api.GET("/products", s.listProducts)
	api.GET("/products/:id", s.getProduct)

	api.GET("/cart", s.getCart)
	api.POST("/cart/items", s.addCartItem)
	api.PATCH("/cart/items/:cartId", s.updateCartItem)
	api.DELETE("/cart/items/:cartId", s.removeCartItem)
	api.DELETE("/cart", s.clearCart)

	co := api.Group("/checkout")
	co.GET("", s.getCheckout)
	co.PUT("/details", s.updateDetails)
	co.POST("/delivery", s.selectDelivery)
	co.POST("/confirm", s.confirmDetails)
	co.POST("/back", s.back)
	co.POST("/pay", s.pay)
	co.POST("/reset", s.resetCheckout)

	admin := api.Group("/admin")
	admin.GET("/stats", s.stats)
	admin.GET("/orders", s.listOrders)
	admin.PATCH("/orders/:id/status", s.updateOrderStatus)
	admin.POST("/products", s.createProduct)
	admin.PUT("/products/:id", s.updateProduct)
	admin.DELETE("/products/:id", s.deleteProduct)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("Request failed")
			return
		}
		entry.Debug("Request handled")
	}
}

// errorResponse тело ответа с ошибкой
type errorResponse struct {
	Error *apperrors.AppError `json:"error"`
}

func (s *Server) renderError(c *gin.Context, err error) {
	appErr, status := s.appError(c, err)
	c.AbortWithStatusJSON(status, errorResponse{Error: appErr})
}

// appError приводит ошибку к AppError и HTTP статусу, 5xx логируются
func (s *Server) appError(c *gin.Context, err error) (*apperrors.AppError, int) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrorTypeInternal, "internal error")
	}
	status := apperrors.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.Request.URL.Path).Error("Request error")
	}
	return appErr, status
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.renderError(c, apperrors.WrapWithCode(err, apperrors.ErrorTypeValidation, "invalid request body", "INVALID_BODY"))
}
