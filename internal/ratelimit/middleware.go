package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"topstore/internal/logger"
)

// Middleware ограничение частоты запросов по IP клиента
type Middleware struct {
	limiter *TokenBucket
	log     *logrus.Entry
	keyFunc func(c *gin.Context) string
}

func NewMiddleware(limiter *TokenBucket, log *logger.Logger) *Middleware {
	return &Middleware{
		limiter: limiter,
		log:     logger.OrDiscard(log).Component("ratelimit"),
		keyFunc: func(c *gin.Context) string { return c.ClientIP() },
	}
}

// Handler gin middleware, при превышении лимита отвечает 429
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := m.keyFunc(c)
		allowed := m.limiter.Allow(key)
		stats := m.limiter.Stats(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(m.limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(stats.Remaining))
		c.Header("X-RateLimit-Reset", stats.ResetTime.Format(time.RFC3339))

		if !allowed {
			m.log.WithFields(logrus.Fields{
				"key":    key,
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			}).Warn("Rate limit exceeded")

			c.Header("Retry-After", strconv.Itoa(int(stats.RetryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"type":    "rate_limit",
					"message": "Too many requests",
					"code":    "RATE_LIMITED",
				},
			})
			return
		}
		c.Next()
	}
}
