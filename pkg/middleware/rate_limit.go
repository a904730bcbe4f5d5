package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/logger"
	"github.com/udhago/udhago-backend/pkg/ratelimit"
	"go.uber.org/zap"
)

// RateLimit applies token-bucket rate limiting to incoming requests.
// Authenticated requests are keyed by user id, anonymous ones by client IP.
// Limiter failures fail open: a broken Redis must not take the API down.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		endpointPath := c.FullPath()
		if endpointPath == "" {
			endpointPath = c.Request.URL.Path
		}
		endpointKey := fmt.Sprintf("%s:%s", c.Request.Method, endpointPath)

		identity := c.ClientIP()
		if userID, err := GetUserID(c); err == nil && userID != uuid.Nil {
			identity = userID.String()
		}

		result, err := limiter.Allow(c.Request.Context(), endpointKey, identity)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limit evaluation failed",
				zap.String("endpoint", endpointKey),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		remaining := result.Remaining
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if result.Allowed {
			c.Next()
			return
		}

		retrySeconds := int(result.RetryAfter.Round(time.Second) / time.Second)
		if retrySeconds <= 0 {
			retrySeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retrySeconds))

		logger.WarnContext(c.Request.Context(), "rate limit exceeded",
			zap.String("endpoint", endpointKey),
			zap.String("identity", identity),
		)

		common.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
		c.Abort()
	}
}
