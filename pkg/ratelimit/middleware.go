package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ticketplan/internal/shared/utils/response"
	"ticketplan/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware applies the budget of the matched route's class per client IP.
// CORS preflights are not counted. When Redis cannot be reached the request
// is let through and the failure logged.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	log := logger.GetDefault()

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		limitType := getRateLimitType(route)

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			log.WarnContext(c.Request.Context(), "Rate limit check failed, allowing request",
				slog.String("ip", clientIP),
				slog.String("class", string(limitType)),
				slog.Any("error", err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, route)
			c.Header("Retry-After", strconv.Itoa(int(rateLimiter.config.WindowDuration.Seconds())))
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"class":      limitType,
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitType maps a route template to its budget class
func getRateLimitType(path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/status"):
		return RateLimitTypeHealth

	// Seat purchases hit the ticket API once per seat
	case strings.HasSuffix(path, "/purchase"),
		strings.HasSuffix(path, "/ticket"):
		return RateLimitTypePurchase

	case strings.Contains(path, "/plans"):
		return RateLimitTypePlan

	case strings.Contains(path, "/salons"),
		strings.HasPrefix(path, "/map"):
		return RateLimitTypeMapRead

	default:
		return RateLimitTypeDefault
	}
}
