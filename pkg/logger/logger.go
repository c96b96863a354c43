package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w at the given level name
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithPlanID adds the plan session ID to logger context
func (l *Logger) WithPlanID(planID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("plan_id", planID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("request_id", c.GetString("request_id")),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// LogUpstreamCall logs a call to the ticket API
func (l *Logger) LogUpstreamCall(ctx context.Context, method, url string, status int, duration time.Duration, cached bool) {
	l.Logger.DebugContext(ctx,
		"Upstream Call",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", status),
		slog.Duration("duration", duration),
		slog.Bool("cached", cached),
	)
}

// Business logic logging methods

// LogSeatMapLoaded logs when a seat map replaces the board of a plan
func (l *Logger) LogSeatMapLoaded(ctx context.Context, planID, mapID string, rows, cols int) {
	l.Logger.InfoContext(ctx,
		"Seat Map Loaded",
		slog.String("plan_id", planID),
		slog.String("map_id", mapID),
		slog.Int("rows", rows),
		slog.Int("columns", cols),
	)
}

// LogPurchaseStarted logs the start of a purchase batch
func (l *Logger) LogPurchaseStarted(ctx context.Context, mapID string, seats int) {
	l.Logger.InfoContext(ctx,
		"Purchase Started",
		slog.String("map_id", mapID),
		slog.Int("seats", seats),
	)
}

// LogPurchaseCompleted logs the outcome of a purchase batch
func (l *Logger) LogPurchaseCompleted(ctx context.Context, mapID string, succeeded, failed int, duration time.Duration) {
	l.Logger.InfoContext(ctx,
		"Purchase Completed",
		slog.String("map_id", mapID),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
		slog.Duration("duration", duration),
	)
}

// LogSeatPurchase logs a single seat outcome
func (l *Logger) LogSeatPurchase(ctx context.Context, mapID string, x, y int, success bool, reason string) {
	level := slog.LevelDebug
	if !success {
		level = slog.LevelWarn
	}
	l.Logger.Log(ctx, level,
		"Seat Purchase",
		slog.String("map_id", mapID),
		slog.Int("x", x),
		slog.Int("y", y),
		slog.Bool("success", success),
		slog.String("reason", reason),
	)
}

// LogTicketIssued logs a ticket stored by the ticket API
func (l *Logger) LogTicketIssued(ctx context.Context, ticketID, mapID string, x, y int) {
	l.Logger.InfoContext(ctx,
		"Ticket Issued",
		slog.String("ticket_id", ticketID),
		slog.String("map_id", mapID),
		slog.Int("x", x),
		slog.Int("y", y),
	)
}

// Security logging methods

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
