package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Seat map source
	Maps MapsConfig

	// Purchase batches
	Purchase PurchaseConfig

	// Toast notifications
	Toast ToastConfig

	// Kafka purchase events
	Kafka KafkaConfig

	// Reference ticket API
	TicketAPI TicketAPIConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
	PoolSize int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled          bool          `json:"enabled"`
	WindowDuration   time.Duration `json:"window_duration"`
	DefaultRequests  int           `json:"default_requests"`
	MapReadRequests  int           `json:"map_read_requests"`
	PlanRequests     int           `json:"plan_requests"`
	PurchaseRequests int           `json:"purchase_requests"`
	HealthRequests   int           `json:"health_requests"`
	WhitelistedIPs   []string      `json:"whitelisted_ips"`
}

// MapsConfig selects and tunes the seat map loader
type MapsConfig struct {
	BaseURL        string
	UseMock        bool
	RequestTimeout time.Duration
	ListTTL        time.Duration
	SeatMapTTL     time.Duration
	CacheBackend   string // "memory" or "redis"

	MockReservedRatio float64
	MockSuccessRatio  float64
	MockListLatency   time.Duration
	MockMapLatency    time.Duration
	MockBuyLatency    time.Duration
}

// PurchaseConfig tunes the per-seat fan-out
type PurchaseConfig struct {
	// MaxConcurrency bounds in-flight seat calls per batch, 0 means unbounded.
	MaxConcurrency int
}

// ToastConfig holds default toast lifetimes
type ToastConfig struct {
	SuccessDuration time.Duration
	ErrorDuration   time.Duration
}

// KafkaConfig holds Kafka producer configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	Topic    string
	ClientID string
}

// TicketAPIConfig controls the built-in ticket API
type TicketAPIConfig struct {
	Enabled  bool
	ClaimTTL time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ticketplan_db"),
			User:     getEnv("DB_USER", "ticketplan_user"),
			Password: getEnv("DB_PASSWORD", "ticketplan_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},

		// Redis configuration
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			PoolSize: getIntEnv("REDIS_POOL_SIZE", 10),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:          getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:   getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:  getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			MapReadRequests:  getIntEnv("RATE_LIMIT_MAP_READ_REQUESTS", 120),
			PlanRequests:     getIntEnv("RATE_LIMIT_PLAN_REQUESTS", 600),
			PurchaseRequests: getIntEnv("RATE_LIMIT_PURCHASE_REQUESTS", 20),
			HealthRequests:   getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:   getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Seat map source
		Maps: MapsConfig{
			BaseURL:        getEnv("MAPS_BASE_URL", "https://ticket-challange.herokuapp.com"),
			UseMock:        getBoolEnv("MAPS_USE_MOCK", true),
			RequestTimeout: getDurationEnv("MAPS_REQUEST_TIMEOUT", 10*time.Second),
			ListTTL:        getDurationEnv("MAPS_LIST_TTL", 10*time.Minute),
			SeatMapTTL:     getDurationEnv("MAPS_SEAT_MAP_TTL", 5*time.Minute),
			CacheBackend:   getEnv("MAPS_CACHE_BACKEND", "memory"),

			MockReservedRatio: getFloatEnv("MAPS_MOCK_RESERVED_RATIO", 0.3),
			MockSuccessRatio:  getFloatEnv("MAPS_MOCK_SUCCESS_RATIO", 0.9),
			MockListLatency:   getDurationEnv("MAPS_MOCK_LIST_LATENCY", 500*time.Millisecond),
			MockMapLatency:    getDurationEnv("MAPS_MOCK_MAP_LATENCY", 800*time.Millisecond),
			MockBuyLatency:    getDurationEnv("MAPS_MOCK_BUY_LATENCY", 1000*time.Millisecond),
		},

		// Purchase batches
		Purchase: PurchaseConfig{
			MaxConcurrency: getIntEnv("PURCHASE_MAX_CONCURRENCY", 0),
		},

		// Toast notifications
		Toast: ToastConfig{
			SuccessDuration: getDurationEnv("TOAST_SUCCESS_DURATION", 5*time.Second),
			ErrorDuration:   getDurationEnv("TOAST_ERROR_DURATION", 8*time.Second),
		},

		// Kafka purchase events
		Kafka: KafkaConfig{
			Enabled:  getBoolEnv("KAFKA_ENABLED", false),
			Brokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:    getEnv("KAFKA_PURCHASE_TOPIC", "ticketplan.purchases"),
			ClientID: getEnv("KAFKA_CLIENT_ID", "ticketplan"),
		},

		// Reference ticket API
		TicketAPI: TicketAPIConfig{
			Enabled:  getBoolEnv("TICKET_API_ENABLED", true),
			ClaimTTL: getDurationEnv("TICKET_CLAIM_TTL", 30*time.Second),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
