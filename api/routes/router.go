// api/routes/router.go
package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ticketplan/internal/maps"
	"ticketplan/internal/notifications"
	"ticketplan/internal/plans"
	"ticketplan/internal/shared/config"
	"ticketplan/internal/shared/database"
	"ticketplan/internal/tickets"
	"ticketplan/pkg/cache"
	"ticketplan/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.EventPublisher
	log       *logger.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.EventPublisher) *Router {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		log:       logger.GetDefault(),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Ticket API lives at the root so a loader can point its base URL here
	if r.config.TicketAPI.Enabled {
		r.setupTicketRoutes(engine)
	}

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupPlanRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketplan",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketplan",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"maps_source": r.mapsSource(),
			"stores":      r.db.Status(c.Request.Context()),
			"timestamp":   time.Now(),
		})
	})
}

// cacheService picks Redis when it is configured and connected
func (r *Router) cacheService() cache.Service {
	if r.config.Maps.CacheBackend == "redis" && r.db.GetRedisClient() != nil {
		return cache.NewRedisService(r.db.GetRedisClient())
	}
	return cache.NewMemoryService()
}

func (r *Router) mapsSource() string {
	if r.config.Maps.UseMock {
		return "mock"
	}
	return r.config.Maps.BaseURL
}

func (r *Router) mockConfig() maps.MockConfig {
	return maps.MockConfig{
		ReservedRatio: r.config.Maps.MockReservedRatio,
		SuccessRatio:  r.config.Maps.MockSuccessRatio,
		ListLatency:   r.config.Maps.MockListLatency,
		MapLatency:    r.config.Maps.MockMapLatency,
		BuyLatency:    r.config.Maps.MockBuyLatency,
	}
}

// newLoader builds the seat map source the plans read from
func (r *Router) newLoader() maps.Loader {
	if r.config.Maps.UseMock {
		return maps.NewMockLoader(r.mockConfig())
	}
	return maps.NewClient(maps.ClientConfig{
		BaseURL:    r.config.Maps.BaseURL,
		Timeout:    r.config.Maps.RequestTimeout,
		ListTTL:    r.config.Maps.ListTTL,
		SeatMapTTL: r.config.Maps.SeatMapTTL,
	}, r.cacheService(), nil)
}

// setupTicketRoutes configures the ticket API
func (r *Router) setupTicketRoutes(engine *gin.Engine) {
	var repo tickets.Repository
	if pg := r.db.GetPostgreSQL(); pg != nil {
		repo = tickets.NewRepository(pg)
	} else {
		repo = tickets.NewMemoryRepository()
	}

	var claimer tickets.SeatClaimer = tickets.NewLocalSeatClaimer()
	if rdb := r.db.GetRedisClient(); rdb != nil {
		redisClaimer := tickets.NewRedisSeatClaimer(rdb, r.config.TicketAPI.ClaimTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := redisClaimer.PreloadScripts(ctx); err != nil {
			r.log.Error("Failed to preload Redis Lua scripts", slog.Any("error", err))
		} else {
			r.log.Info("✅ Redis Lua scripts preloaded for seat claims")
		}
		cancel()
		claimer = redisClaimer
	}

	ticketService := tickets.NewService(repo, r.cacheService(), claimer, r.publisher)

	// Fill empty storage with generated maps
	seedCfg := r.mockConfig()
	seedCfg.ListLatency, seedCfg.MapLatency, seedCfg.BuyLatency = 0, 0, 0
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if n, err := ticketService.SeedMaps(ctx, maps.NewMockLoader(seedCfg), false); err != nil {
		r.log.Error("Failed to seed ticket API maps", slog.Any("error", err))
	} else if n > 0 {
		r.log.Info("Seeded ticket API maps", slog.Int("count", n))
	}

	tickets.SetupTicketRoutes(engine, tickets.NewController(ticketService))
}

// setupPlanRoutes configures the seat plan API
func (r *Router) setupPlanRoutes(rg *gin.RouterGroup) {
	directory := maps.NewDirectory(r.newLoader())
	planService := plans.NewService(plans.NewRepository(), directory, r.publisher, r.config)
	planController := plans.NewController(planService)

	plans.SetupPlanRoutes(rg, planController)
}
