package main // Entry point package

import (
	"context" // context for the warm-up data load
	"log"     // Logging library
	"time"    // warm-up timeout

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/dinner-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/dinner-reservation/internal/data"       // data manager over the key-value store
	"github.com/iliyamo/dinner-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/dinner-reservation/internal/images"     // image search proxy client
	"github.com/iliyamo/dinner-reservation/internal/middleware" // redis cache and rate limit middleware
	"github.com/iliyamo/dinner-reservation/internal/queue"      // reservation event consumer
	"github.com/iliyamo/dinner-reservation/internal/repository" // entity repositories
	"github.com/iliyamo/dinner-reservation/internal/router"     // Internal router setup
	"github.com/iliyamo/dinner-reservation/internal/session"    // current-user session manager
	"github.com/iliyamo/dinner-reservation/internal/store"      // persistent key-value store
)

func main() {
	// Load a local .env when present; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// The MySQL-backed key-value store holds every collection, the side
	// logs, the session and the refresh tokens.
	st, err := store.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer func() { _ = st.Close() }()

	// The data manager merges the seed document with locally persisted
	// changes on first use. Warm it up here so the first request does not
	// pay for the fetch; a failure is retried lazily per request.
	dm := data.NewManager(st, cfg.SeedURL)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := dm.EnsureLoaded(ctx); err != nil {
			log.Printf("data: warm-up load failed, will retry on demand: %v", err)
		}
		cancel()
	}

	// Repositories and collaborators.
	dinners := repository.NewDinnerRepo(dm)
	reservations := repository.NewReservationRepo(dm)
	users := repository.NewUserRepo(dm, cfg.BcryptCost)
	tokens := repository.NewTokenRepo(st)
	sess := session.NewManager(st)
	imgSvc := images.NewService(cfg.ImageSearchURL)

	// Redis backs the token-bucket rate limiter and the listing cache.
	// Both degrade to pass-through when Redis is down. The cache is shared
	// with the mutating handlers so they can invalidate stale listings.
	rdb := config.NewRedisClient()
	listingCache := middleware.NewListingCache(config.LoadCacheConfig(), rdb)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, dm, users, tokens, sess)
	publicH := handler.NewPublicDinnerHandler(dm, dinners)
	hostH := handler.NewHostDinnerHandler(dm, dinners, reservations, users, listingCache)
	guestH := handler.NewReservationHandler(dm, dinners, reservations, users, listingCache)
	imgH := handler.NewImageHandler(imgSvc)

	e := echo.New() // Create Echo instance
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, imgH, listingCache.Middleware())
	router.RegisterHost(e, hostH, cfg.JWTSecret)
	router.RegisterGuest(e, guestH, cfg.JWTSecret)

	// Consume reservation events in the background; the consumer reconnects
	// on broker failures and never takes the API down.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("queue: consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
