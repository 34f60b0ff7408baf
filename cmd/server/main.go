package main // Entry point package

import (
	"context" // bounded startup calls
	"log"     // Logging library
	"time"    // startup timeouts

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/railway-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/railway-reservation/internal/database"   // MySQL connector
	"github.com/iliyamo/railway-reservation/internal/eventlog"   // MongoDB analytics recorder
	"github.com/iliyamo/railway-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/railway-reservation/internal/middleware" // rate limiting, caching, request logging
	"github.com/iliyamo/railway-reservation/internal/queue"      // RabbitMQ consumer
	"github.com/iliyamo/railway-reservation/internal/repository" // DB repositories
	"github.com/iliyamo/railway-reservation/internal/router"     // route registration
	"github.com/iliyamo/railway-reservation/internal/service"    // booking coordinator
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql connect failed: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	// Redis and Mongo are optional: a nil client disables rate
	// limiting/caching, a nil database disables analytics.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and response cache disabled")
	}
	mongoDB := config.NewMongoDatabase(cfg.MongoURI, cfg.MongoDBName)
	if mongoDB == nil {
		log.Println("mongodb unavailable, request analytics disabled")
	}
	recorder := eventlog.NewRecorder(mongoDB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		recorder.EnsureIndexes(ctx)
		cancel()
	}

	// Repositories and the booking coordinator.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	trains := repository.NewTrainRepo(db)
	schedules := repository.NewScheduleRepo(db)
	ledger := repository.NewLedgerRepo(db)
	bookings := repository.NewBookingRepo(db)
	coordinator := service.NewBookingCoordinator(db, schedules, ledger, bookings)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	trainH := handler.NewTrainHandler(db, trains, schedules, recorder)
	bookingH := handler.NewBookingHandler(coordinator, bookings)
	analyticsH := handler.NewAnalyticsHandler(recorder)

	e := echo.New() // Create Echo instance
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.APILog(recorder))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCustomer(e, trainH, bookingH, analyticsH, cfg.JWTSecret, cache)
	router.RegisterAdmin(e, trainH, analyticsH, cfg.JWTSecret)

	// Consume booking confirmations in the background; the consumer
	// reconnects on broker failures and never stops the server.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
