package main // Entry point package

import (
	"context" // Context for startup deadlines
	"log"     // Logging library
	"time"    // Timeouts

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/Deeekaaay/EventManagement/internal/booking"    // Cart and checkout engine
	"github.com/Deeekaaay/EventManagement/internal/clock"      // Wall clock abstraction
	"github.com/Deeekaaay/EventManagement/internal/config"     // Internal config loader
	"github.com/Deeekaaay/EventManagement/internal/database"   // MySQL connection and schema
	"github.com/Deeekaaay/EventManagement/internal/handler"    // HTTP handlers
	"github.com/Deeekaaay/EventManagement/internal/queue"      // Broker consumer
	"github.com/Deeekaaay/EventManagement/internal/repository" // Data access layer
	"github.com/Deeekaaay/EventManagement/internal/router"     // Route registration
)

func main() {
	// Load variables from a local .env file when present.  In production the
	// environment is provided by the platform and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfg := config.Load() // Load environment config

	// Open the MySQL pool and make sure the schema exists before serving.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	// Redis is optional: when unreachable the cached repository falls back
	// to the database on every read.
	redisClient := config.NewRedisClient()

	// Repositories.  The cached event repository serves listings; checkout
	// always goes through the live one.
	eventRepo := repository.NewEventRepo(db)
	cachedEvents := repository.NewCachedEventRepo(eventRepo, redisClient, cfg.EventCacheTTL)
	orderRepo := repository.NewOrderRepo(db, eventRepo)
	userRepo := repository.NewUserRepo(db)

	// Domain services.
	carts := booking.NewCartStore()
	clk := clock.NewSystem()
	engine := booking.NewEngine(eventRepo, orderRepo, clk)

	// HTTP handlers.
	authHandler := handler.NewAuthHandler(cfg, userRepo, carts)
	catalogHandler := handler.NewCatalogHandler(cachedEvents, orderRepo)
	bookingHandler := handler.NewBookingHandler(carts, engine, eventRepo, cachedEvents, orderRepo, clk)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterCatalog(e, catalogHandler, cfg.JWTSecret)
	router.RegisterBooking(e, bookingHandler, cfg.JWTSecret)

	// Consume committed-order events in the background.  The consumer
	// reconnects on broker failures and never blocks request handling.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("rabbitmq: consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
