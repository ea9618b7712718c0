// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Shivanand-hulikatti/room-booking/internal/config"
	"github.com/Shivanand-hulikatti/room-booking/internal/database"
	"github.com/Shivanand-hulikatti/room-booking/internal/handler"
	"github.com/Shivanand-hulikatti/room-booking/internal/repository"
	"github.com/Shivanand-hulikatti/room-booking/internal/service"
)

func main() {
	ctx := context.Background()

	// ── 1. Settings and operating config ─────────────────────────────────
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("settings: %v", err)
	}

	configs := config.NewFileStore(settings.ConfigPath)
	created, err := configs.EnsureExists()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if created {
		log.Printf("✓ Wrote default config to %s", configs.Path())
	}

	// ── 2. Connect backing stores ────────────────────────────────────────
	var pool *pgxpool.Pool
	if settings.UsesPostgres() {
		pool, err = database.NewPool(ctx, database.ConfigFromEnv().DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatalf("database: %v", err)
		}
		log.Println("✓ Connected to PostgreSQL")
	}

	var bookings repository.BookingStore
	switch settings.BookingStore {
	case config.DriverPostgres:
		bookings = repository.NewPgBookingStore(pool)
	default:
		bookings = repository.NewFileBookingStore(settings.DataDir)
	}

	var blackouts repository.BlackoutStore
	switch settings.BlackoutStore {
	case config.DriverPostgres:
		blackouts = repository.NewPgBlackoutStore(pool)
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		log.Println("✓ Connected to Redis")
		blackouts = repository.NewRedisBlackoutStore(rdb)
	default:
		blackouts = repository.NewFileBlackoutStore(settings.DataDir)
	}
	log.Printf("✓ Stores: bookings=%s blackouts=%s", settings.BookingStore, settings.BlackoutStore)

	// ── 3. Wire up layers ────────────────────────────────────────────────
	engine := service.NewEngine(configs, bookings, blackouts, service.Options{
		Location:              settings.Location,
		WeekStart:             settings.WeekStart,
		BlackoutBlocksBooking: settings.BlackoutBlocksBooking,
	})
	bookingHandler := handler.NewBookingHandler(engine)

	var limiter *handler.RateLimiter
	if settings.BookingRatePerMinute > 0 {
		limiter = handler.NewRateLimiter(settings.BookingRatePerMinute)
	}
	router := handler.NewRouter(bookingHandler, limiter, settings.CORSOrigins)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", settings.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Server listening on http://localhost:%s (zone %s)", settings.Port, settings.Location)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
