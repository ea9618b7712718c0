package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by BOOKING_STORE and BLACKOUT_STORE.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Settings are the process-level knobs read from the environment.
type Settings struct {
	Port       string
	DataDir    string
	ConfigPath string

	BookingStore  string
	BlackoutStore string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Location  *time.Location
	WeekStart time.Weekday

	// BlackoutBlocksBooking makes the ledger refuse bookings on closed dates.
	BlackoutBlocksBooking bool

	// BookingRatePerMinute limits POST /api/bookings per client; 0 disables.
	BookingRatePerMinute int

	CORSOrigins []string
}

// LoadSettings reads an optional .env file and then the environment.
func LoadSettings() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded; using process environment")
	}

	dataDir := getEnv("DATA_DIR", "data")
	s := &Settings{
		Port:          getEnv("PORT", "8080"),
		DataDir:       dataDir,
		ConfigPath:    getEnv("CONFIG_PATH", filepath.Join(dataDir, "config.yaml")),
		BookingStore:  strings.ToLower(getEnv("BOOKING_STORE", DriverFile)),
		BlackoutStore: strings.ToLower(getEnv("BLACKOUT_STORE", DriverFile)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if s.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if s.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	if s.WeekStart, err = parseWeekStart(getEnv("WEEK_START", "monday")); err != nil {
		return nil, err
	}
	if s.BlackoutBlocksBooking, err = strconv.ParseBool(getEnv("BLACKOUT_BLOCKS_BOOKING", "false")); err != nil {
		return nil, fmt.Errorf("BLACKOUT_BLOCKS_BOOKING: %w", err)
	}
	if s.BookingRatePerMinute, err = strconv.Atoi(getEnv("BOOKING_RATE_PER_MINUTE", "30")); err != nil {
		return nil, fmt.Errorf("BOOKING_RATE_PER_MINUTE: %w", err)
	}

	switch s.BookingStore {
	case DriverFile, DriverPostgres:
	default:
		return nil, fmt.Errorf("BOOKING_STORE: unsupported driver %q", s.BookingStore)
	}
	switch s.BlackoutStore {
	case DriverFile, DriverPostgres, DriverRedis:
	default:
		return nil, fmt.Errorf("BLACKOUT_STORE: unsupported driver %q", s.BlackoutStore)
	}
	return s, nil
}

// UsesPostgres reports whether any store needs a database pool.
func (s *Settings) UsesPostgres() bool {
	return s.BookingStore == DriverPostgres || s.BlackoutStore == DriverPostgres
}

func parseWeekStart(v string) (time.Weekday, error) {
	switch strings.ToLower(v) {
	case "monday", "":
		return time.Monday, nil
	case "sunday":
		return time.Sunday, nil
	default:
		return 0, fmt.Errorf("WEEK_START: want monday or sunday, got %q", v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
