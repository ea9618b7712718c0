package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetMissingFileYieldsDefaults(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "config.yaml"))
	cfg, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg.OpenHour != 9 || cfg.CloseHour != 22 {
		t.Fatalf("defaults = %d-%d, want 9-22", cfg.OpenHour, cfg.CloseHour)
	}
}

func TestGetReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `open_hour: 10
close_hour: 20
customer_notice: bring slippers
rooms:
  - id: 3
    name: Booth A
    hourly_price: 12000
    capacity: 4
  - id: 4
    name: Booth B
    hourly_price: 8000
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileStore(path).Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg.OpenHour != 10 || cfg.CloseHour != 20 || cfg.CustomerNotice != "bring slippers" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	a, ok := cfg.Room(3)
	if !ok || a.Capacity == nil || *a.Capacity != 4 {
		t.Fatalf("room 3 = %+v, ok=%v", a, ok)
	}
	b, ok := cfg.Room(4)
	if !ok || b.Capacity != nil {
		t.Fatalf("room 4 capacity should be unset, got %+v", b)
	}
	if b.Photos == nil {
		t.Fatal("photos should be normalized to an empty list")
	}
}

func TestGetRejectsInvertedHours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("open_hour: 22\nclose_hour: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Get(context.Background())
	if !errors.Is(err, ErrInvalidHours) {
		t.Fatalf("err = %v, want ErrInvalidHours", err)
	}
}

func TestGetRejectsNonNumericHours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("open_hour: nine\nclose_hour: 22\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Get(context.Background())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestGetReportsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("open_hour: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Get(context.Background())
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
	if errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("unreadable file must not be reported as invalid content: %v", err)
	}
}

func TestEnsureExistsAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s := NewFileStore(path)

	created, err := s.EnsureExists()
	if err != nil || !created {
		t.Fatalf("EnsureExists = %v, %v", created, err)
	}
	created, err = s.EnsureExists()
	if err != nil || created {
		t.Fatalf("second EnsureExists = %v, %v", created, err)
	}

	cfg, err := s.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	cfg.CloseHour = 23
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := s.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if again.CloseHour != 23 {
		t.Fatalf("CloseHour = %d after save", again.CloseHour)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestValidateRooms(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rooms = append(cfg.Rooms, cfg.Rooms[0])
	if err := Validate(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want duplicate id error", err)
	}
	zero := 0
	cfg = DefaultConfig()
	cfg.Rooms[0].Capacity = &zero
	if err := Validate(cfg); err == nil {
		t.Fatal("expected capacity error")
	}
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/tmp/rooms")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("BOOKING_STORE", "postgres")
	t.Setenv("BLACKOUT_STORE", "redis")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("WEEK_START", "sunday")
	t.Setenv("BLACKOUT_BLOCKS_BOOKING", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Port != "9090" || s.ConfigPath != filepath.Join("/tmp/rooms", "config.yaml") {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.WeekStart != time.Sunday || !s.BlackoutBlocksBooking || s.Location != time.UTC {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if len(s.CORSOrigins) != 2 || s.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %v", s.CORSOrigins)
	}
	if !s.UsesPostgres() {
		t.Fatal("UsesPostgres should be true")
	}

	t.Setenv("BOOKING_STORE", "mongo")
	if _, err := LoadSettings(); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
