// Package config loads the room/operating-hours configuration from a YAML
// file and the process settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
	"github.com/Shivanand-hulikatti/room-booking/internal/schedule"
)

var (
	// ErrInvalidConfig marks configuration content that decodes but cannot be
	// used, as opposed to a file that cannot be read.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidHours is returned when a config cannot produce a slot grid.
	ErrInvalidHours = fmt.Errorf("%w: operating hours must satisfy 0 <= open < close <= 24", ErrInvalidConfig)
)

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *model.Config {
	return &model.Config{
		OpenHour:  9,
		CloseHour: 22,
		Rooms: []model.Room{
			{ID: 1, Name: "Room 1", HourlyPrice: 10000, Photos: []string{}},
		},
	}
}

// Normalize fills nil collections so callers never see null lists.
func Normalize(c *model.Config) {
	if c.Rooms == nil {
		c.Rooms = []model.Room{}
	}
	for i := range c.Rooms {
		if c.Rooms[i].Photos == nil {
			c.Rooms[i].Photos = []string{}
		}
	}
}

// Validate checks the invariants the engine relies on.
func Validate(c *model.Config) error {
	if !schedule.ValidHours(c.OpenHour, c.CloseHour) {
		return fmt.Errorf("%w (got open=%d close=%d)", ErrInvalidHours, c.OpenHour, c.CloseHour)
	}
	seen := make(map[int]bool, len(c.Rooms))
	for _, r := range c.Rooms {
		if r.ID <= 0 {
			return fmt.Errorf("%w: room %q: id must be positive", ErrInvalidConfig, r.Name)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: room id %d is duplicated", ErrInvalidConfig, r.ID)
		}
		seen[r.ID] = true
		if r.Capacity != nil && *r.Capacity <= 0 {
			return fmt.Errorf("%w: room %d: capacity must be positive when set", ErrInvalidConfig, r.ID)
		}
	}
	return nil
}

// FileStore serves the configuration from a YAML file. Every Get re-reads
// the file so administrative edits apply without a restart.
type FileStore struct {
	path string
}

// NewFileStore constructs a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads, normalizes and validates the configuration. A missing file
// yields DefaultConfig; any other read or decode failure is returned.
func (s *FileStore) Get(ctx context.Context) (*model.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.path, err)
		}
		return nil, fmt.Errorf("decode config %s: %w", s.path, err)
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnsureExists writes DefaultConfig to the path when no file is present.
func (s *FileStore) EnsureExists() (created bool, err error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := Save(s.path, DefaultConfig()); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes cfg as YAML through a temp file in the same directory and a
// rename, so readers never observe a partially written file.
func Save(path string, cfg *model.Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return WriteFileAtomic(path, data, 0o644)
}

// WriteFileAtomic writes data to path via temp file + fsync + rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
