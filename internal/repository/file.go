package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Shivanand-hulikatti/room-booking/internal/config"
	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

// jsonFile reads and atomically rewrites one JSON document.
type jsonFile[T any] struct {
	path string
}

// read decodes the file into a T. A missing or empty file is the
// not-yet-initialized state and yields the zero T.
func (f jsonFile[T]) read() (T, error) {
	var v T
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return v, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return v, nil
}

func (f jsonFile[T]) write(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	return config.WriteFileAtomic(f.path, data, 0o644)
}

// FileBookingStore keeps the booking collection in a single JSON array file.
type FileBookingStore struct {
	file jsonFile[[]model.Booking]
}

// NewFileBookingStore constructs a FileBookingStore under dir.
func NewFileBookingStore(dir string) *FileBookingStore {
	return &FileBookingStore{file: jsonFile[[]model.Booking]{path: filepath.Join(dir, "bookings.json")}}
}

// Load returns every committed booking.
func (s *FileBookingStore) Load(ctx context.Context) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, err := s.file.read()
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Booking{}
	}
	return list, nil
}

// Commit rewrites the file. The rename is atomic, so a failed write leaves
// the previous collection in place.
func (s *FileBookingStore) Commit(ctx context.Context, bookings []model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return s.file.write(bookings)
}

// FileBlackoutStore keeps the blackout map in a single JSON object file.
type FileBlackoutStore struct {
	mu   sync.Mutex // serializes read-merge-write in Upsert
	file jsonFile[model.BlackoutMap]
}

// NewFileBlackoutStore constructs a FileBlackoutStore under dir.
func NewFileBlackoutStore(dir string) *FileBlackoutStore {
	return &FileBlackoutStore{file: jsonFile[model.BlackoutMap]{path: filepath.Join(dir, "blackouts.json")}}
}

// Load returns the full map.
func (s *FileBlackoutStore) Load(ctx context.Context) (model.BlackoutMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := s.file.read()
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = model.BlackoutMap{}
	}
	return m, nil
}

// ForDate returns the flags recorded for date, or an empty map.
func (s *FileBlackoutStore) ForDate(ctx context.Context, date string) (map[int]bool, error) {
	m, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	day := m[date]
	if day == nil {
		day = map[int]bool{}
	}
	return day, nil
}

// Upsert merges one flag into the date entry.
func (s *FileBlackoutStore) Upsert(ctx context.Context, date string, roomID int, closed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if m[date] == nil {
		m[date] = map[int]bool{}
	}
	m[date][roomID] = closed
	return s.file.write(m)
}
