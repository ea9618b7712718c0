// Package service implements the availability and booking conflict engine:
// validation at the boundary, the booking ledger, blackout overrides, and
// the daily and weekly availability views composed from them.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Shivanand-hulikatti/room-booking/internal/config"
	"github.com/Shivanand-hulikatti/room-booking/internal/model"
	"github.com/Shivanand-hulikatti/room-booking/internal/repository"
	"github.com/Shivanand-hulikatti/room-booking/internal/schedule"
)

// ConfigSource is the read contract of the configuration store.
type ConfigSource interface {
	Get(ctx context.Context) (*model.Config, error)
}

// Options tune an Engine. The zero value is usable.
type Options struct {
	// Location is the single local zone of every date and slot; nil means time.Local.
	Location *time.Location
	// WeekStart is the weekday NormalizeWeekStart snaps to.
	WeekStart time.Weekday
	// BlackoutBlocksBooking makes CreateBooking refuse closed dates.
	BlackoutBlocksBooking bool
	Clock                 Clock
	NewID                 func() string
}

// Engine is the transport-agnostic boundary over the booking engine.
type Engine struct {
	validate  *validator.Validate
	configs   ConfigSource
	ledger    *Ledger
	blackouts *BlackoutOverlay
	composer  *Composer
	weekly    *WeeklyAggregator
	loc       *time.Location
	clock     Clock
	weekStart time.Weekday
	guarded   bool
}

// NewEngine wires the engine components over the given stores.
func NewEngine(
	configs ConfigSource,
	bookings repository.BookingStore,
	blackouts repository.BlackoutStore,
	opts Options,
) *Engine {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}

	overlay := NewBlackoutOverlay(blackouts)
	ledger := NewLedger(bookings, loc, clock, opts.NewID)
	if opts.BlackoutBlocksBooking {
		ledger.GuardBlackouts(overlay)
	}
	composer := NewComposer(ledger, overlay, loc)

	return &Engine{
		validate:  newValidator(),
		configs:   configs,
		ledger:    ledger,
		blackouts: overlay,
		composer:  composer,
		weekly:    NewWeeklyAggregator(composer, loc),
		loc:       loc,
		clock:     clock,
		weekStart: opts.WeekStart,
		guarded:   opts.BlackoutBlocksBooking,
	}
}

// Config returns the current configuration.
func (e *Engine) Config(ctx context.Context) (*model.Config, error) {
	cfg, err := e.configs.Get(ctx)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return nil, &ValidationError{Field: "config", Message: err.Error()}
		}
		return nil, persistenceErr("load config", err)
	}
	return cfg, nil
}

// GetAvailability returns the slot view of roomID on date.
func (e *Engine) GetAvailability(ctx context.Context, roomID int, date string) (*model.Availability, error) {
	cfg, err := e.Config(ctx)
	if err != nil {
		return nil, err
	}
	return e.composer.Compute(ctx, cfg, roomID, strings.TrimSpace(date))
}

// GetWeeklyAvailability returns seven daily views starting at weekStart. On
// partial failure both the partial week and a *WeekError are returned.
func (e *Engine) GetWeeklyAvailability(ctx context.Context, roomID int, weekStart string) (*model.WeeklyAvailability, error) {
	cfg, err := e.Config(ctx)
	if err != nil {
		return nil, err
	}
	return e.weekly.Compute(ctx, cfg, roomID, strings.TrimSpace(weekStart))
}

// NormalizeWeekStart snaps date back to the configured first weekday. An
// empty date means today.
func (e *Engine) NormalizeWeekStart(date string) (string, error) {
	var d time.Time
	if strings.TrimSpace(date) == "" {
		d = e.clock.Now().In(e.loc)
	} else {
		var err error
		if d, err = schedule.ParseDate(date, e.loc); err != nil {
			return "", &ValidationError{Field: "weekStart", Message: "must be a date in YYYY-MM-DD form"}
		}
	}
	return schedule.WeekStart(d, e.weekStart).Format(schedule.DateLayout), nil
}

// CreateBooking validates req, prices it against the room's hourly rate
// and commits it through the ledger. The interval must lie within the
// configured operating hours of its date.
func (e *Engine) CreateBooking(ctx context.Context, req model.CreateBookingRequest) (*model.Booking, error) {
	req.Date = strings.TrimSpace(req.Date)
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Notes = strings.TrimSpace(req.Notes)
	if err := e.validate.Struct(req); err != nil {
		return nil, validationErr(err)
	}

	start, err := schedule.ParseTimestamp(req.Start, e.loc)
	if err != nil {
		return nil, &ValidationError{Field: "startIso", Message: err.Error()}
	}
	end, err := schedule.ParseTimestamp(req.End, e.loc)
	if err != nil {
		return nil, &ValidationError{Field: "endIso", Message: err.Error()}
	}

	cfg, err := e.Config(ctx)
	if err != nil {
		return nil, err
	}
	room, ok := cfg.Room(req.RoomID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoomNotFound, req.RoomID)
	}

	c := Candidate{
		RoomID: req.RoomID,
		Date:   req.Date,
		Start:  start,
		End:    end,
		Name:   req.Name,
		Phone:  req.Phone,
		Notes:  req.Notes,
		Price:  quote(room, start, end),
	}
	if day, err := schedule.ParseDate(req.Date, e.loc); err == nil {
		c.Opens, c.Closes = schedule.Hours(cfg.OpenHour, cfg.CloseHour, day, e.loc)
	}
	return e.ledger.Create(ctx, c)
}

// quote prices an interval at the room's hourly rate, rounded to the unit.
func quote(room model.Room, start, end time.Time) int {
	hours := end.Sub(start).Hours()
	return int(math.Round(hours * float64(room.HourlyPrice)))
}

// ListBookings returns bookings sorted by start; an empty date means all.
func (e *Engine) ListBookings(ctx context.Context, date string) ([]model.Booking, error) {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := schedule.ParseDate(date, e.loc); err != nil {
			return nil, &ValidationError{Field: "date", Message: "must be a date in YYYY-MM-DD form"}
		}
	}
	return e.ledger.List(ctx, date)
}

// SetBlackout records the closed flag of one room on one date.
func (e *Engine) SetBlackout(ctx context.Context, req model.SetBlackoutRequest) (*model.BlackoutAck, error) {
	req.Date = strings.TrimSpace(req.Date)
	if err := e.validate.Struct(req); err != nil {
		return nil, validationErr(err)
	}

	cfg, err := e.Config(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := cfg.Room(req.RoomID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoomNotFound, req.RoomID)
	}

	set := func() error { return e.blackouts.Set(ctx, req.Date, req.RoomID, *req.Closed) }
	if e.guarded {
		// Creates read the flag under the ledger lock; writing it under the
		// same lock orders the two.
		err = e.ledger.Exclusive(ctx, set)
	} else {
		err = set()
	}
	if err != nil {
		return nil, err
	}
	return &model.BlackoutAck{OK: true, Date: req.Date, RoomID: req.RoomID, Closed: *req.Closed}, nil
}

// DayBlackouts returns the flags recorded for date.
func (e *Engine) DayBlackouts(ctx context.Context, date string) (*model.DayBlackouts, error) {
	date = strings.TrimSpace(date)
	if _, err := schedule.ParseDate(date, e.loc); err != nil {
		return nil, &ValidationError{Field: "date", Message: "must be a date in YYYY-MM-DD form"}
	}
	rooms, err := e.blackouts.ForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return &model.DayBlackouts{Date: date, Rooms: rooms}, nil
}

// AllBlackouts returns every recorded flag.
func (e *Engine) AllBlackouts(ctx context.Context) (model.BlackoutMap, error) {
	return e.blackouts.All(ctx)
}
