package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
	"github.com/Shivanand-hulikatti/room-booking/internal/schedule"
)

// WeekError lists the dates of a weekly request that could not be composed.
// The views for the remaining dates are still returned alongside it.
type WeekError struct {
	Failures map[string]error
}

func (e *WeekError) Error() string {
	dates := e.Dates()
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d + ": " + e.Failures[d].Error()
	}
	return fmt.Sprintf("availability failed for %d of %d dates: %s",
		len(dates), schedule.DaysPerWeek, strings.Join(parts, "; "))
}

// Dates returns the failed dates in order.
func (e *WeekError) Dates() []string {
	dates := make([]string, 0, len(e.Failures))
	for d := range e.Failures {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	return dates
}

// Unwrap exposes every per-date cause to errors.Is and errors.As.
func (e *WeekError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, d := range e.Dates() {
		errs = append(errs, e.Failures[d])
	}
	return errs
}

// WeeklyAggregator fans the Composer out over seven consecutive dates.
type WeeklyAggregator struct {
	composer *Composer
	loc      *time.Location
}

// NewWeeklyAggregator constructs a WeeklyAggregator.
func NewWeeklyAggregator(composer *Composer, loc *time.Location) *WeeklyAggregator {
	if loc == nil {
		loc = time.Local
	}
	return &WeeklyAggregator{composer: composer, loc: loc}
}

// Compute composes the seven dates starting at weekStart concurrently. The
// caller normalizes weekStart; no weekday policy is applied here.
//
// A date that fails is left out of Days and Closed and reported in a
// *WeekError, never filled with a default view.
func (w *WeeklyAggregator) Compute(ctx context.Context, cfg *model.Config, roomID int, weekStart string) (*model.WeeklyAvailability, error) {
	start, err := schedule.ParseDate(weekStart, w.loc)
	if err != nil {
		return nil, &ValidationError{Field: "weekStart", Message: "must be a date in YYYY-MM-DD form"}
	}
	if roomID <= 0 {
		return nil, &ValidationError{Field: "roomId", Message: "must be greater than 0"}
	}
	if _, ok := cfg.Room(roomID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoomNotFound, roomID)
	}

	dates := schedule.WeekDates(start)
	views := make([]*model.Availability, len(dates))
	errs := make([]error, len(dates))

	// A plain Group, not WithContext: one failed date must not cancel the
	// others, and every failure is kept in errs.
	var g errgroup.Group
	for i, date := range dates {
		g.Go(func() error {
			views[i], errs[i] = w.composer.Compute(ctx, cfg, roomID, date)
			return errs[i]
		})
	}
	failed := g.Wait() != nil

	week := &model.WeeklyAvailability{
		RoomID:    roomID,
		WeekStart: dates[0],
		Dates:     dates,
		Days:      make(map[string]model.Availability, len(dates)),
		Closed:    make(map[string]bool, len(dates)),
	}
	failures := map[string]error{}
	for i, date := range dates {
		if errs[i] != nil {
			failures[date] = errs[i]
			continue
		}
		week.Days[date] = *views[i]
		week.Closed[date] = views[i].Closed
	}
	if failed {
		return week, &WeekError{Failures: failures}
	}
	return week, nil
}
