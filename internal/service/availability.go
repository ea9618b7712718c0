package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
	"github.com/Shivanand-hulikatti/room-booking/internal/schedule"
)

// Composer builds the availability view of one room on one date from the
// configured hours, the ledger, and the blackout overlay.
type Composer struct {
	ledger    *Ledger
	blackouts *BlackoutOverlay
	loc       *time.Location
}

// NewComposer constructs a Composer.
func NewComposer(ledger *Ledger, blackouts *BlackoutOverlay, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.Local
	}
	return &Composer{ledger: ledger, blackouts: blackouts, loc: loc}
}

// Compute returns the view for roomID on date under cfg's operating hours.
//
// A blackout marks every slot booked and skips the bookings entirely;
// otherwise a slot is booked when it overlaps any booking of the room that
// day. Cost is slots × bookings, fine at a handful of bookings per day.
func (c *Composer) Compute(ctx context.Context, cfg *model.Config, roomID int, date string) (*model.Availability, error) {
	if roomID <= 0 {
		return nil, &ValidationError{Field: "roomId", Message: "must be greater than 0"}
	}
	day, err := schedule.ParseDate(date, c.loc)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: "must be a date in YYYY-MM-DD form"}
	}
	if !schedule.ValidHours(cfg.OpenHour, cfg.CloseHour) {
		return nil, &ValidationError{Field: "closeHour", Message: fmt.Sprintf(
			"operating hours %d-%d are not a valid range", cfg.OpenHour, cfg.CloseHour)}
	}
	if _, ok := cfg.Room(roomID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrRoomNotFound, roomID)
	}

	closed, err := c.blackouts.IsClosed(ctx, date, roomID)
	if err != nil {
		return nil, err
	}
	bookings, err := c.ledger.ForRoomDate(ctx, roomID, date)
	if err != nil {
		return nil, err
	}

	slots := schedule.Grid(cfg.OpenHour, cfg.CloseHour, day, c.loc)
	for i := range slots {
		if closed || occupied(slots[i], bookings) {
			slots[i].Status = model.SlotBooked
		}
	}

	return &model.Availability{
		Date:      date,
		RoomID:    roomID,
		OpenHour:  cfg.OpenHour,
		CloseHour: cfg.CloseHour,
		Slots:     slots,
		Closed:    closed,
		Bookings:  bookings,
	}, nil
}

func occupied(s model.Slot, bookings []model.Booking) bool {
	for _, b := range bookings {
		if schedule.Overlaps(s.Start, s.End, b.Start, b.End) {
			return true
		}
	}
	return false
}
