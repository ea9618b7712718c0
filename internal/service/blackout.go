package service

import (
	"context"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
	"github.com/Shivanand-hulikatti/room-booking/internal/repository"
)

// BlackoutOverlay is the per-(date, room) closed override. Absence of an
// entry means open.
type BlackoutOverlay struct {
	store repository.BlackoutStore
}

// NewBlackoutOverlay constructs a BlackoutOverlay.
func NewBlackoutOverlay(store repository.BlackoutStore) *BlackoutOverlay {
	return &BlackoutOverlay{store: store}
}

// ForDate returns room id -> closed for date, empty when nothing is recorded.
func (o *BlackoutOverlay) ForDate(ctx context.Context, date string) (map[int]bool, error) {
	day, err := o.store.ForDate(ctx, date)
	if err != nil {
		return nil, persistenceErr("load blackouts", err)
	}
	if day == nil {
		day = map[int]bool{}
	}
	return day, nil
}

// IsClosed reports the flag for one room on date.
func (o *BlackoutOverlay) IsClosed(ctx context.Context, date string, roomID int) (bool, error) {
	day, err := o.ForDate(ctx, date)
	if err != nil {
		return false, err
	}
	return day[roomID], nil
}

// All returns the whole map.
func (o *BlackoutOverlay) All(ctx context.Context) (model.BlackoutMap, error) {
	m, err := o.store.Load(ctx)
	if err != nil {
		return nil, persistenceErr("load blackouts", err)
	}
	if m == nil {
		m = model.BlackoutMap{}
	}
	return m, nil
}

// Set merges one flag into date's entry, leaving other rooms untouched.
// Setting the same value twice leaves the stored map unchanged.
func (o *BlackoutOverlay) Set(ctx context.Context, date string, roomID int, closed bool) error {
	if err := o.store.Upsert(ctx, date, roomID, closed); err != nil {
		return persistenceErr("upsert blackout", err)
	}
	return nil
}
