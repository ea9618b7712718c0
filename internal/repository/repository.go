// Package repository implements persistence for bookings and blackouts.
// Each store exposes the whole-snapshot contract the booking engine expects;
// concurrency control over read-check-commit sequences lives in the service
// layer.
package repository

import (
	"context"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

// BookingStore is the persistent booking collection.
//
// Load returns the committed collection in commit order. A store that has
// never been written returns an empty slice and no error; any real read
// failure is returned as an error.
//
// Commit replaces the collection with bookings. It is all-or-nothing: on
// error the previously committed collection is still what Load returns.
type BookingStore interface {
	Load(ctx context.Context) ([]model.Booking, error)
	Commit(ctx context.Context, bookings []model.Booking) error
}

// BlackoutStore is the persistent date -> room -> closed map.
//
// Upsert merges one flag into the entry for date without touching the
// flags of other rooms on that date, and must be safe under concurrent
// callers.
type BlackoutStore interface {
	Load(ctx context.Context) (model.BlackoutMap, error)
	ForDate(ctx context.Context, date string) (map[int]bool, error)
	Upsert(ctx context.Context, date string, roomID int, closed bool) error
}

// Locker is implemented by stores that can serialize writers across
// processes. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// Appender is implemented by stores that can add one booking without
// rewriting the collection. Append must be all-or-nothing like Commit.
type Appender interface {
	Append(ctx context.Context, b model.Booking) error
}
