package service

import (
	"context"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
	"github.com/Shivanand-hulikatti/room-booking/internal/repository"
	"github.com/Shivanand-hulikatti/room-booking/internal/schedule"
)

// Clock supplies creation timestamps.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// Candidate is a typed, parsed booking request.
type Candidate struct {
	RoomID int
	Date   string
	Start  time.Time
	End    time.Time
	Name   string
	Phone  string
	Notes  string
	Price  int

	// Opens and Closes bound the interval to operating hours when set.
	Opens  time.Time
	Closes time.Time
}

// blackoutChecker is the part of BlackoutOverlay the ledger guard needs.
type blackoutChecker interface {
	IsClosed(ctx context.Context, date string, roomID int) (bool, error)
}

// Ledger is the authoritative booking collection and the only writer of it.
//
// ─────────────────────────────────────────────────────────────────────────────
// WHY A LOCK AROUND THE WHOLE SEQUENCE
// ─────────────────────────────────────────────────────────────────────────────
//
// Naive read-check-write (BROKEN):
//
//	request A: Load() → no booking at 10:00 for room 1
//	request B: Load() → no booking at 10:00 for room 1
//	request A: Commit(existing + A)
//	request B: Commit(existing + B)   → A is lost, or both exist: DOUBLE-BOOKED
//
// The store contract is a whole-collection commit, so even writers for
// different rooms race on the snapshot. Create therefore holds one mutex from
// Load through Commit. When the store also implements repository.Locker
// (PostgreSQL), its cross-process lock is taken inside the mutex so several
// server processes serialize the same way.
//
// Stores that implement repository.Appender (PostgreSQL) write only the new
// row, but the check still runs under the same lock. Exclusive lets other
// writers whose effect the check depends on, such as guarded blackouts, join
// the same order.
//
// Readers never take the mutex; availability is advisory and may be stale.
// ─────────────────────────────────────────────────────────────────────────────
type Ledger struct {
	mu    sync.Mutex
	store repository.BookingStore
	loc   *time.Location
	clock Clock
	newID func() string
	guard blackoutChecker
}

// NewLedger constructs a Ledger. A nil clock means RealClock and a nil newID
// means random UUIDs.
func NewLedger(store repository.BookingStore, loc *time.Location, clock Clock, newID func() string) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = RealClock{}
	}
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return &Ledger{store: store, loc: loc, clock: clock, newID: newID}
}

// GuardBlackouts makes Create refuse candidates whose room is closed on
// their date.
func (l *Ledger) GuardBlackouts(overlay blackoutChecker) {
	l.guard = overlay
}

// Create validates c, checks it against every committed booking for the same
// room and date, and commits it. Nothing is committed on any error.
func (l *Ledger) Create(ctx context.Context, c Candidate) (*model.Booking, error) {
	if err := l.checkCandidate(&c); err != nil {
		return nil, err
	}

	unlock, err := l.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if l.guard != nil {
		closed, err := l.guard.IsClosed(ctx, c.Date, c.RoomID)
		if err != nil {
			return nil, err
		}
		if closed {
			return nil, ErrRoomClosed
		}
	}

	existing, err := l.store.Load(ctx)
	if err != nil {
		return nil, persistenceErr("load bookings", err)
	}
	for _, b := range existing {
		if b.RoomID != c.RoomID || b.Date != c.Date {
			continue
		}
		if schedule.Overlaps(c.Start, c.End, b.Start, b.End) {
			log.Printf("booking rejected: room=%d date=%s %s-%s overlaps %s",
				c.RoomID, c.Date, c.Start.Format("15:04"), c.End.Format("15:04"), b.ID)
			return nil, &ConflictError{Existing: l.localize(b)}
		}
	}

	booking := model.Booking{
		ID:        l.newID(),
		RoomID:    c.RoomID,
		Date:      c.Date,
		Start:     c.Start,
		End:       c.End,
		Name:      c.Name,
		Phone:     c.Phone,
		Notes:     c.Notes,
		Price:     c.Price,
		CreatedAt: l.clock.Now(),
	}

	if app, ok := l.store.(repository.Appender); ok {
		if err := app.Append(ctx, booking); err != nil {
			return nil, persistenceErr("append booking", err)
		}
	} else {
		next := make([]model.Booking, 0, len(existing)+1)
		next = append(next, existing...)
		next = append(next, booking)
		if err := l.store.Commit(ctx, next); err != nil {
			return nil, persistenceErr("commit bookings", err)
		}
	}

	log.Printf("booking committed: id=%s room=%d date=%s %s-%s",
		booking.ID, booking.RoomID, booking.Date, booking.Start.Format("15:04"), booking.End.Format("15:04"))
	return &booking, nil
}

// Exclusive runs fn while holding the same lock Create holds, so fn is
// ordered against every create.
func (l *Ledger) Exclusive(ctx context.Context, fn func() error) error {
	unlock, err := l.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// lock takes the in-process mutex and, when the store supports it, the
// cross-process lock.
func (l *Ledger) lock(ctx context.Context) (func(), error) {
	l.mu.Lock()
	locker, ok := l.store.(repository.Locker)
	if !ok {
		return l.mu.Unlock, nil
	}
	release, err := locker.Lock(ctx)
	if err != nil {
		l.mu.Unlock()
		return nil, persistenceErr("lock bookings", err)
	}
	return func() {
		release()
		l.mu.Unlock()
	}, nil
}

// List returns bookings sorted by start; an empty date means every booking.
func (l *Ledger) List(ctx context.Context, date string) ([]model.Booking, error) {
	return l.filter(ctx, func(b *model.Booking) bool {
		return date == "" || b.Date == date
	})
}

// ForRoomDate returns one room's bookings on date sorted by start.
func (l *Ledger) ForRoomDate(ctx context.Context, roomID int, date string) ([]model.Booking, error) {
	return l.filter(ctx, func(b *model.Booking) bool {
		return b.RoomID == roomID && b.Date == date
	})
}

func (l *Ledger) filter(ctx context.Context, keep func(*model.Booking) bool) ([]model.Booking, error) {
	all, err := l.store.Load(ctx)
	if err != nil {
		return nil, persistenceErr("load bookings", err)
	}
	out := make([]model.Booking, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, l.localize(all[i]))
		}
	}
	slices.SortStableFunc(out, func(a, b model.Booking) int {
		return a.Start.Compare(b.Start)
	})
	return out, nil
}

// localize renders stored instants in the engine's zone.
func (l *Ledger) localize(b model.Booking) model.Booking {
	b.Start = b.Start.In(l.loc)
	b.End = b.End.In(l.loc)
	b.CreatedAt = b.CreatedAt.In(l.loc)
	return b
}

func (l *Ledger) checkCandidate(c *Candidate) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Notes = strings.TrimSpace(c.Notes)

	switch {
	case c.RoomID <= 0:
		return &ValidationError{Field: "roomId", Message: "must be greater than 0"}
	case c.Name == "":
		return &ValidationError{Field: "name", Message: "is required"}
	case c.Phone == "":
		return &ValidationError{Field: "phone", Message: "is required"}
	case c.Start.IsZero():
		return &ValidationError{Field: "startIso", Message: "is required"}
	case c.End.IsZero():
		return &ValidationError{Field: "endIso", Message: "is required"}
	case !c.Start.Before(c.End):
		return &ValidationError{Field: "endIso", Message: "must be after startIso"}
	}
	day, err := schedule.ParseDate(c.Date, l.loc)
	if err != nil {
		return &ValidationError{Field: "date", Message: "must be a date in YYYY-MM-DD form"}
	}
	if got := schedule.DateOf(c.Start, l.loc); got != c.Date {
		return &ValidationError{Field: "date", Message: "does not match startIso (" + got + ")"}
	}
	// Conflicts are checked per date, so the interval may end at the
	// following midnight but not later.
	if _, midnight := schedule.Hours(0, 24, day, l.loc); c.End.After(midnight) {
		return &ValidationError{Field: "endIso", Message: "must not run past midnight of " + c.Date}
	}
	if !c.Opens.IsZero() && c.Start.Before(c.Opens) {
		return &ValidationError{Field: "startIso", Message: "is before opening at " + c.Opens.In(l.loc).Format("15:04")}
	}
	if !c.Closes.IsZero() && c.End.After(c.Closes) {
		return &ValidationError{Field: "endIso", Message: "is after closing at " + c.Closes.In(l.loc).Format("15:04")}
	}
	c.Start = c.Start.In(l.loc)
	c.End = c.End.In(l.loc)
	return nil
}
