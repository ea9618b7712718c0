package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

var kst = time.FixedZone("KST", 9*60*60)

func testConfig() *model.Config {
	four := 4
	return &model.Config{
		OpenHour:  9,
		CloseHour: 22,
		Rooms: []model.Room{
			{ID: 1, Name: "Booth A", HourlyPrice: 12000, Photos: []string{}, Capacity: &four},
			{ID: 2, Name: "Booth B", HourlyPrice: 8000, Photos: []string{}},
		},
	}
}

type staticConfig struct {
	cfg *model.Config
	err error
}

func (s staticConfig) Get(ctx context.Context) (*model.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := *s.cfg
	return &c, nil
}

// memBookings is an in-memory BookingStore with failure injection. Load
// sleeps briefly so unsynchronized writers would interleave.
type memBookings struct {
	mu        sync.Mutex
	list      []model.Booking
	loadErr   error
	commitErr error
	commits   atomic.Int32
}

func (m *memBookings) Load(ctx context.Context) ([]model.Booking, error) {
	time.Sleep(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]model.Booking, len(m.list))
	copy(out, m.list)
	return out, nil
}

func (m *memBookings) Commit(ctx context.Context, bookings []model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	m.list = make([]model.Booking, len(bookings))
	copy(m.list, bookings)
	m.commits.Add(1)
	return nil
}

func (m *memBookings) snapshot() []model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Booking, len(m.list))
	copy(out, m.list)
	return out
}

// appendBookings adds the single-row Append path to memBookings.
type appendBookings struct {
	memBookings
	appends atomic.Int32
}

func (m *appendBookings) Append(ctx context.Context, b model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	m.list = append(m.list, b)
	m.appends.Add(1)
	return nil
}

// memBlackouts is an in-memory BlackoutStore; failDates makes ForDate fail
// for specific dates.
type memBlackouts struct {
	mu        sync.Mutex
	m         model.BlackoutMap
	failDates map[string]error
	loadErr   error
}

func newMemBlackouts() *memBlackouts {
	return &memBlackouts{m: model.BlackoutMap{}, failDates: map[string]error{}}
}

func (b *memBlackouts) Load(ctx context.Context) (model.BlackoutMap, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	out := model.BlackoutMap{}
	for d, rooms := range b.m {
		out[d] = map[int]bool{}
		for id, v := range rooms {
			out[d][id] = v
		}
	}
	return out, nil
}

func (b *memBlackouts) ForDate(ctx context.Context, date string) (map[int]bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failDates[date]; err != nil {
		return nil, err
	}
	out := map[int]bool{}
	for id, v := range b.m[date] {
		out[id] = v
	}
	return out, nil
}

func (b *memBlackouts) Upsert(ctx context.Context, date string, roomID int, closed bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.m[date] == nil {
		b.m[date] = map[int]bool{}
	}
	b.m[date][roomID] = closed
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("bk-%03d", n.Add(1)) }
}

func at(date string, hh, mm int) time.Time {
	d, err := time.ParseInLocation("2006-01-02", date, kst)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, kst)
}

type fixture struct {
	engine    *Engine
	bookings  *memBookings
	blackouts *memBlackouts
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, testConfig(), opts)
}

func newFixtureWithConfig(t *testing.T, cfg *model.Config, opts Options) *fixture {
	t.Helper()
	if opts.Location == nil {
		opts.Location = kst
	}
	if opts.Clock == nil {
		opts.Clock = fixedClock{t: at("2024-12-31", 12, 0)}
	}
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	f := &fixture{bookings: &memBookings{}, blackouts: newMemBlackouts()}
	f.engine = NewEngine(staticConfig{cfg: cfg}, f.bookings, f.blackouts, opts)
	return f
}

func bookingRequest(room int, date, start, end, name string) model.CreateBookingRequest {
	return model.CreateBookingRequest{
		RoomID: room,
		Date:   date,
		Start:  date + "T" + start + ":00",
		End:    date + "T" + end + ":00",
		Name:   name,
		Phone:  "010-1234-5678",
	}
}
