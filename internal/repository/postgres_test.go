package repository

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/room-booking/internal/database"
	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

// testPool connects to TEST_DATABASE_URL and resets the tables, or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE bookings, blackouts`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

func TestPgBookingStoreCommit(t *testing.T) {
	pool := testPool(t)
	s := NewPgBookingStore(pool)
	ctx := context.Background()

	if got, err := s.Load(ctx); err != nil || len(got) != 0 {
		t.Fatalf("Load on empty table = %v, %v", got, err)
	}

	first := []model.Booking{sampleBooking("a", 1, 10)}
	if err := s.Commit(ctx, first); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	second := append(first, sampleBooking("b", 1, 12))
	if err := s.Commit(ctx, second); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Load = %+v", got)
	}
	if !got[0].Start.Equal(first[0].Start) {
		t.Fatalf("start = %v, want %v", got[0].Start, first[0].Start)
	}
}

func TestPgBookingStoreAppend(t *testing.T) {
	pool := testPool(t)
	s := NewPgBookingStore(pool)
	ctx := context.Background()

	if err := s.Append(ctx, sampleBooking("a", 1, 10)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, sampleBooking("b", 2, 10)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, sampleBooking("a", 1, 12)); err == nil {
		t.Fatal("duplicate id appended")
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("Load = %+v", got)
	}
}

func TestPgBookingStoreLock(t *testing.T) {
	pool := testPool(t)
	s := NewPgBookingStore(pool)

	unlock, err := s.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	unlock()

	unlock, err = s.Lock(context.Background())
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	unlock()
}

func TestPgBlackoutStoreUpsert(t *testing.T) {
	pool := testPool(t)
	s := NewPgBlackoutStore(pool)
	ctx := context.Background()

	for _, closed := range []bool{true, true} {
		if err := s.Upsert(ctx, "2025-01-01", 1, closed); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Upsert(ctx, "2025-01-01", 2, false); err != nil {
		t.Fatal(err)
	}

	day, err := s.ForDate(ctx, "2025-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if !day[1] || day[2] || len(day) != 2 {
		t.Fatalf("day = %v", day)
	}
	all, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all["2025-01-01"]) != 2 {
		t.Fatalf("Load = %v", all)
	}
}
