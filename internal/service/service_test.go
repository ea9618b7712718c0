package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/room-booking/internal/config"
	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

func TestSetBlackoutIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	closed := true
	req := model.SetBlackoutRequest{Date: "2025-01-01", RoomID: 1, Closed: &closed}

	ack, err := f.engine.SetBlackout(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if !ack.OK || !ack.Closed || ack.RoomID != 1 {
		t.Fatalf("ack = %+v", ack)
	}
	first, err := f.engine.AllBlackouts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.SetBlackout(ctx, req); err != nil {
		t.Fatal(err)
	}
	second, err := f.engine.AllBlackouts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("map changed on repeat: %v vs %v", first, second)
	}
}

func TestSetBlackoutKeepsOtherRooms(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	yes, no := true, false

	if _, err := f.engine.SetBlackout(ctx, model.SetBlackoutRequest{Date: "2025-01-01", RoomID: 1, Closed: &yes}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.SetBlackout(ctx, model.SetBlackoutRequest{Date: "2025-01-01", RoomID: 2, Closed: &no}); err != nil {
		t.Fatal(err)
	}
	day, err := f.engine.DayBlackouts(ctx, "2025-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if !day.Rooms[1] || day.Rooms[2] || len(day.Rooms) != 2 {
		t.Fatalf("rooms = %v", day.Rooms)
	}

	empty, err := f.engine.DayBlackouts(ctx, "2025-02-01")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Rooms == nil || len(empty.Rooms) != 0 {
		t.Fatalf("unrecorded date = %v, want empty map", empty.Rooms)
	}
}

func TestSetBlackoutValidation(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	yes := true

	var ve *ValidationError
	if _, err := f.engine.SetBlackout(ctx, model.SetBlackoutRequest{Date: "2025-01-01", RoomID: 1}); !errors.As(err, &ve) || ve.Field != "closed" {
		t.Fatalf("missing closed: err = %v", err)
	}
	if _, err := f.engine.SetBlackout(ctx, model.SetBlackoutRequest{Date: "", RoomID: 1, Closed: &yes}); !errors.As(err, &ve) || ve.Field != "date" {
		t.Fatalf("missing date: err = %v", err)
	}
	if _, err := f.engine.SetBlackout(ctx, model.SetBlackoutRequest{Date: "2025-01-01", RoomID: 9, Closed: &yes}); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("unknown room: err = %v", err)
	}
}

func TestNormalizeWeekStart(t *testing.T) {
	f := newFixture(t, Options{WeekStart: time.Monday})
	got, err := f.engine.NormalizeWeekStart("2025-01-01")
	if err != nil || got != "2024-12-30" {
		t.Fatalf("NormalizeWeekStart = %q, %v", got, err)
	}
	// Fixture clock is Tuesday 2024-12-31.
	got, err = f.engine.NormalizeWeekStart("")
	if err != nil || got != "2024-12-30" {
		t.Fatalf("NormalizeWeekStart(today) = %q, %v", got, err)
	}

	sun := newFixture(t, Options{WeekStart: time.Sunday})
	got, err = sun.engine.NormalizeWeekStart("2025-01-01")
	if err != nil || got != "2024-12-29" {
		t.Fatalf("sunday NormalizeWeekStart = %q, %v", got, err)
	}
}

func TestConfigErrorsClassified(t *testing.T) {
	ctx := context.Background()

	invalid := NewEngine(staticConfig{err: config.ErrInvalidHours}, &memBookings{}, newMemBlackouts(), Options{})
	var ve *ValidationError
	if _, err := invalid.Config(ctx); !errors.As(err, &ve) {
		t.Fatalf("invalid config: err = %v, want ValidationError", err)
	}

	broken := NewEngine(staticConfig{err: errors.New("permission denied")}, &memBookings{}, newMemBlackouts(), Options{})
	var pe *PersistenceError
	if _, err := broken.Config(ctx); !errors.As(err, &pe) {
		t.Fatalf("unreadable config: err = %v, want PersistenceError", err)
	}
}
