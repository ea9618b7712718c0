// Package model defines the core domain types for the room booking system.
package model

import "time"

// Room is a bookable resource configured by an administrator.
type Room struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	HourlyPrice int      `json:"hourlyPrice" yaml:"hourly_price"`
	Photos      []string `json:"photos" yaml:"photos"`
	// Capacity is nil when the room has no stated head count.
	Capacity    *int   `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Config is the read-only operating configuration consumed by the engine.
type Config struct {
	OpenHour       int    `json:"openHour" yaml:"open_hour"`
	CloseHour      int    `json:"closeHour" yaml:"close_hour"`
	Rooms          []Room `json:"rooms" yaml:"rooms"`
	CustomerNotice string `json:"customerNotice,omitempty" yaml:"customer_notice,omitempty"`
}

// Room returns the room with the given id.
func (c *Config) Room(id int) (Room, bool) {
	for _, r := range c.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// Booking is a committed reservation of one room for one interval.
type Booking struct {
	ID        string    `json:"id"`
	RoomID    int       `json:"roomId"`
	Date      string    `json:"date"`
	Start     time.Time `json:"startIso"`
	End       time.Time `json:"endIso"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes,omitempty"`
	Price     int       `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

// Minutes returns the booked duration in whole minutes.
func (b *Booking) Minutes() int {
	return int(b.End.Sub(b.Start) / time.Minute)
}

// SlotStatus is the derived occupancy of a slot.
type SlotStatus string

const (
	SlotFree   SlotStatus = "free"
	SlotBooked SlotStatus = "booked"
)

// Slot is one half-hour cell of a room's daily grid. It is never persisted.
type Slot struct {
	Time   string     `json:"time"`
	Start  time.Time  `json:"isoStart"`
	End    time.Time  `json:"isoEnd"`
	Status SlotStatus `json:"status"`
}

// Availability is the composed view of one room on one date.
type Availability struct {
	Date      string `json:"date"`
	RoomID    int    `json:"roomId"`
	OpenHour  int    `json:"openHour"`
	CloseHour int    `json:"closeHour"`
	Slots     []Slot `json:"slots"`
	Closed    bool   `json:"closed"`

	// Bookings holds the day's bookings sorted by start. Kept off the wire
	// because it carries customer contact details.
	Bookings []Booking `json:"-"`
}

// WeeklyAvailability is seven consecutive Availability views for one room.
type WeeklyAvailability struct {
	RoomID    int                     `json:"roomId"`
	WeekStart string                  `json:"weekStart"`
	Dates     []string                `json:"dates"`
	Days      map[string]Availability `json:"days"`
	Closed    map[string]bool         `json:"closed"`
}

// BlackoutMap is date -> room id -> closed.
type BlackoutMap map[string]map[int]bool

// CreateBookingRequest is the payload for creating a booking.
type CreateBookingRequest struct {
	RoomID int    `json:"roomId" validate:"required,gt=0"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Start  string `json:"startIso" validate:"required"`
	End    string `json:"endIso" validate:"required"`
	Name   string `json:"name" validate:"required,max=100"`
	Phone  string `json:"phone" validate:"required,max=40"`
	Notes  string `json:"notes,omitempty" validate:"max=1000"`
}

// SetBlackoutRequest is the payload for toggling a blackout.
type SetBlackoutRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	RoomID int    `json:"roomId" validate:"required,gt=0"`
	Closed *bool  `json:"closed" validate:"required"`
}

// BlackoutAck acknowledges a blackout upsert.
type BlackoutAck struct {
	OK     bool   `json:"ok"`
	Date   string `json:"date"`
	RoomID int    `json:"roomId"`
	Closed bool   `json:"closed"`
}

// DayBlackouts is the blackout state of every room on one date.
type DayBlackouts struct {
	Date  string       `json:"date"`
	Rooms map[int]bool `json:"rooms"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Field       string   `json:"field,omitempty"`
	FailedDates []string `json:"failedDates,omitempty"`
}
