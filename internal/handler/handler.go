// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the booking engine.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
	"github.com/Shivanand-hulikatti/room-booking/internal/service"
)

// BookingHandler holds all HTTP handlers for the room booking API.
type BookingHandler struct {
	engine *service.Engine
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(engine *service.Engine) *BookingHandler {
	return &BookingHandler{engine: engine}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// roomIDParam reads a positive integer roomId query parameter.
func roomIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("roomId")))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	var (
		weekErr  *service.WeekError
		valErr   *service.ValidationError
		storeErr *service.PersistenceError
	)
	switch {
	case errors.As(err, &weekErr):
		log.Printf("weekly availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:       "availability could not be loaded for some dates",
			FailedDates: weekErr.Dates(),
		})
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: valErr.Error(), Field: valErr.Field})
	case errors.Is(err, service.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "the requested time overlaps an existing booking")
	case errors.Is(err, service.ErrRoomClosed):
		writeError(w, http.StatusConflict, "the room is closed on this date")
	case errors.As(err, &storeErr):
		log.Printf("storage failure: %v", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
	default:
		log.Printf("unexpected error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// GetConfig handles GET /api/config
// Returns operating hours, rooms, and the customer notice.
func (h *BookingHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.engine.Config(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// GetAvailability handles GET /api/availability?roomId=&date=
func (h *BookingHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "roomId must be a positive integer", Field: "roomId"})
		return
	}

	av, err := h.engine.GetAvailability(r.Context(), roomID, r.URL.Query().Get("date"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

// GetWeeklyAvailability handles GET /api/availability/week?roomId=&weekStart=
// An omitted weekStart means the current week; normalize=true snaps a
// mid-week date back to the configured first weekday.
func (h *BookingHandler) GetWeeklyAvailability(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "roomId must be a positive integer", Field: "roomId"})
		return
	}

	q := r.URL.Query()
	weekStart := q.Get("weekStart")
	if weekStart == "" || q.Get("normalize") == "true" {
		var err error
		if weekStart, err = h.engine.NormalizeWeekStart(weekStart); err != nil {
			writeEngineError(w, err)
			return
		}
	}

	week, err := h.engine.GetWeeklyAvailability(r.Context(), roomID, weekStart)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// ListBookings handles GET /api/bookings[?date=]
// Returns bookings sorted by start time.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.engine.ListBookings(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// CreateBooking handles POST /api/bookings
// Commits a booking unless it overlaps an existing one for the same room and date.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.engine.CreateBooking(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// GetBlackouts handles GET /api/blackouts[?date=]
// With a date, returns that day's room flags; otherwise the whole map.
func (h *BookingHandler) GetBlackouts(w http.ResponseWriter, r *http.Request) {
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := h.engine.DayBlackouts(r.Context(), date)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, day)
		return
	}

	all, err := h.engine.AllBlackouts(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// SetBlackout handles PATCH /api/blackouts
// Body: {"date": "YYYY-MM-DD", "roomId": 1, "closed": true}
func (h *BookingHandler) SetBlackout(w http.ResponseWriter, r *http.Request) {
	var req model.SetBlackoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ack, err := h.engine.SetBlackout(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
