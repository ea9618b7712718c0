package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

// ErrConflict is matched (via errors.Is) by every *ConflictError.
var ErrConflict = errors.New("booking overlaps an existing booking")

// ErrRoomNotFound is returned when a room id is not in the configuration.
var ErrRoomNotFound = errors.New("room not found")

// ErrRoomClosed is returned by the ledger when the blackout guard is on and
// the candidate's room is closed on its date.
var ErrRoomClosed = errors.New("room is closed on this date")

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ConflictError reports the committed booking a candidate overlaps.
type ConflictError struct {
	Existing model.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: room %d on %s is booked %s-%s",
		ErrConflict, e.Existing.RoomID, e.Existing.Date,
		e.Existing.Start.Format("15:04"), e.Existing.End.Format("15:04"))
}

// Is makes errors.Is(err, ErrConflict) hold.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// PersistenceError wraps a failure of an underlying store. It is distinct
// from the empty result of a store that has not been written yet.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationErr converts the first validator failure into a ValidationError.
func validationErr(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "gt":
		msg = "must be greater than " + fe.Param()
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	case "datetime":
		msg = "must be a date in YYYY-MM-DD form"
	default:
		msg = "failed " + fe.Tag() + " check"
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
