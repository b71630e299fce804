package appointment

import (
	"errors"
	"fmt"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotUnavailable means the requested slot is no longer free; the
	// caller should re-fetch available slots and pick another.
	ErrSlotUnavailable = errors.New("time slot already booked")

	// ErrNotAuthorized means the actor is not permitted to perform this
	// operation on the appointment.
	ErrNotAuthorized = errors.New("not authorized for this appointment")
)

// InvalidTransitionError reports a status precondition violation: the
// stored status no longer allows the requested action. It usually means
// the client acted on stale state or double-submitted.
type InvalidTransitionError struct {
	Current   Status
	Requested Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an appointment in status %q", e.Requested, e.Current)
}

// ValidationError reports malformed booking or completion input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
