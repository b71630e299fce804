package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/telemed-scheduling/internal/schedule"
)

// Repository contains all DB interactions needed by the service. Every
// status mutation is conditional on the expected prior status; the single
// atomic row update is the concurrency primitive, there is no
// application-level locking beyond the advisory slot lock.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// CreatePending inserts a new pending appointment. The store's
	// uniqueness constraint on (doctor, date, time) over non-cancelled
	// rows closes the double-booking race; a conflicting insert returns
	// ErrSlotUnavailable.
	CreatePending(ctx context.Context, a Appointment) (*Appointment, error)

	// UpdateStatus applies the transition only if the stored status still
	// equals from; otherwise it returns ErrAppointmentNotFound and the
	// row is left untouched.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, upd Update) (*Appointment, error)

	// DeleteTerminal removes the row only when its status is terminal.
	// It reports whether a row was deleted.
	DeleteTerminal(ctx context.Context, id uuid.UUID) (bool, error)

	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)

	// BookedTimes feeds the slot generator: start times on the date held
	// by pending, confirmed or completed appointments.
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]schedule.TimeOfDay, error)
}
