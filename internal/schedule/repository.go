package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists availability templates, one row per doctor.
type Repository interface {
	GetTemplate(ctx context.Context, doctorID uuid.UUID) (*Template, error)

	// ReplaceTemplate atomically swaps the doctor's template for the given
	// one. There is no partial update and no history.
	ReplaceTemplate(ctx context.Context, t Template) error
}

// BookedLookup answers which slot start times on a date are already taken
// by a live appointment. Cancelled appointments do not count; their slots
// are bookable again.
type BookedLookup interface {
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeOfDay, error)
}
