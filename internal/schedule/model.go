package schedule

import (
	"time"

	"github.com/google/uuid"
)

// AllowedSlotDurations is the closed set of slot lengths a doctor may pick.
var AllowedSlotDurations = []int{15, 20, 30, 45, 60}

// Template is a doctor's recurring weekly availability. A doctor has at
// most one template at a time; saving replaces the previous one wholesale.
type Template struct {
	DoctorID     uuid.UUID
	Days         []time.Weekday
	StartTime    TimeOfDay
	EndTime      TimeOfDay
	SlotDuration int // minutes
	FeeCents     int64
	UpdatedAt    time.Time
}

// DefaultTemplate is what GetAvailability returns for a doctor who has
// never saved one: Mon-Fri, 09:00-17:00, 30 minute slots, no fee.
func DefaultTemplate(doctorID uuid.UUID) Template {
	return Template{
		DoctorID: doctorID,
		Days: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		StartTime:    NewTimeOfDay(9, 0),
		EndTime:      NewTimeOfDay(17, 0),
		SlotDuration: 30,
		FeeCents:     0,
	}
}

// WorksOn reports whether the template covers the given weekday.
func (t Template) WorksOn(day time.Weekday) bool {
	for _, d := range t.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Validate checks the template invariants. The working window does not
// have to divide evenly by the slot duration; a trailing partial slot is
// simply never generated.
func (t Template) Validate() error {
	if len(t.Days) == 0 {
		return &ValidationError{Field: "days", Reason: "at least one working day is required"}
	}
	seen := make(map[time.Weekday]bool, len(t.Days))
	for _, d := range t.Days {
		if d < time.Sunday || d > time.Saturday {
			return &ValidationError{Field: "days", Reason: "unknown weekday"}
		}
		if seen[d] {
			return &ValidationError{Field: "days", Reason: "duplicate weekday"}
		}
		seen[d] = true
	}
	if !t.StartTime.Valid() {
		return &ValidationError{Field: "startTime", Reason: "must be a clock time between 00:00 and 23:59"}
	}
	if !t.EndTime.Valid() {
		return &ValidationError{Field: "endTime", Reason: "must be a clock time between 00:00 and 23:59"}
	}
	if t.StartTime >= t.EndTime {
		return &ValidationError{Field: "startTime", Reason: "start time must be before end time"}
	}
	allowed := false
	for _, d := range AllowedSlotDurations {
		if t.SlotDuration == d {
			allowed = true
			break
		}
	}
	if !allowed {
		return &ValidationError{Field: "slotDurationMinutes", Reason: "must be one of 15, 20, 30, 45 or 60"}
	}
	if t.FeeCents < 0 {
		return &ValidationError{Field: "fee", Reason: "fee cannot be negative"}
	}
	return nil
}

// Slot is a bookable interval derived from a template for a concrete date.
// Slots are recomputed on every query and never persisted.
type Slot struct {
	DoctorID uuid.UUID
	Date     time.Time // civil date, midnight UTC
	Start    TimeOfDay
	End      TimeOfDay
}

// DateOnly truncates a timestamp to its civil date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" civil date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}
