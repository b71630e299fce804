package schedule

import "time"

// Partition derives the full slot grid for a date from a template, before
// any bookings are subtracted. Slots start at the template's start time and
// follow consecutively; a trailing remainder shorter than the slot duration
// is dropped. The result is ordered ascending by start time and is empty
// when the template does not cover the date's weekday.
func Partition(t Template, date time.Time) []Slot {
	date = DateOnly(date)
	if !t.WorksOn(date.Weekday()) {
		return nil
	}

	var slots []Slot
	for start := t.StartTime; start.Add(t.SlotDuration) <= t.EndTime; start = start.Add(t.SlotDuration) {
		slots = append(slots, Slot{
			DoctorID: t.DoctorID,
			Date:     date,
			Start:    start,
			End:      start.Add(t.SlotDuration),
		})
	}
	return slots
}

// Covers reports whether the given start time lands exactly on the
// template's slot grid for that date, i.e. whether the template can ever
// produce a slot starting then.
func Covers(t Template, date time.Time, start TimeOfDay) bool {
	if !t.WorksOn(DateOnly(date).Weekday()) {
		return false
	}
	if start < t.StartTime || start.Add(t.SlotDuration) > t.EndTime {
		return false
	}
	return int(start-t.StartTime)%t.SlotDuration == 0
}
