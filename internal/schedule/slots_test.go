package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestPartition(t *testing.T) {
	tmpl := Template{
		DoctorID:     uuid.New(),
		Days:         []time.Weekday{time.Monday},
		StartTime:    NewTimeOfDay(9, 0),
		EndTime:      NewTimeOfDay(10, 0),
		SlotDuration: 30,
	}

	slots := Partition(tmpl, monday)
	require.Len(t, slots, 2)

	assert.Equal(t, NewTimeOfDay(9, 0), slots[0].Start)
	assert.Equal(t, NewTimeOfDay(9, 30), slots[0].End)
	assert.Equal(t, NewTimeOfDay(9, 30), slots[1].Start)
	assert.Equal(t, NewTimeOfDay(10, 0), slots[1].End)

	for _, s := range slots {
		assert.Equal(t, tmpl.DoctorID, s.DoctorID)
		assert.Equal(t, monday, s.Date)
	}
}

func TestPartitionDropsTrailingRemainder(t *testing.T) {
	tmpl := Template{
		Days:         []time.Weekday{time.Monday},
		StartTime:    NewTimeOfDay(9, 0),
		EndTime:      NewTimeOfDay(10, 50),
		SlotDuration: 45,
	}

	// 09:00-09:45 and 09:45-10:30 fit; the remaining 20 minutes do not.
	slots := Partition(tmpl, monday)
	require.Len(t, slots, 2)
	assert.Equal(t, NewTimeOfDay(10, 30), slots[1].End)
}

func TestPartitionOffWorkingDay(t *testing.T) {
	tmpl := Template{
		Days:         []time.Weekday{time.Tuesday},
		StartTime:    NewTimeOfDay(9, 0),
		EndTime:      NewTimeOfDay(17, 0),
		SlotDuration: 30,
	}

	assert.Empty(t, Partition(tmpl, monday))
}

func TestPartitionWindowShorterThanSlot(t *testing.T) {
	tmpl := Template{
		Days:         []time.Weekday{time.Monday},
		StartTime:    NewTimeOfDay(9, 0),
		EndTime:      NewTimeOfDay(9, 20),
		SlotDuration: 30,
	}

	assert.Empty(t, Partition(tmpl, monday))
}

func TestPartitionIsDeterministicAndOrdered(t *testing.T) {
	tmpl := Template{
		DoctorID:     uuid.New(),
		Days:         []time.Weekday{time.Monday},
		StartTime:    NewTimeOfDay(8, 0),
		EndTime:      NewTimeOfDay(18, 0),
		SlotDuration: 20,
	}

	first := Partition(tmpl, monday)
	second := Partition(tmpl, monday)
	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.Equal(t, first[i-1].End, first[i].Start, "slots must be consecutive")
	}
}

func TestCovers(t *testing.T) {
	tmpl := Template{
		Days:         []time.Weekday{time.Monday},
		StartTime:    NewTimeOfDay(9, 0),
		EndTime:      NewTimeOfDay(17, 0),
		SlotDuration: 30,
	}

	assert.True(t, Covers(tmpl, monday, NewTimeOfDay(9, 0)))
	assert.True(t, Covers(tmpl, monday, NewTimeOfDay(16, 30)))

	// Off the grid.
	assert.False(t, Covers(tmpl, monday, NewTimeOfDay(9, 15)))
	// Before the window.
	assert.False(t, Covers(tmpl, monday, NewTimeOfDay(8, 30)))
	// Slot would run past the window end.
	assert.False(t, Covers(tmpl, monday, NewTimeOfDay(16, 45)))
	assert.False(t, Covers(tmpl, monday, NewTimeOfDay(17, 0)))
	// Wrong weekday.
	assert.False(t, Covers(tmpl, monday.AddDate(0, 0, 5), NewTimeOfDay(9, 0)))
}
