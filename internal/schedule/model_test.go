package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() Template {
	return Template{
		DoctorID:     uuid.New(),
		Days:         []time.Weekday{time.Monday, time.Wednesday},
		StartTime:    NewTimeOfDay(9, 0),
		EndTime:      NewTimeOfDay(17, 0),
		SlotDuration: 30,
	}
}

func TestTemplateValidate(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*Template)
		wantField string
	}{
		{name: "valid", mutate: func(t *Template) {}},
		{
			name:      "no days",
			mutate:    func(t *Template) { t.Days = nil },
			wantField: "days",
		},
		{
			name:      "duplicate day",
			mutate:    func(t *Template) { t.Days = []time.Weekday{time.Monday, time.Monday} },
			wantField: "days",
		},
		{
			name:      "start after end",
			mutate:    func(t *Template) { t.StartTime, t.EndTime = t.EndTime, t.StartTime },
			wantField: "startTime",
		},
		{
			name:      "start equals end",
			mutate:    func(t *Template) { t.EndTime = t.StartTime },
			wantField: "startTime",
		},
		{
			name:      "duration not in allowed set",
			mutate:    func(t *Template) { t.SlotDuration = 25 },
			wantField: "slotDurationMinutes",
		},
		{
			name:      "zero duration",
			mutate:    func(t *Template) { t.SlotDuration = 0 },
			wantField: "slotDurationMinutes",
		},
		{
			name:      "negative fee",
			mutate:    func(t *Template) { t.FeeCents = -100 },
			wantField: "fee",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := validTemplate()
			tc.mutate(&tmpl)

			err := tmpl.Validate()
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
		})
	}
}

func TestDefaultTemplate(t *testing.T) {
	doctorID := uuid.New()
	def := DefaultTemplate(doctorID)

	assert.Equal(t, doctorID, def.DoctorID)
	assert.Equal(t, NewTimeOfDay(9, 0), def.StartTime)
	assert.Equal(t, NewTimeOfDay(17, 0), def.EndTime)
	assert.Equal(t, 30, def.SlotDuration)
	assert.Equal(t, int64(0), def.FeeCents)
	assert.True(t, def.WorksOn(time.Monday))
	assert.True(t, def.WorksOn(time.Friday))
	assert.False(t, def.WorksOn(time.Saturday))
	assert.False(t, def.WorksOn(time.Sunday))
	assert.NoError(t, def.Validate())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = ParseDate("03/02/2026")
	assert.Error(t, err)
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, 3, 2, 15, 42, 7, 99, time.FixedZone("X", 3600))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), DateOnly(ts))
}
