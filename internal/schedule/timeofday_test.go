package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: NewTimeOfDay(0, 0)},
		{in: "09:30", want: NewTimeOfDay(9, 30)},
		{in: "23:59", want: NewTimeOfDay(23, 59)},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05", NewTimeOfDay(9, 5).String())
	assert.Equal(t, "17:00", NewTimeOfDay(17, 0).String())
	assert.Equal(t, "00:00", NewTimeOfDay(0, 0).String())
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	orig := NewTimeOfDay(14, 45)

	data, err := json.Marshal(orig)
	require.NoError(t, err)
	assert.Equal(t, `"14:45"`, string(data))

	var back TimeOfDay
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig, back)
}

func TestTimeOfDayUnmarshalRejectsGarbage(t *testing.T) {
	var tod TimeOfDay
	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &tod))
	assert.Error(t, json.Unmarshal([]byte(`930`), &tod))
}

func TestTimeOfDayAdd(t *testing.T) {
	start := NewTimeOfDay(9, 0)
	assert.Equal(t, NewTimeOfDay(9, 30), start.Add(30))
	assert.Equal(t, NewTimeOfDay(10, 0), start.Add(60))

	// Add may run past midnight; Valid catches it.
	late := NewTimeOfDay(23, 50).Add(30)
	assert.False(t, late.Valid())
}
