package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"09:00", "09:00:00", false},
		{"09:00:30", "09:00:30", false},
		{"23:59:59", "23:59:59", false},
		{" 7:05 ", "07:05:00", false},
		{"25:61", "", true},
		{"24:00", "", true},
		{"9am", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseTimeOfDayMessage(t *testing.T) {
	_, err := ParseTimeOfDay("25:61")
	require.Error(t, err)
	assert.Equal(t, "invalid time format: 25:61. Use HH:mm or HH:mm:ss format", err.Error())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.June, Day: 1}, d)

	_, err = ParseDate("01/06/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("2025-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
	}{
		{"Time", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"String", "2025-06-01"},
		{"TimestampString", "2025-06-01T00:00:00Z"},
		{"Bytes", []byte("2025-06-01")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, "2025-06-01", d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestTimeOfDayScan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
	}{
		{"Time", time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC)},
		{"String", "09:30:00"},
		{"FractionalString", "09:30:00.000000"},
		{"Bytes", []byte("09:30")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tod TimeOfDay
			require.NoError(t, tod.Scan(tt.src))
			assert.Equal(t, "09:30:00", tod.String())
		})
	}
}

func TestCalendarJSON(t *testing.T) {
	payload := struct {
		Date Date      `json:"date"`
		Time TimeOfDay `json:"time"`
	}{
		Date: Date{Year: 2025, Month: time.June, Day: 1},
		Time: TimeOfDay{Hour: 9},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-06-01","time":"09:00:00"}`, string(data))
}
