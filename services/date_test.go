package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{
			name:     "Valid date",
			input:    "2024-01-10",
			expected: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			wantErr:  false,
		},
		{
			name:     "RFC 3339 timestamp is normalized to UTC",
			input:    "2024-01-10T08:00:00+02:00",
			expected: time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC),
			wantErr:  false,
		},
		{
			name:     "Surrounding whitespace",
			input:    " 2024-02-29 ",
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			wantErr:  false,
		},
		{
			name:    "Invalid format",
			input:   "10-01-2024",
			wantErr: true,
		},
		{
			name:    "Invalid day",
			input:   "2024-01-32",
			wantErr: true,
		},
		{
			name:    "Empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestFormatISO(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	assert.Equal(t, "2024-03-15T14:30:00Z", FormatISO(time.Date(2024, 3, 15, 9, 30, 0, 0, loc)))
}

func TestValidSessionTime(t *testing.T) {
	assert.True(t, validSessionTime("09:30"))
	assert.True(t, validSessionTime("23:59"))
	assert.False(t, validSessionTime("9:30"))
	assert.False(t, validSessionTime("24:00"))
	assert.False(t, validSessionTime("noon"))
}

func TestCalendarDays(t *testing.T) {
	from := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, calendarDays(from, to))
	assert.Equal(t, 0, calendarDays(from, from))
	assert.Equal(t, 29, calendarDays(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}
