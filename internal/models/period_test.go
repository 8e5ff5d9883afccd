package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Period
		expectError bool
	}{
		{
			name:     "Valid Period",
			input:    "2025-03",
			expected: Period{Year: 2025, Month: time.March},
		},
		{
			name:     "Valid December",
			input:    "2024-12",
			expected: Period{Year: 2024, Month: time.December},
		},
		{
			name:        "Month Out Of Range",
			input:       "2025-13",
			expectError: true,
		},
		{
			name:        "Month Zero",
			input:       "2025-00",
			expectError: true,
		},
		{
			name:        "Unpadded Month",
			input:       "2025-3",
			expectError: true,
		},
		{
			name:        "Missing Hyphen",
			input:       "2025/03",
			expectError: true,
		},
		{
			name:        "Garbage",
			input:       "pronto!",
			expectError: true,
		},
		{
			name:        "Empty",
			input:       "",
			expectError: true,
		},
		{
			name:        "Full Date",
			input:       "2025-03-01",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := ParsePeriod(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, period)
			}
		})
	}
}

func TestPeriodString(t *testing.T) {
	assert.Equal(t, "2025-03", Period{Year: 2025, Month: time.March}.String())
	assert.Equal(t, "2024-12", Period{Year: 2024, Month: time.December}.String())
}

func TestPeriodRoundTrip(t *testing.T) {
	period, err := ParsePeriod("2025-07")
	assert.NoError(t, err)
	assert.Equal(t, "2025-07", period.String())
}

func TestPeriodOf(t *testing.T) {
	instant := time.Date(2025, time.March, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, Period{Year: 2025, Month: time.March}, PeriodOf(instant))
}

func TestPeriodDueDate(t *testing.T) {
	period := Period{Year: 2025, Month: time.January}
	due := period.DueDate(10)

	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), due)
	assert.Equal(t, time.UTC, due.Location())
}

func TestPeriodNext(t *testing.T) {
	assert.Equal(t, Period{Year: 2025, Month: time.February}, Period{Year: 2025, Month: time.January}.Next())
	assert.Equal(t, Period{Year: 2026, Month: time.January}, Period{Year: 2025, Month: time.December}.Next())
}
