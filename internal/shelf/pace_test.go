package shelf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaceAndStreak(t *testing.T) {
	testCases := []struct {
		name        string
		daily       Daily
		today       Day
		expectedAvg float64
		expectedStr int
		display     string
	}{
		{
			name:        "empty mapping",
			daily:       Daily{},
			today:       "2024-01-03",
			expectedAvg: 0,
			expectedStr: 0,
			display:     "0",
		},
		{
			name:        "zero day breaks the chain",
			daily:       Daily{"2024-01-01": 10, "2024-01-02": 0, "2024-01-03": 20},
			today:       "2024-01-03",
			expectedAvg: 10,
			expectedStr: 1,
			display:     "10.0",
		},
		{
			name:        "consecutive days",
			daily:       Daily{"2024-02-27": 5, "2024-02-28": 5, "2024-02-29": 5, "2024-03-01": 6},
			today:       "2024-03-01",
			expectedAvg: 5.25,
			expectedStr: 4,
			display:     "5.3",
		},
		{
			name:        "missing today means no streak",
			daily:       Daily{"2024-01-01": 10, "2024-01-02": 10},
			today:       "2024-01-03",
			expectedAvg: 10,
			expectedStr: 0,
			display:     "10.0",
		},
		{
			name:        "zero today means no streak",
			daily:       Daily{"2024-01-02": 10, "2024-01-03": 0},
			today:       "2024-01-03",
			expectedAvg: 5,
			expectedStr: 0,
			display:     "5.0",
		},
		{
			name:        "gap breaks the chain",
			daily:       Daily{"2024-01-01": 10, "2024-01-03": 10},
			today:       "2024-01-03",
			expectedAvg: 10,
			expectedStr: 1,
			display:     "10.0",
		},
		{
			name:        "invalid today",
			daily:       Daily{"2024-01-03": 9},
			today:       "",
			expectedAvg: 9,
			expectedStr: 0,
			display:     "9.0",
		},
		{
			name:        "repeating average",
			daily:       Daily{"2024-01-01": 1, "2024-01-02": 1, "2024-01-03": 0},
			today:       "2024-01-02",
			expectedAvg: 2.0 / 3.0,
			expectedStr: 2,
			display:     "0.7",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pace := PaceAndStreak(tc.daily, tc.today)
			assert.InDelta(t, tc.expectedAvg, pace.AvgPagesPerDay, 1e-9)
			assert.Equal(t, tc.expectedStr, pace.StreakDays)
			assert.Equal(t, tc.display, pace.AvgDisplay())
			assert.Equal(t, len(tc.daily), pace.ActiveDays)
		})
	}
}

func TestPaceLabels(t *testing.T) {
	assert.Equal(t, "Reading streak: 1 day", Pace{StreakDays: 1}.StreakLabel())
	assert.Equal(t, "Reading streak: 0 days", Pace{}.StreakLabel())
	assert.Equal(t, "Avg pages/day: 0", Pace{}.PaceLabel())
	assert.Equal(t, "Avg pages/day: 12.5", Pace{TotalPages: 25, ActiveDays: 2}.PaceLabel())
}
